package wasm

import (
	"context"
	"fmt"
	"reflect"
)

// DefinedBody is a module-defined function's executable body. Since the
// compiler pipeline is out of scope (§1 EXPANSION), this runtime receives
// already-compiled bodies as Go closures — the "headless" Engine of §4.11 —
// rather than generating them from a bytecode decoder.
//
// args and results are raw uint64 cells exactly as §4.8 step 2/5 describe
// ("untyped raw-value array"); the closure is responsible for interpreting
// them according to Type.
type DefinedBody func(ctx context.Context, inst *Instance, args []uint64) (results []uint64, err error)

// HostFunc is a host function body, invoked directly through
// VMFunctionImport.body without a trampoline (§4.8 "Wasm -> host call").
type HostFunc func(ctx context.Context, mod *Instance, args []uint64) (results []uint64, err error)

// AsyncHostFunc is the async variant of HostFunc (§4.6): it returns a
// Future whose resolution value is marshalled back as the call's results.
// Suspension is cooperative and only ever happens across this boundary
// (§5 "Suspension points").
type AsyncHostFunc func(ctx context.Context, mod *Instance, args []uint64) (Future, error)

// Future is the minimal shape an async host function's pending result
// must satisfy; embedders adapt their own future/promise types to this.
type Future interface {
	// Await blocks the calling goroutine until the future resolves,
	// returning the marshalled raw results or an error. Go has no
	// built-in asymmetric-coroutine primitive, so "suspend the calling
	// Wasm task" is realized as "block this goroutine", which is
	// observationally equivalent from the embedder's perspective: the
	// host->Wasm call simply takes longer to return.
	Await(ctx context.Context) ([]uint64, error)
}

// FunctionKind distinguishes a module-defined function from a host import.
type FunctionKind int

const (
	FunctionKindDefined FunctionKind = iota
	FunctionKindHost
	FunctionKindAsyncHost
)

// FunctionInstance is one entry of a module's function index namespace,
// whether defined or imported (§3, §4.1, §4.6, §4.8).
//
// Grounded on the teacher's internal/wasm/host_test.go, gofunc_test.go and
// function_definition_test.go, which together exercise a function purely
// through its Type/Call/debug-name surface.
type FunctionInstance struct {
	Type *FunctionType
	Kind FunctionKind

	Defined   DefinedBody
	Host      HostFunc
	AsyncHost AsyncHostFunc

	// env, when non-zero, is the FunctionEnv a host function closed over
	// (§4.6); defined functions never set this.
	env StoreHandle[ExternObj]

	ModuleName string
	Index      Index
	Name       string
	// ExportName is the name this function is published under when
	// instantiated, set for host functions built from a reflected Go func
	// (§6 "host module builder" convenience, not part of the core model).
	ExportName string

	// GoFuncValue is present when this function was built by reflecting a
	// Go func (e.g. the root package's host module builder), mirroring
	// api.FunctionDefinition.GoFunc's role of exposing the original func
	// value for introspection. Nil for Wasm-defined and manually-built host
	// functions.
	GoFuncValue *reflect.Value

	// sigIndex and sigIndexSet cache this function's interned
	// VMSharedSignatureIndex, populated lazily by signatureIndex the first
	// time an indirect call dispatches through it, so repeat dispatches
	// compare cached indices instead of re-walking Type (§4.1, §4.4
	// invariant 4: "compare signature indices without dereferencing").
	sigIndex    VMSharedSignatureIndex
	sigIndexSet bool
}

// signatureIndex returns f's VMSharedSignatureIndex within store, interning
// it on first use and caching the result on f.
func (f *FunctionInstance) signatureIndex(store *Store) VMSharedSignatureIndex {
	if !f.sigIndexSet {
		f.sigIndex = store.sigs.Intern(f.Type)
		f.sigIndexSet = true
	}
	return f.sigIndex
}

func (f *FunctionInstance) DebugName() string {
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("$%d", f.Index)
	}
	if f.ModuleName == "" {
		return name
	}
	return f.ModuleName + "." + name
}

// FunctionEnv is a typed handle into a store's extern-object arena: the
// piece of host state a host function closes over (§4.6).
type FunctionEnv[T any] struct {
	handle StoreHandle[ExternObj]
}

// NewFunctionEnv boxes data into store's arena and returns a typed handle.
func NewFunctionEnv[T any](store *Store, data T) FunctionEnv[T] {
	h := store.addExternObj(&ExternObj{value: data})
	return FunctionEnv[T]{handle: h}
}

// FunctionEnvMut is a scoped exclusive borrow of a FunctionEnv's data,
// granted together with the &mut Store a host function body needs to touch
// other store resources (§4.6).
type FunctionEnvMut[T any] struct {
	Store *Store
	Data  *T
}

// AsMut resolves env against store, panicking on cross-store misuse, and
// returns the scoped mutable view a host function body operates on.
func AsMut[T any](store *Store, env FunctionEnv[T]) FunctionEnvMut[T] {
	obj := store.GetExternObj(env.handle)
	data, ok := obj.value.(*T)
	if !ok {
		// value was boxed by value in NewFunctionEnv; take its address once
		// and cache it back so repeated AsMut calls see the same pointer.
		v := obj.value.(T)
		data = &v
		obj.value = data
	}
	return FunctionEnvMut[T]{Store: store, Data: data}
}
