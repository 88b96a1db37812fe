package wasm

import (
	"context"
	"fmt"

	"github.com/wazerocore/corevm/internal/trap"
)

// callFrame is the Go substitute for the thread-local (entry_sp, jmp_buf)
// stack of §4.8 step 3. Go has no portable setjmp/longjmp, so instead of a
// jump buffer each frame is simply a point a deferred recover() can unwind
// to: panicking with a *trap.Trap from anywhere nested inside Call is
// caught by the nearest enclosing Call's defer, exactly as a longjmp would
// return control to the nearest enclosing trampoline.
//
// Grounded on the teacher's internal/engine/compiler/engine.go, whose
// callEngine pushes a frame before invoking compiled code and whose
// causePanic/deferredOnCall pair implement precisely this panic-as-longjmp
// pattern for a JIT backend; this runtime generalizes it to be the only
// recovery mechanism, since no compiler here ever installs a real SIGSEGV
// handler (see SPEC_FULL.md Open Questions).
type callFrame struct {
	fn    *FunctionInstance
	depth int
}

// maxCallDepth stands in for the native stack-overflow guard page: beyond
// this many nested Wasm->Wasm or Wasm->host->Wasm calls, Call raises
// trap.StackOverflow instead of letting the Go runtime's own goroutine
// stack fault.
const maxCallDepth = 4096

// Call performs a host->Wasm call (§4.8): it resolves fn's body, invokes
// it with the call-frame/trap-recovery discipline, and converts any trap
// raised during execution (directly, or by a nested call) into a
// *trap.RuntimeError.
//
// depth-tracking frame is threaded via ctx only when present; a nil ctx
// (as from the instantiation pipeline's start-function call, which has no
// caller-supplied context yet) defaults to context.Background, matching
// every api.* method's documented nil-context behavior.
func Call(ctx context.Context, store *Store, inst *Instance, fn *FunctionInstance, args []uint64) (results []uint64, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	depth := depthFromContext(ctx)
	if depth >= maxCallDepth {
		return nil, &trap.RuntimeError{Trap: trap.New(trap.StackOverflow)}
	}
	ctx = withDepth(ctx, depth+1)

	defer func() {
		if r := recover(); r != nil {
			err = recoverToRuntimeError(r, fn)
			results = nil
		}
	}()

	switch fn.Kind {
	case FunctionKindDefined:
		results, err = fn.Defined(ctx, inst, args)
	case FunctionKindHost:
		results, err = callHost(ctx, inst, fn, args)
	case FunctionKindAsyncHost:
		results, err = callAsyncHost(ctx, inst, fn, args)
	default:
		panic("BUG: unknown function kind")
	}
	if err != nil {
		// A host function returning a plain error (rather than panicking)
		// is §4.8's "Wasm -> host call" User error path: it is boxed into
		// Trap::User at the import boundary, not re-wrapped again here if
		// it already is one.
		if rerr, ok := err.(*trap.RuntimeError); ok {
			return nil, rerr
		}
		return nil, &trap.RuntimeError{Trap: trap.FromUserError(err)}
	}
	return results, nil
}

// callHost invokes a synchronous host function, catching panics inside the
// closure and converting them to Trap::HostPanic (§4.8: "Panics inside the
// closure are caught and converted to Trap::HostPanic").
func callHost(ctx context.Context, inst *Instance, fn *FunctionInstance, args []uint64) (results []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			if t, ok := r.(*trap.Trap); ok {
				panic(t) // a trap raised by a nested Wasm call keeps propagating as a trap, not HostPanic.
			}
			if _, ok := r.(*hostException); ok {
				panic(r) // an in-flight exception keeps unwinding past this host frame.
			}
			err = recoverToRuntimeError(r, fn)
		}
	}()
	return fn.Host(ctx, inst, args)
}

func callAsyncHost(ctx context.Context, inst *Instance, fn *FunctionInstance, args []uint64) ([]uint64, error) {
	future, err := fn.AsyncHost(ctx, inst, args)
	if err != nil {
		return nil, err
	}
	return future.Await(ctx)
}

// recoverToRuntimeError converts a recovered panic value into a
// *trap.RuntimeError, attaching a single-frame backtrace naming fn — the
// Go equivalent of §4.10's "rebuilds a Trap from the recorded information".
func recoverToRuntimeError(r any, fn *FunctionInstance) error {
	var t *trap.Trap
	if ut, ok := uncaughtToTrap(r); ok {
		t = ut
		frame := trap.Frame{ModuleName: fn.ModuleName, FunctionIdx: fn.Index, FunctionName: fn.Name}
		return &trap.RuntimeError{Trap: t, Backtrace: []trap.Frame{frame}}
	}
	switch v := r.(type) {
	case *trap.Trap:
		t = v
	case error:
		t = trap.New(trap.HostPanic)
		t.UserErr = v
	default:
		t = trap.New(trap.HostPanic)
		t.UserErr = fmt.Errorf("%v", v)
	}
	frame := trap.Frame{ModuleName: fn.ModuleName, FunctionIdx: fn.Index, FunctionName: fn.Name}
	return &trap.RuntimeError{Trap: t, Backtrace: []trap.Frame{frame}}
}

// CallIndirect performs an indirect call through table tbl at index idx,
// checking the null-reference and signature-mismatch conditions §4.10
// names explicitly (IndirectCallToNull, BadSignature) before dispatch. The
// signature check goes through the store's shared signature registry
// (store.sigs) rather than walking expect against fn.Type directly, so
// repeat calls through the same table slot compare an interned
// VMSharedSignatureIndex instead of re-deriving type equality each time.
func CallIndirect(ctx context.Context, store *Store, inst *Instance, tbl *TableInstance, idx uint32, expect *FunctionType, args []uint64) ([]uint64, error) {
	elem, ok := tbl.Get(idx)
	if !ok {
		return nil, &trap.RuntimeError{Trap: trap.New(trap.TableOutOfBounds)}
	}
	if elem.FuncRef == nil {
		return nil, &trap.RuntimeError{Trap: trap.New(trap.IndirectCallToNull)}
	}
	fn := store.GetFunction(*elem.FuncRef)
	if !store.sigs.Matches(fn.signatureIndex(store), expect) {
		return nil, &trap.RuntimeError{Trap: trap.New(trap.BadSignature)}
	}
	return Call(ctx, store, inst, fn, args)
}

type depthKey struct{}

func depthFromContext(ctx context.Context) int {
	if v, ok := ctx.Value(depthKey{}).(int); ok {
		return v
	}
	return 0
}

func withDepth(ctx context.Context, d int) context.Context {
	return context.WithValue(ctx, depthKey{}, d)
}
