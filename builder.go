package corevm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/wazerocore/corevm/api"
	"github.com/wazerocore/corevm/internal/wasm"
)

// HostModuleBuilder defines host functions (in Go) under a
// single import module name, then publishes them into a Store's Imports in
// one step. Grounded on the teacher's builder.go HostModuleBuilder, adapted
// from "compile then instantiate into a Runtime" to this package's
// "register directly into a Store's Imports" model, since there is no
// parser/Runtime layer here (§1).
type HostModuleBuilder struct {
	store      *Store
	moduleName string
	funcs      map[string]*wasm.FunctionInstance
}

// NewHostModuleBuilder begins defining host functions importable under
// moduleName, allocated into store's arena.
func (s *Store) NewHostModuleBuilder(moduleName string) *HostModuleBuilder {
	return &HostModuleBuilder{store: s, moduleName: moduleName, funcs: map[string]*wasm.FunctionInstance{}}
}

// WithFunc uses reflect.Value to map a Go func to a WebAssembly-compatible
// FunctionType and publishes it as exportName.
//
// Except for an optional leading context.Context and an optional api.Module
// (to access the calling module's memory), every parameter and result must
// be one of int32, uint32, int64, uint64, float32, float64 — the Go types
// mapping to WebAssembly's four numeric value types (§3).
func (b *HostModuleBuilder) WithFunc(exportName string, fn interface{}) *HostModuleBuilder {
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		panic(fmt.Sprintf("corevm: WithFunc(%q): not a func", exportName))
	}

	start := 0
	takesContext := rt.NumIn() > start && rt.In(start) == reflect.TypeOf((*context.Context)(nil)).Elem()
	if takesContext {
		start++
	}
	takesModule := rt.NumIn() > start && rt.In(start) == reflect.TypeOf((*api.Module)(nil)).Elem()
	if takesModule {
		start++
	}

	params := make([]api.ValueType, rt.NumIn()-start)
	for i := start; i < rt.NumIn(); i++ {
		params[i-start] = goValueType(exportName, rt.In(i))
	}
	results := make([]api.ValueType, rt.NumOut())
	for i := 0; i < rt.NumOut(); i++ {
		results[i] = goValueType(exportName, rt.Out(i))
	}

	host := func(ctx context.Context, inst *wasm.Instance, args []uint64) ([]uint64, error) {
		in := make([]reflect.Value, rt.NumIn())
		idx := 0
		if takesContext {
			in[idx] = reflect.ValueOf(ctx)
			idx++
		}
		if takesModule {
			in[idx] = reflect.ValueOf(wrapInstance(inst))
			idx++
		}
		for i, argType := range params {
			in[idx] = decodeGoValue(rt.In(idx), argType, args[i])
			idx++
		}
		out := rv.Call(in)
		encoded := make([]uint64, len(out))
		for i, o := range out {
			encoded[i] = encodeGoValue(results[i], o)
		}
		return encoded, nil
	}

	fi := &wasm.FunctionInstance{
		Type:        &wasm.FunctionType{Params: params, Results: results},
		Kind:        wasm.FunctionKindHost,
		Host:        host,
		ModuleName:  b.moduleName,
		Name:        exportName,
		ExportName:  exportName,
		GoFuncValue: &rv,
	}
	b.funcs[exportName] = fi
	return b
}

// Build registers every defined function into store's arena and returns an
// Imports populated with (moduleName, exportName) -> func entries, ready to
// be passed to Instantiate (optionally chained with further Define* calls
// for other import namespaces).
func (b *HostModuleBuilder) Build() *Imports {
	im := NewImports(b.store)
	for name, fn := range b.funcs {
		im.DefineFunction(b.moduleName, name, fn)
	}
	return im
}

func wrapInstance(inst *wasm.Instance) *Instance {
	return &Instance{store: &Store{inner: inst.Store()}, inner: inst}
}

var (
	typeInt32   = reflect.TypeOf(int32(0))
	typeUint32  = reflect.TypeOf(uint32(0))
	typeInt64   = reflect.TypeOf(int64(0))
	typeUint64  = reflect.TypeOf(uint64(0))
	typeFloat32 = reflect.TypeOf(float32(0))
	typeFloat64 = reflect.TypeOf(float64(0))
)

func goValueType(exportName string, t reflect.Type) api.ValueType {
	switch t {
	case typeInt32, typeUint32:
		return api.ValueTypeI32
	case typeInt64, typeUint64:
		return api.ValueTypeI64
	case typeFloat32:
		return api.ValueTypeF32
	case typeFloat64:
		return api.ValueTypeF64
	default:
		panic(fmt.Sprintf("corevm: WithFunc(%q): unsupported Go type %s", exportName, t))
	}
}

func decodeGoValue(t reflect.Type, vt api.ValueType, raw uint64) reflect.Value {
	switch t {
	case typeInt32:
		return reflect.ValueOf(int32(uint32(raw)))
	case typeUint32:
		return reflect.ValueOf(uint32(raw))
	case typeInt64:
		return reflect.ValueOf(int64(raw))
	case typeUint64:
		return reflect.ValueOf(raw)
	case typeFloat32:
		return reflect.ValueOf(api.DecodeF32(raw))
	case typeFloat64:
		return reflect.ValueOf(api.DecodeF64(raw))
	default:
		panic(fmt.Sprintf("corevm: unsupported Go type %s", t))
	}
}

func encodeGoValue(vt api.ValueType, v reflect.Value) uint64 {
	switch vt {
	case api.ValueTypeI32:
		if v.Kind() == reflect.Uint32 {
			return uint64(uint32(v.Uint()))
		}
		return uint64(uint32(v.Int()))
	case api.ValueTypeI64:
		if v.Kind() == reflect.Uint64 {
			return v.Uint()
		}
		return uint64(v.Int())
	case api.ValueTypeF32:
		return api.EncodeF32(float32(v.Float()))
	case api.ValueTypeF64:
		return api.EncodeF64(v.Float())
	default:
		panic("corevm: unsupported result value type")
	}
}
