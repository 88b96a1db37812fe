package corevm

import (
	"context"
	"fmt"

	"github.com/wazerocore/corevm/api"
	"github.com/wazerocore/corevm/internal/wasm"
)

// Imports is a mutable builder for the (namespace, name) -> Extern map
// Instantiate resolves a module's ImportSection against (§4.7 step 1, §6).
// Entries reference resources already living in some Store's arena, so
// DefineFunction/DefineMemory/DefineTable/DefineGlobal put them there first.
type Imports struct {
	store   *Store
	entries wasm.Imports
}

// NewImports begins an Imports builder. All entries defined through it are
// allocated in store's arena, so the returned Imports can only satisfy a
// module instantiated against that same store.
func NewImports(store *Store) *Imports {
	return &Imports{store: store, entries: wasm.Imports{}}
}

// DefineFunction registers fn as a host-owned function in the store and
// binds it to (module, name).
func (im *Imports) DefineFunction(module, name string, fn *wasm.FunctionInstance) *Imports {
	h := im.store.inner.DefineFunction(fn)
	im.entries[wasm.ImportKey{Module: module, Name: name}] = wasm.Extern{Kind: wasm.ExternKindFunc, Func: h}
	return im
}

// DefineMemory registers m as a host-owned memory and binds it to (module, name).
func (im *Imports) DefineMemory(module, name string, m *wasm.MemoryInstance) *Imports {
	h := im.store.inner.DefineMemory(m)
	im.entries[wasm.ImportKey{Module: module, Name: name}] = wasm.Extern{Kind: wasm.ExternKindMemory, Memory: h}
	return im
}

// DefineTable registers t as a host-owned table and binds it to (module, name).
func (im *Imports) DefineTable(module, name string, t *wasm.TableInstance) *Imports {
	h := im.store.inner.DefineTable(t)
	im.entries[wasm.ImportKey{Module: module, Name: name}] = wasm.Extern{Kind: wasm.ExternKindTable, Table: h}
	return im
}

// DefineGlobal registers g as a host-owned global and binds it to (module, name).
func (im *Imports) DefineGlobal(module, name string, g *wasm.GlobalInstance) *Imports {
	h := im.store.inner.DefineGlobal(g)
	im.entries[wasm.ImportKey{Module: module, Name: name}] = wasm.Extern{Kind: wasm.ExternKindGlobal, Global: h}
	return im
}

// Instantiate runs the §4.7 pipeline, producing an Instance within store
// (§6: "corevm.Instantiate(store, module, imports) (*Instance, error)").
func Instantiate(store *Store, module *Module, imports *Imports) (*Instance, error) {
	entries := wasm.Imports{}
	if imports != nil {
		entries = imports.entries
	}
	inner, err := store.engine.inner.Instantiate(store.inner, &wasm.Module{Info: module.info, Artifact: module.artifact}, entries, module.info.Name)
	if err != nil {
		return nil, err
	}
	return &Instance{store: store, inner: inner}, nil
}

// Instance is the embedder-facing view of a module's runtime footprint
// within one Store (§3, §4.7). It implements api.Module.
type Instance struct {
	store *Store
	inner *wasm.Instance
}

var _ api.Module = (*Instance)(nil)

func (i *Instance) String() string { return fmt.Sprintf("Module[%s]", i.inner.Name()) }

func (i *Instance) Name() string { return i.inner.Name() }

// Exports returns the raw export map (§6: "Instance.Exports() map[string]Extern").
func (i *Instance) Exports() map[string]wasm.Extern { return i.inner.Exports() }

// ExportedFunction implements api.Module.
func (i *Instance) ExportedFunction(name string) api.Function {
	ext, ok := i.inner.Exports()[name]
	if !ok || ext.Kind != wasm.ExternKindFunc {
		return nil
	}
	return &hostFunction{store: i.store.inner, fn: i.store.inner.GetFunction(ext.Func), inst: i.inner}
}

// ExportedTable implements api.Module.
func (i *Instance) ExportedTable(name string) api.Table {
	ext, ok := i.inner.Exports()[name]
	if !ok || ext.Kind != wasm.ExternKindTable {
		return nil
	}
	return &hostTable{store: i.store.inner, tbl: i.store.inner.GetTable(ext.Table)}
}

// ExportedMemory implements api.Module.
func (i *Instance) ExportedMemory(name string) api.Memory {
	ext, ok := i.inner.Exports()[name]
	if !ok || ext.Kind != wasm.ExternKindMemory {
		return nil
	}
	return &hostMemory{mem: i.store.inner.GetMemory(ext.Memory)}
}

// ExportedGlobal implements api.Module.
func (i *Instance) ExportedGlobal(name string) api.Global {
	ext, ok := i.inner.Exports()[name]
	if !ok || ext.Kind != wasm.ExternKindGlobal {
		return nil
	}
	g := i.store.inner.GetGlobal(ext.Global)
	if g.Type().Mutability == wasm.Var {
		return &hostMutableGlobal{g: g}
	}
	return &hostGlobal{g: g}
}

// Memory returns the module's conventionally-named "memory" export, or the
// first memory export found if none is named that, or nil.
func (i *Instance) Memory() api.Memory {
	if m := i.ExportedMemory("memory"); m != nil {
		return m
	}
	for name, ext := range i.inner.Exports() {
		if ext.Kind == wasm.ExternKindMemory {
			return i.ExportedMemory(name)
		}
	}
	return nil
}

// CloseWithExitCode implements api.Module. This runtime has no WASI process
// model (§1 non-goal), so exitCode is accepted for interface compatibility
// but otherwise unused: closing releases only this instance's own
// resources (§3, §4.7) — other instances in the same Store, including ones
// still live after this call, are untouched. Use Store.Close to tear down
// every instance at once.
func (i *Instance) CloseWithExitCode(ctx context.Context, exitCode uint32) error {
	return i.inner.Close()
}

// Close implements api.Closer.
func (i *Instance) Close(ctx context.Context) error {
	return i.CloseWithExitCode(ctx, 0)
}
