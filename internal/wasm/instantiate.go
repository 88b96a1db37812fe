package wasm

import "fmt"

// Extern is a tagged union over the four resource kinds an import or
// export can resolve to (§4.7 step 1, §6 "Extern = Function | Memory |
// Table | Global").
type Extern struct {
	Kind   ExternKind
	Func   StoreHandle[FunctionInstance]
	Table  StoreHandle[TableInstance]
	Memory StoreHandle[MemoryInstance]
	Global StoreHandle[GlobalInstance]
}

// Imports maps (namespace, name) to the Extern satisfying that import, as
// §4.7 requires ("Imports map keyed by (namespace, name)").
type Imports map[ImportKey]Extern

type ImportKey struct{ Module, Name string }

// Instance is a module's runtime footprint within one Store: its resolved
// import list, its own defined resources, and the published export map
// (§3, §4.7).
//
// Grounded on the teacher's internal/wasm/module_instance_test.go,
// module_exports_test.go and counts_test.go, which together exercise
// instantiation success/failure and the resulting exports map.
type Instance struct {
	store *Store
	info  *ModuleInfo
	alloc *InstanceAllocation

	// functions/tables/memories/globals are indexed by the module's index
	// namespace (imports first, then defined) exactly as §4.1 lays out the
	// trailing VMContext area.
	functions []StoreHandle[FunctionInstance]
	tables    []StoreHandle[TableInstance]
	memories  []StoreHandle[MemoryInstance]
	globals   []StoreHandle[GlobalInstance]

	exports map[string]Extern

	name string

	// ownFuncs/ownTables/ownMems/ownGlobals are the [start, end) ranges
	// within store.functions/tables/memories/globals that this instance's
	// own Instantiate call appended (imports resolve to handles that
	// already existed before the call and so fall outside these ranges).
	// Close uses them to release only this instance's resources, leaving
	// every other instance's indices undisturbed (§3, §4.7 "this module
	// instance will be removed").
	ownFuncs, ownTables, ownMems, ownGlobals [2]int

	closed bool
}

func (i *Instance) Name() string { return i.name }

// Exports returns the published export map (§4.7: "publish exports").
func (i *Instance) Exports() map[string]Extern { return i.exports }

func (i *Instance) Store() *Store { return i.store }

func (i *Instance) Function(idx Index) StoreHandle[FunctionInstance] { return i.functions[idx] }
func (i *Instance) Memory(idx Index) StoreHandle[MemoryInstance]     { return i.memories[idx] }
func (i *Instance) Table(idx Index) StoreHandle[TableInstance]       { return i.tables[idx] }
func (i *Instance) Global(idx Index) StoreHandle[GlobalInstance]     { return i.globals[idx] }

// Closed reports whether Close has already run on this instance.
func (i *Instance) Closed() bool { return i.closed }

// Close releases this instance's own resources — the functions, tables,
// memories and globals its own Instantiate call defined — back out of the
// store's arenas, without touching any other instance's entries (§3, §4.7:
// "releases resources allocated for this module ... this module instance
// will be removed"). A resource this instance merely imported (and so never
// owned) is left alone: it belongs to whichever instance or host Define
// call originally created it.
//
// Resources this instance exported and another instance subsequently
// imported are not tracked separately from the rest of its own resources;
// closing an instance whose exports are still imported elsewhere is a
// caller error this runtime does not currently detect (see DESIGN.md's
// known limitation under "Maintainer review pass" — full reference-counted release would need the kind of
// Rc/Arc bookkeeping original_source's allocator has and this arena-of-
// vectors port intentionally does not reproduce).
func (i *Instance) close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	for idx := i.ownFuncs[0]; idx < i.ownFuncs[1]; idx++ {
		i.store.functions[idx] = nil
	}
	for idx := i.ownTables[0]; idx < i.ownTables[1]; idx++ {
		i.store.tables[idx] = nil
	}
	for idx := i.ownMems[0]; idx < i.ownMems[1]; idx++ {
		if m := i.store.memories[idx]; m != nil {
			_ = m.close()
		}
		i.store.memories[idx] = nil
	}
	for idx := i.ownGlobals[0]; idx < i.ownGlobals[1]; idx++ {
		i.store.globals[idx] = nil
	}
	i.exports = nil
	return nil
}

// Close is the exported form of close, used by the root package's
// Instance.CloseWithExitCode instead of tearing down the whole Store.
func (i *Instance) Close() error { return i.close() }

// Instantiate runs the §4.7 pipeline in the exact step order the spec
// mandates, rolling back (returning the store's resource vectors to their
// pre-call length) on any failure.
func Instantiate(store *Store, info *ModuleInfo, artifact *Artifact, registry *FunctionRegistry, imports Imports, name string) (*Instance, error) {
	preMem, preTab, preGlob, preFunc := len(store.memories), len(store.tables), len(store.globals), len(store.functions)
	rollback := func() {
		store.memories = store.memories[:preMem]
		store.tables = store.tables[:preTab]
		store.globals = store.globals[:preGlob]
		store.functions = store.functions[:preFunc]
	}

	inst := &Instance{store: store, info: info, name: name}

	// Step 1: resolve imports.
	for _, imp := range info.ImportSection {
		ext, ok := imports[ImportKey{Module: imp.Module, Name: imp.Name}]
		if !ok {
			rollback()
			return nil, &LinkError{Code: MissingImport, Module: imp.Module, Name: imp.Name}
		}
		if ext.Kind != imp.Kind {
			rollback()
			return nil, &LinkError{Code: IncompatibleType, Module: imp.Module, Name: imp.Name,
				Detail: fmt.Sprintf("expected %s, got %s", imp.Kind, ext.Kind)}
		}
		switch imp.Kind {
		case ExternKindFunc:
			got := store.GetFunction(ext.Func).Type
			want := info.TypeSection[imp.DescFunc]
			if !got.Equals(want) {
				rollback()
				return nil, &LinkError{Code: IncompatibleType, Module: imp.Module, Name: imp.Name, Detail: "function signature mismatch"}
			}
			inst.functions = append(inst.functions, ext.Func)
		case ExternKindTable:
			got := store.GetTable(ext.Table).Ty()
			if got.Element != imp.DescTable.Element || got.Minimum < imp.DescTable.Minimum {
				rollback()
				return nil, &LinkError{Code: IncompatibleType, Module: imp.Module, Name: imp.Name, Detail: "table type mismatch"}
			}
			inst.tables = append(inst.tables, ext.Table)
		case ExternKindMemory:
			got := store.GetMemory(ext.Memory).Ty()
			if got.Minimum < imp.DescMem.Minimum {
				rollback()
				return nil, &LinkError{Code: IncompatibleType, Module: imp.Module, Name: imp.Name, Detail: "memory type mismatch"}
			}
			inst.memories = append(inst.memories, ext.Memory)
		case ExternKindGlobal:
			got := store.GetGlobal(ext.Global).Type()
			if got != *imp.DescGlob {
				rollback()
				return nil, &LinkError{Code: IncompatibleType, Module: imp.Module, Name: imp.Name, Detail: "global type mismatch"}
			}
			inst.globals = append(inst.globals, ext.Global)
		}
	}

	// Step 2: allocate the instance buffer.
	offsets := NewVMOffsets(info)
	inst.alloc = Allocate(offsets)

	// Resolve defined function bodies against the artifact (§1 EXPANSION,
	// §4.11 headless engine) and register them in the function index
	// namespace immediately after the imported functions.
	bodies, err := artifact.Resolve(registry)
	if err != nil {
		rollback()
		return nil, err
	}
	for i, body := range bodies {
		typeIdx := info.FunctionSection[i]
		fn := &FunctionInstance{
			Type:       info.TypeSection[typeIdx],
			Kind:       FunctionKindDefined,
			Defined:    body,
			ModuleName: name,
			Index:      Index(len(inst.functions)),
		}
		inst.functions = append(inst.functions, store.addFunction(fn))
	}

	// Step 3: defined memories/tables/globals.
	for idx, mt := range info.MemorySection {
		m, err := NewMemoryInstance(store.id, *mt, store.tunables)
		if err != nil {
			rollback()
			return nil, err
		}
		inst.alloc.setDefinedMemoryLength(Index(idx), m.def.CurrentLength)
		inst.memories = append(inst.memories, store.addMemory(m))
	}
	for idx, tt := range info.TableSection {
		t := NewTableInstance(store.id, *tt)
		inst.alloc.setDefinedTableElements(Index(idx), uint64(t.Size()))
		inst.tables = append(inst.tables, store.addTable(t))
	}
	for idx, gi := range info.GlobalSection {
		v := gi.Init.Eval(globalInstances(store, inst.globals))
		g := NewGlobalInstance(store.id, gi.GlobalType(), v)
		inst.alloc.setDefinedGlobal(Index(idx), v)
		inst.globals = append(inst.globals, store.addGlobal(g))
	}

	// Step 4: imported resources were already appended to inst.* in step 1
	// in declaration order, which this runtime treats as satisfying the
	// "write the referenced definition pointer" requirement: instead of
	// literal pointers, the trailing handle slices *are* the indirection
	// compiled code would otherwise dereference.

	// Step 5: data segments.
	for _, seg := range info.DataSection {
		mem := store.GetMemory(inst.memories[seg.MemoryIndex])
		off := seg.Offset.Eval(globalInstances(store, inst.globals))
		if err := mem.Write(off, seg.Init); err != nil {
			rollback()
			return nil, &InstantiationError{Code: DataSegmentOutOfBounds, Err: err}
		}
	}

	// Step 6: element segments.
	for _, seg := range info.ElementSection {
		tbl := store.GetTable(inst.tables[seg.TableIndex])
		off := seg.Offset.Eval(globalInstances(store, inst.globals))
		for i, fidx := range seg.Init {
			var elem TableElement
			if fidx >= 0 {
				h := inst.functions[fidx]
				elem = TableElement{FuncRef: &h}
			}
			idx := off + uint64(i)
			if idx > uint64(^uint32(0)) {
				rollback()
				return nil, &InstantiationError{Code: ElementSegmentOutOfBounds}
			}
			if err := tbl.Set(uint32(idx), elem); err != nil {
				rollback()
				return nil, &InstantiationError{Code: ElementSegmentOutOfBounds}
			}
		}
	}

	// Step 7: finalize shared signature registry.
	for idx, ft := range info.IndirectCallTypes {
		id := store.sigs.Intern(ft)
		inst.alloc.setSignatureID(Index(idx), id)
	}

	inst.alloc.consume()

	// Step 8: run the start function, if present.
	if info.StartFunc != nil {
		fn := store.GetFunction(inst.functions[*info.StartFunc])
		if _, err := Call(nil, store, inst, fn, nil); err != nil {
			rollback()
			return nil, &InstantiationError{Code: StartTrap, Err: err}
		}
	}

	// Publish exports.
	inst.exports = make(map[string]Extern, len(info.ExportSection))
	for _, exp := range info.ExportSection {
		var ext Extern
		ext.Kind = exp.Kind
		switch exp.Kind {
		case ExternKindFunc:
			ext.Func = inst.functions[exp.Index]
		case ExternKindTable:
			ext.Table = inst.tables[exp.Index]
		case ExternKindMemory:
			ext.Memory = inst.memories[exp.Index]
		case ExternKindGlobal:
			ext.Global = inst.globals[exp.Index]
		}
		inst.exports[exp.Name] = ext
	}

	inst.ownFuncs = [2]int{preFunc, len(store.functions)}
	inst.ownTables = [2]int{preTab, len(store.tables)}
	inst.ownMems = [2]int{preMem, len(store.memories)}
	inst.ownGlobals = [2]int{preGlob, len(store.globals)}

	store.addInstance(inst)
	return inst, nil
}

// globalInstances resolves a set of handles to their *GlobalInstance,
// lazily, for ConstExpr.Eval's imported-global lookup (§4.7 step 5).
func globalInstances(store *Store, handles []StoreHandle[GlobalInstance]) []*GlobalInstance {
	out := make([]*GlobalInstance, len(handles))
	for i, h := range handles {
		out[i] = store.GetGlobal(h)
	}
	return out
}
