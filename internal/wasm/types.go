// Package wasm implements the core execution runtime described in
// SPEC_FULL.md: the store/instance/memory/table/global object graph, the
// VMContext layout consumed by compiled function bodies, and the trap model.
//
// This package never decodes a .wasm binary or Wasm text module: it receives
// an already-validated ModuleInfo, exactly as a real parser/validator would
// hand one to it. See SPEC_FULL.md §1 for why.
package wasm

import "github.com/wazerocore/corevm/api"

// Index is a position in one of a module's index namespaces (function,
// table, memory, global, type).
type Index = uint32

// ValType is re-exported from api so this package has a single name for the
// value universe of §3: i32, i64, f32, f64, v128, funcref, externref, exnref.
type ValType = api.ValueType

// FunctionType is an ordered signature: params and results.
type FunctionType struct {
	Params  []ValType
	Results []ValType
}

// Equals reports whether two signatures describe the same parameter and
// result sequence. Used by the indirect-call bad-signature check (§4.10
// BadSignature) once each side has been resolved to an interned ID, but also
// directly wherever an uninterned comparison is convenient (e.g. import
// linking, §4.7 step 1).
func (f *FunctionType) Equals(o *FunctionType) bool {
	if f == o {
		return true
	}
	if f == nil || o == nil {
		return false
	}
	return string(f.Params) == string(o.Params) && string(f.Results) == string(o.Results)
}

func (f *FunctionType) String() string {
	return typeKey(f.Params, f.Results)
}

func typeKey(params, results []ValType) string {
	b := make([]byte, 0, len(params)+len(results)+1)
	b = append(b, params...)
	b = append(b, '>')
	b = append(b, results...)
	return string(b)
}

// Page is the granularity of linear memory sizing: 65536 bytes.
const Page = 65536

// Pages is a count of Page-sized units.
type Pages = uint32

// MemoryType describes a memory import/export/definition.
type MemoryType struct {
	Minimum  Pages
	Maximum  *Pages // nil means "implementation limit"
	Shared   bool
	Memory64 bool
}

// RefType distinguishes the two reference types a table may hold.
type RefType byte

const (
	RefTypeFuncref   RefType = RefType(api.ValueTypeFuncref)
	RefTypeExternref RefType = RefType(api.ValueTypeExternref)
)

// TableType describes a table import/export/definition.
type TableType struct {
	Element RefType
	Minimum uint32
	Maximum *uint32
}

// Mutability of a GlobalType.
type Mutability byte

const (
	Const Mutability = 0
	Var   Mutability = 1
)

// GlobalType describes a global import/export/definition.
type GlobalType struct {
	Content    ValType
	Mutability Mutability
}

// ExternKind classifies an Import or Export.
type ExternKind byte

const (
	ExternKindFunc ExternKind = iota
	ExternKindTable
	ExternKindMemory
	ExternKindGlobal
)

func (k ExternKind) String() string {
	switch k {
	case ExternKindFunc:
		return "func"
	case ExternKindTable:
		return "table"
	case ExternKindMemory:
		return "memory"
	case ExternKindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Import is one entry of ModuleInfo.ImportSection.
type Import struct {
	Module, Name string
	Kind         ExternKind
	// DescFunc indexes TypeSection when Kind == ExternKindFunc.
	DescFunc  Index
	DescTable *TableType
	DescMem   *MemoryType
	DescGlob  *GlobalType
}

// Export is one entry of ModuleInfo.ExportSection.
type Export struct {
	Name  string
	Kind  ExternKind
	Index Index
}

// ConstExpr is a constant expression used for a global initializer or a
// data/element segment offset. The parser/validator (non-goal, §1) has
// already reduced it to one of these two evaluated shapes.
type ConstExpr struct {
	// I64 holds the evaluated constant value, reinterpreted per the
	// target's ValType, when GlobalIndex is negative.
	I64 uint64
	// GlobalIndex, when >= 0, means "evaluate against the current value of
	// this already-linked imported global" per §4.7 step 5.
	GlobalIndex int64
}

// Eval resolves a ConstExpr against the globals already linked into an
// instance: its global index namespace as built so far (imports first,
// then whichever defined globals have been created). Instantiate evaluates
// data and element segment offsets after all defined globals exist.
func (c ConstExpr) Eval(linkedGlobals []*GlobalInstance) uint64 {
	if c.GlobalIndex < 0 {
		return c.I64
	}
	return linkedGlobals[c.GlobalIndex].Get()
}

// DataSegment is one entry of ModuleInfo.DataSection.
type DataSegment struct {
	MemoryIndex Index
	Offset      ConstExpr
	Init        []byte
}

// ElementSegment is one entry of ModuleInfo.ElementSection.
type ElementSegment struct {
	TableIndex Index
	Offset     ConstExpr
	// Init is a sequence of function indexes (or -1 for a null element).
	Init []int64
}

// ModuleInfo is the already-validated description of a module that the core
// instantiates. It is the "ModuleInfo" named throughout spec.md §1/§4.7 —
// the output of the external parser/validator, not decoded here.
type ModuleInfo struct {
	TypeSection    []*FunctionType
	ImportSection  []*Import
	FunctionSection []Index // index into TypeSection, one per defined function
	TableSection   []*TableType
	MemorySection  []*MemoryType
	GlobalSection  []*GlobalInit
	ExportSection  []*Export
	StartFunc      *Index
	DataSection    []*DataSegment
	ElementSection []*ElementSegment
	// IndirectCallTypes lists, in the order first encountered, every
	// FunctionType used by a call_indirect site in this module — consumed
	// by §4.7 step 7 to populate the shared signature registry.
	IndirectCallTypes []*FunctionType
	Name              string
}

// GlobalInit pairs a GlobalType with its initializer for a defined global.
type GlobalInit struct {
	Type Mutability
	Content ValType
	Init    ConstExpr
}

func (g *GlobalInit) GlobalType() GlobalType {
	return GlobalType{Content: g.Content, Mutability: g.Type}
}

// counts used repeatedly by offsets.go and instantiate.go.
func (m *ModuleInfo) importCounts() (funcs, tables, mems, globals Index) {
	for _, imp := range m.ImportSection {
		switch imp.Kind {
		case ExternKindFunc:
			funcs++
		case ExternKindTable:
			tables++
		case ExternKindMemory:
			mems++
		case ExternKindGlobal:
			globals++
		}
	}
	return
}
