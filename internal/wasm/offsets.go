package wasm

// Offset is a byte offset of a field within VMContext. Generalized from the
// teacher's single-engine-specific wazevoapi.Offset (int32) into the full
// VMContext field catalogue of §4.1.
type Offset uint32

const (
	ptrSize = 8 // this runtime targets 64-bit hosts only, as the teacher does for its compiler backends.

	vmFunctionImportSize   = 16 // body *uint8 + vmctx *VMContext
	vmTableImportSize      = 16 // definition *VMTableDefinition + vmctx *VMContext
	vmMemoryImportSize     = 16
	vmGlobalImportSize     = 16
	vmTableDefinitionSize  = 16 // base *uint8 + currentElements uint64
	vmMemoryDefinitionSize = 16 // base *uint8 + currentLength uint64
	vmGlobalDefinitionSize = 16 // 128-bit cell
	vmSignatureIDSize      = 4
	vmBuiltinFunctionSize  = 8

	// NumBuiltinFunctions is the fixed-size table of runtime-helper pointers
	// named in §4.1: memory.grow, table.grow, trap builtins, signal helpers.
	NumBuiltinFunctions = 8
)

// VMOffsets is a pure computation from (pointer size, ModuleInfo) to the
// byte layout of the trailing VMContext array, per §4.1. It is the ABI
// between an (external, non-goal) compiler's generated code and this
// runtime: both sides must agree on every offset here.
//
// Grounded on the teacher's internal/engine/wazevo/wazevoapi.offsetdata.go,
// whose ModuleContextOffsetData computes a comparable but engine-private
// layout (local/imported memory, imported functions, globals, tables) for
// wazevo's own opaque "moduleContextOpaque". This type generalizes that
// shape to the full VMContext field list spec.md §4.1 requires, independent
// of any one compiler backend.
type VMOffsets struct {
	PointerSize Offset

	ImportedFunctionsBegin Offset
	numImportedFunctions   Index

	ImportedTablesBegin Offset
	numImportedTables    Index

	ImportedMemoriesBegin Offset
	numImportedMemories   Index

	ImportedGlobalsBegin Offset
	numImportedGlobals   Index

	DefinedTablesBegin Offset
	numDefinedTables   Index

	DefinedMemoriesBegin Offset
	numDefinedMemories   Index

	DefinedGlobalsBegin Offset
	numDefinedGlobals   Index

	BuiltinFunctionsBegin Offset

	SignatureIdsBegin Offset
	numSignatureIds   Index

	size Offset
}

// NewVMOffsets computes the VMContext layout for a module. Field order
// follows §4.1 exactly: imported functions, tables, memories, globals; then
// defined tables, memories, globals; then the builtin function table; then
// signature ids.
func NewVMOffsets(m *ModuleInfo) *VMOffsets {
	impFuncs, impTables, impMems, impGlobals := m.importCounts()

	o := &VMOffsets{
		PointerSize:        ptrSize,
		numImportedFunctions: impFuncs,
		numImportedTables:    impTables,
		numImportedMemories:  impMems,
		numImportedGlobals:   impGlobals,
		numDefinedTables:     Index(len(m.TableSection)),
		numDefinedMemories:   Index(len(m.MemorySection)),
		numDefinedGlobals:    Index(len(m.GlobalSection)),
		numSignatureIds:      Index(len(m.IndirectCallTypes)),
	}

	off := Offset(0)
	o.ImportedFunctionsBegin = off
	off += Offset(impFuncs) * vmFunctionImportSize

	o.ImportedTablesBegin = off
	off += Offset(impTables) * vmTableImportSize

	o.ImportedMemoriesBegin = off
	off += Offset(impMems) * vmMemoryImportSize

	o.ImportedGlobalsBegin = off
	off += Offset(impGlobals) * vmGlobalImportSize

	o.DefinedTablesBegin = off
	off += Offset(len(m.TableSection)) * vmTableDefinitionSize

	o.DefinedMemoriesBegin = off
	off += Offset(len(m.MemorySection)) * vmMemoryDefinitionSize

	o.DefinedGlobalsBegin = off
	off += Offset(len(m.GlobalSection)) * vmGlobalDefinitionSize

	o.BuiltinFunctionsBegin = off
	off += NumBuiltinFunctions * vmBuiltinFunctionSize

	o.SignatureIdsBegin = off
	off += Offset(o.numSignatureIds) * vmSignatureIDSize

	o.size = off
	return o
}

// SizeOfVMContext is the total byte size of the trailing VMContext array
// this Instance's allocation must reserve.
func (o *VMOffsets) SizeOfVMContext() Offset { return o.size }

// ImportedFunction returns the offset of the i-th imported function's
// VMFunctionImport{body, vmctx} pair.
func (o *VMOffsets) ImportedFunction(i Index) Offset {
	mustIndex(i, o.numImportedFunctions)
	return o.ImportedFunctionsBegin + Offset(i)*vmFunctionImportSize
}

// ImportedTable returns the offset of the i-th imported table's
// VMTableImport{definition, vmctx} pair.
func (o *VMOffsets) ImportedTable(i Index) Offset {
	mustIndex(i, o.numImportedTables)
	return o.ImportedTablesBegin + Offset(i)*vmTableImportSize
}

// ImportedMemory returns the offset of the i-th imported memory's
// VMMemoryImport pair.
func (o *VMOffsets) ImportedMemory(i Index) Offset {
	mustIndex(i, o.numImportedMemories)
	return o.ImportedMemoriesBegin + Offset(i)*vmMemoryImportSize
}

// ImportedGlobal returns the offset of the i-th imported global's
// VMGlobalImport pair.
func (o *VMOffsets) ImportedGlobal(i Index) Offset {
	mustIndex(i, o.numImportedGlobals)
	return o.ImportedGlobalsBegin + Offset(i)*vmGlobalImportSize
}

// DefinedTable returns the offset of the i-th defined table's
// VMTableDefinition{base, currentElements}.
func (o *VMOffsets) DefinedTable(i Index) Offset {
	mustIndex(i, o.numDefinedTables)
	return o.DefinedTablesBegin + Offset(i)*vmTableDefinitionSize
}

// DefinedMemory returns the offset of the i-th defined memory's
// VMMemoryDefinition{base, currentLength}.
func (o *VMOffsets) DefinedMemory(i Index) Offset {
	mustIndex(i, o.numDefinedMemories)
	return o.DefinedMemoriesBegin + Offset(i)*vmMemoryDefinitionSize
}

// DefinedGlobal returns the offset of the i-th defined global's cell.
func (o *VMOffsets) DefinedGlobal(i Index) Offset {
	mustIndex(i, o.numDefinedGlobals)
	return o.DefinedGlobalsBegin + Offset(i)*vmGlobalDefinitionSize
}

// BuiltinFunction returns the offset of the i-th runtime-helper pointer
// (memory.grow, table.grow, trap builtins, signal helpers).
func (o *VMOffsets) BuiltinFunction(i Index) Offset {
	mustIndex(i, NumBuiltinFunctions)
	return o.BuiltinFunctionsBegin + Offset(i)*vmBuiltinFunctionSize
}

// SignatureID returns the offset of the i-th VMSharedSignatureIndex, one per
// signature used by an indirect call site in this module (§4.1, §4.7 step 7).
func (o *VMOffsets) SignatureID(i Index) Offset {
	mustIndex(i, o.numSignatureIds)
	return o.SignatureIdsBegin + Offset(i)*vmSignatureIDSize
}

func mustIndex(i, n Index) {
	if i >= n {
		panic("BUG: VMOffsets index out of range")
	}
}
