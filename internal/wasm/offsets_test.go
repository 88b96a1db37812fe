package wasm

import (
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
)

func TestNewVMOffsetsLayoutOrder(t *testing.T) {
	info := &ModuleInfo{
		ImportSection: []*Import{
			{Module: "env", Name: "f", Kind: ExternKindFunc, DescFunc: 0},
			{Module: "env", Name: "t", Kind: ExternKindTable, DescTable: &TableType{Element: RefTypeFuncref, Minimum: 1}},
			{Module: "env", Name: "m", Kind: ExternKindMemory, DescMem: &MemoryType{Minimum: 1}},
			{Module: "env", Name: "g", Kind: ExternKindGlobal, DescGlob: &GlobalType{Content: ValType(0x7f)}},
		},
		TableSection:      []*TableType{{Element: RefTypeFuncref, Minimum: 1}},
		MemorySection:      []*MemoryType{{Minimum: 1}},
		GlobalSection:      []*GlobalInit{{Type: Var, Content: ValType(0x7f)}},
		IndirectCallTypes: []*FunctionType{{}, {}},
	}

	o := NewVMOffsets(info)

	require.Equal(t, Offset(0), o.ImportedFunctionsBegin)
	require.True(t, o.ImportedTablesBegin > o.ImportedFunctionsBegin)
	require.True(t, o.ImportedMemoriesBegin > o.ImportedTablesBegin)
	require.True(t, o.ImportedGlobalsBegin > o.ImportedMemoriesBegin)
	require.True(t, o.DefinedTablesBegin > o.ImportedGlobalsBegin)
	require.True(t, o.DefinedMemoriesBegin > o.DefinedTablesBegin)
	require.True(t, o.DefinedGlobalsBegin > o.DefinedMemoriesBegin)
	require.True(t, o.BuiltinFunctionsBegin > o.DefinedGlobalsBegin)
	require.True(t, o.SignatureIdsBegin > o.BuiltinFunctionsBegin)
	require.True(t, o.SizeOfVMContext() > o.SignatureIdsBegin)

	require.Equal(t, o.ImportedFunctionsBegin, o.ImportedFunction(0))
	require.Equal(t, o.DefinedTablesBegin, o.DefinedTable(0))
	require.Equal(t, o.SignatureIdsBegin+4, o.SignatureID(1))
}

func TestVMOffsetsIndexOutOfRangePanics(t *testing.T) {
	o := NewVMOffsets(&ModuleInfo{})
	err := require.CapturePanic(func() { o.BuiltinFunction(NumBuiltinFunctions) })
	require.Error(t, err)
}

func TestVMOffsetsEmptyModule(t *testing.T) {
	o := NewVMOffsets(&ModuleInfo{})
	require.Equal(t, Offset(NumBuiltinFunctions*vmBuiltinFunctionSize), o.SizeOfVMContext())
}
