package corevm_test

import (
	"context"
	"testing"

	corevm "github.com/wazerocore/corevm"
	"github.com/wazerocore/corevm/internal/testing/require"
	"github.com/wazerocore/corevm/internal/wasm"
)

func doubleModule(t testing.TB, eng *corevm.Engine) *corevm.Module {
	eng.Registry().Register("double", func(ctx context.Context, inst *wasm.Instance, args []uint64) ([]uint64, error) {
		return []uint64{args[0] * 2}, nil
	})
	info := &wasm.ModuleInfo{
		Name:            "m",
		TypeSection:     []*wasm.FunctionType{{Params: []wasm.ValType{wasm.ValType(0x7f)}, Results: []wasm.ValType{wasm.ValType(0x7f)}}},
		FunctionSection: []wasm.Index{0},
		ExportSection:   []*wasm.Export{{Name: "double", Kind: wasm.ExternKindFunc, Index: 0}},
	}
	mod, err := corevm.NewModule(eng, info, &wasm.Artifact{FunctionSymbols: []string{"double"}})
	require.NoError(t, err)
	return mod
}

func TestEngineDeterministicIDIncludesFeatures(t *testing.T) {
	a := corevm.NewEngine(corevm.NewEngineConfig())
	cfg := corevm.NewEngineConfig()
	cfg.Features = []string{"hugepages"}
	b := corevm.NewEngine(cfg)
	require.True(t, a.DeterministicID() != b.DeterministicID())
}

func TestNewModuleRejectsSymbolCountMismatch(t *testing.T) {
	eng := corevm.NewEngine(corevm.NewEngineConfig())
	info := &wasm.ModuleInfo{
		TypeSection:     []*wasm.FunctionType{{}},
		FunctionSection: []wasm.Index{0},
	}
	_, err := corevm.NewModule(eng, info, &wasm.Artifact{})
	require.Error(t, err)
}

func TestInstantiateAndCallExportedFunction(t *testing.T) {
	eng := corevm.NewEngine(corevm.NewEngineConfig())
	mod := doubleModule(t, eng)
	store := corevm.NewStore(eng)
	inst, err := corevm.Instantiate(store, mod, nil)
	require.NoError(t, err)

	fn := inst.ExportedFunction("double")
	require.True(t, fn != nil)
	results, err := fn.Call(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, uint64(42), results[0])
}

func TestExportedFunctionMissingReturnsNil(t *testing.T) {
	eng := corevm.NewEngine(corevm.NewEngineConfig())
	mod := doubleModule(t, eng)
	store := corevm.NewStore(eng)
	inst, err := corevm.Instantiate(store, mod, nil)
	require.NoError(t, err)
	require.True(t, inst.ExportedFunction("nope") == nil)
}

func TestModuleSerializeDeserializeRoundTrip(t *testing.T) {
	eng := corevm.NewEngine(corevm.NewEngineConfig())
	mod := doubleModule(t, eng)

	b, err := mod.Serialize()
	require.NoError(t, err)

	got, err := corevm.DeserializeModule(eng, b)
	require.NoError(t, err)

	store := corevm.NewStore(eng)
	inst, err := corevm.Instantiate(store, got, nil)
	require.NoError(t, err)
	fn := inst.ExportedFunction("double")
	results, err := fn.Call(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, uint64(20), results[0])
}

func TestInstanceCloseIsIdempotent(t *testing.T) {
	eng := corevm.NewEngine(corevm.NewEngineConfig())
	mod := doubleModule(t, eng)
	store := corevm.NewStore(eng)
	inst, err := corevm.Instantiate(store, mod, nil)
	require.NoError(t, err)
	require.NoError(t, inst.Close(context.Background()))
	require.NoError(t, inst.Close(context.Background()))
}

func TestInstanceCloseLeavesOtherInstancesInTheSameStoreUsable(t *testing.T) {
	eng := corevm.NewEngine(corevm.NewEngineConfig())
	mod := doubleModule(t, eng)
	store := corevm.NewStore(eng)

	first, err := corevm.Instantiate(store, mod, nil)
	require.NoError(t, err)
	second, err := corevm.Instantiate(store, mod, nil)
	require.NoError(t, err)

	require.NoError(t, first.Close(context.Background()))

	fn := second.ExportedFunction("double")
	require.True(t, fn != nil)
	results, err := fn.Call(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, uint64(42), results[0])
}

func TestInstanceCloseReleasesItsOwnExportedFunction(t *testing.T) {
	eng := corevm.NewEngine(corevm.NewEngineConfig())
	mod := doubleModule(t, eng)
	store := corevm.NewStore(eng)
	inst, err := corevm.Instantiate(store, mod, nil)
	require.NoError(t, err)

	require.NoError(t, inst.Close(context.Background()))
	require.True(t, inst.ExportedFunction("double") == nil)
}
