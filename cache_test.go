package corevm_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	corevm "github.com/wazerocore/corevm"
	"github.com/wazerocore/corevm/internal/testing/require"
	"github.com/wazerocore/corevm/internal/wasm"
)

func TestCachePutGetRoundTrip(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "corevm-cache-test")
	defer os.RemoveAll(dir)

	eng := corevm.NewEngine(corevm.NewEngineConfig())
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

	cache, err := corevm.NewCache(dir, eng)
	require.NoError(t, err)

	key, err := cache.Put(mod)
	require.NoError(t, err)

	got, err := cache.Get(eng, key)
	require.NoError(t, err)

	store := corevm.NewStore(eng)
	inst, err := corevm.Instantiate(store, got, nil)
	require.NoError(t, err)
	fn := inst.ExportedFunction("double")
	results, err := fn.Call(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, uint64(10), results[0])
}

func TestCacheGetMissingKeyReturnsNotExist(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "corevm-cache-test-missing")
	defer os.RemoveAll(dir)

	eng := corevm.NewEngine(corevm.NewEngineConfig())
	cache, err := corevm.NewCache(dir, eng)
	require.NoError(t, err)

	_, err = cache.Get(eng, "does-not-exist")
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestNewCacheIsolatesByDeterministicID(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "corevm-cache-test-isolate")
	defer os.RemoveAll(dir)

	a := corevm.NewEngine(corevm.NewEngineConfig())
	cfgB := corevm.NewEngineConfig()
	cfgB.Features = []string{"hugepages"}
	b := corevm.NewEngine(cfgB)

	cacheA, err := corevm.NewCache(dir, a)
	require.NoError(t, err)
	cacheB, err := corevm.NewCache(dir, b)
	require.NoError(t, err)

	info := &wasm.ModuleInfo{Name: "m"}
	modA, err := corevm.NewModule(a, info, &wasm.Artifact{})
	require.NoError(t, err)

	key, err := cacheA.Put(modA)
	require.NoError(t, err)

	_, err = cacheB.Get(b, key)
	require.Error(t, err)
}
