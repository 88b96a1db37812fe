package wasm

import (
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
)

func TestGlobalInstanceGetSet(t *testing.T) {
	g := NewGlobalInstance(1, GlobalType{Content: ValType(0x7f), Mutability: Var}, 5)
	require.Equal(t, uint64(5), g.Get())

	g.Set(10)
	require.Equal(t, uint64(10), g.Get())
}

func TestGlobalInstanceSetImmutablePanics(t *testing.T) {
	g := NewGlobalInstance(1, GlobalType{Content: ValType(0x7f), Mutability: Const}, 5)
	err := require.CapturePanic(func() { g.Set(1) })
	require.Error(t, err)
	require.Equal(t, uint64(5), g.Get())
}

func TestGlobalInstanceTrySet(t *testing.T) {
	mut := NewGlobalInstance(1, GlobalType{Mutability: Var}, 0)
	require.NoError(t, mut.TrySet(42))
	require.Equal(t, uint64(42), mut.Get())

	immut := NewGlobalInstance(1, GlobalType{Mutability: Const}, 0)
	err := immut.TrySet(1)
	require.ErrorIs(t, err, ErrImmutableGlobal)
}
