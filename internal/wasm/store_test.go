package wasm

import (
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
)

func TestNewStoreRejectsSmallStaticGuard(t *testing.T) {
	tunables := DefaultTunables()
	tunables.StaticMemoryGuardBytes = 1 << 10

	err := require.CapturePanic(func() {
		NewStore(tunables)
	})
	require.Error(t, err)
}

func TestStoreHandleCrossStoreAccess(t *testing.T) {
	s1 := NewStore(DefaultTunables())
	s2 := NewStore(DefaultTunables())

	h := s1.DefineGlobal(NewGlobalInstance(s1.id, GlobalType{Content: ValType(0x7f), Mutability: Const}, 42))

	require.Equal(t, uint64(42), s1.GetGlobal(h).Get())

	err := require.CapturePanic(func() {
		s2.GetGlobal(h)
	})
	require.ErrorIs(t, err, ErrCrossStoreAccess)
}

func TestStoreHandleZeroValuePanics(t *testing.T) {
	s := NewStore(DefaultTunables())
	var h StoreHandle[GlobalInstance]
	require.True(t, h.IsZero())

	err := require.CapturePanic(func() {
		s.GetGlobal(h)
	})
	require.Error(t, err)
}

func TestTryGetMemoryDoesNotPanic(t *testing.T) {
	s1 := NewStore(DefaultTunables())
	s2 := NewStore(DefaultTunables())

	m, err := NewMemoryInstance(s1.id, MemoryType{Minimum: 1}, s1.tunables)
	require.NoError(t, err)
	h := s1.DefineMemory(m)

	got, err := s1.TryGetMemory(h)
	require.NoError(t, err)
	require.Same(t, m, got)

	_, err = s2.TryGetMemory(h)
	require.ErrorIs(t, err, ErrCrossStoreAccess)
}

func TestGet2MutRejectsIdenticalHandles(t *testing.T) {
	s := NewStore(DefaultTunables())
	m, err := NewMemoryInstance(s.id, MemoryType{Minimum: 1}, s.tunables)
	require.NoError(t, err)
	h := s.DefineMemory(m)

	err = require.CapturePanic(func() {
		s.Get2Mut(h, h)
	})
	require.Error(t, err)
}

func TestDefineHelpersRegisterIntoArena(t *testing.T) {
	s := NewStore(DefaultTunables())

	fh := s.DefineFunction(&FunctionInstance{Type: &FunctionType{}, Kind: FunctionKindHost})
	require.False(t, fh.IsZero())
	require.NotNil(t, s.GetFunction(fh))

	th := s.DefineTable(NewTableInstance(s.id, TableType{Element: RefTypeFuncref, Minimum: 1}))
	require.False(t, th.IsZero())
	require.Equal(t, uint32(1), s.GetTable(th).Size())

	m, err := NewMemoryInstance(s.id, MemoryType{Minimum: 1}, s.tunables)
	mh := s.DefineMemory(must(t, m, err))
	require.False(t, mh.IsZero())
	require.Equal(t, Pages(1), s.GetMemory(mh).Size())

	gh := s.DefineGlobal(NewGlobalInstance(s.id, GlobalType{}, 7))
	require.False(t, gh.IsZero())
	require.Equal(t, uint64(7), s.GetGlobal(gh).Get())
}

func must(t *testing.T, m *MemoryInstance, err error) *MemoryInstance {
	t.Helper()
	require.NoError(t, err)
	return m
}

func TestStoreCloseClearsArenas(t *testing.T) {
	s := NewStore(DefaultTunables())
	s.DefineFunction(&FunctionInstance{Type: &FunctionType{}, Kind: FunctionKindHost})
	s.DefineTable(NewTableInstance(s.id, TableType{Element: RefTypeFuncref}))
	m, err := NewMemoryInstance(s.id, MemoryType{Minimum: 1}, s.tunables)
	require.NoError(t, err)
	s.DefineMemory(m)
	s.DefineGlobal(NewGlobalInstance(s.id, GlobalType{}, 0))

	require.NoError(t, s.Close())
	require.Len(t, s.functions, 0)
	require.Len(t, s.tables, 0)
	require.Len(t, s.memories, 0)
	require.Len(t, s.globals, 0)
}
