package wasm

import (
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
)

func TestNewMemoryInstanceRejectsMinimumExceedsMaximum(t *testing.T) {
	max := Pages(1)
	_, err := NewMemoryInstance(1, MemoryType{Minimum: 2, Maximum: &max}, DefaultTunables())
	require.Error(t, err)
	require.Equal(t, MinimumExceedsMaximum, err.(*MemoryError).Code)
}

func TestMemoryInstanceStaticVsDynamicStyle(t *testing.T) {
	tunables := DefaultTunables()
	small := Pages(4)

	staticMem, err := NewMemoryInstance(1, MemoryType{Minimum: 1, Maximum: &small}, tunables)
	require.NoError(t, err)
	require.Equal(t, styleStatic, staticMem.style)

	dynamicMem, err := NewMemoryInstance(1, MemoryType{Minimum: 1}, tunables)
	require.NoError(t, err)
	require.Equal(t, styleDynamic, dynamicMem.style)
}

func TestMemoryInstanceGrow(t *testing.T) {
	max := Pages(4)
	m, err := NewMemoryInstance(1, MemoryType{Minimum: 1, Maximum: &max}, DefaultTunables())
	require.NoError(t, err)

	prev, err := m.Grow(2)
	require.NoError(t, err)
	require.Equal(t, Pages(1), prev)
	require.Equal(t, Pages(3), m.Size())

	_, err = m.Grow(2)
	require.Error(t, err)
	require.Equal(t, CouldNotGrow, err.(*MemoryError).Code)
}

func TestMemoryInstanceStaticGrowKeepsBaseAddressStable(t *testing.T) {
	max := Pages(4)
	m, err := NewMemoryInstance(1, MemoryType{Minimum: 1, Maximum: &max}, DefaultTunables())
	require.NoError(t, err)
	require.Equal(t, styleStatic, m.style)

	before := &m.def.Base[0]
	_, err = m.Grow(2)
	require.NoError(t, err)
	after := &m.def.Base[0]
	require.Same(t, before, after)
}

func TestMemoryInstanceDynamicGrowMovesBase(t *testing.T) {
	m, err := NewMemoryInstance(1, MemoryType{Minimum: 1}, DefaultTunables())
	require.NoError(t, err)
	require.Equal(t, styleDynamic, m.style)

	before := &m.def.Base[0]
	_, err = m.Grow(2)
	require.NoError(t, err)
	after := &m.def.Base[0]
	require.True(t, before != after)
}

func TestMemoryInstanceGuardBytesFoldedIntoReservation(t *testing.T) {
	max := Pages(4)
	tunables := DefaultTunables()
	tunables.StaticMemoryGuardBytes = minStaticGuardBytes64
	m, err := NewMemoryInstance(1, MemoryType{Minimum: 1, Maximum: &max}, tunables)
	require.NoError(t, err)
	require.Equal(t, uint64(minStaticGuardBytes64), m.GuardBytes())
	require.True(t, uint64(cap(m.def.Base)) >= uint64(max)*Page+m.GuardBytes())
}

func TestMemoryInstanceGrowZeroIsNoOp(t *testing.T) {
	m, err := NewMemoryInstance(1, MemoryType{Minimum: 1}, DefaultTunables())
	require.NoError(t, err)
	prev, err := m.Grow(0)
	require.NoError(t, err)
	require.Equal(t, Pages(1), prev)
}

func TestMemoryInstanceReadWrite(t *testing.T) {
	m, err := NewMemoryInstance(1, MemoryType{Minimum: 1}, DefaultTunables())
	require.NoError(t, err)

	require.NoError(t, m.Write(0, []byte{1, 2, 3, 4}))
	buf := make([]byte, 4)
	require.NoError(t, m.Read(0, buf))
	require.Equal(t, []byte{1, 2, 3, 4}, buf)

	err = m.Read(Page-2, make([]byte, 4))
	require.Error(t, err)
	require.Equal(t, AccessHeapOutOfBounds, err.(*MemoryAccessError).Code)
}

func TestMemoryInstanceCopyToMemory(t *testing.T) {
	src, err := NewMemoryInstance(1, MemoryType{Minimum: 1}, DefaultTunables())
	require.NoError(t, err)
	dst, err := NewMemoryInstance(1, MemoryType{Minimum: 1}, DefaultTunables())
	require.NoError(t, err)

	payload := make([]byte, copyChunkBytes+10)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, src.Write(0, payload))
	require.NoError(t, src.CopyToMemory(0, dst, 0, uint64(len(payload))))

	got := make([]byte, len(payload))
	require.NoError(t, dst.Read(0, got))
	require.Equal(t, payload, got)
}

func TestMemoryInstanceCopyToNewStore(t *testing.T) {
	src, err := NewMemoryInstance(1, MemoryType{Minimum: 1}, DefaultTunables())
	require.NoError(t, err)
	require.NoError(t, src.Write(0, []byte{9, 9, 9}))

	dstStore := NewStore(DefaultTunables())
	dup, err := src.CopyToNewStore(dstStore)
	require.NoError(t, err)

	buf := make([]byte, 3)
	require.NoError(t, dup.Read(0, buf))
	require.Equal(t, []byte{9, 9, 9}, buf)
}
