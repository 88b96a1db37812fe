package wasm

import (
	"context"
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
)

func TestSignatureRegistryInternDeduplicatesEqualTypes(t *testing.T) {
	r := newSignatureRegistry()
	a := r.Intern(&FunctionType{Params: []ValType{ValType(0x7f)}, Results: []ValType{ValType(0x7f)}})
	b := r.Intern(&FunctionType{Params: []ValType{ValType(0x7f)}, Results: []ValType{ValType(0x7f)}})
	require.Equal(t, a, b)
}

func TestSignatureRegistryInternAssignsDistinctIdsForDistinctTypes(t *testing.T) {
	r := newSignatureRegistry()
	a := r.Intern(&FunctionType{Params: []ValType{ValType(0x7f)}, Results: []ValType{ValType(0x7f)}})
	b := r.Intern(&FunctionType{Params: []ValType{ValType(0x7e)}, Results: []ValType{ValType(0x7e)}})
	require.True(t, a != b)
}

func TestSignatureRegistryMatches(t *testing.T) {
	r := newSignatureRegistry()
	id := r.Intern(simpleType())
	require.True(t, r.Matches(id, simpleType()))

	mismatched := &FunctionType{Params: []ValType{ValType(0x7e)}, Results: []ValType{ValType(0x7e)}}
	require.False(t, r.Matches(id, mismatched))
}

func TestSignatureRegistryMatchesRejectsOutOfRangeId(t *testing.T) {
	r := newSignatureRegistry()
	require.False(t, r.Matches(VMSharedSignatureIndex(99), simpleType()))
}

func TestSignatureRegistryLookupReturnsInternedType(t *testing.T) {
	r := newSignatureRegistry()
	typ := simpleType()
	id := r.Intern(typ)
	require.Same(t, typ, r.Lookup(id))
}

func TestFunctionInstanceSignatureIndexCachesAcrossCalls(t *testing.T) {
	store := NewStore(DefaultTunables())
	fn := definedFn(func(_ context.Context, _ *Instance, args []uint64) ([]uint64, error) { return args, nil })
	first := fn.signatureIndex(store)
	second := fn.signatureIndex(store)
	require.Equal(t, first, second)
	require.True(t, store.sigs.Matches(first, fn.Type))
}
