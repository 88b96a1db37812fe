package wasm

import (
	"context"
	"errors"
	"testing"

	"github.com/wazerocore/corevm/internal/trap"
	"github.com/wazerocore/corevm/internal/testing/require"
)

func definedFn(body func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error)) *FunctionInstance {
	return &FunctionInstance{Type: simpleType(), Kind: FunctionKindDefined, Defined: body, Name: "f"}
}

func hostFn(body func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error)) *FunctionInstance {
	return &FunctionInstance{Type: simpleType(), Kind: FunctionKindHost, Host: body, Name: "h"}
}

func TestCallDefinedFunction(t *testing.T) {
	store := NewStore(DefaultTunables())
	fn := definedFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) {
		return []uint64{args[0] + 1}, nil
	})
	results, err := Call(context.Background(), store, nil, fn, []uint64{41})
	require.NoError(t, err)
	require.Equal(t, uint64(42), results[0])
}

func TestCallHostPanicBecomesHostPanicTrap(t *testing.T) {
	store := NewStore(DefaultTunables())
	fn := hostFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) {
		panic("boom")
	})
	_, err := Call(context.Background(), store, nil, fn, nil)
	require.Error(t, err)
	rerr, ok := err.(*trap.RuntimeError)
	require.True(t, ok)
	require.Equal(t, trap.HostPanic, rerr.Trap.Code)
	require.Len(t, rerr.Backtrace, 1)
}

func TestCallHostErrorBecomesUserTrap(t *testing.T) {
	store := NewStore(DefaultTunables())
	sentinel := errors.New("bad input")
	fn := hostFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) {
		return nil, sentinel
	})
	_, err := Call(context.Background(), store, nil, fn, nil)
	require.Error(t, err)
	rerr, ok := err.(*trap.RuntimeError)
	require.True(t, ok)
	require.Equal(t, trap.User, rerr.Trap.Code)
	require.ErrorIs(t, rerr.Trap.UserErr, sentinel)
}

func TestCallStackOverflow(t *testing.T) {
	store := NewStore(DefaultTunables())
	ctx := withDepth(context.Background(), maxCallDepth)
	fn := definedFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) {
		return nil, nil
	})
	_, err := Call(ctx, store, nil, fn, nil)
	require.Error(t, err)
	rerr, ok := err.(*trap.RuntimeError)
	require.True(t, ok)
	require.Equal(t, trap.StackOverflow, rerr.Trap.Code)
}

func TestCallNestedTrapPropagatesThroughHost(t *testing.T) {
	store := NewStore(DefaultTunables())
	inner := definedFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) {
		panic(trap.New(trap.IntegerDivisionByZero))
	})
	outer := hostFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) {
		return Call(ctx, store, nil, inner, nil)
	})
	_, err := Call(context.Background(), store, nil, outer, nil)
	require.Error(t, err)
	rerr, ok := err.(*trap.RuntimeError)
	require.True(t, ok)
	require.Equal(t, trap.IntegerDivisionByZero, rerr.Trap.Code)
}

func TestCallIndirectNullReference(t *testing.T) {
	store := NewStore(DefaultTunables())
	tbl := NewTableInstance(store.id, TableType{Element: RefTypeFuncref, Minimum: 1})
	_, err := CallIndirect(context.Background(), store, nil, tbl, 0, simpleType(), nil)
	require.Error(t, err)
	rerr, ok := err.(*trap.RuntimeError)
	require.True(t, ok)
	require.Equal(t, trap.IndirectCallToNull, rerr.Trap.Code)
}

func TestCallIndirectOutOfBounds(t *testing.T) {
	store := NewStore(DefaultTunables())
	tbl := NewTableInstance(store.id, TableType{Element: RefTypeFuncref, Minimum: 1})
	_, err := CallIndirect(context.Background(), store, nil, tbl, 5, simpleType(), nil)
	require.Error(t, err)
	rerr, ok := err.(*trap.RuntimeError)
	require.True(t, ok)
	require.Equal(t, trap.TableOutOfBounds, rerr.Trap.Code)
}

func TestCallIndirectBadSignature(t *testing.T) {
	store := NewStore(DefaultTunables())
	fn := definedFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) { return nil, nil })
	h := store.DefineFunction(fn)

	tbl := NewTableInstance(store.id, TableType{Element: RefTypeFuncref, Minimum: 1})
	require.NoError(t, tbl.Set(0, TableElement{FuncRef: &h}))

	mismatched := &FunctionType{Params: []ValType{ValType(0x7e)}, Results: []ValType{ValType(0x7e)}}
	_, err := CallIndirect(context.Background(), store, nil, tbl, 0, mismatched, nil)
	require.Error(t, err)
	rerr, ok := err.(*trap.RuntimeError)
	require.True(t, ok)
	require.Equal(t, trap.BadSignature, rerr.Trap.Code)
}

func TestCallIndirectDispatchesMatchingFunction(t *testing.T) {
	store := NewStore(DefaultTunables())
	fn := definedFn(func(ctx context.Context, inst *Instance, args []uint64) ([]uint64, error) {
		return []uint64{args[0] * 2}, nil
	})
	h := store.DefineFunction(fn)

	tbl := NewTableInstance(store.id, TableType{Element: RefTypeFuncref, Minimum: 1})
	require.NoError(t, tbl.Set(0, TableElement{FuncRef: &h}))

	results, err := CallIndirect(context.Background(), store, nil, tbl, 0, simpleType(), []uint64{21})
	require.NoError(t, err)
	require.Equal(t, uint64(42), results[0])
}
