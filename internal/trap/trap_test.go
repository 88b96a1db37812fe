package trap_test

import (
	"errors"
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
	"github.com/wazerocore/corevm/internal/trap"
)

func TestCodeString(t *testing.T) {
	require.Equal(t, "stack overflow", trap.StackOverflow.String())
	require.Equal(t, "unreachable", trap.UnreachableCodeReached.String())
	require.Equal(t, "unknown trap", trap.Code(999).String())
}

func TestFrameString(t *testing.T) {
	named := trap.Frame{ModuleName: "env", FunctionName: "log", ModuleOffset: 0x10}
	require.Equal(t, "env.log (module offset 0x10)", named.String())

	anonymous := trap.Frame{FunctionIdx: 3, ModuleOffset: 0x1}
	require.Equal(t, "$3 (module offset 0x1)", anonymous.String())

	noModule := trap.Frame{FunctionName: "free", ModuleOffset: 0}
	require.Equal(t, "free (module offset 0x0)", noModule.String())
}

func TestTrapError(t *testing.T) {
	require.Equal(t, "out of bounds memory access", trap.New(trap.HeapOutOfBounds).Error())

	sentinel := errors.New("bad input")
	userTrap := trap.FromUserError(sentinel)
	require.Equal(t, "bad input", userTrap.Error())
	require.ErrorIs(t, userTrap.Unwrap(), sentinel)
}

func TestRuntimeErrorError(t *testing.T) {
	err := &trap.RuntimeError{
		Trap: trap.New(trap.UnreachableCodeReached),
		Backtrace: []trap.Frame{
			{ModuleName: "m", FunctionName: "f", ModuleOffset: 2},
		},
	}
	require.Equal(t, "unreachable\nwasm backtrace:\n  0: m.f (module offset 0x2)", err.Error())
	require.ErrorIs(t, err, err.Trap)
}

func TestRuntimeErrorWithoutBacktrace(t *testing.T) {
	err := &trap.RuntimeError{Trap: trap.New(trap.BadSignature)}
	require.Equal(t, "indirect call type mismatch", err.Error())
}
