package wasmdebug_test

import (
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
	"github.com/wazerocore/corevm/internal/trap"
	"github.com/wazerocore/corevm/internal/wasmdebug"
)

func TestFormatBacktraceEmpty(t *testing.T) {
	require.Equal(t, "", wasmdebug.FormatBacktrace(nil))
}

func TestFormatBacktraceNamedFrame(t *testing.T) {
	out := wasmdebug.FormatBacktrace([]trap.Frame{
		{ModuleName: "env", FunctionName: "log", ModuleOffset: 0x10},
	})
	require.Equal(t, "wasm backtrace:\n\t0: env.log (offset 0x10)\n", out)
}

func TestFormatBacktraceUnnamedModuleAndFunction(t *testing.T) {
	out := wasmdebug.FormatBacktrace([]trap.Frame{
		{FunctionIdx: 7, ModuleOffset: 0x4},
	})
	require.Equal(t, "wasm backtrace:\n\t0: <unnamed>.$7 (offset 0x4)\n", out)
}

func TestFormatBacktraceMultipleFrames(t *testing.T) {
	out := wasmdebug.FormatBacktrace([]trap.Frame{
		{ModuleName: "a", FunctionName: "f", ModuleOffset: 1},
		{ModuleName: "b", FunctionName: "g", ModuleOffset: 2},
	})
	require.Equal(t, "wasm backtrace:\n\t0: a.f (offset 0x1)\n\t1: b.g (offset 0x2)\n", out)
}
