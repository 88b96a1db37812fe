// Package wasmdebug formats the backtrace a RuntimeError carries (§7
// "User-visible behavior") into human-readable text, the way a native
// engine would reconstruct frames from compiler-emitted frame-info tables.
package wasmdebug

import (
	"fmt"
	"strings"

	"github.com/wazerocore/corevm/internal/trap"
)

// FormatBacktrace renders frames one line per frame, in the order given, as
// "<module>.<function> (offset <hex>)"; an empty module name prints as
// "<unnamed>" and an empty function name as "$<index>".
func FormatBacktrace(frames []trap.Frame) string {
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("wasm backtrace:\n")
	for i, f := range frames {
		name := f.FunctionName
		if name == "" {
			name = fmt.Sprintf("$%d", f.FunctionIdx)
		}
		mod := f.ModuleName
		if mod == "" {
			mod = "<unnamed>"
		}
		fmt.Fprintf(&b, "\t%d: %s.%s (offset %#x)\n", i, mod, name, f.ModuleOffset)
	}
	return b.String()
}
