// Package trap implements the §4.10 trap model: the tagged Trap enum, the
// Frame/backtrace shape a RuntimeError carries, and the panic/recover-based
// substitute for the signal-handler + longjmp recovery mechanism a native
// compiler backend would install.
//
// Grounded on original_source/lib/engine/src/trap/error.rs for the trap
// taxonomy and frame shape, and on the teacher's
// internal/engine/compiler/engine.go (causePanic, deferredOnCall) for the
// pattern of using a typed panic value to unwind a call stack back to a
// single recover point — the same role that engine's signal handler plus
// longjmp plays for JIT-compiled code.
package trap

import "fmt"

// Code is the tagged variant of a Trap (§4.10).
type Code int

const (
	StackOverflow Code = iota
	HeapOutOfBounds
	HeapMisaligned
	TableOutOfBounds
	IndirectCallToNull
	BadSignature
	IntegerOverflow
	IntegerDivisionByZero
	BadConversionToInteger
	UnreachableCodeReached
	UncaughtException
	HostPanic
	User
)

func (c Code) String() string {
	switch c {
	case StackOverflow:
		return "stack overflow"
	case HeapOutOfBounds:
		return "out of bounds memory access"
	case HeapMisaligned:
		return "misaligned memory access"
	case TableOutOfBounds:
		return "out of bounds table access"
	case IndirectCallToNull:
		return "indirect call to null"
	case BadSignature:
		return "indirect call type mismatch"
	case IntegerOverflow:
		return "integer overflow"
	case IntegerDivisionByZero:
		return "integer divide by zero"
	case BadConversionToInteger:
		return "invalid conversion to integer"
	case UnreachableCodeReached:
		return "unreachable"
	case UncaughtException:
		return "uncaught exception"
	case HostPanic:
		return "host function panicked"
	case User:
		return "user error"
	default:
		return "unknown trap"
	}
}

// Frame is one entry of a RuntimeError's backtrace (§7 "User-visible
// behavior"): (module_name, function_index, module_offset, optional
// function_name).
type Frame struct {
	ModuleName   string
	FunctionIdx  uint32
	ModuleOffset uint32
	FunctionName string // empty if unknown
}

func (f Frame) String() string {
	name := f.FunctionName
	if name == "" {
		name = fmt.Sprintf("$%d", f.FunctionIdx)
	}
	if f.ModuleName == "" {
		return fmt.Sprintf("%s (module offset %#x)", name, f.ModuleOffset)
	}
	return fmt.Sprintf("%s.%s (module offset %#x)", f.ModuleName, name, f.ModuleOffset)
}

// Trap is the value carried by the panic used to unwind out of a Wasm
// call (the Go substitute for the longjmp path of §4.10). UserErr carries
// the host-supplied error for Code == User, and the recovered panic value
// for Code == HostPanic, without boxing it behind fmt.Stringer.
type Trap struct {
	Code    Code
	UserErr error
}

func (t *Trap) Error() string {
	if t.Code == User && t.UserErr != nil {
		return t.UserErr.Error()
	}
	return t.Code.String()
}

func (t *Trap) Unwrap() error { return t.UserErr }

// New builds a Trap for a non-User code.
func New(code Code) *Trap { return &Trap{Code: code} }

// FromUserError wraps a host-function error as Trap{Code: User}.
func FromUserError(err error) *Trap { return &Trap{Code: User, UserErr: err} }

// RuntimeError is what a host→Wasm call returns on failure (§4.10, §7): a
// primary message plus an optional reconstructed backtrace.
type RuntimeError struct {
	Trap      *Trap
	Backtrace []Frame
}

func (e *RuntimeError) Error() string {
	msg := e.Trap.Error()
	if len(e.Backtrace) == 0 {
		return msg
	}
	s := msg + "\nwasm backtrace:"
	for i, f := range e.Backtrace {
		s += fmt.Sprintf("\n  %d: %s", i, f)
	}
	return s
}

func (e *RuntimeError) Unwrap() error { return e.Trap }
