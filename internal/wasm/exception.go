package wasm

import "github.com/wazerocore/corevm/internal/trap"

// hostException is the payload a throw carries: a tag used by catch
// handlers to decide whether they handle it, plus opaque data (§4.10
// "Host exceptions"). On native targets this rides the platform's
// DWARF/CFI or SEH unwinder via a personality routine; Go has neither, so
// panic/recover plays the same role — the personality routine becomes the
// deferred recover in Catch, and panic(exc) is the equivalent of invoking
// the unwinder with (tag, data_ptr, data_size).
type hostException struct {
	Tag  uint32
	Data any
}

// Throw raises a host exception, unwinding Go call frames until a matching
// Catch (or, if none catches it, the Call entry point, which converts it
// to Trap::UncaughtException).
func Throw(tag uint32, data any) {
	panic(&hostException{Tag: tag, Data: data})
}

// Catch runs body, intercepting any hostException whose Tag matches one of
// tags and handing its Data to handle. Exceptions with a non-matching tag,
// and any *trap.Trap, continue propagating untouched — a trap occurring
// while an exception is in flight is unrecoverable (§9 "Exceptions vs.
// traps").
func Catch(tags []uint32, body func(), handle func(data any)) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		exc, ok := r.(*hostException)
		if !ok {
			panic(r)
		}
		for _, t := range tags {
			if t == exc.Tag {
				handle(exc.Data)
				return
			}
		}
		panic(r)
	}()
	body()
}

// uncaughtToTrap converts an exception that unwound past every catch, all
// the way to the Call entry point, into Trap::UncaughtException.
func uncaughtToTrap(r any) (*trap.Trap, bool) {
	if _, ok := r.(*hostException); ok {
		return trap.New(trap.UncaughtException), true
	}
	return nil, false
}
