package wasm

import "fmt"

// LinkErrorCode enumerates §4.7 step-1 import resolution failures.
type LinkErrorCode int

const (
	MissingImport LinkErrorCode = iota
	IncompatibleType
)

type LinkError struct {
	Code         LinkErrorCode
	Module, Name string
	Detail       string
}

func (e *LinkError) Error() string {
	switch e.Code {
	case MissingImport:
		return fmt.Sprintf("missing import: %s.%s", e.Module, e.Name)
	case IncompatibleType:
		return fmt.Sprintf("incompatible import type for %s.%s: %s", e.Module, e.Name, e.Detail)
	default:
		return "link error"
	}
}

// InstantiationErrorCode enumerates the remaining §4.7 failures (beyond
// linking and memory/table-segment traps, which carry their own types).
type InstantiationErrorCode int

const (
	DataSegmentOutOfBounds InstantiationErrorCode = iota
	ElementSegmentOutOfBounds
	StartTrap
)

type InstantiationError struct {
	Code InstantiationErrorCode
	Err  error // wraps the underlying Trap for StartTrap
}

func (e *InstantiationError) Error() string {
	switch e.Code {
	case DataSegmentOutOfBounds:
		return "data segment out of bounds"
	case ElementSegmentOutOfBounds:
		return "element segment out of bounds"
	case StartTrap:
		return fmt.Sprintf("start function trapped: %v", e.Err)
	default:
		return "instantiation error"
	}
}

func (e *InstantiationError) Unwrap() error { return e.Err }
