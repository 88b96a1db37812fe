package experimental

import (
	"context"

	"github.com/wazerocore/corevm/internal/ctxkey"
)

// Snapshot holds the execution state at the time of a Snapshotter.Snapshot call.
type Snapshot interface {
	// Restore sets the Wasm execution state to the capture. Because a host function
	// calling this is resetting the pointer to the executation stack, the host function
	// will not be able to return values in the normal way. ret is a slice of values the
	// host function intends to return from the restored function.
	Restore(ret []uint64)
}

// Snapshotter allows host functions to snapshot the WebAssembly execution environment.
type Snapshotter interface {
	// Snapshot captures the current execution state.
	Snapshot() Snapshot
}

// EnableSnapshotterKey is a context key to indicate that snapshotting should be enabled.
// This module's call path does not read it and does not store a Snapshotter under
// SnapshotterKey.
//
// Deprecated: use [WithSnapshotter] to enable snapshots.
type EnableSnapshotterKey = ctxkey.EnableSnapshotterKey

// WithSnapshotter marks ctx with [EnableSnapshotterKey]. The call path in this
// module does not read that mark and never stores a [Snapshotter] under
// [SnapshotterKey], so host functions called through it cannot retrieve one.
func WithSnapshotter(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxkey.EnableSnapshotterKey{}, struct{}{})
}

// SnapshotterKey is a context key to access a Snapshotter from a host function.
// Nothing in this module stores a value under it.
//
// Deprecated: use [GetSnapshotter] to get the snapshotter.
type SnapshotterKey = ctxkey.SnapshotterKey

// GetSnapshotter returns the [Snapshotter] stored in ctx under [SnapshotterKey],
// and panics if none is present, which is always the case for calls made
// through this module's call path.
func GetSnapshotter(ctx context.Context) Snapshotter {
	return ctx.Value(ctxkey.SnapshotterKey{}).(Snapshotter)
}
