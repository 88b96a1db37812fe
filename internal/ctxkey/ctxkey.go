// Package ctxkey centralizes the unexported-by-convention context.Context
// key types the experimental package uses, so two independent files never
// accidentally declare colliding key types.
package ctxkey

// MemoryAllocatorKey is the context key for experimental.MemoryAllocator.
type MemoryAllocatorKey struct{}

// EnableSnapshotterKey is the context key enabling snapshot support for a
// function invocation.
type EnableSnapshotterKey struct{}

// SnapshotterKey is the context key a host function uses to retrieve the
// active experimental.Snapshotter.
type SnapshotterKey struct{}
