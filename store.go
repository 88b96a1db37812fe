package corevm

import "github.com/wazerocore/corevm/internal/wasm"

// Store is the embedder-facing handle over a wasm.Store: the arena that
// owns every memory/table/global/function/instance reachable from one
// logical Wasm world (§3, §4.5). Not safe for concurrent use (§5).
type Store struct {
	engine *Engine
	inner  *wasm.Store
}

// NewStore allocates an empty Store tied to eng's tunables.
func NewStore(eng *Engine) *Store {
	return &Store{engine: eng, inner: wasm.NewStore(eng.config.Tunables)}
}

// Engine returns the Engine this Store was created from.
func (s *Store) Engine() *Engine { return s.engine }

// Close deallocates every resource this Store owns (§3 lifecycle rule).
func (s *Store) Close() error { return s.inner.Close() }
