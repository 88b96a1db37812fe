// Package corevm is the embedder-facing facade over internal/wasm's core
// execution runtime (SPEC_FULL.md §6): Engine, Module, Store, Instance and
// the api.Function/Memory/Table/Global views an embedder actually touches.
//
// This package never parses or validates a .wasm binary (§1 non-goal): a
// Module is built from an already-produced wasm.ModuleInfo and wasm.Artifact,
// exactly as an external compiler/validator would hand them to a real
// engine.
package corevm

import (
	"github.com/wazerocore/corevm/internal/version"
	"github.com/wazerocore/corevm/internal/wasm"
)

// EngineConfig controls the policy knobs §9 leaves to "the engine's
// tunables": guard region sizes, static-memory bound, and which feature
// names participate in the deterministic cache id (§4.11).
type EngineConfig struct {
	Tunables wasm.Tunables
	Features []string
}

// NewEngineConfig returns an EngineConfig with the teacher's order-of-
// magnitude defaults (DefaultTunables) and no extra features enabled.
func NewEngineConfig() EngineConfig {
	return EngineConfig{Tunables: wasm.DefaultTunables()}
}

// Engine is the §4.11 "headless" engine: it runs precompiled Artifacts
// against Stores, and never invokes a compiler. Every Engine this package
// constructs is already headless; Headless exists to match the external
// interface shape spec.md names, and is a no-op identity method here since
// there is no non-headless mode to switch out of.
type Engine struct {
	inner  *wasm.HeadlessEngine
	config EngineConfig
	id     string
}

// NewEngine constructs a headless Engine. Its FunctionRegistry starts empty;
// defined-function bodies must be registered (via Engine.Registry().Register)
// before any Module built against this Engine is instantiated.
func NewEngine(config EngineConfig) *Engine {
	return &Engine{
		inner:  wasm.NewHeadlessEngine(config.Features...),
		config: config,
		id:     version.DeterministicID(config.Features),
	}
}

// Headless returns e unchanged: this package implements only the headless
// engine contract (§4.11), so there is nothing to switch into.
func (e *Engine) Headless() *Engine { return e }

// Registry exposes the symbol table Artifact.FunctionSymbols resolve
// against (§1 EXPANSION). Embedders populate it before instantiating any
// Module whose Artifact references a symbol.
func (e *Engine) Registry() *wasm.FunctionRegistry { return e.inner.Registry }

// DeterministicID is the cache key documented in §4.11 and §6: it mixes the
// engine's enabled feature set into the id so an Artifact compiled against
// one feature set is never accepted by an incompatible one.
func (e *Engine) DeterministicID() string { return e.id }
