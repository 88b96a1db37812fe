package wasm

// HeadlessEngine is the L6 collaborator contract of §4.11: it runs
// precompiled artifacts without ever invoking a compiler. This is the only
// "engine" this repository implements — the compiler pipeline that would
// produce an Artifact from a .wasm binary is out of scope (§1) — so
// HeadlessEngine's only job is to own the FunctionRegistry artifacts
// resolve their symbols against, and to record the enabled feature names.
// The deterministic id used to key cached artifacts is computed by the root
// package's Engine (via internal/version), not here.
type HeadlessEngine struct {
	Registry *FunctionRegistry
	Features []string
}

// NewHeadlessEngine constructs an engine ready to instantiate modules from
// (ModuleInfo, Artifact) pairs whose function symbols are pre-registered.
func NewHeadlessEngine(features ...string) *HeadlessEngine {
	return &HeadlessEngine{Registry: NewFunctionRegistry(), Features: features}
}

// Module pairs a ModuleInfo with its Artifact, ready to instantiate one or
// more times against different stores (§6: "Module = ModuleInfo +
// Artifact").
type Module struct {
	Info     *ModuleInfo
	Artifact *Artifact
}

// Instantiate runs §4.7's pipeline for this module against store.
func (e *HeadlessEngine) Instantiate(store *Store, m *Module, imports Imports, name string) (*Instance, error) {
	return Instantiate(store, m.Info, m.Artifact, e.Registry, imports, name)
}
