package corevm

import "github.com/wazerocore/corevm/internal/wasm"

// Module pairs a wasm.ModuleInfo with its wasm.Artifact, ready to
// instantiate one or more times against different Stores on the same
// Engine (§6: "Module = ModuleInfo + Artifact").
type Module struct {
	engine   *Engine
	info     *wasm.ModuleInfo
	artifact *wasm.Artifact
}

// NewModule pairs info and artifact under engine, without instantiating
// anything. The pairing is validated eagerly: the Artifact must name
// exactly one symbol per entry of info.FunctionSection, since §4.7 step 2
// resolves them 1:1 by index.
func NewModule(eng *Engine, info *wasm.ModuleInfo, artifact *wasm.Artifact) (*Module, error) {
	if got, want := len(artifact.FunctionSymbols), len(info.FunctionSection); got != want {
		return nil, symbolCountMismatch{got: got, want: want}
	}
	return &Module{engine: eng, info: info, artifact: artifact}, nil
}

// Serialize encodes the module into the §6 artifact byte format, keyed by
// the owning Engine's deterministic id.
func (m *Module) Serialize() ([]byte, error) {
	return wasm.Serialize(m.info, m.artifact, m.engine.DeterministicID())
}

// DeserializeModule decodes bytes produced by Module.Serialize, rejecting
// the payload outright if its embedded deterministic id doesn't match eng's.
// Only the header is validated (magic, version, id and trailing offset);
// the decoded ModuleInfo and Artifact are trusted as-is.
func DeserializeModule(eng *Engine, b []byte) (*Module, error) {
	info, artifact, err := wasm.Deserialize(b, eng.DeterministicID())
	if err != nil {
		return nil, err
	}
	return &Module{engine: eng, info: info, artifact: artifact}, nil
}

type symbolCountMismatch struct{ got, want int }

func (e symbolCountMismatch) Error() string {
	return "module: artifact has wrong number of function symbols for this module's defined functions"
}
