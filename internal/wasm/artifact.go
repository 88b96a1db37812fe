package wasm

import "fmt"

// Artifact is the headless-engine payload named throughout §4.11/§6: the
// compiled output an external compiler would hand the core, reduced here
// to what a closure-based "compiler" can produce. Each defined function's
// body is identified by a symbol name rather than carried as a literal Go
// function value, because a func value has no stable byte representation
// to round-trip through Serialize/Deserialize (§8 property 5) — the
// symbol is resolved against the engine's FunctionRegistry at load time,
// the same way a native engine resolves relocations against its own
// symbol table.
type Artifact struct {
	// FunctionSymbols is index-correlated with ModuleInfo.FunctionSection:
	// FunctionSymbols[i] names the body of the i-th defined function.
	FunctionSymbols []string
}

// FunctionRegistry maps a symbol name to its Go closure body. An embedder
// populates this once (typically in an init() or test setup) before
// deserializing any Artifact that references those symbols — the
// "compatible engine" precondition §4.11's deserialize names explicitly.
type FunctionRegistry struct {
	bodies map[string]DefinedBody
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{bodies: make(map[string]DefinedBody)}
}

func (r *FunctionRegistry) Register(symbol string, body DefinedBody) {
	r.bodies[symbol] = body
}

var errUnknownSymbol = fmt.Errorf("symbol not found in function registry")

func (r *FunctionRegistry) Resolve(symbol string) (DefinedBody, error) {
	b, ok := r.bodies[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownSymbol, symbol)
	}
	return b, nil
}

// Resolve materializes the defined functions an Artifact names, in
// FunctionSection order, against registry.
func (a *Artifact) Resolve(registry *FunctionRegistry) ([]DefinedBody, error) {
	out := make([]DefinedBody, len(a.FunctionSymbols))
	for i, sym := range a.FunctionSymbols {
		b, err := registry.Resolve(sym)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
