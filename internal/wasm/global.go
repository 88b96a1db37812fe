package wasm

import "fmt"

// GlobalInstance is the runtime cell backing one global variable, either
// defined by a module or supplied as an import (§3, §4.1 DefinedGlobal /
// ImportedGlobal).
//
// Grounded on the teacher's internal/wasm/global_test.go, which exercises a
// GlobalInstance through Type()/Get()/Set() rather than exposing its raw
// cell — the shape kept here.
type GlobalInstance struct {
	typ GlobalType
	// val holds the 64-bit encoding of every scalar value type; v128 would
	// need a second word, but this runtime's GLOBALSECTION (§4.1) is scoped
	// to scalars.
	val uint64
	// owner records which store this global lives in. Set and TrySet do not
	// consult it; cross-store checks happen on the StoreHandle lookup
	// (Store.GetGlobal), not on the cell itself.
	owner StoreId
}

// NewGlobalInstance constructs a global cell already initialized to init,
// as produced by evaluating a GlobalInit's ConstExpr (§4.7 step 4).
func NewGlobalInstance(owner StoreId, typ GlobalType, init uint64) *GlobalInstance {
	return &GlobalInstance{typ: typ, val: init, owner: owner}
}

// Type reports the global's declared value type and mutability.
func (g *GlobalInstance) Type() GlobalType { return g.typ }

// Get returns the current 64-bit encoded value.
func (g *GlobalInstance) Get() uint64 { return g.val }

// Set stores a new value, panicking if the global was declared immutable.
// The root package's api.MutableGlobal adapter calls Set, and only wraps
// globals declared mutable.
func (g *GlobalInstance) Set(v uint64) {
	if g.typ.Mutability != Var {
		panic(fmt.Sprintf("BUG: Set called on immutable global of type %v", g.typ.Content))
	}
	g.val = v
}

// ErrImmutableGlobal is returned by TrySet against a const global.
var ErrImmutableGlobal = fmt.Errorf("global is immutable")

// TrySet is the non-panicking form of Set.
func (g *GlobalInstance) TrySet(v uint64) error {
	if g.typ.Mutability != Var {
		return ErrImmutableGlobal
	}
	g.val = v
	return nil
}
