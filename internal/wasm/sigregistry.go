package wasm

// VMSharedSignatureIndex is the interned id a compiled call_indirect site
// compares against a table element's stored signature (§4.1, §4.4 invariant
// 4, §4.10 BadSignature).
type VMSharedSignatureIndex uint32

// signatureRegistry interns FunctionType values within one Store, so two
// modules instantiated into that Store that both declare "func(i32) -> i32"
// share a single VMSharedSignatureIndex and an indirect call between them
// compares a single integer rather than walking both signatures (§4.1).
// Each Store builds its own registry in NewStore; it is not shared across
// Stores, so indices from different Stores are not comparable.
//
// Grounded on spec.md §4.1's "shared signature registry" and the teacher's
// internal/engine/wazevo/wazevoapi/offsetdata.go FunctionInstanceTypeIDOffset
// pattern, which stores exactly such an interned id alongside each function.
type signatureRegistry struct {
	byKey []registryEntry
	index map[string]VMSharedSignatureIndex
}

type registryEntry struct {
	typ *FunctionType
}

func newSignatureRegistry() *signatureRegistry {
	return &signatureRegistry{index: make(map[string]VMSharedSignatureIndex)}
}

// Intern returns the VMSharedSignatureIndex for typ, registering it on
// first sight.
func (r *signatureRegistry) Intern(typ *FunctionType) VMSharedSignatureIndex {
	key := typ.String()
	if id, ok := r.index[key]; ok {
		return id
	}
	id := VMSharedSignatureIndex(len(r.byKey))
	r.byKey = append(r.byKey, registryEntry{typ: typ})
	r.index[key] = id
	return id
}

// Lookup returns the FunctionType interned under id.
func (r *signatureRegistry) Lookup(id VMSharedSignatureIndex) *FunctionType {
	return r.byKey[id].typ
}

// Matches reports whether id was interned for a signature equal to typ —
// the check behind the BadSignature trap (§4.10) at an indirect call site.
func (r *signatureRegistry) Matches(id VMSharedSignatureIndex, typ *FunctionType) bool {
	return int(id) < len(r.byKey) && r.byKey[id].typ.Equals(typ)
}
