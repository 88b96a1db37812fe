package wasm

import (
	"fmt"
	"sync/atomic"
)

// StoreId is a process-wide-unique, never-reused, monotonic non-zero
// identifier for a Store (§3 invariant 2, §4.5).
type StoreId uint64

var nextStoreId uint64

// NextStoreId returns a fresh non-zero StoreId. Grounded on
// original_source/lib/vm/src/context.rs's StoreId::next(), which the same
// spec section (§4.5) names directly.
func NextStoreId() StoreId {
	return StoreId(atomic.AddUint64(&nextStoreId, 1))
}

// rkind tags which resource vector a StoreHandle indexes, so a single
// generic-free Go type (pre-generics teacher style is untyped indices; here
// we use Go generics, available since go1.18, matching the type parameter
// the spec itself uses: StoreHandle<T>) can still be printed/debugged
// uniformly.
type rkind byte

const (
	rkindMemory rkind = iota
	rkindTable
	rkindGlobal
	rkindFunction
	rkindInstance
	rkindExternObj
)

// StoreHandle is (StoreId, index): a non-owning reference into a Store's
// resource arena, generic over the resource type T (§3, §4.5).
type StoreHandle[T any] struct {
	storeId StoreId
	index   int // zero value (no handle) is index == 0; real entries start at 1.
}

// IsZero reports whether this handle was never assigned (the zero value).
func (h StoreHandle[T]) IsZero() bool { return h.index == 0 }

// ErrCrossStoreAccess is returned whenever a StoreHandle produced by one
// Store is used against another (§3 invariant, §7, §8 property 6).
var ErrCrossStoreAccess = fmt.Errorf("cross-store access: handle does not belong to this store")

// ErrResourceReleased is the panic value a Get* accessor raises when a
// handle still within bounds points at a slot an owning Instance's Close
// already tombstoned (§4.7 instance-scoped release).
var ErrResourceReleased = fmt.Errorf("handle refers to a resource released by its owning instance's Close")

// Store is the ownership arena for every resource reachable from one
// logical Wasm world (§3, §4.5). It is not safe for concurrent use by more
// than one goroutine at a time (§5: "!Sync").
type Store struct {
	id StoreId

	memories  []*MemoryInstance
	tables    []*TableInstance
	globals   []*GlobalInstance
	functions []*FunctionInstance
	instances []*Instance
	externs   []*ExternObj

	// sigs is the shared signature registry (§4.1, §4.4 invariant 4): every
	// FunctionType used by an indirect call is interned here once, so
	// call_indirect can compare VMSharedSignatureIndex values in O(1).
	sigs *signatureRegistry

	// tunables govern the policy knobs §4.3/§9 leave open (guard sizes,
	// static vs. dynamic memory style selection).
	tunables Tunables
}

// Tunables are the engine-level policy knobs spec.md explicitly leaves
// unspecified: §3 invariant 3's minimum guard size is a floor, not the
// actual configured size, and §9 notes the precise guard-region size for
// static memories "is a policy knob set by the engine's tunables."
type Tunables struct {
	// StaticMemoryBoundPages caps how large a StaticMemory's virtual
	// address reservation is, regardless of MemoryType.Maximum.
	StaticMemoryBoundPages Pages
	// StaticMemoryGuardBytes is appended after the bound reservation.
	// Must be >= 2GiB on 64-bit hosts per §3 invariant 3; enforced in
	// NewStore.
	StaticMemoryGuardBytes uint64
	// DynamicMemoryGuardBytes is the smaller guard tail DynamicMemory
	// reserves for speculative loads.
	DynamicMemoryGuardBytes uint64
	// StaticMemoryMinimumPagesThreshold: memories whose Maximum is known
	// and at or below this are still eligible for the static style; used
	// by NewMemoryInstance's style-selection heuristic.
	StaticMemoryMinimumPagesThreshold Pages
}

const minStaticGuardBytes64 = 2 << 30 // 2GiB, §3 invariant 3.

// DefaultTunables matches the teacher's own defaults order of magnitude
// (wazero reserves multi-GiB guard regions on 64-bit by default).
func DefaultTunables() Tunables {
	return Tunables{
		StaticMemoryBoundPages:             1 << 16, // 4GiB address space / Page
		StaticMemoryGuardBytes:             minStaticGuardBytes64,
		DynamicMemoryGuardBytes:            64 << 10, // 64KiB
		StaticMemoryMinimumPagesThreshold:  1 << 16,
	}
}

// NewStore allocates an empty Store (§4.5: "new() -> Store allocates empty
// resource vectors").
func NewStore(tunables Tunables) *Store {
	if tunables.StaticMemoryGuardBytes < minStaticGuardBytes64 {
		panic("BUG: StaticMemoryGuardBytes below the §3 invariant-3 floor of 2GiB")
	}
	return &Store{
		id:       NextStoreId(),
		sigs:     newSignatureRegistry(),
		tunables: tunables,
	}
}

// ID returns this store's StoreId.
func (s *Store) ID() StoreId { return s.id }

// addMemory inserts m and returns its handle. Index 0 is never assigned so
// the zero StoreHandle reliably means "no handle".
func (s *Store) addMemory(m *MemoryInstance) StoreHandle[MemoryInstance] {
	s.memories = append(s.memories, m)
	return StoreHandle[MemoryInstance]{storeId: s.id, index: len(s.memories)}
}

func (s *Store) addTable(t *TableInstance) StoreHandle[TableInstance] {
	s.tables = append(s.tables, t)
	return StoreHandle[TableInstance]{storeId: s.id, index: len(s.tables)}
}

func (s *Store) addGlobal(g *GlobalInstance) StoreHandle[GlobalInstance] {
	s.globals = append(s.globals, g)
	return StoreHandle[GlobalInstance]{storeId: s.id, index: len(s.globals)}
}

func (s *Store) addFunction(f *FunctionInstance) StoreHandle[FunctionInstance] {
	s.functions = append(s.functions, f)
	return StoreHandle[FunctionInstance]{storeId: s.id, index: len(s.functions)}
}

func (s *Store) addInstance(i *Instance) StoreHandle[Instance] {
	s.instances = append(s.instances, i)
	return StoreHandle[Instance]{storeId: s.id, index: len(s.instances)}
}

func (s *Store) addExternObj(e *ExternObj) StoreHandle[ExternObj] {
	s.externs = append(s.externs, e)
	return StoreHandle[ExternObj]{storeId: s.id, index: len(s.externs)}
}

// DefineFunction adds a host-provided (or otherwise store-owned, outside
// instantiation) function to the store's function arena and returns its
// handle. Used by an embedder building an Imports map from Go functions
// (§4.7: imports must already exist in some Store before Instantiate can
// resolve them against them).
func (s *Store) DefineFunction(f *FunctionInstance) StoreHandle[FunctionInstance] { return s.addFunction(f) }

// DefineMemory adds a host-provided memory to the store's memory arena.
func (s *Store) DefineMemory(m *MemoryInstance) StoreHandle[MemoryInstance] { return s.addMemory(m) }

// DefineTable adds a host-provided table to the store's table arena.
func (s *Store) DefineTable(t *TableInstance) StoreHandle[TableInstance] { return s.addTable(t) }

// DefineGlobal adds a host-provided global to the store's global arena.
func (s *Store) DefineGlobal(g *GlobalInstance) StoreHandle[GlobalInstance] { return s.addGlobal(g) }

// GetMemory dereferences h, panicking with ErrCrossStoreAccess on mismatch
// (§4.5: "get<T>(handle) -> &T ... panic on store_id mismatch").
func (s *Store) GetMemory(h StoreHandle[MemoryInstance]) *MemoryInstance {
	m := s.memories[checkHandle(s.id, h)-1]
	if m == nil {
		panic(ErrResourceReleased)
	}
	return m
}

// GetTable dereferences h.
func (s *Store) GetTable(h StoreHandle[TableInstance]) *TableInstance {
	t := s.tables[checkHandle(s.id, h)-1]
	if t == nil {
		panic(ErrResourceReleased)
	}
	return t
}

// GetGlobal dereferences h.
func (s *Store) GetGlobal(h StoreHandle[GlobalInstance]) *GlobalInstance {
	g := s.globals[checkHandle(s.id, h)-1]
	if g == nil {
		panic(ErrResourceReleased)
	}
	return g
}

// GetFunction dereferences h.
func (s *Store) GetFunction(h StoreHandle[FunctionInstance]) *FunctionInstance {
	f := s.functions[checkHandle(s.id, h)-1]
	if f == nil {
		panic(ErrResourceReleased)
	}
	return f
}

// GetInstance dereferences h.
func (s *Store) GetInstance(h StoreHandle[Instance]) *Instance {
	return s.instances[checkHandle(s.id, h)-1]
}

// GetExternObj dereferences h.
func (s *Store) GetExternObj(h StoreHandle[ExternObj]) *ExternObj {
	return s.externs[checkHandle(s.id, h)-1]
}

// TryGetMemory is the non-panicking form, used at host-API boundaries (§8
// property 6: "never silently accesses B").
func (s *Store) TryGetMemory(h StoreHandle[MemoryInstance]) (*MemoryInstance, error) {
	if h.storeId != s.id {
		return nil, ErrCrossStoreAccess
	}
	return s.GetMemory(h), nil
}

func checkHandle[T any](id StoreId, h StoreHandle[T]) int {
	if h.storeId != id {
		panic(ErrCrossStoreAccess)
	}
	if h.index == 0 {
		panic("BUG: dereferenced zero-value StoreHandle")
	}
	return h.index
}

// Get2Mut returns disjoint mutable references to two memories, panicking if
// a == b (§4.5 get_2_mut). Memory is the only L2 resource whose host-facing
// API needs disjoint-mutability today (copy_to_memory between two
// memories); the same pattern generalizes to Table/Global if ever needed.
func (s *Store) Get2Mut(a, b StoreHandle[MemoryInstance]) (*MemoryInstance, *MemoryInstance) {
	if a.storeId == b.storeId && a.index == b.index {
		panic("BUG: Get2Mut called with identical handles")
	}
	return s.GetMemory(a), s.GetMemory(b)
}

// Close deallocates every resource this store owns, in reverse order of
// §3's lifecycle rule: instances, then functions, then tables, then
// memories, then globals.
func (s *Store) Close() error {
	var firstErr error
	for i := len(s.instances) - 1; i >= 0; i-- {
		if err := s.instances[i].close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.instances = nil
	s.functions = nil
	for i := len(s.tables) - 1; i >= 0; i-- {
		s.tables[i] = nil
	}
	s.tables = nil
	for i := len(s.memories) - 1; i >= 0; i-- {
		if err := s.memories[i].close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.memories = nil
	s.globals = nil
	return firstErr
}

// ExternObj is a FunctionEnv[T]'s typed host-state cell (§4.6): an opaque
// box living in the store's arena so a FunctionEnv can be a cheap
// StoreHandle rather than an interface value captured by closure.
type ExternObj struct {
	value any
}
