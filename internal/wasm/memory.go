package wasm

import (
	"fmt"
	"sync"
)

// MemoryError is the error family of §4.3 growth/bounds failures.
type MemoryError struct {
	Code    MemoryErrorCode
	Current Pages
	Delta   Pages
}

type MemoryErrorCode int

const (
	CouldNotGrow MemoryErrorCode = iota
	MinimumExceedsMaximum
	MemoryGeneric
)

func (e *MemoryError) Error() string {
	switch e.Code {
	case CouldNotGrow:
		return fmt.Sprintf("could not grow memory: current=%d attempted_delta=%d", e.Current, e.Delta)
	case MinimumExceedsMaximum:
		return "memory minimum exceeds maximum"
	default:
		return "memory error"
	}
}

// MemoryAccessErrorCode is the error family of §4.9 host-access helpers.
type MemoryAccessErrorCode int

const (
	AccessOverflow MemoryAccessErrorCode = iota
	AccessHeapOutOfBounds
	AccessNonUtf8String
)

type MemoryAccessError struct {
	Code MemoryAccessErrorCode
}

func (e *MemoryAccessError) Error() string {
	switch e.Code {
	case AccessOverflow:
		return "offset+length overflows"
	case AccessHeapOutOfBounds:
		return "access exceeds memory size"
	case AccessNonUtf8String:
		return "bytes are not valid utf-8"
	default:
		return "memory access error"
	}
}

// VMMemoryDefinition is the pair every linear-memory-backed VMContext slot
// holds: a pointer to the base of committed bytes and the current length,
// observed directly by compiled code (§4.1, §4.3).
type VMMemoryDefinition struct {
	Base          []byte // len(Base) == CurrentLength; cap(Base) reflects the reservation.
	CurrentLength uint64
}

// MemoryInstance is the capability set §4.3 requires of both memory
// styles. Grounded on the teacher's internal/wasm/memory_test.go, which
// drives a MemoryInstance purely through Grow/Size/reads/writes.
type MemoryInstance struct {
	mu sync.Mutex // guards grow/vmmemory swap; Read and Write also hold it for the duration of their copy.

	typ   MemoryType
	style memoryStyle

	def VMMemoryDefinition

	// guardBytes is folded into the capacity reservation past the static
	// growth bound in NewMemoryInstance (see GuardBytes).
	guardBytes uint64

	owner StoreId
}

type memoryStyle int

const (
	styleStatic memoryStyle = iota
	styleDynamic
)

// NewMemoryInstance builds a MemoryInstance, selecting Static or Dynamic per
// the style-selection heuristic: memories whose Maximum is known and
// within StaticMemoryMinimumPagesThreshold get the static style;
// unbounded-maximum or very large memories get dynamic (§4.3).
//
// A static memory reserves capacity up to its bound (StaticMemoryBoundPages,
// itself clamped to the type's own Maximum) at construction time, so later
// Grow calls within that bound can slice-extend in place instead of
// reallocating — the Go stand-in for a PROT_NONE virtual reservation a
// native compiler would make real guard pages out of.
func NewMemoryInstance(owner StoreId, typ MemoryType, t Tunables) (*MemoryInstance, error) {
	if typ.Maximum != nil && typ.Minimum > *typ.Maximum {
		return nil, &MemoryError{Code: MinimumExceedsMaximum}
	}
	style := styleDynamic
	if typ.Maximum != nil && *typ.Maximum <= t.StaticMemoryMinimumPagesThreshold {
		style = styleStatic
	}
	guard := t.DynamicMemoryGuardBytes
	if style == styleStatic {
		guard = t.StaticMemoryGuardBytes
	}

	minLen := uint64(typ.Minimum) * Page
	capPages := t.StaticMemoryBoundPages
	if typ.Maximum != nil && *typ.Maximum < capPages {
		capPages = *typ.Maximum
	}
	// The capacity reservation extends guardBytes past the growth bound, so
	// that a static memory's Base, once allocated, never reallocates out
	// from under a guard-region reservation either — mirroring the real
	// mmap(PROT_NONE) tail a native backend would place there.
	capLen := uint64(capPages)*Page + guard

	var base []byte
	if style == styleStatic && capLen > minLen {
		base = make([]byte, minLen, capLen)
	} else {
		base = make([]byte, minLen)
	}
	return &MemoryInstance{
		typ:        typ,
		style:      style,
		def:        VMMemoryDefinition{Base: base, CurrentLength: uint64(len(base))},
		guardBytes: guard,
		owner:      owner,
	}, nil
}

// Ty returns the memory's declared type.
func (m *MemoryInstance) Ty() MemoryType { return m.typ }

// GuardBytes returns the guard region size folded into this memory's
// capacity reservation at construction (§4.3 Tunables).
func (m *MemoryInstance) GuardBytes() uint64 { return m.guardBytes }

// Size returns the current committed size in pages.
func (m *MemoryInstance) Size() Pages {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Pages(m.def.CurrentLength / Page)
}

// Grow attempts to add delta pages, returning the previous size. The style
// determines whether growth happens in place (static) or via reallocation
// that may move Base (dynamic); either way def is updated before return.
func (m *MemoryInstance) Grow(delta Pages) (Pages, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := Pages(m.def.CurrentLength / Page)
	if delta == 0 {
		return current, nil
	}
	newSize := current + delta
	if newSize < current { // overflow
		return 0, &MemoryError{Code: CouldNotGrow, Current: current, Delta: delta}
	}
	if m.typ.Maximum != nil && newSize > *m.typ.Maximum {
		return 0, &MemoryError{Code: CouldNotGrow, Current: current, Delta: delta}
	}

	newLen := uint64(newSize) * Page
	switch m.style {
	case styleStatic:
		// Capacity was reserved up-front in NewMemoryInstance, so growth
		// within that bound is a plain reslice: the underlying array, and
		// therefore &m.def.Base[0], never moves. Only a request past the
		// reservation (shouldn't happen since the reservation is clamped to
		// the type's own Maximum, but Grow must not panic on it) falls back
		// to a one-time reallocation.
		if newLen <= uint64(cap(m.def.Base)) {
			m.def.Base = m.def.Base[:newLen]
		} else {
			grown := make([]byte, newLen)
			copy(grown, m.def.Base)
			m.def.Base = grown
		}
	case styleDynamic:
		grown := make([]byte, newLen)
		copy(grown, m.def.Base)
		m.def.Base = grown
	}
	m.def.CurrentLength = newLen
	return current, nil
}

// VMMemory returns the current VMMemoryDefinition, as written into the
// instance's trailing VMContext area during instantiation (§4.1 step 3)
// and re-read after any Grow for dynamic memories.
func (m *MemoryInstance) VMMemory() VMMemoryDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.def
}

// CopyToNewStore duplicates this memory byte-for-byte into a new store,
// honoring the destination's tunables for style selection (§4.3).
func (m *MemoryInstance) CopyToNewStore(dst *Store) (*MemoryInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := NewMemoryInstance(dst.id, m.typ, dst.tunables)
	if err != nil {
		return nil, err
	}
	copy(n.def.Base, m.def.Base)
	n.def.CurrentLength = m.def.CurrentLength
	return n, nil
}

func (m *MemoryInstance) close() error { return nil }

// Read copies len(dst) bytes starting at offset into dst (§4.9).
func (m *MemoryInstance) Read(offset uint64, dst []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := offset + uint64(len(dst))
	if end < offset {
		return &MemoryAccessError{Code: AccessOverflow}
	}
	if end > m.def.CurrentLength {
		return &MemoryAccessError{Code: AccessHeapOutOfBounds}
	}
	copy(dst, m.def.Base[offset:end])
	return nil
}

// Write copies src into the memory starting at offset (§4.9).
func (m *MemoryInstance) Write(offset uint64, src []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := offset + uint64(len(src))
	if end < offset {
		return &MemoryAccessError{Code: AccessOverflow}
	}
	if end > m.def.CurrentLength {
		return &MemoryAccessError{Code: AccessHeapOutOfBounds}
	}
	copy(m.def.Base[offset:end], src)
	return nil
}

// copyChunkBytes is the stride used by CopyToMemory, bounding the size of
// any transient staging buffer (§4.9: "chunked, e.g. 40 KiB stride").
const copyChunkBytes = 40 * 1024

// CopyToMemory copies amount bytes from this memory (at offset src) into
// other (at offset dst), chunked so no single transient buffer exceeds
// copyChunkBytes.
func (m *MemoryInstance) CopyToMemory(src uint64, other *MemoryInstance, dst uint64, amount uint64) error {
	buf := make([]byte, copyChunkBytes)
	for amount > 0 {
		n := uint64(len(buf))
		if n > amount {
			n = amount
		}
		if err := m.Read(src, buf[:n]); err != nil {
			return err
		}
		if err := other.Write(dst, buf[:n]); err != nil {
			return err
		}
		src += n
		dst += n
		amount -= n
	}
	return nil
}
