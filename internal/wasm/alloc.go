package wasm

import "encoding/binary"

// InstanceAllocation is the raw buffer backing one Instance's VMContext
// trailing area (§4.2, §4.1). It is produced once by Allocate and must be
// consumed exactly once by Instantiate; an allocation that is
// abandoned instead (instantiation failing before completion, §4.7 "any
// failure aborts and rolls back") is simply dropped by the garbage
// collector, since unlike the native allocator this runtime never reserves
// OS resources here — that happens per-memory in NewMemoryInstance instead.
//
// Grounded on original_source/lib/vm/src/instance/allocator.rs, whose
// InstanceAllocator hands out a single-use allocation that the caller must
// either finish initializing or explicitly deallocate; the "consumed
// exactly once" discipline is kept here as a runtime-checked bool rather
// than Rust's move semantics.
type InstanceAllocation struct {
	offsets *VMOffsets
	// raw holds only the plain-old-data fields of the trailing area:
	// current-length/current-elements counters and interned signature ids.
	// Pointer-bearing fields (memory/table/global bases, function bodies,
	// vmctx backpointers) have no safe representation inside a []byte in
	// Go — storing a real pointer there would be invisible to the garbage
	// collector — so those live in Instance's typed handle slices instead
	// and raw is consulted only for the numeric bookkeeping fields.
	raw      []byte
	consumed bool
}

// Allocate reserves the trailing VMContext buffer for a module about to be
// instantiated (§4.2 step 2 of §4.7).
func Allocate(offsets *VMOffsets) *InstanceAllocation {
	return &InstanceAllocation{
		offsets: offsets,
		raw:     make([]byte, offsets.SizeOfVMContext()),
	}
}

func (a *InstanceAllocation) mustNotConsumed() {
	if a.consumed {
		panic("BUG: InstanceAllocation used after being consumed")
	}
}

// consume marks the allocation as handed off to an Instance; any further
// use panics, matching the single-owner discipline of the source allocator.
func (a *InstanceAllocation) consume() {
	a.mustNotConsumed()
	a.consumed = true
}

func (a *InstanceAllocation) putU32(off Offset, v uint32) {
	a.mustNotConsumed()
	binary.LittleEndian.PutUint32(a.raw[off:], v)
}

func (a *InstanceAllocation) putU64(off Offset, v uint64) {
	a.mustNotConsumed()
	binary.LittleEndian.PutUint64(a.raw[off:], v)
}

func (a *InstanceAllocation) getU64(off Offset) uint64 {
	return binary.LittleEndian.Uint64(a.raw[off:])
}

// setDefinedMemoryLength records a defined memory's current committed
// length at its VMMemoryDefinition slot (§4.1 step 3 of §4.7).
func (a *InstanceAllocation) setDefinedMemoryLength(i Index, length uint64) {
	a.putU64(a.offsets.DefinedMemory(i)+ptrSize, length)
}

// setDefinedTableElements records a defined table's current element count.
func (a *InstanceAllocation) setDefinedTableElements(i Index, n uint64) {
	a.putU64(a.offsets.DefinedTable(i)+ptrSize, n)
}

// setDefinedGlobal records a defined global's raw 64-bit cell.
func (a *InstanceAllocation) setDefinedGlobal(i Index, v uint64) {
	a.putU64(a.offsets.DefinedGlobal(i), v)
}

// setSignatureID records the interned VMSharedSignatureIndex for the i-th
// signature used by an indirect call site in this module (§4.7 step 7).
func (a *InstanceAllocation) setSignatureID(i Index, id VMSharedSignatureIndex) {
	a.putU32(a.offsets.SignatureID(i), uint32(id))
}
