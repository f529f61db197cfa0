package uring

import (
	"sync/atomic"
	"unsafe"

	"github.com/dmahler/uringbench/internal/uapi"
)

// NextSQE hands out the next free submission slot, zeroed, for the caller
// to fill in place. Returns nil when the ring is full; the caller must then
// publish what it has and drain completions before asking again. The
// kernel-visible tail is not advanced here, so a partially filled entry is
// never observable by the kernel.
func (r *Ring) NextSQE() *uapi.SQE {
	head := atomic.LoadUint32(r.sqHead)
	next := r.sqeTail + 1
	if next-head > r.sqEntries {
		return nil
	}
	sqe := (*uapi.SQE)(unsafe.Add(unsafe.Pointer(r.sqes),
		uintptr(r.sqeTail&r.sqMask)*uintptr(sqeSize)))
	r.sqeTail = next
	*sqe = uapi.SQE{}
	return sqe
}

// FlushSQ publishes every slot filled since the last flush: each slot's own
// index is written into the SQ index array (identity mapping, slots are
// filled in ring order), then the shared tail is advanced with a release
// store so the entry writes are visible to the kernel before the new tail
// is. Returns the number of published entries not yet consumed by the
// kernel, which is what Enter expects as its submit count.
func (r *Ring) FlushSQ() uint32 {
	tail := *r.sqTail // we are the sole writer of this word
	if tail != r.sqeTail {
		for ; tail != r.sqeTail; tail++ {
			idx := tail & r.sqMask
			*(*uint32)(unsafe.Add(unsafe.Pointer(r.sqArray), uintptr(idx)*4)) = idx
		}
		atomic.StoreUint32(r.sqTail, r.sqeTail)
		Sfence()
	}
	return r.sqeTail - atomic.LoadUint32(r.sqHead)
}
