package uring

import (
	"sync/atomic"
	"unsafe"

	"github.com/dmahler/uringbench/internal/uapi"
)

// PeekCQE returns the oldest unconsumed completion without advancing the
// cursor, or nil when none exists. With wait set and the queue empty, it
// blocks in one Enter(0, 1, GETEVENTS) call until the kernel posts a
// completion, then re-reads the tail; nil after the wait means no work was
// outstanding. Callers must never wait without submitted work in flight,
// or the call blocks indefinitely.
func (r *Ring) PeekCQE(wait bool) (*uapi.CQE, error) {
	head := *r.cqHead // we are the sole writer of this word
	if head == atomic.LoadUint32(r.cqTail) {
		if !wait {
			return nil, nil
		}
		if _, err := r.Enter(0, 1, uapi.EnterGetEvents); err != nil {
			return nil, err
		}
		if head == atomic.LoadUint32(r.cqTail) {
			return nil, nil
		}
	}
	return (*uapi.CQE)(unsafe.Add(unsafe.Pointer(r.cqes),
		uintptr(head&r.cqMask)*uintptr(cqeSize))), nil
}

// SeenCQE marks the last peeked completion as consumed by advancing the
// shared head with a release store. Must pair 1:1 with a PeekCQE that
// returned an entry; skipping it stalls that slot forever.
func (r *Ring) SeenCQE() {
	atomic.StoreUint32(r.cqHead, *r.cqHead+1)
}

// CQOverflow reports the kernel's count of completions dropped because the
// CQ ring was full.
func (r *Ring) CQOverflow() uint32 {
	return atomic.LoadUint32(r.cqOverflow)
}
