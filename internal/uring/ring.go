// Package uring drives a raw io_uring instance at the syscall level:
// io_uring_setup, the three shared-memory mappings, the cursor protocol,
// and io_uring_enter. No wrapping library sits between this package and
// the kernel.
//
// Concurrency contract: the kernel and this process share the mapped
// cursor words in single-producer/single-consumer pairs. The process is
// the only writer of the SQ tail and CQ head; the kernel is the only
// writer of the SQ head and CQ tail. Every read that gates a decision
// uses an acquire load, every publishing write a release store.
package uring

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dmahler/uringbench/internal/logging"
	"github.com/dmahler/uringbench/internal/uapi"
)

// Failure classes surfaced to callers. Wrapped errors carry the errno.
var (
	ErrSetup = errors.New("io_uring_setup failed")
	ErrMmap  = errors.New("ring mmap failed")
	ErrEnter = errors.New("io_uring_enter failed")
)

var (
	sqeSize = uint32(unsafe.Sizeof(uapi.SQE{}))
	cqeSize = uint32(unsafe.Sizeof(uapi.CQE{}))
)

// Ring owns one kernel io_uring instance: the ring fd, the three shared
// mappings, and the cursor pointers resolved into them. Valid only between
// a successful Setup and Close; every field pointer dangles afterwards.
type Ring struct {
	fd       int
	features uint32

	// mapped regions, unmapped by Close
	sqRegion  []byte
	cqRegion  []byte
	sqeRegion []byte

	// submission queue, resolved from kernel-reported offsets
	sqHead    *uint32 // written by kernel
	sqTail    *uint32 // written by us
	sqMask    uint32
	sqEntries uint32
	sqDropped *uint32
	sqArray   *uint32
	sqes      *uapi.SQE

	// completion queue, resolved from kernel-reported offsets
	cqHead     *uint32 // written by us
	cqTail     *uint32 // written by kernel
	cqMask     uint32
	cqEntries  uint32
	cqOverflow *uint32
	cqes       *uapi.CQE

	// local tail of filled-but-unpublished SQEs
	sqeTail uint32
}

// Setup creates an io_uring with at least entries submission slots and maps
// its shared regions. Region sizes and every cursor pointer are computed
// from the offsets the kernel reports back, never assumed. On any mapping
// failure the partial mappings are torn down and the fd closed before the
// error is returned.
func Setup(entries uint32) (*Ring, error) {
	logger := logging.Default()

	var params uapi.Params
	fd, _, errno := unix.Syscall(unix.SYS_IO_URING_SETUP,
		uintptr(entries),
		uintptr(unsafe.Pointer(&params)),
		0)
	if errno != 0 {
		return nil, fmt.Errorf("%w: entries=%d: %w", ErrSetup, entries, errno)
	}

	r := &Ring{fd: int(fd), features: params.Features}
	if err := r.mmap(&params); err != nil {
		r.unmapAll()
		unix.Close(r.fd)
		return nil, err
	}

	logger.Debug("ring created",
		"fd", r.fd,
		"sq_entries", r.sqEntries,
		"cq_entries", r.cqEntries,
		"features", fmt.Sprintf("0x%x", r.features))
	return r, nil
}

// mmap establishes the SQ ring, CQ ring and SQE array mappings and resolves
// the cursor pointers. The kernel also supports serving SQ and CQ out of a
// single mapping (FeatSingleMMap); separate mappings remain valid on every
// kernel version, so three are always used.
func (r *Ring) mmap(params *uapi.Params) error {
	sqSize := int(params.SQOff.Array + params.SQEntries*4)
	cqSize := int(params.CQOff.CQEs + params.CQEntries*cqeSize)
	sqesSize := int(params.SQEntries * sqeSize)

	const prot = unix.PROT_READ | unix.PROT_WRITE
	const flags = unix.MAP_SHARED | unix.MAP_POPULATE

	var err error
	if r.sqRegion, err = unix.Mmap(r.fd, int64(uapi.OffSQRing), sqSize, prot, flags); err != nil {
		return fmt.Errorf("%w: sq ring: %w", ErrMmap, err)
	}
	if r.cqRegion, err = unix.Mmap(r.fd, int64(uapi.OffCQRing), cqSize, prot, flags); err != nil {
		return fmt.Errorf("%w: cq ring: %w", ErrMmap, err)
	}
	if r.sqeRegion, err = unix.Mmap(r.fd, int64(uapi.OffSQEs), sqesSize, prot, flags); err != nil {
		return fmt.Errorf("%w: sqe array: %w", ErrMmap, err)
	}

	sq := unsafe.Pointer(&r.sqRegion[0])
	r.sqHead = (*uint32)(unsafe.Add(sq, uintptr(params.SQOff.Head)))
	r.sqTail = (*uint32)(unsafe.Add(sq, uintptr(params.SQOff.Tail)))
	r.sqMask = *(*uint32)(unsafe.Add(sq, uintptr(params.SQOff.RingMask)))
	r.sqEntries = *(*uint32)(unsafe.Add(sq, uintptr(params.SQOff.RingEntries)))
	r.sqDropped = (*uint32)(unsafe.Add(sq, uintptr(params.SQOff.Dropped)))
	r.sqArray = (*uint32)(unsafe.Add(sq, uintptr(params.SQOff.Array)))
	r.sqes = (*uapi.SQE)(unsafe.Pointer(&r.sqeRegion[0]))

	cq := unsafe.Pointer(&r.cqRegion[0])
	r.cqHead = (*uint32)(unsafe.Add(cq, uintptr(params.CQOff.Head)))
	r.cqTail = (*uint32)(unsafe.Add(cq, uintptr(params.CQOff.Tail)))
	r.cqMask = *(*uint32)(unsafe.Add(cq, uintptr(params.CQOff.RingMask)))
	r.cqEntries = *(*uint32)(unsafe.Add(cq, uintptr(params.CQOff.RingEntries)))
	r.cqOverflow = (*uint32)(unsafe.Add(cq, uintptr(params.CQOff.Overflow)))
	r.cqes = (*uapi.CQE)(unsafe.Add(cq, uintptr(params.CQOff.CQEs)))

	r.sqeTail = *r.sqTail
	return nil
}

// Enter tells the kernel toSubmit new entries are ready and, with
// EnterGetEvents, blocks until at least minComplete completions exist.
// Returns the number of entries the kernel consumed.
func (r *Ring) Enter(toSubmit, minComplete, flags uint32) (int, error) {
	n, _, errno := unix.Syscall6(unix.SYS_IO_URING_ENTER,
		uintptr(r.fd),
		uintptr(toSubmit),
		uintptr(minComplete),
		uintptr(flags),
		0, 0)
	if errno != 0 {
		return 0, fmt.Errorf("%w: submit=%d wait=%d: %w", ErrEnter, toSubmit, minComplete, errno)
	}
	return int(n), nil
}

// Close unmaps the shared regions and closes the ring fd. Must be called
// exactly once per successful Setup.
func (r *Ring) Close() error {
	r.unmapAll()
	return unix.Close(r.fd)
}

func (r *Ring) unmapAll() {
	if r.sqeRegion != nil {
		_ = unix.Munmap(r.sqeRegion)
		r.sqeRegion = nil
	}
	if r.cqRegion != nil {
		_ = unix.Munmap(r.cqRegion)
		r.cqRegion = nil
	}
	if r.sqRegion != nil {
		_ = unix.Munmap(r.sqRegion)
		r.sqRegion = nil
	}
}

// SQEntries returns the submission ring capacity granted by the kernel,
// which may exceed the requested depth (rounded up to a power of two).
func (r *Ring) SQEntries() uint32 { return r.sqEntries }

// Features returns the kernel feature bits reported at setup.
func (r *Ring) Features() uint32 { return r.features }

// FD returns the ring file descriptor.
func (r *Ring) FD() int { return r.fd }
