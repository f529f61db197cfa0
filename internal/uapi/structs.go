// Package uapi defines the io_uring userspace ABI as byte-exact records.
// Field order, sizes and padding mirror include/uapi/linux/io_uring.h; the
// kernel reads and writes these structs through shared mappings, so the
// layout is a binary contract, not a style choice.
package uapi

// SQE is a 64-byte submission queue entry (struct io_uring_sqe).
// The union members of the kernel struct are flattened to the variants this
// program uses: Off is the file offset, Addr the buffer address, OpFlags the
// rw_flags word.
type SQE struct {
	Opcode      uint8  // IORING_OP_*
	Flags       uint8  // IOSQE_* per-entry flags
	IOPrio      uint16 // priority hint
	FD          int32  // target file descriptor
	Off         uint64 // byte offset into the file
	Addr        uint64 // buffer address
	Len         uint32 // requested length in bytes
	OpFlags     uint32 // operation-specific flags (rw_flags)
	UserData    uint64 // correlation tag, echoed back in the CQE
	BufIndex    uint16
	Personality uint16
	SpliceFDIn  int32
	Addr3       uint64
	_           uint64
}

// CQE is a 16-byte completion queue entry (struct io_uring_cqe).
// Res is -errno on failure, the transferred byte count otherwise.
type CQE struct {
	UserData uint64
	Res      int32
	Flags    uint32
}

// SQRingOffsets reports where the submission ring fields live inside the
// SQ ring mapping (struct io_sqring_offsets). Filled by the kernel at setup.
type SQRingOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Flags       uint32
	Dropped     uint32
	Array       uint32
	Resv1       uint32
	Resv2       uint64
}

// CQRingOffsets reports where the completion ring fields live inside the
// CQ ring mapping (struct io_cqring_offsets). Filled by the kernel at setup.
type CQRingOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Overflow    uint32
	CQEs        uint32
	Flags       uint32
	Resv1       uint32
	Resv2       uint64
}

// Params is exchanged with io_uring_setup (struct io_uring_params). The
// caller may fill Flags; the kernel fills everything else, including the
// ring field offsets the process needs to map the shared regions. Field
// placement inside the mappings is owned by the running kernel version and
// must never be assumed constant.
type Params struct {
	SQEntries    uint32
	CQEntries    uint32
	Flags        uint32
	SQThreadCPU  uint32
	SQThreadIdle uint32
	Features     uint32
	WQFd         uint32
	Resv         [3]uint32
	SQOff        SQRingOffsets
	CQOff        CQRingOffsets
}
