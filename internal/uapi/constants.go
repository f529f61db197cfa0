package uapi

// Opcodes from enum io_uring_op. Only the plain read/write variants are
// submitted by this program, but neighbours are kept for log readability.
const (
	OpNop    uint8 = 0
	OpReadv  uint8 = 1
	OpWritev uint8 = 2
	OpFsync  uint8 = 3
	OpRead   uint8 = 22
	OpWrite  uint8 = 23
)

// io_uring_enter flags.
const (
	EnterGetEvents uint32 = 1 << 0
	EnterSQWakeup  uint32 = 1 << 1
)

// Magic mmap offsets selecting which shared region io_uring exposes
// through mmap on the ring fd.
const (
	OffSQRing uint64 = 0
	OffCQRing uint64 = 0x8000000
	OffSQEs   uint64 = 0x10000000
)

// Feature bits reported in Params.Features.
const (
	FeatSingleMMap   uint32 = 1 << 0
	FeatNoDrop       uint32 = 1 << 1
	FeatSubmitStable uint32 = 1 << 2
)
