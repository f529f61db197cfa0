package uapi

import (
	"testing"
	"unsafe"
)

// Struct sizes must match the kernel headers exactly; a single byte of
// drift corrupts the shared-memory protocol.
func TestStructSizes(t *testing.T) {
	tests := []struct {
		name     string
		size     uintptr
		expected int
	}{
		{"SQE", unsafe.Sizeof(SQE{}), 64},
		{"CQE", unsafe.Sizeof(CQE{}), 16},
		{"SQRingOffsets", unsafe.Sizeof(SQRingOffsets{}), 40},
		{"CQRingOffsets", unsafe.Sizeof(CQRingOffsets{}), 40},
		{"Params", unsafe.Sizeof(Params{}), 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int(tt.size) != tt.expected {
				t.Errorf("%s size = %d, want %d", tt.name, tt.size, tt.expected)
			}
		})
	}
}

// Spot-check field placement within the SQE; these offsets are what the
// kernel dereferences when it consumes an entry.
func TestSQEFieldOffsets(t *testing.T) {
	var sqe SQE
	tests := []struct {
		name     string
		offset   uintptr
		expected uintptr
	}{
		{"FD", unsafe.Offsetof(sqe.FD), 4},
		{"Off", unsafe.Offsetof(sqe.Off), 8},
		{"Addr", unsafe.Offsetof(sqe.Addr), 16},
		{"Len", unsafe.Offsetof(sqe.Len), 24},
		{"UserData", unsafe.Offsetof(sqe.UserData), 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.offset != tt.expected {
				t.Errorf("SQE.%s offset = %d, want %d", tt.name, tt.offset, tt.expected)
			}
		})
	}
}

func TestParamsOffsetDescriptors(t *testing.T) {
	var p Params
	if got := unsafe.Offsetof(p.SQOff); got != 40 {
		t.Errorf("Params.SQOff offset = %d, want 40", got)
	}
	if got := unsafe.Offsetof(p.CQOff); got != 80 {
		t.Errorf("Params.CQOff offset = %d, want 80", got)
	}
}

func TestOpcodeValues(t *testing.T) {
	// IORING_OP_READ/WRITE are the non-vectored variants added in 5.6.
	if OpRead != 22 {
		t.Errorf("OpRead = %d, want 22", OpRead)
	}
	if OpWrite != 23 {
		t.Errorf("OpWrite = %d, want 23", OpWrite)
	}
}
