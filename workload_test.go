package uringbench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkloadValidate(t *testing.T) {
	const fileSize = int64(64 << 20)

	valid := Workload{Op: OpRead, Pattern: PatternRandom, BlockSize: 4096, NumRequests: 100}
	require.NoError(t, valid.Validate(fileSize))

	cases := []struct {
		name string
		w    Workload
	}{
		{"unknown op", Workload{Op: "append", Pattern: PatternRandom, BlockSize: 4096, NumRequests: 1}},
		{"unknown pattern", Workload{Op: OpRead, Pattern: "zigzag", BlockSize: 4096, NumRequests: 1}},
		{"unaligned block", Workload{Op: OpRead, Pattern: PatternRandom, BlockSize: 1000, NumRequests: 1}},
		{"zero block", Workload{Op: OpRead, Pattern: PatternRandom, BlockSize: 0, NumRequests: 1}},
		{"oversized block", Workload{Op: OpRead, Pattern: PatternRandom, BlockSize: 2 << 20, NumRequests: 1}},
		{"zero requests", Workload{Op: OpRead, Pattern: PatternRandom, BlockSize: 4096, NumRequests: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.w.Validate(fileSize)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrCodeInvalidWorkload))
		})
	}

	t.Run("block larger than file", func(t *testing.T) {
		w := Workload{Op: OpRead, Pattern: PatternSequential, BlockSize: 64 * 1024, NumRequests: 1}
		err := w.Validate(4096)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrCodeInvalidWorkload))
	})
}

func TestResultRates(t *testing.T) {
	w := Workload{Op: OpRead, Pattern: PatternRandom, BlockSize: 4096, NumRequests: 1000}
	r := newResult(w, time.Second, 0, 0)

	assert.Equal(t, 1000.0, r.IOPS)
	// 1000 * 4096 bytes over one second is 4096000/1048576 MB/s.
	assert.InDelta(t, 3.90625, r.MBps, 1e-9)
}

func TestResultZeroElapsed(t *testing.T) {
	w := Workload{Op: OpWrite, Pattern: PatternSequential, BlockSize: 4096, NumRequests: 10}
	r := newResult(w, 0, 0, 0)

	assert.Zero(t, r.IOPS)
	assert.Zero(t, r.MBps)
}

func TestDefaultMatrixWritesBeforeReads(t *testing.T) {
	matrix := DefaultMatrix(500)
	require.Len(t, matrix, 12) // 2 ops x 2 patterns x 3 block sizes

	lastWrite, firstRead := -1, len(matrix)
	for i, w := range matrix {
		require.NoError(t, w.Validate(64<<20))
		assert.Equal(t, 500, w.NumRequests)
		if w.Op == OpWrite && i > lastWrite {
			lastWrite = i
		}
		if w.Op == OpRead && i < firstRead {
			firstRead = i
		}
	}
	assert.Less(t, lastWrite, firstRead, "every write workload must precede every read")
}
