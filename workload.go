// Package uringbench measures disk I/O performance by driving a raw
// io_uring instance against a preallocated file opened with O_DIRECT.
package uringbench

import (
	"fmt"
	"time"
)

// Pattern selects how I/O offsets walk the target file.
type Pattern string

const (
	PatternSequential Pattern = "seq"
	PatternRandom     Pattern = "rand"
)

// Op selects the I/O direction of a workload.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

const (
	// DirectIOAlignment is the offset/length alignment O_DIRECT requires.
	DirectIOAlignment = 4096

	// MaxBlockSize is the largest block the engine's buffers accommodate.
	MaxBlockSize = 1 << 20

	// DefaultQueueDepth bounds the number of requests kept in flight.
	DefaultQueueDepth = 32
)

// Workload describes one benchmark configuration. Immutable for the
// duration of a run.
type Workload struct {
	Op          Op
	Pattern     Pattern
	BlockSize   int64
	NumRequests int
}

// Validate rejects configurations the engine cannot run against a file of
// the given size.
func (w Workload) Validate(fileSize int64) error {
	if w.Op != OpRead && w.Op != OpWrite {
		return NewError("validate", ErrCodeInvalidWorkload, fmt.Sprintf("unknown op %q", w.Op))
	}
	if w.Pattern != PatternSequential && w.Pattern != PatternRandom {
		return NewError("validate", ErrCodeInvalidWorkload, fmt.Sprintf("unknown pattern %q", w.Pattern))
	}
	if w.BlockSize <= 0 || w.BlockSize%DirectIOAlignment != 0 {
		return NewError("validate", ErrCodeInvalidWorkload,
			fmt.Sprintf("block size %d must be a positive multiple of %d", w.BlockSize, DirectIOAlignment))
	}
	if w.BlockSize > MaxBlockSize {
		return NewError("validate", ErrCodeInvalidWorkload,
			fmt.Sprintf("block size %d exceeds maximum %d", w.BlockSize, MaxBlockSize))
	}
	if w.NumRequests <= 0 {
		return NewError("validate", ErrCodeInvalidWorkload,
			fmt.Sprintf("request count %d must be positive", w.NumRequests))
	}
	if fileSize < w.BlockSize {
		return NewError("validate", ErrCodeInvalidWorkload,
			fmt.Sprintf("file size %d smaller than block size %d", fileSize, w.BlockSize))
	}
	return nil
}

func (w Workload) String() string {
	return fmt.Sprintf("%s/%s/%d", w.Op, w.Pattern, w.BlockSize)
}

// Result is the outcome of one workload run. Produced once, never mutated.
type Result struct {
	Workload
	Elapsed    time.Duration
	IOPS       float64
	MBps       float64 // mebibyte-based throughput
	Failed     uint64  // requests completing with a negative result
	AvgLatency time.Duration
}

// newResult derives the rate figures from the wall-clock duration of the
// whole run. Failed requests still count toward the rates: the engine
// measures throughput including failures.
func newResult(w Workload, elapsed time.Duration, failed uint64, avgLatency time.Duration) Result {
	r := Result{Workload: w, Elapsed: elapsed, Failed: failed, AvgLatency: avgLatency}
	if secs := elapsed.Seconds(); secs > 0 {
		r.IOPS = float64(w.NumRequests) / secs
		r.MBps = float64(int64(w.NumRequests)*w.BlockSize) / secs / (1 << 20)
	}
	return r
}

// DefaultMatrix is the standard workload grid: writes before reads so read
// phases always find real data, both patterns, small through large blocks.
func DefaultMatrix(numRequests int) []Workload {
	blocks := []int64{4 * 1024, 64 * 1024, 1024 * 1024}
	patterns := []Pattern{PatternSequential, PatternRandom}

	var matrix []Workload
	for _, op := range []Op{OpWrite, OpRead} {
		for _, pattern := range patterns {
			for _, block := range blocks {
				matrix = append(matrix, Workload{
					Op:          op,
					Pattern:     pattern,
					BlockSize:   block,
					NumRequests: numRequests,
				})
			}
		}
	}
	return matrix
}
