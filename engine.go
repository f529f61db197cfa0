package uringbench

import (
	"fmt"
	mathrand "math/rand"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dmahler/uringbench/internal/logging"
	"github.com/dmahler/uringbench/internal/uapi"
	"github.com/dmahler/uringbench/internal/uring"
)

// maxStalledRounds bounds how many consecutive fill+drain rounds may make
// no progress with work outstanding before the run is declared stalled.
// An empty peek after a wait normally means a transient underrun and the
// loop simply retries; the bound keeps a kernel anomaly from spinning the
// engine silently forever.
const maxStalledRounds = 1000

// ringTransport is the slice of the ring the engine drives. *uring.Ring
// implements it; tests substitute an instrumented fake.
type ringTransport interface {
	NextSQE() *uapi.SQE
	FlushSQ() uint32
	Enter(toSubmit, minComplete, flags uint32) (int, error)
	PeekCQE(wait bool) (*uapi.CQE, error)
	SeenCQE()
}

// Engine runs workloads against one target file through one ring. A single
// logical thread drives it; the only concurrency is with the kernel, via
// the ring's cursor contract.
type Engine struct {
	ring     ringTransport
	fd       int
	fileSize int64
	depth    int

	// bufRegion is one anonymous mapping carved into depth page-aligned
	// buffers, each sized for the largest supported block. A buffer is
	// reused only after queue-depth later submissions, by which point the
	// in-flight bound guarantees its previous request has completed.
	bufRegion []byte
	bufs      [][]byte

	log *logging.Logger
}

// NewEngine prepares an engine for the given ring and target file. The
// file must already be extended to fileSize and opened for direct I/O.
func NewEngine(ring *uring.Ring, fd int, fileSize int64, queueDepth int) (*Engine, error) {
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	if uint32(queueDepth) > ring.SQEntries() {
		logging.Warn("queue depth clamped to ring capacity",
			"requested", queueDepth, "granted", ring.SQEntries())
		queueDepth = int(ring.SQEntries())
	}
	if fileSize < DirectIOAlignment {
		return nil, NewError("engine", ErrCodeInvalidWorkload,
			fmt.Sprintf("file size %d smaller than minimum block %d", fileSize, DirectIOAlignment))
	}

	// Direct I/O needs page-aligned buffers; an anonymous mapping is
	// aligned by construction and stays pinned at a stable address for
	// the kernel to DMA into.
	region, err := unix.Mmap(-1, 0, queueDepth*MaxBlockSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, WrapError("engine", fmt.Errorf("buffer pool mmap: %w", err))
	}

	bufs := make([][]byte, queueDepth)
	for i := range bufs {
		bufs[i] = region[i*MaxBlockSize : (i+1)*MaxBlockSize]
	}

	return &Engine{
		ring:      ring,
		fd:        fd,
		fileSize:  fileSize,
		depth:     queueDepth,
		bufRegion: region,
		bufs:      bufs,
		log:       logging.Default(),
	}, nil
}

// Close releases the buffer pool. The ring and file descriptor belong to
// the caller.
func (e *Engine) Close() error {
	if e.bufRegion == nil {
		return nil
	}
	err := unix.Munmap(e.bufRegion)
	e.bufRegion = nil
	e.bufs = nil
	return err
}

// Run executes one workload to completion and returns its measurements.
// Individual request failures are logged and counted but never abort the
// run; only transport-level errors do.
func (e *Engine) Run(w Workload) (Result, error) {
	if err := w.Validate(e.fileSize); err != nil {
		return Result{}, err
	}

	log := e.log.WithWorkload(string(w.Op), string(w.Pattern), w.BlockSize)
	rng := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	gen := newOffsetGen(w.Pattern, w.BlockSize, e.fileSize, rng)
	metrics := NewMetrics(e.depth)

	opcode := uapi.OpRead
	if w.Op == OpWrite {
		opcode = uapi.OpWrite
	}

	total := uint64(w.NumRequests)
	var submitted, completed uint64
	stalled := 0

	log.Debug("workload starting", "requests", w.NumRequests, "queue_depth", e.depth)
	start := time.Now()

	for completed < total {
		// Fill: acquire and populate slots up to the queue-depth bound,
		// stopping early when the ring is full.
		filled := uint32(0)
		for submitted < total && submitted-completed < uint64(e.depth) {
			buf := e.bufs[submitted%uint64(len(e.bufs))]
			if int64(len(buf)) < w.BlockSize {
				// All buffers are sized for the largest block, so this
				// never fires; a misconfigured pool skips the round
				// rather than corrupting a transfer.
				log.Warn("buffer smaller than block, skipping fill round",
					"buffer", len(buf), "block_size", w.BlockSize)
				break
			}
			sqe := e.ring.NextSQE()
			if sqe == nil {
				break
			}
			buf = buf[:w.BlockSize]
			if w.Op == OpWrite {
				// Fresh random payload per write keeps device-side
				// compression and write-combining from flattering the
				// numbers.
				rng.Read(buf)
			}
			sqe.Opcode = opcode
			sqe.FD = int32(e.fd)
			sqe.Off = uint64(gen.next())
			sqe.Addr = uint64(uintptr(unsafe.Pointer(&buf[0])))
			sqe.Len = uint32(w.BlockSize)
			sqe.UserData = submitted
			metrics.RecordSubmit(submitted, time.Now().UnixNano())
			submitted++
			filled++
		}

		// Submit: publish the batch and notify the kernel.
		if filled > 0 {
			pending := e.ring.FlushSQ()
			if _, err := e.ring.Enter(pending, 0, 0); err != nil {
				return Result{}, WrapError("submit", err)
			}
		}

		// Drain: consume completions until the queue underruns; an empty
		// peek after the wait ends the round and the outer loop retries.
		drained := false
		for completed < submitted {
			cqe, err := e.ring.PeekCQE(true)
			if err != nil {
				return Result{}, WrapError("drain", err)
			}
			if cqe == nil {
				break
			}
			if cqe.UserData >= submitted {
				log.Error("completion tag out of range",
					"tag", cqe.UserData, "submitted", submitted)
			}
			if cqe.Res < 0 {
				log.Warn("request failed",
					"tag", cqe.UserData,
					"error", syscall.Errno(-cqe.Res).Error())
			}
			metrics.RecordCompletion(cqe.UserData, cqe.Res, time.Now().UnixNano())
			completed++
			e.ring.SeenCQE()
			drained = true
		}

		if filled == 0 && !drained {
			stalled++
			if stalled >= maxStalledRounds {
				return Result{}, NewError("run", ErrCodeStalled,
					fmt.Sprintf("no progress after %d rounds, %d of %d completed",
						stalled, completed, total))
			}
		} else {
			stalled = 0
		}
	}

	elapsed := time.Since(start)
	snap := metrics.Snapshot()
	res := newResult(w, elapsed, snap.Failed, snap.AvgLatency)

	log.Info("workload complete",
		"elapsed", elapsed,
		"iops", fmt.Sprintf("%.1f", res.IOPS),
		"mb_per_sec", fmt.Sprintf("%.2f", res.MBps),
		"failed", snap.Failed)
	return res, nil
}
