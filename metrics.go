package uringbench

import (
	"math"
	"sync/atomic"
	"time"
)

// Metrics accumulates per-run counters. Submit timestamps are kept in a
// table indexed by correlation tag modulo queue depth; the ring guarantees
// at most depth requests in flight, so a slot is never overwritten before
// its completion has been observed.
type Metrics struct {
	Completed  atomic.Uint64
	Failed     atomic.Uint64
	BytesMoved atomic.Uint64

	TotalLatencyNs atomic.Uint64
	MinLatencyNs   atomic.Uint64
	MaxLatencyNs   atomic.Uint64

	submitNs []atomic.Int64
}

// NewMetrics creates a metrics instance sized for the given queue depth.
func NewMetrics(depth int) *Metrics {
	m := &Metrics{submitNs: make([]atomic.Int64, depth)}
	m.MinLatencyNs.Store(math.MaxUint64)
	return m
}

// RecordSubmit notes the submission timestamp for a correlation tag.
func (m *Metrics) RecordSubmit(tag uint64, nowNs int64) {
	m.submitNs[tag%uint64(len(m.submitNs))].Store(nowNs)
}

// RecordCompletion accounts one completion. A negative result counts as a
// failure; a non-negative one adds the transferred bytes.
func (m *Metrics) RecordCompletion(tag uint64, res int32, nowNs int64) {
	m.Completed.Add(1)
	if res < 0 {
		m.Failed.Add(1)
	} else {
		m.BytesMoved.Add(uint64(res))
	}

	submitted := m.submitNs[tag%uint64(len(m.submitNs))].Load()
	if submitted == 0 || nowNs < submitted {
		return
	}
	lat := uint64(nowNs - submitted)
	m.TotalLatencyNs.Add(lat)

	for {
		cur := m.MaxLatencyNs.Load()
		if lat <= cur || m.MaxLatencyNs.CompareAndSwap(cur, lat) {
			break
		}
	}
	for {
		cur := m.MinLatencyNs.Load()
		if lat >= cur || m.MinLatencyNs.CompareAndSwap(cur, lat) {
			break
		}
	}
}

// Snapshot is a consistent-enough copy of the counters for reporting.
type Snapshot struct {
	Completed  uint64
	Failed     uint64
	BytesMoved uint64
	AvgLatency time.Duration
	MinLatency time.Duration
	MaxLatency time.Duration
}

// Snapshot returns the current counter values with derived latency stats.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Completed:  m.Completed.Load(),
		Failed:     m.Failed.Load(),
		BytesMoved: m.BytesMoved.Load(),
		MaxLatency: time.Duration(m.MaxLatencyNs.Load()),
	}
	if min := m.MinLatencyNs.Load(); min != math.MaxUint64 {
		s.MinLatency = time.Duration(min)
	}
	if s.Completed > 0 {
		s.AvgLatency = time.Duration(m.TotalLatencyNs.Load() / s.Completed)
	}
	return s
}
