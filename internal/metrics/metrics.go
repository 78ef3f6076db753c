// Package metrics tracks pipeline throughput and loss counters via a set of
// atomic counters exposed through an Observer interface.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Metrics holds the atomic counters for one run.
type Metrics struct {
	HitsReceived    uint64
	DiscardedRaw    uint64
	DiscardedWrite  uint64
	SpeciesEmitted  uint64
	RawFilesRotated uint64
	SpeciesFilesRotated uint64

	QueueDepthTotal uint64
	QueueDepthCount uint64
	MaxQueueDepth   uint64

	ProcessLatencyNsTotal uint64
	ProcessLatencyCount   uint64

	StartTime time.Time
	StopTime  time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

func (m *Metrics) RecordHits(n uint64)            { atomic.AddUint64(&m.HitsReceived, n) }
func (m *Metrics) RecordDiscardedRaw(n uint64)     { atomic.AddUint64(&m.DiscardedRaw, n) }
func (m *Metrics) RecordDiscardedWrite(n uint64)   { atomic.AddUint64(&m.DiscardedWrite, n) }
func (m *Metrics) RecordSpecies(n uint64)          { atomic.AddUint64(&m.SpeciesEmitted, n) }
func (m *Metrics) RecordRawFileRotated()           { atomic.AddUint64(&m.RawFilesRotated, 1) }
func (m *Metrics) RecordSpeciesFileRotated()       { atomic.AddUint64(&m.SpeciesFilesRotated, 1) }

// RecordQueueDepth updates the running average and max via a CAS loop on
// the max so concurrent recorders never lose an update.
func (m *Metrics) RecordQueueDepth(depth uint64) {
	atomic.AddUint64(&m.QueueDepthTotal, depth)
	atomic.AddUint64(&m.QueueDepthCount, 1)
	for {
		cur := atomic.LoadUint64(&m.MaxQueueDepth)
		if depth <= cur {
			return
		}
		if atomic.CompareAndSwapUint64(&m.MaxQueueDepth, cur, depth) {
			return
		}
	}
}

// RecordProcessLatency folds one process() call's wall-clock duration into
// the running average reported by Snapshot.
func (m *Metrics) RecordProcessLatency(d time.Duration) {
	atomic.AddUint64(&m.ProcessLatencyNsTotal, uint64(d.Nanoseconds()))
	atomic.AddUint64(&m.ProcessLatencyCount, 1)
}

func (m *Metrics) Stop() { m.StopTime = time.Now() }

// Snapshot is a point-in-time, non-atomic read of the counters.
type Snapshot struct {
	HitsReceived        uint64
	DiscardedRaw        uint64
	DiscardedWrite      uint64
	SpeciesEmitted      uint64
	RawFilesRotated     uint64
	SpeciesFilesRotated uint64
	AvgQueueDepth       float64
	MaxQueueDepth       uint64
	AvgProcessLatencyNs float64
	UptimeNs            int64
}

func (m *Metrics) Snapshot() Snapshot {
	stop := m.StopTime
	if stop.IsZero() {
		stop = time.Now()
	}
	s := Snapshot{
		HitsReceived:        atomic.LoadUint64(&m.HitsReceived),
		DiscardedRaw:        atomic.LoadUint64(&m.DiscardedRaw),
		DiscardedWrite:      atomic.LoadUint64(&m.DiscardedWrite),
		SpeciesEmitted:      atomic.LoadUint64(&m.SpeciesEmitted),
		RawFilesRotated:     atomic.LoadUint64(&m.RawFilesRotated),
		SpeciesFilesRotated: atomic.LoadUint64(&m.SpeciesFilesRotated),
		MaxQueueDepth:       atomic.LoadUint64(&m.MaxQueueDepth),
		UptimeNs:            stop.Sub(m.StartTime).Nanoseconds(),
	}
	if count := atomic.LoadUint64(&m.QueueDepthCount); count > 0 {
		s.AvgQueueDepth = float64(atomic.LoadUint64(&m.QueueDepthTotal)) / float64(count)
	}
	if count := atomic.LoadUint64(&m.ProcessLatencyCount); count > 0 {
		s.AvgProcessLatencyNs = float64(atomic.LoadUint64(&m.ProcessLatencyNsTotal)) / float64(count)
	}
	return s
}

// String renders a snapshot as a single human-readable line, suitable for a
// SIGUSR1 dump.
func (s Snapshot) String() string {
	return fmt.Sprintf(
		"uptime=%s hits=%d species=%d discarded(raw=%d write=%d) rotated(raw=%d species=%d) queueDepth(avg=%.1f max=%d) latency(avg=%s)",
		time.Duration(s.UptimeNs).Round(time.Millisecond),
		s.HitsReceived, s.SpeciesEmitted,
		s.DiscardedRaw, s.DiscardedWrite,
		s.RawFilesRotated, s.SpeciesFilesRotated,
		s.AvgQueueDepth, s.MaxQueueDepth,
		time.Duration(s.AvgProcessLatencyNs).Round(time.Microsecond),
	)
}

// Observer receives notifications as the pipeline runs; NoOpObserver is the
// default for callers that don't care.
type Observer interface {
	ObserveHits(n uint64)
	ObserveDiscard(bufferName string, n uint64)
	ObserveSpecies(n uint64)
	ObserveQueueDepth(depth uint64)
	ObserveProcessLatency(d time.Duration)
	ObserveRawRotated()
	ObserveSpeciesRotated()
}

type NoOpObserver struct{}

func (NoOpObserver) ObserveHits(uint64)            {}
func (NoOpObserver) ObserveDiscard(string, uint64) {}
func (NoOpObserver) ObserveSpecies(uint64)          {}
func (NoOpObserver) ObserveQueueDepth(uint64)       {}
func (NoOpObserver) ObserveProcessLatency(time.Duration) {}
func (NoOpObserver) ObserveRawRotated()             {}
func (NoOpObserver) ObserveSpeciesRotated()          {}

// MetricsObserver adapts *Metrics to the Observer interface.
type MetricsObserver struct {
	M *Metrics
}

func (o MetricsObserver) ObserveHits(n uint64)        { o.M.RecordHits(n) }
func (o MetricsObserver) ObserveSpecies(n uint64)     { o.M.RecordSpecies(n) }
func (o MetricsObserver) ObserveQueueDepth(d uint64)  { o.M.RecordQueueDepth(d) }
func (o MetricsObserver) ObserveProcessLatency(d time.Duration) { o.M.RecordProcessLatency(d) }
func (o MetricsObserver) ObserveRawRotated()          { o.M.RecordRawFileRotated() }
func (o MetricsObserver) ObserveSpeciesRotated()      { o.M.RecordSpeciesFileRotated() }
func (o MetricsObserver) ObserveDiscard(bufferName string, n uint64) {
	switch bufferName {
	case "raw":
		o.M.RecordDiscardedRaw(n)
	case "write":
		o.M.RecordDiscardedWrite(n)
	}
}

var (
	_ Observer = NoOpObserver{}
	_ Observer = MetricsObserver{}
)
