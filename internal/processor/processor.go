// Package processor converts batches of unordered pixel hits into graded
// SpeciesHit records: temporal clustering, spatial grading, and energy
// calibration.
package processor

import (
	"sort"
	"sync"
	"time"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/logging"
	"github.com/behrlich/sprint3/internal/metrics"
	"github.com/behrlich/sprint3/internal/queue"
)

// clusterGapTicks is the device-tick window: a pixel extends the open
// cluster if its toa is strictly less than the running upper bound.
const clusterGapTicks = 5

// hitEnergy pairs a pixel hit with its precomputed energy, so grading and
// clustering never recompute it.
type hitEnergy struct {
	toa    uint64
	x, y   uint8
	energy float64
}

// Processor is the single worker that drains the raw buffer, clusters,
// grades, and pushes SpeciesHit records.
type Processor struct {
	raw      *queue.RawBuffer
	species  *queue.SpeciesQueue
	calib    *CalibSet
	log      *logging.Logger
	observer metrics.Observer

	calibWarnOnce sync.Once
}

func New(raw *queue.RawBuffer, species *queue.SpeciesQueue, calib *CalibSet, log *logging.Logger, observer metrics.Observer) *Processor {
	if observer == nil {
		observer = metrics.NoOpObserver{}
	}
	return &Processor{raw: raw, species: species, calib: calib, log: log, observer: observer}
}

// Run is the main loop: lock raw buffer, wait on its CV unless stop was
// requested, copy-clear up to MaxBufferElements into a private work buffer,
// cluster and grade it, repeat. On stop, performs one final drain pass.
func (p *Processor) Run() {
	p.log.Info("processor thread launched")

	work := queue.GetHitBuffer(config.MaxBufferElements)
	defer queue.PutHitBuffer(work)

	for {
		p.raw.Lock()
		if !p.raw.StopRequested() {
			p.raw.Wait()
		}
		if p.raw.Total() == 0 {
			stop := p.raw.StopRequested()
			p.raw.Unlock()
			if stop {
				break
			}
			continue // spurious wakeup
		}
		n := p.raw.CopyClear(work)
		p.observer.ObserveQueueDepth(uint64(n))
		stop := p.raw.StopRequested()
		p.raw.Unlock()

		p.process(work[:n])
		if stop {
			break
		}
	}

	// Final drain: any data left after stop was requested.
	p.raw.Lock()
	n := p.raw.CopyClear(work)
	p.observer.ObserveQueueDepth(uint64(n))
	p.raw.Unlock()
	p.process(work[:n])

	p.log.Info("processor thread terminated")
}

func (p *Processor) process(batch []queue.PixelHit) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()
	defer func() { p.observer.ObserveProcessLatency(time.Since(start)) }()

	if p.calib == nil || !p.calib.loaded {
		p.calibWarnOnce.Do(func() {
			p.log.Warning("energy calibration not loaded; emitting raw ToT as energy")
		})
	}

	sort.Slice(batch, func(i, j int) bool { return batch[i].ToA < batch[j].ToA })

	members := make([]hitEnergy, len(batch))
	for i, h := range batch {
		members[i] = hitEnergy{toa: h.ToA, x: h.X, y: h.Y, energy: p.calib.Energy(h.X, h.Y, h.ToT)}
	}

	p.species.Lock()
	defer p.species.Unlock()

	clustStart := 0
	maxEIdx := 0
	clustStartToA := members[0].toa
	clustMaxToA := clustStartToA + clusterGapTicks
	maxEnergy := members[0].energy
	totalEnergy := maxEnergy

	emitted := 0
	emit := func(endIdx int) {
		grade := clusterGrade(members, clustStart, endIdx, maxEIdx)
		p.species.Push(queue.SpeciesHit{
			Grade:       grade,
			StartToA:    clustStartToA,
			EndToA:      clustMaxToA - clusterGapTicks,
			TotalEnergy: totalEnergy,
		})
		emitted++
	}

	for i := 1; i < len(members); i++ {
		cur := members[i]
		if cur.toa < clustMaxToA {
			// hit belongs to the open cluster
			clustMaxToA = cur.toa + clusterGapTicks
			totalEnergy += cur.energy
			if cur.energy > maxEnergy {
				maxEIdx = i
				maxEnergy = cur.energy
			}
			continue
		}

		// cluster boundary: close the open cluster, start a new one at i
		emit(i - 1)

		clustStart = i
		maxEIdx = i
		clustStartToA = cur.toa
		clustMaxToA = clustStartToA + clusterGapTicks
		maxEnergy = cur.energy
		totalEnergy = cur.energy
	}
	emit(len(members) - 1)

	p.species.NotifyOne()
	p.observer.ObserveSpecies(uint64(emitted))
}
