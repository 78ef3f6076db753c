// Package storage persists the raw and species hit streams to rotating
// text files, one worker per stream, both sharing a rotation discipline and
// a common header.
package storage

import (
	"fmt"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/logging"
	"github.com/behrlich/sprint3/internal/metrics"
	"github.com/behrlich/sprint3/internal/queue"
)

const (
	rawLineFormat     = "x y toa tot"
	speciesLineFormat = "grade start_toa end_toa total_energy"
)

// Manager owns the two storage workers.
type Manager struct {
	rawBuf  *queue.RawBuffer // the raw-write buffer, drained by RunRaw
	species *queue.SpeciesQueue
	header  HeaderInfo
	log     *logging.Logger
	obs     metrics.Observer

	RawDir         string
	SpeciesDir     string
	RawSoftCap     int
	SpeciesSoftCap int
}

func NewManager(rawWriteBuffer *queue.RawBuffer, species *queue.SpeciesQueue, header HeaderInfo, log *logging.Logger, obs metrics.Observer) *Manager {
	if obs == nil {
		obs = metrics.NoOpObserver{}
	}
	return &Manager{
		rawBuf:         rawWriteBuffer,
		species:        species,
		header:         header,
		log:            log,
		obs:            obs,
		RawDir:         config.RawDataDir,
		SpeciesDir:     config.SpeciesDataDir,
		RawSoftCap:     config.MaxRawFileLines,
		SpeciesSoftCap: config.MaxSpeciesFileLines,
	}
}

// RunRaw drains the raw-write buffer into sequentially numbered raw-hit
// files. Unlike the original's spin-without-wait loop, it blocks on the
// buffer's condition variable with a stop||hasData predicate between
// batches, avoiding a busy-poll on an empty buffer.
func (m *Manager) RunRaw() {
	m.log.Info("raw storage worker launched")
	rw := newRotatingWriter(m.RawDir, config.RawFileName, m.header.RunNumber, m.RawSoftCap, BuildHeader(m.header, rawLineFormat), m.obs.ObserveRawRotated)
	defer rw.Close()

	work := make([]queue.PixelHit, 0, config.MaxBufferElements)

	for {
		m.rawBuf.Lock()
		for m.rawBuf.Total() == 0 && !m.rawBuf.StopRequested() {
			m.rawBuf.Wait()
		}
		work = work[:cap(work)]
		n := m.rawBuf.CopyClear(work)
		m.obs.ObserveQueueDepth(uint64(n))
		stop := m.rawBuf.StopRequested()
		m.rawBuf.Unlock()

		if n > 0 {
			if err := rw.WriteLines(formatRawLines(work[:n])); err != nil {
				m.log.Fatal(fmt.Sprintf("raw storage worker: could not write output file: %s", err))
				return
			}
		}
		if stop {
			break
		}
	}

	// final drain
	m.rawBuf.Lock()
	work = work[:cap(work)]
	n := m.rawBuf.CopyClear(work)
	m.obs.ObserveQueueDepth(uint64(n))
	m.rawBuf.Unlock()
	if n > 0 {
		if err := rw.WriteLines(formatRawLines(work[:n])); err != nil {
			m.log.Fatal(fmt.Sprintf("raw storage worker: could not write output file: %s", err))
			return
		}
	}
	m.log.Info("raw storage worker terminated")
}

// RunSpecies drains the species queue into sequentially numbered species-hit
// files, waiting on the queue's condition variable with a stop||nonempty
// predicate between batches.
func (m *Manager) RunSpecies() {
	m.log.Info("species storage worker launched")
	rw := newRotatingWriter(m.SpeciesDir, config.SpeciesFileName, m.header.RunNumber, m.SpeciesSoftCap, BuildHeader(m.header, speciesLineFormat), m.obs.ObserveSpeciesRotated)
	defer rw.Close()

	for {
		m.species.Lock()
		for m.species.Len() == 0 && !m.species.StopRequested() {
			m.species.Wait()
		}
		items := m.species.Drain()
		m.obs.ObserveQueueDepth(uint64(len(items)))
		stop := m.species.StopRequested()
		m.species.Unlock()

		if len(items) > 0 {
			if err := rw.WriteLines(formatSpeciesLines(items)); err != nil {
				m.log.Fatal(fmt.Sprintf("species storage worker: could not write output file: %s", err))
				return
			}
		}
		if stop {
			break
		}
	}

	m.species.Lock()
	items := m.species.Drain()
	m.obs.ObserveQueueDepth(uint64(len(items)))
	m.species.Unlock()
	if len(items) > 0 {
		if err := rw.WriteLines(formatSpeciesLines(items)); err != nil {
			m.log.Fatal(fmt.Sprintf("species storage worker: could not write output file: %s", err))
			return
		}
	}
	m.log.Info("species storage worker terminated")
}

func formatRawLines(hits []queue.PixelHit) []string {
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = fmt.Sprintf("%d %d %d %d\n", h.X, h.Y, h.ToA, h.ToT)
	}
	return lines
}

func formatSpeciesLines(hits []queue.SpeciesHit) []string {
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = fmt.Sprintf("%d %d %d %g\n", h.Grade, h.StartToA, h.EndToA, h.TotalEnergy)
	}
	return lines
}
