package processor

import (
	"bytes"
	"testing"

	"github.com/behrlich/sprint3/internal/logging"
	"github.com/behrlich/sprint3/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor() (*Processor, *queue.RawBuffer, *queue.SpeciesQueue) {
	p, raw, species, _ := newTestProcessorWithLog()
	return p, raw, species
}

func newTestProcessorWithLog() (*Processor, *queue.RawBuffer, *queue.SpeciesQueue, *bytes.Buffer) {
	raw := queue.NewRawBuffer(1 << 16)
	species := queue.NewSpeciesQueue()
	var buf bytes.Buffer
	log := logging.NewLogger(&logging.Config{Level: logging.LevelWarning, Output: &buf})
	p := New(raw, species, &CalibSet{}, log, nil) // unloaded CalibSet: energy falls back to tot
	return p, raw, species, &buf
}

func drainSpecies(q *queue.SpeciesQueue) []queue.SpeciesHit {
	q.Lock()
	defer q.Unlock()
	return q.Drain()
}

func TestGradingScenario1_SinglePixel(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process([]queue.PixelHit{{X: 1, Y: 2, ToA: 3, ToT: 10}})

	got := drainSpecies(species)
	require.Len(t, got, 1)
	assert.EqualValues(t, 0, got[0].Grade)
}

func TestGradingScenario2_TwoAdjacentDiagonal(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process([]queue.PixelHit{
		{X: 10, Y: 10, ToA: 1, ToT: 50},
		{X: 11, Y: 11, ToA: 2, ToT: 10},
	})

	got := drainSpecies(species)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, got[0].Grade)
}

func TestGradingScenario3_FourCorner(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process([]queue.PixelHit{
		{X: 10, Y: 10, ToA: 1, ToT: 100},
		{X: 11, Y: 11, ToA: 1, ToT: 1},
		{X: 9, Y: 9, ToA: 1, ToT: 1},
		{X: 11, Y: 9, ToA: 1, ToT: 1},
	})

	got := drainSpecies(species)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, got[0].Grade) // sum = 128+1+4 = 133
}

func TestGradingScenario4(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process([]queue.PixelHit{
		{X: 10, Y: 10, ToA: 1, ToT: 100},
		{X: 10, Y: 11, ToA: 1, ToT: 1},
		{X: 9, Y: 9, ToA: 1, ToT: 1},
		{X: 11, Y: 9, ToA: 1, ToT: 1},
	})

	got := drainSpecies(species)
	require.Len(t, got, 1)
	assert.EqualValues(t, 2, got[0].Grade) // sum = 64+1+4 = 69
}

func TestGradingScenario5_OutOfNeighborhood(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process([]queue.PixelHit{
		{X: 3, Y: 5, ToA: 1, ToT: 50},
		{X: 5, Y: 5, ToA: 2, ToT: 50},
	})

	got := drainSpecies(species)
	require.Len(t, got, 1)
	assert.EqualValues(t, 7, got[0].Grade)
}

func TestGradingScenario6_TooManyHits(t *testing.T) {
	p, _, species := newTestProcessor()
	batch := make([]queue.PixelHit, 10)
	for i := range batch {
		batch[i] = queue.PixelHit{X: uint8(100 + i), Y: 100, ToA: uint64(i), ToT: 10}
	}
	p.process(batch)

	got := drainSpecies(species)
	require.Len(t, got, 1)
	assert.EqualValues(t, 7, got[0].Grade)
}

func TestGradingScenario7_TwoSeparateClusters(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process([]queue.PixelHit{
		{X: 1, Y: 1, ToA: 1, ToT: 10},
		{X: 50, Y: 50, ToA: 10, ToT: 10},
	})

	got := drainSpecies(species)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0].StartToA)
	assert.EqualValues(t, 1, got[0].EndToA)
	assert.EqualValues(t, 10, got[1].StartToA)
	assert.EqualValues(t, 10, got[1].EndToA)
}

func TestProcess_EmptyBatch_NoEmission(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process(nil)
	assert.Empty(t, drainSpecies(species))
}

func TestProcess_UnloadedCalibWarnsOnce(t *testing.T) {
	p, _, species, buf := newTestProcessorWithLog()

	p.process([]queue.PixelHit{{X: 1, Y: 1, ToA: 1, ToT: 10}})
	p.process([]queue.PixelHit{{X: 2, Y: 2, ToA: 5, ToT: 10}})
	drainSpecies(species)

	count := bytes.Count(buf.Bytes(), []byte("energy calibration not loaded"))
	assert.Equal(t, 1, count)
}

func TestProcess_InvariantsHold(t *testing.T) {
	p, _, species := newTestProcessor()
	p.process([]queue.PixelHit{
		{X: 1, Y: 1, ToA: 1, ToT: 10},
		{X: 1, Y: 1, ToA: 1, ToT: 10}, // identical toa -> same cluster
		{X: 200, Y: 200, ToA: 20, ToT: 10},
	})

	got := drainSpecies(species)
	for _, h := range got {
		assert.LessOrEqual(t, h.StartToA, h.EndToA)
		assert.LessOrEqual(t, h.Grade, uint8(7))
	}
}
