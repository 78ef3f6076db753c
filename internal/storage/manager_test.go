package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/logging"
	"github.com/behrlich/sprint3/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() HeaderInfo {
	return HeaderInfo{RunNumber: "7", StartedAt: time.Unix(1700000000, 0), Cfg: config.NewAcqConfig(60, nil)}
}

func newTestManager(t *testing.T, rawSoftCap, speciesSoftCap int) (*Manager, *queue.RawBuffer, *queue.SpeciesQueue, string, string) {
	rawDir := t.TempDir()
	speciesDir := t.TempDir()
	raw := queue.NewRawBuffer(1 << 16)
	species := queue.NewSpeciesQueue()
	log := logging.NewLogger(&logging.Config{Level: logging.LevelFatal + 1, Output: &bytes.Buffer{}})

	m := NewManager(raw, species, testHeader(), log, nil)
	m.RawDir = rawDir
	m.SpeciesDir = speciesDir
	m.RawSoftCap = rawSoftCap
	m.SpeciesSoftCap = speciesSoftCap
	return m, raw, species, rawDir, speciesDir
}

func TestRawWorker_WritesAndDrainsOnStop(t *testing.T) {
	m, raw, _, rawDir, _ := newTestManager(t, 1000, 1000)

	done := make(chan struct{})
	go func() {
		m.RunRaw()
		close(done)
	}()

	raw.Lock()
	raw.AddElements([]queue.PixelHit{{X: 1, Y: 2, ToA: 3, ToT: 10}})
	raw.Unlock()
	raw.NotifyOne()

	time.Sleep(20 * time.Millisecond)
	raw.SignalStop()
	<-done

	entries, err := os.ReadDir(rawDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(rawDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "1 2 3 10\n")
	assert.Contains(t, string(data), "# Line format: x y toa tot")
}

func TestSpeciesWorker_RotatesOnSoftCap(t *testing.T) {
	m, _, species, _, speciesDir := newTestManager(t, 1000, 2) // tiny cap forces rotation

	done := make(chan struct{})
	go func() {
		m.RunSpecies()
		close(done)
	}()

	species.Lock()
	species.Push(queue.SpeciesHit{Grade: 0, StartToA: 1, EndToA: 1, TotalEnergy: 5})
	species.Push(queue.SpeciesHit{Grade: 1, StartToA: 2, EndToA: 2, TotalEnergy: 6})
	species.Push(queue.SpeciesHit{Grade: 1, StartToA: 3, EndToA: 3, TotalEnergy: 7})
	species.Unlock()
	species.NotifyOne()

	time.Sleep(20 * time.Millisecond)

	// the first batch left the file past the cap, so this next batch opens a
	// new file
	species.Lock()
	species.Push(queue.SpeciesHit{Grade: 0, StartToA: 4, EndToA: 4, TotalEnergy: 8})
	species.Unlock()
	species.NotifyOne()

	time.Sleep(20 * time.Millisecond)
	species.SignalStop()
	<-done

	entries, err := os.ReadDir(speciesDir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2, "soft cap of 2 lines should force a second file")
}
