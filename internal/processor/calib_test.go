package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/stretchr/testify/require"
)

func writeCoefficientFile(t *testing.T, dir, name string, value float64) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	for i := 0; i < config.ChipArea; i++ {
		fmt.Fprintf(f, "%g\n", value)
	}
}

func TestLoadCalibSet_DerivesConstants(t *testing.T) {
	dir := t.TempDir()
	writeCoefficientFile(t, dir, "a.txt", 2.0)
	writeCoefficientFile(t, dir, "b.txt", 3.0)
	writeCoefficientFile(t, dir, "c.txt", 5.0)
	writeCoefficientFile(t, dir, "t.txt", 1.0)

	cs, err := LoadCalibSet(dir)
	require.NoError(t, err)

	e := cs.Energy(0, 0, 0)
	require.Greater(t, e, 0.0)
}

func TestEnergy_UnloadedFallsBackToToT(t *testing.T) {
	var cs CalibSet
	require.Equal(t, float64(42), cs.Energy(1, 1, 42))
}

func TestLoadCalibSet_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadCalibSet(dir)
	require.Error(t, err)
}
