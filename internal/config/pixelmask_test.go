package config

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPixelMask_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chipconfig.bmc")

	data := make([]byte, PixelConfigWords*4)
	binary.LittleEndian.PutUint32(data[0:4], 7)
	binary.LittleEndian.PutUint32(data[len(data)-4:], 99)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	words, err := LoadPixelMask(path)
	require.NoError(t, err)
	assert.Len(t, words, PixelConfigWords)
	assert.Equal(t, uint32(7), words[0])
	assert.Equal(t, uint32(99), words[PixelConfigWords-1])
}

func TestLoadPixelMask_WrongSizeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chipconfig.bmc")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := LoadPixelMask(path)
	assert.Error(t, err)
}

func TestLoadPixelMask_MissingFileErrors(t *testing.T) {
	_, err := LoadPixelMask(filepath.Join(t.TempDir(), "missing.bmc"))
	assert.Error(t, err)
}
