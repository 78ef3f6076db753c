package config

import (
	"encoding/binary"
	"fmt"
	"os"
)

// LoadPixelMask reads the per-pixel trim/mask configuration from a .bmc
// file: PixelConfigWords little-endian uint32 words, one per chip pixel.
func LoadPixelMask(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pixel mask %s: %w", path, err)
	}
	want := PixelConfigWords * 4
	if len(data) != want {
		return nil, fmt.Errorf("load pixel mask %s: expected %d bytes, got %d", path, want, len(data))
	}

	words := make([]uint32, PixelConfigWords)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return words, nil
}
