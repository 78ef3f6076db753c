// Package wire is the binary encoding for PixelHit batches exchanged with
// the detector: a little-endian fixed-width struct encoding via manual
// encoding/binary marshal/unmarshal.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/behrlich/sprint3/internal/queue"
)

// PixelHitSize is the wire size of one encoded PixelHit: x(1) + y(1) +
// toa(8) + ftoa(1) + tot(2) = 13 bytes.
const PixelHitSize = 13

// MarshalPixelHit encodes one hit into dst, which must be at least
// PixelHitSize bytes.
func MarshalPixelHit(dst []byte, h queue.PixelHit) {
	dst[0] = h.X
	dst[1] = h.Y
	binary.LittleEndian.PutUint64(dst[2:10], h.ToA)
	dst[10] = h.FToA
	binary.LittleEndian.PutUint16(dst[11:13], h.ToT)
}

// UnmarshalPixelHit decodes one hit from src, which must be at least
// PixelHitSize bytes.
func UnmarshalPixelHit(src []byte) queue.PixelHit {
	return queue.PixelHit{
		X:    src[0],
		Y:    src[1],
		ToA:  binary.LittleEndian.Uint64(src[2:10]),
		FToA: src[10],
		ToT:  binary.LittleEndian.Uint16(src[11:13]),
	}
}

// MarshalBatch encodes a 4-byte little-endian count followed by that many
// PixelHitSize-byte records.
func MarshalBatch(hits []queue.PixelHit) []byte {
	buf := make([]byte, 4+len(hits)*PixelHitSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(hits)))
	for i, h := range hits {
		off := 4 + i*PixelHitSize
		MarshalPixelHit(buf[off:off+PixelHitSize], h)
	}
	return buf
}

// UnmarshalBatch decodes a batch previously encoded with MarshalBatch.
func UnmarshalBatch(src []byte) ([]queue.PixelHit, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("wire: batch too short: %d bytes", len(src))
	}
	count := binary.LittleEndian.Uint32(src[0:4])
	want := 4 + int(count)*PixelHitSize
	if len(src) < want {
		return nil, fmt.Errorf("wire: batch declares %d hits but only %d bytes available", count, len(src))
	}
	hits := make([]queue.PixelHit, count)
	for i := range hits {
		off := 4 + i*PixelHitSize
		hits[i] = UnmarshalPixelHit(src[off : off+PixelHitSize])
	}
	return hits, nil
}
