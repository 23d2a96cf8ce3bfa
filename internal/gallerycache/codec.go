package gallerycache

import (
	"encoding/binary"
	"fmt"
	"math"

	"treasurepicker/internal/imaging"
)

const sampleSize = 8

func encodePixels(pix []float64) []byte {
	buf := make([]byte, 0, len(pix)*sampleSize)
	for _, v := range pix {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}

func decodePixels(width, height int, blob []byte) (*imaging.Gray, error) {
	if len(blob) != width*height*sampleSize {
		return nil, fmt.Errorf("pixel blob holds %d bytes, want %d", len(blob), width*height*sampleSize)
	}
	g := imaging.NewGray(width, height)
	for i := range g.Pix {
		g.Pix[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*sampleSize:]))
	}
	return g, nil
}
