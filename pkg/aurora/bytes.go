package aurora

import (
	"encoding/binary"
	"math"
)

// Byte decoders for reply payloads. All values are big-endian on the wire.
// Short input at the given offset yields a sentinel (0, or NaN for floats)
// instead of a panic, so callers can decode optimistically.

func AsUint16(data []byte, offset int) uint16 {
	if offset < 0 || offset+2 > len(data) {
		return 0
	}
	return binary.BigEndian.Uint16(data[offset:])
}

func AsInt16(data []byte, offset int) int16 {
	return int16(AsUint16(data, offset))
}

func AsUint32(data []byte, offset int) uint32 {
	if offset < 0 || offset+4 > len(data) {
		return 0
	}
	return binary.BigEndian.Uint32(data[offset:])
}

// AsFloatBigEndian decodes an IEEE-754 float32 and widens it to float64.
func AsFloatBigEndian(data []byte, offset int) float64 {
	if offset < 0 || offset+4 > len(data) {
		return math.NaN()
	}
	return float64(math.Float32frombits(binary.BigEndian.Uint32(data[offset:])))
}
