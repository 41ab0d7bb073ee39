package aurora

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodersValues(t *testing.T) {
	assert := assert.New(t)

	data := []byte{0x00, 0x06, 0x43, 0x66, 0x80, 0x00}

	assert.Equal(230.5, AsFloatBigEndian(data, 2), "float at offset 2")
	assert.Equal(uint16(0x0006), AsUint16(data, 0))
	assert.Equal(uint32(0x43668000), AsUint32(data, 2))
	assert.Equal(int16(-1), AsInt16([]byte{0xFF, 0xFF}, 0))
}

func TestDecodersShortInputSentinels(t *testing.T) {
	assert := assert.New(t)

	short := []byte{0x01, 0x02, 0x03}

	assert.True(math.IsNaN(AsFloatBigEndian(short, 0)), "short float is NaN")
	assert.True(math.IsNaN(AsFloatBigEndian(short, 12)), "out-of-range offset is NaN")
	assert.Equal(uint16(0), AsUint16(short, 2), "short uint16 is 0")
	assert.Equal(uint32(0), AsUint32(short, 1), "short uint32 is 0")
	assert.Equal(uint16(0), AsUint16(nil, 0), "nil input is 0")
	assert.Equal(uint16(0), AsUint16(short, -1), "negative offset is 0")
}
