package aurora

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeFrameGolden(t *testing.T) {
	assert := assert.New(t)

	frame := EncodeFrame(2, CommandMeasure, [6]byte{1, 1, 0, 0, 0, 0})

	assert.Equal([]byte{0x02, 0x3B, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0xBB, 0x27}, frame,
		"golden outbound frame for address=2 command=0x3B")
}

func TestDecodeFrameLength(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeFrame([]byte{0x00, 0x06, 0x43})
	assert.ErrorIs(err, ErrFrameLength, "short reply")

	_, err = DecodeFrame(make([]byte, 12))
	assert.ErrorIs(err, ErrFrameLength, "long reply")
}

func TestDecodeFrameCRC(t *testing.T) {
	assert := assert.New(t)

	valid := []byte{0x00, 0x06, 0x43, 0x66, 0x80, 0x00, 0x35, 0xA0}
	frame, err := DecodeFrame(valid)
	assert.NoError(err)
	assert.Equal(valid, frame)

	corrupt := []byte{0x00, 0x06, 0x43, 0x66, 0x80, 0x01, 0x35, 0xA0}
	_, err = DecodeFrame(corrupt)
	assert.ErrorIs(err, ErrCRCMismatch)
}
