package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt16ClampsAndScales(t *testing.T) {
	channels := [][]float32{
		{0, 0.5, 1, -1, 2, -2},
	}
	out := ToInt16(channels)
	row := out[0]
	assert.Equal(t, int16(0), row[0])
	assert.Equal(t, int16(16383), row[1])
	assert.Equal(t, int16(32767), row[2])
	assert.Equal(t, int16(-32767), row[3])
	assert.Equal(t, int16(32767), row[4]) // clamped
	assert.Equal(t, int16(-32767), row[5])
}

func TestToInt16InterleavedOrdersFrameMajor(t *testing.T) {
	channels := [][]float32{
		{1, 0},
		{0, 1},
	}
	out := ToInt16Interleaved(channels)
	assert.Len(t, out, 4)
	assert.Equal(t, int16(32767), out[0]) // ch0 frame0
	assert.Equal(t, int16(0), out[1])     // ch1 frame0
	assert.Equal(t, int16(0), out[2])     // ch0 frame1
	assert.Equal(t, int16(32767), out[3]) // ch1 frame1
}

func TestToInt16InterleavedEmptyChannels(t *testing.T) {
	assert.Nil(t, ToInt16Interleaved(nil))
}
