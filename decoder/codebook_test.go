package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodebookBuildTreeSimpleTwoEntry(t *testing.T) {
	c := &codebook{entries: 2, lengths: []uint8{1, 1}}
	require.NoError(t, c.buildTree())
	assert.Equal(t, -1, c.singleEntry)

	entry, err := c.DecodeScalar(newBitReader([]byte{0x00}))
	require.NoError(t, err)
	assert.Equal(t, 0, entry)

	entry, err = c.DecodeScalar(newBitReader([]byte{0x01}))
	require.NoError(t, err)
	assert.Equal(t, 1, entry)
}

func TestCodebookBuildTreeSingleLiveEntry(t *testing.T) {
	c := &codebook{entries: 4, lengths: []uint8{0, 0, 3, 0}}
	require.NoError(t, c.buildTree())
	require.Equal(t, 2, c.singleEntry)

	// Decoding consumes zero bits regardless of stream content.
	r := newBitReader(nil)
	entry, err := c.DecodeScalar(r)
	require.NoError(t, err)
	assert.Equal(t, 2, entry)
	assert.False(t, r.eop())
}

func TestCodebookBuildTreeRejectsUnderfullCode(t *testing.T) {
	// Two entries of length 2 can't form a complete code (needs 4).
	c := &codebook{entries: 2, lengths: []uint8{2, 2}}
	err := c.buildTree()
	assert.Error(t, err)
}

func TestCodebookDecodeScalarSignalsEndOfPacket(t *testing.T) {
	c := &codebook{entries: 2, lengths: []uint8{1, 1}}
	require.NoError(t, c.buildTree())
	r := newBitReader(nil)
	_, err := c.DecodeScalar(r)
	require.Error(t, err)
	assert.True(t, IsEndOfPacket(err))
}

func TestCodebookDecodeVectorLookupType2(t *testing.T) {
	c := &codebook{
		entries:    2,
		lengths:    []uint8{1, 1},
		dimensions: 2,
		lookupType: 2,
		minValue:   1,
		deltaValue: 0.5,
		lookupVals: 4, // entries * dimensions
		multiplicands: []uint32{
			0, 1, // entry 0: dims (0,1)
			2, 3, // entry 1: dims (2,3)
		},
	}
	require.NoError(t, c.buildTree())

	out, err := c.DecodeVector(newBitReader([]byte{0x01})) // bit0=1 -> entry 1
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, float32(1+2*0.5), out[0], 1e-6)
	assert.InDelta(t, float32(1+3*0.5), out[1], 1e-6)
}

func TestCodebookDecodeVectorSequenceP(t *testing.T) {
	c := &codebook{
		entries:    1,
		lengths:    []uint8{1},
		dimensions: 2,
		lookupType: 2,
		minValue:   0,
		deltaValue: 1,
		sequenceP:  true,
		lookupVals: 2,
		multiplicands: []uint32{
			1, 1,
		},
	}
	require.NoError(t, c.buildTree())
	assert.Equal(t, 0, c.singleEntry)

	out, err := c.DecodeVector(newBitReader(nil))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, float32(1), out[0], 1e-6)
	assert.InDelta(t, float32(2), out[1], 1e-6) // accumulated from the first value
}

func TestCodebookFastPathMatchesTrieWalkForMixedLengths(t *testing.T) {
	// entry0: "0" (len1), entry1: "10" (len2), entry2: "11" (len2) -
	// a valid prefix code with a short and two longer codewords, small
	// enough that every codeword fits inside the fast table.
	c := &codebook{entries: 3, lengths: []uint8{1, 2, 2}}
	require.NoError(t, c.buildTree())
	require.Greater(t, c.fastBits, 0)

	entry, err := c.DecodeScalar(newBitReader([]byte{0x00})) // bit0=0 -> entry0
	require.NoError(t, err)
	assert.Equal(t, 0, entry)

	entry, err = c.DecodeScalar(newBitReader([]byte{0x01})) // bits 1,0 -> entry1
	require.NoError(t, err)
	assert.Equal(t, 1, entry)

	entry, err = c.DecodeScalar(newBitReader([]byte{0x03})) // bits 1,1 -> entry2
	require.NoError(t, err)
	assert.Equal(t, 2, entry)
}

func TestCodebookFastPathSignalsEndOfPacket(t *testing.T) {
	c := &codebook{entries: 3, lengths: []uint8{1, 2, 2}}
	require.NoError(t, c.buildTree())

	_, err := c.DecodeScalar(newBitReader(nil))
	require.Error(t, err)
	assert.True(t, IsEndOfPacket(err))
}

func TestFloat32UnpackZero(t *testing.T) {
	assert.Equal(t, float32(0), float32Unpack(0))
}

func TestLookup1Values(t *testing.T) {
	// 3^2 == 9 entries in 2 dimensions -> 3 values per dimension.
	assert.Equal(t, 3, lookup1Values(9, 2))
	assert.Equal(t, 2, lookup1Values(8, 3))
}
