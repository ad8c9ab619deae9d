package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// directBook builds a two-entry, one-bit-per-symbol codebook with a
// direct (lookupType 2) VQ table mapping entry 0 -> 0 and entry 1 -> 1,
// bypassing readFrom so tests can hand-pick the decoded values.
func directBook() codebook {
	return codebook{
		dimensions: 1,
		entries:    2,
		lookupType: 2,
		minValue:   0,
		deltaValue: 1,
		lookupVals: 2,
		multiplicands: []uint32{0, 1},
		singleEntry:   -1,
		root: &cbNode{children: [2]*cbNode{
			{leaf: true, entry: 0},
			{leaf: true, entry: 1},
		}},
	}
}

// singleEntryBook decodes with zero bits and always returns entry 0,
// used as a trivial classbook with one class.
func singleEntryBook(dimensions int) codebook {
	return codebook{dimensions: dimensions, entries: 1, singleEntry: 0}
}

func TestResidueType0AccumulatesAcrossPartitions(t *testing.T) {
	res := &residue{
		residueType:     0,
		begin:           0,
		end:             4,
		partitionSize:   2,
		classifications: 1,
		classbook:       1,
		cascade:         []uint8{1},
		books:           [][8]int16{{0, -1, -1, -1, -1, -1, -1, -1}},
	}
	books := []codebook{directBook(), singleEntryBook(1)}

	w := &bitWriter{}
	w.writeBits(1, 1)
	w.writeBits(0, 1)
	w.writeBits(0, 1)
	w.writeBits(1, 1)
	r := newBitReader(w.bytesOut())

	out := [][]float32{make([]float32, 4)}
	res.Decode(r, []bool{false}, 4, books, out)

	assert.Equal(t, []float32{1, 0, 0, 1}, out[0])
	assert.False(t, r.eop())
}

func TestResidueStopsGracefullyOnEndOfPacket(t *testing.T) {
	res := &residue{
		residueType:     0,
		begin:           0,
		end:             4,
		partitionSize:   2,
		classifications: 1,
		classbook:       1,
		cascade:         []uint8{1},
		books:           [][8]int16{{0, -1, -1, -1, -1, -1, -1, -1}},
	}
	books := []codebook{directBook(), singleEntryBook(1)}

	// Empty packet: the very first codeword read runs past the end.
	r := newBitReader(nil)

	out := [][]float32{make([]float32, 4)}
	assert.NotPanics(t, func() {
		res.Decode(r, []bool{false}, 4, books, out)
	})

	// Nothing was accumulated, but decode returned instead of erroring.
	assert.Equal(t, []float32{0, 0, 0, 0}, out[0])
	assert.True(t, r.eop())
}

func TestResidueSkipsDoNotDecodeChannels(t *testing.T) {
	res := &residue{
		residueType:     0,
		begin:           0,
		end:             2,
		partitionSize:   2,
		classifications: 1,
		classbook:       1,
		cascade:         []uint8{1},
		books:           [][8]int16{{0, -1, -1, -1, -1, -1, -1, -1}},
	}
	books := []codebook{directBook(), singleEntryBook(1)}

	w := &bitWriter{}
	w.writeBits(1, 1)
	w.writeBits(1, 1)
	r := newBitReader(w.bytesOut())

	out := [][]float32{make([]float32, 2), make([]float32, 2)}
	// Channel 0 is marked not-live (its floor was "unused"); only
	// channel 1 should consume bits and receive decoded values.
	res.Decode(r, []bool{true, false}, 2, books, out)

	assert.Equal(t, []float32{0, 0}, out[0])
	assert.Equal(t, []float32{1, 1}, out[1])
}

func TestResidueType2InterleavesLiveChannels(t *testing.T) {
	res := &residue{
		residueType:     2,
		begin:           0,
		end:             4,
		partitionSize:   2,
		classifications: 1,
		classbook:       1,
		cascade:         []uint8{1},
		books:           [][8]int16{{0, -1, -1, -1, -1, -1, -1, -1}},
	}
	books := []codebook{directBook(), singleEntryBook(1)}

	// n=2 per channel, 2 channels interleaved -> 4 logical values.
	w := &bitWriter{}
	w.writeBits(1, 1)
	w.writeBits(0, 1)
	w.writeBits(1, 1)
	w.writeBits(0, 1)
	r := newBitReader(w.bytesOut())

	out := [][]float32{make([]float32, 2), make([]float32, 2)}
	res.Decode(r, []bool{false, false}, 2, books, out)

	// Interleaved order: ch0[0], ch1[0], ch0[1], ch1[1].
	assert.Equal(t, []float32{1, 1}, out[0])
	assert.Equal(t, []float32{0, 0}, out[1])
}
