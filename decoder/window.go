package decoder

import "math"

// windowTables caches the two window shapes (short and long block) a
// Setup can need, per spec.md §4.7. Vorbis only ever uses two distinct
// block sizes, so the cache is a fixed pair rather than a map.
type windowTables struct {
	shortWin []float32
	longWin  []float32
}

func buildWindowTables(blocksize0, blocksize1 int) *windowTables {
	return &windowTables{
		shortWin: vorbisWindow(blocksize0),
		longWin:  vorbisWindow(blocksize1),
	}
}

func (w *windowTables) forSize(n int) []float32 {
	if n == len(w.shortWin) {
		return w.shortWin
	}
	return w.longWin
}

// vorbisWindow computes the raised-sine window of length n:
//
//	window[i] = sin(pi/2 * sin^2(pi/n * (i + 0.5)))
//
// per spec.md §4.7. This is the symmetric full-length window;
// applyWindow builds an asymmetric variant for long blocks adjacent to
// short ones by splicing a flat center between the left and right
// flaps of different lengths.
func vorbisWindow(n int) []float32 {
	win := make([]float32, n)
	for i := 0; i < n; i++ {
		v := math.Sin(math.Pi / 2 * sq(math.Sin(math.Pi/float64(n)*(float64(i)+0.5))))
		win[i] = float32(v)
	}
	return win
}

func sq(x float64) float64 { return x * x }

// applyWindow multiplies canvas (length n, the current block's full
// size) by the appropriate left and right window flaps in place.
//
// A short block always uses its own full half-length for both flaps.
// A long block's flap facing a short neighbor is shortened to that
// neighbor's half-length; the rest of that side stays at full
// amplitude (window == 1), matching spec.md §4.7's description of the
// window shape depending on "mode, and whether the previous/next
// block was long or short."
func applyWindow(canvas []float32, n, blockshort int, prevLong, nextLong bool) {
	leftN := n / 2
	if !prevLong {
		leftN = blockshort / 2
	}
	rightN := n / 2
	if !nextLong {
		rightN = blockshort / 2
	}

	leftWin := vorbisWindow(leftN * 2)
	for i := 0; i < leftN; i++ {
		canvas[i] *= leftWin[i]
	}
	rightWin := vorbisWindow(rightN * 2)
	rightStart := n - rightN
	for i := 0; i < rightN; i++ {
		canvas[rightStart+i] *= rightWin[rightN+i]
	}
	// The center [leftN, n-rightN) stays at full amplitude (window == 1).
}
