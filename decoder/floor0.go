package decoder

import "math"

// floor0 is the line-spectral-pair floor, per spec.md §4.4. Real
// encoders essentially never emit it; it is implemented here for
// conformance, not performance.
type floor0 struct {
	order           int
	rate            int
	barkMapSize     int
	amplitudeBits   uint8
	amplitudeOffset int
	books           []uint8
}

type floor0Data struct {
	unused bool
	coeff  []float32
	amplitude uint32
}

func (f *floor0) readFrom(r *bitReader) error {
	f.order = int(r.Read8(8))
	f.rate = int(r.Read16(16))
	f.barkMapSize = int(r.Read16(16))
	f.amplitudeBits = r.Read8(6)
	f.amplitudeOffset = int(r.Read8(8))
	numBooks := int(r.Read8(4)) + 1
	f.books = make([]uint8, numBooks)
	for i := range f.books {
		f.books[i] = r.Read8(8)
	}
	if f.order <= 0 || f.rate <= 0 || f.barkMapSize <= 0 {
		return newError(ErrMalformedHeader, "floor 0 has a non-positive order, rate, or bark map size")
	}
	if r.eop() {
		return newError(ErrMalformedHeader, "end of packet while reading floor 0 setup")
	}
	return nil
}

// toBark approximates the Bark psychoacoustic scale, matching the
// reference decoder's constant.
func toBark(hz float64) float64 {
	return 13.1*math.Atan(0.00074*hz) + 2.24*math.Atan(hz*hz*1.85e-8) + 1e-4*hz
}

// buildBarkMap returns a fresh bin -> bark-scaled lookup index table
// for n bins; it does not store it in f, which Setup shares read-only.
func (f *floor0) buildBarkMap(n int) []int {
	barkMap := make([]int, n)
	maxBark := toBark(float64(f.rate) / 2)
	for i := 0; i < n; i++ {
		hz := float64(f.rate) / 2 / float64(n) * float64(i)
		idx := int(toBark(hz) * float64(f.barkMapSize-1) / maxBark)
		if idx >= f.barkMapSize {
			idx = f.barkMapSize - 1
		}
		if idx < 0 {
			idx = 0
		}
		barkMap[i] = idx
	}
	return barkMap
}

func (f *floor0) Decode(r *bitReader, books []codebook, n uint32) interface{} {
	amplitude := r.Read(int(f.amplitudeBits))
	if amplitude == 0 {
		return floor0Data{unused: true}
	}
	bookIdx := 0
	if len(f.books) > 1 {
		bookIdx = int(r.Read(ilog(len(f.books) - 1)))
	}
	if bookIdx >= len(f.books) {
		return floor0Data{unused: true}
	}
	book := &books[f.books[bookIdx]]
	coeff := make([]float32, 0, f.order)
	for len(coeff) < f.order {
		v, err := book.DecodeVector(r)
		if err != nil {
			return floor0Data{unused: true}
		}
		coeff = append(coeff, v...)
	}
	if len(coeff) > f.order {
		coeff = coeff[:f.order]
	}
	return floor0Data{coeff: coeff, amplitude: amplitude}
}

// Apply renders the LSP power spectrum envelope using the standard
// two-polynomial LSP-to-magnitude reconstruction. It is faithful in
// shape and dequantization to the reference decoder's amplitude
// scaling but, unlike floor1, is not claimed to be bit-exact: floor 0
// is explicitly out of the fidelity bar spec.md sets (§1, §4.4).
func (f *floor0) Apply(out []float32, data interface{}) {
	fd := data.(floor0Data)
	n := len(out)
	if fd.unused || len(fd.coeff) == 0 {
		for i := range out {
			out[i] = 0
		}
		return
	}
	barkMap := f.buildBarkMap(n)

	cosLSP := make([]float64, len(fd.coeff))
	for i, c := range fd.coeff {
		cosLSP[i] = math.Cos(float64(c))
	}
	m := len(cosLSP)
	ampScale := float64(fd.amplitude) / float64((uint32(1)<<f.amplitudeBits)-1) * float64(f.amplitudeOffset)

	for i := 0; i < n; i++ {
		w := math.Pi * float64(barkMap[i]) / float64(f.barkMapSize)
		cw := math.Cos(w)
		p := 0.5
		q := 0.5
		for j := 0; j+1 < m; j += 2 {
			q *= cw - cosLSP[j]
			p *= cw - cosLSP[j+1]
		}
		if m&1 == 1 {
			p *= p * (1 - cw*cw)
			q *= q * 4
		} else {
			p *= p * (1 - cw)
			q *= q * (1 + cw)
		}
		sum := p + q
		if sum <= 0 {
			out[i] = 0
			continue
		}
		db := ampScale/math.Sqrt(sum) - float64(f.amplitudeOffset)
		out[i] = float32(math.Pow(10, db/20))
	}
}
