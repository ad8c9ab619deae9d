package decoder

import (
	"math"
	"math/bits"
)

// imdctLookup holds the precomputed twiddle tables for one blocksize's
// inverse modified discrete cosine transform, per spec.md §4.9. A is
// used by the initial rotation and the butterfly passes, C by the
// combination step, and B by the final rotation.
type imdctLookup struct {
	A, B, C []float32
}

func generateIMDCTLookup(n int) *imdctLookup {
	l := &imdctLookup{
		A: make([]float32, n/2),
		B: make([]float32, n/2),
		C: make([]float32, n/4),
	}
	fn := float64(n)
	for k := 0; k < n/4; k++ {
		fk := float64(k)
		l.A[2*k] = float32(math.Cos(4 * fk * math.Pi / fn))
		l.A[2*k+1] = float32(-math.Sin(4 * fk * math.Pi / fn))
		l.B[2*k] = float32(math.Cos((2*fk + 1) * math.Pi / fn / 2))
		l.B[2*k+1] = float32(math.Sin((2*fk + 1) * math.Pi / fn / 2))
	}
	for k := 0; k < n/8; k++ {
		fk := float64(k)
		l.C[2*k] = float32(math.Cos(2 * (2*fk + 1) * math.Pi / fn))
		l.C[2*k+1] = float32(-math.Sin(2 * (2*fk + 1) * math.Pi / fn))
	}
	return l
}

// imdct computes the inverse modified discrete cosine transform of
// in (length n/2) into out (length n), per spec.md §4.9. This is the
// split-radix formulation from "The use of multirate filter banks for
// coding of high quality digital audio", the same one the reference
// decoder uses; in is used as scratch space and left modified.
func imdct(t *imdctLookup, in, out []float32) {
	n := len(in) * 2
	n2, n4, n8 := n/2, n/4, n/8
	n3_4 := n - n4

	for j := 0; j < n8; j++ {
		a0 := t.A[n2-2*j-1]
		a1 := t.A[n2-2*j-2]
		a2 := t.A[n4-2*j-1]
		a3 := t.A[n4-2*j-2]
		a4 := t.A[n2-4-4*j]
		a5 := t.A[n2-3-4*j]
		v0 := (-in[4*j+3])*a0 + (-in[4*j+1])*a1
		v1 := (-in[4*j+3])*a1 - (-in[4*j+1])*a0
		v2 := (in[n2-4*j-4])*a2 + (in[n2-4*j-2])*a3
		v3 := (in[n2-4*j-4])*a3 - (in[n2-4*j-2])*a2
		out[n4+2*j+1] = v3 + v1
		out[n4+2*j] = v2 + v0
		out[2*j+1] = (v3-v1)*a4 - (v2-v0)*a5
		out[2*j] = (v2-v0)*a4 + (v3-v1)*a5
	}

	ld := ilog(n) - 1
	for l := 0; l < ld-3; l++ {
		k0 := n >> uint(l+3)
		k1 := 1 << uint(l+3)
		rlim := n >> uint(l+4)
		s2lim := 1 << uint(l+2)
		for r := 0; r < rlim; r++ {
			a0 := t.A[r*k1]
			a1 := t.A[r*k1+1]
			i0 := n2 - 1 - 2*r
			i1 := n2 - 2 - 2*r
			i2 := n2 - 1 - k0 - 2*r
			i3 := n2 - 2 - k0 - 2*r
			for s2 := 0; s2 < s2lim; s2 += 2 {
				v0, v1 := out[i0], out[i1]
				v2, v3 := out[i2], out[i3]
				out[i0] = v0 + v2
				out[i1] = v1 + v3
				out[i2] = (v0-v2)*a0 - (v1-v3)*a1
				out[i3] = (v1-v3)*a0 + (v0-v2)*a1
				i0 -= 2 * k0
				i1 -= 2 * k0
				i2 -= 2 * k0
				i3 -= 2 * k0
			}
		}
	}

	for i := 0; i < n8; i++ {
		j := int(bits.Reverse32(uint32(i)) >> uint(32-ld+3))
		if i < j {
			out[4*j], out[4*i] = out[4*i], out[4*j]
			out[4*j+1], out[4*i+1] = out[4*i+1], out[4*j+1]
			out[4*j+2], out[4*i+2] = out[4*i+2], out[4*j+2]
			out[4*j+3], out[4*i+3] = out[4*i+3], out[4*j+3]
		}
	}

	for k := 0; k < n8; k++ {
		in[n2-1-2*k] = out[4*k]
		in[n2-2-2*k] = out[4*k+1]
		in[n4-1-2*k] = out[4*k+2]
		in[n4-2-2*k] = out[4*k+3]
	}

	i0 := 0
	i1 := 1
	i2 := n2 - 2
	i3 := n2 - 1
	for k := 0; k < n8; k++ {
		v0, v1 := in[i0], in[i1]
		v2, v3 := in[i2], in[i3]
		c0 := t.C[i0]
		c1 := t.C[i1]
		out[i0] = (v0 + v2 + c1*(v0-v2) + c0*(v1+v3)) / 2
		out[i2] = (v0 + v2 - c1*(v0-v2) - c0*(v1+v3)) / 2
		out[i1] = (v1 - v3 + c1*(v1+v3) - c0*(v0-v2)) / 2
		out[i3] = (-v1 + v3 + c1*(v1+v3) - c0*(v0-v2)) / 2
		i0 += 2
		i1 += 2
		i2 -= 2
		i3 -= 2
	}

	for k := 0; k < n4; k++ {
		b0 := t.B[2*k]
		b1 := t.B[2*k+1]
		v0 := out[2*k]
		v1 := out[2*k+1]
		in[k] = v0*b0 + v1*b1
		in[n2-1-k] = v0*b1 - v1*b0
	}

	for i := 0; i < n4; i++ {
		out[i] = in[i+n4]
		out[n-i-1] = -in[n-i-n3_4-1]
	}
	for i := n4; i < n3_4; i++ {
		out[i] = -in[n3_4-i-1]
	}
}
