package decoder

// couplingStep names a magnitude/angle channel pair for inverse
// channel coupling, per spec.md §4.6. Steps are undone in reverse
// declaration order, last-declared first, exactly as the setup header
// lists them.
type couplingStep struct {
	magnitude int
	angle     int
}

// decoupleChannels reverses Vorbis's channel coupling in place across
// the per-channel spectral buffers, applying the four-quadrant
// magnitude/angle transform the reference decoder uses.
//
// For each coupled pair (M, A), the encoder replaced the pair of
// natural vectors with one "magnitude" and one "angle" vector. Given a
// sample pair (m, a):
//
//	if m > 0:
//	    if a > 0: A = m - a
//	    else:     A = m, M = m + a
//	else:
//	    if a > 0: A = m + a
//	    else:     A = m, M = m - a
//
// M is left unchanged except in the two cases noted. The transform is
// applied independently per spectral bin over the coupled range
// [0, n), where n is the current block's usable bin count (spec.md
// §4.6).
func decoupleChannels(steps []couplingStep, channels [][]float32, n int) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		m := channels[step.magnitude]
		a := channels[step.angle]
		for j := 0; j < n; j++ {
			mv := m[j]
			av := a[j]
			if mv > 0 {
				if av > 0 {
					a[j] = mv - av
				} else {
					a[j] = mv
					m[j] = mv + av
				}
			} else {
				if av > 0 {
					a[j] = mv + av
				} else {
					a[j] = mv
					m[j] = mv - av
				}
			}
		}
	}
}
