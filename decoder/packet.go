package decoder

// State is the mutable per-stream decode state: the overlap register
// left over from the previous audio packet, per spec.md §5 and §4.8.
// A Setup can be shared by many States decoding independent,
// concurrently-running streams; a State cannot be shared across
// concurrent calls to Decode.
type State struct {
	setup *Setup

	havePrevious  bool
	previousRight [][]float32 // per channel, length previousBlocksize/2
	previousN     int

	spectral [][]float32 // per-channel scratch, length blocksize1/2
	floorBuf [][]float32 // per-channel scratch, length blocksize1/2
	canvas   []float32   // scratch, length blocksize1
}

// NewState creates decode state for a stream described by setup.
func NewState(setup *Setup) *State {
	ch := setup.Channels()
	s := &State{
		setup:    setup,
		spectral: make([][]float32, ch),
		floorBuf: make([][]float32, ch),
		canvas:   make([]float32, setup.Ident.blocksize1),
	}
	half := setup.Ident.blocksize1 / 2
	for c := 0; c < ch; c++ {
		s.spectral[c] = make([]float32, half)
		s.floorBuf[c] = make([]float32, half)
	}
	return s
}

// Reset clears the overlap register. Call it between two packets that
// are not consecutive in the original bitstream (e.g. after a seek),
// per spec.md §4.8.
func (s *State) Reset() {
	s.havePrevious = false
	s.previousRight = nil
	s.previousN = 0
}

// DecodePacket decodes one audio packet and returns the newly
// finalized PCM samples, one slice per channel, in the range [-1, 1].
// The first packet decoded after NewState or Reset always returns
// empty per-channel slices: it only primes the overlap register,
// per spec.md §4.8's step 11.
func (s *State) DecodePacket(packet []byte) ([][]float32, error) {
	r := newBitReader(packet)
	setup := s.setup

	if r.ReadBool() {
		return nil, newError(ErrBadAudioPacket, "packet type bit indicates a header packet")
	}
	if len(setup.modes) == 0 {
		return nil, newError(ErrBadAudioPacket, "no modes declared by setup header")
	}
	modeNumber := r.Read8(ilog(len(setup.modes) - 1))
	if int(modeNumber) >= len(setup.modes) {
		return nil, newError(ErrBadAudioPacket, "mode number out of range")
	}
	m := &setup.modes[modeNumber]
	n := setup.blocksizeForMode(m)
	half := n / 2

	prevLong := true
	nextLong := true
	if m.blockflag == 1 {
		prevLong = r.ReadBool()
		nextLong = r.ReadBool()
	}

	if int(m.mapping) >= len(setup.mappings) {
		return nil, newError(ErrBadAudioPacket, "mapping number out of range")
	}
	mp := &setup.mappings[m.mapping]
	channels := setup.Channels()

	doNotDecode := make([]bool, channels)
	floorData := make([]interface{}, channels)

	for ch := 0; ch < channels; ch++ {
		sub := submapIdx(mp, ch)
		submap := mp.submaps[sub]
		if int(submap.floor) >= len(setup.floors) {
			return nil, newError(ErrBadAudioPacket, "floor number out of range")
		}
		fl := setup.floors[submap.floor]
		fd := fl.Decode(r, setup.codebooks, uint32(half))
		floorData[ch] = fd
		doNotDecode[ch] = isFloorUnused(fd)
		for i := 0; i < half; i++ {
			s.spectral[ch][i] = 0
		}
	}
	if r.eop() {
		return nil, newError(ErrEndOfPacket, "end of packet during mode or floor decode")
	}

	// A coupling step ties two channels' residue together: if either
	// side has energy, both must be decoded, or the bit reader
	// desyncs for the rest of the packet's residue decode
	// (spec.md §4.8 step 5).
	for _, step := range mp.coupling {
		if !doNotDecode[step.magnitude] || !doNotDecode[step.angle] {
			doNotDecode[step.magnitude] = false
			doNotDecode[step.angle] = false
		}
	}

	for subIdx, submap := range mp.submaps {
		var members []int
		for ch := 0; ch < channels; ch++ {
			use := submapIdx(mp, ch) == subIdx
			if use {
				members = append(members, ch)
			}
		}
		if len(members) == 0 {
			continue
		}
		memberSkip := make([]bool, len(members))
		memberBufs := make([][]float32, len(members))
		for i, ch := range members {
			memberSkip[i] = doNotDecode[ch]
			memberBufs[i] = s.spectral[ch]
		}
		if int(submap.residue) >= len(setup.residues) {
			return nil, newError(ErrBadAudioPacket, "residue number out of range")
		}
		res := &setup.residues[submap.residue]
		res.Decode(r, memberSkip, uint32(half), setup.codebooks, memberBufs)
	}

	if len(mp.coupling) > 0 {
		decoupleChannels(mp.coupling, s.spectral, half)
	}

	for ch := 0; ch < channels; ch++ {
		fl := setup.floors[mp.submaps[submapIdx(mp, ch)].floor]
		fl.Apply(s.floorBuf[ch][:half], floorData[ch])
		spec := s.spectral[ch]
		curve := s.floorBuf[ch]
		for i := 0; i < half; i++ {
			spec[i] *= curve[i]
		}
	}

	lookup := setup.lookupForBlocksize(n)
	windows := setup.windows

	out := make([][]float32, channels)

	for ch := 0; ch < channels; ch++ {
		imdctIn := make([]float32, half)
		copy(imdctIn, s.spectral[ch][:half])
		canvas := s.canvas[:n]
		imdct(lookup, imdctIn, canvas)

		if n == setup.Ident.blocksize0 {
			win := windows.forSize(n)
			for i := 0; i < n; i++ {
				canvas[i] *= win[i]
			}
		} else {
			applyWindow(canvas, n, setup.Ident.blocksize0, prevLong, nextLong)
		}

		leftHalf := canvas[:half]
		rightHalf := append([]float32(nil), canvas[half:n]...)

		if !s.havePrevious {
			out[ch] = nil
		} else {
			prevRight := s.previousRight[ch]
			prevN := s.previousN
			ramp := prevN / 2
			if half < ramp {
				ramp = half
			}
			bigHalf := prevN / 2
			if half > bigHalf {
				bigHalf = half
			}
			finalized := make([]float32, bigHalf)
			if half >= prevN {
				for i := 0; i < ramp; i++ {
					finalized[i] = prevRight[i] + leftHalf[i]
				}
				for i := ramp; i < half; i++ {
					finalized[i] = leftHalf[i]
				}
			} else {
				flatLen := prevN/2 - ramp
				for i := 0; i < flatLen; i++ {
					finalized[i] = prevRight[i]
				}
				for i := 0; i < ramp; i++ {
					finalized[flatLen+i] = prevRight[flatLen+i] + leftHalf[i]
				}
			}
			out[ch] = finalized
		}

		if s.previousRight == nil {
			s.previousRight = make([][]float32, channels)
		}
		s.previousRight[ch] = rightHalf
	}
	s.previousN = n
	s.havePrevious = true

	return out, nil
}

func submapIdx(mp *mapping, ch int) int {
	if len(mp.submaps) > 1 {
		return int(mp.mux[ch])
	}
	return 0
}

func isFloorUnused(data interface{}) bool {
	switch v := data.(type) {
	case floor0Data:
		return v.unused
	case floor1Data:
		return v.unused
	}
	return true
}
