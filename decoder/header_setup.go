package decoder

// floor is implemented by floor0 and floor1: both decode a per-block
// floor curve from the bitstream, then render it into a full-length
// power spectrum envelope, per spec.md §4.3/§4.4.
type floor interface {
	readFrom(r *bitReader) error
	Decode(r *bitReader, books []codebook, n uint32) interface{}
	Apply(out []float32, data interface{})
}

// mapping ties a mode's submaps, their floors/residues, and any
// channel-coupling steps together, per spec.md §6.3.
type mapping struct {
	submaps []mappingSubmap
	coupling []couplingStep
	mux     []uint8 // per-channel index into submaps
}

type mappingSubmap struct {
	floor, residue uint8
}

// mode selects a mapping and a block size (short or long) for a
// packet, per spec.md §6.3.
type mode struct {
	blockflag uint8
	mapping   uint8
}

// Setup is the immutable, decoded form of a Vorbis I stream's three
// header packets. A single Setup may be shared across any number of
// concurrently-running State values (spec.md §5): nothing in Setup is
// mutated after NewSetup returns.
type Setup struct {
	Ident   *identHeader
	Comment *CommentHeader

	codebooks []codebook
	floors    []floor
	residues  []residue
	mappings  []mapping
	modes     []mode

	windows      *windowTables
	lookupShort  *imdctLookup
	lookupLong   *imdctLookup
}

// Channels returns the stream's channel count.
func (s *Setup) Channels() int { return s.Ident.channels }

// SampleRate returns the stream's sample rate in Hz.
func (s *Setup) SampleRate() uint32 { return s.Ident.sampleRate }

// NewSetup parses the three Vorbis I header packets, in order
// (identification, comment, setup), into a ready-to-decode Setup, per
// spec.md §6.
func NewSetup(identPacket, commentPacket, setupPacket []byte) (*Setup, error) {
	ident, err := parseIdentHeader(identPacket)
	if err != nil {
		return nil, err
	}
	comment, err := parseCommentHeader(commentPacket)
	if err != nil {
		return nil, err
	}
	s := &Setup{Ident: ident, Comment: comment}
	if err := s.readSetupHeader(setupPacket); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Setup) readSetupHeader(packet []byte) error {
	body, err := checkHeaderPacket(packet, vorbisPacketTypeSetup)
	if err != nil {
		return err
	}
	r := newBitReader(body)
	channels := s.Ident.channels

	// CODEBOOKS
	s.codebooks = make([]codebook, r.Read16(8)+1)
	for i := range s.codebooks {
		if err := s.codebooks[i].readFrom(r); err != nil {
			return err
		}
	}

	// TIME DOMAIN TRANSFORMS: placeholder field, must all read zero.
	transformCount := int(r.Read8(6)) + 1
	for i := 0; i < transformCount; i++ {
		if r.Read16(16) != 0 {
			return newError(ErrMalformedHeader, "non-zero time domain transform placeholder")
		}
	}

	// FLOORS
	s.floors = make([]floor, r.Read8(6)+1)
	for i := range s.floors {
		var f floor
		switch r.Read16(16) {
		case 0:
			f = new(floor0)
		case 1:
			f = new(floor1)
		default:
			return newError(ErrUnsupportedConfiguration, "unsupported floor type")
		}
		if err := f.readFrom(r); err != nil {
			return err
		}
		s.floors[i] = f
	}

	// RESIDUES
	s.residues = make([]residue, r.Read8(6)+1)
	for i := range s.residues {
		if err := s.residues[i].readFrom(r); err != nil {
			return err
		}
	}

	// MAPPINGS
	s.mappings = make([]mapping, r.Read8(6)+1)
	for i := range s.mappings {
		m := &s.mappings[i]
		if r.Read16(16) != 0 {
			return newError(ErrMalformedHeader, "non-zero mapping type")
		}
		if r.ReadBool() {
			m.submaps = make([]mappingSubmap, r.Read8(4)+1)
		} else {
			m.submaps = make([]mappingSubmap, 1)
		}
		if r.ReadBool() {
			steps := int(r.Read16(8)) + 1
			m.coupling = make([]couplingStep, steps)
			for j := range m.coupling {
				m.coupling[j].magnitude = int(r.Read8(ilog(channels - 1)))
				m.coupling[j].angle = int(r.Read8(ilog(channels - 1)))
			}
		}
		if r.Read8(2) != 0 {
			return newError(ErrMalformedHeader, "non-zero mapping reserved field")
		}
		m.mux = make([]uint8, channels)
		if len(m.submaps) > 1 {
			for i := range m.mux {
				m.mux[i] = r.Read8(4)
			}
		}
		for i := range m.submaps {
			r.Read8(8) // unused placeholder
			m.submaps[i].floor = r.Read8(8)
			m.submaps[i].residue = r.Read8(8)
		}
	}

	// MODES
	s.modes = make([]mode, r.Read8(6)+1)
	for i := range s.modes {
		m := &s.modes[i]
		m.blockflag = r.Read8(1)
		if r.Read16(16) != 0 {
			return newError(ErrMalformedHeader, "non-zero mode windowtype")
		}
		if r.Read16(16) != 0 {
			return newError(ErrMalformedHeader, "non-zero mode transformtype")
		}
		m.mapping = r.Read8(8)
	}

	if !r.ReadBool() {
		return newError(ErrMalformedHeader, "setup header framing bit is unset")
	}
	if r.eop() {
		return newError(ErrMalformedHeader, "end of packet while reading setup header")
	}

	s.windows = buildWindowTables(s.Ident.blocksize0, s.Ident.blocksize1)
	s.lookupShort = generateIMDCTLookup(s.Ident.blocksize0)
	s.lookupLong = generateIMDCTLookup(s.Ident.blocksize1)
	return nil
}

func (s *Setup) blocksizeForMode(m *mode) int {
	if m.blockflag == 0 {
		return s.Ident.blocksize0
	}
	return s.Ident.blocksize1
}

func (s *Setup) lookupForBlocksize(n int) *imdctLookup {
	if n == s.Ident.blocksize0 {
		return s.lookupShort
	}
	return s.lookupLong
}
