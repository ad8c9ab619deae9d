// Package decoder implements the core of a Vorbis I audio decoder:
// bitstream parsing, codebook and floor/residue synthesis, inverse
// MDCT, and packet-to-PCM orchestration. It operates purely on
// already-demuxed Vorbis packets; Ogg container framing, network or
// file I/O, and any async delivery wrapper are the caller's concern.
package decoder

// Decoder is the package's primary entry point: it ties together a
// Setup (the three parsed header packets) and a State (the mutable
// overlap register) behind the single-object New/Info/Decode idiom.
//
// Decoder is not safe for concurrent use. To decode several streams
// that share one Setup concurrently, call NewState directly for each
// one instead of going through Decoder.
type Decoder struct {
	setup *Setup
	state *State
}

// Info describes a decoded Vorbis stream's identification and
// comment headers.
type Info struct {
	Channels   int
	SampleRate uint32
	Vendor     string
	Comments   map[string][]string
}

// New parses the three Vorbis I header packets and returns a Decoder
// ready to decode audio packets from the same logical stream.
func New(identPacket, commentPacket, setupPacket []byte) (*Decoder, error) {
	setup, err := NewSetup(identPacket, commentPacket, setupPacket)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		setup: setup,
		state: NewState(setup),
	}, nil
}

// NewFromSetup builds a Decoder around a Setup parsed (and possibly
// shared with other Decoders) elsewhere, per spec.md §5.
func NewFromSetup(setup *Setup) *Decoder {
	return &Decoder{setup: setup, state: NewState(setup)}
}

// Info returns the stream's identification and comment metadata.
func (d *Decoder) Info() Info {
	return Info{
		Channels:   d.setup.Channels(),
		SampleRate: d.setup.SampleRate(),
		Vendor:     d.setup.Comment.Vendor,
		Comments:   d.setup.Comment.Comments,
	}
}

// Decode decodes one audio packet and returns the PCM samples it
// finalizes, one slice per channel. The first packet decoded always
// returns empty channels: see State.DecodePacket.
func (d *Decoder) Decode(packet []byte) ([][]float32, error) {
	return d.state.DecodePacket(packet)
}

// Reset clears the decoder's overlap register. Call it before
// decoding a packet that is not the bitstream-order successor of the
// last one passed to Decode, such as after a seek.
func (d *Decoder) Reset() {
	d.state.Reset()
}
