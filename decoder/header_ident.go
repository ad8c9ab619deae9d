package decoder

// identHeader is the parsed identification header (packet type 1),
// per spec.md §6.1: sample rate, channel count, and the pair of
// allowed block sizes for this stream.
type identHeader struct {
	version        uint32
	channels       int
	sampleRate     uint32
	bitrateMaximum int32
	bitrateNominal int32
	bitrateMinimum int32
	blocksize0     int
	blocksize1     int
}

const vorbisPacketTypeIdent = 1
const vorbisPacketTypeComment = 3
const vorbisPacketTypeSetup = 5

var vorbisMagic = [6]byte{'v', 'o', 'r', 'b', 'i', 's'}

func checkHeaderPacket(data []byte, wantType byte) ([]byte, error) {
	if len(data) < 7 || data[0] != wantType {
		return nil, newError(ErrMalformedHeader, "header packet has the wrong packet type")
	}
	for i := 0; i < 6; i++ {
		if data[1+i] != vorbisMagic[i] {
			return nil, newError(ErrMalformedHeader, "header packet is missing the vorbis magic")
		}
	}
	return data[7:], nil
}

func parseIdentHeader(packet []byte) (*identHeader, error) {
	body, err := checkHeaderPacket(packet, vorbisPacketTypeIdent)
	if err != nil {
		return nil, err
	}
	r := newBitReader(body)

	h := &identHeader{}
	h.version = r.Read32(32)
	if h.version != 0 {
		return nil, newError(ErrUnsupportedVersion, "unsupported vorbis version")
	}
	h.channels = int(r.Read8(8))
	h.sampleRate = r.Read32(32)
	h.bitrateMaximum = int32(r.Read32(32))
	h.bitrateNominal = int32(r.Read32(32))
	h.bitrateMinimum = int32(r.Read32(32))
	h.blocksize0 = 1 << r.Read8(4)
	h.blocksize1 = 1 << r.Read8(4)
	framingFlag := r.ReadBool()

	if h.channels <= 0 {
		return nil, newError(ErrMalformedHeader, "ident header declares zero channels")
	}
	if h.sampleRate == 0 {
		return nil, newError(ErrMalformedHeader, "ident header declares a zero sample rate")
	}
	if !isPowerOfTwo(h.blocksize0) || !isPowerOfTwo(h.blocksize1) {
		return nil, newError(ErrMalformedHeader, "ident header block size is not a power of two")
	}
	if h.blocksize0 > h.blocksize1 {
		return nil, newError(ErrMalformedHeader, "ident header blocksize0 exceeds blocksize1")
	}
	if h.blocksize0 < 64 || h.blocksize1 > 8192 {
		return nil, newError(ErrUnsupportedConfiguration, "ident header block size is outside the legal range")
	}
	if !framingFlag {
		return nil, newError(ErrMalformedHeader, "ident header framing bit is unset")
	}
	if r.eop() {
		return nil, newError(ErrMalformedHeader, "end of packet while reading ident header")
	}
	return h, nil
}
