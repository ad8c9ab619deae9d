package decoder

import (
	"strings"
	"unicode/utf8"
)

// CommentHeader is the parsed comment header (packet type 3), per
// spec.md §6.2 and §9: a vendor string plus a mapping of user key to
// its list of values (a key may legally repeat, e.g. multiple ARTIST
// comments on one stream). Comments whose value is not valid UTF-8,
// or that carry no "=" at all, are dropped silently rather than
// rejected, matching the reference decoder's tolerance for malformed
// metadata that should never abort decode of the audio itself.
type CommentHeader struct {
	Vendor   string
	Comments map[string][]string
}

func parseCommentHeader(packet []byte) (*CommentHeader, error) {
	body, err := checkHeaderPacket(packet, vorbisPacketTypeComment)
	if err != nil {
		return nil, err
	}
	r := newBitReader(body)

	vendorLen := r.Read32(32)
	vendor, err := readLengthPrefixedBytes(r, vendorLen)
	if err != nil {
		return nil, err
	}

	h := &CommentHeader{Vendor: string(vendor)}
	commentCount := r.Read32(32)
	for i := uint32(0); i < commentCount; i++ {
		if r.eop() {
			return nil, newError(ErrMalformedHeader, "end of packet while reading comment list")
		}
		length := r.Read32(32)
		raw, err := readLengthPrefixedBytes(r, length)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			continue
		}
		key, value, ok := strings.Cut(string(raw), "=")
		if !ok {
			continue
		}
		if h.Comments == nil {
			h.Comments = make(map[string][]string)
		}
		h.Comments[key] = append(h.Comments[key], value)
	}

	if !r.ReadBool() {
		return nil, newError(ErrMalformedHeader, "comment header framing bit is unset")
	}
	if r.eop() {
		return nil, newError(ErrMalformedHeader, "end of packet while reading comment header")
	}
	return h, nil
}

// readLengthPrefixedBytes reads n bytes out of r, which must be
// byte-aligned at the Vorbis header boundary before this call. A
// length larger than the remaining packet data is malformed.
func readLengthPrefixedBytes(r *bitReader, n uint32) ([]byte, error) {
	if n > uint32(r.bitsLeft()/8) {
		return nil, newError(ErrMalformedHeader, "length-prefixed field overruns the packet")
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = r.Read8(8)
	}
	return out, nil
}
