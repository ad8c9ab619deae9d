package decoder

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a decode failure the way spec.md §6/§7 asks for:
// setup errors are always fatal to the stream, packet errors leave the
// decoder usable for the next packet.
type ErrorKind int

const (
	// ErrMalformedHeader covers any structural problem found while
	// parsing the identification, comment, or setup header.
	ErrMalformedHeader ErrorKind = iota
	// ErrUnsupportedVersion is returned when the identification header
	// names a Vorbis version other than 0.
	ErrUnsupportedVersion
	// ErrUnsupportedConfiguration covers legal-but-unimplemented setup,
	// e.g. a floor type >= 2.
	ErrUnsupportedConfiguration
	// ErrBadAudioPacket covers a structurally invalid audio packet
	// (bad packet type flag, out-of-range mode index, invalid
	// floor/residue configuration).
	ErrBadAudioPacket
	// ErrEndOfPacket signals a bitstream underrun in a context where
	// running out of bits is an error (floor, codebook-for-floor,
	// coupling, mode decode). It is NOT used for residue decode, where
	// end-of-packet is a normal early termination handled internally.
	ErrEndOfPacket
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedHeader:
		return "malformed header"
	case ErrUnsupportedVersion:
		return "unsupported version"
	case ErrUnsupportedConfiguration:
		return "unsupported configuration"
	case ErrBadAudioPacket:
		return "bad audio packet"
	case ErrEndOfPacket:
		return "end of packet"
	default:
		return "unknown error"
	}
}

// DecodeError is the error type returned at the package boundary.
// Kind lets callers distinguish fatal setup failures from recoverable
// per-packet failures without string matching.
type DecodeError struct {
	Kind ErrorKind
	Msg  string
	err  error
}

func (e *DecodeError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("vorbis: %s: %s: %v", e.Kind, e.Msg, e.err)
	}
	return fmt.Sprintf("vorbis: %s: %s", e.Kind, e.Msg)
}

func (e *DecodeError) Unwrap() error { return e.err }

func newError(kind ErrorKind, msg string) error {
	return &DecodeError{Kind: kind, Msg: msg}
}

func wrapError(kind ErrorKind, msg string, err error) error {
	return &DecodeError{Kind: kind, Msg: msg, err: err}
}

// IsEndOfPacket reports whether err is an end-of-packet DecodeError,
// i.e. a bitstream underrun that occurred where spec.md §7 treats it
// as fatal (floor, codebook-for-floor, coupling, mode decode).
func IsEndOfPacket(err error) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind == ErrEndOfPacket
	}
	return false
}

var errNoLookupTable = errors.New("vorbis: VQ decode on a codebook with no lookup table")
var errEntryOutOfRange = errors.New("vorbis: codebook entry out of range")
var errNoUsablePrefixCode = errors.New("vorbis: code lengths form no usable prefix code")
