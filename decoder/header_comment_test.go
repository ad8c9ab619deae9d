package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLengthPrefixed(w *bitWriter, s []byte) {
	w.writeBits(uint32(len(s)), 32)
	for _, b := range s {
		w.writeBits(uint32(b), 8)
	}
}

func buildCommentPacket(vendor string, comments []string, framing bool) []byte {
	w := &bitWriter{}
	writeLengthPrefixed(w, []byte(vendor))
	w.writeBits(uint32(len(comments)), 32)
	for _, c := range comments {
		writeLengthPrefixed(w, []byte(c))
	}
	w.writeBool(framing)
	return append([]byte{vorbisPacketTypeComment, 'v', 'o', 'r', 'b', 'i', 's'}, w.bytesOut()...)
}

func TestParseCommentHeaderValid(t *testing.T) {
	packet := buildCommentPacket("test encoder", []string{"ARTIST=foo", "TITLE=bar"}, true)
	h, err := parseCommentHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, "test encoder", h.Vendor)
	assert.Equal(t, map[string][]string{"ARTIST": {"foo"}, "TITLE": {"bar"}}, h.Comments)
}

func TestParseCommentHeaderAggregatesRepeatedKeys(t *testing.T) {
	packet := buildCommentPacket("test encoder", []string{"ARTIST=foo", "ARTIST=bar"}, true)
	h, err := parseCommentHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"ARTIST": {"foo", "bar"}}, h.Comments)
}

func TestParseCommentHeaderDropsCommentWithNoEquals(t *testing.T) {
	packet := buildCommentPacket("test encoder", []string{"ARTIST=foo", "nonsense"}, true)
	h, err := parseCommentHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"ARTIST": {"foo"}}, h.Comments)
}

func TestParseCommentHeaderDropsMalformedUTF8(t *testing.T) {
	w := &bitWriter{}
	writeLengthPrefixed(w, []byte("vendor"))
	w.writeBits(2, 32)
	writeLengthPrefixed(w, []byte("GOOD=ok"))
	writeLengthPrefixed(w, []byte{'B', 'A', 'D', '=', 0xFF, 0xFE})
	w.writeBool(true)
	packet := append([]byte{vorbisPacketTypeComment, 'v', 'o', 'r', 'b', 'i', 's'}, w.bytesOut()...)

	h, err := parseCommentHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"GOOD": {"ok"}}, h.Comments)
}

func TestParseCommentHeaderRejectsMissingFramingBit(t *testing.T) {
	packet := buildCommentPacket("vendor", nil, false)
	_, err := parseCommentHeader(packet)
	assert.Error(t, err)
}
