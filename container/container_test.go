package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func minimalHeaderBytes(fileSize uint32) []byte {
	d := make([]byte, headerSize)
	copy(d[0:8], magic[:])
	copy(d[12:16], []byte{0, 0, 0, 5})
	putU32(d, 16, fileSize)
	return d
}

func TestParseHeaderValid(t *testing.T) {
	d := minimalHeaderBytes(headerSize)
	h, err := parseHeader(d)
	require.NoError(t, err)
	assert.Equal(t, magic, h.Magic)
	assert.Equal(t, "0.0.0.5", h.VersionString())
}

func TestParseHeaderBadMagic(t *testing.T) {
	d := minimalHeaderBytes(headerSize)
	d[0] = 'X'
	_, err := parseHeader(d)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestParseHeaderTooSmall(t *testing.T) {
	_, err := parseHeader(make([]byte, 10))
	var shortRead ErrShortRead
	assert.ErrorAs(t, err, &shortRead)
}

func TestParseHeaderOldVersion(t *testing.T) {
	d := minimalHeaderBytes(headerSize)
	copy(d[12:16], []byte{0, 0, 0, 1})
	_, err := parseHeader(d)
	var verErr ErrUnsupportedVersion
	assert.ErrorAs(t, err, &verErr)
}

func TestDecodeMUTF8Basic(t *testing.T) {
	data := append([]byte("hello"), 0)
	assert.Equal(t, "hello", decodeMUTF8(data, 0))
}

func TestDecodeMUTF8NullEncoding(t *testing.T) {
	data := []byte{0xc0, 0x80, 'x', 0}
	assert.Equal(t, "\x00x", decodeMUTF8(data, 0))
}

func TestReadStringRoundtrip(t *testing.T) {
	// uleb128 length byte (unused value, e.g. 10) then "hi\0"
	data := []byte{10, 'h', 'i', 0}
	s, ok := readString(data, 0)
	require.True(t, ok)
	assert.Equal(t, "hi", s)
}

func TestParseLiteralArrayMixedEntries(t *testing.T) {
	data := make([]byte, 0)
	data = binary.LittleEndian.AppendUint32(data, 2) // count
	data = append(data, byte(LiteralTagBool), 1)
	data = append(data, byte(LiteralTagInteger))
	data = binary.LittleEndian.AppendUint32(data, 42)

	arr, err := parseLiteralArray(data, 0)
	require.NoError(t, err)
	require.Len(t, arr.Entries, 2)
	assert.Equal(t, LiteralTagBool, arr.Entries[0].Tag)
	assert.True(t, arr.Entries[0].Bool)
	assert.Equal(t, int32(42), arr.Entries[1].Int)
}

func TestOpenBytesFullFile(t *testing.T) {
	data := minimalHeaderBytes(headerSize)
	// no index regions (num_indexes = 0)
	cf, err := OpenBytes(data)
	require.NoError(t, err)
	defer cf.Close()
	assert.Equal(t, uint32(0), cf.Header.NumIndexes)
}
