package container

import (
	"encoding/binary"
	"strconv"
	"strings"
)

var magic = [8]byte{'P', 'A', 'N', 'D', 'A', 0, 0, 0}

// minVersion is the oldest container version this reader understands.
var minVersion = [4]byte{0, 0, 0, 2}

// headerSize is the fixed on-disk size of Header: 8 + 4 + 4 + 4*11.
const headerSize = 60

// Header is the fixed-size file header at offset 0.
type Header struct {
	Magic              [8]byte
	Checksum           uint32
	Version            [4]byte
	FileSize           uint32
	ForeignOff         uint32
	ForeignSize        uint32
	NumClasses         uint32
	ClassIdxOff        uint32
	NumLineNumberProgs uint32
	LineNumberProgsOff uint32
	NumLiteralArrays   uint32
	LiteralArrayIdxOff uint32
	NumIndexes         uint32
	IndexSectionOff    uint32
}

// VersionString renders Version as "major.minor.patch.build".
func (h Header) VersionString() string {
	return fmtVersion(h.Version)
}

func fmtVersion(v [4]byte) string {
	parts := make([]string, 4)
	for i, b := range v {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ".")
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, ErrShortRead{Have: len(data), Want: headerSize}
	}

	var h Header
	copy(h.Magic[:], data[0:8])
	if h.Magic != magic {
		return Header{}, ErrBadMagic
	}

	h.Checksum = binary.LittleEndian.Uint32(data[8:12])
	copy(h.Version[:], data[12:16])
	if !versionAtLeast(h.Version, minVersion) {
		return Header{}, ErrUnsupportedVersion{Version: h.Version}
	}

	h.FileSize = binary.LittleEndian.Uint32(data[16:20])
	if int(h.FileSize) > len(data) {
		return Header{}, ErrShortRead{Have: len(data), Want: int(h.FileSize)}
	}

	h.ForeignOff = binary.LittleEndian.Uint32(data[20:24])
	h.ForeignSize = binary.LittleEndian.Uint32(data[24:28])
	h.NumClasses = binary.LittleEndian.Uint32(data[28:32])
	h.ClassIdxOff = binary.LittleEndian.Uint32(data[32:36])
	h.NumLineNumberProgs = binary.LittleEndian.Uint32(data[36:40])
	h.LineNumberProgsOff = binary.LittleEndian.Uint32(data[40:44])
	h.NumLiteralArrays = binary.LittleEndian.Uint32(data[44:48])
	h.LiteralArrayIdxOff = binary.LittleEndian.Uint32(data[48:52])
	h.NumIndexes = binary.LittleEndian.Uint32(data[52:56])
	h.IndexSectionOff = binary.LittleEndian.Uint32(data[56:60])

	return h, nil
}

func versionAtLeast(v, min [4]byte) bool {
	for i := 0; i < 4; i++ {
		if v[i] > min[i] {
			return true
		}
		if v[i] < min[i] {
			return false
		}
	}
	return true
}
