package container

import "github.com/abcd-project/abcd/internal/leb128"

// readString reads a container string at offset: a uleb128 length prefix
// (packing utf16 length and an is-ascii flag, both unused by decoding)
// followed by NUL-terminated MUTF-8 data.
func readString(data []byte, offset uint32) (string, bool) {
	pos := int(offset)
	if pos >= len(data) {
		return "", false
	}
	_, consumed, err := leb128.ReadUvarint(data, pos)
	if err != nil {
		return "", false
	}
	return decodeMUTF8(data, pos+consumed), true
}
