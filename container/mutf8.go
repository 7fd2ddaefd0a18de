package container

// decodeMUTF8 decodes a Modified UTF-8 byte run starting at offset, stopping
// at the first NUL byte. MUTF-8 encodes U+0000 as the two-byte sequence
// 0xC0 0x80 (never a raw zero) and encodes supplementary characters as a
// surrogate pair of two 3-byte sequences rather than a native 4-byte one.
func decodeMUTF8(data []byte, offset int) string {
	var out []rune
	pos := offset

	for pos < len(data) {
		b := data[pos]
		if b == 0 {
			break
		}

		switch {
		case b&0x80 == 0:
			out = append(out, rune(b))
			pos++

		case b&0xe0 == 0xc0:
			if pos+1 >= len(data) || data[pos+1]&0xc0 != 0x80 {
				return string(out)
			}
			cp := (rune(b&0x1f) << 6) | rune(data[pos+1]&0x3f)
			out = append(out, cp)
			pos += 2

		case b&0xf0 == 0xe0:
			if pos+2 >= len(data) || data[pos+1]&0xc0 != 0x80 || data[pos+2]&0xc0 != 0x80 {
				return string(out)
			}
			cp := (rune(b&0x0f) << 12) | (rune(data[pos+1]&0x3f) << 6) | rune(data[pos+2]&0x3f)

			if cp >= 0xd800 && cp <= 0xdbff && pos+5 < len(data) && data[pos+3]&0xf0 == 0xe0 {
				cp2 := (rune(data[pos+3]&0x0f) << 12) | (rune(data[pos+4]&0x3f) << 6) | rune(data[pos+5]&0x3f)
				if cp2 >= 0xdc00 && cp2 <= 0xdfff {
					out = append(out, 0x10000+((cp-0xd800)<<10)+(cp2-0xdc00))
					pos += 6
					continue
				}
			}
			if cp >= 0xd800 && cp <= 0xdfff {
				out = append(out, 0xfffd)
			} else {
				out = append(out, cp)
			}
			pos += 3

		default:
			return string(out)
		}
	}

	return string(out)
}
