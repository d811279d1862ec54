package nbt

import "unicode/utf8"

// encodeMUTF8 converts s to Java's modified UTF-8: NUL takes two bytes and
// supplementary characters are written as two three-byte surrogates.
func encodeMUTF8(s string) []byte {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			buf = append(buf, 0xC0, 0x80)
		case r < utf8.RuneSelf:
			buf = append(buf, byte(r))
		case r <= 0xFFFF:
			buf = utf8.AppendRune(buf, r)
		default:
			r -= 0x10000
			buf = appendSurrogate(buf, 0xD800+(r>>10))
			buf = appendSurrogate(buf, 0xDC00+(r&0x3FF))
		}
	}
	return buf
}

// appendSurrogate writes a surrogate code unit as a three-byte sequence,
// which utf8.AppendRune refuses to do.
func appendSurrogate(buf []byte, u rune) []byte {
	return append(buf,
		0xE0|byte(u>>12),
		0x80|byte(u>>6)&0x3F,
		0x80|byte(u)&0x3F,
	)
}
