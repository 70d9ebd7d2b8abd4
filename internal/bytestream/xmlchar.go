package bytestream

// Character classification for the XML 1.0 subset this tokenizer needs.
// Ported from original_source/src/xmlchar.rs (XmlCharExt, XmlByteExt),
// generalized to the fuller ranges spec.md §4.2 names explicitly.

// IsNameStartChar reports whether r may start an XML Name.
// https://www.w3.org/TR/xml/#NT-NameStartChar
func IsNameStartChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == ':', r == '_':
		return true
	case r >= 0xC0 && r <= 0xD6,
		r >= 0xD8 && r <= 0xF6,
		r >= 0xF8 && r <= 0x2FF,
		r >= 0x370 && r <= 0x37D,
		r >= 0x37F && r <= 0x1FFF,
		r >= 0x200C && r <= 0x200D,
		r >= 0x2070 && r <= 0x218F,
		r >= 0x2C00 && r <= 0x2FEF,
		r >= 0x3001 && r <= 0xD7FF,
		r >= 0xF900 && r <= 0xFDCF,
		r >= 0xFDF0 && r <= 0xFFFD,
		r >= 0x10000 && r <= 0xEFFFF:
		return true
	default:
		return false
	}
}

// IsNameChar reports whether r may appear after the first character of
// an XML Name. https://www.w3.org/TR/xml/#NT-NameChar
func IsNameChar(r rune) bool {
	if IsNameStartChar(r) {
		return true
	}
	switch {
	case r == '-', r == '.', r >= '0' && r <= '9', r == 0xB7,
		r >= 0x0300 && r <= 0x036F,
		r >= 0x203F && r <= 0x2040:
		return true
	default:
		return false
	}
}

// IsXMLChar reports whether r is in the XML 1.0 Char production.
// https://www.w3.org/TR/xml/#NT-Char
func IsXMLChar(r rune) bool {
	switch {
	case r == 0x9, r == 0xA, r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// IsXMLSpace reports whether b is an ASCII XML whitespace byte: space,
// tab, LF, or CR.
func IsXMLSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// IsXMLDigit reports whether b is an ASCII decimal digit.
func IsXMLDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// IsXMLHexDigit reports whether b is an ASCII hex digit.
func IsXMLHexDigit(b byte) bool {
	return IsXMLDigit(b) || (b >= 'A' && b <= 'F') || (b >= 'a' && b <= 'f')
}

// IsXMLLetter reports whether b is an ASCII letter.
func IsXMLLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
