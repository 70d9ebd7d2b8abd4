package bytestream

import (
	"strconv"
	"unicode/utf8"
)

// RefKind distinguishes a general entity reference from a character
// reference. Ported from original_source/src/stream.rs (Reference).
type RefKind int

const (
	// RefEntity is a named reference, &name;, that is not one of the
	// five predefined entities.
	RefEntity RefKind = iota
	// RefChar is a reference that resolves directly to a character:
	// either a numeric reference (&#68; &#x44;) or one of the five
	// predefined entities (&quot; &amp; &apos; &lt; &gt;).
	RefChar
)

// Reference is the result of decoding a & reference. For RefEntity,
// Name holds the referenced entity's name span (without & or ;). For
// RefChar, Char holds the resolved code point.
type Reference struct {
	Kind RefKind
	Name Span
	Char rune
}

// predefinedEntity maps the five predefined XML entity names to their
// replacement characters. Ported from
// original_source/src/stream.rs::_consume_reference.
var predefinedEntity = map[string]rune{
	"quot": '"',
	"amp":  '&',
	"apos": '\'',
	"lt":   '<',
	"gt":   '>',
}

// TryConsumeReference attempts to consume a reference at the current
// position, reporting false (without consuming or erroring) if the
// stream does not start with '&'. A malformed reference starting with
// '&' is also reported as false, with the position left unchanged.
func (b *ByteStream) TryConsumeReference() (Reference, bool) {
	if b.AtEnd() || b.currByteUnchecked() != '&' {
		return Reference{}, false
	}
	ref, err := b.ConsumeReference()
	if err != nil {
		return Reference{}, false
	}
	return ref, true
}

// ConsumeReference consumes a reference: EntityRef, CharRef (decimal
// or hex), erroring if the stream is not positioned on a well-formed
// one. Ported from original_source/src/stream.rs::consume_reference.
func (b *ByteStream) ConsumeReference() (Reference, error) {
	start := b.pos

	if err := b.ConsumeByte('&'); err != nil {
		return Reference{}, err
	}

	if b.TryConsumeByte('#') {
		ref, err := b.consumeCharRef(start)
		if err != nil {
			return Reference{}, err
		}
		return ref, nil
	}

	name, err := b.ConsumeName()
	if err != nil {
		b.pos = start
		return Reference{}, &StreamError{Kind: InvalidReference, Pos: b.GenTextPosFrom(start)}
	}
	if err := b.ConsumeByte(';'); err != nil {
		b.pos = start
		return Reference{}, &StreamError{Kind: InvalidReference, Pos: b.GenTextPosFrom(start)}
	}

	if c, ok := predefinedEntity[name.Str()]; ok {
		return Reference{Kind: RefChar, Char: c}, nil
	}
	return Reference{Kind: RefEntity, Name: name}, nil
}

// consumeCharRef consumes the remainder of a CharRef after '&#' has
// already been read: ['x' hexdigits | digits] ';'. An out-of-range
// code point is first clamped to U+FFFD, the Unicode replacement
// character; the clamped (or original) rune is then checked against
// the XML Char production and rejected as InvalidReference if it
// still fails, per original_source/src/stream.rs::_consume_reference
// (char::from_u32(n).unwrap_or('\u{FFFD}'); if !c.is_xml_char() {
// return Err(InvalidReference) }).
func (b *ByteStream) consumeCharRef(start int) (Reference, error) {
	hex := b.TryConsumeByte('x')

	digitsStart := b.pos
	if hex {
		b.SkipBytes(func(c byte) bool { return IsXMLHexDigit(c) })
	} else {
		b.SkipBytes(func(c byte) bool { return IsXMLDigit(c) })
	}
	digits := b.text[digitsStart:b.pos]

	if digits == "" {
		b.pos = start
		return Reference{}, &StreamError{Kind: InvalidReference, Pos: b.GenTextPosFrom(start)}
	}
	if err := b.ConsumeByte(';'); err != nil {
		b.pos = start
		return Reference{}, &StreamError{Kind: InvalidReference, Pos: b.GenTextPosFrom(start)}
	}

	base := 10
	if hex {
		base = 16
	}
	v, err := strconv.ParseUint(digits, base, 32)
	r := rune(utf8.RuneError)
	if err == nil && v <= utf8.MaxRune && utf8.ValidRune(rune(v)) {
		r = rune(v)
	}

	if !IsXMLChar(r) {
		b.pos = start
		return Reference{}, &StreamError{Kind: InvalidReference, Pos: b.GenTextPosFrom(start)}
	}
	return Reference{Kind: RefChar, Char: r}, nil
}
