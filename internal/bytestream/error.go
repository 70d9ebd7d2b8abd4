package bytestream

import (
	"fmt"
	"strings"
)

// StreamErrorKind identifies which primitive-level failure occurred.
// Ported from original_source/src/error.rs (StreamError), generalized
// to the fuller taxonomy spec.md §6 requires.
type StreamErrorKind int

const (
	UnexpectedEndOfStream StreamErrorKind = iota
	InvalidName
	NonXmlChar
	InvalidChar
	InvalidCharMultiple
	InvalidQuote
	InvalidSpace
	InvalidString
	InvalidReference
	InvalidExternalID
	InvalidCommentData
	InvalidCommentEnd
	InvalidCharacterData
)

// StreamError is a primitive lexical failure raised by ByteStream. It
// carries only copy-cheap payloads (runes, a small rune slice, a
// static-ish string, a position) so the error stays small, mirroring
// the size discipline in original_source/src/error.rs's own
// "err_size" tests.
type StreamError struct {
	Kind StreamErrorKind

	// Actual is the byte/char encountered, when relevant
	// (NonXmlChar, InvalidChar, InvalidCharMultiple, InvalidQuote,
	// InvalidSpace).
	Actual rune

	// Expected is the single expected char for InvalidChar, or the
	// literal string for InvalidString.
	Expected    rune
	ExpectedSet []rune
	ExpectedStr string

	Pos TextPos
}

func (e *StreamError) Error() string {
	switch e.Kind {
	case UnexpectedEndOfStream:
		return "unexpected end of stream"
	case InvalidName:
		return "invalid name token"
	case NonXmlChar:
		return fmt.Sprintf("a non-XML character '%c' found at %s", e.Actual, e.Pos)
	case InvalidChar:
		return fmt.Sprintf("expected '%c' not '%c' at %s", e.Expected, e.Actual, e.Pos)
	case InvalidCharMultiple:
		opts := make([]string, len(e.ExpectedSet))
		for i, r := range e.ExpectedSet {
			opts[i] = string(r)
		}
		return fmt.Sprintf("expected '%s' not '%c' at %s", strings.Join(opts, "', '"), e.Actual, e.Pos)
	case InvalidQuote:
		return fmt.Sprintf("expected quote mark not '%c' at %s", e.Actual, e.Pos)
	case InvalidSpace:
		return fmt.Sprintf("expected space not '%c' at %s", e.Actual, e.Pos)
	case InvalidString:
		return fmt.Sprintf("expected '%s' at %s", e.ExpectedStr, e.Pos)
	case InvalidReference:
		return "invalid reference"
	case InvalidExternalID:
		return "invalid ExternalID"
	case InvalidCommentData:
		return "comment data must not contain '--'"
	case InvalidCommentEnd:
		return "comment must not end with '-'"
	case InvalidCharacterData:
		return "character data must not contain ']]>'"
	default:
		return "invalid stream"
	}
}
