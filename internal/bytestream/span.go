package bytestream

import "fmt"

// Span is a borrowed (start, end) byte range into a source buffer.
// It never copies the underlying text; Str() re-slices the original
// string on demand. Ported from original_source/src/strspan.rs
// (StrSpan), flattened since Go strings are already immutable views
// and need no lifetime annotation.
type Span struct {
	text  string
	start int
	end   int
}

// NewSpan builds a Span over text[start:end]. Both offsets must be
// valid byte offsets into text and start <= end.
func NewSpan(text string, start, end int) Span {
	return Span{text: text, start: start, end: end}
}

// Start returns the span's starting byte offset.
func (s Span) Start() int { return s.start }

// End returns the span's ending byte offset.
func (s Span) End() int { return s.end }

// Range returns the (start, end) byte offsets as a pair.
func (s Span) Range() (int, int) { return s.start, s.end }

// Len returns the span's length in bytes.
func (s Span) Len() int { return s.end - s.start }

// IsEmpty reports whether the span covers zero bytes.
func (s Span) IsEmpty() bool { return s.start == s.end }

// Str returns the substring this span covers.
func (s Span) Str() string { return s.text[s.start:s.end] }

// Equal reports whether two spans cover the same range of the same
// source text. Used by google/go-cmp, which calls an Equal method in
// preference to reflecting over unexported fields.
func (s Span) Equal(other Span) bool {
	return s.start == other.start && s.end == other.end && s.text == other.text
}

func (s Span) String() string {
	return fmt.Sprintf("%q@%d..%d", s.Str(), s.start, s.end)
}

// refEncodedSpaces lists the character-reference spellings of the
// four XML whitespace bytes, trimmed the same as their literal forms.
// Ported from original_source/src/strspan.rs: StrSpan::trim.
var refEncodedSpaces = []string{"&#x20;", "&#x9;", "&#xD;", "&#xA;"}

// Trim returns the sub-span with leading and trailing XML whitespace
// removed. Leading whitespace is skipped with ByteStream.SkipSpaces, so
// any character reference that resolves to a space counts; trailing
// whitespace is trimmed only when spelled literally or as one of the
// four character references in refEncodedSpaces.
func (s Span) Trim() Span {
	front := NewRange(s.text, s.start, s.end)
	front.SkipSpaces()
	start := front.Pos()

	end := s.end
	for end > start {
		if IsXMLSpace(s.text[end-1]) {
			end--
			continue
		}
		matched := false
		for _, lit := range refEncodedSpaces {
			if end-len(lit) >= start && s.text[end-len(lit):end] == lit {
				end -= len(lit)
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}

	return NewSpan(s.text, start, end)
}

// TextPos is a 1-based row/column position in the source text.
type TextPos struct {
	Row uint32
	Col uint32
}

func (p TextPos) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}
