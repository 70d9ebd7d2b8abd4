package tokenizer

import "github.com/shapestone/shape-xmltok/internal/bytestream"

// Span is a borrowed (start, end) byte range into the text a
// Tokenizer was constructed over. It never copies; Str re-slices the
// original buffer on demand.
type Span = bytestream.Span

// TextPos is a 1-based row/column position in the source text,
// computed lazily (only when an error needs to report one).
type TextPos = bytestream.TextPos

// NewSpan builds a Span over text[start:end]. Exposed mainly so
// black-box tests can build expected tokens without reaching into
// internal/bytestream themselves.
func NewSpan(text string, start, end int) Span {
	return bytestream.NewSpan(text, start, end)
}
