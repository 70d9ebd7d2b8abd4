package tokenizer

import (
	"fmt"

	"github.com/shapestone/shape-xmltok/internal/bytestream"
)

// StreamError is a primitive lexical failure (bad name, bad char,
// wrong delimiter, unexpected end of input, ...) raised while
// consuming a single construct.
type StreamError = bytestream.StreamError

// StreamErrorKind identifies which primitive-level failure occurred.
type StreamErrorKind = bytestream.StreamErrorKind

const (
	UnexpectedEndOfStream = bytestream.UnexpectedEndOfStream
	InvalidName           = bytestream.InvalidName
	NonXmlChar            = bytestream.NonXmlChar
	InvalidChar           = bytestream.InvalidChar
	InvalidCharMultiple   = bytestream.InvalidCharMultiple
	InvalidQuote          = bytestream.InvalidQuote
	InvalidSpace          = bytestream.InvalidSpace
	InvalidString         = bytestream.InvalidString
	InvalidReference      = bytestream.InvalidReference
	InvalidExternalID     = bytestream.InvalidExternalID
	InvalidCommentData    = bytestream.InvalidCommentData
	InvalidCommentEnd     = bytestream.InvalidCommentEnd
	InvalidCharacterData  = bytestream.InvalidCharacterData
)

// ErrorKind classifies the tokenizer-level errors Next can return.
// Ported from original_source/src/error.rs (Error), expanded with the
// UnknownToken/InvalidToken distinction spec.md §6 draws between a
// lead-in that matches nothing (UnknownToken) and one that matches a
// construct but is then malformed (InvalidToken wrapping a
// StreamError).
type ErrorKind int

const (
	// ErrInvalidToken means a construct was recognized by its lead-in
	// but failed to parse; Cause holds the underlying StreamError.
	ErrInvalidToken ErrorKind = iota
	// ErrUnexpectedToken means a construct was well-formed but not
	// legal in the tokenizer's current state (e.g. a second DOCTYPE,
	// or a close tag with no open element), or that the input ended
	// inside a start tag or a DOCTYPE internal subset.
	ErrUnexpectedToken
	// ErrUnknownToken means the input at Pos did not match the
	// lead-in of any construct valid in the tokenizer's current
	// state.
	ErrUnknownToken
)

// Error is returned by Tokenizer.Next on malformed input. Once Next
// returns an Error, the tokenizer is permanently done: every
// subsequent call returns (Token{}, nil, false).
type Error struct {
	Kind  ErrorKind
	Token string
	Pos   TextPos
	Cause *StreamError
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrInvalidToken:
		return fmt.Sprintf("invalid token %q at %s cause %v", e.Token, e.Pos, e.Cause)
	case ErrUnexpectedToken:
		return fmt.Sprintf("unexpected token %q at %s", e.Token, e.Pos)
	case ErrUnknownToken:
		return fmt.Sprintf("unknown token at %s", e.Pos)
	default:
		return "invalid xml"
	}
}

func (e *Error) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}
