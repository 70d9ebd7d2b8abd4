package tokenizer

// TokenKind discriminates the flavor of data a Token carries. Go has
// no sum type, so Token is a flat, Kind-tagged struct instead of the
// original's enum with payload — the same flattening the teacher's
// own token taxonomy (internal/tokenizer/tokens.go) and the
// muktihari-xmltokenizer/Goodwine-go-xml sibling tokenizers use, and
// it keeps Next's Token results allocation-free.
type TokenKind int

const (
	// TokenDeclaration is the XML declaration: <?xml version="1.0"?>.
	// Version, Encoding, Standalone hold the three attribute values
	// (Encoding and Standalone are zero-value Spans when absent).
	TokenDeclaration TokenKind = iota
	// TokenProcessingInstruction is <?target content?>. Target and
	// PIContent hold the two parts; PIContent is zero-value when there
	// was no content.
	TokenProcessingInstruction
	// TokenComment is <!--content-->. Comment holds the interior.
	TokenComment
	// TokenDtdStart is the opening of a DOCTYPE with an internal
	// subset: <!DOCTYPE name [. Name and ExternalID describe it;
	// ExternalID.Kind is ExternalIDNone when absent.
	TokenDtdStart
	// TokenEmptyDtd is a DOCTYPE without an internal subset:
	// <!DOCTYPE name>. Name and ExternalID describe it.
	TokenEmptyDtd
	// TokenEntityDecl is <!ENTITY name def> inside an internal
	// subset. Name and EntityDef describe it.
	TokenEntityDecl
	// TokenDtdEnd is the closing ]> of a DOCTYPE internal subset.
	TokenDtdEnd
	// TokenElementStart is the opening lead-in of a start or
	// empty-element tag, up to but excluding its attributes:
	// <prefix:local. Prefix and Local name the element.
	TokenElementStart
	// TokenAttribute is a single name="value" pair inside a start
	// tag. Prefix, Local, and AttrValue describe it.
	TokenAttribute
	// TokenElementEnd closes a start tag opened by TokenElementStart:
	// '>' (EndOpen), '</prefix:local>' (EndClose), or '/>'
	// (EndEmpty). See ElementEnd.
	TokenElementEnd
	// TokenText is non-whitespace character data between markup, with
	// entity/char references left undecoded in Text (callers decode
	// on demand via bytestream.ConsumeReference-style logic).
	TokenText
	// TokenWhitespaces is character data between markup that the
	// tokenizer has determined is entirely XML whitespace.
	TokenWhitespaces
	// TokenCdata is the interior of a <![CDATA[...]]> section. Cdata
	// holds the content, already free of the CDATA delimiters.
	TokenCdata
)

// ElementEndKind discriminates the three ways a start tag can close.
type ElementEndKind int

const (
	// ElementEndOpen is a plain '>': the element has children.
	ElementEndOpen ElementEndKind = iota
	// ElementEndClose is a '</prefix:local>': it closes an
	// open element. ClosePrefix/CloseLocal hold the closed name.
	ElementEndClose
	// ElementEndEmpty is a '/>': the element has no children.
	ElementEndEmpty
)

// ElementEnd is the payload of a TokenElementEnd token.
type ElementEnd struct {
	Kind        ElementEndKind
	ClosePrefix Span
	CloseLocal  Span
}

// ExternalIDKind discriminates SYSTEM from PUBLIC external IDs.
type ExternalIDKind int

const (
	// ExternalIDNone means no ExternalID was present.
	ExternalIDNone ExternalIDKind = iota
	// ExternalIDSystem is SYSTEM "uri".
	ExternalIDSystem
	// ExternalIDPublic is PUBLIC "id" "uri".
	ExternalIDPublic
)

// ExternalID is the payload of a DOCTYPE's optional SYSTEM/PUBLIC
// clause.
type ExternalID struct {
	Kind   ExternalIDKind
	Public Span
	System Span
}

// EntityDefKind discriminates the two legal bodies of an ENTITY
// declaration.
type EntityDefKind int

const (
	// EntityDefValue is an internal entity: <!ENTITY name "value">.
	EntityDefValue EntityDefKind = iota
	// EntityDefExternalID is an external entity:
	// <!ENTITY name SYSTEM "uri">.
	EntityDefExternalID
)

// EntityDefinition is the payload of a TokenEntityDecl token's
// definition half.
type EntityDefinition struct {
	Kind       EntityDefKind
	EntityValue Span
	ExternalID  ExternalID
}

// Token is a single lexical item produced by Tokenizer.Next. Every
// Span it carries borrows from the buffer the Tokenizer was
// constructed over; no field ever owns a copy.
type Token struct {
	Kind TokenKind

	// Declaration / ProcessingInstruction
	Version    Span
	Encoding   Span
	Standalone Span
	Target     Span
	PIContent  Span

	// Comment / Text / Whitespaces / Cdata
	Comment Span
	Text    Span
	Cdata   Span

	// DtdStart / EmptyDtd / EntityDecl shared name field
	Name Span
	ExternalID ExternalID

	// EntityDecl
	EntityDef EntityDefinition

	// ElementStart / Attribute shared qname fields
	Prefix Span
	Local  Span

	// Attribute
	AttrValue Span

	// ElementEnd
	ElementEnd ElementEnd

	// Span is the full byte range of the token itself, used by
	// callers that want to re-slice the original buffer verbatim
	// (e.g. to echo a construct unmodified).
	Span Span
}
