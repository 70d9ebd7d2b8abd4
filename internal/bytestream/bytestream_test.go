package bytestream

import "testing"

func TestAtEndAndPos(t *testing.T) {
	bs := New("ab")
	if bs.AtEnd() {
		t.Fatal("AtEnd() = true at start")
	}
	bs.Advance(2)
	if !bs.AtEnd() {
		t.Fatal("AtEnd() = false after consuming everything")
	}
	if bs.Pos() != 2 {
		t.Errorf("Pos() = %d, want 2", bs.Pos())
	}
}

func TestCurrByteAtEnd(t *testing.T) {
	bs := New("")
	if _, err := bs.CurrByte(); err == nil {
		t.Fatal("expected error at end of stream")
	}
}

func TestStartsWith(t *testing.T) {
	bs := New("<?xml version")
	if !bs.StartsWith("<?xml ") {
		t.Error("StartsWith(\"<?xml \") = false, want true")
	}
	if bs.StartsWith("<?XML ") {
		t.Error("StartsWith should be case-sensitive")
	}
	if bs.StartsWith("this string is way too long for the buffer") {
		t.Error("StartsWith should reject patterns longer than the remaining input")
	}
}

func TestConsumeByte(t *testing.T) {
	bs := New("<a")
	if err := bs.ConsumeByte('<'); err != nil {
		t.Fatalf("ConsumeByte('<') error: %v", err)
	}
	if err := bs.ConsumeByte('x'); err == nil {
		t.Fatal("expected InvalidChar error")
	}
}

func TestTryConsumeByte(t *testing.T) {
	bs := New("ab")
	if bs.TryConsumeByte('x') {
		t.Error("TryConsumeByte should not consume a non-matching byte")
	}
	if !bs.TryConsumeByte('a') {
		t.Error("TryConsumeByte should consume a matching byte")
	}
	if bs.Pos() != 1 {
		t.Errorf("Pos() = %d, want 1", bs.Pos())
	}
}

func TestConsumeName(t *testing.T) {
	bs := New("foo:bar rest")
	name, err := bs.ConsumeName()
	if err != nil {
		t.Fatalf("ConsumeName error: %v", err)
	}
	if name.Str() != "foo:bar" {
		t.Errorf("ConsumeName() = %q, want %q", name.Str(), "foo:bar")
	}
}

func TestConsumeNameRejectsLeadingDigit(t *testing.T) {
	bs := New("1abc")
	if _, err := bs.ConsumeName(); err == nil {
		t.Fatal("expected InvalidName error for a name starting with a digit")
	}
}

func TestConsumeQNameNoPrefix(t *testing.T) {
	bs := New("local ")
	prefix, local, err := bs.ConsumeQName()
	if err != nil {
		t.Fatalf("ConsumeQName error: %v", err)
	}
	if !prefix.IsEmpty() {
		t.Errorf("prefix = %q, want empty", prefix.Str())
	}
	if local.Str() != "local" {
		t.Errorf("local = %q, want %q", local.Str(), "local")
	}
}

func TestConsumeQNameWithPrefix(t *testing.T) {
	bs := New("ns:local ")
	prefix, local, err := bs.ConsumeQName()
	if err != nil {
		t.Fatalf("ConsumeQName error: %v", err)
	}
	if prefix.Str() != "ns" {
		t.Errorf("prefix = %q, want %q", prefix.Str(), "ns")
	}
	if local.Str() != "local" {
		t.Errorf("local = %q, want %q", local.Str(), "local")
	}
}

func TestConsumeQNameRejectsDoubleColon(t *testing.T) {
	bs := New("a:b:c ")
	if _, _, err := bs.ConsumeQName(); err == nil {
		t.Fatal("expected InvalidName error for a qname with two colons")
	}
}

func TestConsumeQNameRejectsEmptyLocal(t *testing.T) {
	bs := New("ns: ")
	if _, _, err := bs.ConsumeQName(); err == nil {
		t.Fatal("expected InvalidName error for an empty local part")
	}
}

func TestConsumeCharsStopsOnNonXmlChar(t *testing.T) {
	bs := New("ab\x01cd")
	_, err := bs.ConsumeChars(func(r rune) bool { return r != '\x00' })
	if err == nil {
		t.Fatal("expected NonXmlChar error")
	}
	se, ok := err.(*StreamError)
	if !ok || se.Kind != NonXmlChar {
		t.Errorf("err = %v, want NonXmlChar StreamError", err)
	}
}

func TestConsumeCharsStopsAtPredicateFalse(t *testing.T) {
	bs := New("abc<def")
	span, err := bs.ConsumeChars(func(r rune) bool { return r != '<' })
	if err != nil {
		t.Fatalf("ConsumeChars error: %v", err)
	}
	if span.Str() != "abc" {
		t.Errorf("ConsumeChars() = %q, want %q", span.Str(), "abc")
	}
	if bs.Pos() != 3 {
		t.Errorf("Pos() = %d, want 3", bs.Pos())
	}
}

func TestConsumeReferencePredefinedEntity(t *testing.T) {
	bs := New("&amp;rest")
	ref, err := bs.ConsumeReference()
	if err != nil {
		t.Fatalf("ConsumeReference error: %v", err)
	}
	if ref.Kind != RefChar || ref.Char != '&' {
		t.Errorf("ref = %+v, want RefChar '&'", ref)
	}
}

func TestConsumeReferenceGeneralEntity(t *testing.T) {
	bs := New("&custom;rest")
	ref, err := bs.ConsumeReference()
	if err != nil {
		t.Fatalf("ConsumeReference error: %v", err)
	}
	if ref.Kind != RefEntity || ref.Name.Str() != "custom" {
		t.Errorf("ref = %+v, want RefEntity \"custom\"", ref)
	}
}

func TestConsumeReferenceDecimalCharRef(t *testing.T) {
	bs := New("&#65;rest")
	ref, err := bs.ConsumeReference()
	if err != nil {
		t.Fatalf("ConsumeReference error: %v", err)
	}
	if ref.Kind != RefChar || ref.Char != 'A' {
		t.Errorf("ref = %+v, want RefChar 'A'", ref)
	}
}

func TestConsumeReferenceHexCharRef(t *testing.T) {
	bs := New("&#x41;rest")
	ref, err := bs.ConsumeReference()
	if err != nil {
		t.Fatalf("ConsumeReference error: %v", err)
	}
	if ref.Kind != RefChar || ref.Char != 'A' {
		t.Errorf("ref = %+v, want RefChar 'A'", ref)
	}
}

func TestConsumeReferenceInvalidCodepointClampsToReplacementChar(t *testing.T) {
	bs := New("&#xFFFFFFFF;rest")
	ref, err := bs.ConsumeReference()
	if err != nil {
		t.Fatalf("ConsumeReference error: %v", err)
	}
	if ref.Char != 0xFFFD {
		t.Errorf("ref.Char = %U, want U+FFFD", ref.Char)
	}
}

func TestConsumeReferenceMalformedRestoresPosition(t *testing.T) {
	bs := New("&#;rest")
	if _, err := bs.ConsumeReference(); err == nil {
		t.Fatal("expected InvalidReference error")
	}
	if bs.Pos() != 0 {
		t.Errorf("Pos() = %d, want 0 (position restored on error)", bs.Pos())
	}
}

func TestTryConsumeReferenceNoAmpersand(t *testing.T) {
	bs := New("no reference here")
	if _, ok := bs.TryConsumeReference(); ok {
		t.Error("TryConsumeReference should report false without '&'")
	}
	if bs.Pos() != 0 {
		t.Error("TryConsumeReference must not consume when there is no reference")
	}
}

func TestSkipSpacesConsumesReferenceEncodedSpace(t *testing.T) {
	bs := New("&#x20;&#x9;x")
	bs.SkipSpaces()
	if bs.Pos() != len("&#x20;&#x9;") {
		t.Errorf("Pos() = %d, want %d", bs.Pos(), len("&#x20;&#x9;"))
	}
}

func TestStartsWithSpaceDoesNotConsume(t *testing.T) {
	bs := New(" x")
	if !bs.StartsWithSpace() {
		t.Error("StartsWithSpace() = false, want true")
	}
	if bs.Pos() != 0 {
		t.Error("StartsWithSpace must not consume")
	}
}

func TestConsumeEq(t *testing.T) {
	bs := New(" = rest")
	if err := bs.ConsumeEq(); err != nil {
		t.Fatalf("ConsumeEq error: %v", err)
	}
	if bs.Pos() != len(" = ") {
		t.Errorf("Pos() = %d, want %d", bs.Pos(), len(" = "))
	}
}

func TestConsumeQuote(t *testing.T) {
	bs := New(`"value"`)
	q, err := bs.ConsumeQuote()
	if err != nil {
		t.Fatalf("ConsumeQuote error: %v", err)
	}
	if q != '"' {
		t.Errorf("ConsumeQuote() = %q, want '\"'", q)
	}
}

func TestConsumeQuoteRejectsNonQuote(t *testing.T) {
	bs := New("value")
	if _, err := bs.ConsumeQuote(); err == nil {
		t.Fatal("expected InvalidQuote error")
	}
}

func TestSliceBackAndSliceTail(t *testing.T) {
	bs := New("hello world")
	start := bs.Pos()
	bs.Advance(5)
	if got := bs.SliceBack(start).Str(); got != "hello" {
		t.Errorf("SliceBack() = %q, want %q", got, "hello")
	}
	if got := bs.SliceTail().Str(); got != " world" {
		t.Errorf("SliceTail() = %q, want %q", got, " world")
	}
}

func TestGenTextPosTracksLinesAndColumns(t *testing.T) {
	bs := New("ab\ncd\nef")
	bs.Advance(len("ab\ncd\ne"))
	pos := bs.GenTextPos()
	if pos.Row != 3 || pos.Col != 2 {
		t.Errorf("GenTextPos() = %s, want 3:2", pos)
	}
}

func TestNewRangeScopesToFragment(t *testing.T) {
	text := "<a><b/></a>"
	bs := NewRange(text, 3, 7)
	if bs.Pos() != 3 {
		t.Errorf("Pos() = %d, want 3", bs.Pos())
	}
	if !bs.StartsWith("<b/>") {
		t.Error("fragment stream should start at offset 3")
	}
	bs.Advance(4)
	if !bs.AtEnd() {
		t.Error("fragment stream should end at offset 7, not the text length")
	}
}

func TestSpanTrimLiteralWhitespace(t *testing.T) {
	text := "  hello world  "
	span := NewSpan(text, 0, len(text))
	if got := span.Trim().Str(); got != "hello world" {
		t.Errorf("Trim() = %q, want %q", got, "hello world")
	}
}

func TestSpanTrimReferenceEncodedWhitespace(t *testing.T) {
	text := "&#x20;hello&#x9;"
	span := NewSpan(text, 0, len(text))
	if got := span.Trim().Str(); got != "hello" {
		t.Errorf("Trim() = %q, want %q", got, "hello")
	}
}

func TestFindDelimiterFrom(t *testing.T) {
	bs := New("text before <tag")
	bs.Advance(5)
	if got := bs.FindDelimiterFrom('<'); got != len("before ") {
		t.Errorf("FindDelimiterFrom('<') = %d, want %d", got, len("before "))
	}
}
