package tokenizer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/shapestone/shape-xmltok"
)

// collectAll drains a Tokenizer, returning every token it produced and
// the terminal error, if any. Grounded in the teacher's table-driven
// internal/tokenizer/tokenizer_test.go style, with google/go-cmp swapped
// in for structural comparison the way muktihari-xmltokenizer and
// Goodwine-go-xml compare their own token slices.
func collectAll(t *testing.T, tk *tokenizer.Tokenizer) ([]tokenizer.Token, error) {
	t.Helper()
	var tokens []tokenizer.Token
	for {
		tok, err, ok := tk.Next()
		if err != nil {
			return tokens, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

var cmpOpts = cmp.Options{
	cmpopts.IgnoreFields(tokenizer.Token{}, "Span"),
	cmp.Comparer(func(a, b tokenizer.Span) bool { return a.Equal(b) }),
}

func TestScenarioMinimalDocument(t *testing.T) {
	text := `<?xml version="1.0"?><root/>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []tokenizer.Token{
		{Kind: tokenizer.TokenDeclaration, Version: tokenizer.NewSpan(text, 15, 18)},
		{Kind: tokenizer.TokenElementStart, Prefix: tokenizer.NewSpan(text, 22, 22), Local: tokenizer.NewSpan(text, 22, 26)},
		{Kind: tokenizer.TokenElementEnd, ElementEnd: tokenizer.ElementEnd{Kind: tokenizer.ElementEndEmpty}},
	}
	if diff := cmp.Diff(want, tokens, cmpOpts...); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioDeclarationWithEncodingAndStandalone(t *testing.T) {
	text := `<?xml version="1.1" encoding="UTF-8" standalone="yes"?><r/>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) == 0 || tokens[0].Kind != tokenizer.TokenDeclaration {
		t.Fatalf("tokens[0] = %+v, want TokenDeclaration", tokens)
	}
	decl := tokens[0]
	if decl.Version.Str() != "1.1" || decl.Encoding.Str() != "UTF-8" || decl.Standalone.Str() != "yes" {
		t.Errorf("decl = %+v, want version 1.1 encoding UTF-8 standalone yes", decl)
	}
}

func TestScenarioCommentAndPIBeforeRoot(t *testing.T) {
	text := `<?xml version="1.0"?><!-- hi --><?target data?><root/>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []tokenizer.TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []tokenizer.TokenKind{
		tokenizer.TokenDeclaration, tokenizer.TokenComment, tokenizer.TokenProcessingInstruction,
		tokenizer.TokenElementStart, tokenizer.TokenElementEnd,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if tokens[1].Comment.Str() != " hi " {
		t.Errorf("Comment = %q, want %q", tokens[1].Comment.Str(), " hi ")
	}
	if tokens[2].Target.Str() != "target" || tokens[2].PIContent.Str() != "data" {
		t.Errorf("PI = %+v, want target=target content=data", tokens[2])
	}
}

func TestScenarioDoctypeWithInternalSubset(t *testing.T) {
	text := `<?xml version="1.0"?><!DOCTYPE root [<!ENTITY foo "bar">]><root/>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []tokenizer.TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []tokenizer.TokenKind{
		tokenizer.TokenDeclaration, tokenizer.TokenDtdStart, tokenizer.TokenEntityDecl, tokenizer.TokenDtdEnd,
		tokenizer.TokenElementStart, tokenizer.TokenElementEnd,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	entity := tokens[2]
	if entity.Name.Str() != "foo" || entity.EntityDef.EntityValue.Str() != "bar" {
		t.Errorf("entity = %+v, want name=foo value=bar", entity)
	}
}

func TestScenarioDoctypeWithExternalID(t *testing.T) {
	text := `<!DOCTYPE root SYSTEM "root.dtd"><root/>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != tokenizer.TokenEmptyDtd {
		t.Fatalf("tokens[0].Kind = %v, want TokenEmptyDtd", tokens[0].Kind)
	}
	ext := tokens[0].ExternalID
	if ext.Kind != tokenizer.ExternalIDSystem || ext.System.Str() != "root.dtd" {
		t.Errorf("ExternalID = %+v, want SYSTEM root.dtd", ext)
	}
}

func TestScenarioElementsWithAttributesAndNesting(t *testing.T) {
	text := `<root a="1" b:c="2"><child/></root>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []tokenizer.TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []tokenizer.TokenKind{
		tokenizer.TokenElementStart, tokenizer.TokenAttribute, tokenizer.TokenAttribute, tokenizer.TokenElementEnd,
		tokenizer.TokenElementStart, tokenizer.TokenElementEnd,
		tokenizer.TokenElementEnd,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	attrB := tokens[2]
	if attrB.Prefix.Str() != "b" || attrB.Local.Str() != "c" || attrB.AttrValue.Str() != "2" {
		t.Errorf("attrB = %+v, want prefix=b local=c value=2", attrB)
	}

	closeTok := tokens[len(tokens)-1]
	if closeTok.ElementEnd.Kind != tokenizer.ElementEndClose || closeTok.ElementEnd.CloseLocal.Str() != "root" {
		t.Errorf("closeTok = %+v, want Close root", closeTok)
	}
}

func TestScenarioCDataSection(t *testing.T) {
	text := `<root><![CDATA[<not a tag> && ]]]></root>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cdata tokenizer.Token
	found := false
	for _, tok := range tokens {
		if tok.Kind == tokenizer.TokenCdata {
			cdata = tok
			found = true
		}
	}
	if !found {
		t.Fatal("no TokenCdata produced")
	}
	if cdata.Cdata.Str() != "<not a tag> && ]" {
		t.Errorf("Cdata = %q, want %q", cdata.Cdata.Str(), "<not a tag> && ]")
	}
}

func TestScenarioTextWithPredefinedEntitiesIsNotWhitespace(t *testing.T) {
	text := `<root>a &amp; b</root>`
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var textTok tokenizer.Token
	found := false
	for _, tok := range tokens {
		if tok.Kind == tokenizer.TokenText {
			textTok = tok
			found = true
		}
	}
	if !found {
		t.Fatal("no TokenText produced")
	}
	if textTok.Text.Str() != "a &amp; b" {
		t.Errorf("Text = %q, want %q", textTok.Text.Str(), "a &amp; b")
	}
}

func TestScenarioWhitespaceOnlyTextIsWhitespaceToken(t *testing.T) {
	text := "<root>\n  \t</root>"
	tokens, err := collectAll(t, tokenizer.New(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, tok := range tokens {
		if tok.Kind == tokenizer.TokenWhitespaces {
			found = true
		}
		if tok.Kind == tokenizer.TokenText {
			t.Errorf("expected Whitespaces, got a Text token: %+v", tok)
		}
	}
	if !found {
		t.Fatal("no TokenWhitespaces produced")
	}
}

func TestScenarioFragmentWithSiblingRoots(t *testing.T) {
	text := `<a/><b>x</b>`
	tokens, err := collectAll(t, tokenizer.NewFragment(text, 0, len(text)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []tokenizer.TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []tokenizer.TokenKind{
		tokenizer.TokenElementStart, tokenizer.TokenElementEnd,
		tokenizer.TokenElementStart, tokenizer.TokenElementEnd,
		tokenizer.TokenText,
		tokenizer.TokenElementEnd,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioTextWithUnescapedCDataCloseIsInvalid(t *testing.T) {
	text := `<root>a]]>b</root>`
	_, err := collectAll(t, tokenizer.New(text))
	if err == nil {
		t.Fatal("expected an error for ']]>' appearing directly in character data")
	}
}
