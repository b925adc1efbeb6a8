package token_test

import (
	"testing"

	"moltree/internal/source"
	"moltree/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.StringLit, token.NumberLit} {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.LtEq, token.LBrace, token.EOF} {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsOperator(t *testing.T) {
	ops := []token.Kind{token.LtEq, token.LtEqGt, token.FatArrow, token.Question}
	for _, k := range ops {
		if !tok(k).IsOperator() {
			t.Fatalf("%v should be operator", k)
		}
	}
	non := []token.Kind{token.Ident, token.StringLit, token.NumberLit, token.LBrace, token.RBrace, token.EOF, token.Invalid}
	for _, k := range non {
		if tok(k).IsOperator() {
			t.Fatalf("%v must NOT be operator", k)
		}
	}
}

func TestIsValue(t *testing.T) {
	cases := map[token.Kind]bool{
		token.Ident:     true,
		token.StringLit: true,
		token.NumberLit: true,
		token.LtEq:      false,
		token.LBrace:    false,
		token.EOF:       false,
	}
	for k, want := range cases {
		if got := tok(k).IsValue(); got != want {
			t.Fatalf("IsValue(%v) = %v, want %v", k, got, want)
		}
	}
}

func TestHasSigil(t *testing.T) {
	if !(token.Token{Kind: token.Ident, Text: "$mol_view"}).HasSigil() {
		t.Fatalf("$mol_view should have sigil")
	}
	if (token.Token{Kind: token.Ident, Text: "title"}).HasSigil() {
		t.Fatalf("title must not have sigil")
	}
	if (token.Token{Kind: token.StringLit, Text: `"$x"`}).HasSigil() {
		t.Fatalf("string literal must not report sigil")
	}
}

func TestKindString(t *testing.T) {
	if got := token.LtEqGt.String(); got != "LtEqGt" {
		t.Fatalf("String() = %q", got)
	}
	if got := token.Kind(200).String(); got != "Kind(?)" {
		t.Fatalf("out of range String() = %q", got)
	}
}

func TestOperatorSpelling(t *testing.T) {
	for _, s := range []string{"<=>", "<=", "=>", "?"} {
		k, ok := token.LookupOperator(s)
		if !ok {
			t.Fatalf("LookupOperator(%q) = !ok", s)
		}
		if got := token.Spelling(k); got != s {
			t.Fatalf("Spelling(%v) = %q, want %q", k, got, s)
		}
	}
	if _, ok := token.LookupOperator("<"); ok {
		t.Fatalf("lone < must not be an operator")
	}
	if token.Spelling(token.Ident) != "" {
		t.Fatalf("identifier has no fixed spelling")
	}
}
