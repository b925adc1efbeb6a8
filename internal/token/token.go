package token

import (
	"moltree/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsOperator reports whether the token is a property operator.
func (t Token) IsOperator() bool { return t.Kind.IsOperator() }

// IsValue reports whether the token can be a property value.
func (t Token) IsValue() bool { return t.Kind.IsValue() }

// IsLiteral reports whether the token is a string or number literal.
func (t Token) IsLiteral() bool {
	return t.Kind == StringLit || t.Kind == NumberLit
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// HasSigil reports whether an identifier token starts with `$`.
func (t Token) HasSigil() bool {
	return t.Kind == Ident && len(t.Text) > 0 && t.Text[0] == '$'
}
