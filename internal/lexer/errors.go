package lexer

import (
	"errors"
	"fmt"

	"moltree/internal/diag"
	"moltree/internal/source"
	"moltree/internal/token"
)

var (
	// ErrInvalidCharacter: no token or trivia rule matches the current position.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrUnterminatedString: a string literal reaches end of input without a closing quote.
	ErrUnterminatedString = errors.New("unterminated string")
)

// Error is the lex failure that stopped tokenization.
type Error struct {
	Code  diag.Code
	Span  source.Span
	Found string // offending text: one character, or the unterminated literal
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d", e.message(), e.Span.Start)
}

func (e *Error) Unwrap() error {
	switch e.Code {
	case diag.LexInvalidCharacter:
		return ErrInvalidCharacter
	case diag.LexUnterminatedString:
		return ErrUnterminatedString
	default:
		return nil
	}
}

func (e *Error) message() string {
	switch e.Code {
	case diag.LexInvalidCharacter:
		return fmt.Sprintf("invalid character %q", e.Found)
	case diag.LexUnterminatedString:
		return "unterminated string literal"
	default:
		return e.Code.Title()
	}
}

// fail records the first lex error, reports it and stops the lexer:
// every following call to Next returns EOF.
func (lx *Lexer) fail(code diag.Code, sp source.Span, fixes ...diag.Fix) token.Token {
	text := string(lx.file.Content[sp.Start:sp.End])
	lx.err = &Error{Code: code, Span: sp, Found: text}
	lx.report(code, sp, lx.err.message(), fixes...)
	lx.cursor.SkipToEnd()
	return token.Token{Kind: token.Invalid, Span: sp, Text: text}
}
