package lexer

import (
	"moltree/internal/source"
	"moltree/internal/token"
)

// Tokenize lexes the whole file. On success the slice ends with EOF, whose
// Leading holds the trailing trivia. On failure it returns the tokens that
// preceded the offending position together with a *Error.
func Tokenize(file *source.File, opts Options) ([]token.Token, error) {
	lx := New(file, opts)
	tokens := make([]token.Token, 0, len(file.Content)/4+1)
	for tok := range lx.All() {
		if tok.Kind == token.Invalid {
			break
		}
		tokens = append(tokens, tok)
	}
	if err := lx.Err(); err != nil {
		return tokens, err
	}
	return tokens, nil
}
