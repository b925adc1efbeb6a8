package lexer

import (
	"moltree/internal/diag"
	"moltree/internal/token"
)

// scanIdent сканирует \$?[A-Za-z_][A-Za-z0-9_]*. Сигил `$` входит в текст.
// Одинокий `$` — InvalidCharacter.
func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()
	if lx.cursor.Eat('$') && !isIdentStartByte(lx.cursor.Peek()) {
		return lx.fail(diag.LexInvalidCharacter, lx.cursor.SpanFrom(start))
	}
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Ident, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
