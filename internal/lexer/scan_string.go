package lexer

import (
	"moltree/internal/diag"
	"moltree/internal/fix"
	"moltree/internal/token"
)

// "..." где внутри ([^"\\]|\\.)*. Escape не декодируем: Text — сырой литерал с кавычками.
// Переводы строк внутри литерала разрешены.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		case '\\':
			// '\' и любой следующий символ
			lx.cursor.Bump()
			lx.bumpRune()
		default:
			lx.cursor.Bump()
		}
	}
	// EOF без закрывающей кавычки
	sp := lx.cursor.SpanFrom(start)
	return lx.fail(diag.LexUnterminatedString, sp, fix.InsertText("insert closing `\"`", sp.EndPoint(), `"`))
}
