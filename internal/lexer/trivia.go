package lexer

import (
	"moltree/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - ' ', '\t', '\r', '\f', '\v' и Unicode-пробелы коалесцируются в один TriviaSpace
// - последовательные '\n' коалесцируются в один TriviaNewline
// - # ... до \n (без \n) -> TriviaComment
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)

		case b == '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaComment, start)

		case lx.atSpace():
			for lx.atSpace() {
				lx.bumpRune()
			}
			lx.pushTrivia(token.TriviaSpace, start)

		default:
			// нет больше trivia
			return
		}
	}
}

func (lx *Lexer) atSpace() bool {
	if lx.cursor.EOF() {
		return false
	}
	if b := lx.cursor.Peek(); isSpaceByte(b) {
		return true
	}
	r, _ := lx.peekRune()
	return isUnicodeSpace(r)
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}
