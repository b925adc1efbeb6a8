package lexer

import (
	"moltree/internal/diag"
	"moltree/internal/token"
)

// Жадность: `<=>` пробуется раньше `<=`, иначе `<=>` распалось бы на `<=` и `>`.
// Одинокие `<` и `=` — InvalidCharacter.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{
			Kind: k,
			Span: sp,
			Text: string(lx.file.Content[sp.Start:sp.End]),
		}
	}

	switch {
	case lx.try3('<', '=', '>'):
		return emit(token.LtEqGt)
	case lx.try2('<', '='):
		return emit(token.LtEq)
	case lx.try2('=', '>'):
		return emit(token.FatArrow)
	case lx.cursor.Eat('?'):
		return emit(token.Question)
	case lx.cursor.Eat('{'):
		return emit(token.LBrace)
	case lx.cursor.Eat('}'):
		return emit(token.RBrace)
	}

	// ничего не подошло: одна руна как Invalid
	lx.bumpRune()
	return lx.fail(diag.LexInvalidCharacter, lx.cursor.SpanFrom(start))
}
