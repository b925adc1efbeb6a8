package parser

import (
	"fmt"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/source"
	"moltree/internal/token"
)

// advance — съедает следующий токен, обновляет lastSpan и складывает
// комментарии из leading trivia в боковой канал файла.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	for _, tv := range tok.Leading {
		if tv.Kind == token.TriviaComment {
			p.arenas.PushComment(p.file, ast.Comment{Span: tv.Span, Text: tv.Text})
		}
	}
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan — возвращает лучший span для диагностики.
// На EOF указываем сразу за последним съеденным токеном, а не в конец хвостовых trivia.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.lastSpan.EndPoint()
	}
	return peek.Span
}

// expect — ожидаем конкретный токен. Если нет — фиксируем ошибку и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	if p.stopOnLexError() {
		return token.Token{Kind: token.Invalid}, false
	}
	diagSpan := p.getDiagnosticSpan()
	found := p.lx.Peek()
	p.fail(code, diagSpan, found, fmt.Sprintf("%s, found %s", msg, describe(found))).Emit()
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: found.Text}, false
}

// stopOnLexError останавливает разбор, если лексер упал: диагностику он уже отправил сам.
func (p *Parser) stopOnLexError() bool {
	if !p.at(token.Invalid) {
		return false
	}
	if err := p.lx.Err(); err != nil {
		p.failure = err
	} else {
		p.failure = &Error{Code: diag.SynUnexpectedToken, Span: p.lx.Peek().Span, Found: p.lx.Peek()}
	}
	return true
}

// fail записывает первую ошибку разбора и репортит её.
func (p *Parser) fail(code diag.Code, sp source.Span, found token.Token, msg string) *diag.ReportBuilder {
	e := &Error{Code: code, Span: sp, Found: found, Msg: msg}
	if p.failure == nil {
		p.failure = e
	}
	p.opts.CurrentErrors++
	if p.opts.Reporter == nil || (p.opts.MaxErrors > 0 && p.opts.CurrentErrors > p.opts.MaxErrors) {
		return nil
	}
	return diag.ReportError(p.opts.Reporter, code, sp, msg)
}

// describe — человекочитаемое имя токена для сообщений.
func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.Ident:
		return fmt.Sprintf("identifier `%s`", tok.Text)
	case token.StringLit:
		return fmt.Sprintf("string %s", tok.Text)
	case token.NumberLit:
		return fmt.Sprintf("number `%s`", tok.Text)
	case token.Invalid:
		return "invalid token"
	default:
		return fmt.Sprintf("`%s`", tok.Text)
	}
}
