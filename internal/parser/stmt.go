package parser

import (
	"fmt"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/fix"
	"moltree/internal/token"
)

// parseStatement выбирает разбор по первому токену:
// оператор → property, идентификатор → definition, иначе ошибка.
// Возвращённый StmtID валиден, если хотя бы первый токен был съеден,
// даже когда ok == false: вызывающий прикрепляет частичный узел.
func (p *Parser) parseStatement() (ast.StmtID, bool) {
	tok := p.lx.Peek()
	switch {
	case tok.Kind.IsOperator():
		return p.parseProperty()
	case tok.Kind == token.Ident:
		return p.parseDefinition()
	case p.stopOnLexError():
		return ast.NoStmtID, false
	case p.at_or(token.StringLit, token.NumberLit):
		p.fail(diag.SynExpectOperator, tok.Span, tok,
			fmt.Sprintf("expected property operator (`<=`, `<=>`, `=>`, `?`) or definition name, found %s", describe(tok))).Emit()
		return ast.NoStmtID, false
	default:
		p.fail(diag.SynUnexpectedToken, tok.Span, tok, fmt.Sprintf("unexpected %s", describe(tok))).Emit()
		return ast.NoStmtID, false
	}
}

// definition := ident ident ('{' statement* '}')?
func (p *Parser) parseDefinition() (ast.StmtID, bool) {
	stmts := p.arenas.Stmts
	nameTok := p.advance()
	id := stmts.NewDefinition(ast.Ident{Name: nameTok.Text, Span: nameTok.Span}, ast.Ident{}, nameTok.Span)

	typeTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier,
		fmt.Sprintf("expected type identifier after `%s`", nameTok.Text))
	if !ok {
		return id, false
	}
	stmts.SetType(id, ast.Ident{Name: typeTok.Text, Span: typeTok.Span})
	stmts.SetSpan(id, nameTok.Span.Cover(typeTok.Span))

	if !p.at(token.LBrace) {
		return id, true
	}
	if p.depth >= p.opts.maxDepth() {
		tok := p.lx.Peek()
		p.fail(diag.SynUnexpectedToken, tok.Span, tok,
			fmt.Sprintf("nesting too deep: block of `%s` exceeds %d levels", nameTok.Text, p.opts.maxDepth())).Emit()
		return id, false
	}
	return id, p.parseBlock(id, nameTok)
}

// parseBlock разбирает '{' statement* '}' определения id.
func (p *Parser) parseBlock(id ast.StmtID, nameTok token.Token) bool {
	stmts := p.arenas.Stmts
	lbrace := p.advance()
	stmts.OpenBlock(id, lbrace.Span)
	p.depth++
	defer func() { p.depth-- }()

	for {
		switch {
		case p.at(token.RBrace):
			rbrace := p.advance()
			stmts.CloseBlock(id, rbrace.Span)
			stmts.SetSpan(id, nameTok.Span.Cover(rbrace.Span))
			return true

		case p.at(token.EOF):
			eof := p.lx.Peek()
			p.fail(diag.SynUnclosedBlock, eof.Span, eof,
				fmt.Sprintf("unclosed block of `%s`: expected `}` before end of input", nameTok.Text)).
				WithNote(lbrace.Span, "block opened here").
				WithFixSuggestion(fix.InsertText("insert `}`", eof.Span.At(eof.Span.Start), "}")).
				Emit()
			stmts.SetSpan(id, nameTok.Span.Cover(p.lastSpan))
			return false
		}

		child, ok := p.parseStatement()
		if child.IsValid() {
			stmts.AddChild(id, child)
		}
		if !ok {
			stmts.SetSpan(id, nameTok.Span.Cover(p.lastSpan))
			return false
		}
	}
}

// property := ('<=' | '<=>' | '=>' | '?') ident (ident | string | number)?
func (p *Parser) parseProperty() (ast.StmtID, bool) {
	opTok := p.advance()
	op := propOp(opTok.Kind)

	propTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier,
		fmt.Sprintf("expected property name after `%s`", opTok.Text))
	if !ok {
		id := p.arenas.Stmts.NewProperty(op, opTok.Span, ast.Ident{}, ast.Value{}, opTok.Span)
		return id, false
	}
	prop := ast.Ident{Name: propTok.Text, Span: propTok.Span}
	span := opTok.Span.Cover(propTok.Span)

	var value ast.Value
	if p.lx.Peek().Kind.IsValue() {
		valTok := p.advance()
		value = ast.Value{Kind: valueKind(valTok.Kind), Text: valTok.Text, Span: valTok.Span}
		span = span.Cover(valTok.Span)
	}
	return p.arenas.Stmts.NewProperty(op, opTok.Span, prop, value, span), true
}

func propOp(k token.Kind) ast.PropOp {
	switch k {
	case token.LtEqGt:
		return ast.PropOpBoth
	case token.FatArrow:
		return ast.PropOpRight
	case token.Question:
		return ast.PropOpQuery
	default:
		return ast.PropOpLeft
	}
}

func valueKind(k token.Kind) ast.ValueKind {
	switch k {
	case token.Ident:
		return ast.ValueIdent
	case token.StringLit:
		return ast.ValueString
	case token.NumberLit:
		return ast.ValueNumber
	default:
		return ast.ValueNone
	}
}
