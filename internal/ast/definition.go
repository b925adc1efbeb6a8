package ast

import "moltree/internal/source"

// DefinitionStmt is `name type` optionally followed by a `{ ... }` block.
type DefinitionStmt struct {
	Name     Ident
	Type     Ident // пустой, если парсер остановился на имени
	HasBlock bool
	LBrace   source.Span
	RBrace   source.Span
	Closed   bool // false, если блок не закрыт (частичное дерево)
	Children []StmtID
	Span     source.Span
}

func (s *Stmts) Definition(id StmtID) (*DefinitionStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtDefinition {
		return nil, false
	}
	return s.Definitions.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewDefinition(name, typ Ident, span source.Span) StmtID {
	payload := PayloadID(s.Definitions.Allocate(DefinitionStmt{
		Name: name,
		Type: typ,
		Span: span,
	}))
	return s.New(StmtDefinition, span, payload)
}

// SetType fills the type identifier of a definition.
func (s *Stmts) SetType(id StmtID, typ Ident) {
	if def, ok := s.Definition(id); ok {
		def.Type = typ
	}
}

// OpenBlock marks the definition as having a block opened at lbrace.
func (s *Stmts) OpenBlock(id StmtID, lbrace source.Span) {
	if def, ok := s.Definition(id); ok {
		def.HasBlock = true
		def.LBrace = lbrace
		def.Children = make([]StmtID, 0)
	}
}

// CloseBlock records the closing brace of the definition's block.
func (s *Stmts) CloseBlock(id StmtID, rbrace source.Span) {
	if def, ok := s.Definition(id); ok {
		def.Closed = true
		def.RBrace = rbrace
	}
}

// AddChild appends child to the definition's block.
func (s *Stmts) AddChild(parent, child StmtID) {
	if def, ok := s.Definition(parent); ok {
		def.Children = append(def.Children, child)
	}
}
