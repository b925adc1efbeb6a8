package ast

import (
	"moltree/internal/source"
)

type StmtKind uint8

const (
	StmtDefinition StmtKind = iota
	StmtProperty
)

func (k StmtKind) String() string {
	switch k {
	case StmtDefinition:
		return "definition"
	case StmtProperty:
		return "property"
	default:
		return "unknown"
	}
}

// Stmt is a tagged statement; Payload indexes the arena matching Kind.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type Stmts struct {
	Arena       *Arena[Stmt]
	Definitions *Arena[DefinitionStmt]
	Properties  *Arena[PropertyStmt]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{
		Arena:       NewArena[Stmt](capHint),
		Definitions: NewArena[DefinitionStmt](capHint / 2),
		Properties:  NewArena[PropertyStmt](capHint / 2),
	}
}

func (s *Stmts) New(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// SetSpan updates the statement span and the payload span together.
func (s *Stmts) SetSpan(id StmtID, span source.Span) {
	stmt := s.Get(id)
	if stmt == nil {
		return
	}
	stmt.Span = span
	switch stmt.Kind {
	case StmtDefinition:
		s.Definitions.Get(uint32(stmt.Payload)).Span = span
	case StmtProperty:
		s.Properties.Get(uint32(stmt.Payload)).Span = span
	}
}
