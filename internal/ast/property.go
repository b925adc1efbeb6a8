package ast

import "moltree/internal/source"

// PropOp is one of the four property operators.
type PropOp uint8

const (
	PropOpLeft  PropOp = iota // <=
	PropOpBoth                // <=>
	PropOpRight               // =>
	PropOpQuery               // ?
)

func (op PropOp) String() string {
	switch op {
	case PropOpLeft:
		return "<="
	case PropOpBoth:
		return "<=>"
	case PropOpRight:
		return "=>"
	case PropOpQuery:
		return "?"
	default:
		return "<invalid>"
	}
}

// Describe returns the human name of the operator.
func (op PropOp) Describe() string {
	switch op {
	case PropOpLeft:
		return "One-way binding"
	case PropOpBoth:
		return "Two-way binding"
	case PropOpRight:
		return "Backward binding"
	case PropOpQuery:
		return "Optional property"
	default:
		return ""
	}
}

type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueIdent
	ValueString
	ValueNumber
)

func (k ValueKind) String() string {
	switch k {
	case ValueIdent:
		return "ident"
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	default:
		return "none"
	}
}

// Value is the optional trailing operand of a property. Text is the raw
// source spelling; string literals keep quotes and escapes.
type Value struct {
	Kind ValueKind
	Text string
	Span source.Span
}

// IsPresent reports whether the property carried a value.
func (v Value) IsPresent() bool { return v.Kind != ValueNone }

// PropertyStmt is `op prop value?`.
type PropertyStmt struct {
	Op     PropOp
	OpSpan source.Span
	Prop   Ident // пустой, если после оператора нет идентификатора
	Value  Value
	Span   source.Span
}

func (s *Stmts) Property(id StmtID) (*PropertyStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtProperty {
		return nil, false
	}
	return s.Properties.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewProperty(op PropOp, opSpan source.Span, prop Ident, value Value, span source.Span) StmtID {
	payload := PayloadID(s.Properties.Allocate(PropertyStmt{
		Op:     op,
		OpSpan: opSpan,
		Prop:   prop,
		Value:  value,
		Span:   span,
	}))
	return s.New(StmtProperty, span, payload)
}
