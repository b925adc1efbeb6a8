package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token, optionally `$`-sigiled.
	Ident
	// StringLit represents a double-quoted string literal (raw, escapes kept).
	StringLit
	// NumberLit represents a run of decimal digits.
	NumberLit

	// LtEq represents the one-way binding operator.
	LtEq // <=
	// LtEqGt represents the two-way binding operator.
	LtEqGt // <=>
	// FatArrow represents the backward binding operator.
	FatArrow // =>
	// Question represents the optional property operator.
	Question // ?

	// LBrace represents the left brace token.
	LBrace // {
	// RBrace represents the right brace token.
	RBrace // }
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	StringLit: "StringLit",
	NumberLit: "NumberLit",
	LtEq:      "LtEq",
	LtEqGt:    "LtEqGt",
	FatArrow:  "FatArrow",
	Question:  "Question",
	LBrace:    "LBrace",
	RBrace:    "RBrace",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsOperator reports whether k is one of the four property operators.
func (k Kind) IsOperator() bool {
	switch k {
	case LtEq, LtEqGt, FatArrow, Question:
		return true
	default:
		return false
	}
}

// IsValue reports whether k may stand as a property value.
func (k Kind) IsValue() bool {
	switch k {
	case Ident, StringLit, NumberLit:
		return true
	default:
		return false
	}
}
