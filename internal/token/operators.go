package token

// operators ordered longest first: `<=` is a prefix of `<=>`.
var operators = []struct {
	text string
	kind Kind
}{
	{"<=>", LtEqGt},
	{"<=", LtEq},
	{"=>", FatArrow},
	{"?", Question},
}

// LookupOperator maps an operator spelling to its kind.
func LookupOperator(text string) (Kind, bool) {
	for _, op := range operators {
		if op.text == text {
			return op.kind, true
		}
	}
	return Invalid, false
}

// Spelling returns the fixed source text for operator and brace kinds,
// and "" for kinds whose text varies.
func Spelling(k Kind) string {
	switch k {
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	}
	for _, op := range operators {
		if op.kind == k {
			return op.text
		}
	}
	return ""
}
