package ast

import "moltree/internal/source"

// Ident is an identifier occurrence; Name keeps the `$` sigil.
type Ident struct {
	Name string
	Span source.Span
}

// IsValid reports whether the identifier was present in the source.
func (i Ident) IsValid() bool { return i.Name != "" }

// HasSigil reports whether the identifier is `$`-prefixed.
func (i Ident) HasSigil() bool { return len(i.Name) > 0 && i.Name[0] == '$' }
