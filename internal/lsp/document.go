package lsp

import (
	"context"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/driver"
	"moltree/internal/lexer"
	"moltree/internal/source"
	"moltree/internal/token"
)

// document is the analysed state of one open buffer. Offsets in every span
// refer to text exactly as the editor sent it.
type document struct {
	uri     string
	path    string
	version int
	text    string

	file    *source.File
	tokens  []token.Token // значимые токены и EOF, без ошибочных
	builder *ast.Builder
	astFile ast.FileID
	bag     *diag.Bag
	err     error
}

func analyzeDocument(ctx context.Context, uri string, version int, text string, maxDiagnostics int) (*document, error) {
	path := uriToPath(uri)
	name := path
	if name == "" {
		name = uri
	}
	res, err := driver.ParseText(ctx, name, []byte(text), maxDiagnostics)
	if err != nil {
		return nil, err
	}
	doc := &document{
		uri:     uri,
		path:    path,
		version: version,
		text:    text,
		file:    res.File,
		builder: res.Builder,
		astFile: res.FileID,
		bag:     res.Bag,
		err:     res.Err,
	}
	doc.tokens = lexResuming(res.File)
	return doc, nil
}

// lexResuming lexes file without a reporter (the errors are already in the
// bag) and restarts after every invalid token, so completion and hover keep
// working past a lexical error.
func lexResuming(file *source.File) []token.Token {
	lx := lexer.New(file, lexer.Options{})
	tokens := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		if tok.Kind != token.Invalid {
			tokens = append(tokens, tok)
			if tok.Kind == token.EOF {
				return tokens
			}
			continue
		}
		if tok.Span.End <= tok.Span.Start {
			// сдвинуться некуда, закрываем поток
			return append(tokens, token.Token{Kind: token.EOF, Span: tok.Span})
		}
		lx.Restore(lexer.StateAt(tok.Span.End))
	}
}

func (d *document) offsetAt(pos position) uint32 {
	return offsetForPositionInFile(d.file, pos)
}

func (d *document) rangeOf(sp source.Span) lspRange {
	return rangeForSpan(d.file, sp)
}

// tokenAt returns the significant token touching off. A cursor right after
// an identifier still counts as on it.
func (d *document) tokenAt(off uint32) (token.Token, bool) {
	for _, tok := range d.tokens {
		if tok.Kind == token.EOF {
			break
		}
		if tok.Span.Start <= off && off <= tok.Span.End {
			return tok, true
		}
		if tok.Span.Start > off {
			break
		}
	}
	return token.Token{}, false
}

// stmtPath returns the chain of statements whose spans contain off, from
// the top level inward.
func (d *document) stmtPath(off uint32) []ast.StmtID {
	var chain []ast.StmtID
	ast.Walk(d.builder, d.astFile, func(id, parent ast.StmtID, depth int) bool {
		stmt := d.builder.Stmts.Get(id)
		if stmt == nil || off < stmt.Span.Start || off > stmt.Span.End {
			return false
		}
		chain = append(chain[:depth], id)
		return true
	})
	return chain
}

// component returns the top-level definition name enclosing off.
func (d *document) component(off uint32) string {
	chain := d.stmtPath(off)
	if len(chain) == 0 {
		return ""
	}
	if def, ok := d.builder.Stmts.Definition(chain[0]); ok {
		return def.Name.Name
	}
	return ""
}
