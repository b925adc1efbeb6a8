package format

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"moltree/internal/ast"
	"moltree/internal/source"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if !o.UseTabs && o.IndentWidth <= 0 {
		o.UseTabs = true
	}
	return o
}

// ParseIndent reads an indent setting: "tab" or a number of spaces.
func ParseIndent(s string) (Options, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "tab" || s == "tabs" {
		return Options{UseTabs: true}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 16 {
		return Options{}, fmt.Errorf("format: invalid indent %q: want \"tab\" or 1..16 spaces", s)
	}
	return Options{IndentWidth: n}, nil
}

type printer struct {
	builder  *ast.Builder
	file     *ast.File
	src      []byte
	comments []ast.Comment
	next     int    // индекс следующего непечатанного комментария
	lastEnd  uint32 // конец последнего напечатанного элемента в исходнике
	opened   bool   // последней напечатана строка с `{`
	writer   *Writer
}

// FormatFile renders file fid in canonical layout. The tree must come from
// an error-free parse of sf: a partial tree would drop source text.
func FormatFile(sf *source.File, b *ast.Builder, fid ast.FileID, opt Options) ([]byte, error) {
	if sf == nil {
		return nil, errors.New("format: nil source file")
	}
	if b == nil {
		return nil, errors.New("format: nil builder")
	}
	if !fid.IsValid() {
		return nil, errors.New("format: invalid file id")
	}
	file := b.Files.Get(fid)
	if file == nil {
		return nil, errors.New("format: missing ast file")
	}

	pr := printer{
		builder:  b,
		file:     file,
		src:      sf.Content,
		comments: file.Comments,
		writer:   NewWriter(opt, len(sf.Content)),
	}
	pr.printStmts(file.Stmts)
	pr.flushComments(sf.LenContent() + 1)
	pr.writer.Newline()
	return pr.writer.Bytes(), nil
}

func (p *printer) printStmts(ids []ast.StmtID) {
	for _, id := range ids {
		stmt := p.builder.Stmts.Get(id)
		if stmt == nil {
			continue
		}
		p.flushComments(stmt.Span.Start)
		p.separate(stmt.Span.Start)
		switch stmt.Kind {
		case ast.StmtDefinition:
			def, _ := p.builder.Stmts.Definition(id)
			p.printDefinition(def)
		case ast.StmtProperty:
			prop, _ := p.builder.Stmts.Property(id)
			p.printProperty(prop)
		}
	}
}

func (p *printer) printDefinition(def *ast.DefinitionStmt) {
	w := p.writer
	w.WriteString(def.Name.Name)
	w.Space()
	w.WriteString(def.Type.Name)
	if !def.HasBlock {
		p.endLine(def.Span.End)
		return
	}
	w.Space()
	w.WriteString("{")
	p.endLine(def.LBrace.End)

	p.opened = true

	w.IndentPush()
	p.printStmts(def.Children)
	p.flushComments(def.RBrace.Start)
	w.IndentPop()

	w.WriteString("}")
	p.opened = false
	p.endLine(def.RBrace.End)
}

func (p *printer) printProperty(prop *ast.PropertyStmt) {
	w := p.writer
	w.WriteString(prop.Op.String())
	w.Space()
	w.WriteString(prop.Prop.Name)
	if prop.Value.IsPresent() {
		w.Space()
		w.WriteString(prop.Value.Text)
	}
	p.endLine(prop.Span.End)
}

// endLine дописывает комментарий с той же строки исходника и закрывает строку.
func (p *printer) endLine(end uint32) {
	p.lastEnd = end
	if p.next < len(p.comments) {
		c := p.comments[p.next]
		if c.Span.Start >= end && !p.newlineBetween(end, c.Span.Start) {
			p.writer.Space()
			p.writer.WriteString(strings.TrimRight(c.Text, " \t"))
			p.lastEnd = c.Span.End
			p.next++
		}
	}
	p.writer.Newline()
}

// flushComments печатает комментарии на отдельных строках перед before.
func (p *printer) flushComments(before uint32) {
	for p.next < len(p.comments) && p.comments[p.next].Span.Start < before {
		c := p.comments[p.next]
		p.separate(c.Span.Start)
		p.writer.WriteString(strings.TrimRight(c.Text, " \t"))
		p.writer.Newline()
		p.lastEnd = c.Span.End
		p.next++
	}
}

// separate сохраняет одну пустую строку, если в исходнике их было больше нуля.
// Сразу после `{` и в начале файла пустые строки отбрасываются.
func (p *printer) separate(start uint32) {
	opened := p.opened
	p.opened = false
	if opened || len(p.writer.Bytes()) == 0 {
		return
	}
	if p.countNewlines(p.lastEnd, start) >= 2 {
		p.writer.BlankLine()
	}
}

func (p *printer) countNewlines(from, to uint32) int {
	if from >= to || int(to) > len(p.src) {
		return 0
	}
	return bytes.Count(p.src[from:to], []byte{'\n'})
}

func (p *printer) newlineBetween(from, to uint32) bool {
	return p.countNewlines(from, to) > 0
}
