package format

import (
	"context"
	"strings"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/parser"
	"moltree/internal/source"
)

// Source parses sf and returns its canonical rendering. A file with lex or
// parse errors is refused with the first error.
func Source(sf *source.File, opt Options) ([]byte, error) {
	builder, fid, err := parseOnce(sf, diag.NewBag(0))
	if err != nil {
		return nil, err
	}
	return FormatFile(sf, builder, fid, opt)
}

// CheckRoundTrip formats the file with the given options and re-parses it,
// ensuring that the exported trees (without spans) and comments are identical
// to the original.
func CheckRoundTrip(sf *source.File, opt Options, maxDiag int) (ok bool, msg string) {
	origBuilder, origFileID, err := parseOnce(sf, diag.NewBag(maxDiag))
	if err != nil {
		return false, "fmt-check: initial parse has errors: " + err.Error()
	}

	formatted, err := FormatFile(sf, origBuilder, origFileID, opt)
	if err != nil {
		return false, "fmt-check: formatter failed: " + err.Error()
	}

	fs2 := source.NewFileSetWithBase("")
	fid := fs2.AddVirtual(sf.Path, formatted)
	newBuilder, newFileID, err := parseOnce(fs2.Get(fid), diag.NewBag(maxDiag))
	if err != nil {
		return false, "fmt-check: reparse failed: " + err.Error()
	}

	if !SameShape(ast.Export(origBuilder, origFileID), ast.Export(newBuilder, newFileID)) {
		return false, "fmt-check: tree differs after round-trip"
	}
	return true, "fmt-check: OK"
}

func parseOnce(sf *source.File, bag *diag.Bag) (*ast.Builder, ast.FileID, error) {
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(sf, lexer.Options{Reporter: rep})
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(context.Background(), nil, lx, builder, parser.Options{Reporter: rep})
	return builder, res.File, res.Err
}

// SameShape compares two exported trees ignoring spans.
func SameShape(a, b *ast.SourceFile) bool {
	if len(a.Comments) != len(b.Comments) {
		return false
	}
	for i := range a.Comments {
		if strings.TrimRight(a.Comments[i].Text, " \t") != strings.TrimRight(b.Comments[i].Text, " \t") {
			return false
		}
	}
	return sameNodes(a.Statements, b.Statements)
}

func sameNodes(a, b []*ast.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Name != y.Name || x.Type != y.Type || x.HasBlock != y.HasBlock ||
			x.Op != y.Op || x.Prop != y.Prop {
			return false
		}
		if (x.Value == nil) != (y.Value == nil) || (x.Value != nil && *x.Value != *y.Value) {
			return false
		}
		if !sameNodes(x.Children, y.Children) {
			return false
		}
	}
	return true
}
