package diagfmt

import (
	"context"
	"testing"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/parser"
	"moltree/internal/source"
)

type parsedFile struct {
	fs      *source.FileSet
	builder *ast.Builder
	file    ast.FileID
	bag     *diag.Bag
}

func parseVirtual(t *testing.T, path, input string) parsedFile {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(input))
	bag := diag.NewBag(0)
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(context.Background(), fs, lx, builder, parser.Options{Reporter: rep})
	return parsedFile{fs: fs, builder: builder, file: res.File, bag: bag}
}
