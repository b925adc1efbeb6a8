package driver

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/parser"
	"moltree/internal/source"
	"moltree/internal/trace"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
	// Err is the first lex or parse error; the tree is partial when set.
	Err error
}

// Parse loads filePath and parses it. Syntax errors are not returned as err:
// they are in Bag and Err.
func Parse(ctx context.Context, filePath string, maxDiagnostics int) (*ParseResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	builder, astFile, parseErr, err := parseFile(span.Context(ctx), fs, file, bag, maxDiagnostics)
	if err != nil {
		return nil, err
	}

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  astFile,
		Bag:     bag,
		Err:     parseErr,
	}, nil
}

// parseFile runs lexer and parser over file with a fresh builder. The
// returned err is reserved for misuse (bad limits); syntax errors come back
// as parseErr.
func parseFile(ctx context.Context, fs *source.FileSet, file *source.File, bag *diag.Bag, maxDiagnostics int) (builder *ast.Builder, fid ast.FileID, parseErr, err error) {
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("max diagnostics: %w", err)
	}

	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder = ast.NewBuilder(ast.Hints{Files: 1})

	opts := parser.Options{
		Reporter:  reporter,
		MaxErrors: maxErrors,
		MaxDepth:  parser.DefaultMaxDepth,
	}
	result := parser.ParseFile(ctx, fs, lx, builder, opts)
	return builder, result.File, result.Err, nil
}

// ParseText parses an in-memory buffer registered under name. The content
// is not normalized, so offsets match the caller's buffer.
func ParseText(ctx context.Context, name string, text []byte, maxDiagnostics int) (*ParseResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse_text", trace.CurrentSpan(ctx).SpanID).
		WithExtra("name", name)
	defer span.End("")

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(name, text))

	bag := diag.NewBag(maxDiagnostics)
	builder, astFile, parseErr, err := parseFile(span.Context(ctx), fs, file, bag, maxDiagnostics)
	if err != nil {
		return nil, err
	}
	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  astFile,
		Bag:     bag,
		Err:     parseErr,
	}, nil
}
