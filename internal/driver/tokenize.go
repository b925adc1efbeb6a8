package driver

import (
	"context"
	"strconv"

	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/source"
	"moltree/internal/token"
	"moltree/internal/trace"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize loads path and lexes it to EOF. A lex error ends up in Bag; the
// stream then holds the tokens before it, the Invalid token and EOF.
func Tokenize(ctx context.Context, path string, maxDiagnostics int) (*TokenizeResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "tokenize", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	// Создаём FileSet и загружаем файл
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	tokens := lexAll(file, bag)
	span.WithExtra("tokens", strconv.Itoa(len(tokens)))

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}

// lexAll собирает все токены до EOF включительно.
func lexAll(file *source.File, bag *diag.Bag) []token.Token {
	lx := lexer.New(file, lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
	tokens := make([]token.Token, 0, len(file.Content)/4+1)
	for tok := range lx.All() {
		tokens = append(tokens, tok)
	}
	return tokens
}
