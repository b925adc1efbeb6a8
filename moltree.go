// Package moltree tokenizes and parses the moltree markup language: nested
// named definitions (`name type { ... }`) and operator-prefixed properties
// (`<= prop value`).
//
// The package is a thin facade over the internal lexer and parser. Every
// call works on its own copy of the input and shares no state, so parses of
// different inputs may run concurrently.
package moltree

import (
	"context"
	"errors"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/parser"
	"moltree/internal/source"
	"moltree/internal/token"
)

type (
	Token      = token.Token
	TokenKind  = token.Kind
	Trivia     = token.Trivia
	Span       = source.Span
	Diagnostic = diag.Diagnostic
	LexError   = lexer.Error
	ParseError = parser.Error
	SourceFile = ast.SourceFile
	Node       = ast.Node
)

// Sentinels for errors.Is on values returned by Tokenize and Check.
var (
	ErrInvalidCharacter   = lexer.ErrInvalidCharacter
	ErrUnterminatedString = lexer.ErrUnterminatedString
	ErrExpectedIdentifier = parser.ErrExpectedIdentifier
	ErrExpectedOperator   = parser.ErrExpectedOperator
	ErrUnclosedBlock      = parser.ErrUnclosedBlock
	ErrUnexpectedToken    = parser.ErrUnexpectedToken
)

const inputName = "<input>"

func newFile(text string) (*source.FileSet, *source.File) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(inputName, []byte(text))
	return fs, fs.Get(id)
}

// Tokenize splits text into tokens ending with EOF. Whitespace and comments
// are attached to the following token as Leading trivia, so concatenating
// trivia and token texts reproduces text exactly. On failure the returned
// error is a *LexError and the tokens cover the input before it.
func Tokenize(text string) ([]Token, error) {
	_, file := newFile(text)
	return lexer.Tokenize(file, lexer.Options{})
}

// Parse builds the syntax tree of text. Parsing stops at the first error;
// the tree then holds the statements built so far and the diagnostics
// describe the failure.
func Parse(text string) (*SourceFile, []Diagnostic) {
	tree, bag, _ := parse(text)
	return tree, bag.Items()
}

// Check reports the first lex or parse error of text, or nil.
func Check(text string) error {
	_, _, err := parse(text)
	return err
}

func parse(text string) (*SourceFile, *diag.Bag, error) {
	fs, file := newFile(text)
	bag := diag.NewBag(0)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{Files: 1})
	res := parser.ParseFile(context.Background(), fs, lx, builder, parser.Options{Reporter: reporter})
	tree := ast.Export(builder, res.File)
	return tree, bag, res.Err
}

// IsLexError reports whether err came from the lexer.
func IsLexError(err error) bool {
	var le *LexError
	return errors.As(err, &le)
}
