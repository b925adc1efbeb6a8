package parser

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/source"
)

type parsed struct {
	builder *ast.Builder
	file    ast.FileID
	bag     *diag.Bag
	err     error
	tree    *ast.SourceFile
}

func parseSource(t *testing.T, input string) parsed {
	return parseSourceWithOptions(t, input, Options{})
}

func parseSourceWithOptions(t *testing.T, input string, opts Options) parsed {
	t.Helper()

	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.view.tree", []byte(input))
	file := fs.Get(fileID)

	bag := diag.NewBag(100)
	reporter := &diag.BagReporter{Bag: bag}

	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{})

	if opts.MaxErrors == 0 {
		opts.MaxErrors = 100
	}
	opts.Reporter = reporter

	result := ParseFile(context.Background(), fs, lx, builder, opts)
	if result.Bag == nil {
		result.Bag = bag
	}
	return parsed{
		builder: builder,
		file:    result.File,
		bag:     result.Bag,
		err:     result.Err,
		tree:    ast.Export(builder, result.File),
	}
}

func mustParse(t *testing.T, input string) *ast.SourceFile {
	t.Helper()
	res := parseSource(t, input)
	if res.err != nil || res.bag.HasErrors() {
		t.Fatalf("unexpected errors for %q: %v; %s", input, res.err, diagnosticsSummary(res.bag))
	}
	return res.tree
}

func TestEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \n\t", "# just a comment\n"} {
		tree := mustParse(t, in)
		if len(tree.Statements) != 0 {
			t.Fatalf("%q: expected zero statements, got %d", in, len(tree.Statements))
		}
	}
}

func TestDefinitionWithBlock(t *testing.T) {
	tree := mustParse(t, "foo bar { <= x 1 }")
	if len(tree.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(tree.Statements))
	}
	def := tree.Statements[0]
	if def.Kind != ast.NodeDefinition || def.Name != "foo" || def.Type != "bar" || !def.HasBlock {
		t.Fatalf("definition = %+v", def)
	}
	if len(def.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(def.Children))
	}
	prop := def.Children[0]
	if prop.Kind != ast.NodeProperty || prop.Op != "<=" || prop.Prop != "x" {
		t.Fatalf("property = %+v", prop)
	}
	if prop.Value == nil || prop.Value.Kind != "number" || prop.Value.Text != "1" {
		t.Fatalf("value = %+v", prop.Value)
	}
	if def.Span != (ast.Range{Start: 0, End: 18}) {
		t.Fatalf("definition span = %+v", def.Span)
	}
}

func TestOptionalPropertyWithoutValue(t *testing.T) {
	tree := mustParse(t, "? enabled")
	if len(tree.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(tree.Statements))
	}
	prop := tree.Statements[0]
	if prop.Op != "?" || prop.Prop != "enabled" || prop.Value != nil {
		t.Fatalf("property = %+v", prop)
	}
}

func TestTwoWayBindingWithEscapedString(t *testing.T) {
	tree := mustParse(t, `<=> $ref "hello\"world"`)
	prop := tree.Statements[0]
	if prop.Op != "<=>" || prop.Prop != "$ref" {
		t.Fatalf("property = %+v", prop)
	}
	if prop.Value == nil || prop.Value.Kind != "string" || prop.Value.Text != `"hello\"world"` {
		t.Fatalf("value = %+v", prop.Value)
	}
}

func TestLeafDefinitionsAndNesting(t *testing.T) {
	src := `$my_app $mol_page {
	# header
	<= title "Hello"
	body $mol_list {
		=> selected current
		<= rows 3
	}
	? flag
}
other $mol_view
`
	tree := mustParse(t, src)
	if len(tree.Statements) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(tree.Statements))
	}
	app := tree.Statements[0]
	if len(app.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(app.Children))
	}
	body := app.Children[1]
	if body.Name != "body" || body.Type != "$mol_list" || len(body.Children) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Children[0].Op != "=>" || body.Children[0].Value.Text != "current" {
		t.Fatalf("backward binding = %+v", body.Children[0])
	}
	if leaf := tree.Statements[1]; leaf.HasBlock || len(leaf.Children) != 0 {
		t.Fatalf("leaf definition = %+v", leaf)
	}
	if len(tree.Comments) != 1 || tree.Comments[0].Text != "# header" {
		t.Fatalf("comments = %+v", tree.Comments)
	}
}

func TestValueIsOptionalAndDecidedByNextToken(t *testing.T) {
	tree := mustParse(t, "x y {\n\t? a\n\t<= b\n}")
	children := tree.Statements[0].Children
	if len(children) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(children))
	}
	for _, c := range children {
		if c.Value != nil {
			t.Fatalf("operator after a property must end it without a value: %+v", c)
		}
	}
}

func TestUnclosedBlock(t *testing.T) {
	res := parseSource(t, "a b { c d")
	if !errors.Is(res.err, ErrUnclosedBlock) {
		t.Fatalf("expected ErrUnclosedBlock, got %v", res.err)
	}
	var perr *Error
	if !errors.As(res.err, &perr) || perr.Span.Start != 9 {
		t.Fatalf("unclosed block must point at end of input, got %+v", perr)
	}
	items := res.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynUnclosedBlock {
		t.Fatalf("diagnostics: %s", diagnosticsSummary(res.bag))
	}
	d := items[0]
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != 4 {
		t.Fatalf("expected note at `{`, got %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "}" || d.Fixes[0].Edits[0].Span.Start != 9 {
		t.Fatalf("expected insert fix, got %+v", d.Fixes)
	}

	// частичное дерево сохраняется
	if len(res.tree.Statements) != 1 {
		t.Fatalf("partial tree lost: %+v", res.tree)
	}
	a := res.tree.Statements[0]
	if a.Name != "a" || len(a.Children) != 1 || a.Children[0].Name != "c" {
		t.Fatalf("partial definition = %+v", a)
	}
	def, _ := res.builder.Stmts.Definition(res.builder.Files.Get(res.file).Stmts[0])
	if def.Closed {
		t.Fatalf("unclosed block must not be marked closed")
	}
}

func TestNumberAtStatementStart(t *testing.T) {
	res := parseSource(t, "123abc")
	if !errors.Is(res.err, ErrExpectedOperator) {
		t.Fatalf("expected ErrExpectedOperator, got %v", res.err)
	}
	var perr *Error
	errors.As(res.err, &perr)
	if perr.Span.Start != 0 || perr.Span.End != 3 || perr.Found.Text != "123" {
		t.Fatalf("error = %+v", perr)
	}
	if len(res.tree.Statements) != 0 {
		t.Fatalf("no statement should be built")
	}
}

func TestOperatorAfterOperator(t *testing.T) {
	res := parseSource(t, "<= <=")
	if !errors.Is(res.err, ErrExpectedIdentifier) {
		t.Fatalf("expected ErrExpectedIdentifier, got %v", res.err)
	}
	var perr *Error
	errors.As(res.err, &perr)
	if perr.Span.Start != 3 || perr.Found.Text != "<=" {
		t.Fatalf("error = %+v", perr)
	}
}

func TestDefinitionNeedsType(t *testing.T) {
	tests := []struct {
		input string
		start uint32
	}{
		{"foo", 3},
		{"foo\n", 3},
		{"foo {", 4},
		{`foo "str"`, 4},
		{"a b { c }", 8},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := parseSource(t, tt.input)
			if !errors.Is(res.err, ErrExpectedIdentifier) {
				t.Fatalf("expected ErrExpectedIdentifier, got %v", res.err)
			}
			var perr *Error
			errors.As(res.err, &perr)
			if perr.Span.Start != tt.start {
				t.Fatalf("error at %d, want %d", perr.Span.Start, tt.start)
			}
		})
	}
}

func TestUnexpectedToken(t *testing.T) {
	for _, in := range []string{"}", "{", "a b }", "a b { } }"} {
		res := parseSource(t, in)
		if !errors.Is(res.err, ErrUnexpectedToken) {
			t.Fatalf("%q: expected ErrUnexpectedToken, got %v", in, res.err)
		}
		var perr *Error
		errors.As(res.err, &perr)
		if perr.Found.Text != "}" && perr.Found.Text != "{" {
			t.Fatalf("%q: found = %q", in, perr.Found.Text)
		}
	}
}

func TestLexErrorStopsParse(t *testing.T) {
	res := parseSource(t, "a b\n@ c d")
	if !errors.Is(res.err, lexer.ErrInvalidCharacter) {
		t.Fatalf("expected lex error, got %v", res.err)
	}
	items := res.bag.Items()
	if len(items) != 1 || items[0].Code != diag.LexInvalidCharacter {
		t.Fatalf("expected only the lex diagnostic: %s", diagnosticsSummary(res.bag))
	}
	if len(res.tree.Statements) != 1 {
		t.Fatalf("statements before the lex error must survive: %+v", res.tree.Statements)
	}
}

func TestFirstErrorOnly(t *testing.T) {
	res := parseSource(t, "} } 1 2")
	if res.bag.Len() != 1 {
		t.Fatalf("parser must stop at the first error: %s", diagnosticsSummary(res.bag))
	}
}

func TestIdempotence(t *testing.T) {
	src := "$app $mol_view {\n\tsub $mol_list\n\t<=> value \"v\"\n\t? x 1\n}\n# tail\n"
	first := parseSource(t, src)
	second := parseSource(t, src)
	if !reflect.DeepEqual(first.tree, second.tree) {
		t.Fatalf("parsing twice must yield identical trees")
	}
	if len(first.tree.Comments) != 1 || first.tree.Comments[0].Text != "# tail" {
		t.Fatalf("trailing comment lost: %+v", first.tree.Comments)
	}
}

func TestCanceledContext(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("c.view.tree", []byte("a b")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := ParseFile(ctx, fs, lexer.New(file, lexer.Options{}), ast.NewBuilder(ast.Hints{}), Options{})
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}
}

func TestMaxErrorsSuppressesReport(t *testing.T) {
	res := parseSourceWithOptions(t, "}", Options{MaxErrors: 1, CurrentErrors: 1})
	if res.err == nil {
		t.Fatalf("error must still be returned")
	}
	if res.bag.Len() != 0 {
		t.Fatalf("diagnostic over the limit must not be reported")
	}
}

func nestedDefinitions(depth int) string {
	return strings.Repeat("a b {", depth) + strings.Repeat("}", depth)
}

func TestNestingAtDepthLimit(t *testing.T) {
	mustParse(t, nestedDefinitions(DefaultMaxDepth))
}

func TestNestingPastDepthLimit(t *testing.T) {
	res := parseSource(t, nestedDefinitions(DefaultMaxDepth+1))
	if !errors.Is(res.err, ErrUnexpectedToken) {
		t.Fatalf("expected ErrUnexpectedToken, got %v", res.err)
	}
	var perr *Error
	errors.As(res.err, &perr)
	// последний `{` стоит на позиции 5*DefaultMaxDepth+4
	if want := uint32(5*DefaultMaxDepth + 4); perr.Span.Start != want || perr.Found.Text != "{" {
		t.Fatalf("error at %d (%q), want the `{` at %d", perr.Span.Start, perr.Found.Text, want)
	}
	items := res.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynUnexpectedToken || !strings.Contains(items[0].Message, "nesting too deep") {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(res.bag))
	}
	if len(res.tree.Statements) != 1 {
		t.Fatalf("partial tree must keep the outer definition: %d statements", len(res.tree.Statements))
	}
}

func TestMaxDepthOption(t *testing.T) {
	if res := parseSourceWithOptions(t, nestedDefinitions(2), Options{MaxDepth: 2}); res.err != nil {
		t.Fatalf("depth 2 within limit: %v", res.err)
	}
	res := parseSourceWithOptions(t, nestedDefinitions(3), Options{MaxDepth: 2})
	if !errors.Is(res.err, ErrUnexpectedToken) {
		t.Fatalf("expected ErrUnexpectedToken, got %v", res.err)
	}
}
