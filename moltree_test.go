package moltree_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"moltree"
	"moltree/internal/token"
)

func TestTokenizeScenario(t *testing.T) {
	toks, err := moltree.Tokenize("123abc")
	if err != nil {
		t.Fatalf("lexer must accept 123abc: %v", err)
	}
	want := []token.Kind{token.NumberLit, token.Ident, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("tokens = %v", toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d = %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[0].Text != "123" {
		t.Fatalf("number text = %q", toks[0].Text)
	}
}

func TestTokenizeError(t *testing.T) {
	toks, err := moltree.Tokenize("a ~")
	if !errors.Is(err, moltree.ErrInvalidCharacter) || !moltree.IsLexError(err) {
		t.Fatalf("expected invalid character, got %v", err)
	}
	if len(toks) != 1 || toks[0].Text != "a" {
		t.Fatalf("tokens before the error: %v", toks)
	}
}

func TestParseScenarios(t *testing.T) {
	tree, diags := moltree.Parse("foo bar { <= x 1 }")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	def := tree.Statements[0]
	if def.Name != "foo" || def.Type != "bar" || def.Children[0].Value.Text != "1" {
		t.Fatalf("tree = %+v", def)
	}

	tree, diags = moltree.Parse("? enabled")
	if len(diags) != 0 || tree.Statements[0].Prop != "enabled" || tree.Statements[0].Value != nil {
		t.Fatalf("optional property: %+v %v", tree.Statements[0], diags)
	}

	tree, diags = moltree.Parse(`<=> $ref "hello\"world"`)
	if len(diags) != 0 || tree.Statements[0].Value.Text != `"hello\"world"` {
		t.Fatalf("two-way binding: %+v %v", tree.Statements[0], diags)
	}
}

func TestParseUnclosedBlockKeepsPartialTree(t *testing.T) {
	tree, diags := moltree.Parse("a b { c d")
	if len(diags) != 1 || diags[0].Code.ID() != "SYN2002" {
		t.Fatalf("diagnostics = %v", diags)
	}
	if len(tree.Statements) != 1 || len(tree.Statements[0].Children) != 1 {
		t.Fatalf("partial tree = %+v", tree)
	}
	if _, err := moltree.Tokenize("a b { c d"); err != nil {
		t.Fatalf("lexer reports no error here: %v", err)
	}
}

func TestCheck(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"", nil},
		{"a b", nil},
		{"123abc", moltree.ErrExpectedOperator},
		{"<= <=", moltree.ErrExpectedIdentifier},
		{"a b {", moltree.ErrUnclosedBlock},
		{"}", moltree.ErrUnexpectedToken},
		{`"x`, moltree.ErrUnterminatedString},
	}
	for _, c := range cases {
		err := moltree.Check(c.in)
		if c.want == nil {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.in, err)
			}
			continue
		}
		if !errors.Is(err, c.want) {
			t.Fatalf("%q: got %v, want %v", c.in, err, c.want)
		}
	}
}

func TestConcurrentParses(t *testing.T) {
	var wg sync.WaitGroup
	inputs := []string{"a b { ? c }", "x y", "$p $q { <=> r s }"}
	for i := range 24 {
		wg.Add(1)
		go func(in string) {
			defer wg.Done()
			if err := moltree.Check(in); err != nil {
				t.Errorf("%q: %v", in, err)
			}
		}(inputs[i%len(inputs)])
	}
	wg.Wait()
}

func TestRoundTripThroughTrivia(t *testing.T) {
	src := "# app\n$a $b {\n\t<= c \"d\" # tail\n}\n"
	toks, err := moltree.Tokenize(src)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for _, tok := range toks {
		for _, tv := range tok.Leading {
			b.WriteString(tv.Text)
		}
		b.WriteString(tok.Text)
	}
	if b.String() != src {
		t.Fatalf("round-trip = %q", b.String())
	}
}
