package fuzztests

import (
	"strings"
	"testing"

	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/source"
	"moltree/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.view.tree", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		reporter := &diag.BagReporter{Bag: bag}
		lx := lexer.New(file, lexer.Options{Reporter: reporter})

		var (
			rebuilt strings.Builder
			prevEnd uint32
			last    token.Kind
		)
		for tok := range lx.All() {
			if tok.Span.Start < prevEnd || tok.Span.End < tok.Span.Start {
				t.Fatalf("token %v has span %d..%d after offset %d", tok.Kind, tok.Span.Start, tok.Span.End, prevEnd)
			}
			prevEnd = tok.Span.End
			last = tok.Kind
			if tok.Kind == token.Invalid {
				break
			}
			for _, tr := range tok.Leading {
				rebuilt.WriteString(tr.Text)
			}
			rebuilt.WriteString(tok.Text)
		}
		if last != token.EOF && last != token.Invalid {
			t.Fatalf("token stream ended with %v", last)
		}
		if last == token.Invalid {
			if lx.Err() == nil || bag.Len() == 0 {
				t.Fatalf("invalid token without a lex error")
			}
			return
		}
		// без ошибок лексер обязан быть без потерь
		if rebuilt.String() != string(input) {
			t.Fatalf("tokens do not reproduce input:\n got %q\nwant %q", rebuilt.String(), input)
		}
	})
}
