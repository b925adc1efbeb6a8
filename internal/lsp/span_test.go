package lsp

import (
	"strings"
	"testing"
)

func TestUTF16SpanMapping(t *testing.T) {
	src := strings.Join([]string{
		"$app $mol_view {",
		"\t<= label \"é🙂\" <= note x",
		"}",
		"",
	}, "\n")
	doc := analyzeText(t, src)
	if doc.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", doc.bag.Items())
	}

	occurrence := strings.Index(src, "note")
	expectStart := positionForOffsetUTF16(src, occurrence)
	expectEnd := positionForOffsetUTF16(src, occurrence+len("note"))

	h := buildHover(doc, newWorkspaceIndex(), expectStart)
	if h == nil || h.Range == nil {
		t.Fatal("expected hover range")
	}
	if h.Range.Start != expectStart || h.Range.End != expectEnd {
		t.Fatalf("unexpected hover range: %+v", *h.Range)
	}
}

func TestOffsetPositionRoundTrip(t *testing.T) {
	src := "$a $b {\n\t<= t \"ж🙂\"\n}\n"
	doc := analyzeText(t, src)
	for off := range src {
		pos := positionForOffsetInFile(doc.file, uint32(off))
		if want := positionForOffsetUTF16(src, off); pos != want {
			t.Fatalf("offset %d: position %+v, want %+v", off, pos, want)
		}
		if back := offsetForPositionInFile(doc.file, pos); int(back) != off {
			t.Fatalf("offset %d: round trip gave %d", off, back)
		}
		if byText := offsetForPosition(src, pos); byText != off {
			t.Fatalf("offset %d: text mapping gave %d", off, byText)
		}
	}
}

func TestApplyChanges(t *testing.T) {
	text := "$a $b {\n\t<= x 1\n}\n"
	got := applyChanges(text, []textDocumentContentChangeEvent{
		{Range: &lspRange{Start: position{Line: 1, Character: 4}, End: position{Line: 1, Character: 5}}, Text: "count"},
		{Range: &lspRange{Start: position{Line: 9, Character: 0}, End: position{Line: 9, Character: 0}}, Text: "# end\n"},
	})
	if want := "$a $b {\n\t<= count 1\n}\n# end\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := applyChanges(text, []textDocumentContentChangeEvent{{Text: "full"}}); got != "full" {
		t.Fatalf("full sync gave %q", got)
	}
}
