package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"moltree/internal/diag"
	"moltree/internal/source"
)

func unclosed(file source.FileID, at uint32) diag.Diagnostic {
	return diag.NewError(diag.SynUnclosedBlock, source.Span{File: file, Start: at, End: at}, "unclosed block").
		WithFixSuggestion(InsertText("insert `}`", source.Span{File: file, Start: at, End: at}, "}"))
}

func TestApplyEditsHighestOffsetFirst(t *testing.T) {
	content := []byte("abcdef")
	edits := []diag.FixEdit{
		{Span: source.Span{Start: 1, End: 2}, NewText: "BB"},
		{Span: source.Span{Start: 4, End: 4}, NewText: "_"},
		{Span: source.Span{Start: 6, End: 6}, NewText: "!"},
	}
	got, err := ApplyEdits(content, edits)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if string(got) != "aBBcd_ef!" {
		t.Fatalf("got %q", got)
	}
	if string(content) != "abcdef" {
		t.Fatalf("input mutated: %q", content)
	}
}

func TestApplyEditsRejectsOverlap(t *testing.T) {
	_, err := ApplyEdits([]byte("abcdef"), []diag.FixEdit{
		{Span: source.Span{Start: 1, End: 4}, NewText: "x"},
		{Span: source.Span{Start: 3, End: 5}, NewText: "y"},
	})
	if err == nil {
		t.Fatal("expected overlap error")
	}
	if _, err := ApplyEdits([]byte("ab"), []diag.FixEdit{{Span: source.Span{Start: 1, End: 9}}}); err == nil {
		t.Fatal("expected range error")
	}
}

func TestSpansConflict(t *testing.T) {
	mk := func(s, e uint32) diag.FixEdit { return diag.FixEdit{Span: source.Span{Start: s, End: e}} }
	tests := []struct {
		a, b diag.FixEdit
		want bool
	}{
		{mk(0, 2), mk(2, 4), false},
		{mk(0, 3), mk(2, 4), true},
		{mk(2, 2), mk(2, 2), true},
		{mk(2, 2), mk(3, 3), false},
		{mk(2, 2), mk(0, 4), true},
		{mk(4, 4), mk(0, 4), false},
	}
	for i, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Fatalf("case %d: spansConflict = %v, want %v", i, got, tt.want)
		}
	}
}

func TestApplyDryRunVirtual(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("app.view.tree", []byte("$a $b {\n"))
	res, err := Apply(fs, []diag.Diagnostic{unclosed(id, 8)}, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "SYN2002-0-8-0" {
		t.Fatalf("unexpected applied %+v", res.Applied)
	}
	if len(res.FileChanges) != 1 || string(res.FileChanges[0].Content) != "$a $b {\n}" {
		t.Fatalf("unexpected changes %+v", res.FileChanges)
	}
}

func TestApplyWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.view.tree")
	if err := os.WriteFile(path, []byte("$a $b {\n\tc d {\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Apply(fs, []diag.Diagnostic{unclosed(id, 15)}, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.FileChanges[0].Path != "app.view.tree" {
		t.Fatalf("path = %q", res.FileChanges[0].Path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "$a $b {\n\tc d {\n}" {
		t.Fatalf("file content %q", data)
	}
}

func TestApplySkipsConflicts(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.view.tree", []byte("$a $b {"))
	d1 := unclosed(id, 7)
	d2 := diag.NewError(diag.SynUnclosedBlock, source.Span{File: id, Start: 6, End: 7}, "other").
		WithFixSuggestion(InsertText("insert again", source.Span{File: id, Start: 7, End: 7}, "}"))

	res, err := Apply(fs, []diag.Diagnostic{d1, d2}, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || len(res.Skipped) != 1 {
		t.Fatalf("applied=%+v skipped=%+v", res.Applied, res.Skipped)
	}
}

func TestApplyByID(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.view.tree", []byte("$a $b {"))
	diags := []diag.Diagnostic{unclosed(id, 7)}

	if _, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "nope"}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: FixID(&diags[0], 0)})
	if err != nil || len(res.Applied) != 1 {
		t.Fatalf("Apply by id: %v %+v", err, res)
	}
}

func TestApplyNoFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.view.tree", []byte("}"))
	d := diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: 0, End: 1}, "unexpected")
	if _, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
}

func TestBuilders(t *testing.T) {
	sp := source.Span{File: 1, Start: 2, End: 5}
	w := WrapWith("wrap", sp, "(", ")")
	if len(w.Edits) != 2 || w.Edits[0].Span.Start != 2 || w.Edits[1].Span.Start != 5 || !w.Edits[1].Span.Empty() {
		t.Fatalf("WrapWith edits %+v", w.Edits)
	}
	if d := DeleteSpan("del", sp); d.Edits[0].NewText != "" || d.Edits[0].Span != sp {
		t.Fatalf("DeleteSpan %+v", d)
	}
	if r := ReplaceSpan("rep", sp, "x"); r.Edits[0].NewText != "x" {
		t.Fatalf("ReplaceSpan %+v", r)
	}
	if in := InsertText("ins", sp, "y"); !in.Edits[0].Span.Empty() || in.Edits[0].Span.Start != 2 {
		t.Fatalf("InsertText %+v", in)
	}
}
