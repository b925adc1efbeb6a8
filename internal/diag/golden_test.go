package diag

import (
	"testing"

	"moltree/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/app/view.view.tree", []byte("a\nb\n"), 0)
	vendored := fs.Add("/workspace/node_modules/mol/view.view.tree", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: vendored, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     SynExpectOperator,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error SYN2001 app/view.view.tree:1:1 first line second\n" +
		"note SYN2001 app/view.view.tree:2:1 note line\n" +
		"warning SYN2004 app/view.view.tree:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortKeepsVendoredPaths(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	vendored := fs.Add("/workspace/node_modules/mol/view.view.tree", []byte("x\n"), 0)

	diags := []*Diagnostic{{
		Severity: SevError,
		Code:     LexInvalidCharacter,
		Message:  "invalid character '@'",
		Primary:  source.Span{File: vendored, Start: 0, End: 1},
	}}
	want := "error LEX1001 node_modules/mol/view.view.tree:1:1 invalid character '@'"
	if got := FormatShortDiagnostics(diags, fs, false); got != want {
		t.Fatalf("short output = %q, want %q", got, want)
	}
	if got := FormatGoldenDiagnostics(diags, fs, false); got != "" {
		t.Fatalf("golden output must drop vendored paths, got %q", got)
	}
}
