package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"moltree/internal/diag"
	"moltree/internal/source"
)

func decodeOutput(t *testing.T, buf *bytes.Buffer) DiagnosticsOutput {
	t.Helper()
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\noutput: %s", err, buf.String())
	}
	return output
}

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	pf := parseVirtual(t, "test.view.tree", "$app $mol_view {\n\t<= title \"unterminated\n}")

	var buf bytes.Buffer
	err := JSON(&buf, pf.bag, pf.fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	output := decodeOutput(t, &buf)
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", output)
	}
	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "LEX1002" {
		t.Fatalf("unexpected severity/code: %s %s", d.Severity, d.Code)
	}
	if d.Location.File != "test.view.tree" {
		t.Fatalf("file = %q", d.Location.File)
	}
	if d.Location.StartByte != 27 || d.Location.StartLine != 2 || d.Location.StartCol != 11 {
		t.Fatalf("unexpected location %+v", d.Location)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != `"` {
		t.Fatalf("expected closing quote fix, got %+v", d.Fixes)
	}
}

func TestJSONWithNotesAndFixes(t *testing.T) {
	pf := parseVirtual(t, "block.view.tree", "$app $mol_view {\n")

	var buf bytes.Buffer
	if err := JSON(&buf, pf.bag, pf.fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
	}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	d := decodeOutput(t, &buf).Diagnostics[0]

	if d.Code != "SYN2002" {
		t.Fatalf("code = %s", d.Code)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "block opened here" || d.Notes[0].Location.StartByte != 15 {
		t.Fatalf("unexpected notes %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Title != "insert `}`" {
		t.Fatalf("unexpected fixes %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.NewText != "}" || edit.Location.StartByte != 17 || edit.OldText != "" {
		t.Fatalf("unexpected edit %+v", edit)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "}" {
		t.Fatalf("unexpected preview %+v", edit)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	pf := parseVirtual(t, "x.view.tree", "}")

	var buf bytes.Buffer
	if err := JSON(&buf, pf.bag, pf.fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("start_line")) {
		t.Fatalf("positions must be omitted:\n%s", buf.String())
	}
	d := decodeOutput(t, &buf).Diagnostics[0]
	if d.Notes != nil || d.Fixes != nil {
		t.Fatalf("notes and fixes must be omitted: %+v", d)
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("many.view.tree", []byte("a b\nc d\ne f\n"))
	bag := diag.NewBag(0)
	for i := range uint32(5) {
		bag.Add(diag.New(diag.SevWarning, diag.SynUnexpectedToken, source.Span{File: id, Start: i, End: i + 1}, "w"))
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 3}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if got := decodeOutput(t, &buf).Count; got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}
}

func TestJSONEmptyBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diag.NewBag(0), source.NewFileSet(), JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"diagnostics": []`)) {
		t.Fatalf("expected empty array, got %s", buf.String())
	}
}
