package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("app.view.tree", []byte("$app $mol_view"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	latestID, exists := fs.GetLatest("app.view.tree")
	if !exists || latestID != id1 {
		t.Fatalf("Expected latest ID %d, got %d (exists=%v)", id1, latestID, exists)
	}

	// тот же путь, новое содержимое
	id2 := fs.Add("app.view.tree", []byte("$app $mol_page"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}
	latestID, _ = fs.GetLatest("app.view.tree")
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	if got := string(fs.Get(id1).Content); got != "$app $mol_view" {
		t.Errorf("old version changed: %q", got)
	}
	if got := string(fs.Get(id2).Content); got != "$app $mol_page" {
		t.Errorf("unexpected new content: %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Expected 2 files, got %d", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.view.tree", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.view.tree", []byte("foo bar {\n\t<= x 1\n}"))

	tests := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{4, 1, 5},
		{9, 1, 10}, // сам '\n' принадлежит первой строке
		{10, 2, 1},
		{11, 2, 2},
		{18, 3, 1},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start.Line != tt.line || start.Col != tt.col {
			t.Errorf("offset %d: expected %d:%d, got %d:%d", tt.off, tt.line, tt.col, start.Line, start.Col)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("l.view.tree", []byte("first\nsecond\nthird")))

	if got := file.GetLine(1); got != "first" {
		t.Errorf("line 1: %q", got)
	}
	if got := file.GetLine(2); got != "second" {
		t.Errorf("line 2: %q", got)
	}
	if got := file.GetLine(3); got != "third" {
		t.Errorf("line 3: %q", got)
	}
	if got := file.GetLine(4); got != "" {
		t.Errorf("line 4 should be empty, got %q", got)
	}
	if got := file.GetLine(0); got != "" {
		t.Errorf("line 0 should be empty, got %q", got)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.view.tree")
	raw := []byte{0xEF, 0xBB, 0xBF, 'a', ' ', 'b', '\r', '\n', '?', ' ', 'x', '\r', '\n'}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a b\n? x\n" {
		t.Fatalf("unexpected content %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", file.Flags)
	}
}

func TestLoadDecodesUTF16(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.view.tree")
	// "a b" в UTF-16LE с BOM
	raw := []byte{0xFF, 0xFE, 'a', 0, ' ', 0, 'b', 0}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a b" {
		t.Fatalf("unexpected content %q", file.Content)
	}
	if file.Flags&FileDecodedUTF16 == 0 {
		t.Fatalf("expected FileDecodedUTF16 flag")
	}
}

func TestFormatPathModes(t *testing.T) {
	base := t.TempDir()
	fs := NewFileSetWithBase(base)
	file := fs.Get(fs.AddVirtual(filepath.Join(base, "nested", "app.view.tree"), nil))

	if got := file.FormatPath("relative", base); got != "nested/app.view.tree" {
		t.Errorf("relative: %q", got)
	}
	if got := file.FormatPath("basename", ""); got != "app.view.tree" {
		t.Errorf("basename: %q", got)
	}
	if got := file.FormatPath("absolute", ""); !filepath.IsAbs(filepath.FromSlash(got)) {
		t.Errorf("absolute: %q", got)
	}
}
