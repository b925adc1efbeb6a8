package lsp

import (
	"os"
	"path/filepath"
	"testing"
)

const testManifest = "[package]\nname = \"app\"\n"

func TestDetectProjectRootWithManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "moltree.toml"), []byte(testManifest), 0o644); err != nil {
		t.Fatalf("write moltree.toml: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	filePath := filepath.Join(nested, "app.view.tree")
	if err := os.WriteFile(filePath, []byte(sampleApp), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	gotRoot, gotMode := detectAnalysisScope(nested, filePath)
	if gotRoot != root || gotMode != modeProjectRoot {
		t.Fatalf("got %q (%s), want %q (project)", gotRoot, gotMode, root)
	}
}

func TestDetectScopeFallbacks(t *testing.T) {
	base := t.TempDir()
	rootA := filepath.Join(base, "rootA")
	rootB := filepath.Join(base, "rootB")
	for _, dir := range []string{rootA, rootB} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(rootA, "moltree.toml"), []byte(testManifest), 0o644); err != nil {
		t.Fatalf("write moltree.toml: %v", err)
	}
	inA := filepath.Join(rootA, "app.view.tree")
	loose := filepath.Join(rootB, "loose.view.tree")

	if got, mode := detectAnalysisScope(base, inA); got != rootA || mode != modeProjectRoot {
		t.Fatalf("file in project: got %q (%s)", got, mode)
	}
	if got, mode := detectAnalysisScope(base, loose); got != base || mode != modeWorkspace {
		t.Fatalf("workspace without manifest: got %q (%s)", got, mode)
	}
	if got, mode := detectAnalysisScope("", loose); got != rootB || mode != modeOpenFiles {
		t.Fatalf("no workspace: got %q (%s)", got, mode)
	}
}

func TestPathWithinRoot(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work")
	if !pathWithinRoot(filepath.Join(root, "a", "b.view.tree"), root) {
		t.Fatalf("nested path must be within root")
	}
	if pathWithinRoot(filepath.Join(string(filepath.Separator), "other", "x"), root) {
		t.Fatalf("sibling path must be outside root")
	}
	if pathWithinRoot(filepath.Join(root, "..", "work2"), root) {
		t.Fatalf("parent escape must be outside root")
	}
}
