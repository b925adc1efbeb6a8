package lsp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const sampleApp = `$my_app $mol_page {
	<= title "Hello"
	? sub 2
	body $mol_list {
		<=> rows null
	}
}
`

func analyzeText(t *testing.T, src string) *document {
	t.Helper()
	uri := pathToURI(filepath.Join(t.TempDir(), "app.view.tree"))
	doc, err := analyzeDocument(context.Background(), uri, 1, src, 100)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return doc
}

// positionForOffsetUTF16 is the slow reference mapping used by tests.
func positionForOffsetUTF16(src string, off int) position {
	line := strings.Count(src[:off], "\n")
	start := strings.LastIndexByte(src[:off], '\n') + 1
	units := 0
	for _, r := range src[start:off] {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return position{Line: line, Character: units}
}

// cursorAfter returns the position right after the first occurrence of marker.
func cursorAfter(t *testing.T, src, marker string) position {
	t.Helper()
	idx := strings.Index(src, marker)
	if idx < 0 {
		t.Fatalf("marker %q not found", marker)
	}
	return positionForOffsetUTF16(src, idx+len(marker))
}

func indexOf(doc *document) *workspaceIndex {
	ix := newWorkspaceIndex()
	ix.set(indexKey(doc.uri, doc.path), entryFromDocument(doc))
	return ix
}
