package lsp

import (
	"context"
	"os"
	"regexp"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"moltree/internal/ast"
	"moltree/internal/driver"
	"moltree/internal/project"
	"moltree/internal/source"
)

var scriptComponentRe = regexp.MustCompile(`\$\w+`)

// indexEntry is what one file contributes to the workspace index.
type indexEntry struct {
	components []string
	properties map[string][]string
	defs       map[string]location
}

// workspaceIndex aggregates components and their properties over the
// workspace. Entries are keyed by path so a file can be replaced as a whole.
type workspaceIndex struct {
	mu      sync.RWMutex
	entries map[string]*indexEntry
}

func newWorkspaceIndex() *workspaceIndex {
	return &workspaceIndex{entries: make(map[string]*indexEntry)}
}

func (ix *workspaceIndex) set(path string, entry *indexEntry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if entry == nil {
		delete(ix.entries, path)
		return
	}
	ix.entries[path] = entry
}

func (ix *workspaceIndex) components() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, e := range ix.entries {
		for _, c := range e.components {
			seen[c] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// properties returns the properties of component; an empty component name
// yields the properties of every component.
func (ix *workspaceIndex) properties(component string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, e := range ix.entries {
		for name, props := range e.properties {
			if component != "" && name != component {
				continue
			}
			for _, p := range props {
				seen[p] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

func (ix *workspaceIndex) definition(component string) (location, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	paths := make([]string, 0, len(ix.entries))
	for path := range ix.entries {
		paths = append(paths, path)
	}
	// при дубликатах побеждает первый путь по алфавиту
	sort.Strings(paths)
	for _, path := range paths {
		if loc, ok := ix.entries[path].defs[component]; ok {
			return loc, true
		}
	}
	return location{}, false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// entryFromTree collects the top-level definitions as components, every
// `$` type in the file as a component, and every name declared inside a
// component's block as its property.
func entryFromTree(b *ast.Builder, fid ast.FileID, file *source.File, uri string) *indexEntry {
	entry := &indexEntry{
		properties: make(map[string][]string),
		defs:       make(map[string]location),
	}
	f := b.Files.Get(fid)
	if f == nil {
		return entry
	}
	comps := make(map[string]struct{})
	var owner string
	ast.Walk(b, fid, func(id, parent ast.StmtID, depth int) bool {
		if def, ok := b.Stmts.Definition(id); ok {
			if depth == 0 {
				owner = def.Name.Name
				if owner != "" {
					comps[owner] = struct{}{}
					if _, ok := entry.properties[owner]; !ok {
						entry.properties[owner] = nil
					}
					if _, dup := entry.defs[owner]; !dup {
						entry.defs[owner] = location{URI: uri, Range: rangeForSpan(file, def.Name.Span)}
					}
				}
			} else {
				entry.addProperty(owner, def.Name)
			}
			if def.Type.HasSigil() {
				comps[def.Type.Name] = struct{}{}
			}
			return true
		}
		if prop, ok := b.Stmts.Property(id); ok && depth > 0 {
			entry.addProperty(owner, prop.Prop)
		}
		return true
	})
	entry.components = sortedKeys(comps)
	for name, props := range entry.properties {
		entry.properties[name] = dedupSorted(props)
	}
	return entry
}

func (e *indexEntry) addProperty(owner string, name ast.Ident) {
	if owner == "" || !name.IsValid() || name.HasSigil() {
		return
	}
	e.properties[owner] = append(e.properties[owner], name.Name)
}

func dedupSorted(in []string) []string {
	sort.Strings(in)
	out := in[:0]
	for i, s := range in {
		if i > 0 && s == in[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// entryFromScript picks up `$name` references from a script file.
func entryFromScript(content []byte) *indexEntry {
	comps := make(map[string]struct{})
	for _, m := range scriptComponentRe.FindAll(content, -1) {
		comps[string(m)] = struct{}{}
	}
	return &indexEntry{components: sortedKeys(comps)}
}

func entryFromDocument(doc *document) *indexEntry {
	return entryFromTree(doc.builder, doc.astFile, doc.file, doc.uri)
}

// scan indexes every source and script file below root. Paths for which
// skip returns true (open documents) keep their current entries.
func (ix *workspaceIndex) scan(ctx context.Context, root string, cfg project.Config, skip func(path string) bool) (int, error) {
	files, err := driver.ListFiles(ctx, root, cfg, func(path string) bool {
		return cfg.IsSource(path) || cfg.IsScript(path)
	})
	if err != nil {
		return 0, err
	}
	entries := make([]*indexEntry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		if skip != nil && skip(path) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := indexFile(gctx, path, cfg)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	// документ мог открыться, пока шло сканирование
	for i, path := range files {
		if skip != nil && skip(path) {
			entries[i] = nil
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	n := 0
	for i, path := range files {
		if entries[i] == nil {
			continue
		}
		ix.entries[path] = entries[i]
		n++
	}
	return n, nil
}

// indexFile builds the entry of one file on disk. A file that cannot be
// read or decoded yields a nil entry and no error.
func indexFile(ctx context.Context, path string, cfg project.Config) (*indexEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	if cfg.IsScript(path) {
		return entryFromScript(content), nil
	}
	normalized, _, err := source.Normalize(content)
	if err != nil {
		return nil, nil
	}
	res, err := driver.ParseText(ctx, path, normalized, cfg.Diagnostics.Max)
	if err != nil {
		return nil, err
	}
	return entryFromTree(res.Builder, res.FileID, res.File, pathToURI(path)), nil
}
