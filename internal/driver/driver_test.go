package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"moltree/internal/diag"
	"moltree/internal/driver"
	"moltree/internal/format"
	"moltree/internal/parser"
	"moltree/internal/project"
	"moltree/internal/token"
)

const validSource = "$my_app $mol_page {\n\t<= title \"Hello\"\n\tbody $mol_list\n}\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestTokenizeEndsWithEOF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.view.tree", validSource)

	res, err := driver.Tokenize(context.Background(), path, 10)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(res.Bag))
	}
	if len(res.Tokens) == 0 || res.Tokens[len(res.Tokens)-1].Kind != token.EOF {
		t.Fatalf("stream must end with EOF, got %d tokens", len(res.Tokens))
	}
}

func TestTokenizeReportsLexError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.view.tree", "a \"open")

	res, err := driver.Tokenize(context.Background(), path, 10)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	got := codes(res.Bag)
	if len(got) != 1 || got[0] != diag.LexUnterminatedString {
		t.Fatalf("codes = %v, want [LEX1002]", got)
	}
}

func TestTokenizeMissingFile(t *testing.T) {
	_, err := driver.Tokenize(context.Background(), filepath.Join(t.TempDir(), "nope.view.tree"), 10)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestParseKeepsPartialTree(t *testing.T) {
	path := writeFile(t, t.TempDir(), "partial.view.tree", "a b\nc d {\n\t<= e f\n")

	res, err := driver.Parse(context.Background(), path, 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !errors.Is(res.Err, parser.ErrUnclosedBlock) {
		t.Fatalf("Err = %v, want unclosed block", res.Err)
	}
	file := res.Builder.Files.Get(res.FileID)
	if file == nil || len(file.Stmts) != 2 {
		t.Fatalf("want both top-level statements in the partial tree")
	}
}

func TestDiagnoseWithTimings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.view.tree", validSource)

	var mu sync.Mutex
	var seen []string
	res, err := driver.Diagnose(context.Background(), path, driver.DiagnoseOptions{
		MaxDiagnostics: 10,
		EnableTimings:  true,
		Observer: func(ev driver.PhaseEvent) {
			mu.Lock()
			defer mu.Unlock()
			if ev.Status == driver.PhaseEnd {
				seen = append(seen, ev.Name)
			}
		},
	})
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codes(res.Bag))
	}
	got := codes(res.Bag)
	if len(got) != 1 || got[0] != diag.ObsTimings {
		t.Fatalf("codes = %v, want a single OBS6001", got)
	}
	if res.Timing == nil || len(res.Timing.Phases) < 2 {
		t.Fatalf("timing report missing phases: %+v", res.Timing)
	}
	if strings.Join(seen, ",") != "load_file,parse" {
		t.Fatalf("observed phases = %v", seen)
	}
}

func TestDiagnoseDirSkipsExcludedAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.view.tree", validSource)
	writeFile(t, dir, "sub/b.view.tree", "x y {\n")
	writeFile(t, dir, "node_modules/c.view.tree", "} broken")
	writeFile(t, dir, ".git/d.view.tree", "} broken")
	writeFile(t, dir, "readme.md", "} not a source")

	_, results, err := driver.DiagnoseDir(context.Background(), dir, driver.DirOptions{
		Config:         project.Defaults(),
		MaxDiagnostics: 10,
		Jobs:           2,
	})
	if err != nil {
		t.Fatalf("DiagnoseDir: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Bag.HasErrors() {
		t.Fatalf("%s: unexpected errors %v", results[0].Path, codes(results[0].Bag))
	}
	got := codes(results[1].Bag)
	if len(got) != 1 || got[0] != diag.SynUnclosedBlock {
		t.Fatalf("%s: codes = %v, want [SYN2002]", results[1].Path, got)
	}
}

func TestDiagnoseDirUsesDiskCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.view.tree", "a b {\n\t<= c d\n")
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	opts := driver.DirOptions{Config: project.Defaults(), MaxDiagnostics: 10, Cache: cache}

	_, first, err := driver.DiagnoseDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first[0].Cached {
		t.Fatalf("first run must not hit the cache")
	}

	_, second, err := driver.DiagnoseDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second[0].Cached {
		t.Fatalf("second run must hit the cache")
	}
	a, b := first[0].Bag.Items(), second[0].Bag.Items()
	if len(a) != len(b) {
		t.Fatalf("cached diagnostics differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Code != b[i].Code || a[i].Primary != b[i].Primary || len(a[i].Fixes) != len(b[i].Fixes) {
			t.Fatalf("diagnostic %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}

	// изменение содержимого даёт новый ключ
	writeFile(t, dir, "a.view.tree", "a b {\n}\n")
	_, third, err := driver.DiagnoseDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third[0].Cached || third[0].Bag.HasErrors() {
		t.Fatalf("edited file must be re-diagnosed cleanly")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordingSink) OnEvent(ev driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestParseDirEmitsProgress(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.view.tree", validSource)
	writeFile(t, dir, "b.view.tree", "} x")

	sink := &recordingSink{}
	_, results, err := driver.ParseDir(context.Background(), dir, driver.DirOptions{
		Config:   project.Defaults(),
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	if len(results) != 2 || results[0].Builder == nil {
		t.Fatalf("unexpected results: %+v", results)
	}

	final := make(map[string]driver.Status)
	for _, ev := range sink.events {
		if ev.File != "" && ev.Status != driver.StatusQueued && ev.Status != driver.StatusWorking {
			final[filepath.Base(ev.File)] = ev.Status
		}
	}
	if final["a.view.tree"] != driver.StatusDone || final["b.view.tree"] != driver.StatusError {
		t.Fatalf("final statuses = %v", final)
	}
	last := sink.events[len(sink.events)-1]
	if last.File != "" || last.Status != driver.StatusDone {
		t.Fatalf("last event = %+v, want run-level done", last)
	}
}

func TestTokenizeDirEmptyDir(t *testing.T) {
	_, results, err := driver.TokenizeDir(context.Background(), t.TempDir(), driver.DirOptions{Config: project.Defaults()})
	if err != nil || len(results) != 0 {
		t.Fatalf("got %d results, err %v", len(results), err)
	}
}

func TestFormatPaths(t *testing.T) {
	dir := t.TempDir()
	messy := writeFile(t, dir, "messy.view.tree", "$a   $b {\n<= c   d\n}")
	clean := writeFile(t, dir, "clean.view.tree", "$a $b {\n\t<= c d\n}\n")
	broken := writeFile(t, dir, "broken.view.tree", "$a $b {")

	results, err := driver.FormatPaths(context.Background(), []string{dir}, driver.FormatOptions{
		Check:  true,
		Config: project.Defaults(),
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	byPath := make(map[string]driver.FormatResult, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}
	if !byPath[messy].Changed || byPath[clean].Changed {
		t.Fatalf("check results = %+v", results)
	}
	if byPath[broken].Err == nil {
		t.Fatalf("broken file must report an error")
	}

	if _, err := driver.FormatPaths(context.Background(), []string{messy}, driver.FormatOptions{Write: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(messy)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "$a $b {\n\t<= c d\n}\n" {
		t.Fatalf("formatted = %q", data)
	}
}

func TestFormatPathsNoSources(t *testing.T) {
	_, err := driver.FormatPaths(context.Background(), []string{t.TempDir()}, driver.FormatOptions{Config: project.Defaults()})
	if !errors.Is(err, driver.ErrNoSourceFiles) {
		t.Fatalf("err = %v, want ErrNoSourceFiles", err)
	}
}

func TestRunFmtCheck(t *testing.T) {
	res, err := driver.Parse(context.Background(), writeFile(t, t.TempDir(), "a.view.tree", validSource), 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ok, msg := driver.RunFmtCheck(res.File, format.Options{}, 10); !ok {
		t.Fatalf("RunFmtCheck: %s", msg)
	}
}

// TestGoldenDiagnostics diagnoses every file in testdata/golden and compares
// the line rendering with the neighbouring .golden file.
func TestGoldenDiagnostics(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata", "golden")
	sources, err := filepath.Glob(filepath.Join(dir, "*.view.tree"))
	if err != nil || len(sources) == 0 {
		t.Fatalf("no golden sources in %s: %v", dir, err)
	}
	for _, path := range sources {
		name := strings.TrimSuffix(filepath.Base(path), ".view.tree")
		t.Run(name, func(t *testing.T) {
			want, err := os.ReadFile(filepath.Join(dir, name+".golden"))
			if err != nil {
				t.Fatalf("read golden: %v", err)
			}
			res, err := driver.Diagnose(context.Background(), path, driver.DiagnoseOptions{MaxDiagnostics: 100})
			if err != nil {
				t.Fatalf("Diagnose: %v", err)
			}
			res.FileSet.SetBaseDir(dir)
			got := diag.FormatGoldenDiagnostics(res.Bag.Pointers(), res.FileSet, true)
			if got != strings.TrimRight(string(want), "\n") {
				t.Fatalf("golden mismatch:\nwant:\n%s\ngot:\n%s", want, got)
			}
		})
	}
}

func TestParseTextDeepNestingReportsDiagnostic(t *testing.T) {
	depth := parser.DefaultMaxDepth + 1
	text := strings.Repeat("a b {", depth) + strings.Repeat("}", depth)
	res, err := driver.ParseText(context.Background(), "deep.view.tree", []byte(text), 10)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if !errors.Is(res.Err, parser.ErrUnexpectedToken) {
		t.Fatalf("expected ErrUnexpectedToken, got %v", res.Err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynUnexpectedToken {
		t.Fatalf("expected one nesting diagnostic, got %d", len(items))
	}
}
