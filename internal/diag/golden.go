package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"moltree/internal/source"
)

// lineEntry is one rendered row of the line-oriented output.
type lineEntry struct {
	sev  string
	code string
	path string
	line uint32
	col  uint32
	msg  string
}

func (e lineEntry) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", e.sev, e.code, e.path, e.line, e.col, e.msg)
}

func compareEntries(a, b lineEntry) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.sev, b.sev),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatGoldenDiagnostics renders one line per diagnostic (and per note when
// includeNotes is set) in a stable order, for golden files. Entries that
// point into node_modules or at stdin are dropped.
func FormatGoldenDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return renderLines(diags, fs, includeNotes, isVendoredPath)
}

// FormatShortDiagnostics is the same rendering for `diagnose --format short`;
// it keeps every path.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return renderLines(diags, fs, includeNotes, nil)
}

func renderLines(diags []*Diagnostic, fs *source.FileSet, includeNotes bool, drop func(string) bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	var entries []lineEntry
	add := func(sp source.Span, sev, code, msg string) {
		path, pos, ok := locate(fs, sp)
		if !ok || (drop != nil && drop(path)) {
			return
		}
		entries = append(entries, lineEntry{sev: sev, code: code, path: path, line: pos.Line, col: pos.Col, msg: flattenMessage(msg)})
	}
	for _, d := range diags {
		code := d.Code.ID()
		add(d.Primary, strings.ToLower(d.Severity.String()), code, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			add(n.Span, "note", code, n.Msg)
		}
	}
	slices.SortStableFunc(entries, compareEntries)

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// locate maps sp to a slash-separated path relative to the file set base.
// Spans of unknown files are reported as not found.
func locate(fs *source.FileSet, sp source.Span) (path string, pos source.LineCol, ok bool) {
	file := fs.Get(sp.File)
	if file == nil || sp.End > file.LenContent() {
		return "", source.LineCol{}, false
	}
	pos, _ = fs.Resolve(sp)
	path = filepath.ToSlash(file.FormatPath("relative", fs.BaseDir()))
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return path, pos, true
}

func isVendoredPath(path string) bool {
	for seg := range strings.SplitSeq(path, "/") {
		if seg == "node_modules" || seg == "-" {
			return true
		}
	}
	return false
}

// flattenMessage keeps a multi-line message on one row.
func flattenMessage(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
