package fix

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"

	"moltree/internal/diag"
	"moltree/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun keeps results in memory (FileChange.Content) instead of writing files.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID          string
	Title       string
	Code        diag.Code
	Message     string
	PrimaryPath string
	EditCount   int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
	Content   []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag diag.Diagnostic
	fix  diag.Fix
	id   string
	seq  int // порядок появления, для стабильной сортировки
}

// Apply collects fixes from diagnostics, selects a subset according to opts,
// and applies them. Virtual files are never written.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, errors.New("fix: FileSet is nil")
	}

	cands := collect(diagnostics, result)
	slices.SortStableFunc(cands, compareCandidates)
	cands = pick(cands, opts, result)
	if len(cands) == 0 {
		return result, ErrNoFixes
	}

	p := newPlan(fs)
	for _, c := range cands {
		if reason := p.accept(c); reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{ID: c.id, Title: c.fix.Title, Reason: reason})
			continue
		}
		result.Applied = append(result.Applied, AppliedFix{
			ID:          c.id,
			Title:       c.fix.Title,
			Code:        c.diag.Code,
			Message:     c.diag.Message,
			PrimaryPath: p.displayPath(c.diag.Primary.File),
			EditCount:   len(c.fix.Edits),
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	changes, err := p.commit(opts.DryRun)
	result.FileChanges = changes
	return result, err
}

// FixID builds the stable identifier of the idx-th fix of d.
func FixID(d *diag.Diagnostic, idx int) string {
	return fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
}

// collect turns every fix into a candidate. Fixes without edits and
// repeated ids go straight to result.Skipped.
func collect(diagnostics []diag.Diagnostic, result *ApplyResult) []candidate {
	var cands []candidate
	seen := make(map[string]bool)
	for i := range diagnostics {
		d := &diagnostics[i]
		for idx, f := range d.Fixes {
			id := FixID(d, idx)
			switch {
			case len(f.Edits) == 0:
				result.Skipped = append(result.Skipped, SkippedFix{ID: id, Title: f.Title, Reason: "fix has no edits"})
			case seen[id]:
				result.Skipped = append(result.Skipped, SkippedFix{ID: id, Title: f.Title, Reason: "duplicate fix id"})
			default:
				seen[id] = true
				cands = append(cands, candidate{diag: *d, fix: f, id: id, seq: len(cands)})
			}
		}
	}
	return cands
}

func compareCandidates(a, b candidate) int {
	pa, pb := a.diag.Primary, b.diag.Primary
	return cmp.Or(
		cmp.Compare(pa.File, pb.File),
		cmp.Compare(pa.Start, pb.Start),
		cmp.Compare(pa.End, pb.End),
		cmp.Compare(a.seq, b.seq),
	)
}

func pick(cands []candidate, opts ApplyOptions, result *ApplyResult) []candidate {
	if len(cands) == 0 {
		return nil
	}
	switch opts.Mode {
	case ApplyModeAll:
		return cands
	case ApplyModeOnce:
		return cands[:1]
	case ApplyModeID:
		if i := slices.IndexFunc(cands, func(c candidate) bool { return c.id == opts.TargetID }); i >= 0 {
			return cands[i : i+1]
		}
		result.Skipped = append(result.Skipped, SkippedFix{ID: opts.TargetID, Reason: "fix id not found"})
	}
	return nil
}

// plan holds the edits accepted so far, grouped by file in first-touch order.
type plan struct {
	fs    *source.FileSet
	edits map[source.FileID][]diag.FixEdit
	files []source.FileID
}

func newPlan(fs *source.FileSet) *plan {
	return &plan{fs: fs, edits: make(map[source.FileID][]diag.FixEdit)}
}

// accept adds the edits of c unless one of them is invalid or collides with
// an accepted edit; the returned reason is empty on success.
func (p *plan) accept(c candidate) string {
	for _, e := range c.fix.Edits {
		file := p.fs.Get(e.Span.File)
		if file == nil {
			return "target file is unknown"
		}
		if e.Span.End < e.Span.Start || e.Span.End > file.LenContent() {
			return "edit span out of range"
		}
		if slices.ContainsFunc(p.edits[e.Span.File], func(prev diag.FixEdit) bool { return spansConflict(prev, e) }) {
			return "conflicts with previously applied edits in " + file.FormatPath("auto", p.fs.BaseDir())
		}
	}
	if conflictsWithin(c.fix.Edits) {
		return "fix edits overlap"
	}
	for _, e := range c.fix.Edits {
		if _, ok := p.edits[e.Span.File]; !ok {
			p.files = append(p.files, e.Span.File)
		}
		p.edits[e.Span.File] = append(p.edits[e.Span.File], e)
	}
	return ""
}

// commit rewrites the content of every touched file and, unless dryRun,
// writes it back with the original permissions.
func (p *plan) commit(dryRun bool) ([]FileChange, error) {
	changes := make([]FileChange, 0, len(p.files))
	for _, id := range p.files {
		file := p.fs.Get(id)
		edits := p.edits[id]
		buf, err := ApplyEdits(file.Content, edits)
		if err != nil {
			return changes, fmt.Errorf("apply edits to %s: %w", file.Path, err)
		}
		if !dryRun && file.Flags&source.FileVirtual == 0 {
			if err := writeKeepingMode(file.Path, buf); err != nil {
				return changes, err
			}
		}
		changes = append(changes, FileChange{
			Path:      file.FormatPath("relative", p.fs.BaseDir()),
			EditCount: len(edits),
			Content:   buf,
		})
	}
	slices.SortStableFunc(changes, func(a, b FileChange) int { return cmp.Compare(a.Path, b.Path) })
	return changes, nil
}

func (p *plan) displayPath(id source.FileID) string {
	if file := p.fs.Get(id); file != nil {
		return file.FormatPath("auto", p.fs.BaseDir())
	}
	return ""
}

func writeKeepingMode(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ApplyEdits applies non-overlapping edits to content from the end of the
// buffer backwards, so pending offsets stay valid.
func ApplyEdits(content []byte, edits []diag.FixEdit) ([]byte, error) {
	if conflictsWithin(edits) {
		return nil, errors.New("overlapping edits")
	}
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b diag.FixEdit) int {
		return cmp.Or(cmp.Compare(b.Span.Start, a.Span.Start), cmp.Compare(b.Span.End, a.Span.End))
	})

	out := slices.Clone(content)
	for _, e := range sorted {
		start, end := int(e.Span.Start), int(e.Span.End)
		if end < start || end > len(out) {
			return nil, fmt.Errorf("edit span %s out of range", e.Span)
		}
		out = slices.Replace(out, start, end, []byte(e.NewText)...)
	}
	return out, nil
}

func conflictsWithin(edits []diag.FixEdit) bool {
	for i, a := range edits {
		for _, b := range edits[i+1:] {
			if a.Span.File == b.Span.File && spansConflict(a, b) {
				return true
			}
		}
	}
	return false
}

// spansConflict treats spans as half-open ranges. Two insertions at one
// point conflict because their order is ambiguous; an insertion conflicts
// with a replacement only strictly inside it.
func spansConflict(a, b diag.FixEdit) bool {
	as, ae, bs, be := a.Span.Start, a.Span.End, b.Span.Start, b.Span.End
	switch {
	case as == ae && bs == be:
		return as == bs
	case as == ae:
		return bs < as && as < be
	case bs == be:
		return as < bs && bs < ae
	default:
		return as < be && bs < ae
	}
}
