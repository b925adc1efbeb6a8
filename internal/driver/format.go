package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"moltree/internal/format"
	"moltree/internal/project"
	"moltree/internal/source"
	"moltree/internal/trace"
)

// ErrNoSourceFiles is returned when the given paths hold no moltree sources.
var ErrNoSourceFiles = errors.New("format: no source files found")

// FormatOptions configures code formatting.
type FormatOptions struct {
	// Check reports files that would change without touching them.
	Check bool
	// Write stores the formatted text back; otherwise it is returned in
	// FormatResult.Formatted.
	Write          bool
	MaxDiagnostics int
	Options        format.Options
	Config         project.Config
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Err       error
	Formatted []byte
}

// FormatPaths formats the given files and directories (walked for sources).
// A file that does not parse, or whose formatted text parses into a
// different tree, gets Err set and is never written.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "format", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := CollectSourceFiles(ctx, paths, opts.Config)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}

	results := make([]FormatResult, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := FormatResult{Path: path}
		formatted, changed, err := formatSingleFile(path, opts)
		switch {
		case err != nil:
			result.Err = err
		case opts.Check:
			result.Changed = changed
		case opts.Write:
			if changed {
				mode := os.FileMode(0o644)
				if info, statErr := os.Stat(path); statErr == nil {
					mode = info.Mode()
				}
				if err := os.WriteFile(path, formatted, mode.Perm()); err != nil {
					result.Err = err
				} else {
					result.Changed = true
				}
			}
		default:
			result.Formatted = formatted
			result.Changed = changed
		}
		results = append(results, result)
	}
	return results, nil
}

func formatSingleFile(path string, opts FormatOptions) (formatted []byte, changed bool, err error) {
	// #nosec G304 -- path comes from the command line or a directory walk
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	content, flags, err := source.Normalize(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}

	fileSet := source.NewFileSet()
	sf := fileSet.Get(fileSet.Add(path, content, flags))

	formatted, err = format.Source(sf, opts.Options)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	if ok, msg := RunFmtCheck(sf, opts.Options, opts.MaxDiagnostics); !ok {
		return nil, false, fmt.Errorf("%s: %s", path, msg)
	}

	// сравниваем с байтами на диске: CRLF и BOM тоже считаются изменением
	changed = !bytes.Equal(raw, formatted)
	return formatted, changed, nil
}
