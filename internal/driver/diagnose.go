package driver

import (
	"context"
	"fmt"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/observ"
	"moltree/internal/source"
	"moltree/internal/trace"
)

type DiagnoseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	// Builder is nil when the diagnostics came from the disk cache.
	Builder *ast.Builder
	FileID  ast.FileID
	// Err is the first lex or parse error.
	Err    error
	Cached bool
	Timing *observ.Report
}

// DiagnoseOptions содержит опции для диагностики
type DiagnoseOptions struct {
	MaxDiagnostics int
	EnableTimings  bool
	// Cache, when set, is consulted before parsing and filled after it.
	Cache    *DiskCache
	Observer PhaseObserver
}

// Diagnose loads path and collects its lex and parse diagnostics.
func Diagnose(ctx context.Context, path string, opts DiagnoseOptions) (*DiagnoseResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "diagnose", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	ph := phases{timer: timer, observer: opts.Observer}

	endLoad := ph.begin("load_file")
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	endLoad("")
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	res, err := diagnoseFile(span.Context(ctx), fs, file, opts, ph)
	if err != nil {
		return nil, err
	}
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(res.Bag, newTimingPayload("file", file.Path, timer))
	}
	return res, nil
}

// diagnoseFile is shared by Diagnose and DiagnoseDir. Cache errors are not
// fatal: a broken entry is treated as a miss and overwritten.
func diagnoseFile(ctx context.Context, fs *source.FileSet, file *source.File, opts DiagnoseOptions, ph phases) (*DiagnoseResult, error) {
	res := &DiagnoseResult{
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}

	var key Digest
	if opts.Cache != nil {
		endLookup := ph.begin("cache_lookup")
		key = fileCacheKey(file.Content, opts.MaxDiagnostics)
		var payload DiskPayload
		hit, _ := opts.Cache.Get(key, &payload)
		if hit {
			for _, d := range payloadToDiagnostics(&payload, file.ID) {
				res.Bag.Add(d)
			}
			res.Cached = true
			if first, ok := res.Bag.FirstError(); ok {
				res.Err = first
			}
			endLookup("hit")
			trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache_hit", file.Path, trace.CurrentSpan(ctx).SpanID)
			return res, nil
		}
		endLookup("miss")
	}

	endParse := ph.begin("parse")
	builder, fid, parseErr, err := parseFile(ctx, fs, file, res.Bag, opts.MaxDiagnostics)
	if err != nil {
		endParse("")
		return nil, err
	}
	res.Builder, res.FileID, res.Err = builder, fid, parseErr
	note := ""
	if f := builder.Files.Get(fid); f != nil {
		note = fmt.Sprintf("stmts=%d diags=%d", len(f.Stmts), res.Bag.Len())
	}
	endParse(note)

	// восстановление парсера может повторить ошибку в той же точке
	res.Bag.Sort()
	res.Bag.Dedup()

	if opts.Cache != nil {
		endStore := ph.begin("cache_store")
		_ = opts.Cache.Put(key, diagnosticsToPayload(file.Path, contentDigest(file.Content), res.Bag.Items()))
		endStore("")
	}
	return res, nil
}
