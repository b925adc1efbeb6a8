package driver

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/observ"
	"moltree/internal/project"
	"moltree/internal/source"
	"moltree/internal/token"
	"moltree/internal/trace"
)

// DirOptions configures the directory walkers.
type DirOptions struct {
	// Config selects the files (extensions, excluded directories).
	Config         project.Config
	MaxDiagnostics int
	// Jobs bounds the worker count; <= 0 means GOMAXPROCS.
	Jobs          int
	EnableTimings bool
	Cache         *DiskCache
	Progress      ProgressSink
}

// TokenizeDirResult содержит результат токенизации одного файла
type TokenizeDirResult struct {
	Path   string        // путь к файлу
	FileID source.FileID // ID файла в FileSet
	Tokens []token.Token // Токены файла
	Bag    *diag.Bag     // Диагностики
}

// ParseDirResult содержит результат парсинга одного файла
type ParseDirResult struct {
	Path    string
	FileID  source.FileID
	Builder *ast.Builder // nil, если файл не загрузился
	ASTFile ast.FileID
	Bag     *diag.Bag
	Err     error
}

type DiagnoseDirResult struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Builder *ast.Builder
	ASTFile ast.FileID
	Cached  bool
	Timing  *observ.Report
}

// loadedDir is the pre-loaded state shared by the walkers. Loading is
// sequential; workers only read the FileSet afterwards.
type loadedDir struct {
	fileSet    *source.FileSet
	files      []string
	fileIDs    map[string]source.FileID
	loadErrors map[string]error
}

func loadDir(ctx context.Context, dir string, opts DirOptions) (*loadedDir, error) {
	files, err := ListSourceFiles(ctx, dir, opts.Config)
	if err != nil {
		return nil, err
	}
	ld := &loadedDir{
		fileSet:    source.NewFileSetWithBase(dir),
		files:      files,
		fileIDs:    make(map[string]source.FileID, len(files)),
		loadErrors: make(map[string]error),
	}
	for _, path := range files {
		fileID, err := ld.fileSet.Load(path)
		if err != nil {
			// Сохраняем ошибку загрузки; файл остаётся в наборе пустым,
			// чтобы диагностике было куда указывать
			ld.loadErrors[path] = err
			fileID = ld.fileSet.AddVirtual(path, nil)
		}
		ld.fileIDs[path] = fileID
	}
	return ld, nil
}

// loadFailure returns a bag holding the IO diagnostic when path did not load.
func (ld *loadedDir) loadFailure(path string, maxDiagnostics int) (*diag.Bag, bool) {
	loadErr, failed := ld.loadErrors[path]
	if !failed {
		return nil, false
	}
	bag := diag.NewBag(maxDiagnostics)
	sp := source.Span{File: ld.fileIDs[path]}
	bag.Add(diag.NewError(diag.IOLoadFileError, sp, "failed to load file: "+loadErr.Error()))
	return bag, true
}

// forEachFile runs fn for every file on a bounded errgroup. Results are
// written by index, so fn needs no locking.
func forEachFile(ctx context.Context, files []string, jobs int, fn func(ctx context.Context, i int, path string) error) error {
	if len(files) == 0 {
		return nil
	}
	// Настраиваем параллелизм
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i, path)
		})
	}
	return g.Wait()
}

func statusOf(bag *diag.Bag) Status {
	if bag != nil && bag.HasErrors() {
		return StatusError
	}
	return StatusDone
}

// TokenizeDir токенизирует все исходники директории параллельно
func TokenizeDir(ctx context.Context, dir string, opts DirOptions) (*source.FileSet, []TokenizeDirResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "tokenize_dir", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = span.Context(ctx)

	ld, err := loadDir(ctx, dir, opts)
	if err != nil {
		return nil, nil, err
	}
	emitQueued(opts.Progress, ld.files, StageTokenize)

	results := make([]TokenizeDirResult, len(ld.files))
	err = forEachFile(ctx, ld.files, opts.Jobs, func(ctx context.Context, i int, path string) error {
		started := time.Now()
		emit(opts.Progress, Event{File: path, Stage: StageTokenize, Status: StatusWorking})
		fileID := ld.fileIDs[path]
		if bag, failed := ld.loadFailure(path, opts.MaxDiagnostics); failed {
			results[i] = TokenizeDirResult{Path: path, FileID: fileID, Bag: bag}
			emit(opts.Progress, Event{File: path, Stage: StageTokenize, Status: StatusError, Err: ld.loadErrors[path], Elapsed: time.Since(started)})
			return nil
		}

		bag := diag.NewBag(opts.MaxDiagnostics)
		tokens := lexAll(ld.fileSet.Get(fileID), bag)
		results[i] = TokenizeDirResult{Path: path, FileID: fileID, Tokens: tokens, Bag: bag}
		emit(opts.Progress, Event{File: path, Stage: StageTokenize, Status: statusOf(bag), Elapsed: time.Since(started)})
		return nil
	})
	emit(opts.Progress, Event{Stage: StageTokenize, Status: StatusDone, Err: err})
	return ld.fileSet, results, err
}

// ParseDir парсит все исходники директории параллельно
func ParseDir(ctx context.Context, dir string, opts DirOptions) (*source.FileSet, []ParseDirResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse_dir", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = span.Context(ctx)

	ld, err := loadDir(ctx, dir, opts)
	if err != nil {
		return nil, nil, err
	}
	emitQueued(opts.Progress, ld.files, StageParse)

	results := make([]ParseDirResult, len(ld.files))
	err = forEachFile(ctx, ld.files, opts.Jobs, func(ctx context.Context, i int, path string) error {
		started := time.Now()
		emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})
		fileID := ld.fileIDs[path]
		if bag, failed := ld.loadFailure(path, opts.MaxDiagnostics); failed {
			results[i] = ParseDirResult{Path: path, FileID: fileID, Bag: bag, Err: ld.loadErrors[path]}
			emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusError, Err: ld.loadErrors[path], Elapsed: time.Since(started)})
			return nil
		}

		fileSpan := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "parse_file", trace.CurrentSpan(ctx).SpanID).
			WithExtra("path", path)
		bag := diag.NewBag(opts.MaxDiagnostics)
		builder, astFile, parseErr, err := parseFile(fileSpan.Context(ctx), ld.fileSet, ld.fileSet.Get(fileID), bag, opts.MaxDiagnostics)
		fileSpan.End("")
		if err != nil {
			return err
		}
		results[i] = ParseDirResult{
			Path:    path,
			FileID:  fileID,
			Builder: builder,
			ASTFile: astFile,
			Bag:     bag,
			Err:     parseErr,
		}
		emit(opts.Progress, Event{File: path, Stage: StageParse, Status: statusOf(bag), Elapsed: time.Since(started)})
		return nil
	})
	emit(opts.Progress, Event{Stage: StageParse, Status: StatusDone, Err: err})
	return ld.fileSet, results, err
}

// DiagnoseDir diagnoses every source file of dir in parallel. With a cache,
// unchanged files are answered from disk without parsing.
func DiagnoseDir(ctx context.Context, dir string, opts DirOptions) (*source.FileSet, []DiagnoseDirResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "diagnose_dir", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = span.Context(ctx)

	ld, err := loadDir(ctx, dir, opts)
	if err != nil {
		return nil, nil, err
	}
	span.WithExtra("files", strconv.Itoa(len(ld.files)))
	emitQueued(opts.Progress, ld.files, StageDiagnose)

	results := make([]DiagnoseDirResult, len(ld.files))
	err = forEachFile(ctx, ld.files, opts.Jobs, func(ctx context.Context, i int, path string) error {
		started := time.Now()
		emit(opts.Progress, Event{File: path, Stage: StageDiagnose, Status: StatusWorking})
		fileID := ld.fileIDs[path]
		if bag, failed := ld.loadFailure(path, opts.MaxDiagnostics); failed {
			results[i] = DiagnoseDirResult{Path: path, FileID: fileID, Bag: bag}
			emit(opts.Progress, Event{File: path, Stage: StageDiagnose, Status: StatusError, Err: ld.loadErrors[path], Elapsed: time.Since(started)})
			return nil
		}

		var timer *observ.Timer
		if opts.EnableTimings {
			timer = observ.NewTimer()
		}
		fileSpan := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "diagnose_file", trace.CurrentSpan(ctx).SpanID).
			WithExtra("path", path)
		file := ld.fileSet.Get(fileID)
		res, err := diagnoseFile(fileSpan.Context(ctx), ld.fileSet, file, DiagnoseOptions{
			MaxDiagnostics: opts.MaxDiagnostics,
			Cache:          opts.Cache,
		}, phases{timer: timer})
		fileSpan.End("")
		if err != nil {
			return err
		}
		out := DiagnoseDirResult{
			Path:    path,
			FileID:  fileID,
			Bag:     res.Bag,
			Builder: res.Builder,
			ASTFile: res.FileID,
			Cached:  res.Cached,
		}
		if timer != nil {
			report := timer.Report()
			out.Timing = &report
			appendTimingDiagnostic(res.Bag, newTimingPayload("file", file.Path, timer))
		}
		results[i] = out
		emit(opts.Progress, Event{File: path, Stage: StageDiagnose, Status: statusOf(res.Bag), Elapsed: time.Since(started)})
		return nil
	})
	emit(opts.Progress, Event{Stage: StageDiagnose, Status: StatusDone, Err: err})
	return ld.fileSet, results, err
}
