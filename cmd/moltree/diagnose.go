package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"moltree/internal/diag"
	"moltree/internal/diagfmt"
	"moltree/internal/driver"
	"moltree/internal/observ"
	"moltree/internal/source"
	"moltree/internal/ui"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.view.tree|directory>",
	Short: "Run diagnostics on a view.tree file or directory",
	Long:  `Run diagnostics to find lexical and syntax errors in a view.tree file or in every source below a directory`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	diagCmd.Flags().Bool("preview", false, "preview fix edits (implies --suggest)")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagCmd.Flags().Bool("disk-cache", false, "reuse per-file diagnostics cached on disk")
	diagCmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
}

type diagOutput struct {
	format    string
	withNotes bool
	suggest   bool
	preview   bool
	pathMode  diagfmt.PathMode
	color     bool
}

func readDiagOutput(cmd *cobra.Command) (diagOutput, error) {
	var (
		o   diagOutput
		err error
	)
	flags := cmd.Flags()
	if o.format, err = flags.GetString("format"); err != nil {
		return o, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch o.format {
	case "pretty", "json", "short":
	default:
		return o, fmt.Errorf("unknown format: %s", o.format)
	}
	if o.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return o, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if o.suggest, err = flags.GetBool("suggest"); err != nil {
		return o, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if o.preview, err = flags.GetBool("preview"); err != nil {
		return o, fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return o, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	o.pathMode = diagfmt.PathModeAuto
	if fullPath {
		o.pathMode = diagfmt.PathModeAbsolute
	}
	o.color = useColor(cmd, os.Stdout)
	return o, nil
}

func (o diagOutput) prettyOpts() diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:       o.color,
		Context:     2,
		PathMode:    o.pathMode,
		ShowNotes:   o.withNotes,
		ShowFixes:   o.suggest || o.preview,
		ShowPreview: o.preview,
	}
}

func (o diagOutput) jsonOpts() diagfmt.JSONOpts {
	return diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         o.pathMode,
		IncludeNotes:     o.withNotes,
		IncludeFixes:     o.suggest || o.preview,
		IncludePreviews:  o.preview,
	}
}

// runDiagnose prints the diagnostics of a file or directory and fails with
// a silent error when any of them is an error.
func runDiagnose(cmd *cobra.Command, args []string) error {
	target := args[0]

	out, err := readDiagOutput(cmd)
	if err != nil {
		return err
	}
	cc, err := loadCommandConfig(cmd, target)
	if err != nil {
		return err
	}
	useDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	var cache *driver.DiskCache
	if useDiskCache {
		if cache, err = driver.OpenDiskCache("moltree"); err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	dir, err := isDir(target)
	if err != nil {
		return err
	}

	var hasErrors bool
	if dir {
		hasErrors, err = diagnoseDir(cmd, target, cc, cache, out)
	} else {
		hasErrors, err = diagnoseFile(cmd, target, cc, cache, out)
	}
	if err != nil {
		return err
	}
	if hasErrors {
		// Диагностики уже напечатаны; без usage и без повтора ошибки
		cmd.SilenceUsage = true
		return errSilent
	}
	return nil
}

func diagnoseFile(cmd *cobra.Command, path string, cc *commandConfig, cache *driver.DiskCache, out diagOutput) (bool, error) {
	result, err := driver.Diagnose(cmd.Context(), path, driver.DiagnoseOptions{
		MaxDiagnostics: cc.maxDiagnostics,
		EnableTimings:  cc.timings,
		Cache:          cache,
	})
	if err != nil {
		return false, fmt.Errorf("diagnosis failed: %w", err)
	}
	w := cmd.OutOrStdout()
	switch out.format {
	case "pretty":
		diagfmt.Pretty(w, result.Bag, result.FileSet, out.prettyOpts())
		if !cc.quiet && result.Bag.Len() == 0 {
			fmt.Fprintf(w, "%s: no issues\n", displayPath(result.File, result.FileSet, out.pathMode))
		}
	case "short":
		writeShort(w, result.Bag.Pointers(), result.FileSet, out.withNotes)
	case "json":
		if err := diagfmt.JSON(w, result.Bag, result.FileSet, out.jsonOpts()); err != nil {
			return false, fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	if cc.timings && !cc.quiet && result.Timing != nil {
		printTimings(cmd.ErrOrStderr(), "diagnose", 1, *result.Timing)
	}
	return result.Bag.HasErrors(), nil
}

func diagnoseDir(cmd *cobra.Command, dir string, cc *commandConfig, cache *driver.DiskCache, out diagOutput) (bool, error) {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return false, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return false, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return false, err
	}

	opts := driver.DirOptions{
		Config:         cc.Config,
		MaxDiagnostics: cc.maxDiagnostics,
		Jobs:           jobs,
		EnableTimings:  cc.timings,
		Cache:          cache,
	}

	var (
		fs      *source.FileSet
		results []driver.DiagnoseDirResult
	)
	work := func(sink driver.ProgressSink) error {
		opts.Progress = sink
		var runErr error
		fs, results, runErr = driver.DiagnoseDir(cmd.Context(), dir, opts)
		return runErr
	}
	if shouldUseTUI(mode) && !cc.quiet && out.format == "pretty" {
		title := "diagnosing " + filepath.Base(filepath.Clean(dir))
		err = ui.Run(title, nil, os.Stderr, work)
	} else {
		err = work(nil)
	}
	if err != nil {
		return false, fmt.Errorf("diagnosis failed: %w", err)
	}

	w := cmd.OutOrStdout()
	hasErrors := false
	for _, r := range results {
		if r.Bag.HasErrors() {
			hasErrors = true
			break
		}
	}

	switch out.format {
	case "pretty":
		printed := 0
		for _, r := range results {
			if r.Bag.Len() == 0 {
				continue
			}
			if printed > 0 {
				fmt.Fprintln(w)
			}
			printed++
			fmt.Fprintf(w, "== %s ==\n", displayPath(fs.Get(r.FileID), fs, out.pathMode))
			diagfmt.Pretty(w, r.Bag, fs, out.prettyOpts())
		}
		if !cc.quiet && printed == 0 {
			fmt.Fprintf(w, "%d files: no issues\n", len(results))
		}
	case "short":
		all := make([]*diag.Diagnostic, 0, len(results))
		for _, r := range results {
			all = append(all, r.Bag.Pointers()...)
		}
		writeShort(w, all, fs, out.withNotes)
	case "json":
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[displayPath(fs.Get(r.FileID), fs, out.pathMode)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, out.jsonOpts())
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return false, fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	}

	if cc.timings && !cc.quiet {
		var total observ.Report
		cached := 0
		for _, r := range results {
			if r.Cached {
				cached++
			}
			if r.Timing != nil {
				total.TotalMS += r.Timing.TotalMS
				total.Phases = append(total.Phases, r.Timing.Phases...)
			}
		}
		printTimings(cmd.ErrOrStderr(), "diagnose", len(results), total)
		if cache != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache: %d/%d files reused\n", cached, len(results))
		}
	}
	return hasErrors, nil
}

func writeShort(w io.Writer, diags []*diag.Diagnostic, fs *source.FileSet, withNotes bool) {
	if output := diag.FormatShortDiagnostics(diags, fs, withNotes); output != "" {
		fmt.Fprintln(w, output)
	}
}

func displayPath(file *source.File, fs *source.FileSet, mode diagfmt.PathMode) string {
	if file == nil {
		return ""
	}
	key := "auto"
	if mode == diagfmt.PathModeAbsolute {
		key = "absolute"
	}
	return file.FormatPath(key, fs.BaseDir())
}
