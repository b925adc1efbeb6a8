package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/diagfmt"
	"moltree/internal/driver"
	"moltree/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.view.tree|directory>",
	Short: "Parse view.tree sources and print their syntax trees",
	Long:  `Parse analyzes a view.tree file, or every source below a directory, and prints the syntax trees`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|tree|json|msgpack)")
	parseCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	parseCmd.Flags().StringP("output", "o", "", "write the trees to file instead of stdout")
}

type treeWriter func(w io.Writer, b *ast.Builder, fid ast.FileID, fs *source.FileSet) error

func treeWriterFor(format string) (treeWriter, error) {
	switch format {
	case "pretty":
		return diagfmt.FormatASTPretty, nil
	case "tree":
		return diagfmt.FormatASTTree, nil
	case "json":
		return diagfmt.FormatASTJSON, nil
	case "msgpack":
		return diagfmt.FormatASTMsgpack, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func runParse(cmd *cobra.Command, args []string) (err error) {
	target := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	writeTree, err := treeWriterFor(format)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if format == "msgpack" && outPath == "" && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write msgpack to a terminal; use -o")
	}
	cc, err := loadCommandConfig(cmd, target)
	if err != nil {
		return err
	}
	dir, err := isDir(target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		// #nosec G304 -- path comes from the -o flag
		f, createErr := os.Create(outPath)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
		}()
		out = f
	}
	prettyOpts := diagfmt.PrettyOpts{Color: useColor(cmd, os.Stderr), Context: 2}

	if !dir {
		result, err := driver.Parse(cmd.Context(), target, cc.maxDiagnostics)
		if err != nil {
			return fmt.Errorf("parsing failed: %w", err)
		}
		if result.Bag.Len() > 0 {
			diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, prettyOpts)
		}
		return writeTree(out, result.Builder, result.FileID, result.FileSet)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	fs, results, err := driver.ParseDir(cmd.Context(), target, driver.DirOptions{
		Config:         cc.Config,
		MaxDiagnostics: cc.maxDiagnostics,
		Jobs:           jobs,
	})
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	// Результаты уже отсортированы по пути
	merged := diag.NewBag(0)
	for _, r := range results {
		merged.Merge(r.Bag)
	}
	if merged.Len() > 0 {
		diagfmt.Pretty(os.Stderr, merged, fs, prettyOpts)
	}

	headers := (format == "pretty" || format == "tree") && !cc.quiet
	for idx, r := range results {
		if r.Builder == nil {
			continue
		}
		if headers {
			display := fs.Get(r.FileID).FormatPath("auto", fs.BaseDir())
			if idx > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s ==\n", display)
		}
		if err := writeTree(out, r.Builder, r.ASTFile, fs); err != nil {
			return err
		}
	}
	return nil
}
