package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"moltree/internal/driver"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Format view.tree source files",
	Long: `Format prints view.tree sources in canonical layout. Without --check or
--write the formatted text goes to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list files that are not formatted and fail")
	fmtCmd.Flags().BoolP("write", "w", false, "rewrite files in place")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}
	if check && write {
		return fmt.Errorf("fmt: --check cannot be used with --write")
	}

	cc, err := loadCommandConfig(cmd, args[0])
	if err != nil {
		return err
	}
	opt, err := cc.formatOptions()
	if err != nil {
		return err
	}

	results, err := driver.FormatPaths(cmd.Context(), args, driver.FormatOptions{
		Check:          check,
		Write:          write,
		MaxDiagnostics: cc.maxDiagnostics,
		Options:        opt,
		Config:         cc.Config,
	})
	if errors.Is(err, driver.ErrNoSourceFiles) {
		return fmt.Errorf("fmt: no view.tree files in %v", args)
	}
	if err != nil {
		return err
	}

	var hasErrors, hasChanges bool
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %v\n", res.Err)
			continue
		}
		switch {
		case check:
			if res.Changed {
				hasChanges = true
				if !cc.quiet {
					fmt.Fprintln(out, res.Path)
				}
			}
		case write:
			if res.Changed && !cc.quiet {
				fmt.Fprintf(out, "reformatted %s\n", res.Path)
			}
		default:
			if _, err := out.Write(res.Formatted); err != nil {
				return err
			}
		}
	}

	if hasErrors {
		return fmt.Errorf("fmt: failed to format some files")
	}
	if check && hasChanges {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}
