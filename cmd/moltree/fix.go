package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"moltree/internal/driver"
	"moltree/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.view.tree>",
	Short: "Apply suggested fixes to a source file",
	Long:  "Run diagnostics, then apply the fixes they suggest (for example closing an unclosed block).",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every non-conflicting fix")
	fixCmd.Flags().String("id", "", "apply the fix with this identifier")
	fixCmd.Flags().Bool("dry-run", false, "print the fixed text instead of writing the file")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if targetID != "" && applyAll {
		return fmt.Errorf("--id cannot be combined with --all")
	}

	opts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, DryRun: dryRun}
	switch {
	case targetID != "":
		opts.Mode = fix.ApplyModeID
		opts.TargetID = targetID
	case applyAll:
		opts.Mode = fix.ApplyModeAll
	}

	if dir, err := isDir(targetPath); err != nil {
		return fmt.Errorf("fix: %w", err)
	} else if dir {
		return fmt.Errorf("fix: %s is a directory; fixes are applied one file at a time", targetPath)
	}
	cc, err := loadCommandConfig(cmd, targetPath)
	if err != nil {
		return err
	}

	result, err := driver.Diagnose(cmd.Context(), targetPath, driver.DiagnoseOptions{
		MaxDiagnostics: cc.maxDiagnostics,
	})
	if err != nil {
		return fmt.Errorf("fix: diagnose failed: %w", err)
	}
	result.Bag.Sort()
	res, applyErr := fix.Apply(result.FileSet, result.Bag.Items(), opts)
	out := cmd.OutOrStdout()
	report := out
	if dryRun {
		// исправленный текст идёт в stdout, отчёт уводим в stderr
		report = cmd.ErrOrStderr()
	}
	if err := reportApplyResult(report, res, applyErr, dryRun); err != nil {
		return err
	}
	if dryRun && res != nil {
		for _, change := range res.FileChanges {
			if _, err := out.Write(change.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

func reportApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		fmt.Fprintf(out, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s]: %s (%d edits)\n", item.Title, item.ID, location, item.EditCount)
		}
	}
	if len(res.FileChanges) > 0 {
		heading := "Updated files:"
		if dryRun {
			heading = "Would update:"
		}
		fmt.Fprintln(out, heading)
		for _, change := range res.FileChanges {
			fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}
