package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"moltree/internal/format"
	"moltree/internal/project"
)

// commandConfig is the manifest configuration for a target path with the
// command-line overrides applied.
type commandConfig struct {
	project.Config
	manifest       *project.Manifest // nil без moltree.toml
	maxDiagnostics int
	quiet          bool
	timings        bool
}

// loadCommandConfig finds moltree.toml above target (a file or directory).
// An explicit --max-diagnostics wins over the manifest.
func loadCommandConfig(cmd *cobra.Command, target string) (*commandConfig, error) {
	pf := cmd.Root().PersistentFlags()
	maxDiagnostics, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := pf.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	startDir := target
	if st, statErr := os.Stat(target); statErr == nil && !st.IsDir() {
		startDir = filepath.Dir(target)
	}
	manifest, found, err := project.Load(startDir)
	if err != nil {
		return nil, err
	}

	cc := &commandConfig{
		Config:         project.Defaults(),
		maxDiagnostics: maxDiagnostics,
		quiet:          quiet,
		timings:        timings,
	}
	if found {
		cc.Config = manifest.Config
		cc.manifest = manifest
		if !pf.Changed("max-diagnostics") && manifest.Config.Diagnostics.Max > 0 {
			cc.maxDiagnostics = manifest.Config.Diagnostics.Max
		}
	}
	return cc, nil
}

func (cc *commandConfig) formatOptions() (format.Options, error) {
	return format.ParseIndent(cc.Format.Indent)
}

func isDir(path string) (bool, error) {
	st, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return st.IsDir(), nil
}
