package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"moltree/internal/logging"
	"moltree/internal/lsp"
	"moltree/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the view.tree language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().String("log-file", "", "append JSON log records to file")
	lspCmd.Flags().String("log-level", "info", "log level (debug|info|warn|error)")
	lspCmd.Flags().Duration("debounce", 0, "delay before diagnostics are published (0=default)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return err
	}
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	// stdout занят протоколом, текстовый лог идёт в stderr
	logger, closer, err := logging.New(logging.Options{
		Level:  logLevel,
		Output: os.Stderr,
		File:   logFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := lsp.ServerOptions{
		Debounce: debounce,
		Logger:   logger,
		Version:  version.Collect().Version,
	}
	if cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		limit, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		if err != nil {
			return err
		}
		opts.MaxDiagnostics = limit
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, opts)
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
