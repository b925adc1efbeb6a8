package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moltree/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show moltree build fingerprints",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	fields, err := versionFields(cmd)
	if err != nil {
		return err
	}

	info := version.Collect()
	switch strings.ToLower(format) {
	case "pretty":
		return version.WritePretty(cmd.OutOrStdout(), info, fields)
	case "json":
		return version.WriteJSON(cmd.OutOrStdout(), info, fields)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func versionFields(cmd *cobra.Command) (version.Fields, error) {
	flags := cmd.Flags()
	full, err := flags.GetBool("full")
	if err != nil || full {
		return version.All(), err
	}
	var fields version.Fields
	for name, dst := range map[string]*bool{
		"hash":    &fields.Hash,
		"message": &fields.Message,
		"date":    &fields.Date,
	} {
		if *dst, err = flags.GetBool(name); err != nil {
			return version.Fields{}, err
		}
	}
	return fields, nil
}
