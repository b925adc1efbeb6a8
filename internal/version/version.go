// Package version holds the build fingerprint of the moltree CLI and renders
// it for the `version` command. The variables are overridden at build time
// via -ldflags "-X moltree/internal/version.Version=...".
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

const (
	toolName = "moltree"
	tagline  = "trees of views, parsed"
	unknown  = "unknown"
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
	labelColor = color.New(color.Faint)
)

// Info is a trimmed snapshot of the build variables.
type Info struct {
	Version    string
	GitCommit  string
	GitMessage string
	BuildDate  string
}

// Fields selects the optional lines of the report.
type Fields struct {
	Hash    bool
	Message bool
	Date    bool
}

// All enables every optional field.
func All() Fields { return Fields{Hash: true, Message: true, Date: true} }

func (f Fields) any() bool { return f.Hash || f.Message || f.Date }

// Collect reads the build variables.
func Collect() Info {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Info{
		Version:    v,
		GitCommit:  strings.TrimSpace(GitCommit),
		GitMessage: strings.TrimSpace(GitMessage),
		BuildDate:  strings.TrimSpace(BuildDate),
	}
}

// Colored paints the major.minor.patch parts of v; anything after the
// patch number (a pre-release or build suffix) stays plain.
func Colored(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return v
	}
	patch, suffix := parts[2], ""
	if i := strings.IndexAny(patch, "-+"); i >= 0 {
		patch, suffix = patch[:i], patch[i:]
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(patch) + suffix
}

// WritePretty prints the human report.
func WritePretty(w io.Writer, info Info, fields Fields) error {
	if _, err := fmt.Fprintf(w, "%s %s: %s\n", toolName, Colored(info.Version), tagline); err != nil {
		return err
	}
	lines := []struct {
		on    bool
		label string
		value string
	}{
		{fields.Hash, "commit: ", info.GitCommit},
		{fields.Message, "message:", info.GitMessage},
		{fields.Date, "built:  ", info.BuildDate},
	}
	for _, l := range lines {
		if !l.on {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", labelColor.Sprint(l.label), orUnknown(l.value)); err != nil {
			return err
		}
	}
	if !fields.any() {
		_, err := fmt.Fprintln(w, "set --hash, --message, --date, or --full for more build trivia")
		return err
	}
	return nil
}

type payload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// WriteJSON prints the report as an indented JSON object. Unselected fields
// are omitted; selected but unset ones read "unknown".
func WriteJSON(w io.Writer, info Info, fields Fields) error {
	p := payload{Tool: toolName, Version: info.Version, Tagline: tagline}
	if fields.Hash {
		p.GitCommit = orUnknown(info.GitCommit)
	}
	if fields.Message {
		p.GitMessage = orUnknown(info.GitMessage)
	}
	if fields.Date {
		p.BuildDate = orUnknown(info.BuildDate)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
