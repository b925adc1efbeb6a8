package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"moltree/internal/fix"
	"moltree/internal/observ"
	"moltree/internal/version"
)

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		ok   bool
	}{
		{"", uiModeAuto, true},
		{"AUTO", uiModeAuto, true},
		{" on ", uiModeOn, true},
		{"off", uiModeOff, true},
		{"sometimes", "", false},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatal("explicit ui modes ignored")
	}
}

func TestTreeWriterFor(t *testing.T) {
	for _, f := range []string{"pretty", "tree", "json", "msgpack"} {
		if w, err := treeWriterFor(f); err != nil || w == nil {
			t.Errorf("format %q rejected: %v", f, err)
		}
	}
	if _, err := treeWriterFor("xml"); err == nil {
		t.Fatal("unknown format accepted")
	}
}

func TestPrintTimingsSumsPhases(t *testing.T) {
	var buf bytes.Buffer
	printTimings(&buf, "diagnose", 2, observ.Report{
		TotalMS: 6,
		Phases: []observ.PhaseReport{
			{Name: "parse", DurationMS: 1},
			{Name: "load_file", DurationMS: 3},
			{Name: "parse", DurationMS: 1},
		},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "diagnose: 2 file(s), 6.0 ms") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "load_file") || !strings.Contains(lines[2], "2.00 ms") {
		t.Errorf("phases not summed and sorted:\n%s", buf.String())
	}
}

func TestReportApplyResult(t *testing.T) {
	var buf bytes.Buffer
	res := &fix.ApplyResult{
		Applied:     []fix.AppliedFix{{ID: "SYN2002-1-0-0", Title: "insert `}`", PrimaryPath: "app.view.tree", EditCount: 1}},
		FileChanges: []fix.FileChange{{Path: "app.view.tree", EditCount: 1}},
	}
	if err := reportApplyResult(&buf, res, nil, false); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Applied 1 fix(es)", "SYN2002-1-0-0", "Updated files:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := reportApplyResult(&buf, res, nil, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Would update:") || strings.Contains(buf.String(), "Updated files:") {
		t.Errorf("dry run must not claim written files:\n%s", buf.String())
	}

	buf.Reset()
	if err := reportApplyResult(&buf, &fix.ApplyResult{}, fix.ErrNoFixes, false); err != nil {
		t.Fatalf("ErrNoFixes must be reported, not returned: %v", err)
	}
	if !strings.Contains(buf.String(), "No applicable fixes") {
		t.Errorf("output: %q", buf.String())
	}

	boom := errors.New("boom")
	if err := reportApplyResult(&buf, &fix.ApplyResult{}, boom, false); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestVersionFields(t *testing.T) {
	cmd := &cobra.Command{Use: "version"}
	cmd.Flags().Bool("full", false, "")
	cmd.Flags().Bool("hash", false, "")
	cmd.Flags().Bool("message", false, "")
	cmd.Flags().Bool("date", false, "")
	if err := cmd.Flags().Parse([]string{"--hash", "--date"}); err != nil {
		t.Fatal(err)
	}
	fields, err := versionFields(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if fields != (version.Fields{Hash: true, Date: true}) {
		t.Errorf("fields = %+v", fields)
	}

	// флаг не зарегистрирован: ошибка не должна теряться
	bare := &cobra.Command{Use: "version"}
	bare.Flags().Bool("full", false, "")
	if _, err := versionFields(bare); err == nil {
		t.Fatal("missing flag must surface as an error")
	}
}
