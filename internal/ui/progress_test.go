package ui

import (
	"fmt"
	"strings"
	"testing"

	"moltree/internal/driver"
)

func newTestModel(files ...string) *progressModel {
	return NewProgressModel("diag", files, nil).(*progressModel)
}

func TestApplyEventTracksStatuses(t *testing.T) {
	m := newTestModel("a.view.tree")
	m.applyEvent(driver.Event{Stage: driver.StageDiagnose, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "a.view.tree", Stage: driver.StageDiagnose, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "b.view.tree", Stage: driver.StageDiagnose, Status: driver.StatusError})

	if m.stage != "diagnosing" {
		t.Fatalf("stage = %q", m.stage)
	}
	if len(m.rows) != 2 {
		t.Fatalf("unknown files must be appended, got %d rows", len(m.rows))
	}
	if m.rows[0].label() != "diagnosing" || m.rows[1].label() != "error" {
		t.Fatalf("statuses = %q, %q", m.rows[0].label(), m.rows[1].label())
	}
	finished, failed := m.counts()
	if finished != 1 || failed != 1 {
		t.Fatalf("counts = %d, %d", finished, failed)
	}
}

func TestViewLimitsRows(t *testing.T) {
	files := make([]string, 0, maxRows+4)
	for i := range maxRows + 4 {
		files = append(files, fmt.Sprintf("f%02d.view.tree", i))
	}
	m := newTestModel(files...)
	last := files[len(files)-1]
	m.applyEvent(driver.Event{File: last, Stage: driver.StageParse, Status: driver.StatusError})

	view := m.View()
	if !strings.Contains(view, last) {
		t.Fatalf("file with errors must stay visible:\n%s", view)
	}
	if !strings.Contains(view, "and 4 more") {
		t.Fatalf("missing overflow line:\n%s", view)
	}
	if !strings.Contains(view, "1/20 files, 1 with errors") {
		t.Fatalf("missing summary:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a-very-long-path.view.tree", 10); got != "a-very-..." {
		t.Fatalf("truncate = %q", got)
	}
}
