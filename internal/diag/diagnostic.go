package diag

import (
	"fmt"

	"moltree/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit replaces the bytes covered by Span with NewText.
// An empty Span inserts NewText at Span.Start.
type FixEdit struct {
	Span    source.Span
	NewText string
}

type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Error makes a diagnostic usable as a Go error value.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code.ID(), d.Message)
}
