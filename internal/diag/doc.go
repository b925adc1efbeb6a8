// Package diag defines the diagnostic model shared by the lexer, the parser
// and the driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with stable string form
//     such as LEX1001 or SYN2002.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary span: the canonical source.Span pointing to the issue.
//   - Notes: optional secondary spans/messages for additional context.
//   - Fixes: optional Fix records describing how to address the problem.
//
// Notes should be used sparingly: each note must add new context (e.g. "block
// opened here") rather than repeating the diagnostic message.
//
// # Fix suggestions
//
// Fix is a titled list of FixEdit values. Each edit replaces the bytes of its
// span with NewText; an empty span is an insertion. internal/fix applies them.
//
// # Emitting diagnostics
//
// Phases use a diag.Reporter to decouple emission from storage. The parser
// builds a ReportBuilder via ReportError and chains WithNote / WithFix before
// calling Emit. BagReporter aggregates diagnostics into a Bag, which supports
// sorting, deduplication and a capacity limit.
//
// Package diag does not perform any formatting beyond the stable one-line
// forms in golden.go. Rendering lives in internal/diagfmt.
package diag
