package diag

import "moltree/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Notes:    nil,
		Fixes:    nil,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}

// Insert builds an edit that inserts text at off.
func Insert(file source.FileID, off uint32, text string) FixEdit {
	return FixEdit{Span: source.Span{File: file, Start: off, End: off}, NewText: text}
}

// WithFixSuggestion appends a prepared fix.
func (d Diagnostic) WithFixSuggestion(f Fix) Diagnostic {
	d.Fixes = append(d.Fixes, f)
	return d
}
