package lsp

import "strings"

// applyChanges applies didChange events in order. An event without a range
// replaces the whole text; ranged events are clamped to the current text.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := min(max(offsetForPosition(text, change.Range.Start), 0), len(text))
		end := min(max(offsetForPosition(text, change.Range.End), start), len(text))
		var b strings.Builder
		b.Grow(len(text) - (end - start) + len(change.Text))
		b.WriteString(text[:start])
		b.WriteString(change.Text)
		b.WriteString(text[end:])
		text = b.String()
	}
	return text
}

// offsetForPosition maps an LSP position (UTF-16 columns) to a byte offset.
// A column past the end of the line stops at the line break.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := 0
	for range pos.Line {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			return len(text)
		}
		i += nl + 1
	}
	line := text[i:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	return i + utf16Prefix(line, pos.Character)
}
