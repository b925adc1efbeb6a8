package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"

	"moltree/internal/source"
)

// LSP columns count UTF-16 code units; offsets in the tree are bytes.

func unitsOf(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// utf16Len counts the code units of s. A rune cut short at the end of s is
// not counted.
func utf16Len(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if !utf8.FullRuneInString(s[i:]) {
			break
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		n += unitsOf(r)
		i += size
	}
	return n
}

// utf16Prefix returns how many bytes of line make up its first units code
// units, never splitting a surrogate pair.
func utf16Prefix(line string, units int) int {
	i := 0
	for i < len(line) && units > 0 {
		r, size := utf8.DecodeRuneInString(line[i:])
		if units -= unitsOf(r); units < 0 {
			break
		}
		i += size
	}
	return i
}

func toUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](max(n, 0))
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// lineRange returns the byte range of the 0-based line, without the newline.
func lineRange(file *source.File, line int) (start, end int) {
	if line > 0 {
		start = int(file.LineIdx[line-1]) + 1
	}
	end = len(file.Content)
	if line < len(file.LineIdx) {
		end = int(file.LineIdx[line])
	}
	return start, max(start, end)
}

func offsetForPositionInFile(file *source.File, pos position) uint32 {
	if file == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line > len(file.LineIdx) {
		return toUint32(len(file.Content))
	}
	start, end := lineRange(file, pos.Line)
	return toUint32(start + utf16Prefix(string(file.Content[start:end]), pos.Character))
}

func positionForOffsetInFile(file *source.File, offset uint32) position {
	if file == nil {
		return position{}
	}
	off := min(int(offset), len(file.Content))
	line := lineForOffset(file, toUint32(off))
	start, _ := lineRange(file, line)
	start = min(start, off)
	return position{Line: line, Character: utf16Len(string(file.Content[start:off]))}
}

func rangeForSpan(file *source.File, span source.Span) lspRange {
	if file == nil {
		return lspRange{}
	}
	return lspRange{
		Start: positionForOffsetInFile(file, span.Start),
		End:   positionForOffsetInFile(file, span.End),
	}
}

// lineForOffset is the 0-based line holding offset; a newline belongs to
// the line it ends.
func lineForOffset(file *source.File, offset uint32) int {
	if file == nil {
		return 0
	}
	return sort.Search(len(file.LineIdx), func(i int) bool { return file.LineIdx[i] >= offset })
}
