package lsp

import (
	"encoding/json"
	"sort"

	"moltree/internal/ast"
)

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc := s.documentFor(params.TextDocument.URI)
	if doc == nil {
		return s.sendResponse(msg.ID, []foldingRange{})
	}
	return s.sendResponse(msg.ID, buildFoldingRanges(doc))
}

// buildFoldingRanges folds every block spanning more than one line and
// every run of two or more own-line comments.
func buildFoldingRanges(doc *document) []foldingRange {
	ranges := make([]foldingRange, 0, 8)
	ast.Walk(doc.builder, doc.astFile, func(id, parent ast.StmtID, depth int) bool {
		def, ok := doc.builder.Stmts.Definition(id)
		if !ok || !def.HasBlock {
			return true
		}
		start := lineForOffset(doc.file, def.Name.Span.Start)
		end := lineForOffset(doc.file, def.Span.End)
		if def.Closed {
			// строка с `}` остаётся видимой
			end = lineForOffset(doc.file, def.RBrace.Start) - 1
		}
		if end > start {
			ranges = append(ranges, foldingRange{StartLine: start, EndLine: end})
		}
		return true
	})

	if f := doc.builder.Files.Get(doc.astFile); f != nil {
		runStart, runEnd := -1, -1
		flush := func() {
			if runStart >= 0 && runEnd > runStart {
				ranges = append(ranges, foldingRange{StartLine: runStart, EndLine: runEnd, Kind: "comment"})
			}
			runStart, runEnd = -1, -1
		}
		for _, c := range f.Comments {
			if !ownLine(doc.text, c.Span.Start) {
				flush()
				continue
			}
			line := lineForOffset(doc.file, c.Span.Start)
			if runStart >= 0 && line == runEnd+1 {
				runEnd = line
				continue
			}
			flush()
			runStart, runEnd = line, line
		}
		flush()
	}

	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].StartLine == ranges[j].StartLine {
			return ranges[i].EndLine < ranges[j].EndLine
		}
		return ranges[i].StartLine < ranges[j].StartLine
	})
	return ranges
}

// ownLine reports whether only blanks precede off on its line.
func ownLine(text string, off uint32) bool {
	for i := min(int(off), len(text)) - 1; i >= 0; i-- {
		switch text[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}
