package lsp

import (
	"encoding/json"

	"moltree/internal/ast"
)

// LSP SymbolKind values.
const (
	symbolKindClass    = 5
	symbolKindProperty = 7
)

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc := s.documentFor(params.TextDocument.URI)
	if doc == nil {
		return s.sendResponse(msg.ID, []documentSymbol{})
	}
	return s.sendResponse(msg.ID, buildDocumentSymbols(doc))
}

func buildDocumentSymbols(doc *document) []documentSymbol {
	f := doc.builder.Files.Get(doc.astFile)
	if f == nil {
		return []documentSymbol{}
	}
	return symbolsFor(doc, f.Stmts)
}

func symbolsFor(doc *document, ids []ast.StmtID) []documentSymbol {
	out := make([]documentSymbol, 0, len(ids))
	for _, id := range ids {
		if def, ok := doc.builder.Stmts.Definition(id); ok {
			if !def.Name.IsValid() {
				continue
			}
			sym := documentSymbol{
				Name:           def.Name.Name,
				Detail:         def.Type.Name,
				Kind:           symbolKindClass,
				Range:          doc.rangeOf(def.Span),
				SelectionRange: doc.rangeOf(def.Name.Span),
			}
			if len(def.Children) > 0 {
				sym.Children = symbolsFor(doc, def.Children)
			}
			out = append(out, sym)
			continue
		}
		prop, ok := doc.builder.Stmts.Property(id)
		if !ok || !prop.Prop.IsValid() {
			continue
		}
		detail := prop.Op.String()
		if prop.Value.IsPresent() {
			detail += " " + prop.Value.Text
		}
		out = append(out, documentSymbol{
			Name:           prop.Prop.Name,
			Detail:         detail,
			Kind:           symbolKindProperty,
			Range:          doc.rangeOf(prop.Span),
			SelectionRange: doc.rangeOf(prop.Prop.Span),
		})
	}
	return out
}
