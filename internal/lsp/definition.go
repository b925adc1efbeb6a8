package lsp

import (
	"encoding/json"

	"moltree/internal/token"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc := s.documentFor(params.TextDocument.URI)
	if doc == nil {
		return s.sendResponse(msg.ID, []location{})
	}
	return s.sendResponse(msg.ID, buildDefinition(doc, s.index, params.Position))
}

// buildDefinition resolves a `$component` under the cursor to the top-level
// definition that declares it.
func buildDefinition(doc *document, index *workspaceIndex, pos position) []location {
	tok, ok := doc.tokenAt(doc.offsetAt(pos))
	if !ok || tok.Kind != token.Ident || !tok.HasSigil() {
		return []location{}
	}
	loc, ok := index.definition(tok.Text)
	if !ok {
		return []location{}
	}
	return []location{loc}
}
