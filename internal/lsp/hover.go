package lsp

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"moltree/internal/ast"
	"moltree/internal/token"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc := s.documentFor(params.TextDocument.URI)
	if doc == nil {
		return s.sendResponse(msg.ID, nil)
	}
	result := buildHover(doc, s.index, params.Position)
	if result == nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, result)
}

func buildHover(doc *document, index *workspaceIndex, pos position) *hover {
	off := doc.offsetAt(pos)
	tok, ok := doc.tokenAt(off)
	if !ok || tok.Kind == token.LBrace || tok.Kind == token.RBrace {
		return nil
	}
	chain := doc.stmtPath(off)
	if len(chain) == 0 {
		return nil
	}
	stmts := doc.builder.Stmts
	id := chain[len(chain)-1]
	component := ""
	if top, ok := stmts.Definition(chain[0]); ok {
		component = top.Name.Name
	}

	var text string
	if def, ok := stmts.Definition(id); ok {
		switch tok.Span {
		case def.Name.Span:
			if len(chain) == 1 {
				text = fmt.Sprintf("**component** `%s`", def.Name.Name)
				if def.Type.IsValid() {
					text += fmt.Sprintf("\n\nextends `%s`", def.Type.Name)
				}
				if n := len(index.properties(def.Name.Name)); n > 0 {
					text += fmt.Sprintf("\n\n%d known properties", n)
				}
			} else {
				text = fmt.Sprintf("**property** `%s` of `%s`", def.Name.Name, component)
				if def.Type.IsValid() {
					text += fmt.Sprintf("\n\ninstance of `%s`", def.Type.Name)
				}
			}
		case def.Type.Span:
			text = componentHover(index, def.Type.Name)
		}
	} else if prop, ok := stmts.Property(id); ok {
		switch tok.Span {
		case prop.OpSpan:
			text = fmt.Sprintf("`%s` %s", prop.Op, prop.Op.Describe())
		case prop.Prop.Span:
			text = fmt.Sprintf("**property** `%s` (%s)", prop.Prop.Name, strings.ToLower(prop.Op.Describe()))
			if component != "" {
				text += fmt.Sprintf("\n\nof `%s`", component)
			}
		case prop.Value.Span:
			text = valueHover(index, prop.Value)
		}
	}
	if text == "" {
		return nil
	}
	r := doc.rangeOf(tok.Span)
	return &hover{
		Contents: markupContent{Kind: "markdown", Value: text},
		Range:    &r,
	}
}

func componentHover(index *workspaceIndex, name string) string {
	text := fmt.Sprintf("**component** `%s`", name)
	if loc, ok := index.definition(name); ok {
		text += fmt.Sprintf("\n\ndefined in `%s`", filepath.Base(uriToPath(loc.URI)))
	}
	return text
}

func valueHover(index *workspaceIndex, v ast.Value) string {
	switch v.Kind {
	case ast.ValueString:
		return "string literal"
	case ast.ValueNumber:
		return "number literal"
	case ast.ValueIdent:
		if strings.HasPrefix(v.Text, "$") {
			return componentHover(index, v.Text)
		}
		switch v.Text {
		case "null", "true", "false":
			return fmt.Sprintf("`%s`", v.Text)
		}
		return fmt.Sprintf("identifier `%s`", v.Text)
	default:
		return ""
	}
}
