package lsp

import (
	"encoding/json"
	"strings"

	"moltree/internal/ast"
	"moltree/internal/token"
)

type completionContext uint8

const (
	ctxComponentName completionContext = iota
	ctxComponentExtends
	ctxPropertyBinding
	ctxPropertyName
	ctxValue
)

func (c completionContext) String() string {
	switch c {
	case ctxComponentName:
		return "component_name"
	case ctxComponentExtends:
		return "component_extends"
	case ctxPropertyBinding:
		return "property_binding"
	case ctxPropertyName:
		return "property_name"
	case ctxValue:
		return "value"
	default:
		return "unknown"
	}
}

// LSP CompletionItemKind values.
const (
	completionItemKindValue    = 12
	completionItemKindClass    = 7
	completionItemKindProperty = 10
	completionItemKindOperator = 24
)

var completionTriggers = []string{"$", "_", " ", "\t"}

var propertyOperators = []ast.PropOp{ast.PropOpLeft, ast.PropOpBoth, ast.PropOpRight, ast.PropOpQuery}

var specialValues = []struct{ text, detail string }{
	{"null", "Null value"},
	{"true", "Boolean true"},
	{"false", "Boolean false"},
}

type stmtState uint8

const (
	stStart    stmtState = iota
	stDefName            // после имени определения
	stDefType            // после типа, блок не обязателен
	stOperator           // после оператора свойства
	stPropName           // после имени свойства, значение не обязательно
)

// grammarState tracks where in a statement the token stream stands.
type grammarState struct {
	state   stmtState
	pending string
	stack   []string // имена открытых определений, "" для лишних `{`
}

// step consumes tok and reports false when tok starts a new statement and
// has to be read again from stStart.
func (g *grammarState) step(tok token.Token) bool {
	switch g.state {
	case stStart:
		switch {
		case tok.Kind == token.Ident:
			g.pending = tok.Text
			g.state = stDefName
		case tok.Kind.IsOperator():
			g.state = stOperator
		case tok.Kind == token.LBrace:
			g.stack = append(g.stack, "")
		case tok.Kind == token.RBrace:
			if len(g.stack) > 0 {
				g.stack = g.stack[:len(g.stack)-1]
			}
		}
		return true
	case stDefName:
		g.state = stStart
		if tok.Kind == token.Ident {
			g.state = stDefType
			return true
		}
		return false
	case stDefType:
		g.state = stStart
		if tok.Kind == token.LBrace {
			g.stack = append(g.stack, g.pending)
			return true
		}
		return false
	case stOperator:
		g.state = stStart
		if tok.Kind == token.Ident {
			g.state = stPropName
			return true
		}
		return false
	default:
		// значение на следующей строке считается новым оператором
		g.state = stStart
		return tok.Kind.IsValue() && !leadingNewline(tok)
	}
}

// cursorContext replays the statement grammar over the tokens before off
// and returns the completion context together with the enclosing
// top-level component.
func cursorContext(doc *document, off uint32) (completionContext, string) {
	var (
		g        grammarState
		lastEnd  uint32
		anyToken bool
	)
	for _, tok := range doc.tokens {
		if tok.Kind == token.EOF {
			break
		}
		// набираемое слово под курсором не участвует
		if tok.Span.End > off || (tok.Span.End == off && tok.Kind == token.Ident) {
			break
		}
		for !g.step(tok) {
		}
		lastEnd = tok.Span.End
		anyToken = true
	}

	state := g.state
	if anyToken && (state == stDefType || state == stPropName) {
		between := doc.text[min(int(lastEnd), len(doc.text)):min(int(off), len(doc.text))]
		if strings.ContainsRune(between, '\n') {
			state = stStart
		}
	}

	component := ""
	if len(g.stack) > 0 {
		component = g.stack[0]
	}
	switch state {
	case stDefName, stDefType:
		return ctxComponentExtends, component
	case stOperator:
		return ctxPropertyBinding, component
	case stPropName:
		return ctxValue, component
	default:
		if len(g.stack) == 0 {
			return ctxComponentName, component
		}
		return ctxPropertyName, component
	}
}

func leadingNewline(tok token.Token) bool {
	for _, tr := range tok.Leading {
		if tr.Kind == token.TriviaNewline {
			return true
		}
	}
	return false
}

func buildCompletion(doc *document, index *workspaceIndex, pos position) completionList {
	off := doc.offsetAt(pos)
	ctx, component := cursorContext(doc, off)

	items := make([]completionItem, 0, 16)
	addComponents := func(prefix string) {
		for _, c := range index.components() {
			items = append(items, completionItem{
				Label:      c,
				Kind:       completionItemKindClass,
				InsertText: c,
				SortText:   prefix + c,
			})
		}
	}
	addProperties := func() {
		for _, p := range index.properties(component) {
			item := completionItem{
				Label:      p,
				Kind:       completionItemKindProperty,
				InsertText: p,
				SortText:   "1" + p,
			}
			if component != "" {
				item.Detail = "Property of " + component
			} else {
				item.SortText = "2" + p
			}
			items = append(items, item)
		}
	}

	switch ctx {
	case ctxComponentName, ctxComponentExtends:
		addComponents("1")
	case ctxPropertyName:
		for _, op := range propertyOperators {
			items = append(items, completionItem{
				Label:      op.String(),
				Kind:       completionItemKindOperator,
				Detail:     op.Describe(),
				InsertText: op.String(),
				SortText:   "0" + op.String(),
			})
		}
		addProperties()
	case ctxPropertyBinding:
		addProperties()
	case ctxValue:
		for _, v := range specialValues {
			items = append(items, completionItem{
				Label:      v.text,
				Kind:       completionItemKindValue,
				Detail:     v.detail,
				InsertText: v.text,
				SortText:   "2" + v.text,
			})
		}
		addComponents("3")
	}
	return completionList{Items: items}
}

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	doc := s.documentFor(params.TextDocument.URI)
	if doc == nil {
		return s.sendResponse(msg.ID, completionList{Items: []completionItem{}})
	}
	list := buildCompletion(doc, s.index, params.Position)
	s.log.Debug("completion", "uri", doc.uri, "items", len(list.Items))
	return s.sendResponse(msg.ID, list)
}
