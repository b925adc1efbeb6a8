package ast

// NodeKind tags an exported node.
type NodeKind string

const (
	NodeDefinition NodeKind = "definition"
	NodeProperty   NodeKind = "property"
)

// Range is a byte range inside the exported file.
type Range struct {
	Start uint32 `json:"start" msgpack:"start"`
	End   uint32 `json:"end" msgpack:"end"`
}

// SourceFile is a self-contained pointer tree built from the arenas.
// It owns its nodes and is what library callers and tree dumps receive.
type SourceFile struct {
	Path       string        `json:"path,omitempty" msgpack:"path,omitempty"`
	Statements []*Node       `json:"statements" msgpack:"statements"`
	Comments   []CommentNode `json:"comments,omitempty" msgpack:"comments,omitempty"`
}

// Node is either a definition (Name, Type, Children) or a property
// (Op, Prop, Value).
type Node struct {
	Kind NodeKind `json:"kind" msgpack:"kind"`
	Span Range    `json:"span" msgpack:"span"`

	Name     string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Type     string  `json:"type,omitempty" msgpack:"type,omitempty"`
	HasBlock bool    `json:"has_block,omitempty" msgpack:"has_block,omitempty"`
	Children []*Node `json:"children,omitempty" msgpack:"children,omitempty"`

	Op    string     `json:"op,omitempty" msgpack:"op,omitempty"`
	Prop  string     `json:"prop,omitempty" msgpack:"prop,omitempty"`
	Value *ValueNode `json:"value,omitempty" msgpack:"value,omitempty"`
}

type ValueNode struct {
	Kind string `json:"kind" msgpack:"kind"`
	Text string `json:"text" msgpack:"text"`
}

type CommentNode struct {
	Span Range  `json:"span" msgpack:"span"`
	Text string `json:"text" msgpack:"text"`
}

// Export materialises file fileID from the builder's arenas.
func Export(b *Builder, fileID FileID) *SourceFile {
	f := b.Files.Get(fileID)
	if f == nil {
		return &SourceFile{Statements: []*Node{}}
	}
	out := &SourceFile{Statements: make([]*Node, 0, len(f.Stmts))}
	for _, id := range f.Stmts {
		if n := exportStmt(b, id); n != nil {
			out.Statements = append(out.Statements, n)
		}
	}
	for _, c := range f.Comments {
		out.Comments = append(out.Comments, CommentNode{
			Span: Range{Start: c.Span.Start, End: c.Span.End},
			Text: c.Text,
		})
	}
	return out
}

func exportStmt(b *Builder, id StmtID) *Node {
	stmt := b.Stmts.Get(id)
	if stmt == nil {
		return nil
	}
	n := &Node{Span: Range{Start: stmt.Span.Start, End: stmt.Span.End}}
	switch stmt.Kind {
	case StmtDefinition:
		def, _ := b.Stmts.Definition(id)
		n.Kind = NodeDefinition
		n.Name = def.Name.Name
		n.Type = def.Type.Name
		n.HasBlock = def.HasBlock
		for _, child := range def.Children {
			if c := exportStmt(b, child); c != nil {
				n.Children = append(n.Children, c)
			}
		}
	case StmtProperty:
		prop, _ := b.Stmts.Property(id)
		n.Kind = NodeProperty
		n.Op = prop.Op.String()
		n.Prop = prop.Prop.Name
		if prop.Value.IsPresent() {
			n.Value = &ValueNode{Kind: prop.Value.Kind.String(), Text: prop.Value.Text}
		}
	}
	return n
}

// Walk visits every node depth-first in source order. Returning false from
// fn skips the node's children.
func (f *SourceFile) Walk(fn func(n *Node, depth int) bool) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(f.Statements, 0)
}
