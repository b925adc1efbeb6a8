package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"moltree/internal/ast"
	"moltree/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

// treeBox is a rendered subtree: rows padded to width, anchor is the column
// the parent connector points at.
type treeBox struct {
	rows   []string
	width  int
	anchor int
}

// buildFileTreeNode constructs a treeNode for the file identified by fileID:
// the root is labelled with the file path (or "File") and gets one child per
// top-level statement.
func buildFileTreeNode(builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) *treeNode {
	file := builder.Files.Get(fileID)
	if file == nil {
		return &treeNode{label: fmt.Sprintf("File[%d]: <nil>", fileID)}
	}
	header := "File"
	if fs != nil {
		if srcFile := fs.Get(file.Span.File); srcFile != nil {
			header = srcFile.FormatPath("auto", fs.BaseDir())
		}
	}
	root := &treeNode{label: header}
	for _, stmtID := range file.Stmts {
		root.children = append(root.children, buildStmtTreeNode(builder, stmtID))
	}
	return root
}

// buildStmtTreeNode labels a definition as "name: type" with its children
// below it, and a property as "op prop value".
func buildStmtTreeNode(builder *ast.Builder, id ast.StmtID) *treeNode {
	stmt := builder.Stmts.Get(id)
	if stmt == nil {
		return &treeNode{label: "<nil>"}
	}
	switch stmt.Kind {
	case ast.StmtDefinition:
		def, _ := builder.Stmts.Definition(id)
		node := &treeNode{label: definitionLabel(def)}
		for _, child := range def.Children {
			node.children = append(node.children, buildStmtTreeNode(builder, child))
		}
		return node
	case ast.StmtProperty:
		prop, _ := builder.Stmts.Property(id)
		return &treeNode{label: propertyLabel(prop)}
	}
	return &treeNode{label: stmt.Kind.String()}
}

func definitionLabel(def *ast.DefinitionStmt) string {
	typ := def.Type.Name
	if typ == "" {
		typ = "<missing>"
	}
	return def.Name.Name + ": " + typ
}

func propertyLabel(prop *ast.PropertyStmt) string {
	name := prop.Prop.Name
	if name == "" {
		name = "<missing>"
	}
	if prop.Value.IsPresent() {
		return fmt.Sprintf("%s %s %s", prop.Op, name, prop.Value.Text)
	}
	return fmt.Sprintf("%s %s", prop.Op, name)
}

// FormatASTTree draws the file as a top-down ASCII tree.
func FormatASTTree(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	box := layoutTree(buildFileTreeNode(builder, fileID, fs))
	for _, row := range box.rows {
		if _, err := fmt.Fprintln(w, strings.TrimRight(row, " ")); err != nil {
			return err
		}
	}
	return nil
}

// siblingGap is the number of blank columns between neighbouring subtrees.
const siblingGap = 3

// layoutTree places the children side by side and centres the label over
// the anchors of the outermost children. The connector row below the label
// leans each slash toward it.
func layoutTree(node *treeNode) treeBox {
	labelWidth := runewidth.StringWidth(node.label)
	if len(node.children) == 0 {
		return treeBox{rows: []string{node.label}, width: labelWidth, anchor: labelWidth / 2}
	}

	kids := make([]treeBox, len(node.children))
	anchors := make([]int, len(node.children))
	height, x := 0, 0
	for i, child := range node.children {
		if i > 0 {
			x += siblingGap
		}
		kids[i] = layoutTree(child)
		anchors[i] = x + kids[i].anchor
		x += kids[i].width
		height = max(height, len(kids[i].rows))
	}

	// метка шире детей слева: сдвигаем детей вправо
	labelAt := (anchors[0]+anchors[len(anchors)-1])/2 - labelWidth/2
	indent := 0
	if labelAt < 0 {
		indent, labelAt = -labelAt, 0
	}
	anchor := labelAt + labelWidth/2
	width := max(x+indent, labelAt+labelWidth)

	rows := make([]string, 0, height+2)
	rows = append(rows, padCells(strings.Repeat(" ", labelAt)+node.label, width))

	connector := []byte(strings.Repeat(" ", width))
	connector[anchor] = '|'
	for _, a := range anchors {
		a += indent
		switch {
		case a < anchor:
			connector[a] = '/'
		case a > anchor:
			connector[a] = '\\'
		}
	}
	rows = append(rows, string(connector))

	for r := range height {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", indent))
		for i, kid := range kids {
			if i > 0 {
				sb.WriteString(strings.Repeat(" ", siblingGap))
			}
			row := ""
			if r < len(kid.rows) {
				row = kid.rows[r]
			}
			sb.WriteString(padCells(row, kid.width))
		}
		rows = append(rows, padCells(sb.String(), width))
	}
	return treeBox{rows: rows, width: width, anchor: anchor}
}

// padCells pads s with spaces up to width terminal cells.
func padCells(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
