package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"moltree/internal/ast"
	"moltree/internal/source"
)

// FormatASTPretty prints the tree as an indented outline with spans.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	file := builder.Files.Get(fileID)
	if file == nil {
		return fmt.Errorf("file not found")
	}

	header := "File"
	if fs != nil {
		if srcFile := fs.Get(file.Span.File); srcFile != nil {
			header = srcFile.FormatPath("auto", fs.BaseDir())
		}
	}
	fmt.Fprintf(w, "%s (span: %s)\n", header, formatSpan(file.Span, fs))
	formatStmtsPretty(w, builder, file.Stmts, fs, "")

	if len(file.Comments) > 0 {
		fmt.Fprintf(w, "Comments: %d\n", len(file.Comments))
	}
	return nil
}

func formatStmtsPretty(w io.Writer, builder *ast.Builder, ids []ast.StmtID, fs *source.FileSet, prefix string) {
	for i, id := range ids {
		branch, next := "├─ ", "│  "
		if i == len(ids)-1 {
			branch, next = "└─ ", "   "
		}
		stmt := builder.Stmts.Get(id)
		if stmt == nil {
			fmt.Fprintf(w, "%s%s<nil>\n", prefix, branch)
			continue
		}
		switch stmt.Kind {
		case ast.StmtDefinition:
			def, _ := builder.Stmts.Definition(id)
			block := ""
			switch {
			case def.HasBlock && def.Closed:
				block = " {}"
			case def.HasBlock:
				block = " {…"
			}
			fmt.Fprintf(w, "%s%sDefinition %s%s (span: %s)\n", prefix, branch, definitionLabel(def), block, formatSpan(stmt.Span, fs))
			formatStmtsPretty(w, builder, def.Children, fs, prefix+next)
		case ast.StmtProperty:
			prop, _ := builder.Stmts.Property(id)
			fmt.Fprintf(w, "%s%sProperty %s [%s] (span: %s)\n", prefix, branch, propertyLabel(prop), prop.Value.Kind, formatSpan(stmt.Span, fs))
		}
	}
}

// FormatASTJSON writes the exported tree as indented JSON.
func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportWithPath(builder, fileID, fs))
}

// FormatASTMsgpack writes the exported tree in msgpack encoding.
func FormatASTMsgpack(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	return msgpack.NewEncoder(w).Encode(exportWithPath(builder, fileID, fs))
}

func exportWithPath(builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) *ast.SourceFile {
	tree := ast.Export(builder, fileID)
	if file := builder.Files.Get(fileID); file != nil && fs != nil {
		if srcFile := fs.Get(file.Span.File); srcFile != nil {
			tree.Path = srcFile.Path
		}
	}
	return tree
}

func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs == nil || fs.Get(span.File) == nil {
		return fmt.Sprintf("%d-%d", span.Start, span.End)
	}
	start, end := fs.Resolve(span)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}
