package ast

// Walk visits the statements of file depth-first in source order, passing
// the enclosing definition (NoStmtID at top level). Returning false from fn
// skips the statement's block.
func Walk(b *Builder, file FileID, fn func(id StmtID, parent StmtID, depth int) bool) {
	f := b.Files.Get(file)
	if f == nil {
		return
	}
	var visit func(ids []StmtID, parent StmtID, depth int)
	visit = func(ids []StmtID, parent StmtID, depth int) {
		for _, id := range ids {
			if !fn(id, parent, depth) {
				continue
			}
			if def, ok := b.Stmts.Definition(id); ok && len(def.Children) > 0 {
				visit(def.Children, id, depth+1)
			}
		}
	}
	visit(f.Stmts, NoStmtID, 0)
}
