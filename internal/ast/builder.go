package ast

import (
	"moltree/internal/source"
)

type Hints struct{ Files, Stmts uint }

type Builder struct {
	Files *Files
	Stmts *Stmts
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Stmts: NewStmts(hints.Stmts),
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

// PushStmt appends a top-level statement to the file.
func (b *Builder) PushStmt(file FileID, stmt StmtID) {
	f := b.Files.Get(file)
	f.Stmts = append(f.Stmts, stmt)
}

// PushComment records a comment in the file's side channel.
func (b *Builder) PushComment(file FileID, c Comment) {
	f := b.Files.Get(file)
	f.Comments = append(f.Comments, c)
}
