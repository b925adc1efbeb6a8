package ast

import (
	"moltree/internal/source"
)

// File is the root of one parsed source: top-level statements in source
// order plus the comments seen while parsing.
type File struct {
	Span     source.Span
	Stmts    []StmtID
	Comments []Comment
}

// Comment is a `#` comment; Text includes the `#`.
type Comment struct {
	Span source.Span
	Text string
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{
		Span:     sp,
		Stmts:    make([]StmtID, 0),
		Comments: nil,
	}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
