package lexer

import (
	"fmt"

	"moltree/internal/source"

	"fortio.org/safecast"
)

// Cursor walks the bytes of one file.
type Cursor struct {
	File  *source.File
	Off   uint32
	Limit uint32 // len(File.Content)
}

// NewCursor places a cursor at the start of f. Offsets are uint32, so a
// larger file is a programming error.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("view.tree file too large: %w", err))
	}
	return Cursor{File: f, Limit: limit}
}

func (c *Cursor) EOF() bool { return c.Off >= c.Limit }

// ahead reports whether n bytes from Off are still inside the file.
func (c *Cursor) ahead(n uint32) bool { return c.Limit-min(c.Off, c.Limit) >= n }

// Peek returns the byte under the cursor, 0 at the end.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// Peek2 is the two-byte lookahead for `<=` and `=>`.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if !c.ahead(2) {
		return 0, 0, false
	}
	src := c.File.Content[c.Off:]
	return src[0], src[1], true
}

// Peek3 is the lookahead that tells `<=>` from `<=`.
func (c *Cursor) Peek3() (b0, b1, b2 byte, ok bool) {
	if !c.ahead(3) {
		return 0, 0, 0, false
	}
	src := c.File.Content[c.Off:]
	return src[0], src[1], src[2], true
}

// Bump consumes one byte; at the end it stays put and returns 0.
func (c *Cursor) Bump() byte {
	b := c.Peek()
	if !c.EOF() {
		c.Off++
	}
	return b
}

// Eat consumes b if it is next.
func (c *Cursor) Eat(b byte) bool {
	if c.EOF() || c.File.Content[c.Off] != b {
		return false
	}
	c.Off++
	return true
}

// SkipToEnd consumes the rest of the file.
func (c *Cursor) SkipToEnd() { c.Off = c.Limit }

// Mark is a saved offset, the start of the token being scanned.
type Mark uint32

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

// Reset rewinds to m.
func (c *Cursor) Reset(m Mark) { c.Off = uint32(m) }

// SpanFrom covers the bytes consumed since m.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}
