package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Contains reports whether off lies inside the span. The end offset counts
// as inside so that a cursor placed right after a token still hits it.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off <= s.End
}

// Cover returns the smallest span enclosing both spans. Spans from
// different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// At returns an empty span positioned at off.
func (s Span) At(off uint32) Span {
	return Span{File: s.File, Start: off, End: off}
}

// EndPoint returns the empty span located at s.End.
func (s Span) EndPoint() Span {
	return s.At(s.End)
}
