package diag

import (
	"testing"

	"moltree/internal/source"
)

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := range 3 {
		ok := b.Add(NewError(SynUnexpectedToken, source.Span{Start: uint32(i)}, "x"))
		if want := i < 2; ok != want {
			t.Fatalf("Add #%d = %v, want %v", i, ok, want)
		}
	}
	if b.Len() != 2 || b.Cap() != 2 {
		t.Fatalf("len=%d cap=%d", b.Len(), b.Cap())
	}
}

func TestBagUnlimited(t *testing.T) {
	b := NewBag(0)
	for range 100 {
		if !b.Add(New(SevInfo, ObsTimings, source.Span{}, "t")) {
			t.Fatalf("unlimited bag rejected a diagnostic")
		}
	}
	if b.HasErrors() || b.HasWarnings() {
		t.Fatalf("info diagnostics must not count as errors or warnings")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(SynUnclosedBlock, source.Span{Start: 9, End: 9}, "b"))
	b.Add(New(SevWarning, SynExpectOperator, source.Span{Start: 1, End: 2}, "w"))
	b.Add(NewError(SynExpectOperator, source.Span{Start: 1, End: 2}, "e"))
	b.Add(NewError(SynUnclosedBlock, source.Span{Start: 9, End: 9}, "dup"))

	b.Sort()
	items := b.Items()
	if items[0].Severity != SevError || items[0].Primary.Start != 1 {
		t.Fatalf("errors must sort first at the same span, got %+v", items[0])
	}
	if items[2].Code != SynUnclosedBlock {
		t.Fatalf("expected unclosed block third, got %v", items[2].Code)
	}

	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("dedup by code+span: len = %d, want 2", b.Len())
	}
	if d, ok := b.FirstError(); !ok || d.Code != SynExpectOperator {
		t.Fatalf("FirstError = %v, %v", d.Code, ok)
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(LexInvalidCharacter, source.Span{}, "a"))
	other := NewBag(1)
	other.Add(NewError(LexUnterminatedString, source.Span{}, "b"))
	a.Merge(other)
	if a.Len() != 2 || a.Cap() != 2 {
		t.Fatalf("merge: len=%d cap=%d", a.Len(), a.Cap())
	}
	if ptrs := a.Pointers(); len(ptrs) != 2 || ptrs[1].Code != LexUnterminatedString {
		t.Fatalf("Pointers() mismatch")
	}
}
