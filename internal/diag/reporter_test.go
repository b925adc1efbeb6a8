package diag

import (
	"testing"

	"moltree/internal/source"
)

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(4)
	b := ReportError(BagReporter{Bag: bag}, SynUnclosedBlock, source.Span{Start: 5, End: 5}, "unclosed block").
		WithNote(source.Span{Start: 1, End: 2}, "block opened here").
		WithFix("insert `}`", Insert(0, 5, "}"))
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || d.Notes[0].Msg != "block opened here" {
		t.Fatalf("note lost: %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "}" || !d.Fixes[0].Edits[0].Span.Empty() {
		t.Fatalf("fix lost: %+v", d.Fixes)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexInvalidCharacter: "LEX1001",
		SynUnclosedBlock:    "SYN2002",
		IOLoadFileError:     "IO4001",
		ProjInvalidManifest: "PRJ5001",
		ObsTimings:          "OBS6001",
		UnknownCode:         "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Fatalf("%d.ID() = %q, want %q", c, got, want)
		}
	}
	if SynExpectIdentifier.Title() != "Expected identifier" {
		t.Fatalf("title mismatch: %q", SynExpectIdentifier.Title())
	}
	if Code(2999).Title() != "Unknown error" {
		t.Fatalf("unknown code should fall back")
	}
	d := NewError(SynExpectOperator, source.Span{}, "expected operator")
	if d.Error() != "ERROR SYN2004: expected operator" {
		t.Fatalf("Error() = %q", d.Error())
	}
}
