package diag

import (
	"testing"

	"lpcfmt/internal/source"
)

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	for i := range 3 {
		ok := b.Add(Diagnostic{Severity: SevWarning, Message: "w"})
		if want := i < 2; ok != want {
			t.Fatalf("Add #%d = %v, want %v", i, ok, want)
		}
	}
	if !b.Full() || b.Len() != 2 {
		t.Fatalf("bag should be full with 2 items, got %d", b.Len())
	}
	if b.HasErrors() {
		t.Fatalf("warnings only")
	}
	b.SetCap(3)
	b.Add(Diagnostic{Severity: SevCritical, Message: "c", Context: "int x"})
	if !b.HasErrors() {
		t.Fatalf("critical counts as error")
	}
	if got := b.Messages()[2]; got != "c (context: int x)" {
		t.Fatalf("message = %q", got)
	}
}

func TestBagSort(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevWarning, Code: SynExpectSemicolon, Primary: source.Span{Start: 5}})
	b.Add(Diagnostic{Severity: SevError, Code: SynUnexpectedToken, Primary: source.Span{Start: 1}})
	b.Add(Diagnostic{Severity: SevError, Code: SynExpectSemicolon, Primary: source.Span{Start: 5}})
	b.Sort()
	items := b.Items()
	if items[0].Primary.Start != 1 || items[1].Severity != SevError {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: b})
	sp := source.Span{Start: 3, End: 4}
	r.Report(SynUnexpectedToken, SevError, sp, "boom")
	r.Report(SynUnexpectedToken, SevError, sp, "boom")
	r.Report(SynUnexpectedToken, SevError, sp, "other")
	if b.Len() != 2 {
		t.Fatalf("got %d diagnostics, want 2", b.Len())
	}
}

func TestCodeID(t *testing.T) {
	if got := LexBadNumber.ID(); got != "LEX1004" {
		t.Fatalf("ID = %q", got)
	}
	if got := FmtNodeLimit.ID(); got != "FMT6002" {
		t.Fatalf("ID = %q", got)
	}
	if Max(SevWarning, SevCritical) != SevCritical {
		t.Fatalf("Max is wrong")
	}
}
