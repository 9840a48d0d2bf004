package diag

import (
	"testing"

	"cohere/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	for i := range 3 {
		ok := bag.Add(NewError(CohUnsafeInherentImpl, source.Span{Start: uint32(i)}, "x"))
		if want := i < 2; ok != want {
			t.Fatalf("Add #%d = %v, want %v", i, ok, want)
		}
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if bag.Add(nil) {
		t.Fatal("nil diagnostic must be rejected")
	}
}

func TestBagDefaultCap(t *testing.T) {
	if got := NewBag(0).Cap(); got != 100 {
		t.Fatalf("default cap = %d, want 100", got)
	}
}

func TestBagSeverityQueries(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevInfo, CohInfo, source.Span{}, "info"))
	if bag.HasErrors() || bag.HasWarnings() {
		t.Fatal("info-only bag must not report warnings or errors")
	}
	bag.Add(New(SevWarning, ResInfo, source.Span{}, "warn"))
	if bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("expected warnings and no errors")
	}
	bag.Add(NewError(CohSafeImplOfUnsafeTrait, source.Span{}, "err"))
	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}
}

func TestBagSort(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewError(CohUnsafeImplOfSafeTrait, source.Span{File: 1, Start: 5, End: 9}, "b"))
	bag.Add(New(SevWarning, CohUnsafeInherentImpl, source.Span{File: 0, Start: 5, End: 9}, "c"))
	bag.Add(NewError(CohUnsafeInherentImpl, source.Span{File: 0, Start: 5, End: 9}, "d"))
	bag.Add(NewError(CohSafeImplOfUnsafeTrait, source.Span{File: 0, Start: 1, End: 2}, "a"))
	bag.Sort()

	want := []string{"a", "d", "c", "b"}
	for i, d := range bag.Items() {
		if d.Message != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, d.Message, want[i])
		}
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(CohUnsafeNegativeImpl, source.Span{Start: 1, End: 2}, "x"))
	b := NewBag(4)
	b.Add(NewError(CohUnsafeNegativeImpl, source.Span{Start: 3, End: 4}, "y"))
	b.Add(NewError(CohUnsafeInherentImpl, source.Span{Start: 5, End: 6}, "z"))

	a.Merge(b)
	a.Merge(nil)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("Merge: len=%d cap=%d, want 3/3", a.Len(), a.Cap())
	}
	if a.CountCode(CohUnsafeNegativeImpl) != 2 {
		t.Fatalf("CountCode = %d", a.CountCode(CohUnsafeNegativeImpl))
	}
}

func TestBagWorst(t *testing.T) {
	bag := NewBag(4)
	if _, ok := bag.Worst(); ok {
		t.Fatal("empty bag has no worst severity")
	}
	bag.Add(New(SevWarning, ResInfo, source.Span{}, "warn"))
	bag.Add(New(SevInfo, CohInfo, source.Span{}, "info"))
	if s, ok := bag.Worst(); !ok || s != SevWarning {
		t.Fatalf("Worst = %v,%v; want WARNING,true", s, ok)
	}
}

func TestCodeIDs(t *testing.T) {
	tests := map[Code]string{
		CohUnsafeInherentImpl:    "COH0197",
		CohUnsafeNegativeImpl:    "COH0198",
		CohUnsafeImplOfSafeTrait: "COH0199",
		CohSafeImplOfUnsafeTrait: "COH0200",
		LexUnknownChar:           "LEX1001",
		SynExpectSemicolon:       "SYN2012",
		ResUnresolvedTrait:       "RES3001",
		IOLoadFileError:          "IO5001",
		UnknownCode:              "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	for _, c := range Codes() {
		if c.Title() == "" {
			t.Errorf("code %s has no title", c.ID())
		}
	}
}
