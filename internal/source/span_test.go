package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{"disjoint", Span{1, 10, 20}, Span{1, 30, 40}, Span{1, 10, 40}},
		{"nested", Span{1, 10, 40}, Span{1, 20, 30}, Span{1, 10, 40}},
		{"reverse order", Span{1, 30, 40}, Span{1, 10, 20}, Span{1, 10, 40}},
		{"different files", Span{1, 10, 20}, Span{2, 0, 50}, Span{1, 10, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Fatalf("Cover = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanZeroide(t *testing.T) {
	sp := Span{File: 3, Start: 5, End: 9}
	if got := sp.ZeroideToStart(); got != (Span{3, 5, 5}) || !got.Empty() {
		t.Fatalf("ZeroideToStart = %v", got)
	}
	if got := sp.ZeroideToEnd(); got != (Span{3, 9, 9}) {
		t.Fatalf("ZeroideToEnd = %v", got)
	}
	if sp.Len() != 4 {
		t.Fatalf("Len = %d", sp.Len())
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{File: 1, Start: 0, End: 100}
	if !outer.Contains(Span{File: 1, Start: 10, End: 20}) {
		t.Fatal("expected containment")
	}
	if outer.Contains(Span{File: 2, Start: 10, End: 20}) {
		t.Fatal("spans from other files must not be contained")
	}
	if outer.Contains(Span{File: 1, Start: 90, End: 101}) {
		t.Fatal("overhanging span must not be contained")
	}
}
