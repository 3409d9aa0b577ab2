package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{1, 2, 4}, Span{1, 8, 10}, Span{1, 2, 10}},
		{"nested", Span{1, 2, 10}, Span{1, 4, 5}, Span{1, 2, 10}},
		{"other file ignored", Span{1, 2, 4}, Span{2, 0, 100}, Span{1, 2, 4}},
		{"reverse order", Span{1, 8, 10}, Span{1, 2, 4}, Span{1, 2, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanShiftAndContains(t *testing.T) {
	s := Span{File: 3, Start: 10, End: 14}
	if got := s.Shift(-4); got != (Span{3, 6, 10}) {
		t.Errorf("Shift(-4) = %v", got)
	}
	if got := s.Shift(6); got != (Span{3, 16, 20}) {
		t.Errorf("Shift(6) = %v", got)
	}
	if !s.Contains(10) || !s.Contains(13) || s.Contains(14) {
		t.Errorf("Contains is not half-open for %v", s)
	}
	if s.Len() != 4 || s.Empty() {
		t.Errorf("Len/Empty wrong for %v", s)
	}
	if !At(3, 7).Empty() {
		t.Error("At must build an empty span")
	}
}
