package source

import "testing"

func TestSpanBasics(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		empty    bool
		length   uint32
		contains []uint32
		outside  []uint32
	}{
		{
			name:     "marker span",
			span:     Span{Start: 4, End: 6},
			length:   2,
			contains: []uint32{4, 5},
			outside:  []uint32{3, 6},
		},
		{
			name:    "empty placeholder",
			span:    Span{Start: 2, End: 2},
			empty:   true,
			outside: []uint32{1, 2, 3},
		},
		{
			name:   "inverted span has no length",
			span:   Span{Start: 5, End: 3},
			length: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.span.Empty() != tt.empty {
				t.Fatalf("Empty() = %v, want %v", tt.span.Empty(), tt.empty)
			}
			if tt.span.Len() != tt.length {
				t.Fatalf("Len() = %d, want %d", tt.span.Len(), tt.length)
			}
			for _, off := range tt.contains {
				if !tt.span.Contains(off) {
					t.Fatalf("expected %v to contain %d", tt.span, off)
				}
			}
			for _, off := range tt.outside {
				if tt.span.Contains(off) {
					t.Fatalf("expected %v not to contain %d", tt.span, off)
				}
			}
		})
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 10, End: 12}
	if got := a.Cover(b); got != (Span{File: 1, Start: 4, End: 12}) {
		t.Fatalf("unexpected cover: %v", got)
	}
	other := Span{File: 2, Start: 0, End: 1}
	if got := a.Cover(other); got != a {
		t.Fatalf("cover across files must keep the receiver, got %v", got)
	}
}
