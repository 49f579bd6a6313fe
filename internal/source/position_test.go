package source

import (
	"strings"
	"testing"
	"unicode/utf16"
)

func expectedPosition(text string, offset int) Position {
	line := strings.Count(text[:offset], "\n")
	lineStart := strings.LastIndex(text[:offset], "\n") + 1
	units := 0
	for _, r := range text[lineStart:offset] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	return Position{Line: line, Character: units}
}

func TestPositionUTF16(t *testing.T) {
	text := "Hi {{name}}\né\U0001F642 {{x}}\n\nend"
	f := NewFile("mem.meel", []byte(text))
	for off := 0; off <= len(text); off++ {
		if off < len(text) && !utf16Boundary(text, off) {
			continue
		}
		got := f.Position(uint32(off))
		want := expectedPosition(text, off)
		if got != want {
			t.Fatalf("offset %d: expected %+v, got %+v", off, want, got)
		}
		if back := f.Offset(got); back != uint32(off) {
			t.Fatalf("offset %d: round trip gave %d", off, back)
		}
	}
}

func utf16Boundary(text string, off int) bool {
	return off == 0 || off == len(text) || (text[off]&0xC0) != 0x80
}

func TestPositionClampsPastEnd(t *testing.T) {
	f := NewFile("mem.meel", []byte("ab\ncd"))
	if got := f.Position(100); got != (Position{Line: 1, Character: 2}) {
		t.Fatalf("unexpected clamp: %+v", got)
	}
	if got := f.Offset(Position{Line: 0, Character: 99}); got != 2 {
		t.Fatalf("expected line end offset 2, got %d", got)
	}
	if got := f.Offset(Position{Line: 9, Character: 0}); got != 5 {
		t.Fatalf("expected content end offset 5, got %d", got)
	}
}

func TestPositionEmptyFile(t *testing.T) {
	f := NewFile("empty.meel", nil)
	if got := f.Position(0); got != (Position{}) {
		t.Fatalf("expected zero position, got %+v", got)
	}
	if got := f.Range(Span{Start: 0, End: 0}); got != (Range{}) {
		t.Fatalf("expected zero range, got %+v", got)
	}
}

func TestRangeAcrossLines(t *testing.T) {
	text := "{{a\nb}}"
	f := NewFile("mem.meel", []byte(text))
	rng := f.Range(Span{Start: 2, End: 5})
	want := Range{Start: Position{Line: 0, Character: 2}, End: Position{Line: 1, Character: 1}}
	if rng != want {
		t.Fatalf("expected %+v, got %+v", want, rng)
	}
}

func TestPositionInsideRune(t *testing.T) {
	tests := []struct {
		text   string
		offset uint32
		want   Position
	}{
		{"é", 1, Position{Line: 0, Character: 0}},
		{"aé", 2, Position{Line: 0, Character: 1}},
		{"x\U0001F642", 3, Position{Line: 0, Character: 1}},
		{"\U0001F642y", 4, Position{Line: 0, Character: 2}},
		{"a\xffb", 2, Position{Line: 0, Character: 2}},
	}
	for _, tt := range tests {
		f := NewFile("mem.meel", []byte(tt.text))
		if got := f.Position(tt.offset); got != tt.want {
			t.Fatalf("Position(%q, %d) = %+v, want %+v", tt.text, tt.offset, got, tt.want)
		}
	}
}
