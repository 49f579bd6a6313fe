package source

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

func (f *File) contentLen() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return ^uint32(0)
	}
	return n
}

func (f *File) lineStart(line int) uint32 {
	if line <= 0 {
		return 0
	}
	return f.LineIdx[line-1] + 1
}

// Position maps a byte offset to a zero-based line and UTF-16 column.
// Offsets past the end clamp to the end of the content; an offset in the
// middle of a multi-byte rune maps to the start of that rune.
func (f *File) Position(offset uint32) Position {
	if f == nil {
		return Position{}
	}
	if n := f.contentLen(); offset > n {
		offset = n
	}
	lineIdx := f.LineIdx
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	start := f.lineStart(line)
	if start > offset {
		start = offset
	}
	units := 0
	for off := start; off < offset; {
		// a rune cut by offset does not count
		r, size := utf8.DecodeRune(f.Content[off:])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		if off+uint32(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += uint32(size)
	}
	return Position{Line: line, Character: units}
}

// Offset maps an editor position back to a byte offset. Characters past the
// end of a line clamp to the line end; lines past the end clamp to the content end.
func (f *File) Offset(pos Position) uint32 {
	if f == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	contentLen := f.contentLen()
	if pos.Line > len(f.LineIdx) {
		return contentLen
	}
	lineStart := f.lineStart(pos.Line)
	lineEnd := contentLen
	if pos.Line < len(f.LineIdx) {
		lineEnd = f.LineIdx[pos.Line]
	}
	units := 0
	off := lineStart
	for off < lineEnd && units < pos.Character {
		r, size := utf8.DecodeRune(f.Content[off:lineEnd])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += uint32(size)
	}
	return off
}

// Range converts span into an editor range.
func (f *File) Range(span Span) Range {
	return Range{
		Start: f.Position(span.Start),
		End:   f.Position(span.End),
	}
}
