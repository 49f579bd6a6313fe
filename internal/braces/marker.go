package braces

import "meel/internal/source"

// MarkerLen is the byte length of both `{{` and `}}`.
const MarkerLen = 2

type MarkerKind uint8

const (
	Open MarkerKind = iota
	Close
)

func (k MarkerKind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	}
	return "unknown"
}

// Text returns the literal marker text.
func (k MarkerKind) Text() string {
	if k == Open {
		return "{{"
	}
	return "}}"
}

// Marker is one occurrence of `{{` or `}}` at byte Offset.
type Marker struct {
	Kind   MarkerKind `json:"kind" msgpack:"kind"`
	Offset uint32     `json:"offset" msgpack:"offset"`
}

// Span returns the two bytes covered by the marker in file.
func (m Marker) Span(file source.FileID) source.Span {
	return source.Span{File: file, Start: m.Offset, End: m.Offset + MarkerLen}
}

// Match is a paired open/close marker. Open < Close always holds.
type Match struct {
	Open  uint32 `json:"open" msgpack:"open"`
	Close uint32 `json:"close" msgpack:"close"`
}

// Inner returns the placeholder span between the markers, possibly empty.
func (m Match) Inner(file source.FileID) source.Span {
	return source.Span{File: file, Start: m.Open + MarkerLen, End: m.Close}
}

// Outer returns the span from the first `{` to the last `}`.
func (m Match) Outer(file source.FileID) source.Span {
	return source.Span{File: file, Start: m.Open, End: m.Close + MarkerLen}
}

// Unmatched is a marker for which no partner exists.
type Unmatched struct {
	Kind   MarkerKind `json:"kind" msgpack:"kind"`
	Offset uint32     `json:"offset" msgpack:"offset"`
}

// Result is the outcome of pairing one document's markers.
type Result struct {
	Matches   []Match     `json:"matches" msgpack:"matches"`
	Unmatched []Unmatched `json:"unmatched" msgpack:"unmatched"`
}

// Balanced reports whether every marker found a partner.
func (r Result) Balanced() bool {
	return len(r.Unmatched) == 0
}
