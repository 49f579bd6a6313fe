package decor

import (
	"meel/internal/braces"
	"meel/internal/source"
)

// Span is a byte range to be rendered with the style of Kind.
type Span struct {
	Kind Kind        `json:"kind"`
	Span source.Span `json:"span"`
}

type Mapper struct {
	styles *Styles
}

func NewMapper(styles *Styles) *Mapper {
	return &Mapper{styles: styles}
}

// Map emits, per match in matcher order, the opening marker, the closing
// marker and the placeholder between them. The placeholder may be empty.
// Unmatched markers are never decorated.
func (m *Mapper) Map(matches []braces.Match, file source.FileID) ([]Span, error) {
	if m.styles != nil && !m.styles.Active() {
		if _, err := m.styles.Get(KindMarker); err != nil {
			return nil, err
		}
	}
	out := make([]Span, 0, len(matches)*3)
	for _, match := range matches {
		out = append(out,
			Span{Kind: KindMarker, Span: braces.Marker{Kind: braces.Open, Offset: match.Open}.Span(file)},
			Span{Kind: KindMarker, Span: braces.Marker{Kind: braces.Close, Offset: match.Close}.Span(file)},
			Span{Kind: KindPlaceholder, Span: match.Inner(file)},
		)
	}
	return out, nil
}

// Group splits spans per kind preserving order. Every kind is present in
// the result, possibly with an empty slice, so callers can clear stale
// decorations of a kind that no longer has spans.
func Group(spans []Span) map[Kind][]source.Span {
	out := make(map[Kind][]source.Span, len(Kinds))
	for _, k := range Kinds {
		out[k] = []source.Span{}
	}
	for _, s := range spans {
		out[s.Kind] = append(out[s.Kind], s.Span)
	}
	return out
}
