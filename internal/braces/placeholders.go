package braces

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"meel/internal/source"
)

// Placeholder is a matched pair together with its trimmed, NFC-normalised name.
type Placeholder struct {
	Name  string      `json:"name"`
	Span  source.Span `json:"-"`
	Match Match       `json:"match"`
}

// PlaceholderName returns the trimmed, NFC-normalised text between the markers.
func PlaceholderName(text []byte, m Match) string {
	if int(m.Close) > len(text) || m.Open+MarkerLen > m.Close {
		return ""
	}
	raw := strings.TrimSpace(string(text[m.Open+MarkerLen : m.Close]))
	return norm.NFC.String(raw)
}

// Placeholders lists every matched pair in text order of its opening marker.
// Unmatched markers never contribute.
func Placeholders(text []byte, res Result, file source.FileID) []Placeholder {
	out := make([]Placeholder, 0, len(res.Matches))
	for _, m := range res.Matches {
		out = append(out, Placeholder{
			Name:  PlaceholderName(text, m),
			Span:  m.Inner(file),
			Match: m,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Match.Open < out[j].Match.Open })
	return out
}

// PlaceholderNames returns distinct non-empty names in first-seen order.
func PlaceholderNames(text []byte, res Result) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range Placeholders(text, res, 0) {
		if p.Name == "" {
			continue
		}
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	return names
}

// At returns the innermost match whose outer span contains offset.
func At(res Result, offset uint32) (Match, bool) {
	var (
		best  Match
		found bool
	)
	for _, m := range res.Matches {
		if offset < m.Open || offset >= m.Close+MarkerLen {
			continue
		}
		if !found || m.Close-m.Open < best.Close-best.Open {
			best = m
			found = true
		}
	}
	return best, found
}
