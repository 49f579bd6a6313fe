package braces

import (
	"fortio.org/safecast"
)

// Scan returns every `{{` and `}}` in text, left to right. Matching is greedy
// and never overlaps: after a marker at i scanning resumes at i+2, so `{{{{`
// yields two opens and in `{{{` the trailing brace is plain text.
func Scan(text []byte) []Marker {
	var out []Marker
	n := len(text)
	for i := 0; i+1 < n; {
		c := text[i]
		if (c == '{' || c == '}') && text[i+1] == c {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				// offsets past 4GiB are not addressable by spans
				break
			}
			kind := Open
			if c == '}' {
				kind = Close
			}
			out = append(out, Marker{Kind: kind, Offset: off})
			i += MarkerLen
			continue
		}
		i++
	}
	return out
}

// ScanString is Scan for string input.
func ScanString(text string) []Marker {
	return Scan([]byte(text))
}
