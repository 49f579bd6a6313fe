package braces

// Pair matches markers using a stack: each close takes the most recent
// pending open. A close with nothing pending is reported immediately, and
// opens still pending at the end are reported most recent first.
//
// Crossing is not detected; `{{a {{b}} c}}` pairs the inner markers first.
func Pair(markers []Marker) Result {
	var (
		res   Result
		stack []uint32
	)
	for _, m := range markers {
		switch m.Kind {
		case Open:
			stack = append(stack, m.Offset)
		case Close:
			if len(stack) == 0 {
				res.Unmatched = append(res.Unmatched, Unmatched{Kind: Close, Offset: m.Offset})
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			res.Matches = append(res.Matches, Match{Open: top, Close: m.Offset})
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		res.Unmatched = append(res.Unmatched, Unmatched{Kind: Open, Offset: stack[i]})
	}
	return res
}

// Analyze scans and matches text in one call.
func Analyze(text []byte) Result {
	return Pair(Scan(text))
}
