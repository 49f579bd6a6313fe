package lsp

import (
	"encoding/json"
	"sort"

	"fortio.org/safecast"

	"meel/internal/decor"
	"meel/internal/source"
)

// semanticTokenTypes is the legend; indexes follow decor.Kind.
var semanticTokenTypes = []string{"macro", "variable"}

func tokenTypeIndex(kind decor.Kind) uint32 {
	switch kind {
	case decor.KindMarker:
		return 0
	default:
		return 1
	}
}

func (s *Server) handleSemanticTokensFull(msg *rpcMessage) error {
	var params semanticTokensParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	doc, rep, ok := s.analyze(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, semanticTokens{Data: []uint32{}})
	}
	return s.sendResponse(msg.ID, semanticTokens{Data: encodeSemanticTokens(doc.file, rep.Spans)})
}

type tokenRun struct {
	start, end uint32
	kind       decor.Kind
}

// encodeSemanticTokens flattens possibly nested decoration spans into
// non-overlapping runs (inner spans win), splits them at line breaks and
// delta-encodes them the way the protocol expects.
func encodeSemanticTokens(file *source.File, spans []decor.Span) []uint32 {
	runs := flattenSpans(len(file.Content), spans)
	data := make([]uint32, 0, len(runs)*5)
	prevLine, prevChar := 0, 0
	for _, run := range runs {
		for _, seg := range splitLines(file.Content, run) {
			start := file.Position(seg.start)
			end := file.Position(seg.end)
			length := end.Character - start.Character
			if length <= 0 {
				continue
			}
			deltaLine := start.Line - prevLine
			deltaChar := start.Character
			if deltaLine == 0 {
				deltaChar = start.Character - prevChar
			}
			data = append(data,
				toUint32(deltaLine),
				toUint32(deltaChar),
				toUint32(length),
				tokenTypeIndex(seg.kind),
				0,
			)
			prevLine, prevChar = start.Line, start.Character
		}
	}
	return data
}

// flattenSpans paints spans over the content, outer placeholders first and
// markers last, and returns maximal runs of one kind.
func flattenSpans(n int, spans []decor.Span) []tokenRun {
	if n == 0 || len(spans) == 0 {
		return nil
	}
	ordered := make([]decor.Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Kind != b.Kind {
			return a.Kind == decor.KindPlaceholder
		}
		return a.Span.Len() > b.Span.Len()
	})

	const none = -1
	paint := make([]int8, n)
	for i := range paint {
		paint[i] = none
	}
	for _, sp := range ordered {
		end := min(int(sp.Span.End), n)
		for i := int(sp.Span.Start); i < end; i++ {
			paint[i] = int8(sp.Kind)
		}
	}

	var runs []tokenRun
	for i := 0; i < n; {
		if paint[i] == none {
			i++
			continue
		}
		j := i + 1
		for j < n && paint[j] == paint[i] {
			j++
		}
		runs = append(runs, tokenRun{start: toUint32(i), end: toUint32(j), kind: decor.Kind(paint[i])})
		i = j
	}
	return runs
}

func splitLines(content []byte, run tokenRun) []tokenRun {
	var out []tokenRun
	start := run.start
	for i := run.start; i < run.end; i++ {
		if content[i] == '\n' {
			end := i
			if end > start && content[end-1] == '\r' {
				end--
			}
			if end > start {
				out = append(out, tokenRun{start: start, end: end, kind: run.kind})
			}
			start = i + 1
		}
	}
	if run.end > start {
		out = append(out, tokenRun{start: start, end: run.end, kind: run.kind})
	}
	return out
}

func toUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}
