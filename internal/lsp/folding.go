package lsp

import (
	"cmp"
	"encoding/json"
	"slices"
)

// handleFoldingRange folds every matched pair that spans lines, so a
// multi-line {{ ... }} block collapses in the editor.
func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	doc, rep, ok := s.analyze(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []foldingRange{})
	}
	ranges := make([]foldingRange, 0, len(rep.Result.Matches))
	for _, m := range rep.Result.Matches {
		from, to := doc.file.Position(m.Open).Line, doc.file.Position(m.Close).Line
		if from < to {
			ranges = append(ranges, foldingRange{StartLine: from, EndLine: to, Kind: "region"})
		}
	}
	slices.SortFunc(ranges, func(a, b foldingRange) int {
		return cmp.Or(cmp.Compare(a.StartLine, b.StartLine), cmp.Compare(a.EndLine, b.EndLine))
	})
	// одинаковые пары строк редактору не нужны
	ranges = slices.CompactFunc(ranges, func(a, b foldingRange) bool {
		return a.StartLine == b.StartLine && a.EndLine == b.EndLine
	})
	return s.sendResponse(msg.ID, ranges)
}
