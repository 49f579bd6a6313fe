package lsp

import (
	"encoding/json"

	"meel/internal/braces"
)

// symbolKindVariable is SymbolKind.Variable in the protocol.
const symbolKindVariable = 13

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	doc, rep, ok := s.analyze(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []documentSymbol{})
	}
	placeholders := braces.Placeholders(doc.file.Content, rep.Result, 0)
	symbols := make([]documentSymbol, 0, len(placeholders))
	for _, p := range placeholders {
		name := p.Name
		if name == "" {
			name = "(empty)"
		}
		symbols = append(symbols, documentSymbol{
			Name:           name,
			Detail:         "placeholder",
			Kind:           symbolKindVariable,
			Range:          doc.file.Range(p.Match.Outer(0)),
			SelectionRange: doc.file.Range(p.Span),
		})
	}
	return s.sendResponse(msg.ID, symbols)
}
