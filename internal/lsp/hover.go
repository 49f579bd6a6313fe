package lsp

import (
	"encoding/json"
	"fmt"

	"meel/internal/braces"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	doc, rep, ok := s.analyze(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	offset := doc.file.Offset(params.Position)
	m, found := braces.At(rep.Result, offset)
	if !found {
		return s.sendResponse(msg.ID, nil)
	}
	name := braces.PlaceholderName(doc.file.Content, m)
	value := "empty placeholder"
	if name != "" {
		value = fmt.Sprintf("placeholder `%s`", name)
	}
	r := doc.file.Range(m.Outer(0))
	return s.sendResponse(msg.ID, &hover{
		Contents: markupContent{Kind: "markdown", Value: value},
		Range:    &r,
	})
}
