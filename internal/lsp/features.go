package lsp

import (
	"meel/internal/engine"
)

// analyze runs the pipeline for an open template document.
func (s *Server) analyze(uri string) (*document, engine.Report, bool) {
	doc := s.document(uri)
	if doc == nil {
		return nil, engine.Report{}, false
	}
	ctrl := s.controller()
	if !ctrl.Accepts(doc) {
		return nil, engine.Report{}, false
	}
	rep, err := ctrl.Check(doc)
	if err != nil {
		s.report(err)
		return nil, engine.Report{}, false
	}
	return doc, rep, true
}
