package lsp

import (
	"encoding/json"

	"meel/internal/engine"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings updates server settings. Changing the language id or a
// decoration colour rebuilds the controller and rechecks open documents.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logf("ignoring malformed settings: %v", err)
		return
	}
	cfg := settings.Meel

	s.mu.Lock()
	if cfg.Trace != nil {
		s.traceLSP = *cfg.Trace
	}
	changed := false
	if cfg.LanguageID != nil && *cfg.LanguageID != "" && *cfg.LanguageID != s.languageID {
		s.languageID = *cfg.LanguageID
		changed = true
	}
	if c := cfg.Decorations.MarkerColor; c != nil && *c != s.markerColor {
		s.markerColor = *c
		changed = true
	}
	if c := cfg.Decorations.PlaceholderColor; c != nil && *c != s.placeholderColor {
		s.placeholderColor = *c
		changed = true
	}
	if !changed || s.shutdownRequested {
		s.mu.Unlock()
		return
	}
	old := s.ctrl
	s.mu.Unlock()

	var prevActive *engine.EditorRef
	if ed, ok := old.ActiveEditor(); ok {
		prevActive = &ed
	}
	old.Stop()
	ctrl := s.newController()
	s.mu.Lock()
	s.ctrl = ctrl
	s.mu.Unlock()

	// documents that stopped being templates keep no stale diagnostics
	s.clearPublishedDiagnostics()
	s.recheckAll(prevActive)
}
