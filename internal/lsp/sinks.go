package lsp

import (
	"fmt"

	"meel/internal/decor"
	"meel/internal/diag"
	"meel/internal/engine"
	"meel/internal/source"
)

// diagnosticSink publishes controller diagnostics as textDocument/publishDiagnostics.
type diagnosticSink struct{ s *Server }

func (d diagnosticSink) ReplaceAll(uri string, diags []diag.Diagnostic) error {
	s := d.s
	doc := s.document(uri)
	if doc == nil && len(diags) > 0 {
		// closed between the trigger and the publish; nothing to anchor ranges to
		return nil
	}
	if s.maxDiagnostics > 0 && len(diags) > s.maxDiagnostics {
		diags = diags[:s.maxDiagnostics]
	}
	list := make([]lspDiagnostic, 0, len(diags))
	for _, item := range diags {
		list = append(list, toLSPDiagnostic(doc.file, item))
	}

	s.mu.Lock()
	if len(list) == 0 {
		delete(s.published, uri)
	} else {
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()

	params := publishDiagnosticsParams{URI: uri, Diagnostics: list}
	if doc != nil {
		version := doc.version
		params.Version = &version
	}
	if err := s.sendNotification("textDocument/publishDiagnostics", params); err != nil {
		return fmt.Errorf("publish diagnostics: %w", err)
	}
	return nil
}

func toLSPDiagnostic(file *source.File, d diag.Diagnostic) lspDiagnostic {
	return lspDiagnostic{
		Range:    file.Range(d.Primary),
		Severity: d.Severity.LSP(),
		Code:     d.Code.ID(),
		Source:   diagnosticSource,
		Message:  d.Message,
	}
}

// decorationSink forwards decoration ranges through the meel/setDecorations notification.
type decorationSink struct{ s *Server }

func (d decorationSink) Apply(editor engine.EditorRef, kind decor.Kind, style *decor.Style, ranges []source.Range) error {
	if ranges == nil {
		ranges = []source.Range{}
	}
	params := setDecorationsParams{
		EditorID: editor.ID,
		URI:      editor.URI,
		Kind:     kind.String(),
		Ranges:   ranges,
	}
	if style != nil {
		params.Style = decorationStyle{Name: style.Name, Color: style.Color}
	}
	if err := d.s.sendNotification("meel/setDecorations", params); err != nil {
		return fmt.Errorf("send decorations: %w", err)
	}
	return nil
}
