package lsp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const mailURI = "file:///tmp/mail.meel"

func TestPublishDiagnosticsMapping(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, mailURI, "meel", "Привет\n}} {{name}} {{")

	msgs := ts.drain(t)
	params := lastPublish(t, msgs)
	if params.URI != mailURI {
		t.Fatalf("expected uri %q, got %q", mailURI, params.URI)
	}
	if len(params.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(params.Diagnostics))
	}
	first := params.Diagnostics[0]
	if first.Message != "Unmatched closing brace }}" || first.Code != "TPL1002" || first.Source != "meel" || first.Severity != 1 {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	if first.Range.Start.Line != 1 || first.Range.Start.Character != 0 || first.Range.End.Character != 2 {
		t.Fatalf("unexpected first range: %+v", first.Range)
	}
	second := params.Diagnostics[1]
	if second.Message != "Unmatched opening brace {{" || second.Range.Start.Character != 12 {
		t.Fatalf("unexpected second diagnostic: %+v", second)
	}
	if params.Version == nil || *params.Version != 1 {
		t.Fatalf("expected version 1, got %v", params.Version)
	}
}

func TestDidOpenActivatesFirstDocument(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, mailURI, "meel", "Hi {{name}}")
	decs := decorations(t, ts.drain(t))
	if len(decs) != 2 {
		t.Fatalf("expected marker and placeholder decorations, got %d", len(decs))
	}
	if decs[0].Kind != "marker" || decs[0].Style.Color != "#FFD700" || len(decs[0].Ranges) != 2 {
		t.Fatalf("unexpected marker decorations: %+v", decs[0])
	}
	if decs[1].Kind != "placeholder" || decs[1].Style.Color != "#9CDCFE" {
		t.Fatalf("unexpected placeholder decorations: %+v", decs[1])
	}
	r := decs[1].Ranges[0]
	if r.Start.Character != 5 || r.End.Character != 9 {
		t.Fatalf("unexpected placeholder range: %+v", r)
	}

	// a second document does not steal the active editor
	openDoc(t, ts, "file:///tmp/other.meel", "meel", "{{x}}")
	if decs := decorations(t, ts.drain(t)); len(decs) != 0 {
		t.Fatalf("decorated a background document: %+v", decs)
	}
}

func TestDidChangeReplacesDiagnostics(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, mailURI, "meel", "{{name")
	if got := len(lastPublish(t, ts.drain(t)).Diagnostics); got != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", got)
	}
	ts.call(t, "textDocument/didChange", 0, didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: mailURI, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 0, Character: 6}, End: position{Line: 0, Character: 6}},
			Text:  "}}",
		}},
	})
	params := lastPublish(t, ts.drain(t))
	if len(params.Diagnostics) != 0 {
		t.Fatalf("stale diagnostics kept: %+v", params.Diagnostics)
	}
	if doc := ts.document(mailURI); doc == nil || doc.Text() != "{{name}}" {
		t.Fatalf("change not applied")
	}
}

func TestNonTemplateDocumentIgnored(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, "file:///tmp/readme.md", "markdown", "}} {{")
	msgs := ts.drain(t)
	if len(byMethod(msgs, "textDocument/publishDiagnostics")) != 0 || len(decorations(t, msgs)) != 0 {
		t.Fatalf("non-template document produced output: %d messages", len(msgs))
	}
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, mailURI, "meel", "{{")
	ts.drain(t)
	ts.call(t, "textDocument/didClose", 0, didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: mailURI}})
	msgs := ts.drain(t)
	pubs := byMethod(msgs, "textDocument/publishDiagnostics")
	if len(pubs) != 1 {
		t.Fatalf("expected exactly one clearing publish, got %d", len(pubs))
	}
	if params := lastPublish(t, msgs); len(params.Diagnostics) != 0 {
		t.Fatalf("diagnostics not cleared")
	}
}

func TestActiveEditorNotification(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, mailURI, "meel", "{{a}}")
	openDoc(t, ts, "file:///tmp/b.meel", "meel", "{{b}} {{c}}")
	ts.drain(t)

	ts.call(t, "meel/didChangeActiveEditor", 0, didChangeActiveEditorParams{EditorID: "tab-2", URI: "file:///tmp/b.meel"})
	decs := decorations(t, ts.drain(t))
	if len(decs) != 2 || decs[0].EditorID != "tab-2" || len(decs[0].Ranges) != 4 {
		t.Fatalf("unexpected decorations: %+v", decs)
	}

	ts.call(t, "meel/didChangeActiveEditor", 0, didChangeActiveEditorParams{})
	if _, ok := ts.controller().ActiveEditor(); ok {
		t.Fatalf("active editor not cleared")
	}
	ts.call(t, "textDocument/didChange", 0, didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: "file:///tmp/b.meel", Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "{{b}}"}},
	})
	if decs := decorations(t, ts.drain(t)); len(decs) != 0 {
		t.Fatalf("decorated without an active editor")
	}
}

func TestConfigurationChangesLanguageAndColors(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, mailURI, "mail", "{{")
	if len(byMethod(ts.drain(t), "textDocument/publishDiagnostics")) != 0 {
		t.Fatalf("document with another language id was checked")
	}
	ts.call(t, "workspace/didChangeConfiguration", 0, map[string]any{
		"settings": map[string]any{
			"meel": map[string]any{
				"languageId":  "mail",
				"decorations": map[string]any{"markerColor": "#112233"},
			},
		},
	})
	msgs := ts.drain(t)
	if got := len(lastPublish(t, msgs).Diagnostics); got != 1 {
		t.Fatalf("expected recheck with new language id, got %d diagnostics", got)
	}

	ts.call(t, "textDocument/didChange", 0, didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: mailURI, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "{{x}}"}},
	})
	decs := decorations(t, ts.drain(t))
	if len(decs) == 0 || decs[0].Style.Color != "#112233" {
		t.Fatalf("marker color not applied: %+v", decs)
	}
}

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	ts := newTestServer(t, ServerOptions{Version: "1.2.3"})
	ts.call(t, "initialize", 1, initializeParams{RootURI: "file:///tmp"})
	var result initializeResult
	response(t, ts.drain(t), &result)
	caps := result.Capabilities
	if !caps.HoverProvider || !caps.FoldingRangeProvider || !caps.DocumentSymbolProvider {
		t.Fatalf("missing capabilities: %+v", caps)
	}
	if caps.SemanticTokensProvider == nil || strings.Join(caps.SemanticTokensProvider.Legend.TokenTypes, ",") != "macro,variable" {
		t.Fatalf("unexpected semantic tokens legend: %+v", caps.SemanticTokensProvider)
	}
	if result.ServerInfo == nil || result.ServerInfo.Version != "1.2.3" {
		t.Fatalf("unexpected server info: %+v", result.ServerInfo)
	}
}

func TestRunShutdownExit(t *testing.T) {
	var in bytes.Buffer
	for _, m := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///tmp/r.meel","languageId":"meel","version":1,"text":"{{"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		if err := writeMessage(&in, []byte(m)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	var out, log bytes.Buffer
	s := NewServer(&in, &out, ServerOptions{Log: &log})
	if err := s.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}
	if !strings.Contains(out.String(), `"diagnostics":[]`) {
		t.Fatalf("shutdown did not clear diagnostics: %s", out.String())
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	var in bytes.Buffer
	if err := writeMessage(&in, []byte(`{"jsonrpc":"2.0","method":"exit"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewServer(&in, &bytes.Buffer{}, ServerOptions{Log: &bytes.Buffer{}})
	if err := s.Run(context.Background()); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("expected ErrExitWithoutShutdown, got %v", err)
	}
}

func TestUnknownRequestReturnsMethodNotFound(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	ts.call(t, "textDocument/completion", 7, nil)
	msgs := ts.drain(t)
	if len(msgs) != 1 || msgs[0].Error == nil || msgs[0].Error.Code != -32601 {
		t.Fatalf("expected method not found, got %+v", msgs)
	}
}

func TestPublishesEveryDiagnostic(t *testing.T) {
	ts := newTestServer(t, ServerOptions{})
	openDoc(t, ts, mailURI, "meel", strings.Repeat("{{", 5000))
	params := lastPublish(t, ts.drain(t))
	if got := len(params.Diagnostics); got != 5000 {
		t.Fatalf("expected 5000 diagnostics, got %d", got)
	}
	last := params.Diagnostics[len(params.Diagnostics)-1]
	if last.Range.Start.Character != 0 || last.Range.End.Character != 2 {
		t.Fatalf("last diagnostic should be the first open, got %+v", last.Range)
	}
}

func TestMaxDiagnosticsCapsPublish(t *testing.T) {
	ts := newTestServer(t, ServerOptions{MaxDiagnostics: 3})
	openDoc(t, ts, mailURI, "meel", strings.Repeat("}}", 10))
	if got := len(lastPublish(t, ts.drain(t)).Diagnostics); got != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", got)
	}
}
