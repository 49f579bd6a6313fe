package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
)

type testServer struct {
	*Server
	out *bytes.Buffer
	log *bytes.Buffer
}

func newTestServer(t *testing.T, opts ServerOptions) *testServer {
	t.Helper()
	var out, log bytes.Buffer
	opts.Log = &log
	s := NewServer(bytes.NewReader(nil), &out, opts)
	t.Cleanup(func() { s.controller().Stop() })
	return &testServer{Server: s, out: &out, log: &log}
}

func (ts *testServer) call(t *testing.T, method string, id int, params any) {
	t.Helper()
	msg := &rpcMessage{JSONRPC: "2.0", Method: method}
	if id > 0 {
		raw, _ := json.Marshal(id)
		msg.ID = raw
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		msg.Params = raw
	}
	if err := ts.handleMessage(msg); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

// drain returns every message written since the last drain.
func (ts *testServer) drain(t *testing.T) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(ts.out.Bytes()))
	ts.out.Reset()
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func byMethod(msgs []rpcMessage, method string) []rpcMessage {
	var out []rpcMessage
	for _, m := range msgs {
		if m.Method == method {
			out = append(out, m)
		}
	}
	return out
}

func lastPublish(t *testing.T, msgs []rpcMessage) publishDiagnosticsParams {
	t.Helper()
	pubs := byMethod(msgs, "textDocument/publishDiagnostics")
	if len(pubs) == 0 {
		t.Fatalf("no publishDiagnostics in %d messages", len(msgs))
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(pubs[len(pubs)-1].Params, &params); err != nil {
		t.Fatalf("decode publish: %v", err)
	}
	return params
}

func decorations(t *testing.T, msgs []rpcMessage) []setDecorationsParams {
	t.Helper()
	var out []setDecorationsParams
	for _, m := range byMethod(msgs, "meel/setDecorations") {
		var params setDecorationsParams
		if err := json.Unmarshal(m.Params, &params); err != nil {
			t.Fatalf("decode decorations: %v", err)
		}
		out = append(out, params)
	}
	return out
}

func response(t *testing.T, msgs []rpcMessage, target any) {
	t.Helper()
	for _, m := range msgs {
		if len(m.ID) > 0 && m.Method == "" {
			if err := json.Unmarshal(m.Result, target); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			return
		}
	}
	t.Fatalf("no response in %d messages", len(msgs))
}

func openDoc(t *testing.T, ts *testServer, uri, lang, text string) {
	t.Helper()
	ts.call(t, "textDocument/didOpen", 0, didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: lang, Version: 1, Text: text},
	})
}
