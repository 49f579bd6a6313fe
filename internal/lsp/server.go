package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"meel/internal/decor"
	"meel/internal/engine"
	"meel/internal/trace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

const diagnosticSource = "meel"

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	LanguageID       string
	MarkerColor      string
	PlaceholderColor string
	// MaxDiagnostics caps each published set; zero publishes everything.
	MaxDiagnostics int
	Version        string
	Tracer         trace.Tracer
	// Log receives server log lines; defaults to os.Stderr.
	Log io.Writer
}

// Server handles stdio JSON-RPC for the meel template language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex
	log    io.Writer

	docs      map[string]*document
	published map[string]struct{}

	workspaceRoot     string
	shutdownRequested bool
	maxDiagnostics    int
	version           string
	tracer            trace.Tracer
	traceLSP          bool

	languageID       string
	markerColor      string
	placeholderColor string
	ctrl             *engine.Controller
}

// NewServer constructs a new LSP server. Invalid colours fall back to defaults.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics < 0 {
		maxDiagnostics = 0
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	languageID := opts.LanguageID
	if languageID == "" {
		languageID = engine.DefaultLanguageID
	}
	s := &Server{
		in:               bufio.NewReader(in),
		out:              bufio.NewWriter(out),
		log:              logw,
		docs:             make(map[string]*document),
		published:        make(map[string]struct{}),
		maxDiagnostics:   maxDiagnostics,
		version:          opts.Version,
		tracer:           tracer,
		languageID:       languageID,
		markerColor:      opts.MarkerColor,
		placeholderColor: opts.PlaceholderColor,
	}
	s.ctrl = s.newController()
	return s
}

// newController builds and starts a controller from the current settings.
func (s *Server) newController() *engine.Controller {
	s.mu.Lock()
	languageID, markerColor, placeholderColor := s.languageID, s.markerColor, s.placeholderColor
	s.mu.Unlock()
	styles, err := decor.NewStyles(markerColor, placeholderColor)
	if err != nil {
		s.logf("%v; using default decoration colors", err)
		styles = decor.DefaultStyles()
	}
	ctrl := engine.New(engine.Options{
		LanguageID:  languageID,
		Diagnostics: diagnosticSink{s},
		Decorations: decorationSink{s},
		Styles:      styles,
		Tracer:      s.tracer,
	})
	if err := ctrl.Start(); err != nil {
		s.logf("failed to start controller: %v", err)
	}
	return ctrl
}

func (s *Server) controller() *engine.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl
}

// Run serves LSP requests until exit or EOF.
func (s *Server) Run(ctx context.Context) error {
	defer func() { s.controller().Stop() }()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) (err error) {
	sp := trace.Begin(s.tracer, trace.ScopeDriver, msg.Method, 0)
	defer func() { sp.EndErr(err) }()

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		s.mu.Lock()
		requested := s.shutdownRequested
		s.mu.Unlock()
		if requested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "meel/didChangeActiveEditor":
		return s.handleDidChangeActiveEditor(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(msg)
	case "textDocument/semanticTokens/full":
		return s.handleSemanticTokensFull(msg)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()
	if len(params.InitializationOptions) > 0 {
		s.applySettings(params.InitializationOptions)
	}

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
			},
			HoverProvider:          true,
			FoldingRangeProvider:   true,
			DocumentSymbolProvider: true,
			SemanticTokensProvider: &semanticTokensOptions{
				Legend: semanticTokensLegend{
					TokenTypes:     semanticTokenTypes,
					TokenModifiers: []string{},
				},
				Full: true,
			},
		},
		ServerInfo: &serverInfo{Name: "meel", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.clearPublishedDiagnostics()
	s.controller().Stop()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	doc := newDocument(uri, params.TextDocument.LanguageID, params.TextDocument.Version, params.TextDocument.Text)
	s.mu.Lock()
	s.docs[uri] = doc
	ctrl := s.ctrl
	s.mu.Unlock()

	s.report(ctrl.DocumentOpened(doc))
	// without an explicit editor notification the opened document is what the user looks at
	if _, ok := ctrl.ActiveEditor(); !ok {
		s.report(ctrl.ActiveEditorChanged(&engine.EditorRef{ID: uri, URI: uri}, doc))
	}
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	prev, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		s.logf("didChange for unknown document %s", uri)
		return nil
	}
	doc := prev.withText(params.TextDocument.Version, applyChanges(prev.Text(), params.ContentChanges))
	s.docs[uri] = doc
	ctrl := s.ctrl
	traceOn := s.traceLSP
	s.mu.Unlock()
	if traceOn {
		s.logf("didChange: uri=%s version=%d->%d", uri, prev.version, doc.version)
		trace.Point(s.tracer, trace.ScopeDocument, "didChange", 0, fmt.Sprintf("%s v%d", uri, doc.version))
	}
	s.report(ctrl.DocumentChanged(doc))
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.docs, uri)
	ctrl := s.ctrl
	_, hadDiagnostics := s.published[uri]
	s.mu.Unlock()
	s.report(ctrl.DocumentClosed(uri))
	// the controller only clears what it published itself
	s.mu.Lock()
	_, stillPublished := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics && stillPublished {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

func (s *Server) handleDidChangeActiveEditor(msg *rpcMessage) error {
	var params didChangeActiveEditorParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
	}
	ctrl := s.controller()
	uri := canonicalURI(params.URI)
	if uri == "" {
		s.report(ctrl.ActiveEditorChanged(nil, nil))
		return nil
	}
	editorID := params.EditorID
	if editorID == "" {
		editorID = uri
	}
	var doc engine.Document
	if d := s.document(uri); d != nil {
		doc = d
	}
	s.report(ctrl.ActiveEditorChanged(&engine.EditorRef{ID: editorID, URI: uri}, doc))
	return nil
}

// document returns the open document for uri or nil.
func (s *Server) document(uri string) *document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[canonicalURI(uri)]
}

// recheckAll replays open documents through a fresh controller.
func (s *Server) recheckAll(prevActive *engine.EditorRef) {
	s.mu.Lock()
	ctrl := s.ctrl
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	sort.Strings(uris)
	for _, uri := range uris {
		if doc := s.document(uri); doc != nil {
			s.report(ctrl.DocumentOpened(doc))
		}
	}
	if prevActive != nil {
		var doc engine.Document
		if d := s.document(prevActive.URI); d != nil {
			doc = d
		}
		s.report(ctrl.ActiveEditorChanged(prevActive, doc))
	}
}

// report logs controller errors; they never terminate the session.
func (s *Server) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, engine.ErrStopped) {
		return
	}
	s.logf("%v", err)
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: list,
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}
