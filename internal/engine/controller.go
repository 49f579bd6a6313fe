package engine

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"meel/internal/braces"
	"meel/internal/decor"
	"meel/internal/diag"
	"meel/internal/source"
	"meel/internal/trace"
)

// DefaultLanguageID is the language id of template documents.
const DefaultLanguageID = "meel"

// ErrStopped is returned by triggers after Stop.
var ErrStopped = errors.New("engine: controller stopped")

type Options struct {
	// LanguageID selects the documents the controller reacts to.
	// Empty means DefaultLanguageID.
	LanguageID  string
	Diagnostics DiagnosticSink
	Decorations DecorationSink
	// Styles defaults to decor.DefaultStyles().
	Styles *decor.Styles
	// Bus defaults to a private bus.
	Bus    *Bus
	Tracer trace.Tracer
}

// Report is the result of running the pipeline over one document.
type Report struct {
	URI         string
	Markers     []braces.Marker
	Result      braces.Result
	Diagnostics []diag.Diagnostic
	Spans       []decor.Span
}

// Controller wires host triggers to the brace pipeline and pushes the
// results into the sinks. Each recomputation is a full rebuild; the only
// state kept between triggers is the active editor and the set of URIs
// that currently have published diagnostics.
type Controller struct {
	opts   Options
	bus    *Bus
	mapper *decor.Mapper
	tracer trace.Tracer

	mu        sync.Mutex
	active    *EditorRef
	published map[string]int
	subs      []Subscription
	started   bool
	stopped   bool
}

func New(opts Options) *Controller {
	if opts.LanguageID == "" {
		opts.LanguageID = DefaultLanguageID
	}
	if opts.Styles == nil {
		opts.Styles = decor.DefaultStyles()
	}
	bus := opts.Bus
	if bus == nil {
		bus = NewBus()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Controller{
		opts:      opts,
		bus:       bus,
		mapper:    decor.NewMapper(opts.Styles),
		tracer:    tracer,
		published: make(map[string]int),
	}
}

// LanguageID returns the language id documents must carry to be checked.
func (c *Controller) LanguageID() string { return c.opts.LanguageID }

// Styles returns the decoration styles owned by the controller.
func (c *Controller) Styles() *decor.Styles { return c.opts.Styles }

// Start registers the decoration styles and subscribes the trigger handlers.
// Starting twice is a no-op; starting after Stop returns ErrStopped.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return nil
	}
	if err := c.opts.Styles.Init(); err != nil {
		return fmt.Errorf("init decoration styles: %w", err)
	}
	c.subs = append(c.subs,
		c.bus.Subscribe(TriggerOpened, c.onDocument),
		c.bus.Subscribe(TriggerChanged, c.onDocument),
		c.bus.Subscribe(TriggerActiveEditorChanged, c.onActiveEditor),
	)
	c.started = true
	return nil
}

// Stop unsubscribes every handler and disposes the styles.
// Calling Stop more than once is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.opts.Bus == nil {
		c.bus.UnsubscribeAll()
	} else {
		// shared bus: drop only our own handlers
		for _, s := range c.subs {
			c.bus.Unsubscribe(s)
		}
	}
	c.subs = nil
	c.active = nil
	c.opts.Styles.Dispose()
}

func (c *Controller) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// DocumentOpened is the trigger for a newly opened document.
func (c *Controller) DocumentOpened(doc Document) error {
	return c.publish(Event{Trigger: TriggerOpened, Doc: doc})
}

// DocumentChanged is the trigger for an edited document.
func (c *Controller) DocumentChanged(doc Document) error {
	return c.publish(Event{Trigger: TriggerChanged, Doc: doc})
}

// ActiveEditorChanged records editor as active and rechecks doc, the
// document it shows. A nil editor means no editor is active.
func (c *Controller) ActiveEditorChanged(editor *EditorRef, doc Document) error {
	return c.publish(Event{Trigger: TriggerActiveEditorChanged, Doc: doc, Editor: editor})
}

// DocumentClosed forgets uri and clears its published diagnostics.
func (c *Controller) DocumentClosed(uri string) error {
	if c.isStopped() {
		return ErrStopped
	}
	c.mu.Lock()
	_, had := c.published[uri]
	delete(c.published, uri)
	c.mu.Unlock()
	if !had || c.opts.Diagnostics == nil {
		return nil
	}
	if err := c.opts.Diagnostics.ReplaceAll(uri, []diag.Diagnostic{}); err != nil {
		return fmt.Errorf("clear diagnostics for %s: %w", uri, err)
	}
	return nil
}

// ActiveEditor returns the active editor, if any.
func (c *Controller) ActiveEditor() (EditorRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return EditorRef{}, false
	}
	return *c.active, true
}

// Published reports how many diagnostics were last published for uri.
func (c *Controller) Published(uri string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.published[uri]
	return n, ok
}

func (c *Controller) publish(ev Event) error {
	if c.isStopped() {
		return ErrStopped
	}
	return c.bus.Publish(ev)
}

// Accepts reports whether doc is a template document this controller handles.
func (c *Controller) Accepts(doc Document) bool {
	return doc != nil && doc.LanguageID() == c.opts.LanguageID
}

func (c *Controller) onDocument(ev Event) error {
	return c.refresh(ev.Doc)
}

func (c *Controller) onActiveEditor(ev Event) error {
	c.mu.Lock()
	if ev.Editor == nil {
		c.active = nil
	} else {
		ed := *ev.Editor
		c.active = &ed
	}
	c.mu.Unlock()
	if ev.Editor == nil {
		return nil
	}
	return c.refresh(ev.Doc)
}

// Check runs the pipeline over doc without touching the sinks, decoration
// spans included.
func (c *Controller) Check(doc Document) (Report, error) {
	rep := c.analyze(doc)
	if err := c.decorate(&rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// analyze runs scan, match and diagnose. Spans stay empty.
func (c *Controller) analyze(doc Document) Report {
	text := []byte(doc.Text())
	rep := Report{URI: doc.URI()}

	sp := trace.Begin(c.tracer, trace.ScopePass, "scan", 0)
	rep.Markers = braces.Scan(text)
	sp.WithExtra("markers", strconv.Itoa(len(rep.Markers))).End("")

	sp = trace.Begin(c.tracer, trace.ScopePass, "match", 0)
	rep.Result = braces.Pair(rep.Markers)
	sp.WithExtra("matches", strconv.Itoa(len(rep.Result.Matches))).
		WithExtra("unmatched", strconv.Itoa(len(rep.Result.Unmatched))).End("")

	sp = trace.Begin(c.tracer, trace.ScopePass, "diagnose", 0)
	rep.Diagnostics = braces.Diagnostics(rep.Result, 0)
	sp.End("")
	return rep
}

func (c *Controller) decorate(rep *Report) error {
	sp := trace.Begin(c.tracer, trace.ScopePass, "decorate", 0)
	spans, err := c.mapper.Map(rep.Result.Matches, 0)
	sp.EndErr(err)
	if err != nil {
		return err
	}
	rep.Spans = spans
	return nil
}

func (c *Controller) refresh(doc Document) error {
	if doc == nil || !c.Accepts(doc) {
		return nil
	}
	uri := doc.URI()
	docSpan := trace.Begin(c.tracer, trace.ScopeDocument, "document", 0).WithExtra("uri", uri)
	defer docSpan.End("")

	rep := c.analyze(doc)

	if sink := c.opts.Diagnostics; sink != nil {
		sp := trace.Begin(c.tracer, trace.ScopePass, "unclosedBraces", docSpan.ID())
		err := sink.ReplaceAll(uri, rep.Diagnostics)
		sp.WithExtra("count", strconv.Itoa(len(rep.Diagnostics))).End("")
		if err != nil {
			return fmt.Errorf("publish diagnostics for %s: %w", uri, err)
		}
	}
	c.mu.Lock()
	c.published[uri] = len(rep.Diagnostics)
	var editor *EditorRef
	if c.active != nil && c.active.URI == uri {
		ed := *c.active
		editor = &ed
	}
	c.mu.Unlock()

	if editor == nil || c.opts.Decorations == nil {
		return nil
	}
	if err := c.decorate(&rep); err != nil {
		return fmt.Errorf("decorate %s: %w", uri, err)
	}
	return c.applyDecorations(*editor, doc, rep.Spans)
}

func (c *Controller) applyDecorations(editor EditorRef, doc Document, spans []decor.Span) error {
	groups := decor.Group(spans)
	for _, kind := range decor.Kinds {
		style, err := c.opts.Styles.Get(kind)
		if err != nil {
			return err
		}
		ranges := make([]source.Range, 0, len(groups[kind]))
		for _, s := range groups[kind] {
			ranges = append(ranges, source.Range{
				Start: doc.OffsetToPosition(s.Start),
				End:   doc.OffsetToPosition(s.End),
			})
		}
		if err := c.opts.Decorations.Apply(editor, kind, style, ranges); err != nil {
			return fmt.Errorf("apply %s decorations to %s: %w", kind, editor.URI, err)
		}
	}
	return nil
}
