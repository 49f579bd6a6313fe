package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
	openSpans   atomic.Int64
)

// NextSeq returns the next event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span id. Zero is reserved for "no parent".
func NextSpanID() uint64 { return spanCounter.Add(1) }

// OpenSpans reports how many emitted spans have begun but not ended yet.
// A heartbeat that keeps showing the same non-zero value points at a stuck check.
func OpenSpans() int64 { return openSpans.Load() }

// Span is one traced operation: a check run, an LSP request, a pipeline step.
// The zero-cost form returned for filtered scopes ignores every call.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
	ended   atomic.Bool
}

var disabledSpan = &Span{tracer: Nop}

// Begin emits a begin event and returns the span; parent 0 makes it a root.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return disabledSpan
	}
	sp := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	openSpans.Add(1)
	t.Emit(sp.event(KindSpanBegin, sp.started, ""))
	return sp
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End closes the span and returns its duration. Only the first call emits.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 || !s.ended.CompareAndSwap(false, true) {
		return 0
	}
	now := time.Now()
	openSpans.Add(-1)
	ev := s.event(KindSpanEnd, now, detail)
	ev.Dur = now.Sub(s.started)
	s.tracer.Emit(ev)
	return ev.Dur
}

// EndErr closes the span with "ok" or the error text.
func (s *Span) EndErr(err error) time.Duration {
	if err != nil {
		return s.End("error: " + err.Error())
	}
	return s.End("ok")
}

// WithExtra attaches a key/value pair reported on the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span id, 0 for a filtered span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits a single instant event under parent.
func Point(t Tracer, scope Scope, name string, parent uint64, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
