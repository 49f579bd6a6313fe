package trace

import "time"

// Kind tells spans, instants and heartbeats apart.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // instant, e.g. an LSP didChange or a failed load
	KindHeartbeat // liveness tick, see Heartbeat
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindHeartbeat: "heartbeat"}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller values are coarser.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // a check run or one LSP request
	ScopePass                      // scan, match, diagnose, decorate
	ScopeDocument                  // one template or editor document
	ScopeMarker                    // single markers
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeDocument: "document", ScopeMarker: "marker"}

func (s Scope) String() string {
	if s > 0 && int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is what tracers receive. Extra is only set on span ends.
type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide, increasing
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // "check", "scan", "textDocument/didChange"...
	Detail   string
	Dur      time.Duration // span ends only
	Extra    map[string]string
}
