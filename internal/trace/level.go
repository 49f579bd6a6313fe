package trace

import (
	"fmt"
	"strings"
)

// Level controls how much of the check and LSP pipeline is traced.
type Level uint8

const (
	LevelOff    Level = iota // nothing
	LevelError               // crash dumps only
	LevelPhase               // check runs, LSP requests, pipeline steps
	LevelDetail              // plus per-document spans
	LevelDebug               // plus per-marker events
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// deepest returns the finest scope l lets through; 0 lets nothing through.
func (l Level) deepest() Scope {
	switch l {
	case LevelPhase:
		return ScopePass
	case LevelDetail:
		return ScopeDocument
	case LevelDebug:
		return ScopeMarker
	default:
		// LevelError only fires from the crash path
		return 0
	}
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope != 0 && scope <= l.deepest()
}

// Accepts is ShouldEmit for a whole event. Heartbeats pass whenever tracing is on.
func (l Level) Accepts(ev *Event) bool {
	if ev.Kind == KindHeartbeat {
		return l > LevelOff
	}
	return l.ShouldEmit(ev.Scope)
}
