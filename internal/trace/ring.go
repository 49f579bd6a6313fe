package trace

import (
	"fmt"
	"io"
	"sync"
)

const defaultRingSize = 4096

// RingTracer remembers the most recent events in a fixed buffer. It costs no
// I/O while a check runs; the CLI dumps it when the process exits.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int // slot for the next event
	count int // stored events, at most len(buf)
	level Level
}

// NewRingTracer allocates a ring of size events; size <= 0 picks the default.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event once full.
func (r *RingTracer) Emit(ev *Event) {
	if !r.level.Accepts(ev) {
		return
	}
	r.mu.Lock()
	r.buf[r.next] = *ev
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// Len reports how many events are stored.
func (r *RingTracer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Snapshot copies the stored events, oldest first.
func (r *RingTracer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := range r.count {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Dump writes a header line and the stored events in format.
func (r *RingTracer) Dump(w io.Writer, format Format) error {
	events := r.Snapshot()
	if len(events) == 0 {
		return nil
	}
	if format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "# last %d trace events\n", len(events)); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *RingTracer) Flush() error  { return nil }
func (r *RingTracer) Close() error  { return nil }
func (r *RingTracer) Level() Level  { return r.level }
func (r *RingTracer) Enabled() bool { return r.level > LevelOff }
