package trace

import "errors"

// MultiTracer forwards each event to several tracers, typically a stream
// for live output plus a ring kept for a dump at exit.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer drops nil and disabled tracers from the fan-out.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	kept := make([]Tracer, 0, len(tracers))
	for _, t := range tracers {
		if t != nil && t.Enabled() {
			kept = append(kept, t)
		}
	}
	return &MultiTracer{tracers: kept, level: level}
}

func (m *MultiTracer) Emit(ev *Event) {
	if !m.level.Accepts(ev) {
		return
	}
	for _, t := range m.tracers {
		t.Emit(ev)
	}
}

// Flush flushes every tracer and joins their errors.
func (m *MultiTracer) Flush() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every tracer and joins their errors.
func (m *MultiTracer) Close() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (m *MultiTracer) Level() Level  { return m.level }
func (m *MultiTracer) Enabled() bool { return m.level > LevelOff && len(m.tracers) > 0 }

// Ring returns the first ring tracer in the fan-out, if any.
func (m *MultiTracer) Ring() (*RingTracer, bool) {
	for _, t := range m.tracers {
		if r, ok := t.(*RingTracer); ok {
			return r, true
		}
	}
	return nil, false
}
