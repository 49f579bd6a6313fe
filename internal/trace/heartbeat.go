package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat ticks into the tracer while a long check or a language server
// runs. Ticks with a constant open-span count and no span ends in between
// mean some step stopped making progress.
type Heartbeat struct {
	tracer Tracer
	every  time.Duration
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// StartHeartbeat launches the ticker. It returns nil for a disabled tracer
// or a non-positive interval; Stop on nil is a no-op.
func StartHeartbeat(t Tracer, every time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || every <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer: t,
		every:  every,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer close(h.exited)
	ticker := time.NewTicker(h.every)
	defer ticker.Stop()

	for n := uint64(1); ; n++ {
		select {
		case <-h.done:
			return
		case at := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   at,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d open=%d", n, OpenSpans()),
			})
		}
	}
}

// Stop ends the ticker and waits for its goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	<-h.exited
}
