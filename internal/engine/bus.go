package engine

import "sync"

// Trigger names a host event that may cause a recomputation.
type Trigger uint8

const (
	TriggerOpened Trigger = iota + 1
	TriggerChanged
	TriggerActiveEditorChanged
)

func (t Trigger) String() string {
	switch t {
	case TriggerOpened:
		return "opened"
	case TriggerChanged:
		return "changed"
	case TriggerActiveEditorChanged:
		return "active-editor-changed"
	}
	return "unknown"
}

// Event carries the payload of a trigger. Doc may be nil when the document
// was closed before the event got dispatched; Editor is nil when no editor
// is active.
type Event struct {
	Trigger Trigger
	Doc     Document
	Editor  *EditorRef
}

// Handler reacts to an event.
type Handler func(Event) error

// Subscription is returned by Bus.Subscribe.
type Subscription struct {
	id      uint64
	trigger Trigger
}

// Bus dispatches events to handlers in the order they subscribed.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

type subscriber struct {
	id      uint64
	trigger Trigger
	h       Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe appends h to the handlers of trigger.
func (b *Bus) Subscribe(trigger Trigger, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, trigger: trigger, h: h})
	return Subscription{id: b.nextID, trigger: trigger}
}

// Unsubscribe removes one subscription. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == s.id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// UnsubscribeAll drops every subscription.
func (b *Bus) UnsubscribeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = nil
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish runs matching handlers synchronously in subscription order and
// returns the first error. Later handlers still run.
func (b *Bus) Publish(ev Event) error {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.trigger == ev.Trigger {
			handlers = append(handlers, sub.h)
		}
	}
	b.mu.Unlock()

	var firstErr error
	for _, h := range handlers {
		if err := h(ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
