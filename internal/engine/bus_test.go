package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestBusOrderAndUnsubscribe(t *testing.T) {
	bus := NewBus()
	var got []string
	record := func(name string) Handler {
		return func(Event) error {
			got = append(got, name)
			return nil
		}
	}
	bus.Subscribe(TriggerChanged, record("first"))
	second := bus.Subscribe(TriggerChanged, record("second"))
	bus.Subscribe(TriggerOpened, record("opened"))
	bus.Subscribe(TriggerChanged, record("third"))

	if err := bus.Publish(Event{Trigger: TriggerChanged}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if want := []string{"first", "second", "third"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	got = nil
	bus.Unsubscribe(second)
	_ = bus.Publish(Event{Trigger: TriggerChanged})
	if want := []string{"first", "third"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after unsubscribe = %v, want %v", got, want)
	}

	bus.UnsubscribeAll()
	got = nil
	_ = bus.Publish(Event{Trigger: TriggerChanged})
	if len(got) != 0 || bus.Len() != 0 {
		t.Fatalf("handlers ran after UnsubscribeAll: %v", got)
	}
}

func TestBusReturnsFirstErrorAndRunsAll(t *testing.T) {
	bus := NewBus()
	first := errors.New("first")
	ran := 0
	bus.Subscribe(TriggerOpened, func(Event) error { ran++; return first })
	bus.Subscribe(TriggerOpened, func(Event) error { ran++; return errors.New("second") })
	if err := bus.Publish(Event{Trigger: TriggerOpened}); !errors.Is(err, first) {
		t.Fatalf("expected first error, got %v", err)
	}
	if ran != 2 {
		t.Fatalf("expected both handlers to run, ran %d", ran)
	}
}
