package activity

import (
	"testing"
	"time"
)

func TestEmitter_PublishSubscribe(t *testing.T) {
	e := NewEmitter()

	events, cancel := e.Subscribe()
	defer cancel()
	if got := e.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount() = %d; want 1", got)
	}

	e.Publish(Event{Type: ObservationCreated, ObjectID: "obs-1", Message: "nap observation logged"})

	select {
	case ev := <-events:
		if ev.Type != ObservationCreated || ev.ObjectID != "obs-1" {
			t.Errorf("got event %+v", ev)
		}
		if ev.Created.IsZero() {
			t.Error("Created not defaulted")
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestEmitter_slowSubscriberDropsEvents(t *testing.T) {
	e := NewEmitter()

	events, cancel := e.Subscribe()
	defer cancel()

	// never drained; the buffer fills and publishers must not block
	for i := 0; i < subscriberBuffer+10; i++ {
		e.Publish(Event{Type: UserRegistered})
	}

	if got := len(events); got != subscriberBuffer {
		t.Errorf("len(events) = %d; want %d", got, subscriberBuffer)
	}
}

func TestEmitter_cancelClosesChannel(t *testing.T) {
	e := NewEmitter()

	events, cancel := e.Subscribe()
	cancel()
	cancel() // idempotent

	if got := e.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount() = %d; want 0", got)
	}
	if _, ok := <-events; ok {
		t.Error("channel not closed")
	}

	e.Publish(Event{Type: UserRegistered}) // no panic on closed subscriber
}

func TestEmitter_nilDiscards(t *testing.T) {
	var e *Emitter
	e.Publish(Event{Type: UserRegistered}) // must not panic
}
