// Package activity fans admin activity-feed events out to currently-connected
// subscribers. Delivery is best effort: events are never persisted and a
// subscriber that falls behind loses events rather than blocking publishers.
package activity

import (
	"sync"
	"time"
)

// Event types
const (
	UserRegistered     = "user.registered"
	ObservationCreated = "observation.created"
	ContentFlagged     = "moderation.flagged"
	FlagResolved       = "moderation.resolved"
)

type Event struct {
	Type     string    `json:"type"`
	ActorID  string    `json:"actor_id,omitempty"`
	ObjectID string    `json:"object_id,omitempty"`
	Message  string    `json:"message"`
	Created  time.Time `json:"created"`
}

const subscriberBuffer = 16

type Emitter struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[chan Event]struct{})}
}

// Publish delivers ev to all current subscribers, dropping it for any
// subscriber whose buffer is full. A nil Emitter discards events.
func (e *Emitter) Publish(ev Event) {
	if e == nil {
		return
	}
	if ev.Created.IsZero() {
		ev.Created = time.Now().UTC()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for sub := range e.subs {
		select {
		case sub <- ev:
		default: // slow subscriber; drop
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when done; the events channel is closed by it.
func (e *Emitter) Subscribe() (events <-chan Event, cancel func()) {
	sub := make(chan Event, subscriberBuffer)

	e.mu.Lock()
	e.subs[sub] = struct{}{}
	e.mu.Unlock()

	cancel = func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[sub]; ok {
			delete(e.subs, sub)
			close(sub)
		}
	}
	return sub, cancel
}

// SubscriberCount is exposed for the debug endpoint.
func (e *Emitter) SubscriberCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
