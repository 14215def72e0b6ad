// Package broker fans stored record batches out to live subscribers.
//
// The Registry owns the set of connected subscribers; the Dispatcher pushes
// batches to a snapshot of that set without letting one slow or dead
// subscriber stall the others or the ingestion path.
package broker

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roadsense/telemetry-hub/internal/models"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this is given the dispatch timeout to catch up
// before it is dropped.
const subscriberBuffer = 16

// Subscriber is a live broadcast destination. Batches arrive on Updates;
// Done is closed when the subscriber is unregistered.
type Subscriber struct {
	ID uuid.UUID

	ch   chan []models.ProcessedAgentDataInDB
	done chan struct{}
	once sync.Once
}

// Updates returns the channel on which stored batches are delivered.
func (s *Subscriber) Updates() <-chan []models.ProcessedAgentDataInDB {
	return s.ch
}

// Done returns a channel that is closed when the subscriber is unregistered.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Registry is the thread-safe set of currently connected subscribers. The
// mutex is held only for map manipulation, never across a send.
type Registry struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*Subscriber
}

// NewRegistry creates an empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		subscribers: make(map[uuid.UUID]*Subscriber),
	}
}

// Register creates a new subscriber and adds it to the set. Safe to call
// concurrently with broadcasts and other registrations.
func (r *Registry) Register() *Subscriber {
	sub := &Subscriber{
		ID:   uuid.New(),
		ch:   make(chan []models.ProcessedAgentDataInDB, subscriberBuffer),
		done: make(chan struct{}),
	}

	r.mu.Lock()
	r.subscribers[sub.ID] = sub
	r.mu.Unlock()

	return sub
}

// Unregister removes a subscriber. Idempotent, and safe to call while a
// broadcast to that subscriber is in flight: the data channel is never
// closed, in-flight sends observe Done instead.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	sub, ok := r.subscribers[id]
	if ok {
		delete(r.subscribers, id)
	}
	r.mu.Unlock()

	if ok {
		sub.close()
	}
}

// Snapshot returns a point-in-time copy of all live subscribers, so that
// broadcast iteration never observes concurrent mutation of the set.
func (r *Registry) Snapshot() []*Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := make([]*Subscriber, 0, len(r.subscribers))
	for _, sub := range r.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

// Len reports the number of live subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}
