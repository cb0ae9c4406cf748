package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/tripweave/tripweave-backend/types"
)

// MemoryPublisher records events in process. It backs the in-memory store
// configuration and tests.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []types.TripEvent
	err    error
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (m *MemoryPublisher) Publish(_ context.Context, event types.TripEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// FailWith makes every later Publish return err. A nil err restores normal
// behaviour.
func (m *MemoryPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Events returns a copy of everything published so far.
func (m *MemoryPublisher) Events() []types.TripEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.TripEvent(nil), m.events...)
}

// EventsFor filters the recorded events by trip.
func (m *MemoryPublisher) EventsFor(tripID string) []types.TripEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.TripEvent
	for _, e := range m.events {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out
}
