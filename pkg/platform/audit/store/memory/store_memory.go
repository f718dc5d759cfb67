package memory

import (
	"context"
	"sync"

	id "txwatch/pkg/domain"
	audit "txwatch/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ClientID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ClientID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ClientID] = append(s.events[event.ClientID], event)
	return nil
}

// ListByClient returns the client's events in append order.
func (s *InMemoryStore) ListByClient(_ context.Context, clientID id.ClientID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[clientID]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ClientID][]audit.Event)
}
