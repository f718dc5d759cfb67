package client

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/sentinel"
)

// InMemoryStore keeps clients in memory for tests and single-node dev runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	clients map[id.ClientID]models.Client
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{clients: make(map[id.ClientID]models.Client)}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[c.ID]; exists {
		return fmt.Errorf("client %s: %w", c.ID, sentinel.ErrAlreadyUsed)
	}
	s.clients[c.ID] = *c
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", clientID, sentinel.ErrNotFound)
	}
	return &c, nil
}

// List returns all clients ordered by name.
func (s *InMemoryStore) List(_ context.Context) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Client) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}
