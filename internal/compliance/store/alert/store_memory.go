package alert

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/sentinel"
)

// InMemoryStore keeps alerts in memory and enforces one alert per
// (transaction, rule).
type InMemoryStore struct {
	mu     sync.RWMutex
	alerts map[id.AlertID]*models.Alert
	keys   map[models.AlertKey]id.AlertID
	order  []id.AlertID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		alerts: make(map[id.AlertID]*models.Alert),
		keys:   make(map[models.AlertKey]id.AlertID),
	}
}

// CreateMany inserts all alerts or none. A (transaction, rule) pair already
// present, or repeated within the batch, fails with sentinel.ErrAlreadyUsed.
func (s *InMemoryStore) CreateMany(_ context.Context, alerts []models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[models.AlertKey]struct{}, len(alerts))
	for _, a := range alerts {
		key := a.Key()
		if _, exists := s.keys[key]; exists {
			return fmt.Errorf("alert %q for transaction %s: %w", a.Rule, a.TransactionID, sentinel.ErrAlreadyUsed)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("alert %q for transaction %s: %w", a.Rule, a.TransactionID, sentinel.ErrAlreadyUsed)
		}
		seen[key] = struct{}{}
	}

	for _, a := range alerts {
		stored := a
		s.alerts[a.ID] = &stored
		s.keys[a.Key()] = a.ID
		s.order = append(s.order, a.ID)
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, alertID id.AlertID) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
	}
	out := *a
	return &out, nil
}

func (s *InMemoryStore) ListByTransaction(_ context.Context, txID id.TransactionID) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Alert
	for _, alertID := range s.order {
		if a := s.alerts[alertID]; a.TransactionID == txID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// List returns alerts matching filter, newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Alert
	for _, alertID := range slices.Backward(s.order) {
		if a := s.alerts[alertID]; filter.Matches(*a) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, alertID id.AlertID, status models.AlertStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	return nil
}

func (s *InMemoryStore) CountByClient(_ context.Context, clientID id.ClientID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.alerts {
		if a.ClientID == clientID {
			n++
		}
	}
	return n, nil
}
