package transaction

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

// InMemoryStore keeps transactions in memory, indexed by client.
// Transactions are append-only.
type InMemoryStore struct {
	mu       sync.RWMutex
	seq      int64
	byID     map[id.TransactionID]models.Transaction
	byClient map[id.ClientID][]id.TransactionID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[id.TransactionID]models.Transaction),
		byClient: make(map[id.ClientID][]id.TransactionID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[t.ID]; exists {
		return fmt.Errorf("transaction %s: %w", t.ID, sentinel.ErrAlreadyUsed)
	}
	s.seq++
	t.Seq = s.seq
	s.byID[t.ID] = *t
	s.byClient[t.ClientID] = append(s.byClient[t.ClientID], t.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, txID id.TransactionID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", txID, sentinel.ErrNotFound)
	}
	return &t, nil
}

// ListByClient returns the client's transactions ordered by OccurredAt.
func (s *InMemoryStore) ListByClient(_ context.Context, clientID id.ClientID) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(clientID, func(models.Transaction) bool { return true }), nil
}

// ListByClientBetween returns the client's transactions with OccurredAt in
// [from, to], ordered by OccurredAt.
func (s *InMemoryStore) ListByClientBetween(_ context.Context, clientID id.ClientID, from, to time.Time) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(clientID, func(t models.Transaction) bool {
		return !t.OccurredAt.Before(from) && !t.OccurredAt.After(to)
	}), nil
}

func (s *InMemoryStore) collect(clientID id.ClientID, keep func(models.Transaction) bool) []models.Transaction {
	ids := s.byClient[clientID]
	out := make([]models.Transaction, 0, len(ids))
	for _, txID := range ids {
		if t := s.byID[txID]; keep(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return out
}
