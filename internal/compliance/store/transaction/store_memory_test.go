package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store    *InMemoryStore
	clientID id.ClientID
	base     time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.clientID = id.NewClientID()
	s.base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newTx(clientID id.ClientID, offset time.Duration) *models.Transaction {
	return &models.Transaction{
		ID:         id.NewTransactionID(),
		ClientID:   clientID,
		Type:       models.TransactionTypeDeposit,
		Amount:     decimal.NewFromInt(100),
		Currency:   "BRL",
		OccurredAt: s.base.Add(offset),
	}
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	t := s.newTx(s.clientID, 0)
	require.NoError(s.T(), s.store.Create(ctx, t))

	found, err := s.store.FindByID(ctx, t.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), t, found)

	assert.ErrorIs(s.T(), s.store.Create(ctx, t), sentinel.ErrAlreadyUsed)

	_, err = s.store.FindByID(ctx, id.NewTransactionID())
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListByClientIsTimeOrdered() {
	ctx := context.Background()
	late := s.newTx(s.clientID, 2*time.Hour)
	early := s.newTx(s.clientID, 0)
	other := s.newTx(id.NewClientID(), time.Hour)
	for _, t := range []*models.Transaction{late, early, other} {
		require.NoError(s.T(), s.store.Create(ctx, t))
	}

	txs, err := s.store.ListByClient(ctx, s.clientID)
	require.NoError(s.T(), err)
	require.Len(s.T(), txs, 2)
	assert.Equal(s.T(), early.ID, txs[0].ID)
	assert.Equal(s.T(), late.ID, txs[1].ID)

	none, err := s.store.ListByClient(ctx, id.NewClientID())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), none)
}

func (s *InMemoryStoreSuite) TestListByClientBetween() {
	ctx := context.Background()
	before := s.newTx(s.clientID, -72*time.Hour)
	inside := s.newTx(s.clientID, 0)
	edge := s.newTx(s.clientID, 24*time.Hour)
	after := s.newTx(s.clientID, 72*time.Hour)
	for _, t := range []*models.Transaction{before, inside, edge, after} {
		require.NoError(s.T(), s.store.Create(ctx, t))
	}

	txs, err := s.store.ListByClientBetween(ctx, s.clientID, s.base.Add(-time.Hour), s.base.Add(24*time.Hour))
	require.NoError(s.T(), err)
	require.Len(s.T(), txs, 2)
	assert.Equal(s.T(), inside.ID, txs[0].ID)
	assert.Equal(s.T(), edge.ID, txs[1].ID, "window bounds are inclusive")
}

func (s *InMemoryStoreSuite) TestCreateAssignsInsertionOrder() {
	ctx := context.Background()
	late := s.newTx(s.clientID, 2*time.Hour)
	backdated := s.newTx(s.clientID, 0)
	require.NoError(s.T(), s.store.Create(ctx, late))
	require.NoError(s.T(), s.store.Create(ctx, backdated))

	assert.Positive(s.T(), late.Seq)
	assert.Greater(s.T(), backdated.Seq, late.Seq, "seq follows insertion, not occurred_at")

	found, err := s.store.FindByID(ctx, backdated.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), backdated.Seq, found.Seq)
}
