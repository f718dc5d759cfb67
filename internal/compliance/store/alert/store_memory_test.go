package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newAlert(clientID id.ClientID, txID id.TransactionID, rule string) models.Alert {
	return models.Alert{
		ID:            id.NewAlertID(),
		ClientID:      clientID,
		TransactionID: txID,
		Rule:          rule,
		Severity:      models.SeverityHigh,
		Status:        models.AlertStatusNew,
		RaisedAt:      s.now,
		UpdatedAt:     s.now,
		Description:   rule,
	}
}

func (s *InMemoryStoreSuite) TestCreateManyAndFind() {
	ctx := context.Background()
	clientID, txID := id.NewClientID(), id.NewTransactionID()
	a := s.newAlert(clientID, txID, "Daily limit exceeded")
	b := s.newAlert(clientID, txID, "Possible structuring")
	require.NoError(s.T(), s.store.CreateMany(ctx, []models.Alert{a, b}))

	found, err := s.store.FindByID(ctx, a.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), a, *found)

	byTx, err := s.store.ListByTransaction(ctx, txID)
	require.NoError(s.T(), err)
	require.Len(s.T(), byTx, 2)
	assert.Equal(s.T(), a.Rule, byTx[0].Rule)
	assert.Equal(s.T(), b.Rule, byTx[1].Rule)

	_, err = s.store.FindByID(ctx, id.NewAlertID())
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestCreateManyRejectsDuplicateRuleForTransaction() {
	ctx := context.Background()
	clientID, txID := id.NewClientID(), id.NewTransactionID()
	require.NoError(s.T(), s.store.CreateMany(ctx, []models.Alert{s.newAlert(clientID, txID, "Possible structuring")}))

	s.Run("already stored", func() {
		fresh := s.newAlert(clientID, txID, "Transfer from high-risk country")
		dup := s.newAlert(clientID, txID, "Possible structuring")
		err := s.store.CreateMany(ctx, []models.Alert{fresh, dup})
		assert.ErrorIs(s.T(), err, sentinel.ErrAlreadyUsed)

		_, err = s.store.FindByID(ctx, fresh.ID)
		assert.ErrorIs(s.T(), err, sentinel.ErrNotFound, "batch is all or nothing")
	})

	s.Run("repeated within the batch", func() {
		otherTx := id.NewTransactionID()
		err := s.store.CreateMany(ctx, []models.Alert{
			s.newAlert(clientID, otherTx, "Daily limit exceeded"),
			s.newAlert(clientID, otherTx, "Daily limit exceeded"),
		})
		assert.ErrorIs(s.T(), err, sentinel.ErrAlreadyUsed)
	})

	s.Run("same rule on another transaction is fine", func() {
		err := s.store.CreateMany(ctx, []models.Alert{s.newAlert(clientID, id.NewTransactionID(), "Possible structuring")})
		assert.NoError(s.T(), err)
	})
}

func (s *InMemoryStoreSuite) TestListFilters() {
	ctx := context.Background()
	ana, bruno := id.NewClientID(), id.NewClientID()
	first := s.newAlert(ana, id.NewTransactionID(), "Daily limit exceeded")
	second := s.newAlert(ana, id.NewTransactionID(), "Possible structuring")
	third := s.newAlert(bruno, id.NewTransactionID(), "Possible structuring")
	require.NoError(s.T(), s.store.CreateMany(ctx, []models.Alert{first, second, third}))
	require.NoError(s.T(), s.store.UpdateStatus(ctx, second.ID, models.AlertStatusResolved, s.now.Add(time.Hour)))

	all, err := s.store.List(ctx, models.AlertFilter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), third.ID, all[0].ID, "newest first")

	forAna, err := s.store.List(ctx, models.AlertFilter{ClientID: &ana})
	require.NoError(s.T(), err)
	assert.Len(s.T(), forAna, 2)

	open, err := s.store.List(ctx, models.AlertFilter{ClientID: &ana, Statuses: []models.AlertStatus{models.AlertStatusNew, models.AlertStatusUnderReview}})
	require.NoError(s.T(), err)
	require.Len(s.T(), open, 1)
	assert.Equal(s.T(), first.ID, open[0].ID)

	n, err := s.store.CountByClient(ctx, ana)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, n)
}

func (s *InMemoryStoreSuite) TestUpdateStatus() {
	ctx := context.Background()
	a := s.newAlert(id.NewClientID(), id.NewTransactionID(), "Possible structuring")
	require.NoError(s.T(), s.store.CreateMany(ctx, []models.Alert{a}))

	later := s.now.Add(time.Hour)
	require.NoError(s.T(), s.store.UpdateStatus(ctx, a.ID, models.AlertStatusResolved, later))

	found, err := s.store.FindByID(ctx, a.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.AlertStatusResolved, found.Status)
	assert.Equal(s.T(), later, found.UpdatedAt)
	assert.Equal(s.T(), a.Description, found.Description, "only status fields change")

	err = s.store.UpdateStatus(ctx, id.NewAlertID(), models.AlertStatusNew, later)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}
