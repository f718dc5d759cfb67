package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "txwatch/pkg/domain"
	audit "txwatch/pkg/platform/audit"
	"txwatch/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

func (failingStore) ListByClient(context.Context, id.ClientID) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_Emit(t *testing.T) {
	store := memory.NewInMemoryStore()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMetrics(prometheus.NewRegistry())
	pub := New(store, WithMetrics(m), WithClock(func() time.Time { return fixed }))
	clientID := id.NewClientID()

	err := pub.Emit(context.Background(), audit.Event{
		ClientID: clientID,
		Action:   string(audit.EventClientRegistered),
	})
	require.NoError(t, err)

	events, err := store.ListByClient(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp, "missing timestamps are stamped")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsEmitted.WithLabelValues(string(audit.EventClientRegistered))))
}

func TestPublisher_RejectsIncompleteEvents(t *testing.T) {
	pub := New(memory.NewInMemoryStore())
	assert.Error(t, pub.Emit(context.Background(), audit.Event{Action: "alert_raised"}))
	assert.Error(t, pub.Emit(context.Background(), audit.Event{ClientID: id.NewClientID()}))
}

func TestPublisher_FailsClosed(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	pub := New(failingStore{}, WithMetrics(m))

	err := pub.Emit(context.Background(), audit.Event{ClientID: id.NewClientID(), Action: "alert_raised"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compliance audit persistence failed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures))
}
