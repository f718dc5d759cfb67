package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/circuit"
)

type fakeProducer struct {
	err     error
	calls   int
	records []*kgo.Record
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.calls++
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func sampleAlert() models.Alert {
	return models.Alert{
		ID:            id.NewAlertID(),
		ClientID:      id.NewClientID(),
		TransactionID: id.NewTransactionID(),
		Rule:          "Possible structuring",
		Severity:      models.SeverityMedium,
		Status:        models.AlertStatusNew,
		Description:   "3 transfers on 2024-05-01 may indicate structuring",
	}
}

func TestKafka_PublishAlerts(t *testing.T) {
	producer := &fakeProducer{}
	k := NewKafka(producer, WithTopic("alerts.test"))
	alert := sampleAlert()

	require.NoError(t, k.PublishAlerts(context.Background(), []models.Alert{alert}))
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "alerts.test", rec.Topic)
	assert.Equal(t, alert.ClientID.String(), string(rec.Key))

	var msg Message
	require.NoError(t, json.Unmarshal(rec.Value, &msg))
	assert.Equal(t, "alert_raised", msg.Event)
	assert.Equal(t, alert.ID, msg.Alert.ID)
	assert.Equal(t, alert.Rule, msg.Alert.Rule)
}

func TestKafka_EmptyBatchIsNoop(t *testing.T) {
	producer := &fakeProducer{}
	require.NoError(t, NewKafka(producer).PublishAlerts(context.Background(), nil))
	assert.Zero(t, producer.calls)
}

func TestKafka_CircuitOpensAndProbes(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	k := NewKafka(producer,
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))),
		WithProbeInterval(time.Minute),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()
	batch := []models.Alert{sampleAlert()}

	assert.Error(t, k.PublishAlerts(ctx, batch))
	assert.False(t, k.Degraded())
	assert.Error(t, k.PublishAlerts(ctx, batch))
	assert.True(t, k.Degraded())

	// First call while open is a probe; the next one inside the interval is skipped.
	assert.Error(t, k.PublishAlerts(ctx, batch))
	assert.ErrorIs(t, k.PublishAlerts(ctx, batch), ErrCircuitOpen)
	assert.Equal(t, 3, producer.calls)

	producer.err = nil
	now = now.Add(2 * time.Minute)
	require.NoError(t, k.PublishAlerts(ctx, batch))
	assert.False(t, k.Degraded(), "successful probe closes the circuit")
}

type fakeAdmin struct {
	resp kadm.CreateTopicResponse
	err  error
}

func (f fakeAdmin) CreateTopic(_ context.Context, _ int32, _ int16, _ map[string]*string, topic string) (kadm.CreateTopicResponse, error) {
	f.resp.Topic = topic
	return f.resp, f.err
}

func TestEnsureTopic(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, EnsureTopic(ctx, fakeAdmin{}, DefaultTopic, 3))
	assert.NoError(t, EnsureTopic(ctx, fakeAdmin{resp: kadm.CreateTopicResponse{Err: kerr.TopicAlreadyExists}}, DefaultTopic, 3))
	assert.Error(t, EnsureTopic(ctx, fakeAdmin{err: errors.New("unreachable")}, DefaultTopic, 3))
	assert.Error(t, EnsureTopic(ctx, fakeAdmin{resp: kadm.CreateTopicResponse{Err: kerr.PolicyViolation}}, DefaultTopic, 3))
}

func TestNoop(t *testing.T) {
	var p Noop
	assert.NoError(t, p.PublishAlerts(context.Background(), []models.Alert{sampleAlert()}))
	assert.False(t, p.Degraded())
}
