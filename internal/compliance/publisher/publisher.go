// Package publisher forwards raised alerts to downstream consumers (case
// management, notification) over Kafka. Publishing is best effort: alerts are
// already persisted when it runs, so a broker outage degrades notification
// but never fails a submission.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"txwatch/internal/compliance/models"
	"txwatch/pkg/platform/circuit"
)

// DefaultTopic carries one message per raised alert, keyed by client ID so a
// client's alerts stay ordered within a partition.
const DefaultTopic = "compliance.alerts"

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Message is the JSON payload written for every alert.
type Message struct {
	Event       string       `json:"event"`
	Alert       models.Alert `json:"alert"`
	PublishedAt time.Time    `json:"published_at"`
}

// ErrCircuitOpen is returned while the broker is considered unhealthy and the
// probe interval has not elapsed.
var ErrCircuitOpen = errors.New("alert publisher circuit open")

// Kafka publishes alerts synchronously and trips a circuit breaker on
// repeated broker failures. While open, one probe is let through per
// probeInterval; everything else is skipped.
type Kafka struct {
	producer      Producer
	topic         string
	breaker       *circuit.Breaker
	logger        *slog.Logger
	timeout       time.Duration
	probeInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	lastProbe time.Time
}

type Option func(*Kafka)

func WithTopic(topic string) Option {
	return func(k *Kafka) {
		if topic != "" {
			k.topic = topic
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(k *Kafka) {
		k.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(k *Kafka) {
		k.breaker = b
	}
}

func WithTimeout(d time.Duration) Option {
	return func(k *Kafka) {
		if d > 0 {
			k.timeout = d
		}
	}
}

func WithProbeInterval(d time.Duration) Option {
	return func(k *Kafka) {
		k.probeInterval = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(k *Kafka) {
		k.now = now
	}
}

func NewKafka(producer Producer, opts ...Option) *Kafka {
	k := &Kafka{
		producer:      producer,
		topic:         DefaultTopic,
		breaker:       circuit.New("alert-publisher"),
		logger:        slog.Default(),
		timeout:       5 * time.Second,
		probeInterval: 30 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// PublishAlerts writes one record per alert. An empty batch is a no-op.
func (k *Kafka) PublishAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if !k.allow() {
		k.logger.WarnContext(ctx, "alert publishing skipped, circuit open",
			"alerts", len(alerts),
			"topic", k.topic,
		)
		return ErrCircuitOpen
	}

	records := make([]*kgo.Record, 0, len(alerts))
	publishedAt := k.now()
	for _, a := range alerts {
		payload, err := json.Marshal(Message{Event: "alert_raised", Alert: a, PublishedAt: publishedAt})
		if err != nil {
			return fmt.Errorf("encode alert %s: %w", a.ID, err)
		}
		records = append(records, &kgo.Record{
			Topic: k.topic,
			Key:   []byte(a.ClientID.String()),
			Value: payload,
			Headers: []kgo.RecordHeader{
				{Key: "rule", Value: []byte(a.Rule)},
				{Key: "severity", Value: []byte(a.Severity)},
			},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	if err := k.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		if _, change := k.breaker.RecordFailure(); change.Opened {
			k.logger.ErrorContext(ctx, "alert publisher circuit opened", "topic", k.topic, "error", err)
		}
		return fmt.Errorf("produce alerts: %w", err)
	}
	if _, change := k.breaker.RecordSuccess(); change.Closed {
		k.logger.InfoContext(ctx, "alert publisher circuit closed", "topic", k.topic)
	}
	return nil
}

// Degraded reports whether the breaker is open.
func (k *Kafka) Degraded() bool {
	return k.breaker.IsOpen()
}

func (k *Kafka) allow() bool {
	if !k.breaker.IsOpen() {
		return true
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	if now.Sub(k.lastProbe) < k.probeInterval {
		return false
	}
	k.lastProbe = now
	return true
}

// TopicCreator is the subset of *kadm.Client used to provision the topic.
type TopicCreator interface {
	CreateTopic(ctx context.Context, partitions int32, replicationFactor int16, configs map[string]*string, topic string) (kadm.CreateTopicResponse, error)
}

// EnsureTopic creates topic if it does not exist. Replication factor -1
// uses the broker default.
func EnsureTopic(ctx context.Context, admin TopicCreator, topic string, partitions int32) error {
	resp, err := admin.CreateTopic(ctx, partitions, -1, nil, topic)
	if err == nil {
		err = resp.Err
	}
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

// Noop drops alerts. Used when no brokers are configured.
type Noop struct{}

func (Noop) PublishAlerts(context.Context, []models.Alert) error { return nil }

func (Noop) Degraded() bool { return false }
