package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"txwatch/internal/platform/config"
)

// Client bundles a franz-go producer client with its admin client.
type Client struct {
	*kgo.Client
	Admin *kadm.Client
}

// New connects to the configured brokers. Returns nil if no brokers are
// configured (publishing disabled).
func New(ctx context.Context, cfg config.KafkaConfig) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AlertsTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &Client{Client: cl, Admin: kadm.NewClient(cl)}, nil
}

// Health checks broker reachability.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx)
}
