package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"TXWATCH_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "ALERTS_TOPIC", "RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "compliance.alerts", cfg.Kafka.AlertsTopic)
	assert.Equal(t, 50.0, cfg.RateLimitRPS)
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	assert.Zero(t, cfg.Redis.LockRenew)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TXWATCH_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_LOCK_TTL", "3s")
	t.Setenv("REDIS_LOCK_RENEW", "500ms")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 3*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.LockRenew)
	assert.Equal(t, 100, cfg.RateLimitBurst)
}
