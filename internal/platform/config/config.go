package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	PolicyFile      string
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig selects PostgreSQL persistence. An empty URL keeps all
// state in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig selects the distributed per-client lock. An empty URL uses an
// in-process lock.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// LockTTL bounds how long a crashed node can block a client. Live
	// holders renew every LockRenew; zero renews at a third of the TTL and
	// a negative value turns renewal off.
	LockTTL   time.Duration
	LockRenew time.Duration
}

// KafkaConfig selects alert publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers     []string
	AlertsTopic string
	Partitions  int32
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func FromEnv() Server {
	_ = godotenv.Load()

	return Server{
		Addr:            getString("TXWATCH_ADDR", ":8080"),
		LogLevel:        getString("LOG_LEVEL", "info"),
		PolicyFile:      os.Getenv("POLICY_FILE"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RateLimitRPS:    getFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst:  getInt("RATE_LIMIT_BURST", 100),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			LockTTL:      getDuration("REDIS_LOCK_TTL", 10*time.Second),
			LockRenew:    getDuration("REDIS_LOCK_RENEW", 0),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
			AlertsTopic: getString("ALERTS_TOPIC", "compliance.alerts"),
			Partitions:  int32(getInt("ALERTS_TOPIC_PARTITIONS", 3)),
		},
	}
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
