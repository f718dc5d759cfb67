package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

const keyPrefix = "txwatch:lock:client:"

// releaseScript deletes the key only if it still holds our token, so an
// expired lease taken over by another node is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only while the key still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a lease-based lock shared by every node using the same Redis.
// The lease expires after ttl so a crashed holder cannot block a client
// forever. A live holder extends it every renewEvery until unlock.
type Redis struct {
	client     *redis.Client
	ttl        time.Duration
	renewEvery time.Duration
	retryMin   time.Duration
	retryMax   time.Duration
	logger     *slog.Logger
}

type RedisOption func(*Redis)

func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRenewInterval sets how often a held lease is extended. Zero or less
// disables renewal, leaving ttl as a hard ceiling on the critical section.
// Defaults to a third of ttl.
func WithRenewInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.renewEvery = d
		if d <= 0 {
			r.renewEvery = -1
		}
	}
}

func WithRetry(minWait, maxWait time.Duration) RedisOption {
	return func(r *Redis) {
		r.retryMin = minWait
		r.retryMax = maxWait
	}
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		r.logger = logger
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client:   client,
		ttl:      10 * time.Second,
		retryMin: 5 * time.Millisecond,
		retryMax: 200 * time.Millisecond,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.renewEvery == 0 {
		r.renewEvery = max(r.ttl/3, time.Millisecond)
	}
	return r
}

// Lock acquires the client's lease with SET NX PX, retrying with capped
// exponential backoff until ctx is done.
func (r *Redis) Lock(ctx context.Context, clientID id.ClientID) (func(), error) {
	key := keyPrefix + clientID.String()
	token := uuid.NewString()
	wait := r.retryMin

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for client lock")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "acquire client lock")
		}
		if ok {
			return r.hold(key, token), nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for client lock")
		case <-timer.C:
		}
		wait = min(wait*2, r.retryMax)
	}
}

// hold keeps the lease alive until the returned unlock is called.
// Renewal stops before the key is released.
func (r *Redis) hold(key, token string) func() {
	if r.renewEvery <= 0 {
		return sync.OnceFunc(func() { r.release(key, token) })
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.renew(key, token, stop)
	}()

	return sync.OnceFunc(func() {
		close(stop)
		<-done
		r.release(key, token)
	})
}

func (r *Redis) renew(key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(r.renewEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.renewEvery)
		renewed, err := renewScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			r.logger.Warn("failed to renew client lock lease", "key", key, "error", err)
			continue
		}
		if renewed == 0 {
			r.logger.Error("client lock lease lost before unlock", "key", key)
			return
		}
	}
}

func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		r.logger.WarnContext(ctx, "failed to release client lock; lease will expire",
			"key", key,
			"error", err,
		)
	}
}
