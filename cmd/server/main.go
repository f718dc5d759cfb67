package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"txwatch/internal/compliance/engine"
	"txwatch/internal/compliance/handler"
	"txwatch/internal/compliance/lock"
	compliancemetrics "txwatch/internal/compliance/metrics"
	"txwatch/internal/compliance/policy"
	"txwatch/internal/compliance/publisher"
	"txwatch/internal/compliance/service"
	"txwatch/internal/compliance/store"
	alertstore "txwatch/internal/compliance/store/alert"
	clientstore "txwatch/internal/compliance/store/client"
	txstore "txwatch/internal/compliance/store/transaction"
	httpapi "txwatch/internal/http"
	"txwatch/internal/platform/config"
	"txwatch/internal/platform/httpserver"
	"txwatch/internal/platform/kafka"
	"txwatch/internal/platform/logger"
	httpmetrics "txwatch/internal/platform/metrics"
	"txwatch/internal/platform/middleware"
	"txwatch/internal/platform/postgres"
	"txwatch/internal/platform/redis"
	audit "txwatch/pkg/platform/audit"
	auditpublisher "txwatch/pkg/platform/audit/publishers/compliance"
	auditmemory "txwatch/pkg/platform/audit/store/memory"
	auditpostgres "txwatch/pkg/platform/audit/store/postgres"
)

// sweepInterval is how often idle rate limiter entries are dropped.
const sweepInterval = time.Minute

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("txwatch stopped with error", "error", err)
		os.Exit(1)
	}
}

// stores groups the persistence backends picked at startup.
type stores struct {
	clients      service.ClientStore
	transactions service.TransactionStore
	alerts       service.AlertStore
	tx           service.StoreTx
	audit        audit.Store
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	rules, err := policy.LoadFile(cfg.PolicyFile)
	if err != nil {
		return err
	}
	eng, err := engine.New(rules)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checks := map[string]httpapi.HealthCheck{}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if db != nil {
		defer db.Close()
		if err := store.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		checks["postgres"] = db.PingContext
	}
	st := buildStores(db)
	log.Info("storage selected", "postgres", db != nil)

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var locker service.Locker = lock.NewMemory()
	if rdb != nil {
		defer rdb.Close()
		lockOpts := []lock.RedisOption{lock.WithTTL(cfg.Redis.LockTTL), lock.WithLogger(log)}
		if cfg.Redis.LockRenew != 0 {
			lockOpts = append(lockOpts, lock.WithRenewInterval(cfg.Redis.LockRenew))
		}
		locker = lock.NewRedis(rdb.Client, lockOpts...)
		checks["redis"] = rdb.Health
	}

	alertPublisher, closeKafka, err := buildAlertPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closeKafka()
	if k, ok := alertPublisher.(interface{ Health(context.Context) error }); ok {
		checks["kafka"] = k.Health
	}

	auditPub := auditpublisher.New(st.audit,
		auditpublisher.WithLogger(log),
		auditpublisher.WithMetrics(auditpublisher.NewMetrics(reg)),
	)
	svc, err := service.New(st.clients, st.transactions, st.alerts, st.tx, locker, eng,
		service.WithLogger(log),
		service.WithMetrics(compliancemetrics.NewWithRegisterer(reg, slices.Collect(maps.Keys(rules.DailyLimits))...)),
		service.WithAuditPublisher(auditPub),
		service.WithAlertPublisher(alertPublisher),
	)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:      log,
		Routes:      []httpapi.RouteRegistrar{handler.New(svc, log)},
		Metrics:     httpmetrics.New(reg),
		RateLimiter: limiter,
		Gatherer:    reg,
		Checks:      checks,
		Degraded:    svc.PublisherDegraded,
	})
	srv := httpserver.New(cfg.Addr, router, httpserver.WithErrorLogger(log))

	go sweepLimiter(ctx, limiter)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting txwatch", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func buildStores(db *sql.DB) stores {
	if db == nil {
		return stores{
			clients:      clientstore.NewInMemory(),
			transactions: txstore.NewInMemory(),
			alerts:       alertstore.NewInMemory(),
			tx:           store.NewMemoryTx(),
			audit:        auditmemory.NewInMemoryStore(),
		}
	}
	return stores{
		clients:      clientstore.NewPostgres(db),
		transactions: txstore.NewPostgres(db),
		alerts:       alertstore.NewPostgres(db),
		tx:           store.NewPostgresTx(db),
		audit:        auditpostgres.New(db),
	}
}

// kafkaPublisher exposes the broker health check next to the publisher.
type kafkaPublisher struct {
	*publisher.Kafka
	client *kafka.Client
}

func (p kafkaPublisher) Health(ctx context.Context) error {
	return p.client.Health(ctx)
}

func buildAlertPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (service.AlertPublisher, func(), error) {
	kc, err := kafka.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	if kc == nil {
		log.Info("alert publishing disabled, no brokers configured")
		return publisher.Noop{}, func() {}, nil
	}
	if err := publisher.EnsureTopic(ctx, kc.Admin, cfg.AlertsTopic, cfg.Partitions); err != nil {
		kc.Close()
		return nil, nil, err
	}
	pub := publisher.NewKafka(kc.Client,
		publisher.WithTopic(cfg.AlertsTopic),
		publisher.WithLogger(log),
	)
	return kafkaPublisher{Kafka: pub, client: kc}, kc.Close, nil
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
