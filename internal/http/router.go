// Package httpapi assembles the public router: the shared middleware chain,
// the compliance routes and the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"txwatch/internal/platform/metrics"
	"txwatch/internal/platform/middleware"
	"txwatch/pkg/platform/httputil"
)

// RouteRegistrar mounts a module's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router needs. Only Logger and Routes are
// required.
type Deps struct {
	Logger      *slog.Logger
	Routes      []RouteRegistrar
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
	Gatherer    prometheus.Gatherer
	Checks      map[string]HealthCheck
	// Degraded reports non-fatal impairment, such as alert publishing being
	// suspended by its circuit breaker.
	Degraded func() bool
}

// healthTimeout bounds all dependency probes of one /healthz call.
const healthTimeout = 2 * time.Second

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", healthHandler(d))
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger(d.Logger))
		if d.RateLimiter != nil {
			r.Use(d.RateLimiter.Middleware)
		}
		for _, routes := range d.Routes {
			routes.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler answers 503 when a dependency is down and 200 with status
// "degraded" when the service works but publishing is suspended.
func healthHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(d.Checks))}
		code := http.StatusOK
		for name, check := range d.Checks {
			if err := check(ctx); err != nil {
				d.Logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				resp.Checks[name] = "down"
				resp.Status = "down"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		if code == http.StatusOK && d.Degraded != nil && d.Degraded() {
			resp.Status = "degraded"
		}
		httputil.WriteJSON(w, code, resp)
	}
}
