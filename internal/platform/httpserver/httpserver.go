package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(*http.Server)

// WithErrorLogger routes net/http's internal errors (TLS handshakes, panics in
// handlers outside the recovery middleware) to logger.
func WithErrorLogger(logger *slog.Logger) Option {
	return func(s *http.Server) {
		s.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	}
}

// WithWriteTimeout bounds a full response. Evaluation under a held client lock
// must finish inside it.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d
		}
	}
}

// New builds the API server with conservative timeouts.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
