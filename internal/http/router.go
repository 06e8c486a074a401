// Package httpapi assembles the public HTTP surface: shared middleware,
// unauthenticated probes, and the authenticated module routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agrocert/internal/platform/metrics"
	"agrocert/internal/platform/middleware"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Validator      middleware.IdentityValidator
	RequestTimeout time.Duration
	HealthChecks   map[string]HealthCheck
	Modules        []Module
}

// NewRouter wires middleware in order: request id, pinned clock, recovery,
// access log, latency. /health and /metrics stay outside authentication.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", health(cfg.HealthChecks, cfg.Logger))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		for _, m := range cfg.Modules {
			m.Register(r)
		}
	})
	return r
}

func health(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				status[name] = "down"
				continue
			}
			status[name] = "up"
		}
		for _, s := range status {
			if s == "down" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "dependency unavailable"))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "dependencies": status})
	}
}
