// Package chi serves the matching engine's admin HTTP surface: health and
// the serving process's Prometheus metrics.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appmetrics "github.com/libris-match/engine/internal/metrics"
)

// HealthChecker reports whether a collaborator (e.g. the disambiguation
// transport) is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter builds the admin HTTP router: /healthz and /metrics.
// healthCheckers is consulted by /healthz; a nil or empty slice
// means there is nothing external to check (a batch run with no
// disambiguation transport configured, for instance).
func NewRouter(logger *zap.Logger, healthCheckers ...HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(appmetrics.Middleware())

	r.Get("/healthz", healthHandler(logger, healthCheckers))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthHandler(logger *zap.Logger, checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := struct {
			OK     bool     `json:"ok"`
			Errors []string `json:"errors,omitempty"`
		}{OK: true}

		for _, c := range checkers {
			if err := c.HealthCheck(r.Context()); err != nil {
				status.OK = false
				status.Errors = append(status.Errors, err.Error())
				if logger != nil {
					logger.Warn("health check failed", zap.Error(err))
				}
			}
		}

		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
