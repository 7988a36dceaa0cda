// Package httptransport assembles the public HTTP surface: per-component
// routes behind caller authentication, plus the process endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"procurement/internal/fees"
	"procurement/internal/platform/middleware"
	"procurement/pkg/platform/httputil"
	authmw "procurement/pkg/platform/middleware/auth"
	"procurement/pkg/platform/middleware/requesttime"
)

// Routes is implemented by every component handler.
type Routes interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger      *slog.Logger
	Validator   authmw.JWTValidator
	Clock       requesttime.HeightSource
	Fees        fees.Lister
	Activity    ActivityReader
	Metrics     http.Handler
	MetricsPath string
	Checks      map[string]HealthCheck
}

// NewRouter mounts components under caller authentication and block-height
// stamping. /healthz and the metrics path stay public.
func NewRouter(cfg Config, components ...Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))

	r.Get("/healthz", handleHealth(cfg.Checks, cfg.Logger))
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.Metrics)
	}

	r.Group(func(api chi.Router) {
		api.Use(authmw.RequireCaller(cfg.Validator, cfg.Logger))
		api.Use(requesttime.Middleware(cfg.Clock, cfg.Logger))
		for _, c := range components {
			c.Register(api)
		}
		if cfg.Fees != nil {
			api.Get("/fees/transfers", handleListTransfers(cfg.Fees, cfg.Logger))
		}
		if cfg.Activity != nil {
			api.Get("/activity", handleListActivity(cfg.Activity, cfg.Logger))
		}
	})
	return r
}

func handleHealth(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "dependency", name, "error", err)
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]any{"healthy": healthy, "dependencies": status})
	}
}
