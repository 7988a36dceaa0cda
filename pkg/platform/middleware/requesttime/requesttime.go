// Package requesttime stamps each request with the ambient inputs every
// registry write observes: wall clock time and ledger block height. All
// operations within one request see the same values.
package requesttime

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"procurement/pkg/requestcontext"
)

// HeightSource reports the current block height.
type HeightSource interface {
	Height(ctx context.Context) (uint64, error)
}

// Middleware captures the current time and, when clock is non-nil, the
// block height. A clock failure is answered with 503.
func Middleware(clock HeightSource, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), time.Now())
			if clock != nil {
				height, err := clock.Height(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "block height unavailable",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte(`{"error":"unavailable","error_description":"block height unavailable"}`))
					return
				}
				ctx = requestcontext.WithBlockHeight(ctx, height)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
