// Package verifier answers verification requests against read-only audit
// snapshots of tenders and bids.
package verifier

import (
	"log/slog"

	"procurement/internal/verifier/handler"
	"procurement/internal/verifier/ingest"
	"procurement/internal/verifier/service"
	"procurement/internal/verifier/store"
)

type Service = service.Service

type Handler = handler.Handler

// NewService constructs the verifier with in-memory snapshots and requests.
func NewService(opts ...service.Option) *Service {
	return service.New(store.NewInMemorySnapshots(), store.NewInMemoryRequests(), opts...)
}

func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}

// NewIngestHandler returns the Kafka handler that writes snapshots into s.
func NewIngestHandler(s *Service, logger *slog.Logger) *ingest.Handler {
	return ingest.NewHandler(s, logger)
}
