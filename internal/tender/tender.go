// Package tender is the tender registry: the source of truth for tender
// identifiers, titles and open/closed status.
package tender

import (
	"log/slog"

	"procurement/internal/fees"
	"procurement/internal/tender/handler"
	"procurement/internal/tender/service"
	"procurement/internal/tender/store"
)

// Service exposes tender lifecycle operations.
type Service = service.Service

// Handler wires HTTP endpoints to the tender service.
type Handler = handler.Handler

// NewService constructs the tender service over an in-memory store.
func NewService(recorder fees.Recorder, opts ...service.Option) *Service {
	return service.New(store.NewInMemory(), recorder, opts...)
}

// NewHandler constructs an HTTP handler for tender routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
