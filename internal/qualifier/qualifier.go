// Package qualifier keeps bidder records, per-tender qualification
// criteria and the outcome of each evaluation.
package qualifier

import (
	"log/slog"

	"procurement/internal/fees"
	"procurement/internal/qualifier/handler"
	"procurement/internal/qualifier/service"
	"procurement/internal/qualifier/store"
)

type Service = service.Service

type Handler = handler.Handler

// NewService constructs the qualifier over an in-memory store.
func NewService(recorder fees.Recorder, opts ...service.Option) *Service {
	return service.New(store.NewInMemory(), recorder, opts...)
}

func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
