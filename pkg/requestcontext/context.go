// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the caller principal, block height, request id and
// request time; services only read them. Keeping this package free of
// net/http lets services and tests inject values directly:
//
//	ctx = requestcontext.WithCaller(ctx, "ST1CALLER")
//	ctx = requestcontext.WithBlockHeight(ctx, 12)
//
// Usage in services:
//
//	caller := requestcontext.Caller(ctx)
//	height := requestcontext.BlockHeight(ctx)
package requestcontext

import (
	"context"
	"time"

	id "procurement/pkg/domain"
)

type (
	callerKey      struct{}
	blockHeightKey struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyCaller      = callerKey{}
	ContextKeyBlockHeight = blockHeightKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Caller returns the principal that issued the current call.
// Returns the zero principal if not set.
func Caller(ctx context.Context) id.Principal {
	if p, ok := ctx.Value(ContextKeyCaller).(id.Principal); ok {
		return p
	}
	return ""
}

func WithCaller(ctx context.Context, caller id.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// BlockHeight returns the ledger block height observed for the current call.
// Unset contexts observe height zero.
func BlockHeight(ctx context.Context) uint64 {
	if h, ok := ctx.Value(ContextKeyBlockHeight).(uint64); ok {
		return h
	}
	return 0
}

func WithBlockHeight(ctx context.Context, height uint64) context.Context {
	return context.WithValue(ctx, ContextKeyBlockHeight, height)
}

// RequestID retrieves the correlation id set by middleware.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now returns the request-scoped wall clock time, falling back to time.Now.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// WithCall is a convenience for tests and non-HTTP entry points that need
// both ambient ledger inputs at once.
func WithCall(ctx context.Context, caller id.Principal, height uint64) context.Context {
	return WithBlockHeight(WithCaller(ctx, caller), height)
}
