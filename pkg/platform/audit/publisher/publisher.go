package publisher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	id "procurement/pkg/domain"
	audit "procurement/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit in async mode when the buffer is full.
var ErrBufferFull = errors.New("audit buffer full")

// Store is the append-only persistence used by the publisher.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
	ListByActor(ctx context.Context, actor id.Principal) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Publisher writes events to a store, synchronously by default or through
// a bounded buffer drained by a single goroutine.
type Publisher struct {
	store   Store
	buffer  chan audit.Event
	wg      sync.WaitGroup
	closeMu sync.Once
	onError func(error)
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Event, n)
		}
	}
}

// WithErrorHandler receives store errors from the async worker.
func WithErrorHandler(fn func(error)) Option {
	return func(p *Publisher) { p.onError = fn }
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.store.Append(context.Background(), event); err != nil && p.onError != nil {
			p.onError(err)
		}
	}
}

// Emit stamps missing fields and hands the event to the store.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.Action(event.Action).Category()
	}
	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context, actor id.Principal) ([]audit.Event, error) {
	return p.store.ListByActor(ctx, actor)
}

func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains queued events. Emit must not be called after Close.
func (p *Publisher) Close() {
	p.closeMu.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}
