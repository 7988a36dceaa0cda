package fees

import (
	"context"
	"slices"
	"sync"

	id "procurement/pkg/domain"
)

// InMemoryLedger keeps transfers in recording order.
type InMemoryLedger struct {
	mu        sync.RWMutex
	transfers []Transfer
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{}
}

func (l *InMemoryLedger) Record(_ context.Context, t Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transfers = append(l.transfers, normalize(t))
	return nil
}

// List returns every transfer in recording order.
func (l *InMemoryLedger) List(_ context.Context) ([]Transfer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.transfers), nil
}

// ListByPayer returns the transfers whose From is one of payers. An empty
// filter returns everything.
func (l *InMemoryLedger) ListByPayer(ctx context.Context, payers []id.Principal) ([]Transfer, error) {
	if len(payers) == 0 {
		return l.List(ctx)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transfer, 0)
	for _, t := range l.transfers {
		if slices.Contains(payers, t.From) {
			out = append(out, t)
		}
	}
	return out, nil
}
