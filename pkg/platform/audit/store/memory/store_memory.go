package memory

import (
	"context"
	"sync"

	id "procurement/pkg/domain"
	audit "procurement/pkg/platform/audit"
)

// InMemoryStore keeps events in append order, indexed by actor.
type InMemoryStore struct {
	mu      sync.RWMutex
	all     []audit.Event
	byActor map[id.Principal][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byActor: make(map[id.Principal][]int)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = nil
	s.byActor = make(map[id.Principal][]int)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byActor[event.Actor] = append(s.byActor[event.Actor], len(s.all))
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor id.Principal) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, 0, len(s.byActor[actor]))
	for _, i := range s.byActor[actor] {
		out = append(out, s.all[i])
	}
	return out, nil
}

// ListRecent returns up to limit of the most recent events, oldest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := max(len(s.all)-limit, 0)
	return append([]audit.Event{}, s.all[start:]...), nil
}
