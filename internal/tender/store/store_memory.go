package store

import (
	"context"
	"fmt"
	"sync"

	"procurement/internal/tender/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/sentinel"
)

// InMemory holds tenders, the title index and the update log. Identifiers
// are dense: the next id always equals the number of stored tenders.
type InMemory struct {
	mu      sync.RWMutex
	tenders map[id.TenderID]*models.Tender
	titles  map[string]id.TenderID
	updates map[id.TenderID]*models.TenderUpdate
	next    id.TenderID
}

func NewInMemory() *InMemory {
	return &InMemory{
		tenders: make(map[id.TenderID]*models.Tender),
		titles:  make(map[string]id.TenderID),
		updates: make(map[id.TenderID]*models.TenderUpdate),
	}
}

// NextID reports the id the next Create must use.
func (s *InMemory) NextID(_ context.Context) (id.TenderID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next, nil
}

func (s *InMemory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.next), nil
}

// Create inserts t under the next id and indexes its title.
func (s *InMemory) Create(_ context.Context, t *models.Tender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID != s.next {
		return fmt.Errorf("tender id %d, expected %d: %w", t.ID, s.next, sentinel.ErrConflict)
	}
	if _, taken := s.titles[t.Title]; taken {
		return fmt.Errorf("title %q: %w", t.Title, sentinel.ErrAlreadyUsed)
	}
	s.tenders[t.ID] = t.Clone()
	s.titles[t.Title] = t.ID
	s.next++
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenderID id.TenderID) (*models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenders[tenderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *InMemory) FindByTitle(_ context.Context, title string) (*models.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenderID, ok := s.titles[title]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.tenders[tenderID].Clone(), nil
}

// Save replaces an existing tender, moving its title index entry when the
// title changed, and overwrites the update slot when update is non-nil.
func (s *InMemory) Save(_ context.Context, t *models.Tender, update *models.TenderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tenders[t.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Title != t.Title {
		if holder, taken := s.titles[t.Title]; taken && holder != t.ID {
			return fmt.Errorf("title %q: %w", t.Title, sentinel.ErrAlreadyUsed)
		}
		delete(s.titles, current.Title)
		s.titles[t.Title] = t.ID
	}
	s.tenders[t.ID] = t.Clone()
	if update != nil {
		u := *update
		s.updates[t.ID] = &u
	}
	return nil
}

func (s *InMemory) FindUpdate(_ context.Context, tenderID id.TenderID) (*models.TenderUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.updates[tenderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *u
	return &c, nil
}
