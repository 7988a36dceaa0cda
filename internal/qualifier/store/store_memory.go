package store

import (
	"context"
	"fmt"
	"sync"

	"procurement/internal/qualifier/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/sentinel"
)

// InMemory holds bidders with a principal index, per-tender criteria and
// qualification outcomes keyed by (bidder, tender).
type InMemory struct {
	mu             sync.RWMutex
	bidders        map[id.BidderID]*models.Bidder
	principals     map[id.Principal]id.BidderID
	criteria       map[id.TenderID]*models.Criteria
	qualifications map[models.QualificationKey]models.Qualification
	next           id.BidderID
}

func NewInMemory() *InMemory {
	return &InMemory{
		bidders:        make(map[id.BidderID]*models.Bidder),
		principals:     make(map[id.Principal]id.BidderID),
		criteria:       make(map[id.TenderID]*models.Criteria),
		qualifications: make(map[models.QualificationKey]models.Qualification),
	}
}

func (s *InMemory) NextID(_ context.Context) (id.BidderID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next, nil
}

func (s *InMemory) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.next), nil
}

// Create inserts b under the next id. A principal may own one record.
func (s *InMemory) Create(_ context.Context, b *models.Bidder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID != s.next {
		return fmt.Errorf("bidder id %d, expected %d: %w", b.ID, s.next, sentinel.ErrConflict)
	}
	if _, taken := s.principals[b.Principal]; taken {
		return fmt.Errorf("principal %s: %w", b.Principal, sentinel.ErrAlreadyUsed)
	}
	s.bidders[b.ID] = b.Clone()
	s.principals[b.Principal] = b.ID
	s.next++
	return nil
}

func (s *InMemory) FindByID(_ context.Context, bidderID id.BidderID) (*models.Bidder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bidders[bidderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *InMemory) FindByPrincipal(_ context.Context, principal id.Principal) (*models.Bidder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bidderID, ok := s.principals[principal]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.bidders[bidderID].Clone(), nil
}

// Save replaces an existing bidder. The principal is immutable.
func (s *InMemory) Save(_ context.Context, b *models.Bidder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.bidders[b.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Principal != b.Principal {
		return fmt.Errorf("principal change on bidder %d: %w", b.ID, sentinel.ErrInvalidState)
	}
	s.bidders[b.ID] = b.Clone()
	return nil
}

// SaveCriteria overwrites the criteria for c.TenderID.
func (s *InMemory) SaveCriteria(_ context.Context, c *models.Criteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria[c.TenderID] = c.Clone()
	return nil
}

func (s *InMemory) FindCriteria(_ context.Context, tenderID id.TenderID) (*models.Criteria, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.criteria[tenderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// RecordOutcome stores the bidder's new status together with the outcome
// for key in one step.
func (s *InMemory) RecordOutcome(_ context.Context, b *models.Bidder, key models.QualificationKey, q models.Qualification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bidders[b.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.bidders[b.ID] = b.Clone()
	s.qualifications[key] = q
	return nil
}

func (s *InMemory) FindQualification(_ context.Context, key models.QualificationKey) (models.Qualification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.qualifications[key]
	if !ok {
		return models.Qualification{}, sentinel.ErrNotFound
	}
	return q, nil
}
