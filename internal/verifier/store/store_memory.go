package store

import (
	"context"
	"fmt"
	"sync"

	"procurement/internal/verifier/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/sentinel"
)

// InMemorySnapshots holds tender and bid snapshots.
type InMemorySnapshots struct {
	mu      sync.RWMutex
	tenders map[id.TenderID]*models.TenderAudit
	bids    map[models.BidKey]*models.BidAudit
}

func NewInMemorySnapshots() *InMemorySnapshots {
	return &InMemorySnapshots{
		tenders: make(map[id.TenderID]*models.TenderAudit),
		bids:    make(map[models.BidKey]*models.BidAudit),
	}
}

func (s *InMemorySnapshots) SaveTenderAudit(_ context.Context, a *models.TenderAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenders[a.TenderID] = a.Clone()
	return nil
}

func (s *InMemorySnapshots) FindTenderAudit(_ context.Context, tenderID id.TenderID) (*models.TenderAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.tenders[tenderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *InMemorySnapshots) SaveBidAudit(_ context.Context, key models.BidKey, a *models.BidAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[key] = a.Clone()
	return nil
}

func (s *InMemorySnapshots) FindBidAudit(_ context.Context, key models.BidKey) (*models.BidAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.bids[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

// InMemoryRequests is the verification request log. Ids are dense.
type InMemoryRequests struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.VerificationRequest
	next     id.RequestID
}

func NewInMemoryRequests() *InMemoryRequests {
	return &InMemoryRequests{requests: make(map[id.RequestID]*models.VerificationRequest)}
}

func (s *InMemoryRequests) NextID(_ context.Context) (id.RequestID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next, nil
}

func (s *InMemoryRequests) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.next), nil
}

func (s *InMemoryRequests) Create(_ context.Context, r *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID != s.next {
		return fmt.Errorf("request id %d, expected %d: %w", r.ID, s.next, sentinel.ErrConflict)
	}
	s.requests[r.ID] = r.Clone()
	s.next++
	return nil
}

func (s *InMemoryRequests) FindByID(_ context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemoryRequests) Save(_ context.Context, r *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.requests[r.ID] = r.Clone()
	return nil
}
