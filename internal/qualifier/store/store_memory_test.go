package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/qualifier/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/sentinel"
)

func newBidder(t *testing.T, s *InMemory, principal id.Principal) *models.Bidder {
	t.Helper()
	next, err := s.NextID(context.Background())
	require.NoError(t, err)
	b := &models.Bidder{
		ID:          next,
		Principal:   principal,
		LicenseHash: id.Hash("lic"),
		Status:      models.StatusPending,
	}
	require.NoError(t, s.Create(context.Background(), b))
	return b
}

func TestInMemoryBidders(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	a := newBidder(t, s, "ST1ALPHA")
	b := newBidder(t, s, "ST1BRAVO")
	assert.Equal(t, id.BidderID(0), a.ID)
	assert.Equal(t, id.BidderID(1), b.ID)

	t.Run("rejects duplicate principal", func(t *testing.T) {
		next, _ := s.NextID(ctx)
		err := s.Create(ctx, &models.Bidder{ID: next, Principal: "ST1ALPHA"})
		require.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
		count, _ := s.Count(ctx)
		assert.Equal(t, uint64(2), count)
	})

	t.Run("rejects out of sequence id", func(t *testing.T) {
		err := s.Create(ctx, &models.Bidder{ID: 7, Principal: "ST1CHARLIE"})
		require.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("finds by principal", func(t *testing.T) {
		found, err := s.FindByPrincipal(ctx, "ST1BRAVO")
		require.NoError(t, err)
		assert.Equal(t, b.ID, found.ID)
		_, err = s.FindByPrincipal(ctx, "ST1NOBODY")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		found, err := s.FindByID(ctx, a.ID)
		require.NoError(t, err)
		found.LicenseHash[0] = 'X'
		found.Status = models.StatusRejected

		again, err := s.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, id.Hash("lic"), again.LicenseHash)
		assert.Equal(t, models.StatusPending, again.Status)
	})

	t.Run("save keeps principal immutable", func(t *testing.T) {
		moved := a.Clone()
		moved.Principal = "ST1OTHER"
		require.ErrorIs(t, s.Save(ctx, moved), sentinel.ErrInvalidState)
	})
}

func TestInMemoryCriteriaAndOutcomes(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	b := newBidder(t, s, "ST1ALPHA")

	_, err := s.FindCriteria(ctx, 3)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.SaveCriteria(ctx, &models.Criteria{TenderID: 3, MinFinancial: 10}))
	require.NoError(t, s.SaveCriteria(ctx, &models.Criteria{TenderID: 3, MinFinancial: 20}))
	c, err := s.FindCriteria(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), c.MinFinancial, "criteria overwrite")

	key := models.QualificationKey{BidderID: b.ID, TenderID: 3}
	_, err = s.FindQualification(ctx, key)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	b.Status = models.StatusQualified
	require.NoError(t, s.RecordOutcome(ctx, b, key, models.NewQualification(true, 12)))

	q, err := s.FindQualification(ctx, key)
	require.NoError(t, err)
	assert.True(t, q.Qualified)
	assert.Equal(t, uint64(12), q.QualifiedAt)

	stored, err := s.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQualified, stored.Status)

	_, err = s.FindQualification(ctx, models.QualificationKey{BidderID: b.ID, TenderID: 4})
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	err = s.RecordOutcome(ctx, &models.Bidder{ID: 42}, key, models.Qualification{})
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
