package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"procurement/internal/tender/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/sentinel"
)

type TenderStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestTenderStoreSuite(t *testing.T) {
	suite.Run(t, new(TenderStoreSuite))
}

func (s *TenderStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *TenderStoreSuite) create(title string) *models.Tender {
	next, err := s.store.NextID(s.ctx)
	s.Require().NoError(err)
	t := &models.Tender{
		ID:           next,
		Title:        title,
		Creator:      "ST1CREATOR",
		Status:       models.StatusOpen,
		MetadataHash: id.Hash("hash"),
	}
	s.Require().NoError(s.store.Create(s.ctx, t))
	return t
}

func (s *TenderStoreSuite) TestCreateAndLookup() {
	s.Run("allocates dense ids", func() {
		a := s.create("A")
		b := s.create("B")
		s.Equal(id.TenderID(0), a.ID)
		s.Equal(id.TenderID(1), b.ID)
		count, err := s.store.Count(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(2), count)
	})

	s.Run("finds by id and title", func() {
		found, err := s.store.FindByTitle(s.ctx, "B")
		s.Require().NoError(err)
		s.Equal(id.TenderID(1), found.ID)

		_, err = s.store.FindByID(s.ctx, 99)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects out-of-order id", func() {
		err := s.store.Create(s.ctx, &models.Tender{ID: 7, Title: "Z"})
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("rejects duplicate title without consuming id", func() {
		before, _ := s.store.NextID(s.ctx)
		err := s.store.Create(s.ctx, &models.Tender{ID: before, Title: "A"})
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
		after, _ := s.store.NextID(s.ctx)
		s.Equal(before, after)
	})
}

func (s *TenderStoreSuite) TestSaveReindexesTitle() {
	a := s.create("Old")
	s.create("Taken")

	s.Run("rename frees old title", func() {
		a.Title = "New"
		s.Require().NoError(s.store.Save(s.ctx, a, &models.TenderUpdate{UpdatedTitle: "New", UpdatedBy: "ST1CREATOR"}))

		_, err := s.store.FindByTitle(s.ctx, "Old")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		found, err := s.store.FindByTitle(s.ctx, "New")
		s.Require().NoError(err)
		s.Equal(a.ID, found.ID)

		u, err := s.store.FindUpdate(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("New", u.UpdatedTitle)
	})

	s.Run("rename onto another tender's title fails", func() {
		a.Title = "Taken"
		s.Require().ErrorIs(s.store.Save(s.ctx, a, nil), sentinel.ErrAlreadyUsed)
		found, err := s.store.FindByID(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("New", found.Title)
	})

	s.Run("stored copies are not aliased", func() {
		found, err := s.store.FindByID(s.ctx, a.ID)
		s.Require().NoError(err)
		found.Status = models.StatusClosed
		again, _ := s.store.FindByID(s.ctx, a.ID)
		s.Equal(models.StatusOpen, again.Status)
	})
}
