package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "procurement/pkg/domain"
)

func validCreate() CreateTenderRequest {
	return CreateTenderRequest{
		Title:        "Road Project",
		Description:  "Build a road",
		Deadline:     100,
		Eligibility:  "Licensed contractors",
		Budget:       1_000_000,
		Category:     CategoryInfrastructure,
		MetadataHash: id.Hash(strings.Repeat("a", 32)),
	}
}

func TestCreateTenderRequestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateTenderRequest)
		height uint64
		want   error
	}{
		{"valid", func(*CreateTenderRequest) {}, 0, nil},
		{"empty title", func(r *CreateTenderRequest) { r.Title = "" }, 0, ErrInvalidTitle},
		{"title too long", func(r *CreateTenderRequest) { r.Title = strings.Repeat("a", 101) }, 0, ErrInvalidTitle},
		{"title at limit counts runes", func(r *CreateTenderRequest) { r.Title = strings.Repeat("é", 100) }, 0, nil},
		{"empty description", func(r *CreateTenderRequest) { r.Description = "" }, 0, ErrInvalidDescription},
		{"deadline equal to height", func(r *CreateTenderRequest) { r.Deadline = 5 }, 5, ErrInvalidDeadline},
		{"empty eligibility", func(r *CreateTenderRequest) { r.Eligibility = "" }, 0, ErrInvalidEligibility},
		{"zero budget", func(r *CreateTenderRequest) { r.Budget = 0 }, 0, ErrInvalidBudget},
		{"negative budget", func(r *CreateTenderRequest) { r.Budget = -1 }, 0, ErrInvalidBudget},
		{"unknown category", func(r *CreateTenderRequest) { r.Category = "invalid" }, 0, ErrInvalidCategory},
		{"empty metadata hash", func(r *CreateTenderRequest) { r.MetadataHash = nil }, 0, ErrInvalidMetadataHash},
		{"title checked before budget", func(r *CreateTenderRequest) { r.Title = ""; r.Budget = 0 }, 0, ErrInvalidTitle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate()
			tc.mutate(&req)
			err := req.Validate(tc.height)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTenderTransitions(t *testing.T) {
	tender := &Tender{Creator: "ST1CREATOR", Status: StatusOpen, MetadataHash: id.Hash("m")}

	t.Run("only creator may modify", func(t *testing.T) {
		assert.ErrorIs(t, tender.CanModify("ST2OTHER"), ErrNotAuthorized)
		assert.NoError(t, tender.CanModify("ST1CREATOR"))
	})

	t.Run("close is one-way", func(t *testing.T) {
		require.NoError(t, tender.CanClose())
		tender.ApplyClose()
		assert.Equal(t, StatusClosed, tender.Status)
		assert.ErrorIs(t, tender.CanClose(), ErrInvalidStatus)
	})

	t.Run("clone does not alias hash", func(t *testing.T) {
		c := tender.Clone()
		c.MetadataHash[0] = 'x'
		assert.Equal(t, id.Hash("m"), tender.MetadataHash)
	})
}
