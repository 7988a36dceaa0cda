package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "procurement/pkg/domain"
)

func TestRegisterBidderRequestValidate(t *testing.T) {
	valid := func() RegisterBidderRequest {
		return RegisterBidderRequest{
			QualificationHash: id.Hash("q"),
			ProofHash:         id.Hash("p"),
			FinancialProof:    1000,
			LicenseHash:       id.Hash("l"),
			ExperienceYears:   0,
		}
	}
	cases := []struct {
		name   string
		mutate func(*RegisterBidderRequest)
		want   error
	}{
		{"valid with zero experience", func(*RegisterBidderRequest) {}, nil},
		{"missing qualification hash", func(r *RegisterBidderRequest) { r.QualificationHash = nil }, ErrInvalidQualificationHash},
		{"missing proof hash", func(r *RegisterBidderRequest) { r.ProofHash = nil }, ErrInvalidProofHash},
		{"zero financial proof", func(r *RegisterBidderRequest) { r.FinancialProof = 0 }, ErrInvalidFinancialProof},
		{"missing license", func(r *RegisterBidderRequest) { r.LicenseHash = id.Hash{} }, ErrInvalidLicense},
		{"negative experience", func(r *RegisterBidderRequest) { r.ExperienceYears = -1 }, ErrInvalidExperience},
		{"hash checked before amounts", func(r *RegisterBidderRequest) { r.ProofHash = nil; r.FinancialProof = 0 }, ErrInvalidProofHash},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			err := req.Validate()
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSetCriteriaRequestValidate(t *testing.T) {
	req := SetCriteriaRequest{MinFinancial: 0, MinExperience: -1}
	require.ErrorIs(t, req.Validate(), ErrInvalidFinancialProof)
	req.MinFinancial = 1
	require.ErrorIs(t, req.Validate(), ErrInvalidExperience)
	req.MinExperience = 0
	require.ErrorIs(t, req.Validate(), ErrInvalidDocHash)
	req.DocHash = id.Hash("d")
	require.NoError(t, req.Validate())
}

func TestCriteriaMeets(t *testing.T) {
	c := &Criteria{MinFinancial: 5000, MinExperience: 3, DocHash: id.Hash("d")}
	b := &Bidder{FinancialProof: 5000, ExperienceYears: 3, LicenseHash: id.Hash("d")}

	assert.True(t, c.Meets(b), "thresholds are inclusive")

	poor := b.Clone()
	poor.FinancialProof = 4999
	assert.False(t, c.Meets(poor))

	junior := b.Clone()
	junior.ExperienceYears = 2
	assert.False(t, c.Meets(junior))

	unlicensed := b.Clone()
	unlicensed.LicenseHash = id.Hash("l")
	assert.False(t, c.Meets(unlicensed))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "qualified", "rejected"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), st)
	}
	_, err := ParseStatus("invalid")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanQualify(t *testing.T) {
	b := &Bidder{Principal: "ST1BIDDER", Status: StatusPending}
	assert.ErrorIs(t, b.CanQualify("ST2OTHER"), ErrNotAuthorized)
	assert.NoError(t, b.CanQualify("ST1BIDDER"))
	b.Status = StatusRejected
	assert.ErrorIs(t, b.CanQualify("ST1BIDDER"), ErrInvalidStatus)
}

func TestNewQualification(t *testing.T) {
	assert.Equal(t, Qualification{Qualified: true, CriteriaMet: CriteriaAllMet, QualifiedAt: 9}, NewQualification(true, 9))
	assert.Equal(t, CriteriaPartialMatch, NewQualification(false, 9).CriteriaMet)
}
