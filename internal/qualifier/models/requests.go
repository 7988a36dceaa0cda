package models

import id "procurement/pkg/domain"

// RegisterBidderRequest uses signed numbers so negative input is rejected
// with its own ledger code rather than a decode error.
type RegisterBidderRequest struct {
	QualificationHash id.Hash `json:"qualification_hash"`
	ProofHash         id.Hash `json:"proof_hash"`
	FinancialProof    int64   `json:"financial_proof"`
	LicenseHash       id.Hash `json:"license_hash"`
	ExperienceYears   int64   `json:"experience_years"`
}

func (r *RegisterBidderRequest) Validate() error {
	if r.QualificationHash.IsEmpty() {
		return ErrInvalidQualificationHash
	}
	if r.ProofHash.IsEmpty() {
		return ErrInvalidProofHash
	}
	if r.FinancialProof <= 0 {
		return ErrInvalidFinancialProof
	}
	if r.LicenseHash.IsEmpty() {
		return ErrInvalidLicense
	}
	if r.ExperienceYears < 0 {
		return ErrInvalidExperience
	}
	return nil
}

type SetCriteriaRequest struct {
	MinFinancial    int64   `json:"min_financial"`
	RequiredLicense string  `json:"required_license"`
	MinExperience   int64   `json:"min_experience"`
	DocHash         id.Hash `json:"doc_hash"`
}

func (r *SetCriteriaRequest) Validate() error {
	if r.MinFinancial <= 0 {
		return ErrInvalidFinancialProof
	}
	if r.MinExperience < 0 {
		return ErrInvalidExperience
	}
	if r.DocHash.IsEmpty() {
		return ErrInvalidDocHash
	}
	return nil
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SetAuthorityRequest struct {
	Principal id.Principal `json:"principal"`
}

type SetValueRequest struct {
	Value int64 `json:"value"`
}
