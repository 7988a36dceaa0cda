package models

import id "procurement/pkg/domain"

// CreateTenderRequest carries the caller-supplied fields of a new tender.
// Budget is signed so non-positive input can be rejected with its own code.
type CreateTenderRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Deadline     uint64   `json:"deadline"`
	Eligibility  string   `json:"eligibility"`
	Budget       int64    `json:"budget"`
	Category     Category `json:"category"`
	MetadataHash id.Hash  `json:"metadata_hash"`
}

// Validate applies the field checks in contract order against the block
// height observed for the call.
func (r *CreateTenderRequest) Validate(height uint64) error {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	if err := ValidateDeadline(r.Deadline, height); err != nil {
		return err
	}
	if err := ValidateEligibility(r.Eligibility); err != nil {
		return err
	}
	if r.Budget <= 0 {
		return ErrInvalidBudget
	}
	if !r.Category.IsValid() {
		return ErrInvalidCategory
	}
	if r.MetadataHash.IsEmpty() {
		return ErrInvalidMetadataHash
	}
	return nil
}

type UpdateTenderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    uint64 `json:"deadline"`
}

func (r *UpdateTenderRequest) Validate(height uint64) error {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	return ValidateDeadline(r.Deadline, height)
}

type SetAuthorityRequest struct {
	Principal id.Principal `json:"principal"`
}

type SetValueRequest struct {
	Value int64 `json:"value"`
}
