package models

import dErrors "procurement/pkg/domain-errors"

// Ledger error codes returned by the bidder qualifier.
var (
	ErrNotAuthorized            = dErrors.Ledger(dErrors.CodeForbidden, 100, "not authorized")
	ErrInvalidQualificationHash = dErrors.Ledger(dErrors.CodeValidation, 102, "qualification hash is required")
	ErrInvalidProofHash         = dErrors.Ledger(dErrors.CodeValidation, 103, "proof hash is required")
	ErrInvalidPrincipal         = dErrors.Ledger(dErrors.CodeValidation, 104, "principal cannot be the burn address")
	ErrAlreadyRegistered        = dErrors.Ledger(dErrors.CodeConflict, 105, "principal already registered as bidder")
	ErrBidderNotFound           = dErrors.Ledger(dErrors.CodeNotFound, 106, "bidder not found")
	ErrInvalidFinancialProof    = dErrors.Ledger(dErrors.CodeValidation, 107, "financial amount must be positive")
	ErrInvalidLicense           = dErrors.Ledger(dErrors.CodeValidation, 108, "license hash is required")
	ErrQualificationNotMet      = dErrors.Ledger(dErrors.CodeInvalidState, 109, "bidder is not qualified for tender")
	ErrMaxBiddersExceeded       = dErrors.Ledger(dErrors.CodeCapacity, 110, "maximum number of bidders reached")
	ErrInvalidCriteria          = dErrors.Ledger(dErrors.CodeNotFound, 111, "no qualification criteria for tender")
	ErrInvalidDocHash           = dErrors.Ledger(dErrors.CodeValidation, 112, "invalid document hash")
	ErrInvalidExperience        = dErrors.Ledger(dErrors.CodeValidation, 113, "experience must not be negative")
	ErrInvalidStatus            = dErrors.Ledger(dErrors.CodeInvalidState, 114, "invalid bidder status")
	ErrInvalidThreshold         = dErrors.Ledger(dErrors.CodeValidation, 115, "value out of range")
	ErrMissingCaller            = dErrors.New(dErrors.CodeUnauthorized, "caller principal is required")
)
