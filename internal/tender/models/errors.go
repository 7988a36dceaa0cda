package models

import dErrors "procurement/pkg/domain-errors"

// Ledger error codes returned by the tender registry. The numbering is part
// of the client contract; never renumber.
var (
	ErrNotAuthorized       = dErrors.Ledger(dErrors.CodeForbidden, 100, "not authorized")
	ErrInvalidTitle        = dErrors.Ledger(dErrors.CodeValidation, 102, "title must be 1-100 characters")
	ErrInvalidDescription  = dErrors.Ledger(dErrors.CodeValidation, 103, "description must be 1-500 characters")
	ErrInvalidDeadline     = dErrors.Ledger(dErrors.CodeValidation, 104, "deadline must be after the current block height")
	ErrInvalidEligibility  = dErrors.Ledger(dErrors.CodeValidation, 105, "eligibility must be 1-200 characters")
	ErrTenderAlreadyExists = dErrors.Ledger(dErrors.CodeConflict, 106, "tender title already exists")
	ErrTenderNotFound      = dErrors.Ledger(dErrors.CodeNotFound, 107, "tender not found")
	ErrInvalidBudget       = dErrors.Ledger(dErrors.CodeValidation, 108, "budget must be positive")
	ErrInvalidCategory     = dErrors.Ledger(dErrors.CodeValidation, 109, "category must be infrastructure, services or goods")
	ErrInvalidStatus       = dErrors.Ledger(dErrors.CodeInvalidState, 110, "tender is not open")
	ErrMaxTendersExceeded  = dErrors.Ledger(dErrors.CodeCapacity, 111, "maximum number of tenders reached")
	ErrInvalidMetadataHash = dErrors.Ledger(dErrors.CodeValidation, 112, "metadata hash is required")
	ErrInvalidCreator      = dErrors.Ledger(dErrors.CodeUnauthorized, 113, "caller principal is required")
	ErrInvalidPrincipal    = dErrors.Ledger(dErrors.CodeValidation, 114, "principal cannot be the burn address")
	ErrInvalidThreshold    = dErrors.Ledger(dErrors.CodeValidation, 115, "value out of range")
)
