package models

import dErrors "procurement/pkg/domain-errors"

// Ledger error codes returned by the audit verifier.
var (
	ErrNotAuthorized       = dErrors.Ledger(dErrors.CodeForbidden, 100, "not authorized")
	ErrInvalidTenderID     = dErrors.Ledger(dErrors.CodeValidation, 101, "tender id must be positive")
	ErrInvalidBidID        = dErrors.Ledger(dErrors.CodeValidation, 102, "bid id must be positive")
	ErrInvalidThreshold    = dErrors.Ledger(dErrors.CodeValidation, 103, "value out of range")
	ErrNoTenderData        = dErrors.Ledger(dErrors.CodeNotFound, 104, "no audit snapshot for tender")
	ErrNoBidData           = dErrors.Ledger(dErrors.CodeNotFound, 105, "no audit snapshot for bid")
	ErrInvalidHash         = dErrors.Ledger(dErrors.CodeValidation, 106, "invalid snapshot hash")
	ErrInvalidStatus       = dErrors.Ledger(dErrors.CodeValidation, 107, "invalid snapshot status")
	ErrInvalidPrincipal    = dErrors.Ledger(dErrors.CodeValidation, 110, "principal cannot be the burn address")
	ErrQueryLimit          = dErrors.Ledger(dErrors.CodeCapacity, 111, "maximum number of verification requests reached")
	ErrAlreadyVerified     = dErrors.Ledger(dErrors.CodeInvalidState, 113, "request already verified")
	ErrInvalidRequestID    = dErrors.Ledger(dErrors.CodeNotFound, 114, "verification request not found")
	ErrMissingCaller       = dErrors.New(dErrors.CodeUnauthorized, "caller principal is required")
	ErrMalformedSnapshot   = dErrors.New(dErrors.CodeBadRequest, "malformed snapshot payload")
	ErrUnknownSnapshotKind = dErrors.New(dErrors.CodeBadRequest, "unknown snapshot kind")
)
