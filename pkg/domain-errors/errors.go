// Package domainerrors carries coded errors across service boundaries.
//
// Every error has a category Code that transports map to a status, and
// may carry the stable numeric ledger code exposed to clients in the
// {"ok":false,"value":<code>} envelope.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error independently of any transport.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInvalidState       Code = "invalid_state"
	CodeCapacity           Code = "capacity_exceeded"
	CodeForbidden          Code = "forbidden"
	CodeUnauthorized       Code = "unauthorized"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error. LedgerCode is zero when the error has no
// client-visible numeric code.
type Error struct {
	Code       Code
	LedgerCode uint32
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports equality on code, ledger code and message so that freshly
// constructed errors compare equal to package-level values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.LedgerCode == t.LedgerCode && e.Message == t.Message
}

// New creates an error with the given category.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Ledger creates an error that carries a numeric ledger code.
func Ledger(code Code, ledgerCode uint32, msg string) *Error {
	return &Error{Code: code, LedgerCode: ledgerCode, Message: msg}
}

// Wrap annotates err with a category. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Err
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the outermost category, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// LedgerCodeOf returns the first numeric ledger code in the chain.
func LedgerCodeOf(err error) (uint32, bool) {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return 0, false
		}
		if de.LedgerCode != 0 {
			return de.LedgerCode, true
		}
		err = de.Err
	}
	return 0, false
}

// Is is errors.Is re-exported so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

// ToHTTPStatus maps a category to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState:
		return http.StatusConflict
	case CodeValidation, CodeInvalidInput, CodeBadRequest, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeCapacity:
		return http.StatusUnprocessableEntity
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
