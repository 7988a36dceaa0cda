// Package sentinel names the storage facts stores report. Services map them
// to coded domain errors; handlers never see them directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no record under the key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the write would not keep ids dense or keys consistent.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyUsed: a unique index (title, principal) already holds the value.
	ErrAlreadyUsed = errors.New("already used")
	// ErrInvalidState: the stored record cannot take this change.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: the backing service did not answer.
	ErrUnavailable = errors.New("unavailable")
)
