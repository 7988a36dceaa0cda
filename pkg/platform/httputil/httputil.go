// Package httputil writes the registry's JSON envelopes.
//
// Successful responses are {"ok":true,"value":<payload>}. Errors carrying a
// ledger code are {"ok":false,"value":<code>,"error":...}; errors without
// one fall back to {"error":...,"error_description":...}.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "procurement/pkg/domain-errors"
)

// Result is the ok/value envelope.
type Result struct {
	OK               bool   `json:"ok"`
	Value            any    `json:"value"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteResult writes a successful envelope. A nil value encodes as null,
// which read accessors use for absence.
func WriteResult(w http.ResponseWriter, status int, value any) {
	WriteJSON(w, status, Result{OK: true, Value: value})
}

// WriteError maps err to a status and envelope. Internal errors never leak
// their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	description := err.Error()
	if code == dErrors.CodeInternal {
		description = ""
	}

	if ledgerCode, ok := dErrors.LedgerCodeOf(err); ok {
		WriteJSON(w, status, Result{
			OK:               false,
			Value:            ledgerCode,
			Error:            string(code),
			ErrorDescription: description,
		})
		return
	}
	WriteJSON(w, status, errorBody{Error: string(code), ErrorDescription: description})
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid json payload")
	}
	return nil
}
