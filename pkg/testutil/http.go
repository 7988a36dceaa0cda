// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "procurement/pkg/domain"
)

// TokenIssuer mints bearer tokens for a caller principal.
type TokenIssuer interface {
	GenerateCallerToken(principal id.Principal, expiresIn time.Duration) (string, error)
}

// Envelope is the decoded {"ok","value"} response body.
type Envelope struct {
	OK               bool            `json:"ok"`
	Value            json.RawMessage `json:"value"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

// NewCallerRequest builds a JSON request authenticated as caller. An empty
// caller sends no Authorization header.
func NewCallerRequest(t *testing.T, tokens TokenIssuer, method, path string, caller id.Principal, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body), "failed to marshal request body")
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		token, err := tokens.GenerateCallerToken(caller, time.Hour)
		require.NoError(t, err, "failed to mint caller token")
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// Do serves req and decodes the envelope when the body is JSON.
func Do(handler http.Handler, req *http.Request) (*httptest.ResponseRecorder, Envelope) {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var env Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

// DecodeValue unmarshals the envelope value into T.
func DecodeValue[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Value, &out), "failed to unmarshal envelope value")
	return out
}

// AssertLedgerCode checks a rejected envelope carries code with status.
func AssertLedgerCode(t *testing.T, rec *httptest.ResponseRecorder, env Envelope, status int, code uint32) {
	t.Helper()
	assert.Equal(t, status, rec.Code, "unexpected status code")
	assert.False(t, env.OK, "expected a rejected envelope")
	var got uint32
	require.NoError(t, json.Unmarshal(env.Value, &got), "envelope value is not a ledger code")
	assert.Equal(t, code, got, "unexpected ledger code")
}
