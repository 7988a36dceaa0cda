package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCodeOf(t *testing.T) {
	t.Run("direct ledger error", func(t *testing.T) {
		code, ok := LedgerCodeOf(Ledger(CodeValidation, 102, "invalid title"))
		require.True(t, ok)
		assert.Equal(t, uint32(102), code)
	})

	t.Run("found through wrapping", func(t *testing.T) {
		err := fmt.Errorf("create: %w", Ledger(CodeConflict, 106, "exists"))
		code, ok := LedgerCodeOf(err)
		require.True(t, ok)
		assert.Equal(t, uint32(106), code)
	})

	t.Run("plain category error has none", func(t *testing.T) {
		_, ok := LedgerCodeOf(New(CodeInternal, "boom"))
		assert.False(t, ok)
	})

	t.Run("foreign error has none", func(t *testing.T) {
		_, ok := LedgerCodeOf(errors.New("boom"))
		assert.False(t, ok)
	})
}

func TestHasCode(t *testing.T) {
	inner := Ledger(CodeNotFound, 107, "tender not found")
	err := Wrap(inner, CodeInternal, "load tender")

	assert.True(t, HasCode(err, CodeInternal))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.Nil(t, Wrap(nil, CodeInternal, "nothing"))
}

func TestIsComparesByValue(t *testing.T) {
	sentinel := Ledger(CodeForbidden, 100, "not authorized")
	err := fmt.Errorf("close: %w", Ledger(CodeForbidden, 100, "not authorized"))

	require.ErrorIs(t, err, sentinel)
	assert.False(t, Is(err, Ledger(CodeForbidden, 101, "not authorized")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(CodeInvalidState))
	assert.Equal(t, http.StatusUnprocessableEntity, ToHTTPStatus(CodeCapacity))
	assert.Equal(t, http.StatusForbidden, ToHTTPStatus(CodeForbidden))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("other")))
}
