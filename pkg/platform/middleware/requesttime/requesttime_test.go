package requesttime

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"procurement/pkg/requestcontext"
)

type fixedHeight struct {
	height uint64
	err    error
}

func (f fixedHeight) Height(context.Context) (uint64, error) { return f.height, f.err }

func TestMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("stamps block height", func(t *testing.T) {
		var got uint64
		h := Middleware(fixedHeight{height: 77}, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = requestcontext.BlockHeight(r.Context())
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, uint64(77), got)
	})

	t.Run("clock failure is unavailable", func(t *testing.T) {
		called := false
		h := Middleware(fixedHeight{err: errors.New("down")}, logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, called)
	})
}
