package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tendermetrics "procurement/internal/tender/metrics"
)

func TestHandlerExposesComponentMetrics(t *testing.T) {
	reg := NewRegistry()
	m := tendermetrics.New(reg)
	m.IncrementTendersCreated()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "procurement_tenders_created_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
