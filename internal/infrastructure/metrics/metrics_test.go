package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelops/backend/internal/domain/fuel"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRecorder_RecordReport(t *testing.T) {
	r := NewRecorder()

	parsed := fuel.NewParseResult()
	parsed.Skipped = 3
	rec := &fuel.Reconciliation{
		Units: []*fuel.UnitRecord{{UnitID: "FT01"}, {UnitID: "FT02"}},
		Warnings: []fuel.Warning{
			{Kind: fuel.WarningCalibrationMiss, UnitID: "FT01"},
			{Kind: fuel.WarningRosterMiss, UnitID: "FT02"},
		},
		Summary: fuel.Summary{ReviewCount: 1},
	}

	r.RecordReport(parsed, rec)
	r.RecordReport(parsed, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.reportsProcessed))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.skippedLines))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.unitsReconciled))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calibrationMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reviewFlags))
}

func TestRecorder_RecordSubmission(t *testing.T) {
	r := NewRecorder()

	r.RecordSubmission(nil, 4, 20*time.Millisecond)
	r.RecordSubmission(errors.New("deadlock"), 4, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.submissions.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.submissions.WithLabelValues(ResultFailure)))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.submittedRows))
	assert.Equal(t, 1, testutil.CollectAndCount(r.submissionDuration))
}

func TestRecorder_MiddlewareAndHandler(t *testing.T) {
	r := NewRecorder()

	router := gin.New()
	router.Use(r.Middleware())
	router.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(r.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "/ping/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fuel_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
