package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIsolatedPerInstance(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordAggregation()
	a.RecordAggregation()
	b.RecordAggregation()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.AggregationPasses))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.AggregationPasses))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAggregation()
		m.RecordEmission("full", 3)
		m.RecordSourceError("contacts")
		m.RecordRanking(time.Millisecond, 4)
		m.IncLaunchesRecorded()
		m.RecordAction("activate", "application")
	})
}

func TestRecordEmission(t *testing.T) {
	m := NewMetrics()
	m.RecordEmission("placeholder", 3)
	m.RecordEmission("full", 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogEmissions.WithLabelValues("placeholder")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CatalogItems))
}

func TestHandlerAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/catalog/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/items/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/catalog/items/:id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "catalog_http_requests_total"))
}
