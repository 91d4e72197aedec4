package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	Noop
	route  string
	status int
	calls  int
}

func (m *mockRecorder) IncRequestsTotal(route string, status int) {
	m.route = route
	m.status = status
	m.calls++
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	rec := New(false)
	_, ok := rec.(Noop)
	assert.True(t, ok)

	rec.IncRequestsTotal("/x", 200)
	rec.ObserveFeedFetch(FetchLatest, "ok", time.Millisecond)
	rec.IncInsight("fallback")
	rec.IncDiscardedLoads()
}

func counterValue(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, c.Write(&out))
	return out.GetCounter().GetValue()
}

func TestPrometheus_CountsFeedFetches(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())

	m.ObserveFeedFetch(FetchLatest, "ok", 10*time.Millisecond)
	m.ObserveFeedFetch(FetchLatest, "ok", 10*time.Millisecond)
	m.ObserveFeedFetch(FetchDay, "not_found", time.Millisecond)
	m.IncHistoryCacheHits()

	assert.Equal(t, 2.0, counterValue(t, m.fetchTotal.WithLabelValues(FetchLatest, "ok")))
	assert.Equal(t, 1.0, counterValue(t, m.fetchTotal.WithLabelValues(FetchDay, "not_found")))
	assert.Equal(t, 1.0, counterValue(t, m.cacheHits))
}

func TestPrometheus_HandlerExposesMetrics(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())
	m.IncInsight("ok")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "novaspeak_insight_total"))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	rec := &mockRecorder{}
	r := chi.NewRouter()
	r.Use(Middleware(rec))
	r.Post("/api/widgets/{widgetId}/kind", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/widgets/w-3/kind", nil))

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "/api/widgets/{widgetId}/kind", rec.route)
	assert.Equal(t, http.StatusAccepted, rec.status)
}

func TestHTTPStatusBucket(t *testing.T) {
	assert.Equal(t, "2xx", httpStatusBucket(204))
	assert.Equal(t, "4xx", httpStatusBucket(404))
	assert.Equal(t, "5xx", httpStatusBucket(503))
}
