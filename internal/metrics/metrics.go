package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "novaspeak"

// Feed fetch kinds.
const (
	FetchLatest = "latest"
	FetchDay    = "day"
)

type Recorder interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	ObserveFeedFetch(kind, outcome string, duration time.Duration)
	IncInsight(outcome string)
	IncHistoryCacheHits()
	IncHistoryCacheMisses()
	IncDiscardedLoads()
}

type Prometheus struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	insightTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	discardedLoads  prometheus.Counter
}

// New returns a Prometheus recorder on its own registry, or a no-op recorder
// when metrics are disabled.
func New(enabled bool) Recorder {
	if !enabled {
		return Noop{}
	}
	return NewPrometheus(prometheus.NewRegistry())
}

func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_total",
			Help:      "Feed API requests by kind and outcome",
		}, []string{"kind", "outcome"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Feed API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		insightTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_total",
			Help:      "Insight generations by outcome",
		}, []string{"outcome"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_cache_hits_total",
			Help:      "History cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_cache_misses_total",
			Help:      "History cache misses",
		}),
		discardedLoads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discarded_loads_total",
			Help:      "Feed loads discarded because the configuration changed while in flight",
		}),
	}
}

func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Prometheus) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, httpStatusBucket(status)).Inc()
}

func (m *Prometheus) ObserveRequestDuration(route string, duration time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Prometheus) ObserveFeedFetch(kind, outcome string, duration time.Duration) {
	m.fetchTotal.WithLabelValues(kind, outcome).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *Prometheus) IncInsight(outcome string) {
	m.insightTotal.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) IncHistoryCacheHits()   { m.cacheHits.Inc() }
func (m *Prometheus) IncHistoryCacheMisses() { m.cacheMisses.Inc() }
func (m *Prometheus) IncDiscardedLoads()     { m.discardedLoads.Inc() }

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop is used when metrics are disabled.
type Noop struct{}

func (Noop) IncRequestsTotal(_ string, _ int)                 {}
func (Noop) ObserveRequestDuration(_ string, _ time.Duration) {}
func (Noop) ObserveFeedFetch(_, _ string, _ time.Duration)    {}
func (Noop) IncInsight(_ string)                              {}
func (Noop) IncHistoryCacheHits()                             {}
func (Noop) IncHistoryCacheMisses()                           {}
func (Noop) IncDiscardedLoads()                               {}
