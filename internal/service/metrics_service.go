package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deletion modes reported on lessons_deleted_total.
const (
	DeleteModeSingle = "single"
	DeleteModeSeries = "series"
	DeleteModeBulk   = "bulk"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP, cache and lesson activity.
type MetricsService struct {
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Histogram
	cacheLookups     *prometheus.CounterVec
	lessonsDeleted   *prometheus.CounterVec
	lessonsGenerated prometheus.Counter
	paymentsRecorded prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "resource", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		lessonsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lessons_deleted_total",
			Help: "Lessons removed, by deletion mode",
		}, []string{"mode"}),
		lessonsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessons_generated_total",
			Help: "Lessons materialised from recurring series",
		}),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Payments created",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLatency, m.cacheLookups,
		m.lessonsDeleted, m.lessonsGenerated, m.paymentsRecorded, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request latency and count for a route of an API resource.
func (m *MetricsService) ObserveHTTPRequest(method, resource, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, resource, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, resource, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// LessonsDeleted adds n to the deletion counter for mode.
func (m *MetricsService) LessonsDeleted(mode string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.lessonsDeleted.WithLabelValues(mode).Add(float64(n))
}

// LessonsGenerated adds n materialised occurrences.
func (m *MetricsService) LessonsGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.lessonsGenerated.Add(float64(n))
}

// PaymentRecorded counts a created payment.
func (m *MetricsService) PaymentRecorded() {
	if m == nil {
		return
	}
	m.paymentsRecorded.Inc()
}
