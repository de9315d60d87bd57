package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer,
// the cache, and the admission workflow itself.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	applicationsSubmitted prometheus.Counter
	applicationsApproved  prometheus.Counter
	applicationsRejected  prometheus.Counter
	enrollmentsConfirmed  prometheus.Counter
	approvalsMissingClass prometheus.Counter
	exportsQueued         *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	applicationsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "applications_submitted_total",
		Help: "Total admission applications accepted for review",
	})

	applicationsApproved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "applications_approved_total",
		Help: "Total admission applications approved",
	})

	applicationsRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "applications_rejected_total",
		Help: "Total admission applications rejected",
	})

	enrollmentsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrollments_confirmed_total",
		Help: "Total enrollments confirmed",
	})

	approvalsMissingClass := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "approvals_missing_class_total",
		Help: "Approvals that produced a student but no enrollment for lack of a matching class",
	})

	exportsQueued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_queued_total",
		Help: "Export jobs enqueued by format",
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio,
		cacheHits, cacheMisses, dbQueryDuration, applicationsSubmitted, applicationsApproved,
		applicationsRejected, enrollmentsConfirmed, approvalsMissingClass, exportsQueued, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:              registry,
		handler:               handler,
		requestDuration:       requestDuration,
		requestTotal:          requestTotal,
		cacheLatency:          cacheLatency,
		cacheWrite:            cacheWrite,
		cacheHitRatio:         cacheHitRatio,
		cacheHits:             cacheHits,
		cacheMisses:           cacheMisses,
		dbQueryDuration:       dbQueryDuration,
		applicationsSubmitted: applicationsSubmitted,
		applicationsApproved:  applicationsApproved,
		applicationsRejected:  applicationsRejected,
		enrollmentsConfirmed:  enrollmentsConfirmed,
		approvalsMissingClass: approvalsMissingClass,
		exportsQueued:         exportsQueued,
	}
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordApplicationSubmitted counts an accepted submission.
func (m *MetricsService) RecordApplicationSubmitted() {
	if m == nil {
		return
	}
	m.applicationsSubmitted.Inc()
}

// RecordApplicationApproved counts an approval.
func (m *MetricsService) RecordApplicationApproved() {
	if m == nil {
		return
	}
	m.applicationsApproved.Inc()
}

// RecordApplicationRejected counts a rejection.
func (m *MetricsService) RecordApplicationRejected() {
	if m == nil {
		return
	}
	m.applicationsRejected.Inc()
}

// RecordEnrollmentConfirmed counts a confirmed enrollment.
func (m *MetricsService) RecordEnrollmentConfirmed() {
	if m == nil {
		return
	}
	m.enrollmentsConfirmed.Inc()
}

// RecordApprovalMissingClass counts approvals left without an enrollment
// because no class matched the applicant's grade.
func (m *MetricsService) RecordApprovalMissingClass() {
	if m == nil {
		return
	}
	m.approvalsMissingClass.Inc()
}

// RecordExportQueued counts an export job accepted into the queue.
func (m *MetricsService) RecordExportQueued(format string) {
	if m == nil {
		return
	}
	m.exportsQueued.WithLabelValues(format).Inc()
}
