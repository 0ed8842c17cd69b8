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

// MetricsService encapsulates Prometheus instrumentation for the API and the
// scheduling engine.
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

	scheduleDuration *prometheus.HistogramVec
	scheduleTotal    *prometheus.CounterVec
	scheduleHours    *prometheus.HistogramVec
	policyFallbacks  prometheus.Counter
	trainingDuration prometheus.Observer
	trainingTotal    *prometheus.CounterVec

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

	scheduleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	scheduleTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_total",
		Help: "Total schedule generation runs",
	}, []string{"strategy", "outcome"})

	scheduleHours := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_hours_scheduled",
		Help:    "Total hours placed per generated schedule",
		Buckets: []float64{1, 2, 5, 10, 20, 40, 80},
	}, []string{"strategy"})

	policyFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "policy_fallback_total",
		Help: "Times the policy strategy fell back to the greedy scheduler",
	})

	trainingDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "policy_training_duration_seconds",
		Help:    "Duration of policy training runs",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	trainingTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_training_total",
		Help: "Total policy training runs",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio,
		cacheHits, cacheMisses, scheduleDuration, scheduleTotal, scheduleHours, policyFallbacks,
		trainingDuration, trainingTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		scheduleDuration: scheduleDuration,
		scheduleTotal:    scheduleTotal,
		scheduleHours:    scheduleHours,
		policyFallbacks:  policyFallbacks,
		trainingDuration: trainingDuration,
		trainingTotal:    trainingTotal,
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

// ObserveScheduleRun records one schedule generation run. The strategy label
// is the strategy that actually produced the plan.
func (m *MetricsService) ObserveScheduleRun(strategy string, hoursScheduled float64, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.scheduleDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.scheduleTotal.WithLabelValues(strategy, outcome).Inc()
	if err == nil {
		m.scheduleHours.WithLabelValues(strategy).Observe(hoursScheduled)
	}
}

// RecordPolicyFallback counts a greedy fallback during a policy run.
func (m *MetricsService) RecordPolicyFallback() {
	if m == nil {
		return
	}
	m.policyFallbacks.Inc()
}

// ObserveTrainingRun records a completed training job.
func (m *MetricsService) ObserveTrainingRun(duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
	}
	m.trainingDuration.Observe(duration.Seconds())
	m.trainingTotal.WithLabelValues(outcome).Inc()
}
