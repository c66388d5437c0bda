package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics covers the two client-side concerns worth watching: calls the
// repository client makes against the backend, and the gateway surface
// the views poll.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	backendRequestTotal    *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec
	uploadProgress         prometheus.Gauge
	cacheRefreshTotal      *prometheus.CounterVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chargedocs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total gateway HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chargedocs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Gateway HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chargedocs",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight gateway HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	backendRequestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chargedocs",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total backend API calls by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	backendRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chargedocs",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend API call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
	uploadProgress := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chargedocs",
			Subsystem: "upload",
			Name:      "progress_percent",
			Help:      "Progress of the in-flight upload as reported by the push channel.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	cacheRefreshTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chargedocs",
			Subsystem: "cache",
			Name:      "refresh_total",
			Help:      "Total document cache refreshes by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		backendRequestTotal,
		backendRequestDuration,
		uploadProgress,
		cacheRefreshTotal,
	)

	return &Metrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		backendRequestTotal:    backendRequestTotal,
		backendRequestDuration: backendRequestDuration,
		uploadProgress:         uploadProgress,
		cacheRefreshTotal:      cacheRefreshTotal,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveBackendRequest(service, operation string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backendRequestTotal.WithLabelValues(service, operation, outcome).Inc()
	m.backendRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *Metrics) SetUploadProgress(percent int) {
	m.uploadProgress.Set(float64(percent))
}

func (m *Metrics) RecordCacheRefresh(service string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cacheRefreshTotal.WithLabelValues(service, outcome).Inc()
}

func normalizePath(path string) string {
	switch path {
	case "/v1/documents/grouped", "/v1/documents/search", "/v1/documents/refresh":
		return path
	}
	if strings.HasPrefix(path, "/v1/documents/") {
		return "/v1/documents/{image_name}"
	}
	return path
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
