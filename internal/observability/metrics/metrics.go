// Package metrics exposes the Prometheus instruments of the API process. All
// Record methods are safe on a nil *Metrics.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dekoassistant"

type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	designsTotal        *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	upstreamTotal       *prometheus.CounterVec
	toolCallsTotal      *prometheus.CounterVec
	toolLoopIterations  prometheus.Histogram
	toolLoopCapTotal    prometheus.Counter
	imageFallbackTotal  *prometheus.CounterVec
	visualizationsTotal *prometheus.CounterVec
	wsConnections       prometheus.Gauge
	breakerState        *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "path"}),
		requestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		}),
		designsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "design",
			Name:      "suggestions_total",
			Help:      "Design suggestions returned, by source.",
		}, []string{"source"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Generative model call duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"kind"}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Generative model calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		toolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Tool calls executed for the text model.",
		}, []string{"tool", "status"}),
		toolLoopIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "loop_iterations",
			Help:      "Iterations per tool-calling generation.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		}),
		toolLoopCapTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "loop_cap_reached_total",
			Help:      "Tool loops stopped by the iteration cap.",
		}),
		imageFallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "fallback_total",
			Help:      "Synthetic image fallbacks by reason.",
		}, []string{"reason"}),
		visualizationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visualization",
			Name:      "results_total",
			Help:      "Visualization results by outcome.",
		}, []string{"outcome"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "connections",
			Help:      "Open progress WebSocket connections.",
		}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "breaker_open",
			Help:      "1 while the named circuit breaker is open.",
		}, []string{"name"}),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.designsTotal,
		m.upstreamDuration,
		m.upstreamTotal,
		m.toolCallsTotal,
		m.toolLoopIterations,
		m.toolLoopCapTotal,
		m.imageFallbackTotal,
		m.visualizationsTotal,
		m.wsConnections,
		m.breakerState,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/static/"):
		return "/static/*"
	case strings.HasPrefix(path, "/v1/"), path == "/metrics":
		return path
	default:
		return "other"
	}
}

func (m *Metrics) RecordDesign(source string) {
	if m == nil {
		return
	}
	m.designsTotal.WithLabelValues(label(source)).Inc()
}

// RecordUpstream observes one model call. kind is "text", "tools" or
// "image".
func (m *Metrics) RecordUpstream(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamTotal.WithLabelValues(label(kind), outcome).Inc()
	m.upstreamDuration.WithLabelValues(label(kind)).Observe(d.Seconds())
}

func (m *Metrics) RecordToolCall(tool, status string) {
	if m == nil {
		return
	}
	m.toolCallsTotal.WithLabelValues(label(tool), label(status)).Inc()
}

func (m *Metrics) RecordToolLoop(iterations int, capped bool) {
	if m == nil {
		return
	}
	if iterations > 0 {
		m.toolLoopIterations.Observe(float64(iterations))
	}
	if capped {
		m.toolLoopCapTotal.Inc()
	}
}

func (m *Metrics) RecordImageFallback(reason string) {
	if m == nil {
		return
	}
	m.imageFallbackTotal.WithLabelValues(label(reason)).Inc()
}

func (m *Metrics) RecordVisualization(success, fallback bool) {
	if m == nil {
		return
	}
	outcome := "success"
	switch {
	case !success:
		outcome = "failed"
	case fallback:
		outcome = "fallback"
	}
	m.visualizationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.wsConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.wsConnections.Dec()
}

func (m *Metrics) RecordBreakerState(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.breakerState.WithLabelValues(label(name)).Set(v)
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
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
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack lets the WebSocket upgrade pass through the middleware.
func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
