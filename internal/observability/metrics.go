package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	ksctlDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}
	bodySizeBuckets      = []float64{100, 1024, 10240, 102400, 1048576}
)

// Metrics holds all Prometheus metric instruments for the tool server.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSizeBytes  *prometheus.HistogramVec
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Tool metrics
	ToolExecutionsTotal    *prometheus.CounterVec
	ToolDuration           *prometheus.HistogramVec
	ToolValidationFailures *prometheus.CounterVec

	// ksctl metrics
	KsctlInvocationsTotal *prometheus.CounterVec
	KsctlDuration         *prometheus.HistogramVec
	KsctlOverridesTotal   prometheus.Counter

	// Resolution metrics
	ResolutionsTotal *prometheus.CounterVec
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ksbridge_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ksbridge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPRequestSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ksbridge_http_request_size_bytes",
			Help:    "HTTP request body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPResponseSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ksbridge_http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),

		// Tools
		ToolExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ksbridge_tool_executions_total",
			Help: "Total number of tool executions.",
		}, []string{"tool", "status"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ksbridge_tool_duration_seconds",
			Help:    "Tool execution duration in seconds.",
			Buckets: ksctlDurationBuckets,
		}, []string{"tool"}),
		ToolValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ksbridge_tool_validation_failures_total",
			Help: "Total number of tool parameter validation failures.",
		}, []string{"tool"}),

		// ksctl
		KsctlInvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ksbridge_ksctl_invocations_total",
			Help: "Total number of ksctl subprocess invocations.",
		}, []string{"status"}),
		KsctlDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ksbridge_ksctl_duration_seconds",
			Help:    "ksctl subprocess duration in seconds.",
			Buckets: ksctlDurationBuckets,
		}, []string{"status"}),
		KsctlOverridesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ksbridge_ksctl_domain_overrides_total",
			Help: "Total number of global domain override windows taken.",
		}),

		// Resolution
		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ksbridge_identifier_resolutions_total",
			Help: "Total number of identifier resolution attempts.",
		}, []string{"provider", "outcome"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSizeBytes,
		m.HTTPResponseSizeBytes,
		m.ToolExecutionsTotal,
		m.ToolDuration,
		m.ToolValidationFailures,
		m.KsctlInvocationsTotal,
		m.KsctlDuration,
		m.KsctlOverridesTotal,
		m.ResolutionsTotal,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration, reqSize, respSize int) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
	m.HTTPRequestSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(reqSize))
	m.HTTPResponseSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(respSize))
}

// RecordToolExecution records tool execution metrics.
func (m *Metrics) RecordToolExecution(tool, status string, duration time.Duration) {
	m.ToolExecutionsTotal.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordToolValidationFailure records a tool parameter validation failure.
func (m *Metrics) RecordToolValidationFailure(tool string) {
	m.ToolValidationFailures.WithLabelValues(tool).Inc()
}

// RecordKsctlInvocation records one ksctl subprocess run.
func (m *Metrics) RecordKsctlInvocation(exitCode int, duration time.Duration) {
	status := "ok"
	if exitCode != 0 {
		status = "error"
	}
	m.KsctlInvocationsTotal.WithLabelValues(status).Inc()
	m.KsctlDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordKsctlOverride records one global domain override window.
func (m *Metrics) RecordKsctlOverride() {
	m.KsctlOverridesTotal.Inc()
}

// RecordResolution records an identifier resolution attempt. Outcome is
// one of "canonical", "resolved", or "passthrough".
func (m *Metrics) RecordResolution(provider, outcome string) {
	m.ResolutionsTotal.WithLabelValues(provider, outcome).Inc()
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics using
// chi's route pattern (not the actual URL path) to avoid label cardinality
// explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		pathPattern := routePattern(r)
		reqSize := 0
		if r.ContentLength > 0 {
			reqSize = int(r.ContentLength)
		}

		m.RecordHTTPRequest(r.Method, pathPattern, sw.status, duration, reqSize, sw.bytes)
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	// chi route patterns have trailing /*, remove it.
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture status and bytes.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
