package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_login_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"}, // "success", "invalid_credentials", "tenant_error"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "missing_token", "invalid_token", "stale_session"
	)

	// Note operation counter
	NoteOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_operations_total",
			Help: "Total number of note operations",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	// Quota rejections per tenant
	QuotaRejectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_quota_rejections_total",
			Help: "Total number of note creations rejected by plan quota",
		},
		[]string{"tenant_id"},
	)

	// Tenant administration counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_tenant_operations_total",
			Help: "Total number of tenant administration operations",
		},
		[]string{"operation", "outcome"}, // operation: "invite", "upgrade", "downgrade"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notes_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notes_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notes_info",
			Help: "Information about the notes service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(NoteOperationCounter)
	prometheus.MustRegister(QuotaRejectionCounter)
	prometheus.MustRegister(TenantOperationCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations.
// Usage: defer prometheus.TrackDBOperation("note_insert")()
func TrackDBOperation(operation string) func() {
	startTime := time.Now()
	return func() {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   status,
			}
			RequestDuration.With(labels).Observe(time.Since(start).Seconds())
			HTTPRequestCounter.With(labels).Inc()

			return nil
		}
	}
}

// RecordLogin records a login attempt outcome
func RecordLogin(outcome string) {
	LoginCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordNoteOperation records a successful note operation
func RecordNoteOperation(operation string) {
	NoteOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordQuotaRejection records a note creation refused by plan quota
func RecordQuotaRejection(tenantID string) {
	QuotaRejectionCounter.With(prometheus.Labels{"tenant_id": tenantID}).Inc()
}

// RecordTenantOperation records a tenant administration operation
func RecordTenantOperation(operation, outcome string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation, "outcome": outcome}).Inc()
}
