package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AuthAttempts counts credential checks at the token endpoint by result (success, invalid_credentials).
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of credential checks by result",
		},
		[]string{"result"},
	)

	// TokenRejections counts bearer tokens refused by reason (missing, invalid, expired, unknown_user, inactive).
	TokenRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Total number of rejected bearer tokens by reason",
		},
		[]string{"reason"},
	)

	// Registrations counts sign-ups by result (created, conflict).
	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts by result",
		},
		[]string{"result"},
	)

	// UsersTotal is the number of user rows, refreshed by the stats job.
	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "todo_users",
			Help: "Number of registered users",
		},
	)

	// TodosTotal is the number of todo rows, refreshed by the stats job.
	TodosTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "todo_items",
			Help: "Number of stored todos",
		},
	)
)

var (
	uuidPathSegment = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	initOnce        sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AuthAttempts, TokenRejections, Registrations, UsersTotal, TodosTotal)
	})
}

// NormalizePath reduces cardinality by replacing UUID path segments with {id}.
// E.g. /todos/4f1c...e2 -> /todos/{id}.
func NormalizePath(path string) string {
	return uuidPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncAuthAttempt(result string) {
	AuthAttempts.WithLabelValues(result).Inc()
}

func IncTokenRejection(reason string) {
	TokenRejections.WithLabelValues(reason).Inc()
}

func IncRegistration(result string) {
	Registrations.WithLabelValues(result).Inc()
}

// SetCounts publishes the latest row counts.
func SetCounts(users, todos int) {
	UsersTotal.Set(float64(users))
	TodosTotal.Set(float64(todos))
}
