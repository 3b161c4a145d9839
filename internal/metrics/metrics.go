package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "circuitweb",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "circuitweb",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total auth attempts by event and outcome",
		},
		[]string{"event", "success"},
	)

	userListFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "circuitweb",
			Subsystem: "users",
			Name:      "list_fallbacks_total",
			Help:      "User listings served from the database instead of the identity provider",
		},
	)

	storageBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "circuitweb",
			Subsystem: "storage",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes uploaded to object storage by kind",
		},
		[]string{"kind"},
	)

	syncedUsers = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "circuitweb",
			Subsystem: "jobs",
			Name:      "synced_users_total",
			Help:      "Local user rows created by the provider sync job",
		},
	)
)

// ObserveHTTP records a finished request.
func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordAuthAttempt records an auth event for Prometheus.
func RecordAuthAttempt(event string, success bool) {
	authAttempts.WithLabelValues(event, strconv.FormatBool(success)).Inc()
}

func RecordUserListFallback() {
	userListFallbacks.Inc()
}

func RecordUpload(kind string, size int64) {
	storageBytes.WithLabelValues(kind).Add(float64(size))
}

func RecordSyncedUsers(n int) {
	syncedUsers.Add(float64(n))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
