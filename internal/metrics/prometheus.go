// Package metrics holds the Prometheus collectors, registered on
// import and served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPDuration tracks request latency by method and route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inkwell_http_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// AuthzDenials counts authorization denials by role and resource kind.
	AuthzDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_authz_denials_total",
			Help: "Authorization decisions that denied the request",
		},
		[]string{"role", "kind"},
	)

	// LoginThrottled counts logins rejected by the rate limiter.
	LoginThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_login_throttled_total",
			Help: "Login attempts rejected by the rate limiter",
		},
	)

	// LoginFailures counts failed credential checks.
	LoginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_login_failures_total",
			Help: "Login attempts with bad credentials",
		},
	)

	// AuditEntriesWritten counts persisted audit log entries.
	AuditEntriesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_audit_entries_written_total",
			Help: "Audit log entries persisted",
		},
	)

	// ScheduledPostsPublished counts scheduled posts flipped to published.
	ScheduledPostsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_scheduled_posts_published_total",
			Help: "Scheduled posts published by the background publisher",
		},
	)
)
