// Package metrics provides Prometheus metrics for the vavoo resolver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all resolver metrics
	namespace = "vavoo"
)

// Registry holds every collector in this package. The serve command exposes it.
var Registry = prometheus.NewRegistry()

var (
	// SessionsCreated counts HTTP sessions built by the connection manager
	SessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of HTTP sessions created",
		},
		[]string{"transport"},
	)

	// SignatureAttempts tracks individual handshake attempts
	SignatureAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_attempts_total",
			Help:      "Total number of signature handshake attempts",
		},
		[]string{"flow", "result"},
	)

	// ResolveRequests tracks calls to the resolution endpoint
	ResolveRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_requests_total",
			Help:      "Total number of resolution requests",
		},
		[]string{"result"},
	)

	// Extractions tracks extract calls per strategy
	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of extract calls",
		},
		[]string{"strategy", "result"},
	)

	// ExtractDuration tracks how long extract calls take
	ExtractDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Duration of extract calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
)

func init() {
	Registry.MustRegister(
		SessionsCreated,
		SignatureAttempts,
		ResolveRequests,
		Extractions,
		ExtractDuration,
	)
}

// Result labels
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultMissing = "missing_field"
)
