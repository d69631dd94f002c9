package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every curalink metric.
const Namespace = "curalink"

// Archive and identity provider metrics.
var (
	ArchiveRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "archive_requests_total",
			Help:      "Total number of archive requests",
		},
		[]string{"archive", "resource", "status"},
	)

	ArchiveRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "archive_request_duration_seconds",
			Help:      "Archive request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"archive", "resource"},
	)

	ArchiveErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "archive_errors_total",
			Help:      "Total archive errors",
		},
		[]string{"archive", "error_type"}, // "auth" / "http" / "transport"
	)

	TokenRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "token_requests_total",
			Help:      "Total token requests to the identity provider",
		},
		[]string{"status"},
	)

	TokenCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "token_cache_total",
			Help:      "Access token cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	InstitutionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "institution_cache_total",
			Help:      "Institution list cache hits and misses",
		},
		[]string{"result"},
	)
)

var archiveMetricsRegistered bool

// RegisterArchiveMetrics registers archive metrics. Must be called once from main.
func RegisterArchiveMetrics() {
	if archiveMetricsRegistered {
		return
	}
	prometheus.MustRegister(ArchiveRequestsTotal)
	prometheus.MustRegister(ArchiveRequestDuration)
	prometheus.MustRegister(ArchiveErrorsTotal)
	prometheus.MustRegister(TokenRequestsTotal)
	prometheus.MustRegister(TokenCacheTotal)
	prometheus.MustRegister(InstitutionCacheTotal)
	archiveMetricsRegistered = true
}
