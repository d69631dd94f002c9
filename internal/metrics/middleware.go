package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP surface metrics. The archive label is bounded by the configured archive list.
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Console API request duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "archive"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total console API requests",
		},
		[]string{"method", "route", "archive", "status"},
	)

	HTTPArchiveFanout = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_archive_requests_per_request",
			Help:      "Archive round trips made while serving one console request",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"route"},
	)
)

var httpMetricsRegistered bool

// RegisterHTTPMetrics registers HTTP surface metrics. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPArchiveFanout)
	httpMetricsRegistered = true
}

// RouteLabels resolves the archive label for a request.
type RouteLabels struct {
	// ServiceParam is the query parameter that selects the archive.
	ServiceParam string
	// Default is reported when the parameter is absent.
	Default string
	// Archives is the configured archive list. Anything else is reported as "unknown".
	Archives []string
	// FanoutHeader carries the archive round-trip count set by the handler.
	FanoutHeader string
}

func (l RouteLabels) archive(r *http.Request) string {
	if l.ServiceParam == "" {
		return ""
	}
	id := r.URL.Query().Get(l.ServiceParam)
	if id == "" {
		return l.Default
	}
	for _, a := range l.Archives {
		if a == id {
			return id
		}
	}
	return "unknown"
}

// Middleware records request duration, count and archive fan-out per chi route pattern.
func Middleware(labels RouteLabels) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routeOf(r)
			archive := labels.archive(r)

			HTTPRequestDuration.WithLabelValues(r.Method, route, archive).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(r.Method, route, archive, strconv.Itoa(status)).Inc()

			if labels.FanoutHeader == "" {
				return
			}
			if n, err := strconv.Atoi(ww.Header().Get(labels.FanoutHeader)); err == nil && n > 0 {
				HTTPArchiveFanout.WithLabelValues(route).Observe(float64(n))
			}
		})
	}
}

// routeOf returns the matched chi pattern so path ids never become label values.
func routeOf(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}
