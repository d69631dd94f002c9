package curalink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of curalink_sdk_operations_total.
const (
	outcomeOK          = "ok"
	outcomeCancelled   = "cancelled"
	outcomeClientError = "client_error"
	outcomeServerError = "server_error"
	outcomeUnreachable = "unreachable"
)

// sdkMetrics are the collectors registered by WithPrometheus.
type sdkMetrics struct {
	operations      *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	archiveRequests *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curalink",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Gateway calls by operation and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "curalink",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Gateway call latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		archiveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curalink",
			Subsystem: "sdk",
			Name:      "archive_requests_total",
			Help:      "Archive round trips the gateway reported for SDK searches.",
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.archiveRequests); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered
// under the same name so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("curalink: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("curalink: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// outcomeOf classifies a call. Gateway answers split on the HTTP status class.
func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, context.Canceled) {
		return outcomeCancelled
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 500 {
			return outcomeServerError
		}
		return outcomeClientError
	}
	return outcomeUnreachable
}

// observer logs and counts gateway calls. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	outcome := outcomeOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, outcome).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}
	if outcome == outcomeOK || outcome == outcomeCancelled {
		o.logger.Debug("curalink call", "op", op, "status", outcome, "duration", elapsed)
		return
	}
	o.logger.Warn("curalink call failed", "op", op, "status", outcome, "duration", elapsed, "error", err)
}

// archive records the X-Archive-Requests count of a search answer.
func (o *observer) archive(op string, n int) {
	if o == nil || o.metrics == nil || n <= 0 {
		return
	}
	o.metrics.archiveRequests.WithLabelValues(op).Add(float64(n))
}
