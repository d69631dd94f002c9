package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chat model metrics.
var (
	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assistant_requests_total",
			Help:      "Total number of chat model requests",
		},
		[]string{"provider", "model", "status"},
	)

	AssistantRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "assistant_request_duration_seconds",
			Help:      "Chat model request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	AssistantTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assistant_tokens_total",
			Help:      "Total chat model tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	AssistantBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "assistant_budget_tokens_remaining",
			Help:      "Tokens left in the assistant budget window",
		},
		[]string{"provider", "period"},
	)
)

var assistantMetricsRegistered bool

// RegisterAssistantMetrics registers chat model metrics. Must be called once from main.
func RegisterAssistantMetrics() {
	if assistantMetricsRegistered {
		return
	}
	prometheus.MustRegister(AssistantRequestsTotal)
	prometheus.MustRegister(AssistantRequestDuration)
	prometheus.MustRegister(AssistantTokensTotal)
	prometheus.MustRegister(AssistantBudgetTokensRemaining)
	assistantMetricsRegistered = true
}
