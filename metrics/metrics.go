// Package metrics records completion call metrics with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder observes completed service calls.
type Recorder interface {
	ObserveRequest(model, agentID string, promptTokens, completionTokens int, cost float64, errorKind string, duration time.Duration)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, int, float64, string, time.Duration) {}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	requestsTotal   *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	costsTotal      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the collectors with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpt_requests_total",
				Help: "Total number of completion requests by model, agent and status",
			},
			[]string{"model", "agent_id", "status", "error_kind"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpt_tokens_total",
				Help: "Total number of tokens used by completion requests",
			},
			[]string{"model", "agent_id", "type"},
		),
		costsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpt_costs_total",
				Help: "Expected cost in USD of completion requests",
			},
			[]string{"model", "agent_id"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gpt_request_duration_seconds",
				Help:    "Duration of completion requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model", "agent_id"},
		),
	}
}

// ObserveRequest records one call. An empty errorKind means success; tokens
// and cost are only counted on success.
func (p *PrometheusRecorder) ObserveRequest(model, agentID string, promptTokens, completionTokens int, cost float64, errorKind string, duration time.Duration) {
	status := "success"
	if errorKind != "" {
		status = "error"
	}
	p.requestsTotal.WithLabelValues(model, agentID, status, errorKind).Inc()

	if errorKind == "" {
		p.tokensTotal.WithLabelValues(model, agentID, "prompt").Add(float64(promptTokens))
		p.tokensTotal.WithLabelValues(model, agentID, "completion").Add(float64(completionTokens))
		p.costsTotal.WithLabelValues(model, agentID).Add(cost)
	}

	p.requestDuration.WithLabelValues(model, agentID).Observe(duration.Seconds())
}
