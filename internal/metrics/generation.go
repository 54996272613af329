package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// GenerationMetrics records text-generation calls and recommendation workflow halts.
// A nil *GenerationMetrics is a no-op.
type GenerationMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	halts    *prometheus.CounterVec
}

// NewGenerationMetrics registers the collectors on reg; a nil registerer disables metrics.
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	if reg == nil {
		return nil
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snuggli_ai_calls_total",
		Help: "Text generation calls by purpose and outcome.",
	}, []string{"purpose", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snuggli_ai_call_duration_seconds",
		Help:    "Latency of text generation calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"purpose"})
	halts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snuggli_recommendation_halts_total",
		Help: "Recommendation workflow runs that stopped before displaying a result.",
	}, []string{"reason"})
	reg.MustRegister(calls, duration, halts)
	return &GenerationMetrics{calls: calls, duration: duration, halts: halts}
}

// ObserveCall records one call to the text generation service.
func (m *GenerationMetrics) ObserveCall(purpose string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	label := normalizeLabel(purpose)
	m.calls.WithLabelValues(label, outcome).Inc()
	m.duration.WithLabelValues(label).Observe(d.Seconds())
}

// IncHalt counts a workflow run that halted with the given reason code.
func (m *GenerationMetrics) IncHalt(reason string) {
	if m == nil {
		return
	}
	m.halts.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
