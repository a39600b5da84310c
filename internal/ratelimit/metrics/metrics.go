package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	TrackedKeys prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bharatid_ratelimit_decisions_total",
			Help: "Rate limit decisions by limiter and outcome",
		}, []string{"limiter", "outcome"}), // outcome: "allowed", "denied", "error"
		TrackedKeys: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bharatid_ratelimit_tracked_keys",
			Help: "Client keys currently tracked by the in-memory limiter",
		}),
	}
}

func (m *Metrics) IncrementDecision(limiter, outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(limiter, outcome).Inc()
	}
}

func (m *Metrics) SetTrackedKeys(n int) {
	if m != nil {
		m.TrackedKeys.Set(float64(n))
	}
}
