package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for login and logout.
type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	Logouts       prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bharatid_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "unknown_identifier", "bad_password", "error"

		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "bharatid_logouts_total",
			Help: "Tokens revoked by logout",
		}),
	}
}

func (m *Metrics) IncrementLogin(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementLogout() {
	if m != nil {
		m.Logouts.Inc()
	}
}
