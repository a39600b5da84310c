package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the documents module.
type Metrics struct {
	// Workflow transitions by transition and outcome
	Transitions *prometheus.CounterVec

	// Size of accepted uploads before encryption
	UploadBytes prometheus.Histogram

	// Artifacts served to owners and admins
	Views *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bharatid_document_transitions_total",
			Help: "Document workflow transitions by transition and outcome",
		}, []string{"transition", "doc_type", "outcome"}), // transition: "upload", "verify"

		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bharatid_document_upload_bytes",
			Help:    "Size of accepted document uploads",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 6),
		}),

		Views: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bharatid_document_views_total",
			Help: "Document artifacts served by doc type and viewer kind",
		}, []string{"doc_type", "viewer"}), // viewer: "owner", "admin"
	}
}

func (m *Metrics) IncrementTransition(transition, docType, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(transition, docType, outcome).Inc()
	}
}

func (m *Metrics) ObserveUploadBytes(n int) {
	if m != nil {
		m.UploadBytes.Observe(float64(n))
	}
}

func (m *Metrics) IncrementView(docType, viewer string) {
	if m != nil {
		m.Views.WithLabelValues(docType, viewer).Inc()
	}
}
