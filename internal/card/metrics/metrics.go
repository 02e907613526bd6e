package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the card issuance module.
type Metrics struct {
	CardsIssued    *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	BatchSubjects  *prometheus.CounterVec
}

// New creates a Metrics instance with all issuance metrics registered.
func New() *Metrics {
	return &Metrics{
		CardsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuscard_cards_issued_total",
			Help: "Total cards issued by subject type",
		}, []string{"subject_type"}),
		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campuscard_render_duration_seconds",
			Help:    "Duration of single-card render operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSubjects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuscard_batch_subjects_total",
			Help: "Bulk issuance outcomes per subject",
		}, []string{"outcome"}), // outcome: "issued", "failed"
	}
}

// RecordIssued counts one successful issuance.
func (m *Metrics) RecordIssued(subjectType string) {
	if m != nil {
		m.CardsIssued.WithLabelValues(subjectType).Inc()
	}
}

// ObserveRender records the duration of a render operation.
func (m *Metrics) ObserveRender(start time.Time) {
	if m != nil {
		m.RenderDuration.Observe(time.Since(start).Seconds())
	}
}

// RecordBatchOutcome counts one per-subject outcome of a bulk issuance.
func (m *Metrics) RecordBatchOutcome(outcome string) {
	if m != nil {
		m.BatchSubjects.WithLabelValues(outcome).Inc()
	}
}
