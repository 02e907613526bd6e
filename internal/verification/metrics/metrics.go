package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	Verifications *prometheus.CounterVec
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuscard_verifications_total",
			Help: "QR verification attempts by outcome",
		}, []string{"outcome"}), // outcome: "valid", "invalid_format", "not_found", "unknown_type"
	}
}

// RecordOutcome counts one verification attempt.
func (m *Metrics) RecordOutcome(outcome string) {
	if m != nil {
		m.Verifications.WithLabelValues(outcome).Inc()
	}
}
