package service

import "github.com/prometheus/client_golang/prometheus"

// Pipeline outcome labels.
const (
	OutcomeSuccess          = "success"
	OutcomeValidationFailed = "validation_failed"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeDependencyError  = "dependency_error"
	OutcomeInternalError    = "internal_error"
)

// Metrics holds the pipeline-level Prometheus collectors.
type Metrics struct {
	checksTotal *prometheus.CounterVec
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plagiarism_checks_total",
				Help: "Total number of plagiarism checks by terminal outcome.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.checksTotal); err != nil {
		return nil, err
	}
	return m, nil
}

// record is nil-safe so the service works without metrics in tests.
func (m *Metrics) record(outcome string) {
	if m == nil {
		return
	}
	m.checksTotal.WithLabelValues(outcome).Inc()
}
