package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts issuer activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	issued            *prometheus.CounterVec
	configDiagnostics prometheus.Counter
	signFailures      *prometheus.CounterVec
}

// NewMetrics registers the issuer counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usersig_issued_total",
			Help: "User signatures issued by token format",
		}, []string{"format"}),
		configDiagnostics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usersig_config_diagnostics_total",
			Help: "Issuances performed with an incomplete credential configuration",
		}),
		signFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usersig_sign_failures_total",
			Help: "Signing primitive failures by token format",
		}, []string{"format"}),
	}
	reg.MustRegister(m.issued, m.configDiagnostics, m.signFailures)
	return m
}

// RecordIssued increments the issued counter.
func (m *Metrics) RecordIssued(format string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(format).Inc()
}

// RecordConfigDiagnostic increments the misconfiguration counter.
func (m *Metrics) RecordConfigDiagnostic() {
	if m == nil {
		return
	}
	m.configDiagnostics.Inc()
}

// RecordSignFailure increments the signing failure counter.
func (m *Metrics) RecordSignFailure(format string) {
	if m == nil {
		return
	}
	m.signFailures.WithLabelValues(format).Inc()
}
