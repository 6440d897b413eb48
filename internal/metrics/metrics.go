// Package metrics holds Prometheus collectors and the operator HTTP router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Scan outcomes.
const (
	ScanAccepted   = "accepted"
	ScanInvalid    = "invalid_signature"
	ScanMalformed  = "malformed_payload"
	ScanUnresolved = "unresolved_binding"
	ScanMisconfig  = "misconfigured"
	ScanError      = "error"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	CredentialsIssued prometheus.Counter
	Scans             *prometheus.CounterVec
	AuditWrites       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CredentialsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "securecat_credentials_issued_total",
			Help: "Total number of admission credentials issued",
		}),
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "securecat_credential_scans_total",
			Help: "Credential verification attempts by outcome",
		}, []string{"outcome"}),
		AuditWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "securecat_audit_writes_total",
			Help: "Audit trail appends by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.CredentialsIssued, m.Scans, m.AuditWrites)
	return m
}

// IncCredentialsIssued counts one issued credential.
func (m *Metrics) IncCredentialsIssued() {
	if m == nil {
		return
	}
	m.CredentialsIssued.Inc()
}

// ObserveScan counts one verification attempt.
func (m *Metrics) ObserveScan(outcome string) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(outcome).Inc()
}

// ObserveAuditWrite counts one audit append.
func (m *Metrics) ObserveAuditWrite(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.AuditWrites.WithLabelValues(result).Inc()
}
