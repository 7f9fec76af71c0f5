// Package metrics holds the Prometheus collectors of the vault and the transaction configurator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github/chapool/go-keyvault/internal/wallet"
)

const namespace = "keyvault"

// Outcome labels for configuration refinements.
const (
	OutcomeEstimated      = "estimated"
	OutcomeEncoded        = "encoded"
	OutcomeDefaulted      = "defaulted"
	OutcomeSkipped        = "skipped"
	OutcomeEncodingFailed = "encoding_failed"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	VaultOperations   *prometheus.CounterVec
	VaultDuration     *prometheus.HistogramVec
	Refinements       *prometheus.CounterVec
	BalanceValidation *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		VaultOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vault_operations_total",
				Help:      "Total number of key vault operations by result code.",
			},
			[]string{"operation", "result"},
		),
		VaultDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "vault_operation_duration_seconds",
				Help:      "Key vault operation latency, dominated by key derivation.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"operation"},
		),
		Refinements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "configuration_refinements_total",
				Help:      "Total number of transaction configuration refinements by outcome.",
			},
			[]string{"kind", "outcome"},
		),
		BalanceValidation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_validations_total",
				Help:      "Total number of balance validations by status.",
			},
			[]string{"status"},
		),
	}

	for _, c := range []prometheus.Collector{m.VaultOperations, m.VaultDuration, m.Refinements, m.BalanceValidation} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveVaultOperation records one vault call. The result label is "ok" or the error code.
func (m *Metrics) ObserveVaultOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = wallet.ErrorCode(err)
		if result == "" {
			result = "error"
		}
	}

	m.VaultOperations.WithLabelValues(operation, result).Inc()
	m.VaultDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveRefinement records the outcome of one configuration refinement.
func (m *Metrics) ObserveRefinement(kind, outcome string) {
	if m == nil {
		return
	}
	m.Refinements.WithLabelValues(kind, outcome).Inc()
}

// ObserveBalanceStatus records one validation result.
func (m *Metrics) ObserveBalanceStatus(status string) {
	if m == nil {
		return
	}
	m.BalanceValidation.WithLabelValues(status).Inc()
}
