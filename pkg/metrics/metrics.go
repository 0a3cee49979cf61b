// Package metrics exposes Prometheus collectors for the deposit pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet"

// Settlement outcomes.
const (
	OutcomeApproved       = "approved"
	OutcomeRejected       = "rejected"
	OutcomeDuplicate      = "duplicate"
	OutcomeUnknownOrder   = "unknown_order"
	OutcomeAmountMismatch = "amount_mismatch"
	OutcomeUnsettled      = "unsettled"
	OutcomeError          = "error"
)

// Metrics holds the pipeline collectors. A nil *Metrics is a no-op.
type Metrics struct {
	depositsCreated    prometheus.Counter
	payableSource      *prometheus.CounterVec
	settlementOutcomes *prometheus.CounterVec
	settlementDuration prometheus.Histogram
	bonusApplied       *prometheus.CounterVec
	bonusAmount        *prometheus.CounterVec
	webhookAuthFailed  prometheus.Counter
	raceLost           *prometheus.CounterVec
	anomalies          *prometheus.CounterVec
}

// MustNew constructs the collectors and registers them with reg, panicking on a
// registration error. Tests should pass a fresh prometheus.NewRegistry().
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		depositsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposit",
			Name:      "orders_created_total",
			Help:      "Deposit orders persisted.",
		}),
		payableSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposit",
			Name:      "payable_source_total",
			Help:      "Payable references produced, by source (provider, bank_transfer, none).",
		}, []string{"source"}),
		settlementOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "outcomes_total",
			Help:      "Settlement attempts by outcome.",
		}, []string{"outcome"}),
		settlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "duration_seconds",
			Help:      "Time spent settling one callback, bonus stage included.",
			Buckets:   prometheus.DefBuckets,
		}),
		bonusApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "promotion",
			Name:      "bonus_applied_total",
			Help:      "Bonus entries credited, by promotion kind.",
		}, []string{"kind"}),
		bonusAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "promotion",
			Name:      "bonus_amount_total",
			Help:      "Sum of bonus amounts credited, in minor units, by promotion kind.",
		}, []string{"kind"}),
		webhookAuthFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "authentication_failures_total",
			Help:      "Callbacks rejected for a bad or missing signature.",
		}),
		raceLost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "conditional_update_lost_total",
			Help:      "Conditional updates that matched no row because a concurrent settlement won, by resource.",
		}, []string{"resource"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "anomalies_total",
			Help:      "Callbacks left for manual reconciliation, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.depositsCreated,
		m.payableSource,
		m.settlementOutcomes,
		m.settlementDuration,
		m.bonusApplied,
		m.bonusAmount,
		m.webhookAuthFailed,
		m.raceLost,
		m.anomalies,
	)
	return m
}

func (m *Metrics) IncDepositCreated() {
	if m == nil {
		return
	}
	m.depositsCreated.Inc()
}

func (m *Metrics) IncPayableSource(source string) {
	if m == nil {
		return
	}
	m.payableSource.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveSettlement(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.settlementOutcomes.WithLabelValues(outcome).Inc()
	m.settlementDuration.Observe(d.Seconds())
}

func (m *Metrics) IncBonusApplied(kind string, amount int64) {
	if m == nil {
		return
	}
	m.bonusApplied.WithLabelValues(kind).Inc()
	m.bonusAmount.WithLabelValues(kind).Add(float64(amount))
}

func (m *Metrics) IncWebhookAuthFailure() {
	if m == nil {
		return
	}
	m.webhookAuthFailed.Inc()
}

// IncRaceLost counts a lost conditional update: "transition", "promotion_uses" or "promotion_code".
func (m *Metrics) IncRaceLost(resource string) {
	if m == nil {
		return
	}
	m.raceLost.WithLabelValues(resource).Inc()
}

func (m *Metrics) IncAnomaly(reason string) {
	if m == nil {
		return
	}
	m.anomalies.WithLabelValues(reason).Inc()
}
