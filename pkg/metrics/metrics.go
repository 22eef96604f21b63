package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeCommitted = "committed"
	OutcomeConflict  = "conflict"
	OutcomeAborted   = "aborted"
	OutcomeBusy      = "busy"
)

// Metrics holds engine counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	txAttempts *prometheus.CounterVec
	rejections *prometheus.CounterVec
	loans      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		txAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tx_attempts_total",
			Help: "Serializable transaction attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_rejections_total",
			Help: "Business rejections of reservation requests by kind.",
		}, []string{"kind"}),
		loans: f.NewCounter(prometheus.CounterOpts{
			Name: "loans_prepared_total",
			Help: "Loans created ahead of upcoming reservations.",
		}),
	}
}

func (m *Metrics) TxOutcome(op, outcome string) {
	if m == nil {
		return
	}
	m.txAttempts.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Rejection(kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind).Inc()
}

func (m *Metrics) LoansPrepared(n int) {
	if m == nil {
		return
	}
	m.loans.Add(float64(n))
}
