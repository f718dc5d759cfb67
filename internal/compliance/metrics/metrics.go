package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CurrencyOther labels evaluations in currencies outside the tracked set.
// Currency codes are caller supplied, so only configured ones become series.
const CurrencyOther = "other"

// Metrics provides observability for the compliance module.
type Metrics struct {
	currencies map[string]struct{}

	TransactionsEvaluated *prometheus.CounterVec
	AlertsRaised          *prometheus.CounterVec
	AlertsDeduplicated    prometheus.Counter
	AlertStatusChanges    *prometheus.CounterVec
	ValidationFailures    prometheus.Counter
	EvaluateLatency       prometheus.Histogram
	PublishFailures       prometheus.Counter
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the compliance metrics with reg. Tests pass a
// fresh registry so repeated construction does not collide. currencies are
// the codes kept as their own label value, normally the daily limit table.
func NewWithRegisterer(reg prometheus.Registerer, currencies ...string) *Metrics {
	f := promauto.With(reg)
	tracked := make(map[string]struct{}, len(currencies))
	for _, c := range currencies {
		tracked[c] = struct{}{}
	}
	return &Metrics{
		currencies: tracked,
		TransactionsEvaluated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "txwatch_transactions_evaluated_total",
			Help: "Transactions evaluated by the rule engine, by type and currency",
		}, []string{"type", "currency"}),

		AlertsRaised: f.NewCounterVec(prometheus.CounterOpts{
			Name: "txwatch_alerts_raised_total",
			Help: "Alerts raised, by rule and severity",
		}, []string{"rule", "severity"}),

		AlertsDeduplicated: f.NewCounter(prometheus.CounterOpts{
			Name: "txwatch_alerts_deduplicated_total",
			Help: "Alerts dropped because the rule already fired for the transaction",
		}),

		AlertStatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "txwatch_alert_status_changes_total",
			Help: "Manual alert status changes, by target status",
		}, []string{"status"}),

		ValidationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "txwatch_transaction_validation_failures_total",
			Help: "Submissions rejected before rule evaluation",
		}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "txwatch_evaluate_duration_seconds",
			Help:    "Duration of rule evaluation for one candidate",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "txwatch_alert_publish_failures_total",
			Help: "Alerts that could not be published downstream",
		}),
	}
}

func (m *Metrics) IncrementEvaluated(txType, currency string) {
	if m != nil {
		m.TransactionsEvaluated.WithLabelValues(txType, m.currencyLabel(currency)).Inc()
	}
}

func (m *Metrics) currencyLabel(currency string) string {
	if _, ok := m.currencies[currency]; ok {
		return currency
	}
	return CurrencyOther
}

func (m *Metrics) IncrementAlert(rule, severity string) {
	if m != nil {
		m.AlertsRaised.WithLabelValues(rule, severity).Inc()
	}
}

func (m *Metrics) IncrementDeduplicated(n int) {
	if m != nil && n > 0 {
		m.AlertsDeduplicated.Add(float64(n))
	}
}

func (m *Metrics) IncrementStatusChange(status string) {
	if m != nil {
		m.AlertStatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementValidationFailure() {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}

// ObserveEvaluateLatency records the duration of a submission.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
