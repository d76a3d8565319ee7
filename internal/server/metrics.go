package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// Metrics holds the node counters served on /metrics. Each instance
// carries its own registry so restarts and tests never trip duplicate
// registration.
type Metrics struct {
	registry *prometheus.Registry

	ledgersClosed prometheus.Counter
	transactions  *prometheus.CounterVec
	offerEvents   *prometheus.CounterVec
	validatedSeq  prometheus.Gauge
	supplyUnits   prometheus.Gauge
}

// NewMetrics builds the collector set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ledgersClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "swapd",
			Name:      "ledgers_closed_total",
			Help:      "Ledgers closed since the node started.",
		}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapd",
			Name:      "transactions_total",
			Help:      "Transactions in closed ledgers, by result class and type.",
		}, []string{"class", "type"}),
		offerEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapd",
			Name:      "offer_events_total",
			Help:      "Offer lifecycle transitions in closed ledgers, by status.",
		}, []string{"status"}),
		validatedSeq: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "swapd",
			Name:      "validated_ledger_sequence",
			Help:      "Sequence of the latest validated ledger.",
		}),
		supplyUnits: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "swapd",
			Name:      "total_supply_units",
			Help:      "Total native supply in base units.",
		}),
	}
}

// Hooks returns the service hooks that feed the collectors.
func (m *Metrics) Hooks() service.Hooks {
	return service.Hooks{
		OnLedgerClosed: func(ev service.LedgerClosedEvent) {
			m.ledgersClosed.Inc()
			m.validatedSeq.Set(float64(ev.Sequence))
			m.supplyUnits.Set(float64(ev.TotalSupply.Units()))
		},
		OnTransaction: func(ev service.TransactionEvent) {
			m.transactions.WithLabelValues(ev.Result.Class(), ev.TransactionType).Inc()
		},
		OnOffer: func(ev service.OfferEvent) {
			m.offerEvents.WithLabelValues(ev.Status).Inc()
		},
	}
}

// Handler serves the registry in the standard exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
