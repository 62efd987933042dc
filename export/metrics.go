package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ferencberes/lnroutesim/feeopt"
	"github.com/ferencberes/lnroutesim/simtypes"
)

// Metrics is the ambient observability surface for one simulation run
// (spec.md §4.8a), grounded on the promauto.NewCounterVec/NewGaugeVec
// struct-of-collectors pattern used for gateway-svc's metrics in the wider
// retrieval pack.
type Metrics struct {
	TransactionsTotal  prometheus.Counter
	TransactionsFailed prometheus.Counter
	DepletionsTotal    *prometheus.CounterVec
	RouterIncome       *prometheus.GaugeVec
	RunDurationSeconds prometheus.Histogram
}

// NewMetrics registers a fresh Metrics surface against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lnroutesim",
			Name:      "transactions_total",
			Help:      "Transactions routed over the search graph.",
		}),
		TransactionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lnroutesim",
			Name:      "transactions_failed_total",
			Help:      "Transactions that found no route.",
		}),
		DepletionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lnroutesim",
			Name:      "edge_depletions_total",
			Help:      "Directed edge removals due to capacity depletion, by node.",
		}, []string{"node"}),
		RouterIncome: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lnroutesim",
			Name:      "router_income_sat",
			Help:      "Total fee income earned by a router over the run.",
		}, []string{"node"}),
		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lnroutesim",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one simulation run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Observe populates the run-scoped gauges/counters from a completed run's
// outputs. Counters that accumulate across calls (TransactionsTotal,
// TransactionsFailed, DepletionsTotal) are only meaningful for a
// process that runs one simulation per lifetime, which matches cmd/lnsim.
func (m *Metrics) Observe(paths []simtypes.PathResult, routerFees []simtypes.RouterFee,
	depletionCounts map[string]int) {

	for _, p := range paths {
		m.TransactionsTotal.Inc()
		if p.Cost.IsNone() {
			m.TransactionsFailed.Inc()
		}
	}

	income := make(map[string]float64)
	for _, rf := range routerFees {
		income[rf.Node] += rf.Fee
	}
	for node, total := range income {
		m.RouterIncome.WithLabelValues(node).Set(total)
	}

	for node, count := range depletionCounts {
		m.DepletionsTotal.WithLabelValues(node).Add(float64(count))
	}
}

// ObserveOptimalFees sets the router-income gauge from the Fee Optimizer's
// opt-income projection alongside the baseline income already set by
// Observe, under a distinct label so both are visible simultaneously.
func (m *Metrics) ObserveOptimalFees(results []feeopt.RouterResult) {
	for _, r := range results {
		m.RouterIncome.WithLabelValues(r.Node + ":opt").Set(r.TotalIncome + r.IncomeDiff)
	}
}
