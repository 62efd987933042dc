// Package export implements the Aggregator/Exporter of spec.md §4.8: it
// turns the Path Engine's and Fee Optimizer's in-memory results into the
// tabular sinks described in spec.md §6 (parameter JSON, length-histogram
// CSV, per-router income CSV, per-source mean-fee CSV, per-router
// optimal-fee CSV), plus the prometheus metrics ambient to every run
// (spec.md §4.8a). Grounded on the original implementation's
// lnsimulator/simulator/transaction_simulator.py (export /
// get_total_income_for_routers / get_total_fee_for_sources) for the table
// shapes, and on encoding/csv and encoding/json since no tabular or
// dataframe library appears anywhere in the retrieval pack.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ferencberes/lnroutesim/feeopt"
	"github.com/ferencberes/lnroutesim/simtypes"
)

// Params is the parameter record written as params.json, mirroring the
// original implementation's self.params dict plus the routing-surface
// fields spec.md §6a adds on top of it.
type Params struct {
	Amount           int64   `json:"amount"`
	Count            int     `json:"count"`
	Epsilon          float64 `json:"epsilon"`
	WithDepletion    bool    `json:"with_depletion"`
	DropDisabled     bool    `json:"drop_disabled"`
	DropLowCap       bool    `json:"drop_low_cap"`
	TimeWindow       *int64  `json:"time_window,omitempty"`
	Weight           string  `json:"weight"`
	WithNodeRemovals bool    `json:"with_node_removals"`
	MaxThreads       int     `json:"max_threads"`
	RequiredLength   *int    `json:"required_length,omitempty"`
	Seed             int64   `json:"seed"`
}

// WriteParams writes the parameter record as JSON.
func WriteParams(w io.Writer, p Params) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// WriteLengthHistogram writes one (length, count) row per distinct path
// length among successful PathResults, ascending by length.
func WriteLengthHistogram(w io.Writer, paths []simtypes.PathResult) error {
	counts := make(map[int]int)
	for _, p := range paths {
		if p.Cost.IsSome() {
			counts[p.Length]++
		}
	}

	lengths := make([]int, 0, len(counts))
	for l := range counts {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"length", "count"}); err != nil {
		return err
	}
	for _, l := range lengths {
		row := []string{fmt.Sprintf("%d", l), fmt.Sprintf("%d", counts[l])}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRouterIncome writes the per-router total-fee table, rows sorted by
// fee descending then node ascending, mirroring
// get_total_income_for_routers.
func WriteRouterIncome(w io.Writer, routerFees []simtypes.RouterFee) error {
	type agg struct {
		fee   float64
		count int
	}
	byNode := make(map[string]*agg)
	for _, rf := range routerFees {
		a, ok := byNode[rf.Node]
		if !ok {
			a = &agg{}
			byNode[rf.Node] = a
		}
		a.fee += rf.Fee
		a.count++
	}

	nodes := make([]string, 0, len(byNode))
	for n := range byNode {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if byNode[nodes[i]].fee != byNode[nodes[j]].fee {
			return byNode[nodes[i]].fee > byNode[nodes[j]].fee
		}
		return nodes[i] < nodes[j]
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node", "fee", "num_trans"}); err != nil {
		return err
	}
	for _, n := range nodes {
		a := byNode[n]
		row := []string{n, fmt.Sprintf("%g", a.fee), fmt.Sprintf("%d", a.count)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSourceFees writes the per-source mean-original-cost table, for
// transactions whose path had at least one real hop (length > 0),
// mirroring get_total_fee_for_sources.
func WriteSourceFees(w io.Writer, txs []simtypes.Transaction, paths []simtypes.PathResult) error {
	origByID := make(map[int]simtypes.PathResult, len(paths))
	for _, p := range paths {
		origByID[p.TransactionID] = p
	}

	type agg struct {
		sum   float64
		count int
	}
	bySource := make(map[string]*agg)
	for _, tx := range txs {
		pr, ok := origByID[tx.ID]
		if !ok || pr.Length <= 0 || pr.Cost.IsNone() {
			continue
		}
		a, ok := bySource[tx.Source]
		if !ok {
			a = &agg{}
			bySource[tx.Source] = a
		}
		a.sum += pr.Cost.UnwrapOr(0)
		a.count++
	}

	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"source", "mean_fee", "num_trans"}); err != nil {
		return err
	}
	for _, s := range sources {
		a := bySource[s]
		row := []string{s, fmt.Sprintf("%g", a.sum/float64(a.count)), fmt.Sprintf("%d", a.count)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRouterOptimalFee writes the per-router optimal-fee table produced by
// the Fee Optimizer, rows ordered as feeopt.Optimize returns them (total
// income descending).
func WriteRouterOptimalFee(w io.Writer, results []feeopt.RouterResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"node", "total_income", "total_traffic",
		"failed_traffic_ratio", "opt_delta", "income_diff",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Node,
			fmt.Sprintf("%g", r.TotalIncome),
			fmt.Sprintf("%d", r.TotalTraffic),
			fmt.Sprintf("%g", r.FailedTrafficRatio),
			fmt.Sprintf("%g", r.OptDelta),
			fmt.Sprintf("%g", r.IncomeDiff),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
