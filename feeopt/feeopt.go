// Package feeopt implements the Fee Optimizer of spec.md §4.7: for every
// router with at least one surviving counterfactual path, it sweeps a set
// of base-fee-increment thresholds and picks the one maximizing that
// router's income, then merges the result with the router's baseline
// totals. Grounded on the original implementation's
// lnsimulator/simulator/transaction_simulator.py
// (calculate_max_income / calc_optimal_base_fee).
package feeopt

import (
	"math"
	"sort"
	"strconv"

	"github.com/ferencberes/lnroutesim/simtypes"
	"github.com/ferencberes/lnroutesim/sweep"
)

// RouterResult is one row of the per-router optimal-fee table of
// spec.md §4.8.
type RouterResult struct {
	Node               string
	TotalIncome        float64
	TotalTraffic       int
	FailedTrafficRatio float64
	OptDelta           float64
	IncomeDiff         float64
}

type joinEntry struct {
	txID      int
	fee       float64
	deltaCost float64
}

// Optimize computes the per-router optimal base-fee delta table, per
// spec.md §4.7. originalPaths and routerFees come from the original
// (un-excluded) pathengine.Run; alternatives comes from sweep.Run over the
// same transaction set. minRatio is the retained-traffic floor at which the
// threshold sweep for a given router stops early.
func Optimize(originalPaths []simtypes.PathResult, routerFees []simtypes.RouterFee,
	alternatives []sweep.AlternativePath, minRatio float64) []RouterResult {

	origByID := make(map[int]simtypes.PathResult, len(originalPaths))
	for _, pr := range originalPaths {
		origByID[pr.TransactionID] = pr
	}

	feeByKey := make(map[[2]string]float64, len(routerFees))
	totalIncome := make(map[string]float64)
	totalTraffic := make(map[string]int)
	for _, rf := range routerFees {
		feeByKey[feeKey(rf.TransactionID, rf.Node)] = rf.Fee
		totalIncome[rf.Node] += rf.Fee
		totalTraffic[rf.Node]++
	}

	byRouter := make(map[string][]sweep.AlternativePath)
	for _, alt := range alternatives {
		if alt.PathResult.Cost.IsNone() {
			continue
		}
		byRouter[alt.Router] = append(byRouter[alt.Router], alt)
	}

	type altSummary struct {
		optDelta     float64
		optAltIncome float64
		altIncome    float64
		altTraffic   int
	}
	summaries := make(map[string]altSummary, len(byRouter))

	for node, alts := range byRouter {
		entries := joinEntries(node, alts, origByID, feeByKey)
		if len(entries) == 0 {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].txID < entries[j].txID })

		optDelta, optIncome, _, baselineIncome, joinCount := sweepThresholds(entries, minRatio)
		summaries[node] = altSummary{
			optDelta:     optDelta,
			optAltIncome: optIncome,
			altIncome:    baselineIncome,
			altTraffic:   joinCount,
		}
	}

	results := make([]RouterResult, 0, len(totalIncome))
	for node, income := range totalIncome {
		traffic := totalTraffic[node]
		s := summaries[node]

		failedTraffic := traffic - s.altTraffic
		var failedRatio float64
		if traffic > 0 {
			failedRatio = float64(failedTraffic) / float64(traffic)
		}

		results = append(results, RouterResult{
			Node:               node,
			TotalIncome:        income,
			TotalTraffic:       traffic,
			FailedTrafficRatio: failedRatio,
			OptDelta:           s.optDelta,
			IncomeDiff:         s.optAltIncome - s.altIncome + float64(failedTraffic)*s.optDelta,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalIncome != results[j].TotalIncome {
			return results[i].TotalIncome > results[j].TotalIncome
		}
		return results[i].Node < results[j].Node
	})

	return results
}

// joinEntries reproduces calculate_max_income's inner-join chain: only
// transactions whose original path had length > 1 (at least one router)
// and which have a recorded fee for this node survive.
func joinEntries(node string, alts []sweep.AlternativePath,
	origByID map[int]simtypes.PathResult, feeByKey map[[2]string]float64) []joinEntry {

	var out []joinEntry
	for _, alt := range alts {
		orig, ok := origByID[alt.PathResult.TransactionID]
		if !ok || orig.Length <= 1 || orig.Cost.IsNone() {
			continue
		}
		fee, ok := feeByKey[feeKey(alt.PathResult.TransactionID, node)]
		if !ok {
			continue
		}

		origCost := orig.Cost.UnwrapOr(0)
		altCost := alt.PathResult.Cost.UnwrapOr(0)
		delta := round2(altCost - origCost)

		out = append(out, joinEntry{
			txID:      alt.PathResult.TransactionID,
			fee:       fee,
			deltaCost: delta,
		})
	}
	return out
}

// sweepThresholds implements inspect_base_fee_thresholds: evaluate income
// at delta_cost=0 plus every distinct positive delta_cost, ascending,
// stopping once the retained-traffic ratio drops below minRatio, then
// return the threshold maximizing income.
func sweepThresholds(entries []joinEntry, minRatio float64) (optDelta, optIncome, optProba, baselineIncome float64, joinCount int) {
	joinCount = len(entries)

	for _, e := range entries {
		baselineIncome += e.fee
	}

	posSet := make(map[float64]bool)
	for _, e := range entries {
		if e.deltaCost > 0 {
			posSet[e.deltaCost] = true
		}
	}
	thresholds := make([]float64, 0, len(posSet)+1)
	thresholds = append(thresholds, 0.0)
	for d := range posSet {
		thresholds = append(thresholds, d)
	}
	sort.Float64s(thresholds[1:])

	incomes := make([]float64, 1, len(thresholds))
	probas := make([]float64, 1, len(thresholds))
	incomes[0] = baselineIncome
	probas[0] = 1.0

	for _, th := range thresholds[1:] {
		var sumFee float64
		var retained int
		for _, e := range entries {
			if e.deltaCost >= th {
				sumFee += e.fee
				retained++
			}
		}
		proba := float64(retained) / float64(joinCount)
		incomes = append(incomes, sumFee+float64(retained)*th)
		probas = append(probas, proba)
		if proba < minRatio {
			break
		}
	}

	maxIdx := 0
	for i, v := range incomes {
		if v > incomes[maxIdx] {
			maxIdx = i
		}
	}

	return thresholds[maxIdx], incomes[maxIdx], probas[maxIdx], baselineIncome, joinCount
}

func feeKey(txID int, node string) [2]string {
	return [2]string{strconv.Itoa(txID), node}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
