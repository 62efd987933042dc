package snapshot

import "sort"

// FilterConfig gathers the preprocessing filters of spec.md §4.1. A nil
// TsUpperBound or TimeWindow disables that filter. Filters are applied in
// the documented order: the order is load-bearing (spec.md §9's "do not
// optimize it" note) because dropping on capacity before recency, say,
// changes the max(last_update) the recency filter computes against.
type FilterConfig struct {
	Amount       int64
	TsUpperBound *int64
	DropLowCap   bool
	TimeWindow   *int64
	DropDisabled bool
}

// Preprocess runs the Edge Preprocessor of spec.md §4.1: filters raw edges,
// computes each row's total_fee, and aggregates multi-edges down to one
// DirectedEdge per (src, trg) pair.
func Preprocess(edges []RawEdge, cfg FilterConfig) []DirectedEdge {
	filtered := make([]RawEdge, len(edges))
	copy(filtered, edges)

	// (a) drop rows with last_update >= ts_upper_bound.
	if cfg.TsUpperBound != nil {
		filtered = filterEdges(filtered, func(e RawEdge) bool {
			return e.LastUpdate < *cfg.TsUpperBound
		})
	}

	// (b) drop rows with capacity < amount, if requested.
	if cfg.DropLowCap {
		filtered = filterEdges(filtered, func(e RawEdge) bool {
			return e.Capacity >= cfg.Amount
		})
	}

	// (c) drop rows older than max(last_update) - time_window.
	if cfg.TimeWindow != nil && len(filtered) > 0 {
		maxUpdate := filtered[0].LastUpdate
		for _, e := range filtered[1:] {
			if e.LastUpdate > maxUpdate {
				maxUpdate = e.LastUpdate
			}
		}
		lowerBound := maxUpdate - *cfg.TimeWindow
		filtered = filterEdges(filtered, func(e RawEdge) bool {
			return e.LastUpdate >= lowerBound
		})
	}

	// (d) drop disabled edges, if requested.
	if cfg.DropDisabled {
		filtered = filterEdges(filtered, func(e RawEdge) bool {
			return !e.Disabled
		})
	}

	log.Debugf("edge preprocessor: %d of %d rows survived filtering",
		len(filtered), len(edges))

	return aggregate(filtered, cfg.Amount)
}

func filterEdges(edges []RawEdge, keep func(RawEdge) bool) []RawEdge {
	out := edges[:0:0]
	for _, e := range edges {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// aggregateKey is the grouping key for multi-edge aggregation.
type aggregateKey struct {
	src, trg string
}

// aggregate groups filtered rows by (src, trg), summing capacity and
// mean-averaging the fee terms, per spec.md §3's DirectedEdge invariant.
func aggregate(edges []RawEdge, amount int64) []DirectedEdge {
	type acc struct {
		capacity  int64
		totalFee  float64
		baseFee   float64
		rate      float64
		n         int
		firstSeen int
	}

	groups := make(map[aggregateKey]*acc)
	order := make([]aggregateKey, 0)

	for i, e := range edges {
		key := aggregateKey{src: e.Src, trg: e.Trg}
		a, ok := groups[key]
		if !ok {
			a = &acc{firstSeen: i}
			groups[key] = a
			order = append(order, key)
		}

		a.capacity += e.Capacity
		a.totalFee += calculateTotalFee(e, amount)
		a.baseFee += e.FeeBaseMsat / 1000.0
		a.rate += e.FeeRateMilliMsat / 1e6
		a.n++
	}

	sort.Slice(order, func(i, j int) bool {
		return groups[order[i]].firstSeen < groups[order[j]].firstSeen
	})

	out := make([]DirectedEdge, 0, len(order))
	for _, key := range order {
		a := groups[key]
		out = append(out, DirectedEdge{
			Src:      key.src,
			Trg:      key.trg,
			Capacity: a.capacity,
			TotalFee: a.totalFee / float64(a.n),
			BaseFee:  a.baseFee / float64(a.n),
			Rate:     a.rate / float64(a.n),
		})
	}

	return out
}
