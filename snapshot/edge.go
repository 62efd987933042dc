// Package snapshot implements the Edge Preprocessor of spec.md §4.1: it
// turns a raw channel snapshot into the aggregated DirectedEdge table the
// rest of the pipeline consumes. Grounded on the original implementation's
// graph_preprocessing.py (prepare_edges_for_simulation / calculate_tx_fee)
// and, for the routing-facing edge shape, routing/additionaledge.go's
// DirectedEdge type from the teacher repository.
package snapshot

// DefaultPolicy holds the imputed values spec.md §4.1 documents for a raw
// edge's missing policy fields.
var DefaultPolicy = RawEdge{
	Disabled:         false,
	FeeBaseMsat:      1000,
	FeeRateMilliMsat: 1,
	MinHtlc:          1000,
}

// RawEdge is one row of the raw channel snapshot, as read from the input
// table described in spec.md §6.
type RawEdge struct {
	Src              string
	Trg              string
	Capacity         int64
	LastUpdate       int64
	Disabled         bool
	FeeBaseMsat      float64
	FeeRateMilliMsat float64
	MinHtlc          float64
}

// DirectedEdge is the aggregated per-(src,trg) record described in
// spec.md §3: at most one record per directed pair, with multi-edges in the
// raw snapshot summed on capacity and mean-averaged on fee terms.
type DirectedEdge struct {
	Src      string
	Trg      string
	Capacity int64
	TotalFee float64
	BaseFee  float64
	Rate     float64
}

// Key returns the (src, trg) pair that uniquely identifies this directed
// edge in the aggregated table.
func (e DirectedEdge) Key() (string, string) {
	return e.Src, e.Trg
}

// calculateTotalFee computes the msat-denominated fee policy of a raw edge
// into sat terms for a payment of the given amount: total_fee =
// fee_base_msat/1000 + amount*fee_rate_milli_msat/10^6, per spec.md §4.1.
// fee_rate_milli_msat is expressed per 10^6 sat, matching BOLT7's "parts per
// million" convention.
func calculateTotalFee(e RawEdge, amountSat int64) float64 {
	return e.FeeBaseMsat/1000.0 + float64(amountSat)*e.FeeRateMilliMsat/1e6
}
