// Package simtypes holds the data model shared across the pipeline stages
// (spec.md §3) so that sampler, pathengine, sweep, feeopt and export can all
// depend on one definition without import cycles.
package simtypes

import "github.com/ferencberes/lnroutesim/fn"

// Transaction is one sampled source->target payment, per spec.md §3.
// Invariant: Source != Target.
type Transaction struct {
	ID     int
	Source string
	Target string
	Amount int64
}

// PathResult is the outcome of routing one Transaction, per spec.md §3.
// Cost is fn.None() iff no path was found. Length is len(Path)-1, including
// the pseudo-target hop; Path's last element is always a pseudo-target
// whose stripped form equals Target.
type PathResult struct {
	TransactionID int
	Cost          fn.Option[float64]
	Length        int
	Path          []string
}

// RouterFee is one (transaction, router, fee) record: the fee earned by node
// on the path taken by the transaction with the given id, equal to the fee
// of that node's incoming edge. Every real hop produces one record, so the
// final real edge's fee is attributed to the target itself; only the
// zero-fee sink hop onto the pseudo-target produces none.
type RouterFee struct {
	TransactionID int
	Node          string
	Fee           float64
}
