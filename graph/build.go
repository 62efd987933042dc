package graph

// WeightedEdge is the minimal edge shape BuildSearchGraph needs: enough to
// decide inclusion (Capacity >= amount) and to set the routing weight
// (Fee), without graph depending on the snapshot/capacity packages' own
// row types.
type WeightedEdge struct {
	Src, Trg string
	Capacity int64
	Fee      float64
}

// BuildSearchGraph constructs the SearchGraph of spec.md §3 from a set of
// directed edges: every edge with Capacity >= amount contributes
// (src, trg, weight=Fee), charged in full. Every node that is itself a
// transaction target additionally gets exactly one zero-fee sink edge
// (trg, trg_trg): the target must be reached as a real, fee-charged hop
// before the free terminal step onto its pseudo-target, so the target is
// the path's last interior router rather than a detour any of its
// predecessors can reach for free. This deliberately diverges from the
// per-predecessor shadow edge the original implementation builds (every
// edge *into* a target-side node also got its own zero-fee copy straight
// to the sink) — that construction lets a node one hop from the target
// skip paying the target's incoming fee entirely, which collapses the
// §8 worked scenarios (the direct A->C edge would always out-cost the
// free A->C_trg shadow, regardless of what B charges). See DESIGN.md.
func BuildSearchGraph(edges []WeightedEdge, amount int64, targets map[string]bool) *SearchGraph {
	g := New()
	dropped := 0
	for _, e := range edges {
		if e.Capacity < amount {
			dropped++
			continue
		}

		g.AddEdge(Real(e.Src), Real(e.Trg), e.Fee)
	}
	for node := range targets {
		g.AddEdge(Real(node), PseudoTarget(node), 0.0)
	}
	log.Debugf("built search graph from %d edges, dropped %d below amount %d, "+
		"%d pseudo-target sinks", len(edges), dropped, amount, len(targets))
	return g
}
