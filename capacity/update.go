package capacity

import (
	"github.com/ferencberes/lnroutesim/graph"
	"github.com/ferencberes/lnroutesim/simerrors"
)

// ForwardUpdate debits amount from the live capacity of the directed edge
// src->trg and, if the edge drops below 2*amount, removes (src,trg) from g,
// per spec.md §4.4 step 5. It is a fatal simerrors.StateDesync if live_cap
// is already below amount: the SearchGraph should never have offered an
// edge it couldn't carry the payment on.
//
// Unlike the original implementation, a depleted edge's removal never
// touches a pseudo-target sink: graph.BuildSearchGraph wires exactly one
// (trg, trg_trg) edge per target node, owned by the target itself, not by
// each of its predecessors — so no (src, trg) depletion ever needs to take
// a sink edge down with it. See graph.BuildSearchGraph and DESIGN.md.
func (s *State) ForwardUpdate(g *graph.SearchGraph, src, trg string,
	amount int64) (removed bool, err error) {

	cs, ok := s.Get(src, trg)
	if !ok {
		return false, simerrors.StateDesync(src, trg, 0, amount)
	}
	if cs.LiveCap < amount {
		return false, simerrors.StateDesync(src, trg, cs.LiveCap, amount)
	}

	cs.LiveCap -= amount

	if cs.LiveCap < 2*amount {
		g.RemoveEdge(graph.Real(src), graph.Real(trg))
		removed = true
		s.events.Record(EdgeKey{src, trg}, EventDepleted)

		log.Debugf("edge %s->%s depleted (live_cap=%d < 2*amount=%d)",
			src, trg, cs.LiveCap, 2*amount)
	}

	return removed, nil
}

// BackwardUpdate credits amount back onto the live capacity of the directed
// edge src->trg (the reverse hop of a forward_update'd edge) and, if the
// edge had been below amount (and therefore missing from g), re-inserts it,
// per spec.md §4.4 step 5. A no-op if (src, trg) has no ChannelState at all.
func (s *State) BackwardUpdate(g *graph.SearchGraph, src, trg string, amount int64) {
	cs, ok := s.Get(src, trg)
	if !ok {
		return
	}

	if cs.LiveCap < amount {
		g.AddEdge(graph.Real(src), graph.Real(trg), cs.Fee)
		s.events.Record(EdgeKey{src, trg}, EventAvailable)

		log.Debugf("edge %s->%s re-inserted (live_cap=%d < amount=%d)",
			src, trg, cs.LiveCap, amount)
	}

	cs.LiveCap += amount
}
