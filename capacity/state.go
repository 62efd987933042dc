// Package capacity implements the Capacity State of spec.md §4.3: the
// per-directed-edge live capacity that the Path Engine depletes and
// replenishes as it routes transactions, plus the undirected-channel split
// at initialization. Grounded on the original implementation's
// graph_preprocessing.py (init_capacities / populate_capacities).
package capacity

import (
	"math/rand"
	"sort"

	"github.com/ferencberes/lnroutesim/snapshot"
)

// EdgeKey identifies one directed edge's capacity state.
type EdgeKey struct {
	Src, Trg string
}

// ChannelState is the mutable per-directed-edge record of spec.md §3.
// Invariant: 0 <= LiveCap <= TotalCap.
type ChannelState struct {
	LiveCap      int64
	Fee          float64
	IsTargetSide bool
	TotalCap     int64
}

// State is the run-scoped capacity map handed explicitly to the Path
// Engine; it is never a package-level singleton (spec.md §9).
type State struct {
	edges  map[EdgeKey]*ChannelState
	events *EventLog
}

// NewState returns an empty capacity state with event logging enabled.
func NewState() *State {
	return &State{
		edges:  make(map[EdgeKey]*ChannelState),
		events: NewEventLog(),
	}
}

// Get returns the ChannelState for (src, trg), if any.
func (s *State) Get(src, trg string) (*ChannelState, bool) {
	cs, ok := s.edges[EdgeKey{src, trg}]
	return cs, ok
}

// Set installs or overwrites the ChannelState for key. Used by InitCapacities
// and by callers (tests, cap_change_nodes scaling) that build a State
// directly rather than through the undirected-channel split.
func (s *State) Set(key EdgeKey, cs *ChannelState) {
	s.edges[key] = cs
}

// All returns every (EdgeKey, *ChannelState) pair currently tracked. Used by
// the exporter and by cap_change_nodes capacity scaling, which must visit
// every directed edge touching a named node.
func (s *State) All() map[EdgeKey]*ChannelState {
	return s.edges
}

// Events returns the depletion event log accumulated over this state's
// lifetime (spec.md §4.9).
func (s *State) Events() *EventLog {
	return s.events
}

// Clone returns a deep copy of s's channel states, safe for a counterfactual
// sweep worker to mutate independently of the original (spec.md §4.6/§5).
// The clone starts with a fresh, empty event log; s's events are not copied.
func (s *State) Clone() *State {
	clone := &State{
		edges:  make(map[EdgeKey]*ChannelState, len(s.edges)),
		events: NewEventLog(),
	}
	for k, v := range s.edges {
		cp := *v
		clone.edges[k] = &cp
	}
	return clone
}

// InitCapacities builds the capacity state for a given aggregated edge set
// and transaction workload, per spec.md §4.3. For every physical channel
// (an undirected pair with both or one direction present), it canonicalizes
// the pair so it's visited once, and either splits one shared total
// capacity randomly across both directions or assigns the lone direction
// its full capacity. It returns the state and the subset of directed edges
// whose live_cap ended up >= amount (the rows the SearchGraph is built
// from).
func InitCapacities(edges []snapshot.DirectedEdge, targets map[string]bool,
	amount int64, rng *rand.Rand) (*State, []snapshot.DirectedEdge) {

	state := NewState()
	bySrcTrg := make(map[EdgeKey]snapshot.DirectedEdge, len(edges))

	for _, e := range edges {
		key := EdgeKey{e.Src, e.Trg}
		bySrcTrg[key] = e
		state.edges[key] = &ChannelState{
			Fee:          e.TotalFee,
			IsTargetSide: targets[e.Trg],
			TotalCap:     e.Capacity,
		}
	}

	type channelPair struct{ a, b string }
	seen := make(map[channelPair]bool)
	var channels []channelPair
	for _, e := range edges {
		a, b := e.Src, e.Trg
		if a > b {
			a, b = b, a
		}
		pair := channelPair{a, b}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		channels = append(channels, pair)
	}
	// Deterministic ordering so the random draws below are reproducible
	// for a given rng stream, independent of input map iteration order.
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].a != channels[j].a {
			return channels[i].a < channels[j].a
		}
		return channels[i].b < channels[j].b
	})

	var emitted []snapshot.DirectedEdge
	for _, pair := range channels {
		fwdKey := EdgeKey{pair.a, pair.b}
		revKey := EdgeKey{pair.b, pair.a}
		fwd, hasFwd := bySrcTrg[fwdKey]
		rev, hasRev := bySrcTrg[revKey]

		switch {
		case hasFwd && hasRev:
			cap := fwd.Capacity
			if rev.Capacity > cap {
				cap = rev.Capacity
			}
			r := rng.Float64()
			capFwd := int64(float64(cap) * r)
			capRev := cap - capFwd

			state.edges[fwdKey].LiveCap = capFwd
			state.edges[revKey].LiveCap = capRev

			if state.edges[fwdKey].LiveCap >= amount {
				emitted = append(emitted, snapshot.DirectedEdge{
					Src: pair.a, Trg: pair.b,
					Capacity: state.edges[fwdKey].LiveCap,
					TotalFee: fwd.TotalFee,
				})
			}
			if state.edges[revKey].LiveCap >= amount {
				emitted = append(emitted, snapshot.DirectedEdge{
					Src: pair.b, Trg: pair.a,
					Capacity: state.edges[revKey].LiveCap,
					TotalFee: rev.TotalFee,
				})
			}

		case hasFwd:
			state.edges[fwdKey].LiveCap = fwd.Capacity
			if fwd.Capacity >= amount {
				emitted = append(emitted, fwd)
			}

		case hasRev:
			state.edges[revKey].LiveCap = rev.Capacity
			if rev.Capacity >= amount {
				emitted = append(emitted, rev)
			}
		}
	}

	log.Debugf("capacity state initialized: %d directed edges, %d emitted "+
		"with live_cap >= amount", len(edges), len(emitted))

	return state, emitted
}
