// Package pathengine implements the Path Engine of spec.md §4.4: sequential
// min-fee routing of a transaction workload over a SearchGraph, with
// capacity depletion/replenishment applied in lock-step and an optional
// genetic length extension when a path comes up short. Grounded on the
// original implementation's lnsimulator/simulator/path_searching.py
// (PathSimulator.process_path / simulate_path).
package pathengine

import (
	"math/rand"

	"github.com/ferencberes/lnroutesim/capacity"
	"github.com/ferencberes/lnroutesim/fn"
	"github.com/ferencberes/lnroutesim/genetic"
	"github.com/ferencberes/lnroutesim/graph"
	"github.com/ferencberes/lnroutesim/simerrors"
	"github.com/ferencberes/lnroutesim/simtypes"
)

// Options configures one Run invocation, mirroring the public operation
// signature of spec.md §4.4.
type Options struct {
	// HashByRouter, when true, buckets each transaction under every
	// interior router on its path (feeds the counterfactual sweep).
	HashByRouter bool

	// RequiredLength, when set, triggers the Genetic Path Extender for
	// any path whose length falls strictly between 2 and this value.
	RequiredLength *int

	// Genetic configures the extender used when RequiredLength is set.
	Genetic genetic.Config
}

// Result bundles the Path Engine's four outputs, per spec.md §4.4.
type Result struct {
	Paths           []simtypes.PathResult
	PerRouterBucket map[string][]simtypes.Transaction
	RouterFees      []simtypes.RouterFee
	DepletionCounts map[string]int
}

// Run routes txs sequentially over g, mutating state (unless nil, which
// disables depletion tracking entirely per the with_depletion=false
// configuration surface) in lock-step with g. Transactions are processed
// strictly in input order: this ordering is a semantic contract, since
// capacity mutations from transaction i are observable to transaction i+1.
func Run(state *capacity.State, g *graph.SearchGraph, txs []simtypes.Transaction,
	rng *rand.Rand, opts Options) (*Result, error) {

	res := &Result{
		PerRouterBucket: make(map[string][]simtypes.Transaction),
		DepletionCounts: make(map[string]int),
	}

	for _, tx := range txs {
		pr, err := routeOne(state, g, tx, rng, opts, res)
		if err != nil {
			return nil, err
		}
		res.Paths = append(res.Paths, pr)
	}

	if state != nil {
		res.DepletionCounts = state.Events().DepletionCounts()
	}

	return res, nil
}

func routeOne(state *capacity.State, g *graph.SearchGraph, tx simtypes.Transaction,
	rng *rand.Rand, opts Options, res *Result) (simtypes.PathResult, error) {

	fail := simtypes.PathResult{TransactionID: tx.ID, Cost: fn.None[float64]()}

	if state != nil {
		state.Events().Advance()
	}

	S := graph.Real(tx.Source)
	T := graph.PseudoTarget(tx.Target)

	if !g.HasVertex(S) || !g.HasVertex(T) {
		log.Debugf("tx %d: %s or %s absent from graph, no path", tx.ID, S, T)
		return fail, nil
	}

	path, cost, ok := g.ShortestPath(S, T)
	if !ok {
		log.Debugf("tx %d: no path %s->%s", tx.ID, tx.Source, tx.Target)
		return fail, nil
	}

	if opts.RequiredLength != nil {
		required := *opts.RequiredLength
		length := len(path) - 1
		if length > 2 && length < required {
			extended, rounds, err := genetic.Extend(g, vertexStrings(path), tx.Target,
				required, rng, opts.Genetic)
			if err != nil {
				return fail, err
			}
			if rounds != -1 && len(extended) > 0 {
				newPath := make([]graph.Vertex, len(extended))
				for i, s := range extended {
					newPath[i] = graph.ParseVertex(s)
				}
				path = newPath
				cost = pathCost(g, path)
			}
		}
	}

	// path[len(path)-2] is always the stripped target itself: the only way
	// into the pseudo-target sink is its own (trg, trg_trg) edge (see
	// graph.BuildSearchGraph), so the target is expected there as the
	// path's last real hop. The loop guard only needs to reject the target
	// showing up any *earlier*, which would mean the path revisited it.
	for _, v := range path[1 : len(path)-2] {
		if v.NodeID() == tx.Target {
			return fail, simerrors.LoopDetected(tx.Target, vertexStrings(path))
		}
	}

	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		isLast := i == len(path)-2

		if !isLast {
			fee, _ := g.Weight(u, v)
			res.RouterFees = append(res.RouterFees, simtypes.RouterFee{
				TransactionID: tx.ID,
				Node:          v.NodeID(),
				Fee:           fee,
			})
			if opts.HashByRouter {
				node := v.NodeID()
				res.PerRouterBucket[node] = append(res.PerRouterBucket[node], tx)
			}
		} else {
			// The final hop is the target's own zero-fee sink edge
			// (trg, trg_trg): not a channel, so it carries no capacity
			// state to update.
			continue
		}

		if state != nil {
			if _, err := state.ForwardUpdate(g, u.NodeID(), v.NodeID(), tx.Amount); err != nil {
				return fail, err
			}
			state.BackwardUpdate(g, v.NodeID(), u.NodeID(), tx.Amount)
		}
	}

	return simtypes.PathResult{
		TransactionID: tx.ID,
		Cost:          fn.Some(cost),
		Length:        len(path) - 1,
		Path:          vertexStrings(path),
	}, nil
}

func vertexStrings(path []graph.Vertex) []string {
	out := make([]string, len(path))
	for i, v := range path {
		out[i] = v.String()
	}
	return out
}

func pathCost(g *graph.SearchGraph, path []graph.Vertex) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		w, _ := g.Weight(path[i], path[i+1])
		total += w
	}
	return total
}
