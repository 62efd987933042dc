// Package sweep implements the Counterfactual Sweep of spec.md §4.6: for
// every router that appeared on an original path, it recomputes routing
// over a graph with that router excluded, using a worker pool so
// independent per-router recomputations run concurrently. Grounded on the
// original implementation's lnsimulator/simulator/simulator.py
// (TransactionSimulator.simulate_alternative_paths), restructured around
// golang.org/x/sync/errgroup the way the teacher repository's background
// workers use it.
package sweep

import (
	"context"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ferencberes/lnroutesim/capacity"
	"github.com/ferencberes/lnroutesim/graph"
	"github.com/ferencberes/lnroutesim/pathengine"
	"github.com/ferencberes/lnroutesim/simerrors"
	"github.com/ferencberes/lnroutesim/simtypes"
)

// AlternativePath tags one counterfactual PathResult with the router that
// was excluded to produce it, per spec.md §4.6 step 3.
type AlternativePath struct {
	Router     string
	PathResult simtypes.PathResult
}

// Run dispatches one worker per router key in buckets, each recomputing
// paths over a deep copy of g and state with that router (and its
// pseudo-target) removed, for the subset of transactions that originally
// traversed it. maxThreads bounds concurrency; 0 or 1 degrades to a
// sequential loop, per spec.md §5. rngFor must return a distinct,
// deterministic *rand.Rand per router so the sweep stays reproducible
// under a fixed root seed (spec.md §9a).
//
// A worker failure is wrapped in simerrors.Worker and cancels the sibling
// workers best-effort via the shared context.
func Run(ctx context.Context, g *graph.SearchGraph, state *capacity.State,
	buckets map[string][]simtypes.Transaction, maxThreads int,
	rngFor func(router string) *rand.Rand, opts pathengine.Options) ([]AlternativePath, error) {

	routers := make([]string, 0, len(buckets))
	for r := range buckets {
		routers = append(routers, r)
	}
	sort.Strings(routers)

	results := make([][]AlternativePath, len(routers))

	eg, egCtx := errgroup.WithContext(ctx)
	if maxThreads < 1 {
		maxThreads = 1
	}
	eg.SetLimit(maxThreads)

	for i, router := range routers {
		i, router := i, router

		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}

			bucket := buckets[router]

			h := g.Clone()
			h.RemoveVertex(graph.Real(router))
			h.RemoveVertex(graph.PseudoTarget(router))

			var stateClone *capacity.State
			if state != nil {
				stateClone = state.Clone()
			}

			localOpts := opts
			localOpts.HashByRouter = false

			res, err := pathengine.Run(stateClone, h, bucket, rngFor(router), localOpts)
			if err != nil {
				return simerrors.Worker(router, err)
			}

			tagged := make([]AlternativePath, len(res.Paths))
			for j, pr := range res.Paths {
				tagged[j] = AlternativePath{Router: router, PathResult: pr}
			}
			results[i] = tagged

			log.Debugf("sweep: router %s excluded, %d transactions recomputed",
				router, len(bucket))

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []AlternativePath
	for _, r := range results {
		out = append(out, r...)
	}

	return out, nil
}
