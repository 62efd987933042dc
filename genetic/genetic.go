// Package genetic implements the Genetic Path Extender of spec.md §4.5: it
// grows a too-short min-fee path to a required hop count by repeatedly
// inserting common-neighbor nodes, then evolves a population of candidates
// via a shuffle-pair crossover, while preserving path validity against the
// SearchGraph at every step. Grounded on the original implementation's
// lnsimulator/simulator/path_searching.py (extend_path / crossover /
// generate_population).
package genetic

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/ferencberes/lnroutesim/graph"
	"github.com/ferencberes/lnroutesim/simerrors"
)

// Config bundles the Genetic Path Extender's tunables. Zero values are
// replaced with spec.md §4.5's defaults by withDefaults.
type Config struct {
	// Size is the number of candidates grown at population init. After each
	// round the population is that round's offspring plus an equally sized
	// sample of the previous population, so it is not held at Size.
	Size int

	// BestRatio selects floor(Size*BestRatio) parents each round (at least
	// 2, and never more than the current population).
	BestRatio float64

	// Iterations caps the number of evolution rounds (default 5).
	Iterations int

	// MaxInsertRetries bounds the retries per insertion attempt during
	// population initialization before a candidate is abandoned.
	MaxInsertRetries int

	// RouterWeights optionally biases which common neighbor is chosen
	// during insertion; nil means uniform selection. Crossover always
	// draws its replacement node uniformly. Per
	// spec.md §9's open question, absence of a node in this map is
	// treated as weight 1 (uniform), not as exclusion.
	RouterWeights map[string]float64
}

func withDefaults(cfg Config) Config {
	if cfg.Size <= 0 {
		cfg.Size = 20
	}
	if cfg.BestRatio <= 0 {
		cfg.BestRatio = 0.5
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 5
	}
	if cfg.MaxInsertRetries <= 0 {
		cfg.MaxInsertRetries = 10
	}
	return cfg
}

// Extend attempts to grow seed (a wire-form vertex path ending in a
// pseudo-target) to requiredLength hops. It returns the best path found
// (every initialized candidate, and every crossover child, has exactly
// requiredLength hops when seed is shorter than that) and the number of
// evolution rounds executed, or rounds=-1 if not even one
// valid candidate could be initialized, in which case the caller should
// keep the original seed path per spec.md §4.5.
func Extend(g *graph.SearchGraph, seed []string, target string,
	requiredLength int, rng *rand.Rand, cfg Config) ([]string, int, error) {

	cfg = withDefaults(cfg)

	population := make([][]string, 0, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		cand, ok := growCandidate(g, seed, target, requiredLength, rng, cfg)
		if !ok {
			continue
		}
		population = append(population, cand)
	}
	population = dedupe(population)

	if len(population) == 0 {
		log.Debugf("genetic population init failed entirely for seed %v "+
			"(required_length=%d)", seed, requiredLength)
		return append([]string{}, seed...), -1, nil
	}

	best := bestOf(population, g)
	bestCost := fitness(best, g)

	rounds := 0
	for round := 0; round < cfg.Iterations; round++ {
		sort.Slice(population, func(i, j int) bool {
			return fitness(population[i], g) < fitness(population[j], g)
		})

		numParents := int(float64(cfg.Size) * cfg.BestRatio)
		if numParents < 2 {
			numParents = 2
		}
		if numParents > len(population) {
			numParents = len(population)
		}
		parents := population[:numParents]

		var offspring [][]string
		for rep := 0; rep < 5; rep++ {
			shuffled := append([][]string{}, parents...)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			for i := 0; i+1 < len(shuffled); i += 2 {
				children, err := crossover(g, shuffled[i], shuffled[i+1], target, rng)
				if err != nil {
					return nil, rounds, err
				}
				offspring = append(offspring, children...)
			}
		}
		offspring = dedupe(offspring)
		rounds++

		if len(offspring) == 0 {
			break
		}

		roundBest := bestOf(offspring, g)
		improved := fitness(roundBest, g) < bestCost
		if improved {
			best = roundBest
			bestCost = fitness(roundBest, g)
		}

		sample := sampleFrom(population, len(offspring), rng)
		population = append(append([][]string{}, offspring...), sample...)

		if !improved {
			break
		}
	}

	return best, rounds, nil
}

// growCandidate produces one population member by repeated insertion,
// per spec.md §4.5's "Population init".
func growCandidate(g *graph.SearchGraph, seed []string, target string,
	requiredLength int, rng *rand.Rand, cfg Config) ([]string, bool) {

	cand := append([]string{}, seed...)

	for len(cand)-1 < requiredLength {
		inserted := false
		for attempt := 0; attempt < cfg.MaxInsertRetries; attempt++ {
			i := rng.Intn(len(cand) - 1)
			prev, next := cand[i], cand[i+1]

			exclude := nodeIDSet(cand)
			neighbors := candidateNeighbors(g, prev, next, exclude, target)
			if len(neighbors) == 0 {
				continue
			}

			choice := weightedPick(rng, neighbors, cfg.RouterWeights)

			grown := make([]string, 0, len(cand)+1)
			grown = append(grown, cand[:i+1]...)
			grown = append(grown, choice)
			grown = append(grown, cand[i+1:]...)
			cand = grown
			inserted = true
			break
		}
		if !inserted {
			return nil, false
		}
	}

	return cand, true
}

// candidateNeighbors computes succ(prev) ∩ pred(next), minus exclude and
// minus target, restricted to real (non-pseudo) nodes — the insertion
// candidate set of spec.md §4.5.
func candidateNeighbors(g *graph.SearchGraph, prev, next string,
	exclude map[string]bool, target string) []string {

	succ := realNodeIDs(g.Successors(graph.Real(prev)))
	pred := realNodeIDs(g.Predecessors(graph.ParseVertex(next)))

	var out []string
	for n := range succ {
		if !pred[n] || n == target || exclude[n] {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

// crossover produces zero or more offspring from the ordered pair (p1, p2):
// for every interior index i of p1, if the common-neighbor set of
// (p1[i-1], p1[i+1]) intersected with p2's interior nodes is non-empty, a
// child equal to p1 with position i replaced by a drawn member of that
// intersection is emitted, per spec.md §4.5's "Evolution".
func crossover(g *graph.SearchGraph, p1, p2 []string, target string,
	rng *rand.Rand) ([][]string, error) {

	p2Interior := make(map[string]bool)
	for _, s := range p2[1 : len(p2)-1] {
		p2Interior[graph.ParseVertex(s).NodeID()] = true
	}

	var children [][]string
	for i := 1; i < len(p1)-1; i++ {
		prev, next := p1[i-1], p1[i+1]
		exclude := nodeIDSet(p1)
		candidates := candidateNeighbors(g, prev, next, exclude, target)

		var opts []string
		for _, n := range candidates {
			if p2Interior[n] {
				opts = append(opts, n)
			}
		}
		if len(opts) == 0 {
			continue
		}

		choice := opts[rng.Intn(len(opts))]
		child := append([]string{}, p1...)
		child[i] = choice

		if err := validatePath(g, child, target); err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return children, nil
}

// validatePath checks that path has no duplicate vertices, that every
// consecutive pair is a present edge of g, and that the target does not
// appear before path[len(path)-2], its own hop into the pseudo-target sink
// (the same loop guard pathengine applies), per spec.md §4.5's crossover
// validation requirement.
func validatePath(g *graph.SearchGraph, path []string, target string) error {
	seen := make(map[string]bool, len(path))
	for i, s := range path {
		if i > 0 && i < len(path)-2 && graph.ParseVertex(s).NodeID() == target {
			return simerrors.LoopDetected(target, path)
		}
		if seen[s] {
			return simerrors.InvalidCrossover(path, fmt.Sprintf("duplicate vertex %s", s))
		}
		seen[s] = true
	}

	for i := 0; i+1 < len(path); i++ {
		u := graph.ParseVertex(path[i])
		v := graph.ParseVertex(path[i+1])
		if !g.HasEdge(u, v) {
			return simerrors.InvalidCrossover(path,
				fmt.Sprintf("no edge %s->%s", path[i], path[i+1]))
		}
	}

	return nil
}

// fitness sums edge weight over all but the last edge of path, per
// spec.md §4.5 ("the last edge is the zero-fee pseudo-edge").
func fitness(path []string, g *graph.SearchGraph) float64 {
	var total float64
	for i := 0; i < len(path)-2; i++ {
		u := graph.ParseVertex(path[i])
		v := graph.ParseVertex(path[i+1])
		w, _ := g.Weight(u, v)
		total += w
	}
	return total
}

func bestOf(population [][]string, g *graph.SearchGraph) []string {
	best := population[0]
	bestCost := fitness(best, g)
	for _, cand := range population[1:] {
		if c := fitness(cand, g); c < bestCost {
			best, bestCost = cand, c
		}
	}
	return best
}

func dedupe(population [][]string) [][]string {
	seen := make(map[string]bool, len(population))
	out := make([][]string, 0, len(population))
	for _, p := range population {
		key := strings.Join(p, "|")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func sampleFrom(population [][]string, n int, rng *rand.Rand) [][]string {
	if len(population) == 0 || n <= 0 {
		return nil
	}
	out := make([][]string, n)
	for i := range out {
		out[i] = population[rng.Intn(len(population))]
	}
	return out
}

func nodeIDSet(path []string) map[string]bool {
	set := make(map[string]bool, len(path))
	for _, s := range path {
		set[graph.ParseVertex(s).NodeID()] = true
	}
	return set
}

func realNodeIDs(vs []graph.Vertex) map[string]bool {
	out := make(map[string]bool, len(vs))
	for _, v := range vs {
		if !v.IsPseudo() {
			out[v.NodeID()] = true
		}
	}
	return out
}

// weightedPick draws one candidate, weighted by weights when non-nil
// (missing entries default to weight 1, per spec.md §9's open question on
// router_weights), else uniformly.
func weightedPick(rng *rand.Rand, candidates []string, weights map[string]float64) string {
	if len(weights) == 0 {
		return candidates[rng.Intn(len(candidates))]
	}

	total := 0.0
	ws := make([]float64, len(candidates))
	for i, c := range candidates {
		w, ok := weights[c]
		if !ok {
			w = 1.0
		}
		ws[i] = w
		total += w
	}
	if total <= 0 {
		return candidates[rng.Intn(len(candidates))]
	}

	r := rng.Float64() * total
	cum := 0.0
	for i, w := range ws {
		cum += w
		if r <= cum {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
