package genetic

import (
	"math/rand"
	"testing"

	"github.com/ferencberes/lnroutesim/graph"
	"github.com/stretchr/testify/require"
)

// buildDiamond creates A->X->D and a direct A->D, plus zero-fee edges from
// both A and X into D's pseudo-target, so the one-hop seed A->D_trg can be
// extended to length 2 by inserting X, the only real common neighbor of A
// and D_trg.
func buildDiamond() *graph.SearchGraph {
	g := graph.New()
	g.AddEdge(graph.Real("A"), graph.Real("X"), 1)
	g.AddEdge(graph.Real("X"), graph.Real("D"), 1)
	g.AddEdge(graph.Real("A"), graph.Real("D"), 5)
	g.AddEdge(graph.Real("A"), graph.PseudoTarget("D"), 0)
	g.AddEdge(graph.Real("X"), graph.PseudoTarget("D"), 0)
	return g
}

func TestExtendGrowsPathWhenCommonNeighborExists(t *testing.T) {
	t.Parallel()

	g := buildDiamond()
	rng := rand.New(rand.NewSource(1))

	seed := []string{"A", "D_trg"}
	best, rounds, err := Extend(g, seed, "D", 2, rng, Config{Size: 10, Iterations: 3})
	require.NoError(t, err)
	require.NotEqual(t, -1, rounds)
	require.GreaterOrEqual(t, len(best)-1, 2)
}

func TestExtendReturnsSeedOnInitFailure(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddEdge(graph.Real("A"), graph.PseudoTarget("B"), 0)
	rng := rand.New(rand.NewSource(1))

	seed := []string{"A", "B_trg"}
	best, rounds, err := Extend(g, seed, "B", 4, rng, Config{Size: 5})
	require.NoError(t, err)
	require.Equal(t, -1, rounds)
	require.Equal(t, seed, best)
}
