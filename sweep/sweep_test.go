package sweep

import (
	"context"
	"math/rand"
	"testing"

	"github.com/ferencberes/lnroutesim/graph"
	"github.com/ferencberes/lnroutesim/pathengine"
	"github.com/ferencberes/lnroutesim/simtypes"
	"github.com/stretchr/testify/require"
)

func TestRunExcludesRouterAndFallsBackToDirectEdge(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddEdge(graph.Real("A"), graph.Real("B"), 1)
	g.AddEdge(graph.Real("B"), graph.Real("C"), 2)
	g.AddEdge(graph.Real("A"), graph.Real("C"), 10)
	g.AddEdge(graph.Real("C"), graph.PseudoTarget("C"), 0)

	tx := simtypes.Transaction{ID: 0, Source: "A", Target: "C", Amount: 10}
	buckets := map[string][]simtypes.Transaction{"B": {tx}}

	out, err := Run(context.Background(), g, nil, buckets, 2,
		func(string) *rand.Rand { return rand.New(rand.NewSource(1)) },
		pathengine.Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "B", out[0].Router)
	require.Equal(t, []string{"A", "C", "C_trg"}, out[0].PathResult.Path)
	require.InDelta(t, 10.0, out[0].PathResult.Cost.UnwrapOr(-1), 1e-9)
}
