package pathengine

import (
	"math/rand"
	"testing"

	"github.com/ferencberes/lnroutesim/capacity"
	"github.com/ferencberes/lnroutesim/graph"
	"github.com/ferencberes/lnroutesim/simtypes"
	"github.com/stretchr/testify/require"
)

func triangleGraph() *graph.SearchGraph {
	g := graph.New()
	g.AddEdge(graph.Real("A"), graph.Real("B"), 1)
	g.AddEdge(graph.Real("B"), graph.Real("C"), 2)
	g.AddEdge(graph.Real("A"), graph.Real("C"), 10)
	g.AddEdge(graph.Real("C"), graph.PseudoTarget("C"), 0)
	return g
}

func newState(edges map[[2]string]capacity.ChannelState) *capacity.State {
	s := capacity.NewState()
	for key, cs := range edges {
		v := cs
		s.Set(capacity.EdgeKey{Src: key[0], Trg: key[1]}, &v)
	}
	return s
}

func TestTriangleMinFeePath(t *testing.T) {
	t.Parallel()

	g := triangleGraph()
	state := newState(map[[2]string]capacity.ChannelState{
		{"A", "B"}: {LiveCap: 100, TotalCap: 100, Fee: 1},
		{"B", "C"}: {LiveCap: 100, TotalCap: 100, Fee: 2, IsTargetSide: true},
		{"A", "C"}: {LiveCap: 100, TotalCap: 100, Fee: 10, IsTargetSide: true},
	})

	txs := []simtypes.Transaction{{ID: 0, Source: "A", Target: "C", Amount: 10}}
	rng := rand.New(rand.NewSource(1))

	res, err := Run(state, g, txs, rng, Options{})
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)

	pr := res.Paths[0]
	require.True(t, pr.Cost.IsSome())
	require.Equal(t, []string{"A", "B", "C", "C_trg"}, pr.Path)
	require.Equal(t, 3, pr.Length)
	require.InDelta(t, 3.0, pr.Cost.UnwrapOr(-1), 1e-9)
	require.Equal(t, []simtypes.RouterFee{
		{TransactionID: 0, Node: "B", Fee: 1},
		{TransactionID: 0, Node: "C", Fee: 2},
	}, res.RouterFees)
}

func TestDepletionFallsBackToDirectEdge(t *testing.T) {
	t.Parallel()

	g := triangleGraph()
	state := newState(map[[2]string]capacity.ChannelState{
		{"A", "B"}: {LiveCap: 15, TotalCap: 15, Fee: 1},
		{"B", "C"}: {LiveCap: 100, TotalCap: 100, Fee: 2, IsTargetSide: true},
		{"A", "C"}: {LiveCap: 100, TotalCap: 100, Fee: 10, IsTargetSide: true},
	})

	txs := []simtypes.Transaction{
		{ID: 0, Source: "A", Target: "C", Amount: 10},
		{ID: 1, Source: "A", Target: "C", Amount: 10},
	}
	rng := rand.New(rand.NewSource(1))

	res, err := Run(state, g, txs, rng, Options{})
	require.NoError(t, err)
	require.Len(t, res.Paths, 2)

	require.Equal(t, []string{"A", "B", "C", "C_trg"}, res.Paths[0].Path)
	require.Equal(t, []string{"A", "C", "C_trg"}, res.Paths[1].Path)
	require.InDelta(t, 10.0, res.Paths[1].Cost.UnwrapOr(-1), 1e-9)

	require.False(t, g.HasEdge(graph.Real("A"), graph.Real("B")))
}

func TestRefundRestoresReverseEdge(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddEdge(graph.Real("A"), graph.Real("B"), 1)
	g.AddEdge(graph.Real("B"), graph.Real("C"), 1)
	g.AddEdge(graph.Real("B"), graph.Real("A"), 1)
	g.AddEdge(graph.Real("C"), graph.PseudoTarget("C"), 0)
	g.AddEdge(graph.Real("A"), graph.PseudoTarget("A"), 0)

	state := newState(map[[2]string]capacity.ChannelState{
		{"A", "B"}: {LiveCap: 15, TotalCap: 15, Fee: 1},
		{"B", "A"}: {LiveCap: 15, TotalCap: 15, Fee: 1, IsTargetSide: true},
		{"B", "C"}: {LiveCap: 100, TotalCap: 100, Fee: 1, IsTargetSide: true},
	})

	txs := []simtypes.Transaction{
		{ID: 0, Source: "A", Target: "C", Amount: 10},
		{ID: 1, Source: "B", Target: "A", Amount: 10},
	}
	rng := rand.New(rand.NewSource(1))

	res, err := Run(state, g, txs, rng, Options{})
	require.NoError(t, err)
	require.Len(t, res.Paths, 2)

	ab, _ := state.Get("A", "B")
	ba, _ := state.Get("B", "A")
	require.EqualValues(t, 15, ab.LiveCap)
	require.EqualValues(t, 15, ba.LiveCap)
	require.True(t, g.HasEdge(graph.Real("A"), graph.Real("B")))
}

func TestLoopGuardStripsPseudoTargetFromInterior(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddEdge(graph.Real("A"), graph.Real("B"), 1)
	g.AddEdge(graph.Real("B"), graph.PseudoTarget("B"), 0)

	txs := []simtypes.Transaction{{ID: 0, Source: "A", Target: "B", Amount: 5}}
	rng := rand.New(rand.NewSource(1))

	res, err := Run(nil, g, txs, rng, Options{})
	require.NoError(t, err)

	pr := res.Paths[0]
	require.Equal(t, []string{"A", "B", "B_trg"}, pr.Path)

	// The target appears exactly once, as the mandatory final real hop
	// immediately before the pseudo-target sink - never any earlier.
	require.Equal(t, []string{"B"}, pr.Path[1:len(pr.Path)-1])
}

func TestUnknownEndpointYieldsNullCostNotError(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.AddEdge(graph.Real("A"), graph.PseudoTarget("B"), 0)

	txs := []simtypes.Transaction{{ID: 0, Source: "ghost", Target: "missing", Amount: 5}}
	rng := rand.New(rand.NewSource(1))

	res, err := Run(nil, g, txs, rng, Options{})
	require.NoError(t, err)
	require.True(t, res.Paths[0].Cost.IsNone())
}
