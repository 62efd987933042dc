package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferencberes/lnroutesim/config"
	"github.com/ferencberes/lnroutesim/snapshot"
)

// triangleEdges builds the A-B-C triangle used throughout spec.md §8's
// worked scenarios: A-B and B-C cheap, A-C direct but pricier, so the
// min-fee path for an A->C payment is A->B->C until B's channel depletes.
func triangleEdges() []snapshot.RawEdge {
	mk := func(src, trg string, capacity int64, feeBaseMsat float64) snapshot.RawEdge {
		e := snapshot.DefaultPolicy
		e.Src, e.Trg, e.Capacity, e.LastUpdate = src, trg, capacity, 100
		e.FeeBaseMsat = feeBaseMsat
		e.FeeRateMilliMsat = 0
		return e
	}

	return []snapshot.RawEdge{
		mk("A", "B", 15, 1000),
		mk("B", "A", 15, 1000),
		mk("B", "C", 15, 2000),
		mk("C", "B", 15, 2000),
		mk("A", "C", 100, 10000),
		mk("C", "A", 100, 10000),
	}
}

func baseConfig() *config.Config {
	return &config.Config{
		Amount:           10,
		Count:            1,
		Epsilon:          0,
		Weight:           "total_fee",
		CapacityFraction: 1.0,
		MaxThreads:       2,
	}
}

func TestSimulateTriangleWithoutDepletionReturnsOnePathPerTransaction(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	sim := New(cfg, triangleEdges(), nil)

	report, err := sim.Simulate(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Paths, len(report.Transactions))
}

func TestSimulateWithDepletionZeroCountYieldsNoPaths(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Count = 0
	cfg.WithDepletion = true
	sim := New(cfg, triangleEdges(), nil)

	report, err := sim.Simulate(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Paths)
	require.NotNil(t, report.DepletionCounts)
}

func TestSimulateWithNodeRemovalsProducesOptimalFeeTable(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.WithNodeRemovals = true
	sim := New(cfg, triangleEdges(), nil)

	report, err := sim.Simulate(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Paths, len(report.Transactions))
	require.NotNil(t, report.OptimalFees)
}

func TestSimulateZeroCountProducesEmptyOutputs(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Count = 0
	sim := New(cfg, triangleEdges(), nil)

	report, err := sim.Simulate(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Transactions)
	require.Empty(t, report.Paths)
}

func TestScaleCapacitiesDropsEdgesBelowAmountAfterScaling(t *testing.T) {
	t.Parallel()

	edges := []snapshot.DirectedEdge{
		{Src: "A", Trg: "B", Capacity: 20, TotalFee: 1},
		{Src: "X", Trg: "Y", Capacity: 20, TotalFee: 1},
	}

	out := scaleCapacities(edges, []string{"A"}, 0.4, 10)
	require.Len(t, out, 1)
	require.Equal(t, "X", out[0].Src)
}

func TestDeriveRandIsDeterministicPerLabel(t *testing.T) {
	t.Parallel()

	a := deriveRand(42, "sample")
	b := deriveRand(42, "sample")
	c := deriveRand(42, "pathengine")

	require.Equal(t, a.Int63(), b.Int63())

	a2 := deriveRand(42, "sample")
	c2 := deriveRand(42, "pathengine")
	require.NotEqual(t, a2.Int63(), c2.Int63())
	_ = c
}
