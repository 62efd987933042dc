package feeopt

import (
	"testing"

	"github.com/ferencberes/lnroutesim/fn"
	"github.com/ferencberes/lnroutesim/simtypes"
	"github.com/ferencberes/lnroutesim/sweep"
	"github.com/stretchr/testify/require"
)

func TestOptimizeMatchesTriangleCounterfactualScenario(t *testing.T) {
	t.Parallel()

	originalPaths := []simtypes.PathResult{
		{TransactionID: 0, Cost: fn.Some(3.0), Length: 2, Path: []string{"A", "B", "C_trg"}},
	}
	routerFees := []simtypes.RouterFee{
		{TransactionID: 0, Node: "B", Fee: 1},
	}
	alternatives := []sweep.AlternativePath{
		{Router: "B", PathResult: simtypes.PathResult{
			TransactionID: 0, Cost: fn.Some(10.0), Length: 1, Path: []string{"A", "C_trg"},
		}},
	}

	results := Optimize(originalPaths, routerFees, alternatives, 0.0)
	require.Len(t, results, 1)

	r := results[0]
	require.Equal(t, "B", r.Node)
	require.InDelta(t, 1.0, r.TotalIncome, 1e-9)
	require.Equal(t, 1, r.TotalTraffic)
	require.InDelta(t, 0.0, r.FailedTrafficRatio, 1e-9)
	require.InDelta(t, 7.0, r.OptDelta, 1e-9)
	require.InDelta(t, 7.0, r.IncomeDiff, 1e-9)
}

func TestOptimizeCountsFailedCounterfactualTraffic(t *testing.T) {
	t.Parallel()

	originalPaths := []simtypes.PathResult{
		{TransactionID: 0, Cost: fn.Some(3.0), Length: 2, Path: []string{"A", "B", "C_trg"}},
		{TransactionID: 1, Cost: fn.Some(3.0), Length: 2, Path: []string{"A", "B", "C_trg"}},
	}
	routerFees := []simtypes.RouterFee{
		{TransactionID: 0, Node: "B", Fee: 1},
		{TransactionID: 1, Node: "B", Fee: 1},
	}
	alternatives := []sweep.AlternativePath{
		{Router: "B", PathResult: simtypes.PathResult{TransactionID: 0, Cost: fn.Some(10.0), Length: 1}},
		{Router: "B", PathResult: simtypes.PathResult{TransactionID: 1, Cost: fn.None[float64]()}},
	}

	results := Optimize(originalPaths, routerFees, alternatives, 0.0)
	require.Len(t, results, 1)
	require.Equal(t, 2, results[0].TotalTraffic)
	require.InDelta(t, 0.5, results[0].FailedTrafficRatio, 1e-9)
}
