package export

import (
	"bytes"
	"testing"

	"github.com/ferencberes/lnroutesim/fn"
	"github.com/ferencberes/lnroutesim/simtypes"
	"github.com/stretchr/testify/require"
)

func TestWriteLengthHistogramSkipsFailedPaths(t *testing.T) {
	t.Parallel()

	paths := []simtypes.PathResult{
		{TransactionID: 0, Cost: fn.Some(3.0), Length: 2},
		{TransactionID: 1, Cost: fn.Some(3.0), Length: 2},
		{TransactionID: 2, Cost: fn.None[float64]()},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLengthHistogram(&buf, paths))
	require.Equal(t, "length,count\n2,2\n", buf.String())
}

func TestWriteRouterIncomeSortsByFeeDescending(t *testing.T) {
	t.Parallel()

	fees := []simtypes.RouterFee{
		{TransactionID: 0, Node: "A", Fee: 1},
		{TransactionID: 1, Node: "B", Fee: 5},
		{TransactionID: 2, Node: "A", Fee: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRouterIncome(&buf, fees))
	require.Equal(t, "node,fee,num_trans\nB,5,1\nA,2,2\n", buf.String())
}
