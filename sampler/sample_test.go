package sampler

import (
	"math/rand"
	"testing"

	"github.com/ferencberes/lnroutesim/snapshot"
	"github.com/stretchr/testify/require"
)

func TestSampleDropsLoopsAndReindexes(t *testing.T) {
	t.Parallel()

	nodes := []snapshot.Node{{PubKey: "A", Degree: 1}}
	rng := rand.New(rand.NewSource(1))

	txs := Sample(nodes, 1000, 5, 0, nil, rng)
	require.Empty(t, txs, "single-node graph can only produce loop rows")
}

func TestSampleZeroCountIsEmpty(t *testing.T) {
	t.Parallel()

	nodes := []snapshot.Node{{PubKey: "A", Degree: 1}, {PubKey: "B", Degree: 1}}
	rng := rand.New(rand.NewSource(1))

	txs := Sample(nodes, 1000, 0, 0.5, []string{"A"}, rng)
	require.Empty(t, txs)
}

func TestSampleEpsilonZeroYieldsLoopFreeDenseIDs(t *testing.T) {
	t.Parallel()

	nodes := []snapshot.Node{
		{PubKey: "A", Degree: 5}, {PubKey: "B", Degree: 1}, {PubKey: "C", Degree: 1},
	}
	rng := rand.New(rand.NewSource(42))

	txs := Sample(nodes, 1000, 200, 0, []string{"A"}, rng)
	require.NotEmpty(t, txs)
	for _, tx := range txs {
		require.NotEqual(t, tx.Source, tx.Target)
	}

	ids := make(map[int]bool)
	for i, tx := range txs {
		require.Equal(t, i, tx.ID)
		ids[tx.ID] = true
	}
	require.Len(t, ids, len(txs))
}

func TestSampleDegenerateMerchantsFallBackToUniform(t *testing.T) {
	t.Parallel()

	nodes := []snapshot.Node{{PubKey: "A", Degree: 1}, {PubKey: "B", Degree: 1}}
	rng := rand.New(rand.NewSource(7))

	// "ghost" isn't in the node set: epsilon > 0 must not panic or divide
	// by zero, it should just fall back to uniform target sampling.
	txs := Sample(nodes, 1000, 10, 0.8, []string{"ghost"}, rng)
	require.NotNil(t, txs)
}
