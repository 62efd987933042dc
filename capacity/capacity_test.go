package capacity

import (
	"math/rand"
	"testing"

	"github.com/ferencberes/lnroutesim/snapshot"
	"github.com/stretchr/testify/require"
)

func TestInitCapacitiesSplitsSharedCapacityAcrossBothDirections(t *testing.T) {
	t.Parallel()

	edges := []snapshot.DirectedEdge{
		{Src: "A", Trg: "B", Capacity: 100, TotalFee: 1},
		{Src: "B", Trg: "A", Capacity: 100, TotalFee: 1},
	}
	targets := map[string]bool{"B": true, "A": true}

	state, emitted := InitCapacities(edges, targets, 10, rand.New(rand.NewSource(1)))

	fwd, ok := state.Get("A", "B")
	require.True(t, ok)
	rev, ok := state.Get("B", "A")
	require.True(t, ok)
	require.Equal(t, int64(100), fwd.LiveCap+rev.LiveCap)

	for _, e := range emitted {
		require.GreaterOrEqual(t, e.Capacity, int64(10))
	}
}

func TestInitCapacitiesSingleDirectionGetsFullCapacity(t *testing.T) {
	t.Parallel()

	edges := []snapshot.DirectedEdge{
		{Src: "A", Trg: "B", Capacity: 50, TotalFee: 2},
	}
	targets := map[string]bool{"B": true}

	state, emitted := InitCapacities(edges, targets, 10, rand.New(rand.NewSource(1)))

	cs, ok := state.Get("A", "B")
	require.True(t, ok)
	require.Equal(t, int64(50), cs.LiveCap)
	require.Len(t, emitted, 1)
}

func TestEventLogTracksDepletedFraction(t *testing.T) {
	t.Parallel()

	l := NewEventLog()
	key := EdgeKey{Src: "A", Trg: "B"}

	l.Advance() // tick 1
	l.Record(key, EventDepleted)
	l.Advance() // tick 2
	l.Advance() // tick 3
	l.Record(key, EventAvailable)
	l.Advance() // tick 4

	require.Equal(t, 0.5, l.DepletedFraction(key))
	require.Equal(t, map[string]int{"B": 1}, l.DepletionCounts())
}

func TestEventLogIgnoresRepeatedSameTypeTransition(t *testing.T) {
	t.Parallel()

	l := NewEventLog()
	key := EdgeKey{Src: "A", Trg: "B"}

	l.Advance()
	l.Record(key, EventDepleted)
	l.Advance()
	l.Record(key, EventDepleted)

	require.Equal(t, map[string]int{"B": 1}, l.DepletionCounts())
}
