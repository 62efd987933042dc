package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreprocessFiltersAndAggregates(t *testing.T) {
	t.Parallel()

	tsBound := int64(1000)

	tests := []struct {
		name   string
		edges  []RawEdge
		cfg    FilterConfig
		expect []DirectedEdge
	}{
		{
			name: "drops rows at or after the timestamp bound",
			edges: []RawEdge{
				{Src: "A", Trg: "B", Capacity: 100, LastUpdate: 500,
					FeeBaseMsat: 1000, FeeRateMilliMsat: 0},
				{Src: "A", Trg: "C", Capacity: 100, LastUpdate: 1500,
					FeeBaseMsat: 1000, FeeRateMilliMsat: 0},
			},
			cfg: FilterConfig{Amount: 10, TsUpperBound: &tsBound},
			expect: []DirectedEdge{
				{Src: "A", Trg: "B", Capacity: 100, TotalFee: 1.0, BaseFee: 1.0},
			},
		},
		{
			name: "drops low capacity when requested",
			edges: []RawEdge{
				{Src: "A", Trg: "B", Capacity: 5, LastUpdate: 1,
					FeeBaseMsat: 1000},
				{Src: "A", Trg: "C", Capacity: 100, LastUpdate: 1,
					FeeBaseMsat: 1000},
			},
			cfg: FilterConfig{Amount: 10, DropLowCap: true},
			expect: []DirectedEdge{
				{Src: "A", Trg: "C", Capacity: 100, TotalFee: 1.0, BaseFee: 1.0},
			},
		},
		{
			name: "drops disabled rows when requested",
			edges: []RawEdge{
				{Src: "A", Trg: "B", Capacity: 100, LastUpdate: 1,
					Disabled: true, FeeBaseMsat: 1000},
				{Src: "A", Trg: "C", Capacity: 100, LastUpdate: 1,
					Disabled: false, FeeBaseMsat: 1000},
			},
			cfg: FilterConfig{Amount: 10, DropDisabled: true},
			expect: []DirectedEdge{
				{Src: "A", Trg: "C", Capacity: 100, TotalFee: 1.0, BaseFee: 1.0},
			},
		},
		{
			name: "sums capacity and averages total_fee across multi-edges",
			edges: []RawEdge{
				{Src: "A", Trg: "B", Capacity: 100, LastUpdate: 1,
					FeeBaseMsat: 1000},
				{Src: "A", Trg: "B", Capacity: 50, LastUpdate: 1,
					FeeBaseMsat: 3000},
			},
			cfg: FilterConfig{Amount: 10},
			expect: []DirectedEdge{
				{Src: "A", Trg: "B", Capacity: 150, TotalFee: 2.0, BaseFee: 2.0},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Preprocess(tt.edges, tt.cfg)
			require.Len(t, got, len(tt.expect))
			for i := range tt.expect {
				require.Equal(t, tt.expect[i].Src, got[i].Src)
				require.Equal(t, tt.expect[i].Trg, got[i].Trg)
				require.Equal(t, tt.expect[i].Capacity, got[i].Capacity)
				require.InDelta(t, tt.expect[i].TotalFee, got[i].TotalFee, 1e-9)
			}
		})
	}
}

func TestDeriveNodes(t *testing.T) {
	t.Parallel()

	edges := []DirectedEdge{
		{Src: "A", Trg: "B"},
		{Src: "B", Trg: "C"},
		{Src: "A", Trg: "C"},
	}

	nodes := DeriveNodes(edges)
	degree := make(map[string]int)
	for _, n := range nodes {
		degree[n.PubKey] = n.Degree
	}

	require.Equal(t, 2, degree["A"])
	require.Equal(t, 2, degree["B"])
	require.Equal(t, 2, degree["C"])
}
