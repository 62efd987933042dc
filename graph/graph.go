// Package graph implements the SearchGraph described in spec.md §3: a
// directed, weighted, mutable multi-sink graph whose vertices are node
// public keys plus pseudo-target sinks. It is backed by
// gonum.org/v1/gonum/graph/simple.WeightedDirectedGraph (the same
// graph/simple + graph/path combination the wider Lightning-routing example
// pack uses for Dijkstra-style shortest path queries), with string vertex
// names mapped onto gonum's int64 node ids.
package graph

import (
	"gonum.org/v1/gonum/graph"
	gpath "gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// SearchGraph is the mutable routing graph that the Path Engine searches and
// depletes in lock-step with capacity.State.
type SearchGraph struct {
	g     *simple.WeightedDirectedGraph
	ids   map[string]int64
	names map[int64]string
	next  int64
}

// New returns an empty SearchGraph.
func New() *SearchGraph {
	return &SearchGraph{
		g:     simple.NewWeightedDirectedGraph(0, 0),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// idFor returns the gonum node id for v, allocating and registering a new
// one (and adding the backing node) if v hasn't been seen before.
func (sg *SearchGraph) idFor(v Vertex) int64 {
	name := v.String()
	if id, ok := sg.ids[name]; ok {
		if sg.g.Node(id) == nil {
			sg.g.AddNode(simple.Node(id))
		}
		return id
	}

	id := sg.next
	sg.next++
	sg.ids[name] = id
	sg.names[id] = name
	sg.g.AddNode(simple.Node(id))

	return id
}

// HasVertex reports whether v currently exists in the graph.
func (sg *SearchGraph) HasVertex(v Vertex) bool {
	id, ok := sg.ids[v.String()]
	if !ok {
		return false
	}

	return sg.g.Node(id) != nil
}

// AddEdge inserts (or overwrites) a directed edge src->trg with the given
// weight, creating either endpoint if it doesn't exist yet.
func (sg *SearchGraph) AddEdge(src, trg Vertex, weight float64) {
	u := simple.Node(sg.idFor(src))
	v := simple.Node(sg.idFor(trg))

	sg.g.SetWeightedEdge(sg.g.NewWeightedEdge(u, v, weight))
}

// HasEdge reports whether a directed edge src->trg is currently present.
func (sg *SearchGraph) HasEdge(src, trg Vertex) bool {
	uid, ok := sg.ids[src.String()]
	if !ok {
		return false
	}
	vid, ok := sg.ids[trg.String()]
	if !ok {
		return false
	}

	return sg.g.HasEdgeFromTo(uid, vid)
}

// RemoveEdge removes a directed edge src->trg if present. The vertices
// themselves (and any other incident edges) are left intact.
func (sg *SearchGraph) RemoveEdge(src, trg Vertex) {
	uid, ok := sg.ids[src.String()]
	if !ok {
		return
	}
	vid, ok := sg.ids[trg.String()]
	if !ok {
		return
	}

	sg.g.RemoveEdge(uid, vid)
}

// RemoveVertex removes v and all of its incident edges from the graph. Used
// by the counterfactual sweep to exclude a router node before recomputing
// paths.
func (sg *SearchGraph) RemoveVertex(v Vertex) {
	id, ok := sg.ids[v.String()]
	if !ok {
		return
	}

	sg.g.RemoveNode(id)
}

// Successors returns the set of vertices directly reachable from v.
func (sg *SearchGraph) Successors(v Vertex) []Vertex {
	id, ok := sg.ids[v.String()]
	if !ok || sg.g.Node(id) == nil {
		return nil
	}

	it := sg.g.From(id)
	out := make([]Vertex, 0, it.Len())
	for it.Next() {
		out = append(out, ParseVertex(sg.names[it.Node().ID()]))
	}

	return out
}

// Predecessors returns the set of vertices with a direct edge into v.
func (sg *SearchGraph) Predecessors(v Vertex) []Vertex {
	id, ok := sg.ids[v.String()]
	if !ok || sg.g.Node(id) == nil {
		return nil
	}

	it := sg.g.To(id)
	out := make([]Vertex, 0, it.Len())
	for it.Next() {
		out = append(out, ParseVertex(sg.names[it.Node().ID()]))
	}

	return out
}

// Weight returns the weight of the directed edge src->trg, if present.
func (sg *SearchGraph) Weight(src, trg Vertex) (float64, bool) {
	uid, ok := sg.ids[src.String()]
	if !ok {
		return 0, false
	}
	vid, ok := sg.ids[trg.String()]
	if !ok {
		return 0, false
	}

	return sg.g.Weight(uid, vid)
}

// ShortestPath runs a standard Dijkstra shortest-path search from src to trg
// over the current edge weights, returning the path (inclusive of both
// endpoints) and its total weight. ok is false if either endpoint is absent
// from the graph or no path exists, mirroring NoPath in spec.md §7.
func (sg *SearchGraph) ShortestPath(src, trg Vertex) (path []Vertex, cost float64, ok bool) {
	if !sg.HasVertex(src) || !sg.HasVertex(trg) {
		return nil, 0, false
	}

	srcID := sg.ids[src.String()]
	trgID := sg.ids[trg.String()]

	shortest := gpath.DijkstraFrom(simple.Node(srcID), sg.g)
	nodes, weight := shortest.To(trgID)
	if nodes == nil {
		return nil, 0, false
	}

	path = make([]Vertex, len(nodes))
	for i, n := range nodes {
		path[i] = ParseVertex(sg.names[n.ID()])
	}

	return path, weight, true
}

// Clone returns a deep copy of sg: a distinct underlying graph with the same
// vertices and edges, safe for a counterfactual sweep worker to mutate
// without affecting the original. Vertex name<->id assignments are
// preserved so the clone and the original remain comparable.
func (sg *SearchGraph) Clone() *SearchGraph {
	clone := &SearchGraph{
		g:     simple.NewWeightedDirectedGraph(0, 0),
		ids:   make(map[string]int64, len(sg.ids)),
		names: make(map[int64]string, len(sg.names)),
		next:  sg.next,
	}
	for name, id := range sg.ids {
		clone.ids[name] = id
	}
	for id, name := range sg.names {
		clone.names[id] = name
	}

	nodes := sg.g.Nodes()
	for nodes.Next() {
		clone.g.AddNode(simple.Node(nodes.Node().ID()))
	}

	edges := sg.g.Edges()
	for edges.Next() {
		e := edges.Edge().(graph.WeightedEdge)
		clone.g.SetWeightedEdge(clone.g.NewWeightedEdge(e.From(), e.To(), e.Weight()))
	}

	return clone
}

// NumNodes returns the number of vertices currently in the graph.
func (sg *SearchGraph) NumNodes() int {
	return sg.g.Nodes().Len()
}

// NumEdges returns the number of directed edges currently in the graph.
func (sg *SearchGraph) NumEdges() int {
	return sg.g.Edges().Len()
}
