package snapshot

// Node is one row of the derived node table (pub_key, degree) spec.md §4.2
// samples from. Grounded on init_node_params in the original
// graph_preprocessing.py, which builds this table straight from the
// directed edge set rather than ingesting it separately.
type Node struct {
	PubKey string
	Degree int
}

// DeriveNodes computes the (pub_key, degree) table from an aggregated edge
// set: degree is in-degree plus out-degree, counting both directions of a
// channel and any parallel edge separately, matching nx.DiGraph.degree() in
// the original implementation rather than a distinct-neighbor count.
func DeriveNodes(edges []DirectedEdge) []Node {
	degree := make(map[string]int)

	order := make([]string, 0)
	seen := make(map[string]struct{})
	touch := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			order = append(order, id)
		}
	}

	for _, e := range edges {
		degree[e.Src]++
		degree[e.Trg]++
		touch(e.Src)
		touch(e.Trg)
	}

	nodes := make([]Node, 0, len(order))
	for _, id := range order {
		nodes = append(nodes, Node{PubKey: id, Degree: degree[id]})
	}

	return nodes
}
