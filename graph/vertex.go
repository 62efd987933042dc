package graph

import "strings"

// pseudoSuffix is the reserved suffix that marks a vertex as a pseudo-target
// sink rather than a real node. No real pub_key may end in it (spec.md §6).
const pseudoSuffix = "_trg"

// Vertex is the tagged sum type called for in spec.md §9: a SearchGraph
// vertex is either a Real node (a Lightning node's public key) or a
// PseudoTarget, the zero-out-degree sink introduced for every node that is
// any transaction's target. Modeling this as a value type rather than raw
// string concatenation keeps the "_trg" suffix logic in one place.
type Vertex struct {
	id     string
	pseudo bool
}

// Real constructs the vertex for a real Lightning node.
func Real(id string) Vertex {
	return Vertex{id: id}
}

// PseudoTarget constructs the pseudo-sink vertex for the node with the given
// id. It has no outgoing edges in the SearchGraph.
func PseudoTarget(id string) Vertex {
	return Vertex{id: id, pseudo: true}
}

// ParseVertex recovers a Vertex from its wire string form, used when reading
// back a path that was serialized as []string.
func ParseVertex(s string) Vertex {
	if strings.HasSuffix(s, pseudoSuffix) {
		return PseudoTarget(strings.TrimSuffix(s, pseudoSuffix))
	}
	return Real(s)
}

// NodeID returns the underlying node id, stripped of any pseudo-target
// suffix. This is the form that should be compared against a transaction's
// source/target.
func (v Vertex) NodeID() string {
	return v.id
}

// IsPseudo reports whether v is a pseudo-target sink.
func (v Vertex) IsPseudo() bool {
	return v.pseudo
}

// String returns the wire form of the vertex: the bare node id for a Real
// vertex, or id+"_trg" for a PseudoTarget.
func (v Vertex) String() string {
	if v.pseudo {
		return v.id + pseudoSuffix
	}
	return v.id
}
