package alloc

import (
	"leqo/internal/annotate"
	"leqo/internal/graph"
)

// SingleQubit identifies one physical qubit slot: a node plus one of its
// fragment-local qubit ids. Equivalence classes are keyed by this pair.
type SingleQubit struct {
	Node  graph.NodeID
	Qubit annotate.QubitID
}

func (s SingleQubit) less(o SingleQubit) bool {
	if s.Node != o.Node {
		return s.Node < o.Node
	}
	return s.Qubit < o.Qubit
}

// unionFind is a plain disjoint-set forest over SingleQubit keys with path
// compression. Class numbering is not done here; the allocator derives it
// from key order so identical graphs always yield identical layouts.
type unionFind struct {
	parent map[SingleQubit]SingleQubit
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[SingleQubit]SingleQubit)}
}

// makeSet registers a key as its own class. Idempotent.
func (u *unionFind) makeSet(key SingleQubit) {
	if _, ok := u.parent[key]; !ok {
		u.parent[key] = key
	}
}

// has reports whether the key was registered.
func (u *unionFind) has(key SingleQubit) bool {
	_, ok := u.parent[key]
	return ok
}

// find returns the class representative, compressing the path.
func (u *unionFind) find(key SingleQubit) SingleQubit {
	root := key
	for {
		parent := u.parent[root]
		if parent == root {
			break
		}
		root = parent
	}
	for key != root {
		next := u.parent[key]
		u.parent[key] = root
		key = next
	}
	return root
}

// union merges the classes of a and b, keeping the smaller representative so
// find results stay order-stable.
func (u *unionFind) union(a, b SingleQubit) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb.less(ra) {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
