package graph

import (
	"sort"

	"leqo/internal/annotate"
	"leqo/internal/diag"
	"leqo/internal/qasm"
)

// Payload is what a node carries: its fragment AST and annotation model. The
// graph stores payloads in a side table keyed by NodeID so the adjacency
// structure itself owns no AST and has no reference cycles.
type Payload struct {
	Name     string
	Fragment *qasm.Fragment
	Model    *annotate.Model
}

// Graph is the dataflow multigraph over fragment nodes. Nodes and data edges
// are created once per compile request and are immutable afterwards, with two
// exceptions: the scheduler appends ancilla edges, and the allocator rewrites
// fragment declarations in place. One compile request owns one Graph
// exclusively; nothing here is safe for concurrent use.
type Graph struct {
	names    []string // arena: names[id-1]
	byName   map[string]NodeID
	payloads map[NodeID]*Payload

	io      []IOConnection
	ancilla []AncillaConnection
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		byName:   make(map[string]NodeID),
		payloads: make(map[NodeID]*Payload),
	}
}

// AddNode allocates a node for the given frontend identifier.
func (g *Graph) AddNode(name string) (NodeID, *diag.Diagnostic) {
	if _, dup := g.byName[name]; dup {
		return NoNodeID, diag.Errorf(diag.GraphDuplicateNode, name, "node %q added twice", name)
	}
	g.names = append(g.names, name)
	id := NodeID(len(g.names))
	g.byName[name] = id
	g.payloads[id] = &Payload{Name: name}
	return id, nil
}

// NodeByName resolves a frontend identifier.
func (g *Graph) NodeByName(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Name returns the frontend identifier of a node.
func (g *Graph) Name(id NodeID) string {
	if !id.IsValid() || int(id) > len(g.names) {
		return ""
	}
	return g.names[id-1]
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.names) }

// Nodes returns all node ids in creation order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, len(g.names))
	for i := range g.names {
		out[i] = NodeID(i + 1)
	}
	return out
}

// SetPayload attaches the fragment and model of a node.
func (g *Graph) SetPayload(id NodeID, frag *qasm.Fragment, model *annotate.Model) {
	pl := g.payloads[id]
	pl.Fragment = frag
	pl.Model = model
}

// Fragment returns the node's AST fragment.
func (g *Graph) Fragment(id NodeID) *qasm.Fragment { return g.payloads[id].Fragment }

// Model returns the node's annotation model.
func (g *Graph) Model(id NodeID) *annotate.Model { return g.payloads[id].Model }

// Connect appends a data edge. Node ids must be valid; one input index may
// only be fed once.
func (g *Graph) Connect(conn IOConnection) *diag.Diagnostic {
	if !g.has(conn.Source.Node) {
		return diag.Internalf(diag.GraphUnknownNode, "data edge source node %d does not exist", conn.Source.Node)
	}
	if !g.has(conn.Target.Node) {
		return diag.Internalf(diag.GraphUnknownNode, "data edge target node %d does not exist", conn.Target.Node)
	}
	for _, other := range g.io {
		if other.Target == conn.Target {
			return diag.Errorf(diag.GraphInputContested, g.Name(conn.Target.Node),
				"input %d is fed by more than one connection", conn.Target.Index).
				WithNote(g.Name(conn.Source.Node), "second source here").
				WithNote(g.Name(other.Source.Node), "first source here")
		}
	}
	g.io = append(g.io, conn)
	return nil
}

// AddAncilla appends a scheduler-produced ancilla edge.
func (g *Graph) AddAncilla(conn AncillaConnection) {
	g.ancilla = append(g.ancilla, conn)
}

// IOConnections returns the data edges in insertion order.
// The returned slice aliases graph storage; treat it as read-only.
func (g *Graph) IOConnections() []IOConnection { return g.io }

// AncillaConnections returns the ancilla edges in insertion order.
// The returned slice aliases graph storage; treat it as read-only.
func (g *Graph) AncillaConnections() []AncillaConnection { return g.ancilla }

// Successors returns the distinct data-edge successors of a node, ascending.
func (g *Graph) Successors(id NodeID) []NodeID {
	return g.neighbors(id, true)
}

// Predecessors returns the distinct data-edge predecessors of a node,
// ascending.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	return g.neighbors(id, false)
}

func (g *Graph) neighbors(id NodeID, forward bool) []NodeID {
	seen := make(map[NodeID]struct{})
	var out []NodeID
	for _, conn := range g.io {
		var from, to NodeID
		if forward {
			from, to = conn.Source.Node, conn.Target.Node
		} else {
			from, to = conn.Target.Node, conn.Source.Node
		}
		if from != id {
			continue
		}
		if _, dup := seen[to]; dup {
			continue
		}
		seen[to] = struct{}{}
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Graph) has(id NodeID) bool {
	return id.IsValid() && int(id) <= len(g.names)
}
