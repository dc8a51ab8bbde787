package graph_test

import (
	"slices"
	"testing"

	"leqo/internal/diag"
	"leqo/internal/graph"
)

func addNodes(t *testing.T, g *graph.Graph, names ...string) []graph.NodeID {
	t.Helper()
	ids := make([]graph.NodeID, len(names))
	for i, name := range names {
		id, d := g.AddNode(name)
		if d != nil {
			t.Fatalf("AddNode(%q): %v", name, d)
		}
		ids[i] = id
	}
	return ids
}

func connect(t *testing.T, g *graph.Graph, src, dst graph.NodeID) {
	t.Helper()
	d := g.Connect(graph.IOConnection{
		Source: graph.Endpoint{Node: src, Index: 0},
		Target: graph.Endpoint{Node: dst, Index: 0},
	})
	if d != nil {
		t.Fatalf("Connect: %v", d)
	}
}

func TestGraph_DuplicateNode(t *testing.T) {
	g := graph.New()
	addNodes(t, g, "a")
	if _, d := g.AddNode("a"); d == nil || d.Code != diag.GraphDuplicateNode {
		t.Fatalf("duplicate node must fail with GraphDuplicateNode, got %v", d)
	}
}

func TestGraph_ContestedInput(t *testing.T) {
	g := graph.New()
	ids := addNodes(t, g, "a", "b", "c")
	connect(t, g, ids[0], ids[2])
	d := g.Connect(graph.IOConnection{
		Source: graph.Endpoint{Node: ids[1], Index: 0},
		Target: graph.Endpoint{Node: ids[2], Index: 0},
	})
	if d == nil || d.Code != diag.GraphInputContested {
		t.Fatalf("second feed of one input must fail, got %v", d)
	}
	if len(d.Notes) != 2 {
		t.Fatalf("diagnostic must name both sources, notes: %v", d.Notes)
	}
}

func TestGraph_Neighbors(t *testing.T) {
	g := graph.New()
	ids := addNodes(t, g, "a", "b", "c")
	connect(t, g, ids[0], ids[2])
	connect(t, g, ids[1], ids[2])
	// A second edge between the same pair must not duplicate the neighbor.
	d := g.Connect(graph.IOConnection{
		Source: graph.Endpoint{Node: ids[0], Index: 1},
		Target: graph.Endpoint{Node: ids[2], Index: 1},
	})
	if d != nil {
		t.Fatalf("Connect: %v", d)
	}
	if got := g.Predecessors(ids[2]); !slices.Equal(got, []graph.NodeID{ids[0], ids[1]}) {
		t.Fatalf("Predecessors = %v", got)
	}
	if got := g.Successors(ids[0]); !slices.Equal(got, []graph.NodeID{ids[2]}) {
		t.Fatalf("Successors = %v", got)
	}
}
