package graph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the result of a Kahn toposort over the data edges.
type Topo struct {
	Order   []NodeID   // linear order over all nodes
	Batches [][]NodeID // waves of mutually independent nodes
	Cyclic  bool
	Cycles  []NodeID // nodes left inside a cycle
}

// ToposortKahn runs Kahn's algorithm over the graph's data edges. Ready
// nodes are drained in ascending id order per wave, so the result is
// deterministic for identical input graphs. Ancilla edges are ignored; they
// are backward-safe by construction.
func ToposortKahn(g *Graph) *Topo {
	nodeCount := g.Len()
	indeg := make([]int, nodeCount)
	succ := make([][]NodeID, nodeCount)
	for _, id := range g.Nodes() {
		for _, to := range g.Successors(id) {
			succ[int(id)-1] = append(succ[int(id)-1], to)
			indeg[int(to)-1]++
		}
	}

	topo := &Topo{
		Order:   make([]NodeID, 0, nodeCount),
		Batches: make([][]NodeID, 0),
	}

	current := make([]NodeID, 0, nodeCount)
	for i := range nodeCount {
		if indeg[i] == 0 {
			nID, err := safecast.Conv[NodeID](i + 1)
			if err != nil {
				panic(fmt.Errorf("node id overflow: %w", err))
			}
			current = append(current, nID)
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range succ[int(id)-1] {
				indeg[int(to)-1]--
				if indeg[int(to)-1] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != nodeCount {
		topo.Cyclic = true
		for i := range nodeCount {
			if indeg[i] > 0 {
				nID, err := safecast.Conv[NodeID](i + 1)
				if err != nil {
					panic(fmt.Errorf("node id overflow: %w", err))
				}
				topo.Cycles = append(topo.Cycles, nID)
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}
