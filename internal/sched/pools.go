package sched

import (
	"leqo/internal/annotate"
	"leqo/internal/graph"
)

// entry is one finished node's remaining supply inside a pool. Ids are
// drained from the front; the order within an entry follows the model's pool
// order, the order across entries follows processing order.
type entry struct {
	node      graph.NodeID
	remaining []annotate.QubitID
}

// pool holds the finished nodes that still have supply of one kind. A node
// may sit in several pools at once (one entry per kind).
type pool struct {
	entries []entry
}

func (p *pool) push(node graph.NodeID, ids []annotate.QubitID) {
	if len(ids) == 0 {
		return
	}
	owned := make([]annotate.QubitID, len(ids))
	copy(owned, ids)
	p.entries = append(p.entries, entry{node: node, remaining: owned})
}

func (p *pool) total() int {
	n := 0
	for i := range p.entries {
		n += len(p.entries[i].remaining)
	}
	return n
}

// draw is one slice of supply taken from one source node.
type draw struct {
	node graph.NodeID
	ids  []annotate.QubitID
}

// take removes up to n qubits from the pool, front first, removing exhausted
// entries. It returns one draw per touched source node.
func (p *pool) take(n int) []draw {
	var out []draw
	for n > 0 && len(p.entries) > 0 {
		e := &p.entries[0]
		k := n
		if k > len(e.remaining) {
			k = len(e.remaining)
		}
		ids := make([]annotate.QubitID, k)
		copy(ids, e.remaining[:k])
		out = append(out, draw{node: e.node, ids: ids})
		e.remaining = e.remaining[k:]
		n -= k
		if len(e.remaining) == 0 {
			p.entries = p.entries[1:]
		}
	}
	return out
}

// popSmallest removes and returns the entry with the fewest remaining
// qubits, ties broken by earliest insertion. Used to pick the cheapest node
// to uncompute. Returns false when the pool is empty.
func (p *pool) popSmallest() (entry, bool) {
	if len(p.entries) == 0 {
		return entry{}, false
	}
	best := 0
	for i := 1; i < len(p.entries); i++ {
		if len(p.entries[i].remaining) < len(p.entries[best].remaining) {
			best = i
		}
	}
	e := p.entries[best]
	p.entries = append(p.entries[:best], p.entries[best+1:]...)
	return e, true
}
