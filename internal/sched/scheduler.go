package sched

import (
	"slices"

	"leqo/internal/annotate"
	"leqo/internal/diag"
	"leqo/internal/graph"
)

// Result is the scheduler's output: ancilla edges to add and the per-node
// uncompute decisions. Edges always run from an earlier-processed node to a
// later one, so applying them can never create a cycle.
type Result struct {
	Connections []graph.AncillaConnection
	Uncompute   map[graph.NodeID]bool
}

// Scheduler greedily threads ancilla supply from finished nodes into the
// demand of later ones, walking the graph in topological order one ready
// node at a time. It owns the three supply pools and the virtual-removal
// state as fields; a Scheduler is single-use and not restartable mid-way.
type Scheduler struct {
	g        *graph.Graph
	strategy Strategy

	remaining map[graph.NodeID]int
	ready     []graph.NodeID

	dirty        pool
	reusable     pool
	uncomputable pool

	conns     []graph.AncillaConnection
	uncompute map[graph.NodeID]bool
	processed int
}

// New returns a scheduler over g using the given selection strategy.
func New(g *graph.Graph, strategy Strategy) *Scheduler {
	if strategy == nil {
		strategy = WeightedStrategy{}
	}
	return &Scheduler{
		g:         g,
		strategy:  strategy,
		remaining: make(map[graph.NodeID]int),
		uncompute: make(map[graph.NodeID]bool),
	}
}

// Run schedules the whole graph. On success the produced ancilla edges are
// appended to the graph and returned; on failure the graph is left
// untouched.
func (s *Scheduler) Run() (*Result, *diag.Diagnostic) {
	for _, id := range s.g.Nodes() {
		preds := len(s.g.Predecessors(id))
		s.remaining[id] = preds
		if preds == 0 {
			s.ready = append(s.ready, id)
		}
	}
	slices.Sort(s.ready)

	view := &View{s: s}
	for len(s.ready) > 0 {
		id := s.strategy.Next(s.ready, view)
		s.removeReady(id)
		if d := s.process(id); d != nil {
			return nil, d
		}
	}

	if s.processed != s.g.Len() {
		// The frontend graph was supposed to be a DAG.
		return nil, diag.Internalf(diag.InternalCycle,
			"ancilla scheduling stalled with %d of %d nodes processed: input graph has a cycle",
			s.processed, s.g.Len())
	}

	for _, conn := range s.conns {
		s.g.AddAncilla(conn)
	}
	return &Result{Connections: s.conns, Uncompute: s.uncompute}, nil
}

func (s *Scheduler) removeReady(id graph.NodeID) {
	for i, other := range s.ready {
		if other == id {
			s.ready = append(s.ready[:i], s.ready[i+1:]...)
			return
		}
	}
	panic("sched: strategy returned a node outside the ready set")
}

// process handles one node: virtually remove its outgoing data edges,
// satisfy its ancilla demand from the pools, then publish its own supply.
func (s *Scheduler) process(id graph.NodeID) *diag.Diagnostic {
	s.processed++
	for _, succ := range s.g.Successors(id) {
		s.remaining[succ]--
		if s.remaining[succ] == 0 {
			s.insertReady(succ)
		}
	}

	model := s.g.Model(id)

	// Dirty demand tolerates anything: leftover garbage first, then
	// uncomputable supply (uncomputed or not), clean supply last.
	need := model.RequiredDirty
	for _, p := range []*pool{&s.dirty, &s.uncomputable, &s.reusable} {
		if len(need) == 0 {
			break
		}
		need = s.drain(p, id, need)
	}
	if len(need) > 0 {
		return s.unsatisfiable(id, len(need))
	}

	// Clean demand drains the reusable pool; when that runs out, uncompute
	// the cheapest finished node and promote its supply.
	need = model.RequiredReusable
	need = s.drain(&s.reusable, id, need)
	for len(need) > 0 {
		e, ok := s.uncomputable.popSmallest()
		if !ok {
			return s.unsatisfiable(id, len(need))
		}
		s.uncompute[e.node] = true
		s.reusable.entries = append(s.reusable.entries, e)
		need = s.drain(&s.reusable, id, need)
	}

	if len(model.ReturnedDirty) > 0 {
		s.dirty.push(id, model.ReturnedDirty)
	}
	if len(model.ReturnedReusable) > 0 {
		s.reusable.push(id, model.ReturnedReusable)
	}
	if len(model.ReturnedUncomputable) > 0 {
		s.uncomputable.push(id, model.ReturnedUncomputable)
	}
	return nil
}

// drain satisfies as much of need as p can supply, recording one ancilla
// connection per touched source. It returns the unmet tail of need.
func (s *Scheduler) drain(p *pool, target graph.NodeID, need []annotate.QubitID) []annotate.QubitID {
	if len(need) == 0 {
		return need
	}
	for _, d := range p.take(len(need)) {
		targetIDs := make([]annotate.QubitID, len(d.ids))
		copy(targetIDs, need[:len(d.ids)])
		need = need[len(d.ids):]
		s.conns = append(s.conns, graph.AncillaConnection{
			Source:    d.node,
			Target:    target,
			SourceIDs: d.ids,
			TargetIDs: targetIDs,
		})
	}
	return need
}

func (s *Scheduler) unsatisfiable(id graph.NodeID, short int) *diag.Diagnostic {
	return diag.Errorf(diag.SchedUnsatisfiable, s.g.Name(id),
		"node %q needs %d more ancilla qubits than earlier nodes supply; add an ancilla-providing node",
		s.g.Name(id), short)
}

func (s *Scheduler) insertReady(id graph.NodeID) {
	pos, _ := slices.BinarySearch(s.ready, id)
	s.ready = slices.Insert(s.ready, pos, id)
}
