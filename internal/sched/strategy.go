package sched

import (
	"fmt"

	"leqo/internal/graph"
)

// View exposes the scheduler state a selection strategy may consult.
type View struct {
	s *Scheduler
}

// Requirement returns the (dirty, reusable) ancilla demand of a node.
func (v *View) Requirement(id graph.NodeID) (dirty, reusable int) {
	m := v.s.g.Model(id)
	return len(m.RequiredDirty), len(m.RequiredReusable)
}

// Supply returns the (dirty, reusable, uncomputable) supply a node will
// contribute once processed.
func (v *View) Supply(id graph.NodeID) (dirty, reusable, uncomputable int) {
	m := v.s.g.Model(id)
	return len(m.ReturnedDirty), len(m.ReturnedReusable), len(m.ReturnedUncomputable)
}

// Available returns the supply currently sitting in the pools.
func (v *View) Available() (dirty, reusable, uncomputable int) {
	return v.s.dirty.total(), v.s.reusable.total(), v.s.uncomputable.total()
}

// Satisfiable reports whether the node's whole requirement could be met from
// the pools right now: clean demand from reusable+uncomputable supply, total
// demand from everything combined.
func (v *View) Satisfiable(id graph.NodeID) bool {
	reqDirty, reqReusable := v.Requirement(id)
	availDirty, availReusable, availUncomputable := v.Available()
	if reqReusable > availReusable+availUncomputable {
		return false
	}
	return reqDirty+reqReusable <= availDirty+availReusable+availUncomputable
}

// Strategy picks the next node to process from the ready set. The ready
// slice is sorted ascending and non-empty; implementations must return one
// of its elements. The selection heuristic is an open tuning space, so it is
// pluggable rather than fixed.
type Strategy interface {
	Name() string
	Next(ready []graph.NodeID, view *View) graph.NodeID
}

// StackStrategy processes ready nodes LIFO. The simplest variant; useful as
// a baseline and for reproducing plain depth-first schedules.
type StackStrategy struct{}

func (StackStrategy) Name() string { return "stack" }

func (StackStrategy) Next(ready []graph.NodeID, _ *View) graph.NodeID {
	return ready[len(ready)-1]
}

// WeightedStrategy is the reference heuristic: prefer nodes whose whole
// requirement is satisfiable right now; among those, maximize contributed
// supply minus consumed requirement, with clean supply (reusable or
// uncomputable) weighted twice as heavy as plain dirty supply. Ties go to
// the smallest node id so runs stay deterministic.
type WeightedStrategy struct{}

func (WeightedStrategy) Name() string { return "weighted" }

func (WeightedStrategy) Next(ready []graph.NodeID, view *View) graph.NodeID {
	candidates := make([]graph.NodeID, 0, len(ready))
	for _, id := range ready {
		if view.Satisfiable(id) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		candidates = ready
	}
	best := candidates[0]
	bestScore := score(best, view)
	for _, id := range candidates[1:] {
		if s := score(id, view); s > bestScore {
			best, bestScore = id, s
		}
	}
	return best
}

func score(id graph.NodeID, view *View) int {
	reqDirty, reqReusable := view.Requirement(id)
	supDirty, supReusable, supUncomputable := view.Supply(id)
	return supDirty + 2*(supReusable+supUncomputable) - reqDirty - 2*reqReusable
}

// StrategyByName resolves a configured strategy name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "weighted":
		return WeightedStrategy{}, nil
	case "stack":
		return StackStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown scheduler strategy %q", name)
}
