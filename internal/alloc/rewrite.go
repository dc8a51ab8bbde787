package alloc

import (
	"leqo/internal/diag"
	"leqo/internal/graph"
	"leqo/internal/qasm"
)

// buildRewrites produces the replacement statement list for every node
// without touching the graph. Declarations become aliases into the shared
// register; classical inputs fed by a connection gain an initializer naming
// the feeding output; consumed ancilla annotations are stripped.
func (a *Allocator) buildRewrites() (map[graph.NodeID][]qasm.Stmt, *diag.Diagnostic) {
	out := make(map[graph.NodeID][]qasm.Stmt, a.g.Len())
	for _, node := range a.g.Nodes() {
		frag := a.g.Fragment(node)
		model := a.g.Model(node)
		if frag == nil || model == nil {
			continue
		}
		var failed *diag.Diagnostic
		wires := a.rewire[node]
		stmts := qasm.RewriteStmts(frag.Stmts, func(stmt *qasm.Stmt) (qasm.RewriteAction, []qasm.Stmt) {
			if failed != nil {
				return qasm.RewriteKeep, nil
			}
			switch stmt.Kind {
			case qasm.StmtQubitDecl:
				if stmt.Qubit.Name == a.name {
					// A fragment re-declaring the shared register is a prior
					// merge result being merged again. The merger emits the
					// register itself, so the declaration is dropped, but
					// only when its slots landed on their own indices.
					if d := a.checkIdentity(node, stmt); d != nil {
						failed = d
						return qasm.RewriteKeep, nil
					}
					return qasm.RewriteRemove, nil
				}
				repl, d := a.declToAlias(node, stmt)
				if d != nil {
					failed = d
					return qasm.RewriteKeep, nil
				}
				return qasm.RewriteReplace, []qasm.Stmt{repl}
			case qasm.StmtAlias:
				dropAnnotation(stmt, qasm.AnnotationReusable)
				return qasm.RewriteKeep, nil
			case qasm.StmtClassicalDecl:
				if src, ok := wires[stmt.Classical.Name]; ok {
					stmt.Classical.Init = qasm.Id(src)
					stmt.Classical.HasInit = true
				}
				return qasm.RewriteKeep, nil
			}
			return qasm.RewriteKeep, nil
		})
		if failed != nil {
			return nil, failed
		}
		out[node] = stmts
	}
	return out, nil
}

// declToAlias turns `qubit[n] q` into `let q = leqo_reg[...]`, carrying over
// an input annotation and any foreign annotations. Dirty annotations are
// consumed by scheduling and dropped.
func (a *Allocator) declToAlias(node graph.NodeID, stmt *qasm.Stmt) (qasm.Stmt, *diag.Diagnostic) {
	model := a.g.Model(node)
	name := stmt.Qubit.Name
	ids, ok := model.NameToIDs[name]
	if !ok {
		return qasm.Stmt{}, diag.Internalf(diag.InternalUnionFind,
			"declaration %q of node %q missing from annotation model", name, a.g.Name(node))
	}
	indices := make([]int, len(ids))
	for i, q := range ids {
		idx, ok := a.GlobalIndex(node, q)
		if !ok {
			return qasm.Stmt{}, diag.Internalf(diag.InternalUnionFind,
				"qubit %d of node %q has no register index", q, a.g.Name(node))
		}
		indices[i] = idx
	}
	alias := qasm.Alias(name, qasm.IndexedId(a.name, indexItems(indices)...))
	for _, ann := range stmt.Annotations {
		if !ann.IsLeqo() || ann.Name == qasm.AnnotationInput {
			alias.Annotations = append(alias.Annotations, ann)
		}
	}
	return alias, nil
}

// checkIdentity verifies that a declaration carrying the shared register
// name maps onto register indices equal to its own positions. Anything else
// means the reserved name collided with a genuinely fragment-local register.
func (a *Allocator) checkIdentity(node graph.NodeID, stmt *qasm.Stmt) *diag.Diagnostic {
	model := a.g.Model(node)
	ids := model.NameToIDs[stmt.Qubit.Name]
	for pos, q := range ids {
		idx, ok := a.GlobalIndex(node, q)
		if !ok || idx != pos {
			return diag.Errorf(diag.AllocReservedName, a.g.Name(node),
				"declaration %q collides with the reserved shared register name", stmt.Qubit.Name)
		}
	}
	return nil
}

// indexItems picks the tightest index form: a single position, an inclusive
// range for contiguous ascending runs, a discrete set otherwise.
func indexItems(indices []int) []qasm.IndexItem {
	if len(indices) == 1 {
		return []qasm.IndexItem{qasm.At(indices[0])}
	}
	contiguous := true
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous && len(indices) > 0 {
		return []qasm.IndexItem{qasm.Span(indices[0], indices[len(indices)-1])}
	}
	return []qasm.IndexItem{qasm.Pick(indices...)}
}

func dropAnnotation(stmt *qasm.Stmt, name string) {
	if len(stmt.Annotations) == 0 {
		return
	}
	kept := make([]qasm.Annotation, 0, len(stmt.Annotations))
	for _, a := range stmt.Annotations {
		if a.Name != name {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		stmt.Annotations = nil
		return
	}
	stmt.Annotations = kept
}
