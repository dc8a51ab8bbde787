package merge

import (
	"fmt"
	"slices"

	"leqo/internal/alloc"
	"leqo/internal/annotate"
	"leqo/internal/diag"
	"leqo/internal/graph"
	"leqo/internal/qasm"
)

// BranchInput describes a then/else pair of sub-graphs to fold into one
// branching fragment. Both arms contain the same two border nodes: IfNode, a
// pass-through re-exposing every requested input as an identically-indexed
// output, and EndifNode, the mirror image at the exit. The border nodes must
// be the first nodes added to each arm graph so their qubits occupy the
// bottom of the branch-local register.
type BranchInput struct {
	ThenGraph *graph.Graph
	ElseGraph *graph.Graph
	IfNode    string
	EndifNode string

	// Condition is the boolean expression of the emitted branch statement.
	Condition qasm.Expr
	// BranchID scopes the generated register names: leqo_<id>_if_reg and
	// leqo_<id>_ancillae.
	BranchID string

	// Optional per-arm uncompute decisions, applied like in Program.
	ThenUncompute map[graph.NodeID]bool
	ElseUncompute map[graph.NodeID]bool
}

// Branch folds the two arms into one fragment containing a single branching
// statement over a shared branch-local register layout. Both arms must bind
// identical register indices at the endif node; no qubit-swap reconciliation
// is attempted, mismatching arms fail loudly.
func Branch(in BranchInput) (*qasm.Fragment, *diag.Diagnostic) {
	regName := fmt.Sprintf("leqo_%s_if_reg", in.BranchID)
	ancName := fmt.Sprintf("leqo_%s_ancillae", in.BranchID)

	thenArm, d := prepareArm(in.ThenGraph, in.IfNode, in.EndifNode, regName)
	if d != nil {
		return nil, d
	}
	elseArm, d := prepareArm(in.ElseGraph, in.IfNode, in.EndifNode, regName)
	if d != nil {
		return nil, d
	}

	if d := checkArmBindings(thenArm, elseArm, in.EndifNode); d != nil {
		return nil, d
	}

	inWidth := thenArm.ifModel.QubitCount
	size := thenArm.size
	if elseArm.size > size {
		size = elseArm.size
	}

	var out []qasm.Stmt

	// Border entry: the if node's declarations, re-exposed as the merged
	// fragment's own inputs. Its output aliases only served arm wiring.
	for i := range thenArm.ifClone.Stmts {
		stmt := thenArm.ifClone.Stmts[i]
		if stmt.Kind == qasm.StmtQubitDecl || stmt.Kind == qasm.StmtClassicalDecl {
			out = append(out, stmt)
		}
	}

	// Branch-local register: the inputs, padded with fresh ancillae when an
	// arm needs more working qubits than flow in.
	parts := make([]qasm.Expr, 0, len(thenArm.ifModel.Declared)+1)
	for _, name := range thenArm.ifModel.Declared {
		parts = append(parts, qasm.Id(name))
	}
	if size > inWidth {
		out = append(out, qasm.QubitDecl(ancName, size-inWidth))
		parts = append(parts, qasm.Id(ancName))
	}
	if len(parts) > 0 {
		out = append(out, qasm.Alias(regName, qasm.ConcatAll(parts...)))
	}

	branch := qasm.BranchElse(in.Condition, thenArm.body(in.ThenUncompute), elseArm.body(in.ElseUncompute))
	out = append(out, branch)

	// Border exit: the endif node's rewritten statements bind its names to
	// the shared register slices and re-expose the outputs. Input markers
	// are resolved and dropped.
	for i := range thenArm.endifStmts {
		stmt := thenArm.endifStmts[i]
		dropped := stmt
		dropped.Annotations = nil
		for _, a := range stmt.Annotations {
			if a.Name != qasm.AnnotationInput {
				dropped.Annotations = append(dropped.Annotations, a)
			}
		}
		out = append(out, dropped)
	}

	return &qasm.Fragment{Stmts: out}, nil
}

// arm is one prepared branch arm: allocated, border nodes located, original
// border fragments preserved.
type arm struct {
	g          *graph.Graph
	ifID       graph.NodeID
	endifID    graph.NodeID
	ifModel    *annotate.Model
	ifClone    *qasm.Fragment
	endifStmts []qasm.Stmt
	allocator  *alloc.Allocator
	size       int
	order      []graph.NodeID
}

func prepareArm(g *graph.Graph, ifName, endifName, regName string) (*arm, *diag.Diagnostic) {
	ifID, ok := g.NodeByName(ifName)
	if !ok {
		return nil, diag.Errorf(diag.MergeBorderMissing, ifName, "arm graph is missing border node %q", ifName)
	}
	endifID, ok := g.NodeByName(endifName)
	if !ok {
		return nil, diag.Errorf(diag.MergeBorderMissing, endifName, "arm graph is missing border node %q", endifName)
	}

	// Classical values cannot escape branch scope: branch-local declarations
	// die at the boundary. Documented limitation, reject instead of solving.
	for _, conn := range g.IOConnections() {
		if conn.Target.Node != endifID {
			continue
		}
		srcModel := g.Model(conn.Source.Node)
		if out, ok := srcModel.OutputBinding(conn.Source.Index); ok && !out.IsQubit() {
			return nil, diag.Errorf(diag.MergeClassicalEscape, g.Name(conn.Source.Node),
				"classical output %d of %q cannot cross the branch boundary",
				conn.Source.Index, g.Name(conn.Source.Node))
		}
	}

	topo := graph.ToposortKahn(g)
	if topo.Cyclic {
		return nil, diag.Internalf(diag.InternalCycle, "branch arm graph has a cycle")
	}

	ifClone := g.Fragment(ifID).Clone()
	ifModel := g.Model(ifID)

	allocator := alloc.New(g, alloc.Options{RegisterName: regName})
	size, d := allocator.Allocate()
	if d != nil {
		return nil, d
	}

	// The pass-through entry must own the bottom of the branch register so
	// the input concatenation lines up with the allocated layout.
	pos := 0
	for _, name := range ifModel.Declared {
		for _, q := range ifModel.NameToIDs[name] {
			idx, ok := allocator.GlobalIndex(ifID, q)
			if !ok || idx != pos {
				return nil, diag.Errorf(diag.MergeBorderLayout, g.Name(ifID),
					"border node %q must be the first node of the arm graph", g.Name(ifID))
			}
			pos++
		}
	}

	return &arm{
		g:          g,
		ifID:       ifID,
		endifID:    endifID,
		ifModel:    ifModel,
		ifClone:    ifClone,
		endifStmts: g.Fragment(endifID).Stmts,
		allocator:  allocator,
		size:       size,
		order:      topo.Order,
	}, nil
}

// body returns the arm's statements in topological order, border nodes
// excluded, with every merger annotation stripped since IO resolution
// already happened.
func (a *arm) body(uncompute map[graph.NodeID]bool) []qasm.Stmt {
	var out []qasm.Stmt
	for _, id := range a.order {
		if id == a.ifID || id == a.endifID {
			continue
		}
		frag := a.g.Fragment(id)
		if frag == nil {
			continue
		}
		stmts := filterUncompute(frag.Stmts, uncompute[id])
		stmts = qasm.RewriteStmts(stmts, func(stmt *qasm.Stmt) (qasm.RewriteAction, []qasm.Stmt) {
			qasm.StripLeqoAnnotations(stmt)
			return qasm.RewriteKeep, nil
		})
		out = append(out, stmts...)
	}
	return out
}

// checkArmBindings verifies both arms bind identical register indices for
// every endif output.
func checkArmBindings(thenArm, elseArm *arm, endifName string) *diag.Diagnostic {
	thenModel := thenArm.g.Model(thenArm.endifID)
	elseModel := elseArm.g.Model(elseArm.endifID)
	if len(thenModel.Outputs) != len(elseModel.Outputs) {
		return diag.Errorf(diag.MergeArmBindingClash, endifName,
			"then arm exposes %d outputs but else arm exposes %d",
			len(thenModel.Outputs), len(elseModel.Outputs))
	}
	for idx := 0; idx < len(thenModel.Outputs); idx++ {
		thenBinding := thenModel.Outputs[idx]
		elseBinding := elseModel.Outputs[idx]
		thenIdx := thenArm.allocator.BindingIndices(thenArm.endifID, thenBinding)
		elseIdx := elseArm.allocator.BindingIndices(elseArm.endifID, elseBinding)
		if !slices.Equal(thenIdx, elseIdx) {
			return diag.Errorf(diag.MergeArmBindingClash, endifName,
				"then and else arms bind different register slots for output %d (%v vs %v); branch outputs must line up positionally",
				idx, thenIdx, elseIdx)
		}
	}
	return nil
}
