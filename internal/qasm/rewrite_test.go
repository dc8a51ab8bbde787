package qasm_test

import (
	"testing"

	"leqo/internal/qasm"
)

func TestRewriteStmts_DescendsIntoBranches(t *testing.T) {
	stmts := []qasm.Stmt{
		qasm.Gate("h", qasm.Id("q")),
		qasm.Branch(qasm.Id("c"), []qasm.Stmt{
			qasm.Gate("x", qasm.Id("q")),
			qasm.Comment("drop me"),
		}),
	}
	out := qasm.RewriteStmts(stmts, func(stmt *qasm.Stmt) (qasm.RewriteAction, []qasm.Stmt) {
		if stmt.Kind == qasm.StmtComment {
			return qasm.RewriteRemove, nil
		}
		return qasm.RewriteKeep, nil
	})
	if len(out) != 2 {
		t.Fatalf("want 2 top-level statements, got %d", len(out))
	}
	if got := len(out[1].Branch.Then); got != 1 {
		t.Fatalf("comment inside branch must be removed, body has %d statements", got)
	}
	// Input spine untouched.
	if len(stmts[1].Branch.Then) != 2 {
		t.Fatal("rewrite must not mutate the input slice")
	}
}

func TestRewriteStmts_ReplacementsNotRevisited(t *testing.T) {
	visits := 0
	stmts := []qasm.Stmt{qasm.Gate("h", qasm.Id("q"))}
	out := qasm.RewriteStmts(stmts, func(stmt *qasm.Stmt) (qasm.RewriteAction, []qasm.Stmt) {
		visits++
		return qasm.RewriteReplace, []qasm.Stmt{
			qasm.Gate("x", qasm.Id("q")),
			qasm.Gate("x", qasm.Id("q")),
		}
	})
	if visits != 1 {
		t.Fatalf("replacement statements must not be re-visited, saw %d visits", visits)
	}
	if len(out) != 2 {
		t.Fatalf("want 2 replacement statements, got %d", len(out))
	}
}

func TestFragmentClone_Isolated(t *testing.T) {
	frag := &qasm.Fragment{Stmts: []qasm.Stmt{
		qasm.Annotate(qasm.QubitDecl("q", 2), qasm.Input(0)),
		qasm.Branch(qasm.Id("c"), []qasm.Stmt{qasm.Gate("x", qasm.Id("q"))}),
	}}
	clone := frag.Clone()
	clone.Stmts[0].Annotations[0] = qasm.Output(3)
	clone.Stmts[1].Branch.Then[0].Gate.Name = "z"
	if frag.Stmts[0].Annotations[0].Name != qasm.AnnotationInput {
		t.Fatal("clone must not share annotation storage")
	}
	if frag.Stmts[1].Branch.Then[0].Gate.Name != "x" {
		t.Fatal("clone must not share branch bodies")
	}
}
