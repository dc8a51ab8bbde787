package merge_test

import (
	"strings"
	"testing"

	"leqo/internal/annotate"
	"leqo/internal/diag"
	"leqo/internal/graph"
	"leqo/internal/merge"
	"leqo/internal/qasm"
)

func buildGraph(t *testing.T, names []string, frags map[string]*qasm.Fragment) (*graph.Graph, map[string]graph.NodeID) {
	t.Helper()
	g := graph.New()
	ids := make(map[string]graph.NodeID, len(frags))
	for _, name := range names {
		id, d := g.AddNode(name)
		if d != nil {
			t.Fatalf("AddNode(%q): %v", name, d)
		}
		ids[name] = id
		m, d := annotate.Parse(name, frags[name])
		if d != nil {
			t.Fatalf("Parse(%q): %v", name, d)
		}
		g.SetPayload(id, frags[name], m)
	}
	return g, ids
}

func connect(t *testing.T, g *graph.Graph, src graph.NodeID, srcIdx int, dst graph.NodeID, dstIdx int) {
	t.Helper()
	d := g.Connect(graph.IOConnection{
		Source: graph.Endpoint{Node: src, Index: srcIdx},
		Target: graph.Endpoint{Node: dst, Index: dstIdx},
	})
	if d != nil {
		t.Fatalf("Connect: %v", d)
	}
}

func chainFragments() map[string]*qasm.Fragment {
	return map[string]*qasm.Fragment{
		"prep": {Stmts: []qasm.Stmt{
			qasm.Annotate(qasm.QubitDecl("q", 2), qasm.Input(0)),
			qasm.Gate("h", qasm.IndexedId("q", qasm.At(0))),
			qasm.Annotate(qasm.Alias("out", qasm.Id("q")), qasm.Output(0)),
		}},
		"use": {Stmts: []qasm.Stmt{
			qasm.Annotate(qasm.QubitDecl("p", 2), qasm.Input(0)),
			qasm.Gate("cx", qasm.IndexedId("p", qasm.At(0)), qasm.IndexedId("p", qasm.At(1))),
		}},
	}
}

func TestProgram_TwoNodeChain(t *testing.T) {
	g, ids := buildGraph(t, []string{"prep", "use"}, chainFragments())
	connect(t, g, ids["prep"], 0, ids["use"], 0)

	result, d := merge.Program(g, merge.Options{Includes: []string{"stdgates.inc"}})
	if d != nil {
		t.Fatalf("Program: %v", d)
	}
	if result.RegisterSize != 2 {
		t.Fatalf("RegisterSize = %d, want 2", result.RegisterSize)
	}
	text := result.Program.String()
	for _, want := range []string{
		"OPENQASM 3.1;",
		`include "stdgates.inc";`,
		"qubit[2] leqo_reg;",
		"// >> node prep",
		"let q = leqo_reg[0:1];",
		"// << node prep",
		"// >> node use",
		"let p = leqo_reg[0:1];",
		"// << node use",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, ">> node prep") > strings.Index(text, ">> node use") {
		t.Fatalf("prep must be emitted before use:\n%s", text)
	}
}

func TestProgram_UncomputeFiltering(t *testing.T) {
	frags := map[string]*qasm.Fragment{
		"a": {Stmts: []qasm.Stmt{
			qasm.Annotate(qasm.QubitDecl("q", 1), qasm.Input(0)),
			qasm.Gate("h", qasm.Id("q")),
			qasm.Annotate(qasm.Branch(qasm.BoolLit(true), []qasm.Stmt{
				qasm.Gate("h", qasm.Id("q")),
				qasm.Annotate(qasm.Alias("r", qasm.Id("q")), qasm.Reusable()),
			}), qasm.Uncompute()),
		}},
	}

	// Uncompute flag off: the block vanishes.
	g, _ := buildGraph(t, []string{"a"}, frags)
	result, d := merge.Program(g, merge.Options{})
	if d != nil {
		t.Fatalf("Program: %v", d)
	}
	if strings.Contains(result.Program.String(), "if (") {
		t.Fatalf("unflagged uncompute block must be dropped:\n%s", result.Program.String())
	}

	// Uncompute flag on: the block stays, marker annotation stripped.
	g, ids := buildGraph(t, []string{"a"}, frags)
	result, d = merge.Program(g, merge.Options{Uncompute: map[graph.NodeID]bool{ids["a"]: true}})
	if d != nil {
		t.Fatalf("Program: %v", d)
	}
	text := result.Program.String()
	if !strings.Contains(text, "if (") {
		t.Fatalf("flagged uncompute block must stay:\n%s", text)
	}
	if strings.Contains(text, "@leqo.uncompute") {
		t.Fatalf("marker annotation must be stripped:\n%s", text)
	}
}

func TestProgram_RemergeIdempotent(t *testing.T) {
	g, ids := buildGraph(t, []string{"prep", "use"}, chainFragments())
	connect(t, g, ids["prep"], 0, ids["use"], 0)
	first, d := merge.Program(g, merge.Options{})
	if d != nil {
		t.Fatalf("Program: %v", d)
	}

	// Strip the input markers the way an upstream renaming pass would before
	// feeding a merged program back in, then re-merge it as a single node.
	stmts := qasm.RewriteStmts(first.Program.Stmts, func(stmt *qasm.Stmt) (qasm.RewriteAction, []qasm.Stmt) {
		qasm.StripLeqoAnnotations(stmt)
		return qasm.RewriteKeep, nil
	})
	refrag := &qasm.Fragment{Stmts: stmts}
	g2, _ := buildGraph(t, []string{"whole"}, map[string]*qasm.Fragment{"whole": refrag})
	second, d := merge.Program(g2, merge.Options{})
	if d != nil {
		t.Fatalf("re-merge: %v", d)
	}

	want := qasm.StmtsString(stmts)
	got := qasm.StmtsString(second.Program.Stmts)
	if got != want {
		t.Fatalf("re-merging a merged program must reproduce it:\n got:\n%s\nwant:\n%s", got, want)
	}
	if second.RegisterSize != first.RegisterSize {
		t.Fatalf("register size changed on re-merge: %d -> %d", first.RegisterSize, second.RegisterSize)
	}
}

func TestProgram_EmptyGraph(t *testing.T) {
	g := graph.New()
	result, d := merge.Program(g, merge.Options{})
	if d != nil {
		t.Fatalf("Program: %v", d)
	}
	text := result.Program.String()
	if strings.Contains(text, "qubit") {
		t.Fatalf("empty graph must not declare a register:\n%s", text)
	}
	if result.RegisterSize != 0 {
		t.Fatalf("RegisterSize = %d, want 0", result.RegisterSize)
	}
}

func TestProgram_CycleIsInternal(t *testing.T) {
	frags := map[string]*qasm.Fragment{
		"a": chainFragments()["prep"],
		"b": chainFragments()["prep"],
	}
	g, ids := buildGraph(t, []string{"a", "b"}, frags)
	connect(t, g, ids["a"], 0, ids["b"], 0)
	connect(t, g, ids["b"], 0, ids["a"], 0)
	_, d := merge.Program(g, merge.Options{})
	if d == nil || d.Code != diag.InternalCycle {
		t.Fatalf("want InternalCycle, got %v", d)
	}
}
