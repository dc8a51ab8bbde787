package qasm_test

import (
	"testing"

	"leqo/internal/qasm"
)

func TestProgramPrint(t *testing.T) {
	p := qasm.NewProgram()
	p.Includes = []string{"stdgates.inc"}
	p.Stmts = []qasm.Stmt{
		qasm.QubitDecl("leqo_reg", 3),
		qasm.Annotate(qasm.Alias("q", qasm.IndexedId("leqo_reg", qasm.Span(0, 1))), qasm.Input(0)),
		qasm.Alias("a", qasm.IndexedId("leqo_reg", qasm.Pick(0, 2))),
		qasm.Gate("h", qasm.IndexedId("q", qasm.At(0))),
		qasm.GateP("rz", []qasm.Expr{qasm.FloatLit(0.5)}, qasm.IndexedId("q", qasm.At(1))),
		qasm.Measure(qasm.Id("c"), qasm.Id("q")),
		qasm.Branch(qasm.Binary("==", qasm.Id("c"), qasm.IntLit(1)), []qasm.Stmt{
			qasm.Gate("x", qasm.IndexedId("q", qasm.At(0))),
		}),
		qasm.Comment("done"),
	}

	want := `OPENQASM 3.1;
include "stdgates.inc";

qubit[3] leqo_reg;
@leqo.input 0
let q = leqo_reg[0:1];
let a = leqo_reg[{0, 2}];
h q[0];
rz(0.5) q[1];
c = measure q;
if (c == 1) {
  x q[0];
}
// done
`
	if got := p.String(); got != want {
		t.Fatalf("printed program mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestProgramPrint_Deterministic(t *testing.T) {
	p := qasm.NewProgram()
	p.Stmts = []qasm.Stmt{
		qasm.QubitDecl("r", 2),
		qasm.Gate("cx", qasm.IndexedId("r", qasm.At(0)), qasm.IndexedId("r", qasm.At(1))),
	}
	if p.String() != p.String() {
		t.Fatal("printing the same program twice must yield identical text")
	}
}

func TestExprString_Parenthesization(t *testing.T) {
	e := qasm.Binary("&&",
		qasm.Binary("==", qasm.Id("c"), qasm.IntLit(0)),
		qasm.Unary("!", qasm.Id("flag")),
	)
	if got, want := qasm.ExprString(e), "(c == 0) && !flag"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConcatAll(t *testing.T) {
	e := qasm.ConcatAll(qasm.Id("a"), qasm.Id("b"), qasm.Id("c"))
	if got, want := qasm.ExprString(e), "a ++ b ++ c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	single := qasm.ConcatAll(qasm.Id("a"))
	if got, want := qasm.ExprString(single), "a"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
