package qasm_test

import (
	"encoding/json"
	"testing"

	"leqo/internal/qasm"
)

func TestStmtJSON_BranchRoundTrip(t *testing.T) {
	in := qasm.Annotate(
		qasm.BranchElse(
			qasm.Binary("==", qasm.Id("c"), qasm.IntLit(1)),
			[]qasm.Stmt{qasm.Gate("x", qasm.IndexedId("q", qasm.At(0)))},
			[]qasm.Stmt{qasm.Reset(qasm.Id("q"))},
		),
		qasm.Uncompute(),
	)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out qasm.Stmt
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Kind != qasm.StmtBranch || !out.Branch.HasElse {
		t.Fatalf("branch shape lost: %+v", out)
	}
	if _, ok := qasm.FindAnnotation(&out, qasm.AnnotationUncompute); !ok {
		t.Fatal("uncompute annotation lost in round trip")
	}
	if got, want := qasm.StmtsString([]qasm.Stmt{out}), qasm.StmtsString([]qasm.Stmt{in}); got != want {
		t.Fatalf("round trip changed rendering:\n got %q\nwant %q", got, want)
	}
}

func TestStmtJSON_UnknownKindRejected(t *testing.T) {
	var s qasm.Stmt
	if err := json.Unmarshal([]byte(`{"kind":"teleport"}`), &s); err == nil {
		t.Fatal("unknown statement kind must fail to decode")
	}
	var e qasm.Expr
	if err := json.Unmarshal([]byte(`{"kind":"wavefn"}`), &e); err == nil {
		t.Fatal("unknown expression kind must fail to decode")
	}
}

func TestStmtJSON_ClassicalTypes(t *testing.T) {
	in := qasm.ClassicalDeclInit(qasm.ClassicalInt, "n", qasm.IntLit(3))
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out qasm.Stmt
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Classical.Type != qasm.ClassicalInt || !out.Classical.HasInit {
		t.Fatalf("classical payload lost: %+v", out.Classical)
	}
	if err := json.Unmarshal([]byte(`{"kind":"classical","type":"complex","name":"z"}`), &out); err == nil {
		t.Fatal("unknown classical type must fail to decode")
	}
}
