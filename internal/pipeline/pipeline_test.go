package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"leqo/internal/config"
	"leqo/internal/diag"
	"leqo/internal/model"
	"leqo/internal/pipeline"
	"leqo/internal/qasm"
)

func chainRequest() *model.Request {
	return &model.Request{
		Nodes: []model.Node{
			{ID: "prep", Fragment: []qasm.Stmt{
				qasm.Annotate(qasm.QubitDecl("q", 2), qasm.Input(0)),
				qasm.Gate("h", qasm.IndexedId("q", qasm.At(0))),
				qasm.Annotate(qasm.Alias("out", qasm.Id("q")), qasm.Output(0)),
			}},
			{ID: "use", Fragment: []qasm.Stmt{
				qasm.Annotate(qasm.QubitDecl("p", 2), qasm.Input(0)),
				qasm.Gate("cx", qasm.IndexedId("p", qasm.At(0)), qasm.IndexedId("p", qasm.At(1))),
			}},
		},
		Edges: []model.Edge{{
			Source: model.Port{Node: "prep", Index: 0},
			Target: model.Port{Node: "use", Index: 0},
			Size:   2,
		}},
	}
}

func TestCompile_ChainEndToEnd(t *testing.T) {
	program, report, d := pipeline.Compile(context.Background(), chainRequest(), config.Default(), nil)
	if d != nil {
		t.Fatalf("Compile: %v", d)
	}
	text := program.String()
	for _, want := range []string{
		"OPENQASM 3.1;",
		`include "stdgates.inc";`,
		"qubit[2] leqo_reg;",
		"// >> node prep",
		"let q = leqo_reg[0:1];",
		"// >> node use",
		"let p = leqo_reg[0:1];",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("program missing %q:\n%s", want, text)
		}
	}
	if report.RegisterSize != 2 {
		t.Fatalf("RegisterSize = %d, want 2", report.RegisterSize)
	}
	if len(report.Order) != 2 || report.Order[0] != "prep" || report.Order[1] != "use" {
		t.Fatalf("Order = %v, want [prep use]", report.Order)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", report.Warnings)
	}
	if len(report.Layout) != 2 {
		t.Fatalf("Layout has %d entries, want 2", len(report.Layout))
	}
	for _, entry := range report.Layout {
		if entry.Qubits != 2 || entry.Width != 2 {
			t.Fatalf("layout for %s: qubits %d width %d, want 2/2",
				entry.Node, entry.Qubits, entry.Width)
		}
	}
	if report.Layout[0].Inputs != 1 || report.Layout[0].Outputs != 1 {
		t.Fatalf("prep layout IO = %d/%d, want 1/1",
			report.Layout[0].Inputs, report.Layout[0].Outputs)
	}
	if len(report.Timings.Phases) == 0 {
		t.Fatal("report carries no phase timings")
	}
}

func TestCompile_SizeHintWarning(t *testing.T) {
	req := chainRequest()
	req.Edges[0].Size = 3

	_, report, d := pipeline.Compile(context.Background(), req, config.Default(), nil)
	if d != nil {
		t.Fatalf("Compile: %v", d)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", report.Warnings)
	}
	w := report.Warnings[0]
	if w.Code != diag.GraphSizeHintBad || w.Node != "prep" {
		t.Fatalf("warning = %v, want %s on prep", &w, diag.GraphSizeHintBad)
	}
}

func TestCompile_NodeLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Compile.MaxNodes = 1

	_, _, d := pipeline.Compile(context.Background(), chainRequest(), cfg, nil)
	if d == nil || d.Code != diag.GraphTooLarge {
		t.Fatalf("got %v, want %s", d, diag.GraphTooLarge)
	}
}

func TestCompile_QubitLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Compile.MaxQubits = 3

	_, _, d := pipeline.Compile(context.Background(), chainRequest(), cfg, nil)
	if d == nil || d.Code != diag.GraphTooLarge {
		t.Fatalf("got %v, want %s", d, diag.GraphTooLarge)
	}
}

func TestCompile_UnknownStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Compile.Strategy = "oracle"

	_, _, d := pipeline.Compile(context.Background(), chainRequest(), cfg, nil)
	if d == nil {
		t.Fatal("unknown strategy name must fail")
	}
}

func TestCompile_ScheduleDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Compile.Schedule = false

	program, report, d := pipeline.Compile(context.Background(), chainRequest(), cfg, nil)
	if d != nil {
		t.Fatalf("Compile: %v", d)
	}
	if program == nil || report.RegisterSize != 2 {
		t.Fatalf("scheduling off must still merge, report = %+v", report)
	}
	for _, phase := range report.Timings.Phases {
		if phase.Name == "schedule" {
			t.Fatal("schedule phase recorded while disabled")
		}
	}
}

func TestCompile_EnrichmentFailure(t *testing.T) {
	req := chainRequest()
	req.Nodes[1].Fragment = nil
	req.Nodes[1].Type = "builtin.qft"

	_, _, d := pipeline.Compile(context.Background(), req, config.Default(), nil)
	if d == nil || d.Code != diag.ModelBadReference {
		t.Fatalf("got %v, want %s", d, diag.ModelBadReference)
	}
	if d.Node != "use" {
		t.Fatalf("diagnostic node = %q, want use", d.Node)
	}
}
