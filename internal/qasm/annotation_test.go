package qasm_test

import (
	"slices"
	"testing"

	"leqo/internal/qasm"
)

func TestParseIndexList_MixedRangesAndSingles(t *testing.T) {
	got, err := qasm.ParseIndexList("1,3,5-7")
	if err != nil {
		t.Fatalf("ParseIndexList: %v", err)
	}
	want := []int{1, 3, 5, 6, 7}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseIndexList_EmptyMeansAll(t *testing.T) {
	got, err := qasm.ParseIndexList("  ")
	if err != nil {
		t.Fatalf("ParseIndexList: %v", err)
	}
	if got != nil {
		t.Fatalf("empty payload must return nil, got %v", got)
	}
}

func TestParseIndexList_Rejects(t *testing.T) {
	for _, payload := range []string{"1,,3", "a", "-1", "5-3", "2-"} {
		if _, err := qasm.ParseIndexList(payload); err == nil {
			t.Errorf("ParseIndexList(%q) must fail", payload)
		}
	}
}

func TestParseIOIndex(t *testing.T) {
	if idx, err := qasm.ParseIOIndex(" 4 "); err != nil || idx != 4 {
		t.Fatalf("got (%d, %v), want (4, nil)", idx, err)
	}
	for _, payload := range []string{"", "-1", "x"} {
		if _, err := qasm.ParseIOIndex(payload); err == nil {
			t.Errorf("ParseIOIndex(%q) must fail", payload)
		}
	}
}

func TestStripLeqoAnnotations_KeepsForeign(t *testing.T) {
	stmt := qasm.Annotate(qasm.SingleQubitDecl("q"),
		qasm.Input(0),
		qasm.Annotation{Name: "openqasm.sim", Payload: "noise=0"},
		qasm.Dirty(),
	)
	qasm.StripLeqoAnnotations(&stmt)
	if len(stmt.Annotations) != 1 || stmt.Annotations[0].Name != "openqasm.sim" {
		t.Fatalf("foreign annotation must survive, got %v", stmt.Annotations)
	}

	only := qasm.Annotate(qasm.SingleQubitDecl("p"), qasm.Reusable())
	qasm.StripLeqoAnnotations(&only)
	if only.Annotations != nil {
		t.Fatalf("all-leqo annotation list must become nil, got %v", only.Annotations)
	}
}
