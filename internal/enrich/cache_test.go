package enrich_test

import (
	"context"
	"testing"

	"leqo/internal/enrich"
	"leqo/internal/model"
	"leqo/internal/qasm"
)

// countingEnricher wraps Inline and counts backend hits.
type countingEnricher struct {
	calls int
}

func (c *countingEnricher) Enrich(ctx context.Context, node model.Node) (*qasm.Fragment, enrich.Meta, error) {
	c.calls++
	return enrich.Inline{}.Enrich(ctx, node)
}

func inlineNode(id string) model.Node {
	return model.Node{
		ID: id,
		Fragment: []qasm.Stmt{
			qasm.Annotate(qasm.QubitDecl("q", 2), qasm.Input(0)),
			qasm.Gate("h", qasm.Id("q")),
		},
	}
}

func TestInline_CountsQubits(t *testing.T) {
	frag, meta, err := enrich.Inline{}.Enrich(context.Background(), inlineNode("n"))
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if len(frag.Stmts) != 2 {
		t.Fatalf("fragment lost statements: %v", frag.Stmts)
	}
	if meta.Width != 2 {
		t.Fatalf("Width = %d, want 2", meta.Width)
	}
}

func TestInline_RejectsAbstractNodes(t *testing.T) {
	if _, _, err := (enrich.Inline{}).Enrich(context.Background(), model.Node{ID: "n", Type: "builtin.qft"}); err == nil {
		t.Fatal("a node without an inline fragment must fail")
	}
}

func TestCache_ServesSecondLookupFromDisk(t *testing.T) {
	backend := &countingEnricher{}
	cache, err := enrich.OpenCache(t.TempDir(), backend)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	node := inlineNode("n")

	first, _, err := cache.Enrich(context.Background(), node)
	if err != nil {
		t.Fatalf("first Enrich: %v", err)
	}
	second, _, err := cache.Enrich(context.Background(), node)
	if err != nil {
		t.Fatalf("second Enrich: %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", backend.calls)
	}
	if qasm.StmtsString(second.Stmts) != qasm.StmtsString(first.Stmts) {
		t.Fatal("cached fragment differs from the original")
	}
}

func TestCache_DistinguishesNodeContent(t *testing.T) {
	backend := &countingEnricher{}
	cache, err := enrich.OpenCache(t.TempDir(), backend)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	a := inlineNode("a")
	b := inlineNode("b")
	b.Fragment = append(b.Fragment, qasm.Gate("x", qasm.Id("q")))

	if _, _, err := cache.Enrich(context.Background(), a); err != nil {
		t.Fatalf("Enrich a: %v", err)
	}
	if _, _, err := cache.Enrich(context.Background(), b); err != nil {
		t.Fatalf("Enrich b: %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("distinct fragments must miss separately, calls = %d", backend.calls)
	}
}

func TestCache_DropAll(t *testing.T) {
	backend := &countingEnricher{}
	cache, err := enrich.OpenCache(t.TempDir(), backend)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	node := inlineNode("n")
	if _, _, err := cache.Enrich(context.Background(), node); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, _, err := cache.Enrich(context.Background(), node); err != nil {
		t.Fatalf("Enrich after drop: %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("dropped cache must miss again, calls = %d", backend.calls)
	}
}
