package enrich

import (
	"context"
	"fmt"

	"leqo/internal/model"
	"leqo/internal/qasm"
)

// Meta is the width/depth metadata an enrichment strategy reports for the
// implementation it picked.
type Meta struct {
	Width int `msgpack:"width" json:"width"`
	Depth int `msgpack:"depth" json:"depth"`
}

// Enricher resolves one frontend node to an annotated fragment. The merger
// core treats enrichment as a black box; database-backed strategies live
// behind this interface and may be called concurrently for different nodes.
// Implementations must honor ctx.
type Enricher interface {
	Enrich(ctx context.Context, node model.Node) (*qasm.Fragment, Meta, error)
}

// Inline is the trivial strategy: the frontend already embedded the
// implementation in the node.
type Inline struct{}

// Enrich returns the node's inline fragment.
func (Inline) Enrich(_ context.Context, node model.Node) (*qasm.Fragment, Meta, error) {
	if len(node.Fragment) == 0 {
		return nil, Meta{}, fmt.Errorf("node %q has no inline implementation (type %q needs an enrichment backend)", node.ID, node.Type)
	}
	frag := &qasm.Fragment{Stmts: node.Fragment}
	return frag, Meta{Width: countQubits(frag)}, nil
}

func countQubits(frag *qasm.Fragment) int {
	n := 0
	for i := range frag.Stmts {
		if frag.Stmts[i].Kind == qasm.StmtQubitDecl {
			n += frag.Stmts[i].Qubit.QubitCount()
		}
	}
	return n
}
