package model_test

import (
	"strings"
	"testing"

	"leqo/internal/diag"
	"leqo/internal/model"
)

const goodRequest = `{
  "nodes": [
    {"id": "prep", "fragment": [
      {"kind": "qubit", "name": "q", "size": 2, "annotations": [{"name": "leqo.input", "payload": "0"}]},
      {"kind": "alias", "name": "out", "value": {"kind": "ident", "name": "q"},
       "annotations": [{"name": "leqo.output", "payload": "0"}]}
    ]},
    {"id": "use", "type": "builtin.measure"}
  ],
  "edges": [
    {"source": {"node": "prep", "index": 0}, "target": {"node": "use", "index": 0}, "size": 2}
  ]
}`

func TestDecode_Good(t *testing.T) {
	req, d := model.Decode(strings.NewReader(goodRequest))
	if d != nil {
		t.Fatalf("Decode: %v", d)
	}
	if len(req.Nodes) != 2 || len(req.Edges) != 1 {
		t.Fatalf("decoded shape: %d nodes, %d edges", len(req.Nodes), len(req.Edges))
	}
	if len(req.Nodes[0].Fragment) != 2 {
		t.Fatalf("inline fragment lost: %v", req.Nodes[0].Fragment)
	}
	if req.Edges[0].Size != 2 {
		t.Fatalf("size hint lost: %v", req.Edges[0])
	}
}

func TestDecode_UnknownFieldRejected(t *testing.T) {
	_, d := model.Decode(strings.NewReader(`{"nodes": [], "extras": true}`))
	if d == nil || d.Code != diag.ModelBadRequest {
		t.Fatalf("want ModelBadRequest, got %v", d)
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	req := &model.Request{Nodes: []model.Node{{ID: "a"}, {ID: "a"}}}
	if d := req.Validate(); d == nil || d.Code != diag.ModelBadRequest {
		t.Fatalf("want ModelBadRequest, got %v", d)
	}
}

func TestValidate_NormalizesEquivalentIDs(t *testing.T) {
	// NFC and NFD spellings of the same identifier collapse to one node.
	req := &model.Request{Nodes: []model.Node{{ID: "café"}, {ID: "café"}}}
	if d := req.Validate(); d == nil || d.Code != diag.ModelBadRequest {
		t.Fatalf("equivalent unicode ids must collide after normalization, got %v", d)
	}
}

func TestValidate_UnknownEdgeReference(t *testing.T) {
	req := &model.Request{
		Nodes: []model.Node{{ID: "a"}},
		Edges: []model.Edge{{
			Source: model.Port{Node: "a"},
			Target: model.Port{Node: "ghost"},
		}},
	}
	if d := req.Validate(); d == nil || d.Code != diag.ModelBadReference {
		t.Fatalf("want ModelBadReference, got %v", d)
	}
}

func TestValidate_NegativeValues(t *testing.T) {
	req := &model.Request{
		Nodes: []model.Node{{ID: "a"}, {ID: "b"}},
		Edges: []model.Edge{{
			Source: model.Port{Node: "a", Index: -1},
			Target: model.Port{Node: "b"},
		}},
	}
	if d := req.Validate(); d == nil || d.Code != diag.ModelBadRequest {
		t.Fatalf("want ModelBadRequest for negative index, got %v", d)
	}
	req = &model.Request{
		Nodes: []model.Node{{ID: "a"}, {ID: "b"}},
		Edges: []model.Edge{{
			Source: model.Port{Node: "a"},
			Target: model.Port{Node: "b"},
			Size:   -2,
		}},
	}
	if d := req.Validate(); d == nil || d.Code != diag.GraphSizeHintBad {
		t.Fatalf("want GraphSizeHintBad for negative size, got %v", d)
	}
}
