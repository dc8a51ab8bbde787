package model

import (
	"encoding/json"
	"io"

	"golang.org/x/text/unicode/norm"

	"leqo/internal/diag"
	"leqo/internal/qasm"
)

// Request is the frontend graph model of one compile request: fragment
// nodes plus data edges between their IO indices. Fragments arrive as
// structured AST statements; this package only decodes, it never parses
// circuit text.
type Request struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one building block of the visual graph. Inline nodes carry their
// implementation in Fragment; abstract nodes name a Type and leave the
// lookup to the enrichment stage.
type Node struct {
	ID       string          `json:"id"`
	Type     string          `json:"type,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	Fragment []qasm.Stmt     `json:"fragment,omitempty"`
}

// Port addresses one IO index of a node by frontend identifier.
type Port struct {
	Node  string `json:"node"`
	Index int    `json:"index"`
}

// Edge is a frontend data edge. Size is an optional width hint for early
// mismatch detection; it is never authoritative.
type Edge struct {
	Source Port `json:"source"`
	Target Port `json:"target"`
	Size   int  `json:"size,omitempty"`
}

// Decode reads one request from JSON and validates its surface: node ids
// must be unique and non-empty, edges must reference declared nodes, ports
// must be non-negative. Node identifiers are NFC-normalized before use since
// they end up in generated names and boundary markers.
func Decode(r io.Reader) (*Request, *diag.Diagnostic) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, diag.Errorf(diag.ModelBadRequest, "", "cannot decode request: %v", err)
	}
	if d := req.Validate(); d != nil {
		return nil, d
	}
	return &req, nil
}

// Validate checks the request surface without touching fragment semantics.
func (req *Request) Validate() *diag.Diagnostic {
	seen := make(map[string]struct{}, len(req.Nodes))
	for i := range req.Nodes {
		node := &req.Nodes[i]
		node.ID = norm.NFC.String(node.ID)
		if node.ID == "" {
			return diag.Errorf(diag.ModelBadRequest, "", "node %d has an empty id", i)
		}
		if _, dup := seen[node.ID]; dup {
			return diag.Errorf(diag.ModelBadRequest, node.ID, "node id %q appears twice", node.ID)
		}
		seen[node.ID] = struct{}{}
	}
	for i := range req.Edges {
		edge := &req.Edges[i]
		edge.Source.Node = norm.NFC.String(edge.Source.Node)
		edge.Target.Node = norm.NFC.String(edge.Target.Node)
		for _, port := range []Port{edge.Source, edge.Target} {
			if _, ok := seen[port.Node]; !ok {
				return diag.Errorf(diag.ModelBadReference, port.Node,
					"edge %d references unknown node %q", i, port.Node)
			}
			if port.Index < 0 {
				return diag.Errorf(diag.ModelBadRequest, port.Node,
					"edge %d uses negative IO index %d", i, port.Index)
			}
		}
		if edge.Size < 0 {
			return diag.Errorf(diag.GraphSizeHintBad, edge.Source.Node,
				"edge %d has negative size hint %d", i, edge.Size)
		}
	}
	return nil
}
