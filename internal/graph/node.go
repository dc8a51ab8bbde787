package graph

import (
	"leqo/internal/annotate"
)

// NodeID is the arena handle of one fragment node. IDs are 1-based; the zero
// value is the "no node" sentinel, so a NodeID can be stored in maps and
// structs without an extra validity flag.
type NodeID uint32

// NoNodeID is the invalid sentinel.
const NoNodeID NodeID = 0

// IsValid reports whether the id refers to a node.
func (id NodeID) IsValid() bool { return id != NoNodeID }

// Endpoint addresses one IO index of a node.
type Endpoint struct {
	Node  NodeID
	Index int
}

// IOConnection is a frontend data edge: one output index feeding one input
// index. SizeHint is an optional width the frontend attached for early
// mismatch detection; zero means no hint. The hint is never authoritative,
// the annotation model decides actual widths.
type IOConnection struct {
	Source   Endpoint
	Target   Endpoint
	SizeHint int
}

// AncillaConnection is a scheduler-produced edge handing qubits from an
// earlier-processed node to a later one. Source and target id lists have
// equal length and correspond positionally.
type AncillaConnection struct {
	Source    NodeID
	Target    NodeID
	SourceIDs []annotate.QubitID
	TargetIDs []annotate.QubitID
}
