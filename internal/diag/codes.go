package diag

import (
	"fmt"
)

type Code uint16

const (
	// Fallback for errors without a proper code yet.
	UnknownCode Code = 0

	// Annotation parsing (per-fragment model construction)
	AnnInfo                   Code = 1000
	AnnDuplicateAnnotation    Code = 1001
	AnnConflictingAnnotation  Code = 1002
	AnnBadPayload             Code = 1003
	AnnInputIndexReused       Code = 1004
	AnnInputIndexGap          Code = 1005
	AnnOutputIndexReused      Code = 1006
	AnnOutputIndexGap         Code = 1007
	AnnAnnotationOnDecl       Code = 1008
	AnnAnnotationOnAlias      Code = 1009
	AnnUnresolvedIdentifier   Code = 1010
	AnnDuplicateDeclaration   Code = 1011
	AnnNestedUncompute        Code = 1012
	AnnUncomputeWithElse      Code = 1013
	AnnOutputInUncompute      Code = 1014
	AnnBadIndexExpr           Code = 1015
	AnnPositionOutOfRange     Code = 1016
	AnnNotAQubit              Code = 1017
	AnnDeclInBranch           Code = 1018
	AnnMisplacedAnnotation    Code = 1019

	// Graph construction and validation
	GraphInfo            Code = 2000
	GraphUnknownNode     Code = 2001
	GraphDuplicateNode   Code = 2002
	GraphUnknownOutput   Code = 2003
	GraphUnknownInput    Code = 2004
	GraphInputContested  Code = 2005
	GraphSizeHintBad     Code = 2006
	GraphTooLarge        Code = 2007

	// Register allocation
	AllocInfo               Code = 3000
	AllocSizeMismatch       Code = 3001
	AllocTypeMismatch       Code = 3002
	AllocClassicalKindClash Code = 3003
	AllocReservedName       Code = 3004

	// Ancilla scheduling
	SchedInfo          Code = 4000
	SchedUnsatisfiable Code = 4001

	// Program / branch merging
	MergeInfo             Code = 5000
	MergeClassicalEscape  Code = 5001
	MergeArmBindingClash  Code = 5002
	MergeBorderMissing    Code = 5003
	MergeBorderLayout     Code = 5004

	// Model decoding (frontend request)
	ModelInfo         Code = 6000
	ModelBadRequest   Code = 6001
	ModelUnknownKind  Code = 6002
	ModelBadReference Code = 6003

	// Internal invariants; these indicate a bug, not bad caller input.
	InternalInfo          Code = 9000
	InternalCycle         Code = 9001
	InternalUnionFind     Code = 9002
	InternalPoolCorrupted Code = 9003
)

func (c Code) String() string {
	return fmt.Sprintf("LQ%04d", uint16(c))
}

// IsInternal reports whether the code denotes a compiler bug rather than a
// problem with caller input.
func (c Code) IsInternal() bool {
	return c >= InternalInfo
}
