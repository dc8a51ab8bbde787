package qasm

// ClassicalKind enumerates supported classical declaration types.
type ClassicalKind uint8

const (
	// ClassicalBit is a single bit or bit register.
	ClassicalBit ClassicalKind = iota
	// ClassicalInt is a signed integer.
	ClassicalInt
	// ClassicalFloat is a floating point value.
	ClassicalFloat
	// ClassicalBool is a boolean.
	ClassicalBool
)

func (k ClassicalKind) String() string {
	switch k {
	case ClassicalBit:
		return "bit"
	case ClassicalInt:
		return "int"
	case ClassicalFloat:
		return "float"
	case ClassicalBool:
		return "bool"
	}
	return "unknown"
}

// StmtKind enumerates statement kinds in fragment ASTs.
type StmtKind uint8

const (
	// StmtQubitDecl declares a qubit or qubit register.
	StmtQubitDecl StmtKind = iota
	// StmtClassicalDecl declares a classical value.
	StmtClassicalDecl
	// StmtAlias binds a name to a register expression via let.
	StmtAlias
	// StmtAssign assigns to a classical target.
	StmtAssign
	// StmtGate applies a gate.
	StmtGate
	// StmtMeasure measures into a classical target.
	StmtMeasure
	// StmtReset resets qubits to |0>.
	StmtReset
	// StmtBarrier is a scheduling barrier.
	StmtBarrier
	// StmtBranch is an if statement with an optional else arm.
	StmtBranch
	// StmtComment is a line comment kept through printing.
	StmtComment
)

// Stmt is a closed tagged-variant statement node. Kind selects the payload.
type Stmt struct {
	Kind        StmtKind
	Annotations []Annotation

	Qubit     QubitDeclStmt
	Classical ClassicalDeclStmt
	Alias     AliasStmt
	Assign    AssignStmt
	Gate      GateStmt
	Measure   MeasureStmt
	Reset     ResetStmt
	Barrier   BarrierStmt
	Branch    BranchStmt
	Comment   CommentStmt
}

// QubitDeclStmt declares `qubit name` or `qubit[Size] name`.
type QubitDeclStmt struct {
	Name    string
	Size    int
	HasSize bool
}

// QubitCount returns the number of individual qubits the declaration covers.
func (d QubitDeclStmt) QubitCount() int {
	if d.HasSize {
		return d.Size
	}
	return 1
}

// ClassicalDeclStmt declares a classical value, optionally initialized.
type ClassicalDeclStmt struct {
	Type     ClassicalKind
	Width    int
	HasWidth bool
	Name     string
	HasInit  bool
	Init     Expr
}

// AliasStmt binds `let Name = Value`.
type AliasStmt struct {
	Name  string
	Value Expr
}

// AssignStmt assigns Value to the classical Target.
type AssignStmt struct {
	Target Expr
	Value  Expr
}

// GateStmt applies Name(Params...) to Operands.
type GateStmt struct {
	Name     string
	Params   []Expr
	Operands []Expr
}

// MeasureStmt is `Target = measure Source;`.
type MeasureStmt struct {
	Target Expr
	Source Expr
}

// ResetStmt resets Target.
type ResetStmt struct {
	Target Expr
}

// BarrierStmt is a barrier over Operands (all qubits when empty).
type BarrierStmt struct {
	Operands []Expr
}

// BranchStmt is `if (Cond) { Then } else { Else }`.
type BranchStmt struct {
	Cond    Expr
	Then    []Stmt
	HasElse bool
	Else    []Stmt
}

// CommentStmt is an emitted line comment.
type CommentStmt struct {
	Text string
}

// Fragment is one node's statement list. Fragments arrive already parsed;
// this package never consumes circuit text.
type Fragment struct {
	Stmts []Stmt
}

// Clone returns a deep copy of the fragment.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	return &Fragment{Stmts: cloneStmts(f.Stmts)}
}

func cloneStmts(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]Stmt, len(stmts))
	copy(out, stmts)
	for i := range out {
		if out[i].Annotations != nil {
			ann := make([]Annotation, len(out[i].Annotations))
			copy(ann, out[i].Annotations)
			out[i].Annotations = ann
		}
		if out[i].Kind == StmtBranch {
			out[i].Branch.Then = cloneStmts(out[i].Branch.Then)
			out[i].Branch.Else = cloneStmts(out[i].Branch.Else)
		}
	}
	return out
}

// Program is the merged top-level output.
type Program struct {
	Version  string
	Includes []string
	Stmts    []Stmt
}

// DefaultVersion is the version header emitted for merged programs.
const DefaultVersion = "3.1"

// NewProgram returns an empty program with the default version header.
func NewProgram() *Program {
	return &Program{Version: DefaultVersion}
}
