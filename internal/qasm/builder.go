package qasm

// Statement constructors. Fragments are always built programmatically (by the
// frontend decoder, by enrichment, or by tests), so the constructors double
// as the package's public building surface.

// QubitDecl returns `qubit[size] name;` for size > 0 or the sized form the
// caller asked for.
func QubitDecl(name string, size int) Stmt {
	return Stmt{Kind: StmtQubitDecl, Qubit: QubitDeclStmt{Name: name, Size: size, HasSize: true}}
}

// SingleQubitDecl returns `qubit name;`.
func SingleQubitDecl(name string) Stmt {
	return Stmt{Kind: StmtQubitDecl, Qubit: QubitDeclStmt{Name: name}}
}

// ClassicalDecl returns an uninitialized classical declaration.
func ClassicalDecl(kind ClassicalKind, name string) Stmt {
	return Stmt{Kind: StmtClassicalDecl, Classical: ClassicalDeclStmt{Type: kind, Name: name}}
}

// ClassicalDeclInit returns a classical declaration with an initializer.
func ClassicalDeclInit(kind ClassicalKind, name string, init Expr) Stmt {
	return Stmt{Kind: StmtClassicalDecl, Classical: ClassicalDeclStmt{Type: kind, Name: name, HasInit: true, Init: init}}
}

// Alias returns `let name = value;`.
func Alias(name string, value Expr) Stmt {
	return Stmt{Kind: StmtAlias, Alias: AliasStmt{Name: name, Value: value}}
}

// Assign returns `target = value;`.
func Assign(target, value Expr) Stmt {
	return Stmt{Kind: StmtAssign, Assign: AssignStmt{Target: target, Value: value}}
}

// Gate returns `name operands...;`.
func Gate(name string, operands ...Expr) Stmt {
	return Stmt{Kind: StmtGate, Gate: GateStmt{Name: name, Operands: operands}}
}

// GateP returns `name(params...) operands...;`.
func GateP(name string, params []Expr, operands ...Expr) Stmt {
	return Stmt{Kind: StmtGate, Gate: GateStmt{Name: name, Params: params, Operands: operands}}
}

// Measure returns `target = measure source;`.
func Measure(target, source Expr) Stmt {
	return Stmt{Kind: StmtMeasure, Measure: MeasureStmt{Target: target, Source: source}}
}

// Reset returns `reset target;`.
func Reset(target Expr) Stmt {
	return Stmt{Kind: StmtReset, Reset: ResetStmt{Target: target}}
}

// Barrier returns `barrier operands...;`.
func Barrier(operands ...Expr) Stmt {
	return Stmt{Kind: StmtBarrier, Barrier: BarrierStmt{Operands: operands}}
}

// Branch returns `if (cond) { then }`.
func Branch(cond Expr, then []Stmt) Stmt {
	return Stmt{Kind: StmtBranch, Branch: BranchStmt{Cond: cond, Then: then}}
}

// BranchElse returns `if (cond) { then } else { els }`.
func BranchElse(cond Expr, then, els []Stmt) Stmt {
	return Stmt{Kind: StmtBranch, Branch: BranchStmt{Cond: cond, Then: then, HasElse: true, Else: els}}
}

// Comment returns an emitted `// text` line.
func Comment(text string) Stmt {
	return Stmt{Kind: StmtComment, Comment: CommentStmt{Text: text}}
}

// Annotate returns stmt with annotations appended.
func Annotate(stmt Stmt, anns ...Annotation) Stmt {
	stmt.Annotations = append(stmt.Annotations, anns...)
	return stmt
}
