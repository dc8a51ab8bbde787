package annotate

import (
	"fmt"
	"sort"

	"leqo/internal/diag"
	"leqo/internal/qasm"
)

// Parse walks one fragment's AST and builds its annotation model. node is the
// frontend identifier used in diagnostics. Parse fails fast: the first
// violated fragment-local invariant wins.
func Parse(node string, frag *qasm.Fragment) (*Model, *diag.Diagnostic) {
	p := &parser{
		node: node,
		model: &Model{
			Name:      node,
			NameToIDs: make(map[string][]QubitID),
			Classical: make(map[string]qasm.ClassicalKind),
			Info:      make(map[QubitID]*QubitInfo),
			Inputs:    make(map[int]Binding),
			Outputs:   make(map[int]Binding),
		},
	}
	for i := range frag.Stmts {
		if d := p.topLevel(&frag.Stmts[i]); d != nil {
			return nil, d
		}
	}
	if d := p.checkContiguous(); d != nil {
		return nil, d
	}
	p.model.QubitCount = int(p.next)
	p.model.computePools()
	return p.model, nil
}

type parser struct {
	node  string
	model *Model
	next  QubitID
}

func (p *parser) topLevel(stmt *qasm.Stmt) *diag.Diagnostic {
	switch stmt.Kind {
	case qasm.StmtQubitDecl:
		return p.qubitDecl(stmt)
	case qasm.StmtClassicalDecl:
		return p.classicalDecl(stmt)
	case qasm.StmtAlias:
		return p.alias(stmt, false)
	case qasm.StmtBranch:
		if _, ok := qasm.FindAnnotation(stmt, qasm.AnnotationUncompute); ok {
			return p.uncomputeBlock(stmt)
		}
		return p.plainBranch(stmt)
	default:
		return p.rejectLeqoAnnotations(stmt)
	}
}

// leqoAnnotations validates that each merger annotation appears at most once
// and returns them keyed by name.
func (p *parser) leqoAnnotations(stmt *qasm.Stmt) (map[string]qasm.Annotation, *diag.Diagnostic) {
	out := make(map[string]qasm.Annotation, len(stmt.Annotations))
	for _, a := range stmt.Annotations {
		if !a.IsLeqo() {
			continue
		}
		if _, dup := out[a.Name]; dup {
			return nil, diag.Errorf(diag.AnnDuplicateAnnotation, p.node,
				"annotation @%s appears twice on one statement", a.Name)
		}
		out[a.Name] = a
	}
	return out, nil
}

func (p *parser) declareName(name string) *diag.Diagnostic {
	if _, ok := p.model.NameToIDs[name]; ok {
		return diag.Errorf(diag.AnnDuplicateDeclaration, p.node, "name %q declared twice", name)
	}
	if _, ok := p.model.Classical[name]; ok {
		return diag.Errorf(diag.AnnDuplicateDeclaration, p.node, "name %q declared twice", name)
	}
	return nil
}

func (p *parser) qubitDecl(stmt *qasm.Stmt) *diag.Diagnostic {
	decl := stmt.Qubit
	if d := p.declareName(decl.Name); d != nil {
		return d
	}
	anns, d := p.leqoAnnotations(stmt)
	if d != nil {
		return d
	}
	for name := range anns {
		switch name {
		case qasm.AnnotationInput, qasm.AnnotationDirty:
		case qasm.AnnotationOutput, qasm.AnnotationReusable:
			return diag.Errorf(diag.AnnAnnotationOnDecl, p.node,
				"@%s is only valid on an alias, not on declaration %q", name, decl.Name)
		default:
			return diag.Errorf(diag.AnnMisplacedAnnotation, p.node,
				"@%s is not valid on declaration %q", name, decl.Name)
		}
	}
	inputAnn, hasInput := anns[qasm.AnnotationInput]
	dirtyAnn, hasDirty := anns[qasm.AnnotationDirty]
	if hasInput && hasDirty {
		return diag.Errorf(diag.AnnConflictingAnnotation, p.node,
			"declaration %q carries both @%s and @%s", decl.Name, qasm.AnnotationInput, qasm.AnnotationDirty)
	}

	count := decl.QubitCount()
	ids := make([]QubitID, count)
	for i := 0; i < count; i++ {
		ids[i] = p.next
		p.model.Info[p.next] = &QubitInfo{}
		p.next++
	}
	p.model.NameToIDs[decl.Name] = ids
	p.model.Declared = append(p.model.Declared, decl.Name)

	if hasInput {
		idx, err := qasm.ParseIOIndex(inputAnn.Payload)
		if err != nil {
			return diag.Errorf(diag.AnnBadPayload, p.node,
				"bad @%s payload on %q: %v", qasm.AnnotationInput, decl.Name, err)
		}
		if _, taken := p.model.Inputs[idx]; taken {
			return diag.Errorf(diag.AnnInputIndexReused, p.node, "input index %d declared twice", idx)
		}
		p.model.Inputs[idx] = Binding{Qubits: ids}
		for pos, id := range ids {
			p.model.Info[id].Input = &IORef{Index: idx, Position: pos}
		}
	}
	if hasDirty {
		positions, err := qasm.ParseIndexList(dirtyAnn.Payload)
		if err != nil {
			return diag.Errorf(diag.AnnBadPayload, p.node,
				"bad @%s payload on %q: %v", qasm.AnnotationDirty, decl.Name, err)
		}
		if positions == nil {
			for _, id := range ids {
				p.model.Info[id].Dirty = true
			}
		} else {
			for _, pos := range positions {
				if pos >= count {
					return diag.Errorf(diag.AnnPositionOutOfRange, p.node,
						"@%s position %d exceeds size %d of %q", qasm.AnnotationDirty, pos, count, decl.Name)
				}
				p.model.Info[ids[pos]].Dirty = true
			}
		}
	}
	return nil
}

func (p *parser) classicalDecl(stmt *qasm.Stmt) *diag.Diagnostic {
	decl := stmt.Classical
	if d := p.declareName(decl.Name); d != nil {
		return d
	}
	anns, d := p.leqoAnnotations(stmt)
	if d != nil {
		return d
	}
	for name := range anns {
		switch name {
		case qasm.AnnotationInput, qasm.AnnotationOutput:
		default:
			return diag.Errorf(diag.AnnNotAQubit, p.node,
				"@%s is not valid on classical declaration %q", name, decl.Name)
		}
	}
	p.model.Classical[decl.Name] = decl.Type

	if a, ok := anns[qasm.AnnotationInput]; ok {
		idx, err := qasm.ParseIOIndex(a.Payload)
		if err != nil {
			return diag.Errorf(diag.AnnBadPayload, p.node,
				"bad @%s payload on %q: %v", qasm.AnnotationInput, decl.Name, err)
		}
		if _, taken := p.model.Inputs[idx]; taken {
			return diag.Errorf(diag.AnnInputIndexReused, p.node, "input index %d declared twice", idx)
		}
		p.model.Inputs[idx] = Binding{Classical: decl.Name, Type: decl.Type}
	}
	if a, ok := anns[qasm.AnnotationOutput]; ok {
		idx, err := qasm.ParseIOIndex(a.Payload)
		if err != nil {
			return diag.Errorf(diag.AnnBadPayload, p.node,
				"bad @%s payload on %q: %v", qasm.AnnotationOutput, decl.Name, err)
		}
		if _, taken := p.model.Outputs[idx]; taken {
			return diag.Errorf(diag.AnnOutputIndexReused, p.node, "output index %d declared twice", idx)
		}
		p.model.Outputs[idx] = Binding{Classical: decl.Name, Type: decl.Type}
	}
	return nil
}

func (p *parser) alias(stmt *qasm.Stmt, inUncompute bool) *diag.Diagnostic {
	al := stmt.Alias
	if d := p.declareName(al.Name); d != nil {
		return d
	}
	anns, d := p.leqoAnnotations(stmt)
	if d != nil {
		return d
	}
	for name := range anns {
		switch name {
		case qasm.AnnotationOutput, qasm.AnnotationReusable:
		case qasm.AnnotationInput, qasm.AnnotationDirty:
			return diag.Errorf(diag.AnnAnnotationOnAlias, p.node,
				"@%s is only valid on a declaration, not on alias %q", name, al.Name)
		default:
			return diag.Errorf(diag.AnnMisplacedAnnotation, p.node,
				"@%s is not valid on alias %q", name, al.Name)
		}
	}
	outputAnn, hasOutput := anns[qasm.AnnotationOutput]
	reusableAnn, hasReusable := anns[qasm.AnnotationReusable]
	if hasOutput && hasReusable {
		return diag.Errorf(diag.AnnConflictingAnnotation, p.node,
			"alias %q carries both @%s and @%s", al.Name, qasm.AnnotationOutput, qasm.AnnotationReusable)
	}
	if hasOutput && inUncompute {
		return diag.Errorf(diag.AnnOutputInUncompute, p.node,
			"@%s on alias %q is not allowed inside an uncompute block", qasm.AnnotationOutput, al.Name)
	}

	binding, d := p.resolve(al.Value)
	if d != nil {
		return d
	}
	if binding.IsQubit() {
		p.model.NameToIDs[al.Name] = binding.Qubits
	} else {
		// A classical alias re-exposes the same value under a new name.
		p.model.Classical[al.Name] = binding.Type
		binding.Classical = al.Name
	}

	if hasOutput {
		idx, err := qasm.ParseIOIndex(outputAnn.Payload)
		if err != nil {
			return diag.Errorf(diag.AnnBadPayload, p.node,
				"bad @%s payload on %q: %v", qasm.AnnotationOutput, al.Name, err)
		}
		if _, taken := p.model.Outputs[idx]; taken {
			return diag.Errorf(diag.AnnOutputIndexReused, p.node, "output index %d declared twice", idx)
		}
		p.model.Outputs[idx] = binding
		if binding.IsQubit() {
			for pos, id := range binding.Qubits {
				info := p.model.Info[id]
				if info.Output != nil || info.Reusable {
					return diag.Errorf(diag.AnnConflictingAnnotation, p.node,
						"qubit %d of alias %q already has an output or reusable role", id, al.Name)
				}
				info.Output = &IORef{Index: idx, Position: pos}
			}
		}
	}
	if hasReusable {
		if !binding.IsQubit() {
			return diag.Errorf(diag.AnnNotAQubit, p.node,
				"@%s is not valid on classical alias %q", qasm.AnnotationReusable, al.Name)
		}
		positions, err := qasm.ParseIndexList(reusableAnn.Payload)
		if err != nil {
			return diag.Errorf(diag.AnnBadPayload, p.node,
				"bad @%s payload on %q: %v", qasm.AnnotationReusable, al.Name, err)
		}
		ids := binding.Qubits
		if positions != nil {
			subset := make([]QubitID, 0, len(positions))
			for _, pos := range positions {
				if pos >= len(ids) {
					return diag.Errorf(diag.AnnPositionOutOfRange, p.node,
						"@%s position %d exceeds size %d of %q", qasm.AnnotationReusable, pos, len(ids), al.Name)
				}
				subset = append(subset, ids[pos])
			}
			ids = subset
		}
		for _, id := range ids {
			info := p.model.Info[id]
			if info.Output != nil || info.Reusable {
				return diag.Errorf(diag.AnnConflictingAnnotation, p.node,
					"qubit %d of alias %q already has an output or reusable role", id, al.Name)
			}
			info.Reusable = true
			if inUncompute {
				info.Uncomputable = true
			}
		}
	}
	return nil
}

// resolve maps an alias right-hand side back to the ordered qubit ids (or the
// classical value) it denotes, recursively through earlier aliases.
func (p *parser) resolve(e qasm.Expr) (Binding, *diag.Diagnostic) {
	switch e.Kind {
	case qasm.ExprIdent:
		if ids, ok := p.model.NameToIDs[e.Ident]; ok {
			out := make([]QubitID, len(ids))
			copy(out, ids)
			return Binding{Qubits: out}, nil
		}
		if kind, ok := p.model.Classical[e.Ident]; ok {
			return Binding{Classical: e.Ident, Type: kind}, nil
		}
		return Binding{}, diag.Errorf(diag.AnnUnresolvedIdentifier, p.node,
			"alias expression references undeclared name %q", e.Ident)
	case qasm.ExprIndexed:
		base, d := p.resolve(qasm.Id(e.Ident))
		if d != nil {
			return Binding{}, d
		}
		if !base.IsQubit() {
			return Binding{}, diag.Errorf(diag.AnnBadIndexExpr, p.node,
				"cannot index classical value %q in an alias expression", e.Ident)
		}
		var out []QubitID
		for _, item := range e.Index {
			positions := item.Positions()
			if positions == nil {
				return Binding{}, diag.Errorf(diag.AnnBadIndexExpr, p.node,
					"empty or malformed index on %q", e.Ident)
			}
			for _, pos := range positions {
				if pos < 0 || pos >= len(base.Qubits) {
					return Binding{}, diag.Errorf(diag.AnnPositionOutOfRange, p.node,
						"index %d exceeds size %d of %q", pos, len(base.Qubits), e.Ident)
				}
				out = append(out, base.Qubits[pos])
			}
		}
		return Binding{Qubits: out}, nil
	case qasm.ExprConcat:
		lhs, d := p.resolve(e.Args[0])
		if d != nil {
			return Binding{}, d
		}
		rhs, d := p.resolve(e.Args[1])
		if d != nil {
			return Binding{}, d
		}
		if !lhs.IsQubit() || !rhs.IsQubit() {
			return Binding{}, diag.Errorf(diag.AnnNotAQubit, p.node,
				"cannot concatenate classical values in an alias expression")
		}
		return Binding{Qubits: append(lhs.Qubits, rhs.Qubits...)}, nil
	default:
		return Binding{}, diag.Errorf(diag.AnnBadIndexExpr, p.node,
			"unsupported alias expression kind")
	}
}

// uncomputeBlock validates and walks one `@leqo.uncompute if (...) {...}`
// block. Blocks do not nest, carry no else arm and no outputs.
func (p *parser) uncomputeBlock(stmt *qasm.Stmt) *diag.Diagnostic {
	if stmt.Branch.HasElse {
		return diag.Errorf(diag.AnnUncomputeWithElse, p.node,
			"uncompute block must not have an else arm")
	}
	p.model.HasUncompute = true
	for i := range stmt.Branch.Then {
		child := &stmt.Branch.Then[i]
		switch child.Kind {
		case qasm.StmtQubitDecl, qasm.StmtClassicalDecl:
			return diag.Errorf(diag.AnnDeclInBranch, p.node,
				"declarations are not allowed inside an uncompute block")
		case qasm.StmtAlias:
			if d := p.alias(child, true); d != nil {
				return d
			}
		case qasm.StmtBranch:
			if _, ok := qasm.FindAnnotation(child, qasm.AnnotationUncompute); ok {
				return diag.Errorf(diag.AnnNestedUncompute, p.node,
					"uncompute blocks do not nest")
			}
			if d := p.plainBranch(child); d != nil {
				return d
			}
		default:
			if d := p.rejectLeqoAnnotations(child); d != nil {
				return d
			}
		}
	}
	return nil
}

// plainBranch walks a regular branch statement. Fragment-level roles cannot
// be declared under control flow, so any merger annotation inside is an
// error, as is a qubit declaration.
func (p *parser) plainBranch(stmt *qasm.Stmt) *diag.Diagnostic {
	bodies := [][]qasm.Stmt{stmt.Branch.Then}
	if stmt.Branch.HasElse {
		bodies = append(bodies, stmt.Branch.Else)
	}
	for _, body := range bodies {
		for i := range body {
			child := &body[i]
			if child.Kind == qasm.StmtQubitDecl {
				return diag.Errorf(diag.AnnDeclInBranch, p.node,
					"qubit declarations are not allowed inside a branch")
			}
			if child.Kind == qasm.StmtBranch {
				if _, ok := qasm.FindAnnotation(child, qasm.AnnotationUncompute); ok {
					return diag.Errorf(diag.AnnNestedUncompute, p.node,
						"uncompute block must be at fragment top level")
				}
				if d := p.plainBranch(child); d != nil {
					return d
				}
				continue
			}
			if d := p.rejectLeqoAnnotations(child); d != nil {
				return d
			}
		}
	}
	return nil
}

func (p *parser) rejectLeqoAnnotations(stmt *qasm.Stmt) *diag.Diagnostic {
	for _, a := range stmt.Annotations {
		if a.IsLeqo() {
			return diag.Errorf(diag.AnnMisplacedAnnotation, p.node,
				"@%s is not valid on this statement", a.Name)
		}
	}
	return nil
}

// checkContiguous enforces that input and output indices form gap-free
// ranges starting at 0.
func (p *parser) checkContiguous() *diag.Diagnostic {
	if d := contiguous(p.model.Inputs, diag.AnnInputIndexGap, "input", p.node); d != nil {
		return d
	}
	return contiguous(p.model.Outputs, diag.AnnOutputIndexGap, "output", p.node)
}

func contiguous(m map[int]Binding, code diag.Code, what, node string) *diag.Diagnostic {
	indices := make([]int, 0, len(m))
	for idx := range m {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for want, got := range indices {
		if got != want {
			return diag.Errorf(code, node,
				"%s indices must be contiguous from 0: %s", what, gapMessage(indices, want))
		}
	}
	return nil
}

func gapMessage(indices []int, at int) string {
	return fmt.Sprintf("missing index %d (declared: %v)", at, indices)
}
