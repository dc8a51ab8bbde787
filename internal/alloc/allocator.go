package alloc

import (
	"sort"

	"leqo/internal/annotate"
	"leqo/internal/diag"
	"leqo/internal/graph"
)

// DefaultRegisterName is the shared register every fragment is rewritten
// onto. Branch merging substitutes a branch-scoped name instead.
const DefaultRegisterName = "leqo_reg"

// Options configure one allocation run.
type Options struct {
	// RegisterName overrides DefaultRegisterName when non-empty.
	RegisterName string
}

// Allocator computes the global register layout of one graph via dataflow
// equivalence classes and rewrites every fragment's qubit declarations into
// register-slice aliases. It is an explicit stateful object: the union-find
// table and the class numbering live in fields and are built up by Allocate.
// An Allocator is single-use and not restartable mid-way.
type Allocator struct {
	g    *graph.Graph
	name string

	uf     *unionFind
	keys   []SingleQubit       // all keys, lexicographic order
	index  map[SingleQubit]int // class representative -> global register index
	rewire map[graph.NodeID]map[string]string
	size   int
	done   bool
}

// New returns an allocator over g.
func New(g *graph.Graph, opts Options) *Allocator {
	name := opts.RegisterName
	if name == "" {
		name = DefaultRegisterName
	}
	return &Allocator{
		g:      g,
		name:   name,
		uf:     newUnionFind(),
		index:  make(map[SingleQubit]int),
		rewire: make(map[graph.NodeID]map[string]string),
	}
}

// RegisterName returns the register the allocator rewrites onto.
func (a *Allocator) RegisterName() string { return a.name }

// Allocate computes equivalence classes over all qubit slots, numbers them
// deterministically and rewrites every node's declarations. It returns the
// total register size. All AST rewrites are buffered and committed only when
// the whole pass succeeds, so a failed allocation leaves no partial state in
// the graph.
func (a *Allocator) Allocate() (int, *diag.Diagnostic) {
	if a.done {
		return 0, diag.Internalf(diag.InternalUnionFind, "allocator is single-use, Allocate called twice")
	}
	a.collectKeys()
	if d := a.unionDataEdges(); d != nil {
		return 0, d
	}
	if d := a.unionAncillaEdges(); d != nil {
		return 0, d
	}
	a.numberClasses()
	rewrites, d := a.buildRewrites()
	if d != nil {
		return 0, d
	}
	for node, stmts := range rewrites {
		a.g.Fragment(node).Stmts = stmts
	}
	a.done = true
	return a.size, nil
}

// Size returns the register size computed by Allocate.
func (a *Allocator) Size() int { return a.size }

// GlobalIndex resolves one local qubit slot to its register index. Only
// meaningful after Allocate succeeded.
func (a *Allocator) GlobalIndex(node graph.NodeID, qubit annotate.QubitID) (int, bool) {
	key := SingleQubit{Node: node, Qubit: qubit}
	if !a.uf.has(key) {
		return 0, false
	}
	idx, ok := a.index[a.uf.find(key)]
	return idx, ok
}

// BindingIndices maps a qubit binding of node to its ordered global register
// indices. Classical bindings yield nil.
func (a *Allocator) BindingIndices(node graph.NodeID, b annotate.Binding) []int {
	if !b.IsQubit() {
		return nil
	}
	out := make([]int, 0, len(b.Qubits))
	for _, q := range b.Qubits {
		idx, ok := a.GlobalIndex(node, q)
		if !ok {
			return nil
		}
		out = append(out, idx)
	}
	return out
}

func (a *Allocator) collectKeys() {
	for _, node := range a.g.Nodes() {
		model := a.g.Model(node)
		if model == nil {
			continue
		}
		for _, q := range model.IDs() {
			key := SingleQubit{Node: node, Qubit: q}
			a.uf.makeSet(key)
			a.keys = append(a.keys, key)
		}
	}
	sort.Slice(a.keys, func(i, j int) bool { return a.keys[i].less(a.keys[j]) })
}

func (a *Allocator) unionDataEdges() *diag.Diagnostic {
	for _, conn := range a.g.IOConnections() {
		srcName := a.g.Name(conn.Source.Node)
		dstName := a.g.Name(conn.Target.Node)
		srcModel := a.g.Model(conn.Source.Node)
		dstModel := a.g.Model(conn.Target.Node)

		out, ok := srcModel.OutputBinding(conn.Source.Index)
		if !ok {
			return diag.Errorf(diag.GraphUnknownOutput, srcName,
				"node %q has no output %d", srcName, conn.Source.Index).
				WithNote(dstName, "connection targets this node")
		}
		in, ok := dstModel.InputBinding(conn.Target.Index)
		if !ok {
			return diag.Errorf(diag.GraphUnknownInput, dstName,
				"node %q has no input %d", dstName, conn.Target.Index).
				WithNote(srcName, "connection originates here")
		}

		switch {
		case out.IsQubit() && in.IsQubit():
			if len(out.Qubits) != len(in.Qubits) {
				return diag.Errorf(diag.AllocSizeMismatch, dstName,
					"output %d of %q has %d qubits but input %d of %q has %d",
					conn.Source.Index, srcName, len(out.Qubits),
					conn.Target.Index, dstName, len(in.Qubits)).
					WithNote(srcName, "connection originates here")
			}
			for i := range out.Qubits {
				a.uf.union(
					SingleQubit{Node: conn.Source.Node, Qubit: out.Qubits[i]},
					SingleQubit{Node: conn.Target.Node, Qubit: in.Qubits[i]},
				)
			}
		case !out.IsQubit() && !in.IsQubit():
			if out.Type != in.Type {
				return diag.Errorf(diag.AllocClassicalKindClash, dstName,
					"output %d of %q is %s but input %d of %q is %s",
					conn.Source.Index, srcName, out.Type,
					conn.Target.Index, dstName, in.Type).
					WithNote(srcName, "connection originates here")
			}
			wires := a.rewire[conn.Target.Node]
			if wires == nil {
				wires = make(map[string]string)
				a.rewire[conn.Target.Node] = wires
			}
			wires[in.Classical] = out.Classical
		default:
			return diag.Errorf(diag.AllocTypeMismatch, dstName,
				"output %d of %q and input %d of %q disagree on quantum vs classical",
				conn.Source.Index, srcName, conn.Target.Index, dstName).
				WithNote(srcName, "connection originates here")
		}
	}
	return nil
}

func (a *Allocator) unionAncillaEdges() *diag.Diagnostic {
	for _, conn := range a.g.AncillaConnections() {
		if len(conn.SourceIDs) != len(conn.TargetIDs) {
			return diag.Internalf(diag.InternalUnionFind,
				"ancilla edge %q -> %q has mismatched id lists (%d vs %d)",
				a.g.Name(conn.Source), a.g.Name(conn.Target),
				len(conn.SourceIDs), len(conn.TargetIDs))
		}
		for i := range conn.SourceIDs {
			src := SingleQubit{Node: conn.Source, Qubit: conn.SourceIDs[i]}
			dst := SingleQubit{Node: conn.Target, Qubit: conn.TargetIDs[i]}
			if !a.uf.has(src) || !a.uf.has(dst) {
				return diag.Internalf(diag.InternalUnionFind,
					"ancilla edge %q -> %q references unknown qubit ids",
					a.g.Name(conn.Source), a.g.Name(conn.Target))
			}
			a.uf.union(src, dst)
		}
	}
	return nil
}

// numberClasses assigns global register indices. Keys are visited in
// lexicographic order, so a class gets its index at its smallest member and
// the numbering is reproducible for identical input graphs.
func (a *Allocator) numberClasses() {
	next := 0
	for _, key := range a.keys {
		root := a.uf.find(key)
		if _, assigned := a.index[root]; !assigned {
			a.index[root] = next
			next++
		}
	}
	a.size = next
}
