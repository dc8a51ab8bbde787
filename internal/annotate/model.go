package annotate

import (
	"sort"

	"leqo/internal/qasm"
)

// QubitID is a fragment-local qubit handle. Ids are assigned in declaration
// order, zero-based; a register of size N occupies N consecutive ids. Ids are
// never reused within a fragment.
type QubitID uint32

// IORef records participation of one qubit in an input or output: the IO
// index plus the qubit's position within that index's register.
type IORef struct {
	Index    int
	Position int
}

// QubitInfo carries the roles of one qubit. Invariants enforced by the
// parser: at most one of {Input, Dirty}; at most one of {Output, Reusable};
// Uncomputable implies Reusable was declared inside an uncompute block.
type QubitInfo struct {
	Input        *IORef
	Output       *IORef
	Dirty        bool
	Reusable     bool
	Uncomputable bool
}

// Binding is what one IO index resolves to: an ordered qubit id list, or a
// classical value.
type Binding struct {
	Qubits    []QubitID
	Classical string
	Type      qasm.ClassicalKind
}

// IsQubit reports whether the binding carries qubits.
func (b Binding) IsQubit() bool { return b.Classical == "" }

// Size returns the binding width; classical bindings have width 1.
func (b Binding) Size() int {
	if !b.IsQubit() {
		return 1
	}
	return len(b.Qubits)
}

// Model is the per-fragment annotation bookkeeping: declared instances, their
// IO/ancilla roles, and the derived supply/demand pools. Immutable after the
// parser returns it.
type Model struct {
	// Name is the frontend identifier of the fragment, used in diagnostics.
	Name string

	// NameToIDs maps every qubit declaration and qubit alias to the ordered
	// ids it denotes.
	NameToIDs map[string][]QubitID
	// Declared lists qubit declaration names in declaration order.
	Declared []string
	// Classical maps classical declaration names to their type.
	Classical map[string]qasm.ClassicalKind

	// Info holds per-qubit role data for every allocated id.
	Info map[QubitID]*QubitInfo

	// Inputs and Outputs map IO indices to their resolved bindings. Indices
	// are contiguous from 0.
	Inputs  map[int]Binding
	Outputs map[int]Binding

	// QubitCount is the total number of ids allocated by the fragment.
	QubitCount int

	// HasUncompute reports whether the fragment carries an uncompute block.
	HasUncompute bool

	// Derived pools, ordered by ascending id.
	RequiredDirty        []QubitID // declared @dirty: caller supplies any qubits
	RequiredReusable     []QubitID // non-input, non-dirty declarations: clean ancilla demand
	ReturnedDirty        []QubitID // no output/reusable role: garbage left for the caller
	ReturnedReusable     []QubitID // guaranteed clean on exit
	ReturnedUncomputable []QubitID // clean only if the uncompute block runs
}

// IDs returns every allocated id in ascending order.
func (m *Model) IDs() []QubitID {
	out := make([]QubitID, 0, m.QubitCount)
	for id := range m.Info {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InputBinding returns the binding of one input index.
func (m *Model) InputBinding(idx int) (Binding, bool) {
	b, ok := m.Inputs[idx]
	return b, ok
}

// OutputBinding returns the binding of one output index.
func (m *Model) OutputBinding(idx int) (Binding, bool) {
	b, ok := m.Outputs[idx]
	return b, ok
}

// computePools derives the supply/demand pools from Info. Called once by the
// parser; pools are immutable afterwards.
func (m *Model) computePools() {
	for _, id := range m.IDs() {
		info := m.Info[id]
		switch {
		case info.Dirty:
			m.RequiredDirty = append(m.RequiredDirty, id)
		case info.Input == nil:
			m.RequiredReusable = append(m.RequiredReusable, id)
		}
		switch {
		case info.Uncomputable:
			m.ReturnedUncomputable = append(m.ReturnedUncomputable, id)
		case info.Reusable:
			m.ReturnedReusable = append(m.ReturnedReusable, id)
		case info.Output == nil:
			m.ReturnedDirty = append(m.ReturnedDirty, id)
		}
	}
}
