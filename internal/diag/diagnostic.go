package diag

import (
	"fmt"
	"strings"
)

// Note attaches secondary context to a diagnostic, usually pointing at the
// other end of a connection.
type Note struct {
	Node string
	Msg  string
}

// Diagnostic describes one failure or warning produced by a compile pass.
// Node carries the frontend identifier of the offending fragment, empty when
// the problem is not attributable to a single node.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Node     string
	Notes    []Note
}

// Error implements the error interface so passes can return *Diagnostic
// through plain error paths. Passes fail fast: the first diagnostic wins.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)
	if d.Node != "" {
		fmt.Fprintf(&b, " (node %q)", d.Node)
	}
	for _, n := range d.Notes {
		b.WriteString("; ")
		if n.Node != "" {
			fmt.Fprintf(&b, "node %q: ", n.Node)
		}
		b.WriteString(n.Msg)
	}
	return b.String()
}

// WithNote returns d with an extra note appended.
func (d *Diagnostic) WithNote(node, msg string) *Diagnostic {
	if d == nil {
		return nil
	}
	d.Notes = append(d.Notes, Note{Node: node, Msg: msg})
	return d
}

// Errorf builds an error-severity diagnostic attributed to node.
func Errorf(code Code, node, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warningf builds a warning-severity diagnostic attributed to node.
func Warningf(code Code, node, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Internalf builds a diagnostic for a violated internal invariant. Callers
// treat these as bugs in an upstream collaborator, not as input errors.
func Internalf(code Code, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}
