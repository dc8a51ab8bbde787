package merge

import (
	"fmt"
	"strings"

	"leqo/internal/alloc"
	"leqo/internal/diag"
	"leqo/internal/graph"
	"leqo/internal/qasm"
)

// Options configure one program merge.
type Options struct {
	// RegisterName overrides the default shared register name.
	RegisterName string
	// Uncompute carries the scheduler's per-node decisions. Uncompute blocks
	// of nodes without a true flag are dropped from the output.
	Uncompute map[graph.NodeID]bool
	// Includes lists include files emitted in the program header.
	Includes []string
}

// Result reports what a merge produced alongside the program itself.
type Result struct {
	Program      *qasm.Program
	RegisterSize int
	Order        []graph.NodeID
}

// Program runs register allocation over the whole graph and concatenates
// every fragment in deterministic topological order into one program. Each
// fragment's boundary is marked with start/end comments carrying the node's
// frontend identifier; single-node graphs skip the markers so re-merging a
// merged program reproduces it exactly.
func Program(g *graph.Graph, opts Options) (*Result, *diag.Diagnostic) {
	topo := graph.ToposortKahn(g)
	if topo.Cyclic {
		names := make([]string, 0, len(topo.Cycles))
		for _, id := range topo.Cycles {
			names = append(names, g.Name(id))
		}
		return nil, diag.Internalf(diag.InternalCycle,
			"dataflow graph has a cycle through %s", strings.Join(names, " -> "))
	}

	allocator := alloc.New(g, alloc.Options{RegisterName: opts.RegisterName})
	size, d := allocator.Allocate()
	if d != nil {
		return nil, d
	}

	program := qasm.NewProgram()
	program.Includes = opts.Includes
	if size > 0 {
		program.Stmts = append(program.Stmts, qasm.QubitDecl(allocator.RegisterName(), size))
	}

	markers := g.Len() > 1
	for _, id := range topo.Order {
		frag := g.Fragment(id)
		if frag == nil {
			continue
		}
		stmts := filterUncompute(frag.Stmts, opts.Uncompute[id])
		if markers {
			program.Stmts = append(program.Stmts, qasm.Comment(fmt.Sprintf(">> node %s", g.Name(id))))
		}
		program.Stmts = append(program.Stmts, stmts...)
		if markers {
			program.Stmts = append(program.Stmts, qasm.Comment(fmt.Sprintf("<< node %s", g.Name(id))))
		}
	}

	return &Result{Program: program, RegisterSize: size, Order: topo.Order}, nil
}

// filterUncompute keeps or drops uncompute blocks per the scheduler's
// decision, stripping the marker annotation from kept blocks.
func filterUncompute(stmts []qasm.Stmt, keep bool) []qasm.Stmt {
	return qasm.RewriteStmts(stmts, func(stmt *qasm.Stmt) (qasm.RewriteAction, []qasm.Stmt) {
		if stmt.Kind != qasm.StmtBranch {
			return qasm.RewriteKeep, nil
		}
		if _, ok := qasm.FindAnnotation(stmt, qasm.AnnotationUncompute); !ok {
			return qasm.RewriteKeep, nil
		}
		if !keep {
			return qasm.RewriteRemove, nil
		}
		copied := *stmt
		qasm.StripLeqoAnnotations(&copied)
		return qasm.RewriteReplace, []qasm.Stmt{copied}
	})
}
