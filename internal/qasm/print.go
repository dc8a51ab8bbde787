package qasm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Print writes the program as OpenQASM 3 source text. Output is fully
// deterministic: identical programs print to identical text.
func (p *Program) Print(w io.Writer) error {
	pr := printer{w: w}
	if p.Version != "" {
		pr.linef("OPENQASM %s;", p.Version)
	}
	for _, inc := range p.Includes {
		pr.linef("include %q;", inc)
	}
	if p.Version != "" || len(p.Includes) > 0 {
		pr.linef("")
	}
	pr.stmts(p.Stmts, 0)
	return pr.err
}

// String renders the program to a string, ignoring write errors.
func (p *Program) String() string {
	var b strings.Builder
	_ = p.Print(&b)
	return b.String()
}

// PrintStmts writes a statement list at the given indent level.
func PrintStmts(w io.Writer, stmts []Stmt, indent int) error {
	pr := printer{w: w}
	pr.stmts(stmts, indent)
	return pr.err
}

// StmtsString renders a statement list to a string.
func StmtsString(stmts []Stmt) string {
	var b strings.Builder
	_ = PrintStmts(&b, stmts, 0)
	return b.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) stmts(stmts []Stmt, indent int) {
	for i := range stmts {
		p.stmt(&stmts[i], indent)
	}
}

func (p *printer) stmt(s *Stmt, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, a := range s.Annotations {
		if a.Payload != "" {
			p.linef("%s@%s %s", pad, a.Name, a.Payload)
		} else {
			p.linef("%s@%s", pad, a.Name)
		}
	}
	switch s.Kind {
	case StmtQubitDecl:
		if s.Qubit.HasSize {
			p.linef("%squbit[%d] %s;", pad, s.Qubit.Size, s.Qubit.Name)
		} else {
			p.linef("%squbit %s;", pad, s.Qubit.Name)
		}
	case StmtClassicalDecl:
		ty := s.Classical.Type.String()
		if s.Classical.HasWidth {
			ty = fmt.Sprintf("%s[%d]", ty, s.Classical.Width)
		}
		if s.Classical.HasInit {
			p.linef("%s%s %s = %s;", pad, ty, s.Classical.Name, ExprString(s.Classical.Init))
		} else {
			p.linef("%s%s %s;", pad, ty, s.Classical.Name)
		}
	case StmtAlias:
		p.linef("%slet %s = %s;", pad, s.Alias.Name, ExprString(s.Alias.Value))
	case StmtAssign:
		p.linef("%s%s = %s;", pad, ExprString(s.Assign.Target), ExprString(s.Assign.Value))
	case StmtGate:
		var b strings.Builder
		b.WriteString(s.Gate.Name)
		if len(s.Gate.Params) > 0 {
			b.WriteString("(")
			for i, param := range s.Gate.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(ExprString(param))
			}
			b.WriteString(")")
		}
		for i, op := range s.Gate.Operands {
			if i == 0 {
				b.WriteString(" ")
			} else {
				b.WriteString(", ")
			}
			b.WriteString(ExprString(op))
		}
		p.linef("%s%s;", pad, b.String())
	case StmtMeasure:
		p.linef("%s%s = measure %s;", pad, ExprString(s.Measure.Target), ExprString(s.Measure.Source))
	case StmtReset:
		p.linef("%sreset %s;", pad, ExprString(s.Reset.Target))
	case StmtBarrier:
		if len(s.Barrier.Operands) == 0 {
			p.linef("%sbarrier;", pad)
			return
		}
		parts := make([]string, len(s.Barrier.Operands))
		for i, op := range s.Barrier.Operands {
			parts[i] = ExprString(op)
		}
		p.linef("%sbarrier %s;", pad, strings.Join(parts, ", "))
	case StmtBranch:
		p.linef("%sif (%s) {", pad, ExprString(s.Branch.Cond))
		p.stmts(s.Branch.Then, indent+1)
		if s.Branch.HasElse {
			p.linef("%s} else {", pad)
			p.stmts(s.Branch.Else, indent+1)
		}
		p.linef("%s}", pad)
	case StmtComment:
		p.linef("%s// %s", pad, s.Comment.Text)
	}
}

// ExprString renders one expression.
func ExprString(e Expr) string {
	switch e.Kind {
	case ExprIdent:
		return e.Ident
	case ExprIndexed:
		parts := make([]string, len(e.Index))
		for i, it := range e.Index {
			parts[i] = indexItemString(it)
		}
		return fmt.Sprintf("%s[%s]", e.Ident, strings.Join(parts, ", "))
	case ExprConcat:
		return fmt.Sprintf("%s ++ %s", ExprString(e.Args[0]), ExprString(e.Args[1]))
	case ExprInt:
		return strconv.FormatInt(e.Int, 10)
	case ExprFloat:
		return strconv.FormatFloat(e.Float, 'g', -1, 64)
	case ExprBool:
		if e.Bool {
			return "true"
		}
		return "false"
	case ExprUnary:
		return e.Op + maybeParen(e.Args[0])
	case ExprBinary:
		return fmt.Sprintf("%s %s %s", maybeParen(e.Args[0]), e.Op, maybeParen(e.Args[1]))
	case ExprMeasure:
		return "measure " + ExprString(e.Args[0])
	}
	return "<?>"
}

func maybeParen(e Expr) string {
	if e.Kind == ExprBinary || e.Kind == ExprConcat {
		return "(" + ExprString(e) + ")"
	}
	return ExprString(e)
}

func indexItemString(it IndexItem) string {
	switch it.Kind {
	case IndexInt:
		return strconv.Itoa(it.Value)
	case IndexRange:
		return fmt.Sprintf("%d:%d", it.Start, it.End)
	case IndexSet:
		parts := make([]string, len(it.Set))
		for i, v := range it.Set {
			parts[i] = strconv.Itoa(v)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "<?>"
}
