package qasm

import (
	"encoding/json"
	"fmt"
)

// JSON codec for fragments crossing the frontend model boundary. Every
// variant is tagged with a "kind" discriminator; unknown kinds are decode
// errors so malformed requests fail early instead of producing half-empty
// statements.

type stmtJSON struct {
	Kind        string       `json:"kind"`
	Annotations []Annotation `json:"annotations,omitempty"`

	Name string `json:"name,omitempty"`
	Size *int   `json:"size,omitempty"`

	Type  string `json:"type,omitempty"`
	Width *int   `json:"width,omitempty"`
	Init  *Expr  `json:"init,omitempty"`

	Value    *Expr  `json:"value,omitempty"`
	Target   *Expr  `json:"target,omitempty"`
	Source   *Expr  `json:"source,omitempty"`
	Params   []Expr `json:"params,omitempty"`
	Operands []Expr `json:"operands,omitempty"`

	Cond *Expr  `json:"cond,omitempty"`
	Then []Stmt `json:"then,omitempty"`
	Else []Stmt `json:"else,omitempty"`

	Text string `json:"text,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Stmt) MarshalJSON() ([]byte, error) {
	out := stmtJSON{Annotations: s.Annotations}
	switch s.Kind {
	case StmtQubitDecl:
		out.Kind = "qubit"
		out.Name = s.Qubit.Name
		if s.Qubit.HasSize {
			size := s.Qubit.Size
			out.Size = &size
		}
	case StmtClassicalDecl:
		out.Kind = "classical"
		out.Type = s.Classical.Type.String()
		out.Name = s.Classical.Name
		if s.Classical.HasWidth {
			width := s.Classical.Width
			out.Width = &width
		}
		if s.Classical.HasInit {
			init := s.Classical.Init
			out.Init = &init
		}
	case StmtAlias:
		out.Kind = "alias"
		out.Name = s.Alias.Name
		value := s.Alias.Value
		out.Value = &value
	case StmtAssign:
		out.Kind = "assign"
		target, value := s.Assign.Target, s.Assign.Value
		out.Target, out.Value = &target, &value
	case StmtGate:
		out.Kind = "gate"
		out.Name = s.Gate.Name
		out.Params = s.Gate.Params
		out.Operands = s.Gate.Operands
	case StmtMeasure:
		out.Kind = "measure"
		target, source := s.Measure.Target, s.Measure.Source
		out.Target, out.Source = &target, &source
	case StmtReset:
		out.Kind = "reset"
		target := s.Reset.Target
		out.Target = &target
	case StmtBarrier:
		out.Kind = "barrier"
		out.Operands = s.Barrier.Operands
	case StmtBranch:
		out.Kind = "branch"
		cond := s.Branch.Cond
		out.Cond = &cond
		out.Then = s.Branch.Then
		if s.Branch.HasElse {
			out.Else = s.Branch.Else
			if out.Else == nil {
				out.Else = []Stmt{}
			}
		}
	case StmtComment:
		out.Kind = "comment"
		out.Text = s.Comment.Text
	default:
		return nil, fmt.Errorf("unknown statement kind %d", s.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stmt) UnmarshalJSON(data []byte) error {
	var in stmtJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Stmt{Annotations: in.Annotations}
	switch in.Kind {
	case "qubit":
		s.Kind = StmtQubitDecl
		s.Qubit.Name = in.Name
		if in.Size != nil {
			s.Qubit.Size = *in.Size
			s.Qubit.HasSize = true
		}
	case "classical":
		s.Kind = StmtClassicalDecl
		kind, err := classicalKindFromString(in.Type)
		if err != nil {
			return err
		}
		s.Classical.Type = kind
		s.Classical.Name = in.Name
		if in.Width != nil {
			s.Classical.Width = *in.Width
			s.Classical.HasWidth = true
		}
		if in.Init != nil {
			s.Classical.Init = *in.Init
			s.Classical.HasInit = true
		}
	case "alias":
		s.Kind = StmtAlias
		s.Alias.Name = in.Name
		if in.Value == nil {
			return fmt.Errorf("alias %q has no value", in.Name)
		}
		s.Alias.Value = *in.Value
	case "assign":
		s.Kind = StmtAssign
		if in.Target == nil || in.Value == nil {
			return fmt.Errorf("assign needs target and value")
		}
		s.Assign.Target = *in.Target
		s.Assign.Value = *in.Value
	case "gate":
		s.Kind = StmtGate
		s.Gate.Name = in.Name
		s.Gate.Params = in.Params
		s.Gate.Operands = in.Operands
	case "measure":
		s.Kind = StmtMeasure
		if in.Target == nil || in.Source == nil {
			return fmt.Errorf("measure needs target and source")
		}
		s.Measure.Target = *in.Target
		s.Measure.Source = *in.Source
	case "reset":
		s.Kind = StmtReset
		if in.Target == nil {
			return fmt.Errorf("reset needs a target")
		}
		s.Reset.Target = *in.Target
	case "barrier":
		s.Kind = StmtBarrier
		s.Barrier.Operands = in.Operands
	case "branch":
		s.Kind = StmtBranch
		if in.Cond == nil {
			return fmt.Errorf("branch needs a condition")
		}
		s.Branch.Cond = *in.Cond
		s.Branch.Then = in.Then
		if in.Else != nil {
			s.Branch.Else = in.Else
			s.Branch.HasElse = true
		}
	case "comment":
		s.Kind = StmtComment
		s.Comment.Text = in.Text
	default:
		return fmt.Errorf("unknown statement kind %q", in.Kind)
	}
	return nil
}

type exprJSON struct {
	Kind string `json:"kind"`

	Name  string      `json:"name,omitempty"`
	Index []IndexItem `json:"index,omitempty"`

	Op  string `json:"op,omitempty"`
	Lhs *Expr  `json:"lhs,omitempty"`
	Rhs *Expr  `json:"rhs,omitempty"`
	Arg *Expr  `json:"arg,omitempty"`

	Int   *int64   `json:"int,omitempty"`
	Float *float64 `json:"float,omitempty"`
	Bool  *bool    `json:"bool,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Expr) MarshalJSON() ([]byte, error) {
	out := exprJSON{}
	switch e.Kind {
	case ExprIdent:
		out.Kind = "ident"
		out.Name = e.Ident
	case ExprIndexed:
		out.Kind = "index"
		out.Name = e.Ident
		out.Index = e.Index
	case ExprConcat:
		out.Kind = "concat"
		lhs, rhs := e.Args[0], e.Args[1]
		out.Lhs, out.Rhs = &lhs, &rhs
	case ExprInt:
		out.Kind = "int"
		v := e.Int
		out.Int = &v
	case ExprFloat:
		out.Kind = "float"
		v := e.Float
		out.Float = &v
	case ExprBool:
		out.Kind = "bool"
		v := e.Bool
		out.Bool = &v
	case ExprUnary:
		out.Kind = "unary"
		out.Op = e.Op
		arg := e.Args[0]
		out.Arg = &arg
	case ExprBinary:
		out.Kind = "binary"
		out.Op = e.Op
		lhs, rhs := e.Args[0], e.Args[1]
		out.Lhs, out.Rhs = &lhs, &rhs
	case ExprMeasure:
		out.Kind = "measure"
		arg := e.Args[0]
		out.Arg = &arg
	default:
		return nil, fmt.Errorf("unknown expression kind %d", e.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expr) UnmarshalJSON(data []byte) error {
	var in exprJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Expr{}
	switch in.Kind {
	case "ident":
		e.Kind = ExprIdent
		e.Ident = in.Name
	case "index":
		e.Kind = ExprIndexed
		e.Ident = in.Name
		e.Index = in.Index
	case "concat":
		if in.Lhs == nil || in.Rhs == nil {
			return fmt.Errorf("concat needs lhs and rhs")
		}
		*e = Concat(*in.Lhs, *in.Rhs)
	case "int":
		e.Kind = ExprInt
		if in.Int != nil {
			e.Int = *in.Int
		}
	case "float":
		e.Kind = ExprFloat
		if in.Float != nil {
			e.Float = *in.Float
		}
	case "bool":
		e.Kind = ExprBool
		if in.Bool != nil {
			e.Bool = *in.Bool
		}
	case "unary":
		if in.Arg == nil {
			return fmt.Errorf("unary needs an argument")
		}
		*e = Unary(in.Op, *in.Arg)
	case "binary":
		if in.Lhs == nil || in.Rhs == nil {
			return fmt.Errorf("binary needs lhs and rhs")
		}
		*e = Binary(in.Op, *in.Lhs, *in.Rhs)
	case "measure":
		if in.Arg == nil {
			return fmt.Errorf("measure needs an argument")
		}
		*e = MeasureExpr(*in.Arg)
	default:
		return fmt.Errorf("unknown expression kind %q", in.Kind)
	}
	return nil
}

type indexItemJSON struct {
	Kind   string `json:"kind"`
	Value  *int   `json:"value,omitempty"`
	Start  *int   `json:"start,omitempty"`
	End    *int   `json:"end,omitempty"`
	Values []int  `json:"values,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (it IndexItem) MarshalJSON() ([]byte, error) {
	out := indexItemJSON{}
	switch it.Kind {
	case IndexInt:
		out.Kind = "int"
		v := it.Value
		out.Value = &v
	case IndexRange:
		out.Kind = "range"
		start, end := it.Start, it.End
		out.Start, out.End = &start, &end
	case IndexSet:
		out.Kind = "set"
		out.Values = it.Set
		if out.Values == nil {
			out.Values = []int{}
		}
	default:
		return nil, fmt.Errorf("unknown index kind %d", it.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *IndexItem) UnmarshalJSON(data []byte) error {
	var in indexItemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*it = IndexItem{}
	switch in.Kind {
	case "int":
		it.Kind = IndexInt
		if in.Value != nil {
			it.Value = *in.Value
		}
	case "range":
		it.Kind = IndexRange
		if in.Start != nil {
			it.Start = *in.Start
		}
		if in.End != nil {
			it.End = *in.End
		}
	case "set":
		it.Kind = IndexSet
		it.Set = in.Values
	default:
		return fmt.Errorf("unknown index kind %q", in.Kind)
	}
	return nil
}

func classicalKindFromString(s string) (ClassicalKind, error) {
	switch s {
	case "bit":
		return ClassicalBit, nil
	case "int":
		return ClassicalInt, nil
	case "float":
		return ClassicalFloat, nil
	case "bool":
		return ClassicalBool, nil
	}
	return 0, fmt.Errorf("unknown classical type %q", s)
}
