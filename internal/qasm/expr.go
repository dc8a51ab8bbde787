package qasm

// ExprKind enumerates expression kinds in fragment ASTs.
type ExprKind uint8

const (
	// ExprIdent references a declared or aliased name.
	ExprIdent ExprKind = iota
	// ExprIndexed applies an index operator to a named register.
	ExprIndexed
	// ExprConcat joins two register expressions with ++.
	ExprConcat
	// ExprInt is an integer literal.
	ExprInt
	// ExprFloat is a float literal.
	ExprFloat
	// ExprBool is a boolean literal.
	ExprBool
	// ExprUnary applies a prefix operator to one operand.
	ExprUnary
	// ExprBinary applies an infix operator to two operands.
	ExprBinary
	// ExprMeasure is a measure expression (right-hand side of an assignment).
	ExprMeasure
)

// IndexKind enumerates the forms an index operator item can take.
type IndexKind uint8

const (
	// IndexInt selects a single position.
	IndexInt IndexKind = iota
	// IndexRange selects the inclusive position range Start..End.
	IndexRange
	// IndexSet selects an explicit discrete set of positions.
	IndexSet
)

// IndexItem is one element of an index operator.
type IndexItem struct {
	Kind  IndexKind
	Value int   // IndexInt
	Start int   // IndexRange
	End   int   // IndexRange, inclusive
	Set   []int // IndexSet
}

// Positions expands the item into the ordered list of selected positions.
func (it IndexItem) Positions() []int {
	switch it.Kind {
	case IndexInt:
		return []int{it.Value}
	case IndexRange:
		if it.End < it.Start {
			return nil
		}
		out := make([]int, 0, it.End-it.Start+1)
		for i := it.Start; i <= it.End; i++ {
			out = append(out, i)
		}
		return out
	case IndexSet:
		return it.Set
	}
	return nil
}

// Expr is a closed tagged-variant expression node. Kind selects which payload
// fields are meaningful; child expressions live in Args to keep the struct
// non-recursive in the type system.
type Expr struct {
	Kind ExprKind

	Ident string      // ExprIdent, ExprIndexed
	Index []IndexItem // ExprIndexed
	Op    string      // ExprUnary, ExprBinary
	Args  []Expr      // ExprConcat (2), ExprUnary (1), ExprBinary (2), ExprMeasure (1)

	Int   int64
	Float float64
	Bool  bool
}

// Id returns an identifier expression.
func Id(name string) Expr {
	return Expr{Kind: ExprIdent, Ident: name}
}

// IndexedId returns name[items...].
func IndexedId(name string, items ...IndexItem) Expr {
	return Expr{Kind: ExprIndexed, Ident: name, Index: items}
}

// At returns a single-position index item.
func At(pos int) IndexItem {
	return IndexItem{Kind: IndexInt, Value: pos}
}

// Span returns an inclusive range index item.
func Span(start, end int) IndexItem {
	return IndexItem{Kind: IndexRange, Start: start, End: end}
}

// Pick returns a discrete-set index item.
func Pick(positions ...int) IndexItem {
	return IndexItem{Kind: IndexSet, Set: positions}
}

// Concat returns lhs ++ rhs.
func Concat(lhs, rhs Expr) Expr {
	return Expr{Kind: ExprConcat, Args: []Expr{lhs, rhs}}
}

// ConcatAll folds a list of register expressions into one concatenation.
// An empty list yields a zero Expr; callers must check for that.
func ConcatAll(parts ...Expr) Expr {
	if len(parts) == 0 {
		return Expr{}
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out = Concat(out, p)
	}
	return out
}

// IntLit returns an integer literal expression.
func IntLit(v int64) Expr {
	return Expr{Kind: ExprInt, Int: v}
}

// FloatLit returns a float literal expression.
func FloatLit(v float64) Expr {
	return Expr{Kind: ExprFloat, Float: v}
}

// BoolLit returns a boolean literal expression.
func BoolLit(v bool) Expr {
	return Expr{Kind: ExprBool, Bool: v}
}

// Unary returns op applied to arg.
func Unary(op string, arg Expr) Expr {
	return Expr{Kind: ExprUnary, Op: op, Args: []Expr{arg}}
}

// Binary returns lhs op rhs.
func Binary(op string, lhs, rhs Expr) Expr {
	return Expr{Kind: ExprBinary, Op: op, Args: []Expr{lhs, rhs}}
}

// MeasureExpr returns `measure src`.
func MeasureExpr(src Expr) Expr {
	return Expr{Kind: ExprMeasure, Args: []Expr{src}}
}
