package oberon

import (
	"github.com/dhamidi/obc/ast"
	"github.com/dhamidi/obc/parse"
	"github.com/dhamidi/obc/types"
)

// Typed is implemented by nodes whose type can be known without a symbol
// table. FinalType returns nil when it cannot.
type Typed interface {
	parse.Node
	FinalType() types.Type
}

// ConstExpr is an expression that must be constant.
type ConstExpr struct {
	ast.Base
	Expr *Expr
}

func newConstExpr(n parse.Node) (parse.Node, error) {
	c := &ConstExpr{Base: ast.NewBase(n)}
	c.Expr, _ = ast.Find[*Expr](c.Children())
	return c, nil
}

func (c *ConstExpr) FinalType() types.Type { return c.Expr.FinalType() }

// Expr is a simple expression, or a relation between two of them.
type Expr struct {
	ast.Base
	Left  *SimpleExpr
	Op    *Relation
	Right *SimpleExpr
}

func newExpr(n parse.Node) (parse.Node, error) {
	e := &Expr{Base: ast.NewBase(n)}
	sides := ast.All[*SimpleExpr](e.Children())
	if len(sides) > 0 {
		e.Left = sides[0]
	}
	if len(sides) > 1 {
		e.Right = sides[1]
	}
	e.Op, _ = ast.Find[*Relation](e.Children())
	return e, nil
}

func (e *Expr) FinalType() types.Type {
	if e.Op == nil {
		return e.Left.FinalType()
	}
	return types.Boolean
}

// SimpleExpr is a signed sum: Sign Terms[0] Ops[0] Terms[1] ...
type SimpleExpr struct {
	ast.Base
	Sign  string
	Terms []*Term
	Ops   []*AddOp
}

func newSimpleExpr(n parse.Node) (parse.Node, error) {
	s := &SimpleExpr{Base: ast.NewBase(n)}
	if children := s.Children(); len(children) > 0 {
		if l, ok := children[0].(*parse.Leaf); ok && l.Rule == "" {
			s.Sign = l.Text
		}
	}
	s.Terms = ast.All[*Term](s.Children())
	s.Ops = ast.All[*AddOp](s.Children())
	return s, nil
}

func (s *SimpleExpr) FinalType() types.Type {
	var operands []types.Type
	for _, t := range s.Terms {
		operands = append(operands, t.FinalType())
	}
	ops := make([]string, len(s.Ops))
	for i, op := range s.Ops {
		ops[i] = op.Op
	}
	return combine(operands, ops, "OR")
}

// Term is a product: Factors[0] Ops[0] Factors[1] ...
type Term struct {
	ast.Base
	Factors []*Factor
	Ops     []*MulOp
}

func newTerm(n parse.Node) (parse.Node, error) {
	t := &Term{Base: ast.NewBase(n)}
	t.Factors = ast.All[*Factor](t.Children())
	t.Ops = ast.All[*MulOp](t.Children())
	return t, nil
}

func (t *Term) FinalType() types.Type {
	var operands []types.Type
	for _, f := range t.Factors {
		operands = append(operands, f.FinalType())
	}
	ops := make([]string, len(t.Ops))
	for i, op := range t.Ops {
		ops[i] = op.Op
	}
	return combine(operands, ops, "&")
}

// combine folds the operand types of a sum or product. Operands joined by
// the boolean operator give BOOLEAN, sets stay sets, and numbers widen to
// the largest numeric type ("/" always yields a real).
func combine(operands []types.Type, ops []string, boolOp string) types.Type {
	if len(operands) == 0 {
		return nil
	}
	result := operands[0]
	for i, next := range operands[1:] {
		if result == nil || next == nil {
			return nil
		}
		op := ops[i]
		switch {
		case op == boolOp:
			if result != types.Boolean || next != types.Boolean {
				return nil
			}
		case result == types.Set && next == types.Set:
		default:
			a, aok := result.(types.Numeric)
			b, bok := next.(types.Numeric)
			if !aok || !bok {
				return nil
			}
			result = types.Largest(a, b)
			if op == "/" {
				result = types.Largest(result.(types.Numeric), types.ShortReal)
			}
		}
	}
	return result
}

// Factor is an operand. Operand holds the literal, set, parenthesised
// expression, negated factor or designator; Args is set for a function
// call.
type Factor struct {
	ast.Base
	Not     bool
	Nil     bool
	Operand parse.Node
	Args    *ActualParameters
}

func newFactor(n parse.Node) (parse.Node, error) {
	f := &Factor{Base: ast.NewBase(n)}
	if l, ok := n.(*parse.Leaf); ok {
		// the only bare terminal operand
		f.Nil = l.Text == "NIL"
		return f, nil
	}
	children := f.Children()
	if len(children) == 3 {
		// ( Expr )
		f.SetChildren(children[1:2])
		children = f.Children()
	}
	if hasTerminal(children, "~") {
		f.Not = true
	}
	for _, child := range children {
		switch c := child.(type) {
		case *ActualParameters:
			f.Args = c
		case *parse.Leaf:
		default:
			if f.Operand == nil {
				f.Operand = child
			}
		}
	}
	return f, nil
}

func (f *Factor) FinalType() types.Type {
	switch {
	case f.Nil:
		return types.Nil
	case f.Not:
		return types.Boolean
	}
	if t, ok := f.Operand.(Typed); ok {
		return t.FinalType()
	}
	return nil
}

type Set struct {
	ast.Base
	Elements []*Element
}

func newSet(n parse.Node) (parse.Node, error) {
	s := &Set{Base: ast.NewBase(n)}
	s.Elements = ast.All[*Element](s.Children())
	return s, nil
}

func (*Set) FinalType() types.Type { return types.Set }

// Element is a set member or range Lo..Hi.
type Element struct {
	ast.Base
	Lo *Expr
	Hi *Expr
}

func newElement(n parse.Node) (parse.Node, error) {
	e := &Element{Base: ast.NewBase(n)}
	bounds := ast.All[*Expr](e.Children())
	if len(bounds) > 0 {
		e.Lo = bounds[0]
	}
	if len(bounds) > 1 {
		e.Hi = bounds[1]
	}
	return e, nil
}

// Relation is a comparison operator.
type Relation struct {
	ast.Base
	Op string
}

func newRelation(n parse.Node) (parse.Node, error) {
	r := &Relation{Base: ast.NewBase(n)}
	r.Op = r.Text()
	return r, nil
}

type AddOp struct {
	ast.Base
	Op string
}

func newAddOp(n parse.Node) (parse.Node, error) {
	a := &AddOp{Base: ast.NewBase(n)}
	a.Op = a.Text()
	return a, nil
}

type MulOp struct {
	ast.Base
	Op string
}

func newMulOp(n parse.Node) (parse.Node, error) {
	m := &MulOp{Base: ast.NewBase(n)}
	m.Op = m.Text()
	return m, nil
}

// Designator names a variable, procedure or constant, followed by field,
// index and dereference selectors.
type Designator struct {
	ast.Base
	Name      *Qualident
	Selectors []*Selector
}

func newDesignator(n parse.Node) (parse.Node, error) {
	d := &Designator{Base: ast.NewBase(n)}
	d.Name, _ = ast.Find[*Qualident](d.Children())
	d.Selectors = ast.All[*Selector](d.Children())
	return d, nil
}

// SelectorKind says which form a Selector has.
type SelectorKind int

const (
	FieldSelector SelectorKind = iota
	IndexSelector
	DerefSelector
)

type Selector struct {
	ast.Base
	Kind  SelectorKind
	Field *Ident
	Index *ExprList
}

func newSelector(n parse.Node) (parse.Node, error) {
	s := &Selector{Base: ast.NewBase(n)}
	if s.Text() == "^" {
		s.Kind = DerefSelector
		return s, nil
	}
	if field, ok := ast.Find[*Ident](s.Children()); ok {
		s.Kind = FieldSelector
		s.Field = field
		return s, nil
	}
	s.Kind = IndexSelector
	s.Index, _ = ast.Find[*ExprList](s.Children())
	return s, nil
}

type ActualParameters struct {
	ast.Base
	List *ExprList
}

func newActualParameters(n parse.Node) (parse.Node, error) {
	a := &ActualParameters{Base: ast.NewBase(n)}
	a.List, _ = ast.Find[*ExprList](a.Children())
	return a, nil
}

// Exprs returns the arguments.
func (a *ActualParameters) Exprs() []*Expr {
	if a.List == nil {
		return nil
	}
	return a.List.Exprs
}

type ExprList struct {
	ast.Base
	Exprs []*Expr
}

func newExprList(n parse.Node) (parse.Node, error) {
	l := &ExprList{Base: ast.NewBase(n)}
	l.Exprs = ast.All[*Expr](l.Children())
	return l, nil
}
