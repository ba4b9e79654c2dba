package oberon

import (
	"github.com/dhamidi/obc/ast"
	"github.com/dhamidi/obc/parse"
)

// Stmt is implemented by every statement node.
type Stmt interface {
	parse.Node
	stmtNode()
}

func (*Assignment) stmtNode() {}
func (*ProcCall) stmtNode()   {}
func (*IfStmt) stmtNode()     {}
func (*CaseStmt) stmtNode()   {}
func (*WhileStmt) stmtNode()  {}
func (*RepeatStmt) stmtNode() {}
func (*ForStmt) stmtNode()    {}
func (*LoopStmt) stmtNode()   {}
func (*ExitStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}

// StatementSeq is a list of statements. Empty statements are dropped.
type StatementSeq struct {
	ast.Base
	Statements []Stmt
}

func newStatementSeq(n parse.Node) (parse.Node, error) {
	s := &StatementSeq{Base: ast.NewBase(n)}
	s.Statements = ast.All[Stmt](s.Children())
	return s, nil
}

// newStatement replaces a Statement node by the statement it wraps.
func newStatement(n parse.Node) (parse.Node, error) {
	stmt, ok := ast.Find[Stmt](ast.Flatten(n.Children()))
	if !ok {
		return nil, nil
	}
	return stmt, nil
}

type Assignment struct {
	ast.Base
	Target *Designator
	Value  *Expr
}

func newAssignment(n parse.Node) (parse.Node, error) {
	a := &Assignment{Base: ast.NewBase(n)}
	a.Target, _ = ast.Find[*Designator](a.Children())
	a.Value, _ = ast.Find[*Expr](a.Children())
	return a, nil
}

type ProcCall struct {
	ast.Base
	Proc *Designator
	Args *ActualParameters
}

func newProcCall(n parse.Node) (parse.Node, error) {
	c := &ProcCall{Base: ast.NewBase(n)}
	c.Proc, _ = ast.Find[*Designator](c.Children())
	c.Args, _ = ast.Find[*ActualParameters](c.Children())
	return c, nil
}

// IfBranch is one IF or ELSIF arm. Body is nil when the arm is empty.
type IfBranch struct {
	Cond *Expr
	Body *StatementSeq
}

type IfStmt struct {
	ast.Base
	Branches []IfBranch
	Else     *StatementSeq
}

func newIfStmt(n parse.Node) (parse.Node, error) {
	s := &IfStmt{Base: ast.NewBase(n)}
	inElse := false
	for _, child := range s.Children() {
		switch c := child.(type) {
		case *parse.Leaf:
			if c.Text == "ELSE" {
				inElse = true
			}
		case *Expr:
			s.Branches = append(s.Branches, IfBranch{Cond: c})
		case *StatementSeq:
			if inElse {
				s.Else = c
			} else if len(s.Branches) > 0 {
				s.Branches[len(s.Branches)-1].Body = c
			}
		}
	}
	return s, nil
}

type CaseStmt struct {
	ast.Base
	Value *Expr
	Cases []*Case
	Else  *StatementSeq
}

func newCaseStmt(n parse.Node) (parse.Node, error) {
	s := &CaseStmt{Base: ast.NewBase(n)}
	s.Value, _ = ast.Find[*Expr](s.Children())
	s.Cases = ast.All[*Case](s.Children())
	s.Else, _ = ast.Find[*StatementSeq](s.Children())
	return s, nil
}

// Case is one arm of a CASE statement.
type Case struct {
	ast.Base
	Labels []*CaseLabels
	Body   *StatementSeq
}

func newCase(n parse.Node) (parse.Node, error) {
	c := &Case{Base: ast.NewBase(n)}
	c.Labels = ast.All[*CaseLabels](c.Children())
	c.Body, _ = ast.Find[*StatementSeq](c.Children())
	return c, nil
}

// CaseLabels is a single label or a range Lo..Hi.
type CaseLabels struct {
	ast.Base
	Lo *ConstExpr
	Hi *ConstExpr
}

func newCaseLabels(n parse.Node) (parse.Node, error) {
	l := &CaseLabels{Base: ast.NewBase(n)}
	bounds := ast.All[*ConstExpr](l.Children())
	if len(bounds) > 0 {
		l.Lo = bounds[0]
	}
	if len(bounds) > 1 {
		l.Hi = bounds[1]
	}
	return l, nil
}

type WhileStmt struct {
	ast.Base
	Cond *Expr
	Body *StatementSeq
}

func newWhileStmt(n parse.Node) (parse.Node, error) {
	s := &WhileStmt{Base: ast.NewBase(n)}
	s.Cond, _ = ast.Find[*Expr](s.Children())
	s.Body, _ = ast.Find[*StatementSeq](s.Children())
	return s, nil
}

type RepeatStmt struct {
	ast.Base
	Body *StatementSeq
	Cond *Expr
}

func newRepeatStmt(n parse.Node) (parse.Node, error) {
	s := &RepeatStmt{Base: ast.NewBase(n)}
	s.Body, _ = ast.Find[*StatementSeq](s.Children())
	s.Cond, _ = ast.Find[*Expr](s.Children())
	return s, nil
}

type ForStmt struct {
	ast.Base
	Var  *Ident
	From *Expr
	To   *Expr
	By   *ConstExpr
	Body *StatementSeq
}

func newForStmt(n parse.Node) (parse.Node, error) {
	s := &ForStmt{Base: ast.NewBase(n)}
	s.Var, _ = ast.Find[*Ident](s.Children())
	if bounds := ast.All[*Expr](s.Children()); len(bounds) == 2 {
		s.From, s.To = bounds[0], bounds[1]
	}
	s.By, _ = ast.Find[*ConstExpr](s.Children())
	s.Body, _ = ast.Find[*StatementSeq](s.Children())
	return s, nil
}

type LoopStmt struct {
	ast.Base
	Body *StatementSeq
}

func newLoopStmt(n parse.Node) (parse.Node, error) {
	s := &LoopStmt{Base: ast.NewBase(n)}
	s.Body, _ = ast.Find[*StatementSeq](s.Children())
	return s, nil
}

type ExitStmt struct {
	ast.Base
}

func newExitStmt(n parse.Node) (parse.Node, error) {
	return &ExitStmt{Base: ast.NewBase(n)}, nil
}

// ReturnStmt returns from a procedure. Value is nil in proper procedures.
type ReturnStmt struct {
	ast.Base
	Value *Expr
}

func newReturnStmt(n parse.Node) (parse.Node, error) {
	s := &ReturnStmt{Base: ast.NewBase(n)}
	s.Value, _ = ast.Find[*Expr](s.Children())
	return s, nil
}
