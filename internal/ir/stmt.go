package ir

import (
	"wirecheck/internal/source"
)

type StmtKind uint8

const (
	StmtDecl      StmtKind = iota // Decl, Dims, optional Value assigned with AssignOp
	StmtAssign                    // AssignOp, Target, Value
	StmtConstrain                 // Lhs === Rhs
	StmtIf                        // Cond, Body, Else
	StmtWhile                     // Cond, Body
	StmtReturn                    // optional Value
	StmtBlock                     // Body
	StmtAssert                    // Value
	StmtLog                       // Args
)

func (k StmtKind) String() string {
	switch k {
	case StmtDecl:
		return "declaration"
	case StmtAssign:
		return "assignment"
	case StmtConstrain:
		return "constraint"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtReturn:
		return "return"
	case StmtBlock:
		return "block"
	case StmtAssert:
		return "assert"
	case StmtLog:
		return "log"
	default:
		return "invalid"
	}
}

// Stmt is a statement of the closed IR variant set.
type Stmt struct {
	Kind StmtKind
	Span source.Span

	Decl     DeclID
	Dims     []*Expr
	AssignOp AssignOp
	Target   LValue
	Value    *Expr
	Compound bool // lowered from x op= e, x++ or x--; Value reads the target

	Lhs, Rhs *Expr
	Cond     *Expr

	Body      []*Stmt
	BodyScope ScopeID
	Else      []*Stmt
	ElseScope ScopeID
	HasElse   bool

	Args []*Expr
}

// Assignment returns the write performed by a statement: an assignment or a
// declaration with an initializer.
func (s *Stmt) Assignment() (*LValue, AssignOp, bool) {
	switch s.Kind {
	case StmtAssign:
		return &s.Target, s.AssignOp, true
	case StmtDecl:
		if s.Value != nil {
			return &s.Target, s.AssignOp, true
		}
	}
	return nil, 0, false
}

// Exprs lists the expressions evaluated by the statement itself, excluding
// nested statements. The assignment target comes first when present.
func (s *Stmt) Exprs() []*Expr {
	var out []*Expr
	switch s.Kind {
	case StmtDecl:
		out = append(out, s.Dims...)
		if s.Value != nil {
			out = append(out, s.Value)
		}
	case StmtAssign:
		out = append(out, s.Target.Indices...)
		out = append(out, s.Value)
	case StmtConstrain:
		out = append(out, s.Lhs, s.Rhs)
	case StmtIf, StmtWhile:
		out = append(out, s.Cond)
	case StmtReturn, StmtAssert:
		if s.Value != nil {
			out = append(out, s.Value)
		}
	case StmtLog:
		out = append(out, s.Args...)
	}
	return out
}
