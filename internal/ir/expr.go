package ir

import (
	"wirecheck/internal/source"
)

type ExprKind uint8

const (
	ExprConst   ExprKind = iota // Value
	ExprRef                     // Name, Decl (NoDeclID when unresolved)
	ExprUnary                   // Op, Args[0]
	ExprBinary                  // Op, Args[0], Args[1]
	ExprTernary                 // Args = cond, then, else
	ExprCall                    // Name = callee, Args
	ExprIndex                   // Args = base, index
	ExprField                   // Name = field, Args[0] = component
	ExprArray                   // Args = elements
)

func (k ExprKind) String() string {
	switch k {
	case ExprConst:
		return "const"
	case ExprRef:
		return "ref"
	case ExprUnary:
		return "unary"
	case ExprBinary:
		return "binary"
	case ExprTernary:
		return "ternary"
	case ExprCall:
		return "call"
	case ExprIndex:
		return "index"
	case ExprField:
		return "field"
	case ExprArray:
		return "array"
	default:
		return "invalid"
	}
}

// Expr is an immutable expression tree node.
type Expr struct {
	Kind  ExprKind
	Span  source.Span
	Op    Op
	Value string
	Name  source.StringID
	Decl  DeclID
	Args  []*Expr
}

func (e *Expr) Arg(i int) *Expr {
	if e == nil || i < 0 || i >= len(e.Args) {
		return nil
	}
	return e.Args[i]
}

// LValue is an assignment target: a declaration, possibly narrowed by
// indices or a component field. Expr is the target as an expression.
type LValue struct {
	Decl    DeclID
	Name    source.StringID
	Indices []*Expr
	Field   source.StringID
	Expr    *Expr
	Span    source.Span
}

// IsPartial reports whether the write covers only part of the declaration.
func (lv *LValue) IsPartial() bool {
	return len(lv.Indices) > 0 || lv.Field != source.NoStringID
}

// lvalueOf decomposes a target expression: ref, index chains and one
// component field access.
func lvalueOf(e *Expr) (LValue, bool) {
	lv := LValue{Expr: e, Span: e.Span}
	var rev []*Expr
	for cur := e; cur != nil; {
		switch cur.Kind {
		case ExprRef:
			lv.Decl, lv.Name = cur.Decl, cur.Name
			for i := len(rev) - 1; i >= 0; i-- {
				lv.Indices = append(lv.Indices, rev[i])
			}
			return lv, true
		case ExprIndex:
			rev = append(rev, cur.Arg(1))
			cur = cur.Arg(0)
		case ExprField:
			if lv.Field != source.NoStringID {
				return lv, false
			}
			lv.Field = cur.Name
			cur = cur.Arg(0)
		default:
			return lv, false
		}
	}
	return lv, false
}
