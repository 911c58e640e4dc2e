package ir

import (
	"strings"
)

// FormatExpr renders e in source-like syntax for diagnostic messages.
// Binary and conditional operands are parenthesized when nested.
func FormatExpr(fn *Func, e *Expr) string {
	if e == nil {
		return ""
	}
	var stack []string
	pop := func(n int) []string {
		args := make([]string, n)
		copy(args, stack[len(stack)-n:])
		stack = stack[:len(stack)-n]
		return args
	}
	PostOrder(e, func(x *Expr) {
		args := pop(len(x.Args))
		for i, a := range x.Args {
			if x.Kind != ExprCall && x.Kind != ExprArray && x.Kind != ExprIndex && (a.Kind == ExprBinary || a.Kind == ExprTernary) {
				args[i] = "(" + args[i] + ")"
			}
		}
		var s string
		switch x.Kind {
		case ExprConst:
			s = x.Value
		case ExprRef:
			s = fn.NameOf(x.Name)
		case ExprUnary:
			s = x.Op.String() + args[0]
		case ExprBinary:
			s = args[0] + " " + x.Op.String() + " " + args[1]
		case ExprTernary:
			s = args[0] + " ? " + args[1] + " : " + args[2]
		case ExprCall:
			s = fn.NameOf(x.Name) + "(" + strings.Join(args, ", ") + ")"
		case ExprIndex:
			s = args[0] + "[" + args[1] + "]"
		case ExprField:
			s = args[0] + "." + fn.NameOf(x.Name)
		case ExprArray:
			s = "[" + strings.Join(args, ", ") + "]"
		default:
			s = "?"
		}
		stack = append(stack, s)
	})
	return stack[0]
}
