package lint

import (
	"wirecheck/internal/diag"
	"wirecheck/internal/ir"
)

var AnalyzerFieldArithmetic = &Analyzer{
	Code:     diag.LintFieldArithmetic,
	Severity: diag.SevInfo,
	Doc: "Point out multiplication, exponentiation and subtraction inside compared operands " +
		"that are not reduced by an enclosing % or \\, since they may wrap around the prime.",
	Run: runFieldArithmetic,
}

type arithFrame struct {
	e        *ir.Expr
	compared bool // inside an operand of <, <=, > or >=
	bounded  bool // below % or \
}

func runFieldArithmetic(pass *Pass) error {
	forEachExpr(pass.CFG, func(_ *ir.Stmt, e *ir.Expr) {
		stack := []arithFrame{{e: e}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x := f.e
			if x == nil {
				continue
			}
			if f.compared && !f.bounded && wraps(x) {
				pass.Reportf(x.Span, "`%s` may wrap around the field prime before it is compared", x.Op)
				continue
			}
			child := f
			if x.Kind == ir.ExprBinary {
				switch {
				case x.Op.IsRelational():
					child.compared = true
				case x.Op == ir.OpMod || x.Op == ir.OpIntDiv:
					child.bounded = true
				}
			}
			for i := len(x.Args) - 1; i >= 0; i-- {
				child.e = x.Args[i]
				stack = append(stack, child)
			}
		}
	})
	return nil
}

func wraps(x *ir.Expr) bool {
	if x.Kind != ir.ExprBinary {
		return false
	}
	return x.Op == ir.OpMul || x.Op == ir.OpPow || x.Op == ir.OpSub
}
