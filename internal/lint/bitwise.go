package lint

import (
	"wirecheck/internal/diag"
	"wirecheck/internal/ir"
)

var AnalyzerBitwiseFieldElement = &Analyzer{
	Code:     diag.LintBitwiseFieldElement,
	Severity: diag.SevWarning,
	Doc:      "Warn on bitwise operators applied to results of modular multiplication, exponentiation or remainder.",
	Run:      runBitwiseFieldElement,
}

func runBitwiseFieldElement(pass *Pass) error {
	forEachExpr(pass.CFG, func(_ *ir.Stmt, e *ir.Expr) {
		// стек флагов: есть ли в поддереве модульная операция без отчёта
		var stack []bool
		ir.PostOrder(e, func(x *ir.Expr) {
			n := len(x.Args)
			modular := false
			for _, m := range stack[len(stack)-n:] {
				modular = modular || m
			}
			stack = stack[:len(stack)-n]

			if (x.Kind == ir.ExprBinary || x.Kind == ir.ExprUnary) && x.Op.IsBitwise() && modular {
				pass.Reportf(x.Span, "bitwise `%s` applied to a field element produced by modular arithmetic; "+
					"the result depends on the reduced representative", x.Op)
				stack = append(stack, false)
				return
			}
			stack = append(stack, modular || (x.Kind == ir.ExprBinary && x.Op.IsModular()))
		})
	})
	return nil
}
