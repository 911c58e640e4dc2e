package lint

import (
	"wirecheck/internal/diag"
	"wirecheck/internal/ir"
)

var AnalyzerFieldComparison = &Analyzer{
	Code:     diag.LintFieldComparison,
	Severity: diag.SevInfo,
	Doc:      "Point out relational comparisons, which compare signed representatives of field elements.",
	Run:      runFieldComparison,
}

const fieldComparisonMsg = "relational comparison of field elements: operands are compared as signed " +
	"representatives in (-p/2, p/2], not as integers in [0, p)"

func runFieldComparison(pass *Pass) error {
	forEachExpr(pass.CFG, func(_ *ir.Stmt, e *ir.Expr) {
		ir.WalkExpr(e, func(x *ir.Expr) bool {
			if x.Kind == ir.ExprBinary && x.Op.IsRelational() {
				pass.Reportf(x.Span, "%s", fieldComparisonMsg)
			}
			return true
		})
	})
	return nil
}
