package lint

import (
	"wirecheck/internal/cfg"
	"wirecheck/internal/dataflow"
	"wirecheck/internal/diag"
	"wirecheck/internal/field"
	"wirecheck/internal/ir"
)

var AnalyzerConstantCondition = &Analyzer{
	Code:     diag.LintConstantCondition,
	Severity: diag.SevWarning,
	Doc: "Warn when a branch or loop condition always evaluates to the same value. " +
		"Code behind a decided condition is not checked again by this rule.",
	Run: runConstantCondition,
}

func runConstantCondition(pass *Pass) error {
	cp := &constProp{f: pass.Field}
	res, err := dataflow.Solve[consts](pass.CFG, cp, dataflow.Options[consts]{
		MaxVisits: pass.Options.MaxVisits,
		Height:    2*pass.Func.Decls.Len() + 2,
	})
	if err != nil {
		return err
	}
	for _, blk := range pass.CFG.Blocks {
		if !blk.Conditional() {
			continue
		}
		out := res.Out[blk.ID]
		if out.bottom {
			continue
		}
		v, ok := cp.eval(blk.Cond, out)
		if !ok {
			continue
		}
		text := ir.FormatExpr(pass.Func, blk.Cond)
		pass.Reportf(blk.Cond.Span, "condition `%s` %s", text, conditionOutcome(blk, field.Truthy(v)))
	}
	return nil
}

func conditionOutcome(blk *cfg.Block, taken bool) string {
	if blk.Term == cfg.TermLoop {
		if taken {
			return "is always true; the loop never exits through its condition"
		}
		return "is always false; the loop body is unreachable"
	}
	switch {
	case taken && blk.Owner != nil && blk.Owner.HasElse:
		return "is always true; the else branch is unreachable"
	case taken:
		return "is always true"
	default:
		return "is always false; the then branch is unreachable"
	}
}
