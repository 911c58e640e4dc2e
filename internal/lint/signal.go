package lint

import (
	"wirecheck/internal/cfg"
	"wirecheck/internal/diag"
	"wirecheck/internal/ir"
	"wirecheck/internal/source"
)

var AnalyzerSignalAssignment = &Analyzer{
	Code:     diag.LintSignalAssignment,
	Severity: diag.SevWarning,
	Doc: "Warn when a signal is witnessed with <-- and no constraint equation on it follows. " +
		"By default only the rest of the basic block is searched.",
	Run: runSignalAssignment,
}

func runSignalAssignment(pass *Pass) error {
	fn := pass.Func
	var constraints []*ir.Stmt
	if pass.Options.Lookahead == LookaheadFunction {
		for _, blk := range pass.CFG.Blocks {
			for _, s := range blk.Stmts {
				if s.Kind == ir.StmtConstrain {
					constraints = append(constraints, s)
				}
			}
		}
	}
	for _, blk := range pass.CFG.Blocks {
		for i, s := range blk.Stmts {
			lv, op, ok := s.Assignment()
			if !ok || op != ir.AssignWitness || !witnessesSignal(fn, lv) {
				continue
			}
			if pass.Options.Lookahead == LookaheadFunction {
				if constrained(constraints, lv.Decl) {
					continue
				}
			} else if constrainedLater(blk, i, lv.Decl) {
				continue
			}
			name := fn.DeclName(lv.Decl)
			if lv.Field != source.NoStringID {
				name += "." + fn.NameOf(lv.Field)
			}
			pass.Report(lv.Span, "signal `"+name+"` is assigned with `<--` but never constrained").
				WithNote(s.Span, "use `<==` or add a `===` constraint for it").
				Emit()
		}
	}
	return nil
}

// witnessesSignal reports whether the target is a signal of this template
// or an input of a subcomponent.
func witnessesSignal(fn *ir.Func, lv *ir.LValue) bool {
	d := fn.Decl(lv.Decl)
	if d == nil {
		return false
	}
	if d.Kind == ir.DeclComponent {
		return lv.Field != source.NoStringID
	}
	return d.Kind.IsSignal()
}

func constrainedLater(blk *cfg.Block, at int, decl ir.DeclID) bool {
	return constrained(blk.Stmts[at+1:], decl)
}

func constrained(stmts []*ir.Stmt, decl ir.DeclID) bool {
	for _, s := range stmts {
		if s.Kind != ir.StmtConstrain {
			continue
		}
		if ir.Mentions(s.Lhs, decl) || ir.Mentions(s.Rhs, decl) {
			return true
		}
	}
	return false
}
