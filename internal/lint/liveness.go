package lint

import (
	"golang.org/x/tools/container/intsets"

	"wirecheck/internal/cfg"
	"wirecheck/internal/dataflow"
	"wirecheck/internal/diag"
	"wirecheck/internal/ir"
)

var AnalyzerUnusedAssignment = &Analyzer{
	Code:     diag.LintUnusedAssignment,
	Severity: diag.SevWarning,
	Doc: "Warn when a value assigned to a variable, or witnessed into an intermediate signal, " +
		"is never read afterwards.",
	Run: runUnusedAssignment,
}

// liveness is a backward analysis over sets of DeclIDs that are read before
// being overwritten. Values are *intsets.Sparse and never mutated once
// returned.
//
// A read of x inside an assignment to x only makes x live when x is live
// after the assignment, so a loop accumulator read by nothing but its own
// updates stays dead.
type liveness struct {
	fn   *ir.Func
	exit *intsets.Sparse
}

func newLiveness(fn *ir.Func) *liveness {
	exit := new(intsets.Sparse)
	for _, id := range fn.Decls.IDs() {
		if fn.Decl(id).Kind == ir.DeclOutput {
			exit.Insert(int(id))
		}
	}
	return &liveness{fn: fn, exit: exit}
}

func (l *liveness) Direction() dataflow.Direction { return dataflow.Backward }

func (l *liveness) Boundary() *intsets.Sparse {
	return l.exit
}

func (l *liveness) Initial() *intsets.Sparse {
	return new(intsets.Sparse)
}

func (l *liveness) Join(a, b *intsets.Sparse) *intsets.Sparse {
	out := new(intsets.Sparse)
	out.Union(a, b)
	return out
}

func (l *liveness) Equal(a, b *intsets.Sparse) bool {
	return a.Equals(b)
}

func (l *liveness) Transfer(s *ir.Stmt, after *intsets.Sparse) *intsets.Sparse {
	before := new(intsets.Sparse)
	before.Copy(after)

	target := ir.NoDeclID
	selfLive := true
	if lv, _, ok := s.Assignment(); ok && lv.Decl.IsValid() && !lv.IsPartial() {
		target = lv.Decl
		selfLive = after.Has(int(target))
		before.Remove(int(target))
	} else if s.Kind == ir.StmtDecl {
		before.Remove(int(s.Decl))
	}
	for _, e := range s.Exprs() {
		ir.WalkExpr(e, func(x *ir.Expr) bool {
			if x.Kind != ir.ExprRef || !x.Decl.IsValid() {
				return true
			}
			if x.Decl == target && !selfLive {
				return true
			}
			before.Insert(int(x.Decl))
			return true
		})
	}
	return before
}

func (l *liveness) TransferCond(cond *ir.Expr, after *intsets.Sparse) *intsets.Sparse {
	refs := ir.Refs(nil, cond)
	if len(refs) == 0 {
		return after
	}
	before := new(intsets.Sparse)
	before.Copy(after)
	for _, d := range refs {
		before.Insert(int(d))
	}
	return before
}

// reportable reports whether an unused write through s is a finding.
// Constraint assignments also assert a constraint, and components and
// outputs are observable, so only locals and witnessed intermediates count.
func (l *liveness) reportable(s *ir.Stmt) (ir.DeclID, bool) {
	if s.Kind != ir.StmtAssign {
		return ir.NoDeclID, false // declaration initializers feed liveness but are not reported
	}
	lv := &s.Target
	if !lv.Decl.IsValid() || lv.IsPartial() {
		return ir.NoDeclID, false
	}
	d := l.fn.Decl(lv.Decl)
	switch {
	case d.Kind == ir.DeclLocal && s.AssignOp == ir.AssignPlain:
		return lv.Decl, true
	case d.Kind == ir.DeclIntermediate && s.AssignOp == ir.AssignWitness:
		return lv.Decl, true
	default:
		return ir.NoDeclID, false
	}
}

func runUnusedAssignment(pass *Pass) error {
	live := newLiveness(pass.Func)
	res, err := dataflow.Solve[*intsets.Sparse](pass.CFG, live, dataflow.Options[*intsets.Sparse]{
		MaxVisits: pass.Options.MaxVisits,
		Height:    pass.Func.Decls.Len() + 1,
	})
	if err != nil {
		return err
	}
	for _, blk := range pass.CFG.Blocks {
		reportDeadStores(pass, live, blk, res.Out[blk.ID])
	}
	return nil
}

func reportDeadStores(pass *Pass, live *liveness, blk *cfg.Block, out *intsets.Sparse) {
	after := out
	if blk.Cond != nil {
		after = live.TransferCond(blk.Cond, after)
	}
	var dead []*ir.Stmt
	for i := len(blk.Stmts) - 1; i >= 0; i-- {
		s := blk.Stmts[i]
		if d, ok := live.reportable(s); ok && !after.Has(int(d)) {
			dead = append(dead, s)
		}
		after = live.Transfer(s, after)
	}
	for i := len(dead) - 1; i >= 0; i-- {
		s := dead[i]
		name := pass.Func.DeclName(s.Target.Decl)
		if s.AssignOp == ir.AssignWitness {
			pass.Reportf(s.Span, "the value witnessed into signal `%s` is never read", name)
			continue
		}
		pass.Reportf(s.Span, "the value assigned to `%s` is never read", name)
	}
}
