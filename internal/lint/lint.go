// Package lint holds the analysis passes. Each pass is an Analyzer run over
// one template or function; passes never share state and report through
// the Pass they are given.
package lint

import (
	"fmt"
	"strings"

	"wirecheck/internal/cfg"
	"wirecheck/internal/diag"
	"wirecheck/internal/field"
	"wirecheck/internal/ir"
	"wirecheck/internal/source"
)

// Lookahead selects how far the signal-assignment check searches for a
// constraint equation.
type Lookahead uint8

const (
	LookaheadBlock    Lookahead = iota // rest of the same basic block
	LookaheadFunction                  // anywhere in the definition
)

func ParseLookahead(s string) (Lookahead, error) {
	switch strings.ToLower(s) {
	case "", "block":
		return LookaheadBlock, nil
	case "function":
		return LookaheadFunction, nil
	default:
		return LookaheadBlock, fmt.Errorf("unknown lookahead %q (want block or function)", s)
	}
}

func (l Lookahead) String() string {
	if l == LookaheadFunction {
		return "function"
	}
	return "block"
}

// Options tune individual passes.
type Options struct {
	Lookahead Lookahead
	// MaxVisits overrides the dataflow visit cap; 0 keeps the default.
	MaxVisits int
}

// Pass is the per-definition context handed to an Analyzer.
type Pass struct {
	Analyzer *Analyzer
	Func     *ir.Func
	CFG      *cfg.CFG
	Field    *field.Field
	Options  Options
	Reporter diag.Reporter
}

// Report starts a diagnostic with the analyzer's code and severity.
func (p *Pass) Report(primary source.Span, msg string) *diag.ReportBuilder {
	return diag.NewReportBuilder(p.Reporter, p.Analyzer.Severity, p.Analyzer.Code, primary, msg)
}

func (p *Pass) Reportf(primary source.Span, format string, args ...any) {
	p.Report(primary, fmt.Sprintf(format, args...)).Emit()
}

// Analyzer is one check.
type Analyzer struct {
	Code     diag.Code
	Severity diag.Severity
	Doc      string
	Run      func(*Pass) error
}

// Name is the stable rule name used in configuration.
func (a *Analyzer) Name() string { return a.Code.Name() }

// Analyzers returns every pass in execution order.
func Analyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerShadowing,
		AnalyzerUnusedAssignment,
		AnalyzerConstantCondition,
		AnalyzerSignalAssignment,
		AnalyzerBitwiseFieldElement,
		AnalyzerFieldArithmetic,
		AnalyzerFieldComparison,
	}
}

// ByCode finds an analyzer by its diagnostic code.
func ByCode(code diag.Code) (*Analyzer, bool) {
	for _, a := range Analyzers() {
		if a.Code == code {
			return a, true
		}
	}
	return nil, false
}

// forEachExpr visits the top-level expressions of every statement kept in
// the CFG and of every block condition, in block order.
func forEachExpr(g *cfg.CFG, fn func(s *ir.Stmt, e *ir.Expr)) {
	for _, blk := range g.Blocks {
		for _, s := range blk.Stmts {
			for _, e := range s.Exprs() {
				fn(s, e)
			}
		}
		if blk.Cond != nil {
			fn(blk.Owner, blk.Cond)
		}
	}
}
