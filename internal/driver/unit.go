package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"wirecheck/internal/ast"
	"wirecheck/internal/cfg"
	"wirecheck/internal/dataflow"
	"wirecheck/internal/diag"
	"wirecheck/internal/field"
	"wirecheck/internal/ir"
	"wirecheck/internal/lint"
	"wirecheck/internal/trace"
)

// runUnit analyzes one definition. Every failure, including a panic in an
// analyzer, ends up as a diagnostic in the unit's own bag.
func runUnit(ctx context.Context, def *ast.Definition, fld *field.Field, opts *Options) (res UnitResult) {
	res = UnitResult{Name: def.Name, Kind: def.Kind, Bag: diag.NewBag(opts.MaxDiagnostics)}
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDefinition, "def:"+def.Name, trace.CurrentSpan(ctx))
	defer func() {
		span.WithExtra("diagnostics", fmt.Sprint(res.Bag.Len())).End(string(def.Kind))
	}()

	key, cacheable := opts.cacheKey(def)
	if cacheable {
		var payload CachedUnit
		if ok, err := opts.Cache.Get(key, &payload); err == nil && ok && payload.valid(def) {
			for _, d := range payload.Diagnostics {
				res.Bag.Add(d)
			}
			res.Blocks, res.Cached = payload.Blocks, true
			span.WithExtra("cache", "hit")
			return res
		}
	}

	defer func() {
		if r := recover(); r != nil {
			trace.Point(tr, trace.ScopeDefinition, "panic", fmt.Sprintf("%v\n%s", r, debug.Stack()), span.ID())
			res.Bag.Add(diag.NewError(diag.EngInternalError, def.Span,
				fmt.Sprintf("internal error while analyzing %s `%s`: %v", def.Kind, def.Name, r)))
		}
	}()

	reporter := diag.BagReporter{Bag: res.Bag}
	buildStart := time.Now()
	fail := func(err error) UnitResult {
		res.BuildTime = time.Since(buildStart)
		reportFailure(res.Bag, def, err)
		return res
	}
	fn, err := ir.Build(def, nil, reporter)
	if err != nil {
		return fail(err)
	}
	g, err := cfg.Build(fn)
	if err != nil {
		return fail(err)
	}
	if err := cfg.Validate(g); err != nil {
		return fail(err)
	}
	res.Blocks = g.Len()
	res.BuildTime = time.Since(buildStart)

	passStart := time.Now()
	for _, a := range opts.Analyzers {
		if opts.Disabled[a.Code] {
			continue
		}
		runAnalyzer(ctx, span, a, &lint.Pass{
			Analyzer: a,
			Func:     fn,
			CFG:      g,
			Field:    fld,
			Options:  lint.Options{Lookahead: opts.Lookahead, MaxVisits: opts.MaxVisits},
			Reporter: reporter,
		}, def, res.Bag)
	}

	res.PassTime = time.Since(passStart)
	if cacheable {
		// ошибка записи кэша не влияет на результат
		_ = opts.Cache.Put(key, newCachedUnit(def, res)) //nolint:errcheck
	}
	return res
}

func runAnalyzer(ctx context.Context, parent *trace.Span, a *lint.Analyzer, pass *lint.Pass, def *ast.Definition, bag *diag.Bag) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeAnalyzer, "lint:"+a.Name(), parent.ID())
	before := bag.Len()
	defer func() {
		if r := recover(); r != nil {
			bag.Add(diag.NewError(diag.EngInternalError, def.Span,
				fmt.Sprintf("analyzer %s panicked on %s `%s`: %v", a.Name(), def.Kind, def.Name, r)))
		}
		span.WithExtra("findings", fmt.Sprint(bag.Len()-before)).End("")
	}()
	if err := a.Run(pass); err != nil {
		code := diag.EngInternalError
		if errors.Is(err, dataflow.ErrAborted) {
			code = diag.EngAnalysisAborted
		}
		bag.Add(diag.NewError(code, def.Span,
			fmt.Sprintf("%s: %s `%s`: %v", a.Name(), def.Kind, def.Name, err)))
	}
}

// reportFailure turns a build error into the diagnostic for its category.
func reportFailure(bag *diag.Bag, def *ast.Definition, err error) {
	var ue *ir.UnsupportedError
	switch {
	case errors.As(err, &ue):
		bag.Add(diag.NewError(diag.CFGUnsupportedConstruct, ue.Span,
			fmt.Sprintf("%s `%s` was not analyzed: %s", def.Kind, def.Name, ue.What)))
	case errors.Is(err, cfg.ErrInvariant):
		bag.Add(diag.NewError(diag.CFGInvariantViolated, def.Span,
			fmt.Sprintf("%s `%s`: %v", def.Kind, def.Name, err)))
	case errors.Is(err, ir.ErrUnsupported):
		bag.Add(diag.NewError(diag.CFGUnsupportedConstruct, def.Span,
			fmt.Sprintf("%s `%s` was not analyzed: %v", def.Kind, def.Name, err)))
	default:
		bag.Add(diag.NewError(diag.EngInternalError, def.Span,
			fmt.Sprintf("%s `%s`: %v", def.Kind, def.Name, err)))
	}
}
