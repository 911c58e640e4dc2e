// Package driver runs the analysis pipeline over a whole program: IR, CFG
// and every enabled analyzer for each definition, on a bounded worker pool.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"wirecheck/internal/ast"
	"wirecheck/internal/diag"
	"wirecheck/internal/field"
	"wirecheck/internal/lint"
	"wirecheck/internal/observ"
	"wirecheck/internal/source"
	"wirecheck/internal/trace"
)

type Options struct {
	Curve          field.Curve
	Jobs           int // 0 = GOMAXPROCS
	MaxDiagnostics int // per definition, 0 = unlimited
	MaxVisits      int
	Lookahead      lint.Lookahead
	UserInputOnly  bool
	MinSeverity    diag.Severity
	Disabled       map[diag.Code]bool
	// Analyzers overrides the pass list; nil runs lint.Analyzers().
	Analyzers []*lint.Analyzer

	Timer    *observ.Timer
	Cache    *DiskCache
	Progress ProgressFunc
}

// UnitResult is the outcome for one definition.
type UnitResult struct {
	Name    string
	Kind    ast.DefKind
	Skipped bool // library definition with UserInputOnly
	Cached  bool
	Blocks  int
	Bag     *diag.Bag

	BuildTime time.Duration // IR and CFG construction
	PassTime  time.Duration // all analyzers
}

type Result struct {
	FileSet *source.FileSet
	Units   []UnitResult
	// Bag holds the merged, filtered diagnostics sorted by rule and location.
	Bag *diag.Bag
	// LoadFailed is set when the input could not be read or decoded; Bag
	// then holds only the load-error diagnostic.
	LoadFailed bool
}

// Failed reports whether the run should exit non-zero.
func (r *Result) Failed() bool {
	return r != nil && r.Bag.HasWarnings()
}

// AnalyzeFile loads a serialized program and analyzes it. A program that
// cannot be loaded yields a single load-error diagnostic rather than an error.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	prog, failed := Load(ctx, path, opts.Timer)
	if failed != nil {
		return failed, nil
	}
	return Analyze(ctx, prog, opts)
}

// Load reads the program at path. On failure the program is nil and the
// returned Result carries the load-error diagnostic.
func Load(ctx context.Context, path string, timer *observ.Timer) (*ast.Program, *Result) {
	idx := timer.Begin("load")
	prog, err := ast.Load(path)
	if err != nil {
		timer.End(idx, "failed")
		bag := diag.NewBag(0)
		bag.Add(diag.NewError(diag.IOLoadError, source.Span{}, err.Error()))
		trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "load-error", err.Error(), trace.CurrentSpan(ctx))
		return nil, &Result{FileSet: source.NewFileSet(), Bag: bag, LoadFailed: true}
	}
	timer.End(idx, fmt.Sprintf("%d definitions", len(prog.Definitions)))
	return prog, nil
}

// Analyze runs every enabled analyzer over every definition of prog.
// Results do not depend on opts.Jobs.
func Analyze(ctx context.Context, prog *ast.Program, opts Options) (*Result, error) {
	tr := trace.FromContext(ctx)
	root := trace.Begin(tr, trace.ScopePhase, "analyze", trace.CurrentSpan(ctx))
	defer root.End("")

	fs := source.NewFileSet()
	if err := prog.Register(fs); err != nil {
		return nil, err
	}
	if opts.Analyzers == nil {
		opts.Analyzers = lint.Analyzers()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	fld := field.New(opts.Curve)

	phase := opts.Timer.Begin("analyze")
	units := make([]UnitResult, len(prog.Definitions))
	for i := range prog.Definitions {
		opts.Progress.emit(Event{Index: i, Name: prog.Definitions[i].Name, Status: StatusQueued})
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(prog.Definitions))))
	for i := range prog.Definitions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			def := &prog.Definitions[i]
			if opts.UserInputOnly && def.Library {
				units[i] = UnitResult{Name: def.Name, Kind: def.Kind, Skipped: true, Bag: diag.NewBag(0)}
				opts.Progress.emit(Event{Index: i, Name: def.Name, Status: StatusSkipped})
				return nil
			}
			opts.Progress.emit(Event{Index: i, Name: def.Name, Status: StatusRunning})
			units[i] = runUnit(trace.WithSpan(gctx, root), def, fld, &opts)
			status := StatusDone
			if units[i].Bag.HasErrors() {
				status = StatusFailed
			}
			opts.Progress.emit(Event{Index: i, Name: def.Name, Status: status, Findings: units[i].Bag.Len()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		opts.Timer.End(phase, "canceled")
		return nil, err
	}
	opts.Timer.End(phase, fmt.Sprintf("%d definitions, %d jobs", len(units), jobs))
	recordUnitTimes(opts.Timer, units)

	merged := diag.NewBag(0)
	for _, u := range units {
		merged.Merge(u.Bag)
	}
	out := merged.Filter(opts.MinSeverity, opts.Disabled)
	out.Sort()
	root.WithExtra("diagnostics", fmt.Sprint(out.Len()))
	return &Result{FileSet: fs, Units: units, Bag: out}, nil
}

// recordUnitTimes adds the per-step sums over analyzed definitions.
func recordUnitTimes(timer *observ.Timer, units []UnitResult) {
	var build, passes time.Duration
	analyzed := 0
	for _, u := range units {
		if u.Skipped || u.Cached {
			continue
		}
		analyzed++
		build += u.BuildTime
		passes += u.PassTime
	}
	note := fmt.Sprintf("sum over %d definitions", analyzed)
	timer.Record("ir+cfg", build, note)
	timer.Record("passes", passes, note)
}
