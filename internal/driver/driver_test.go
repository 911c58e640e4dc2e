package driver_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"wirecheck/internal/ast"
	"wirecheck/internal/diag"
	"wirecheck/internal/driver"
	"wirecheck/internal/lint"
	"wirecheck/internal/observ"
	"wirecheck/internal/testkit"
)

// sampleProgram has several definitions with findings of different rules.
func sampleProgram(b *testkit.Builder) *ast.Program {
	defs := []ast.Definition{
		b.Template("Shadow", []string{"n"},
			b.Var("r", b.Int(0)),
			b.While(b.Bin("<", b.Ident("r"), b.Ident("n")), b.Block(b.Var("r", b.Int(1)))),
		),
		b.Template("Witness", nil,
			b.Input("in"),
			b.Intermediate("s"),
			b.Assign(b.Ident("s"), "<--", b.Bin("&", b.Bin("*", b.Ident("in"), b.Ident("in")), b.Int(1))),
		),
		b.Function("dead", []string{"a"},
			b.Var("x", nil),
			b.Assign(b.Ident("x"), "=", b.Int(1)),
			b.While(b.Bin("<", b.Int(1), b.Int(0)), b.Block()),
			b.Assign(b.Ident("x"), "=", b.Bin("-", b.Ident("a"), b.Int(1))),
			b.Return(b.Bin(">", b.Ident("x"), b.Bin("*", b.Ident("a"), b.Ident("a")))),
		),
	}
	for i := range 5 {
		defs = append(defs, b.Function("f"+string(rune('0'+i)), []string{"a"},
			b.Var("t", b.Ident("a")),
			b.If(b.Ident("a"), b.Block(b.Var("t", b.Int(2))), nil),
			b.Return(b.Ident("t")),
		))
	}
	return testkit.Program(defs...)
}

func codes(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID()+"@"+d.Primary.String())
	}
	return out
}

func TestDeterministicAcrossJobs(t *testing.T) {
	prog := sampleProgram(testkit.NewBuilder())
	var want []diag.Diagnostic
	for _, jobs := range []int{1, 2, 8} {
		res, err := driver.Analyze(context.Background(), prog, driver.Options{Jobs: jobs})
		if err != nil {
			t.Fatal(err)
		}
		got := res.Bag.Items()
		if want == nil {
			want = got
			if len(want) == 0 {
				t.Fatal("sample program produced no diagnostics")
			}
			continue
		}
		if !slices.EqualFunc(got, want, diag.Diagnostic.Equal) {
			t.Errorf("jobs=%d:\n got %v\nwant %v", jobs, got, want)
		}
	}
	for i := 1; i < len(want); i++ {
		a, b := want[i-1], want[i]
		if a.Code.ID() > b.Code.ID() || (a.Code == b.Code && a.Primary.Compare(b.Primary) > 0) {
			t.Errorf("output not sorted at %d", i)
		}
	}
}

func TestFindingsPerRule(t *testing.T) {
	prog := sampleProgram(testkit.NewBuilder())
	res, err := driver.Analyze(context.Background(), prog, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	count := map[diag.Code]int{}
	for _, d := range res.Bag.Items() {
		count[d.Code]++
	}
	want := map[diag.Code]int{
		diag.LintShadowing:           6, // Shadow.r and t in each f*
		diag.LintSignalAssignment:    1,
		diag.LintBitwiseFieldElement: 1,
		diag.LintConstantCondition:   1,
		diag.LintUnusedAssignment:    2, // dead.x = 1 and Witness.s
		diag.LintFieldArithmetic:     1,
		diag.LintFieldComparison:     3,
	}
	for code, n := range want {
		if count[code] != n {
			t.Errorf("%s: got %d, want %d", code.Name(), count[code], n)
		}
	}
	if !res.Failed() {
		t.Error("warnings should fail the run")
	}
}

func TestFilteringAndSkipping(t *testing.T) {
	b := testkit.NewBuilder()
	prog := sampleProgram(b)
	prog.Definitions[0].Library = true

	res, err := driver.Analyze(context.Background(), prog, driver.Options{
		UserInputOnly: true,
		MinSeverity:   diag.SevWarning,
		Disabled:      map[diag.Code]bool{diag.LintShadowing: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Units[0].Skipped {
		t.Error("library definition should be skipped")
	}
	for _, d := range res.Bag.Items() {
		if d.Severity < diag.SevWarning || d.Code == diag.LintShadowing {
			t.Errorf("filtered diagnostic survived: %s", d.Code.Name())
		}
	}

	clean := testkit.Program(b.Function("ok", []string{"a"}, b.Return(b.Ident("a"))))
	res, err = driver.Analyze(context.Background(), clean, driver.Options{})
	if err != nil || res.Failed() || res.Bag.Len() != 0 {
		t.Errorf("clean program: %v %v", err, codes(res.Bag))
	}
}

func TestIsolation(t *testing.T) {
	b := testkit.NewBuilder()
	bad := b.Raw("goto")
	prog := testkit.Program(
		b.Template("Broken", nil, b.Var("x", b.Int(0)), bad),
		b.Function("g", []string{"a"}, b.Return(b.Bin("<", b.Ident("a"), b.Int(1)))),
		b.Function("h", nil, b.Return(b.Ident("missing"))),
	)
	res, err := driver.Analyze(context.Background(), prog, driver.Options{Jobs: 3})
	if err != nil {
		t.Fatal(err)
	}
	var unsupported, comparison, unknown int
	for _, d := range res.Bag.Items() {
		switch d.Code {
		case diag.CFGUnsupportedConstruct:
			unsupported++
			if d.Primary != bad.Span {
				t.Errorf("unsupported construct reported at %v, want %v", d.Primary, bad.Span)
			}
		case diag.LintFieldComparison:
			comparison++
		case diag.IRUnknownReference:
			unknown++
		}
	}
	if unsupported != 1 || comparison != 1 || unknown != 1 {
		t.Errorf("diagnostics = %v", codes(res.Bag))
	}
	if res.Units[0].Blocks != 0 || res.Units[1].Blocks == 0 {
		t.Error("only the broken unit should lack a CFG")
	}
}

func TestAbortedAnalysisIsReported(t *testing.T) {
	b := testkit.NewBuilder()
	prog := testkit.Program(b.Function("loop", []string{"n"},
		b.Var("i", b.Int(0)),
		b.While(b.Bin("<", b.Ident("i"), b.Ident("n")), b.Block(b.Assign(b.Ident("i"), "++", nil))),
		b.Return(b.Ident("i")),
	))
	res, err := driver.Analyze(context.Background(), prog, driver.Options{
		MaxVisits: 1,
		Analyzers: []*lint.Analyzer{lint.AnalyzerConstantCondition, lint.AnalyzerShadowing},
	})
	if err != nil {
		t.Fatal(err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.EngAnalysisAborted || items[0].Severity != diag.SevError {
		t.Fatalf("diagnostics = %v", codes(res.Bag))
	}
	if !strings.Contains(items[0].Message, "constant-condition") {
		t.Errorf("message = %q", items[0].Message)
	}
}

func TestLargeDefinitionsAreAnalyzed(t *testing.T) {
	b := testkit.NewBuilder()
	sum := b.Ident("a")
	for i := range 1100 {
		sum = b.Bin("+", sum, b.Int(int64(i)))
	}
	const width = 500
	v := func(i int) *ast.Node { return b.Ident(fmt.Sprintf("v%d", i)) }
	var stmts, body []*ast.Node
	for i := 0; i <= width; i++ {
		stmts = append(stmts, b.Var(fmt.Sprintf("v%d", i), b.Int(0)))
	}
	for i := width; i > 0; i-- {
		body = append(body, b.Assign(v(i), "=", v(i-1)))
	}
	body = append(body, b.Assign(v(0), "=", b.Bin("+", v(0), b.Int(1))))
	stmts = append(stmts,
		b.While(b.Bin("!=", v(width), b.Ident("n")), b.Block(body...)),
		b.Return(v(width)),
	)
	prog := testkit.Program(
		b.Function("wide", []string{"a"}, b.Return(sum)),
		b.Function("shift", []string{"n"}, stmts...),
	)
	res, err := driver.Analyze(context.Background(), prog, driver.Options{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 0 {
		t.Errorf("diagnostics = %v", codes(res.Bag))
	}
	for _, u := range res.Units {
		if u.Blocks == 0 {
			t.Errorf("%s was not analyzed", u.Name)
		}
	}
}

func TestPanickingAnalyzerIsContained(t *testing.T) {
	b := testkit.NewBuilder()
	boom := &lint.Analyzer{
		Code:     diag.LintFieldComparison,
		Severity: diag.SevInfo,
		Doc:      "panics",
		Run:      func(*lint.Pass) error { panic("boom") },
	}
	prog := testkit.Program(
		b.Function("f", nil, b.Var("x", b.Int(0)), b.Block(b.Var("x", b.Int(1)))),
	)
	res, err := driver.Analyze(context.Background(), prog, driver.Options{
		Analyzers: []*lint.Analyzer{boom, lint.AnalyzerShadowing},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := codes(res.Bag)
	if len(got) != 2 || !strings.HasPrefix(got[0], "ENG3002") || !strings.HasPrefix(got[1], "LNT4001") {
		t.Errorf("diagnostics = %v", got)
	}
}

func TestProgressAndTimings(t *testing.T) {
	prog := sampleProgram(testkit.NewBuilder())
	var (
		mu     sync.Mutex
		final  = map[int]driver.Status{}
		events int
	)
	timer := observ.NewTimer()
	_, err := driver.Analyze(context.Background(), prog, driver.Options{
		Jobs:  4,
		Timer: timer,
		Progress: func(ev driver.Event) {
			mu.Lock()
			defer mu.Unlock()
			events++
			final[ev.Index] = ev.Status
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if events != 3*len(prog.Definitions) {
		t.Errorf("events = %d", events)
	}
	for i := range prog.Definitions {
		if final[i] != driver.StatusDone {
			t.Errorf("definition %d ended as %s", i, final[i])
		}
	}
	r := timer.Report()
	if len(r.Phases) != 3 || r.Phases[0].Name != "analyze" || r.Phases[1].Name != "ir+cfg" || !r.Phases[2].Nested {
		t.Errorf("timings = %+v", r)
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.msgpack")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ast.EncodeMsgpack(f, sampleProgram(testkit.NewBuilder())); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	res, err := driver.AnalyzeFile(context.Background(), path, driver.Options{})
	if err != nil || res.Bag.Len() == 0 || res.LoadFailed {
		t.Fatalf("AnalyzeFile: %v, %d diagnostics", err, res.Bag.Len())
	}

	res, err = driver.AnalyzeFile(context.Background(), filepath.Join(dir, "missing.json"), driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if items := res.Bag.Items(); len(items) != 1 || items[0].Code != diag.IOLoadError || !res.LoadFailed {
		t.Errorf("load failure = %v", codes(res.Bag))
	}
}

func TestContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.Analyze(ctx, sampleProgram(testkit.NewBuilder()), driver.Options{}); err == nil {
		t.Error("canceled context should abort the run")
	}
}
