package cfg_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"wirecheck/internal/ast"
	"wirecheck/internal/cfg"
	"wirecheck/internal/ir"
	"wirecheck/internal/testkit"
)

func buildCFG(t *testing.T, def ast.Definition) *cfg.CFG {
	t.Helper()
	fn, err := ir.Build(&def, nil, nil)
	if err != nil {
		t.Fatalf("ir.Build: %v", err)
	}
	g, err := cfg.Build(fn)
	if err != nil {
		t.Fatalf("cfg.Build: %v", err)
	}
	if err := cfg.Validate(g); err != nil {
		t.Fatalf("Validate: %v\n%s", err, cfg.Dump(g))
	}
	return g
}

func TestStraightLine(t *testing.T) {
	b := testkit.NewBuilder()
	g := buildCFG(t, b.Function("f", []string{"a"},
		b.Var("x", b.Ident("a")),
		b.Assign(b.Ident("x"), "*=", b.Int(2)),
		b.Return(b.Ident("x")),
	))
	if g.Len() != 1 {
		t.Fatalf("blocks = %d\n%s", g.Len(), cfg.Dump(g))
	}
	entry := g.Block(g.Entry)
	if len(entry.Stmts) != 3 || entry.Term != cfg.TermReturn || !entry.IsExit() {
		t.Errorf("entry = %+v", entry)
	}
}

func TestIfWithoutElse(t *testing.T) {
	b := testkit.NewBuilder()
	g := buildCFG(t, b.Function("f", []string{"a"},
		b.Var("x", b.Int(0)),
		b.If(b.Ident("a"), b.Block(b.Assign(b.Ident("x"), "=", b.Int(1))), nil),
		b.Return(b.Ident("x")),
	))
	want := "bb0 [branch] stmts=1 -> bb1(true) bb2(false)\n" +
		"bb1 [none] stmts=1 -> bb3(jump)\n" +
		"bb2 [none] stmts=0 -> bb3(jump)\n" +
		"bb3 [return] stmts=1\n"
	if got := cfg.Dump(g); got != want {
		t.Fatalf("unexpected graph:\nwant:\n%s\ngot:\n%s", want, got)
	}
	if preds := g.Preds(3); !slices.Equal(preds, []cfg.BlockID{1, 2}) {
		t.Errorf("join preds = %v", preds)
	}
	if g.Block(0).Owner == nil || g.Block(0).Owner.Kind != ir.StmtIf {
		t.Error("branch owner not recorded")
	}
}

func TestBothArmsReturn(t *testing.T) {
	b := testkit.NewBuilder()
	g := buildCFG(t, b.Function("f", []string{"a"},
		b.If(b.Ident("a"),
			b.Block(b.Return(b.Int(1))),
			b.Block(b.Return(b.Int(2)))),
		b.Var("dead", b.Int(3)),
	))
	if g.Len() != 3 {
		t.Fatalf("blocks = %d\n%s", g.Len(), cfg.Dump(g))
	}
	if exits := g.Exits(); !slices.Equal(exits, []cfg.BlockID{1, 2}) {
		t.Errorf("exits = %v", exits)
	}
	for _, blk := range g.Blocks {
		for _, s := range blk.Stmts {
			if s.Kind == ir.StmtDecl {
				t.Error("statement after returning if should be dropped")
			}
		}
	}
}

func TestWhileLoop(t *testing.T) {
	b := testkit.NewBuilder()
	g := buildCFG(t, b.Function("f", []string{"n"},
		b.Var("i", b.Int(0)),
		b.While(b.Bin("<", b.Ident("i"), b.Ident("n")),
			b.Block(b.Assign(b.Ident("i"), "++", nil))),
		b.Return(b.Ident("i")),
	))
	want := "bb0 [none] stmts=1 -> bb1(jump)\n" +
		"bb1 [loop] stmts=0 -> bb2(true) bb3(false)\n" +
		"bb2 [none] stmts=1 -> bb1(loop-back)\n" +
		"bb3 [return] stmts=1\n"
	if got := cfg.Dump(g); got != want {
		t.Fatalf("unexpected graph:\nwant:\n%s\ngot:\n%s", want, got)
	}
	if rpo := cfg.ReversePostOrder(g); !slices.Equal(rpo, []cfg.BlockID{0, 1, 3, 2}) {
		t.Errorf("rpo = %v", rpo)
	}
	if po := cfg.PostOrder(g); po[len(po)-1] != g.Entry {
		t.Errorf("post-order should end at entry: %v", po)
	}
}

func TestReturnDropsTrailingStatements(t *testing.T) {
	b := testkit.NewBuilder()
	g := buildCFG(t, b.Function("f", nil,
		b.Block(b.Return(b.Int(1))),
		b.Var("x", b.Int(2)),
		b.While(b.Int(1), b.Block()),
	))
	if g.Len() != 1 || len(g.Block(0).Stmts) != 1 {
		t.Errorf("trailing statements kept:\n%s", cfg.Dump(g))
	}
}

func TestInfiniteLoopStillHasExit(t *testing.T) {
	b := testkit.NewBuilder()
	g := buildCFG(t, b.Template("T", nil,
		b.While(b.Int(1), b.Block(b.Return(nil))),
	))
	if len(g.Exits()) == 0 {
		t.Fatal("expected an exit block")
	}
	header := g.Block(1)
	if header.Term != cfg.TermLoop || len(header.Preds) != 1 {
		t.Errorf("header preds = %v (body returns, so no loop-back)", header.Preds)
	}
}

func TestUnsupportedStatement(t *testing.T) {
	fn := &ir.Func{Name: "f", Kind: ast.DefFunction, Body: []*ir.Stmt{{Kind: ir.StmtKind(200)}}}
	_, err := cfg.Build(fn)
	if !errors.Is(err, cfg.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestValidateReportsViolations(t *testing.T) {
	b := testkit.NewBuilder()
	g := buildCFG(t, b.Function("f", []string{"a"},
		b.If(b.Ident("a"), b.Block(), nil),
	))

	broken := *g.Blocks[1]
	broken.Succs = append(slices.Clone(broken.Succs), cfg.Edge{To: 2, Kind: cfg.EdgeTrue})
	g.Blocks[1] = &broken
	g.Blocks = append(g.Blocks, &cfg.Block{ID: cfg.BlockID(len(g.Blocks))})

	err := cfg.Validate(g)
	if !errors.Is(err, cfg.ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
	for _, want := range []string{"successors without condition", "unreachable", "predecessors recorded"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error lacks %q:\n%v", want, err)
		}
	}

	bad := &cfg.CFG{Blocks: []*cfg.Block{{ID: 0, Succs: []cfg.Edge{{To: 7}}}}}
	if err := cfg.Validate(bad); !errors.Is(err, cfg.ErrInvariant) || !strings.Contains(err.Error(), "missing bb7") {
		t.Errorf("out-of-range edge: %v", err)
	}
}
