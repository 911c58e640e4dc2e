package lint

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"testing"

	"wirecheck/internal/ast"
	"wirecheck/internal/cfg"
	"wirecheck/internal/dataflow"
	"wirecheck/internal/field"
	"wirecheck/internal/ir"
	"wirecheck/internal/testkit"
)

var randVars = []string{"a", "b", "c", "d"}

// randomBody generates nested assignments, branches and loops over a fixed
// set of variables.
func randomBody(r *rand.Rand, b *testkit.Builder, depth int) []*ast.Node {
	n := 1 + r.IntN(4)
	out := make([]*ast.Node, 0, n)
	for range n {
		v := randVars[r.IntN(len(randVars))]
		switch k := r.IntN(6); {
		case k < 3 || depth == 0:
			out = append(out, b.Assign(b.Ident(v), "=", randomExpr(r, b, 2)))
		case k == 3:
			var els *ast.Node
			if r.IntN(2) == 0 {
				els = b.Block(randomBody(r, b, depth-1)...)
			}
			out = append(out, b.If(randomExpr(r, b, 2), b.Block(randomBody(r, b, depth-1)...), els))
		case k == 4:
			out = append(out, b.While(randomExpr(r, b, 2), b.Block(randomBody(r, b, depth-1)...)))
		default:
			out = append(out, b.Assign(b.Ident(v), "+=", b.Int(int64(r.IntN(3)))))
		}
	}
	return out
}

func randomExpr(r *rand.Rand, b *testkit.Builder, depth int) *ast.Node {
	if depth == 0 || r.IntN(3) == 0 {
		if r.IntN(2) == 0 {
			return b.Int(int64(r.IntN(4)))
		}
		return b.Ident(randVars[r.IntN(len(randVars))])
	}
	ops := []string{"+", "-", "*", "<", "==", "&&", "||", "%"}
	return b.Bin(ops[r.IntN(len(ops))], randomExpr(r, b, depth-1), randomExpr(r, b, depth-1))
}

func randomGraph(t *testing.T, seed uint64) *cfg.CFG {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := testkit.NewBuilder()
	stmts := make([]*ast.Node, 0, len(randVars)+4)
	for _, v := range randVars {
		stmts = append(stmts, b.Var(v, b.Int(int64(r.IntN(3)))))
	}
	stmts = append(stmts, randomBody(r, b, 3)...)
	def := b.Function("rand", nil, stmts...)
	fn, err := ir.Build(&def, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	g, err := cfg.Build(fn)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(g); err != nil {
		t.Fatalf("seed %d: %v", seed, err)
	}
	return g
}

// below reports whether hi is at least as imprecise as lo.
func below(lo, hi consts) bool {
	if lo.bottom {
		return true
	}
	if hi.bottom {
		return false
	}
	for id, y := range hi.vals {
		x, ok := lo.vals[id]
		if !ok || x.Cmp(y) != 0 {
			return false
		}
	}
	return true
}

func TestConstPropTerminatesMonotonically(t *testing.T) {
	cp := &constProp{f: field.New(field.BN254)}
	for seed := range uint64(200) {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			g := randomGraph(t, seed)
			opts := dataflow.Options[consts]{OnUpdate: func(b cfg.BlockID, old, v consts) {
				if !below(old, v) {
					t.Errorf("bb%d went down the lattice", b)
				}
			}}
			res, err := dataflow.Solve[consts](g, cp, opts)
			if err != nil {
				t.Fatal(err)
			}
			height := 1 + 2*len(randVars)
			if res.Updates > g.Len()*height {
				t.Errorf("%d updates over %d blocks exceeds lattice height %d", res.Updates, g.Len(), height)
			}
			if res.Out[g.Entry].bottom {
				t.Error("entry must be reachable")
			}
		})
	}
}

func TestConstPropEval(t *testing.T) {
	cp := &constProp{f: field.New(field.Goldilocks)}
	st := consts{}.with(1, big.NewInt(5))
	ref := &ir.Expr{Kind: ir.ExprRef, Decl: 1}
	unknown := &ir.Expr{Kind: ir.ExprRef, Decl: 2}
	num := func(v string) *ir.Expr { return &ir.Expr{Kind: ir.ExprConst, Value: v} }
	bin := func(op ir.Op, l, r *ir.Expr) *ir.Expr {
		return &ir.Expr{Kind: ir.ExprBinary, Op: op, Args: []*ir.Expr{l, r}}
	}
	tests := []struct {
		name string
		e    *ir.Expr
		want string // "" means unknown
	}{
		{"ref", ref, "5"},
		{"sum", bin(ir.OpAdd, ref, num("0x10")), "21"},
		{"unknown operand", bin(ir.OpMul, ref, unknown), ""},
		{"or short circuit", bin(ir.OpOr, unknown, num("1")), "1"},
		{"ternary known cond", &ir.Expr{Kind: ir.ExprTernary, Args: []*ir.Expr{num("0"), unknown, ref}}, "5"},
		{"ternary same arms", &ir.Expr{Kind: ir.ExprTernary, Args: []*ir.Expr{unknown, num("5"), ref}}, "5"},
		{"call", &ir.Expr{Kind: ir.ExprCall, Args: []*ir.Expr{ref}}, ""},
		{"wraps", bin(ir.OpSub, num("0"), num("1")), "18446744069414584320"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := cp.eval(tt.e, st)
			switch {
			case tt.want == "" && ok:
				t.Errorf("want unknown, got %v", v)
			case tt.want != "" && (!ok || v.String() != tt.want):
				t.Errorf("got %v (%v), want %s", v, ok, tt.want)
			}
		})
	}
	if _, ok := cp.eval(ref, unreachable); ok {
		t.Error("nothing is known in unreachable code")
	}
}

func TestConstPropJoin(t *testing.T) {
	cp := &constProp{}
	a := consts{}.with(1, big.NewInt(1)).with(2, big.NewInt(2))
	b := consts{}.with(1, big.NewInt(1)).with(2, big.NewInt(3))
	j := cp.Join(a, b)
	if v, ok := j.lookup(1); !ok || v.Int64() != 1 {
		t.Error("agreeing constant lost")
	}
	if _, ok := j.lookup(2); ok {
		t.Error("differing constants must join to unknown")
	}
	if !cp.Equal(cp.Join(unreachable, a), a) || !cp.Equal(cp.Join(a, unreachable), a) {
		t.Error("unreachable is the join identity")
	}
	if len(a.vals) != 2 {
		t.Error("join modified its argument")
	}
}
