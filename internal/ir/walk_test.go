package ir

import (
	"slices"
	"testing"

	"wirecheck/internal/source"
)

func leaf(v string) *Expr { return &Expr{Kind: ExprConst, Value: v} }

func bin(op Op, l, r *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, Args: []*Expr{l, r}}
}

func TestWalkOrders(t *testing.T) {
	// (a * b) + c
	e := bin(OpAdd, bin(OpMul, leaf("a"), leaf("b")), leaf("c"))

	var pre []string
	WalkExpr(e, func(x *Expr) bool {
		if x.Kind == ExprConst {
			pre = append(pre, x.Value)
		} else {
			pre = append(pre, x.Op.String())
		}
		return true
	})
	if want := []string{"+", "*", "a", "b", "c"}; !slices.Equal(pre, want) {
		t.Errorf("pre-order = %v, want %v", pre, want)
	}

	var post []string
	PostOrder(e, func(x *Expr) {
		if x.Kind == ExprConst {
			post = append(post, x.Value)
		} else {
			post = append(post, x.Op.String())
		}
	})
	if want := []string{"a", "b", "*", "c", "+"}; !slices.Equal(post, want) {
		t.Errorf("post-order = %v, want %v", post, want)
	}

	var skipped []string
	WalkExpr(e, func(x *Expr) bool {
		skipped = append(skipped, x.Kind.String())
		return x.Op != OpMul
	})
	if len(skipped) != 3 {
		t.Errorf("skip children visited %v", skipped)
	}
}

func TestRefsAndMentions(t *testing.T) {
	e := bin(OpAdd, &Expr{Kind: ExprRef, Decl: 3}, bin(OpMul, &Expr{Kind: ExprRef, Decl: 0}, &Expr{Kind: ExprRef, Decl: 5}))
	if got := Refs(nil, e); !slices.Equal(got, []DeclID{3, 5}) {
		t.Errorf("Refs = %v", got)
	}
	if !Mentions(e, 5) || Mentions(e, 4) {
		t.Error("Mentions wrong")
	}
}

func TestWalkStmtsOrder(t *testing.T) {
	s := func(k StmtKind, body, els []*Stmt) *Stmt { return &Stmt{Kind: k, Body: body, Else: els} }
	prog := []*Stmt{
		s(StmtIf, []*Stmt{s(StmtLog, nil, nil)}, []*Stmt{s(StmtAssert, nil, nil)}),
		s(StmtReturn, nil, nil),
	}
	var kinds []StmtKind
	WalkStmts(prog, func(st *Stmt) bool {
		kinds = append(kinds, st.Kind)
		return true
	})
	want := []StmtKind{StmtIf, StmtLog, StmtAssert, StmtReturn}
	if !slices.Equal(kinds, want) {
		t.Errorf("order = %v, want %v", kinds, want)
	}
}

func TestOpClassification(t *testing.T) {
	for _, s := range []string{"&", "|", "^"} {
		op, ok := ParseBinaryOp(s)
		if !ok || !op.IsBitwise() {
			t.Errorf("%s should be bitwise", s)
		}
	}
	if op, _ := ParseUnaryOp("~"); !op.IsBitwise() {
		t.Error("~ should be bitwise")
	}
	for _, s := range []string{"<", "<=", ">", ">="} {
		if op, _ := ParseBinaryOp(s); !op.IsRelational() {
			t.Errorf("%s should be relational", s)
		}
	}
	if op, _ := ParseBinaryOp("=="); op.IsRelational() {
		t.Error("== is not relational")
	}
	if OpNeg.String() != "-" || OpIntDiv.String() != "\\" {
		t.Error("operator spelling")
	}
}

func TestFormatExpr(t *testing.T) {
	names := source.NewInterner()
	fn := &Func{Names: names}
	ref := func(name string) *Expr {
		return &Expr{Kind: ExprRef, Name: names.Intern(name)}
	}
	// f(i, n[0]) * -(i + 1) < c.in
	call := &Expr{Kind: ExprCall, Name: names.Intern("f"), Args: []*Expr{
		ref("i"),
		{Kind: ExprIndex, Args: []*Expr{ref("n"), leaf("0")}},
	}}
	neg := &Expr{Kind: ExprUnary, Op: OpNeg, Args: []*Expr{bin(OpAdd, ref("i"), leaf("1"))}}
	field := &Expr{Kind: ExprField, Name: names.Intern("in"), Args: []*Expr{ref("c")}}
	e := bin(OpLt, bin(OpMul, call, neg), field)

	want := "(f(i, n[0]) * -(i + 1)) < c.in"
	if got := FormatExpr(fn, e); got != want {
		t.Errorf("FormatExpr = %q, want %q", got, want)
	}
}
