package ir

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"wirecheck/internal/ast"
	"wirecheck/internal/diag"
	"wirecheck/internal/source"
)

// ErrUnsupported is matched by every error about a construct the analyzer
// cannot model.
var ErrUnsupported = errors.New("unsupported construct")

// UnsupportedError carries the location of the offending construct.
type UnsupportedError struct {
	What string
	Span source.Span
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s at %s", e.What, e.Span)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

func unsupported(sp source.Span, format string, args ...any) error {
	return &UnsupportedError{What: fmt.Sprintf(format, args...), Span: sp}
}

// MaxNesting bounds statement nesting (blocks, branches, loops).
// Expressions are lowered iteratively and have no depth limit.
const MaxNesting = 4096

type builder struct {
	fn    *Func
	r     diag.Reporter
	scope ScopeID
	depth int
}

// Build lowers one definition into IR, resolving every name to a
// declaration identity. Unresolved names are reported to r and left as
// NoDeclID. An unknown node kind aborts the definition with an error
// wrapping ErrUnsupported.
func Build(def *ast.Definition, names *source.Interner, r diag.Reporter) (*Func, error) {
	if def == nil || def.Body == nil {
		return nil, errors.New("ir: definition without body")
	}
	if names == nil {
		names = source.NewInterner()
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	fn := &Func{
		Name:    def.Name,
		Kind:    def.Kind,
		Library: def.Library,
		Span:    def.Span,
		Names:   names,
		Decls:   NewDecls(0),
		Scopes:  NewScopes(0),
	}
	b := &builder{fn: fn, r: r}
	fn.Root = fn.Scopes.New(ScopeBody, NoScopeID, def.Body.Span)
	b.scope = fn.Root

	for _, p := range def.Params {
		b.declareParam(p)
	}

	var (
		body []*Stmt
		err  error
	)
	if def.Body.Kind == ast.KindBlock {
		body, err = b.stmtList(def.Body.Children)
	} else {
		body, err = b.stmtList([]*ast.Node{def.Body})
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", def.Kind, def.Name, err)
	}
	fn.Body = body
	return fn, nil
}

func (b *builder) intern(name string) source.StringID {
	return b.fn.Names.Intern(norm.NFC.String(name))
}

func (b *builder) declare(name source.StringID, kind DeclKind, flags DeclFlags, sp source.Span) DeclID {
	sc := b.fn.Scopes.Get(b.scope)
	shadows := NoDeclID
	if _, same := sc.NameIndex[name]; !same {
		shadows = b.fn.Scopes.Lookup(sc.Parent, name)
	}
	id := b.fn.Decls.New(Decl{
		Name:    name,
		Scope:   b.scope,
		Kind:    kind,
		Flags:   flags,
		Span:    sp,
		Shadows: shadows,
	})
	sc.NameIndex[name] = id
	sc.Decls = append(sc.Decls, id)
	return id
}

func (b *builder) declareParam(p ast.Param) {
	name := b.intern(p.Name)
	root := b.fn.Scopes.Get(b.fn.Root)
	if prev, ok := root.NameIndex[name]; ok {
		msg := fmt.Sprintf("parameter `%s` is declared more than once", p.Name)
		rb := diag.ReportError(b.r, diag.IRParameterNameCollision, p.Span, msg)
		if d := b.fn.Decls.Get(prev); d != nil {
			rb.WithNote(d.Span, "first declared here")
		}
		rb.Emit()
	}
	id := b.declare(name, DeclLocal, DeclParam, p.Span)
	b.fn.Params = append(b.fn.Params, id)
}

func (b *builder) enter(sp source.Span) error {
	b.depth++
	if b.depth > MaxNesting {
		return unsupported(sp, "nesting deeper than %d levels", MaxNesting)
	}
	return nil
}

func (b *builder) leave() { b.depth-- }

// inScope runs fn inside a fresh child scope.
func (b *builder) inScope(kind ScopeKind, sp source.Span, fn func() error) (ScopeID, error) {
	saved := b.scope
	b.scope = b.fn.Scopes.New(kind, saved, sp)
	id := b.scope
	err := fn()
	b.scope = saved
	return id, err
}

func (b *builder) stmtList(nodes []*ast.Node) ([]*Stmt, error) {
	out := make([]*Stmt, 0, len(nodes))
	for _, n := range nodes {
		s, err := b.stmt(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// arm converts a branch arm or loop body in its own scope. A block node
// does not open a second scope.
func (b *builder) arm(n *ast.Node, kind ScopeKind) ([]*Stmt, ScopeID, error) {
	var body []*Stmt
	id, err := b.inScope(kind, n.Span, func() error {
		var err error
		if n.Kind == ast.KindBlock {
			body, err = b.stmtList(n.Children)
		} else {
			body, err = b.stmtList([]*ast.Node{n})
		}
		return err
	})
	return body, id, err
}

func (b *builder) stmt(n *ast.Node) (*Stmt, error) {
	if n == nil {
		return nil, unsupported(source.Span{}, "missing statement")
	}
	if err := b.enter(n.Span); err != nil {
		return nil, err
	}
	defer b.leave()

	switch n.Kind {
	case ast.KindBlock:
		s := &Stmt{Kind: StmtBlock, Span: n.Span}
		var err error
		s.BodyScope, err = b.inScope(ScopeBlock, n.Span, func() error {
			var err error
			s.Body, err = b.stmtList(n.Children)
			return err
		})
		return s, err

	case ast.KindVar:
		return b.declStmt(n, DeclLocal, AssignPlain)

	case ast.KindComponent:
		return b.declStmt(n, DeclComponent, AssignPlain)

	case ast.KindSignal:
		var kind DeclKind
		switch n.Signal {
		case ast.SignalInput:
			kind = DeclInput
		case ast.SignalOutput:
			kind = DeclOutput
		case ast.SignalIntermediate, "":
			kind = DeclIntermediate
		default:
			return nil, unsupported(n.Span, "signal direction %q", n.Signal)
		}
		op := AssignConstraint
		switch n.Op {
		case "", "<==":
		case "<--":
			op = AssignWitness
		default:
			return nil, unsupported(n.Span, "signal initializer %q", n.Op)
		}
		return b.declStmt(n, kind, op)

	case ast.KindAssign:
		return b.assignStmt(n)

	case ast.KindConstrain:
		if err := need(n, 2); err != nil {
			return nil, err
		}
		lhs, err := b.expr(n.Children[0])
		if err != nil {
			return nil, err
		}
		rhs, err := b.expr(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtConstrain, Span: n.Span, Lhs: lhs, Rhs: rhs}, nil

	case ast.KindIf:
		if err := need(n, 2); err != nil {
			return nil, err
		}
		cond, err := b.expr(n.Children[0])
		if err != nil {
			return nil, err
		}
		s := &Stmt{Kind: StmtIf, Span: n.Span, Cond: cond}
		if s.Body, s.BodyScope, err = b.arm(n.Children[1], ScopeBranch); err != nil {
			return nil, err
		}
		if els := n.Child(2); els != nil {
			s.HasElse = true
			if s.Else, s.ElseScope, err = b.arm(els, ScopeBranch); err != nil {
				return nil, err
			}
		}
		return s, nil

	case ast.KindWhile:
		if err := need(n, 2); err != nil {
			return nil, err
		}
		cond, err := b.expr(n.Children[0])
		if err != nil {
			return nil, err
		}
		s := &Stmt{Kind: StmtWhile, Span: n.Span, Cond: cond}
		if s.Body, s.BodyScope, err = b.arm(n.Children[1], ScopeLoop); err != nil {
			return nil, err
		}
		return s, nil

	case ast.KindFor:
		return b.forStmt(n)

	case ast.KindReturn:
		s := &Stmt{Kind: StmtReturn, Span: n.Span}
		if v := n.Child(0); v != nil {
			var err error
			if s.Value, err = b.expr(v); err != nil {
				return nil, err
			}
		}
		return s, nil

	case ast.KindAssert:
		if err := need(n, 1); err != nil {
			return nil, err
		}
		v, err := b.expr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtAssert, Span: n.Span, Value: v}, nil

	case ast.KindLog:
		args, err := b.exprList(n.Children)
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtLog, Span: n.Span, Args: args}, nil

	default:
		return nil, unsupported(n.Span, "statement kind %q", n.Kind)
	}
}

func (b *builder) declStmt(n *ast.Node, kind DeclKind, op AssignOp) (*Stmt, error) {
	if n.Name == "" {
		return nil, unsupported(n.Span, "%s declaration without a name", n.Kind)
	}
	dims, err := b.exprList(n.Dims)
	if err != nil {
		return nil, err
	}
	var init *Expr
	if c := n.Child(0); c != nil {
		// инициализатор видит внешнее объявление, не новое
		if init, err = b.expr(c); err != nil {
			return nil, err
		}
	}
	var flags DeclFlags
	if len(dims) > 0 {
		flags |= DeclArray
	}
	name := b.intern(n.Name)
	id := b.declare(name, kind, flags, n.Span)
	ref := &Expr{Kind: ExprRef, Span: n.Span, Name: name, Decl: id}
	return &Stmt{
		Kind:     StmtDecl,
		Span:     n.Span,
		Decl:     id,
		Dims:     dims,
		AssignOp: op,
		Value:    init,
		Target:   LValue{Decl: id, Name: name, Expr: ref, Span: n.Span},
	}, nil
}

func (b *builder) assignStmt(n *ast.Node) (*Stmt, error) {
	s := &Stmt{Kind: StmtAssign, Span: n.Span}
	reversed := false
	binop, compound := compoundOps[n.Op]
	switch n.Op {
	case "=":
		s.AssignOp = AssignPlain
	case "<--":
		s.AssignOp = AssignWitness
	case "<==":
		s.AssignOp = AssignConstraint
	case "-->":
		s.AssignOp, reversed = AssignWitness, true
	case "==>":
		s.AssignOp, reversed = AssignConstraint, true
	default:
		if !compound {
			return nil, unsupported(n.Span, "assignment operator %q", n.Op)
		}
		s.AssignOp = AssignPlain
		s.Compound = true
	}

	increment := n.Op == "++" || n.Op == "--"
	if increment {
		if err := need(n, 1); err != nil {
			return nil, err
		}
	} else if err := need(n, 2); err != nil {
		return nil, err
	}

	// операнды в порядке исходного текста
	first, err := b.expr(n.Children[0])
	if err != nil {
		return nil, err
	}
	var second *Expr
	if increment {
		second = &Expr{Kind: ExprConst, Span: n.Span, Value: "1"}
	} else if second, err = b.expr(n.Children[1]); err != nil {
		return nil, err
	}
	target, value := first, second
	if reversed {
		target, value = second, first
	}

	lv, ok := lvalueOf(target)
	if !ok {
		return nil, unsupported(target.Span, "assignment target")
	}
	s.Target = lv
	if s.Compound {
		value = &Expr{Kind: ExprBinary, Span: n.Span, Op: binop, Args: []*Expr{target, value}}
	}
	s.Value = value
	return s, nil
}

// forStmt lowers for (init; cond; step) body into
// { init; while (cond) { body; step } } with init scoped to the loop.
func (b *builder) forStmt(n *ast.Node) (*Stmt, error) {
	if len(n.Children) < 4 || n.Children[3] == nil {
		return nil, unsupported(n.Span, "malformed for loop")
	}
	outer := &Stmt{Kind: StmtBlock, Span: n.Span}
	var err error
	outer.BodyScope, err = b.inScope(ScopeBlock, n.Span, func() error {
		if init := n.Children[0]; init != nil {
			s, err := b.stmt(init)
			if err != nil {
				return err
			}
			outer.Body = append(outer.Body, s)
		}
		var cond *Expr
		if c := n.Children[1]; c != nil {
			var err error
			if cond, err = b.expr(c); err != nil {
				return err
			}
		} else {
			cond = &Expr{Kind: ExprConst, Span: n.Span, Value: "1"}
		}
		var step *Stmt
		if st := n.Children[2]; st != nil {
			var err error
			if step, err = b.stmt(st); err != nil {
				return err
			}
		}
		loop := &Stmt{Kind: StmtWhile, Span: n.Span, Cond: cond}
		var err error
		if loop.Body, loop.BodyScope, err = b.arm(n.Children[3], ScopeLoop); err != nil {
			return err
		}
		if step != nil {
			loop.Body = append(loop.Body, step)
		}
		outer.Body = append(outer.Body, loop)
		return nil
	})
	return outer, err
}

func (b *builder) exprList(nodes []*ast.Node) ([]*Expr, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]*Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := b.expr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// exprFrame is an operator node whose operands are still being lowered.
type exprFrame struct {
	node  *ast.Node
	expr  *Expr
	arity int
	next  int
}

// expr lowers an expression tree with an explicit stack, so generated
// operator chains of any length stay within a constant Go stack.
func (b *builder) expr(root *ast.Node) (*Expr, error) {
	if root == nil {
		return nil, unsupported(source.Span{}, "missing expression")
	}
	var (
		result *Expr
		stack  []exprFrame
	)
	deliver := func(e *Expr) {
		if len(stack) == 0 {
			result = e
			return
		}
		top := &stack[len(stack)-1]
		top.expr.Args = append(top.expr.Args, e)
	}
	push := func(n *ast.Node) error {
		e, arity, err := b.exprHead(n)
		if err != nil {
			return err
		}
		if arity == 0 {
			deliver(e)
			return nil
		}
		e.Args = make([]*Expr, 0, arity)
		stack = append(stack, exprFrame{node: n, expr: e, arity: arity})
		return nil
	}

	if err := push(root); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == top.arity {
			e := top.expr
			stack = stack[:len(stack)-1]
			deliver(e)
			continue
		}
		child := top.node.Children[top.next]
		top.next++
		if err := push(child); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// exprHead converts a single node and reports how many of its children are
// operands. Identifiers are resolved here, in source order.
func (b *builder) exprHead(n *ast.Node) (*Expr, int, error) {
	e := &Expr{Span: n.Span}
	arity := 0
	switch n.Kind {
	case ast.KindNumber:
		e.Kind, e.Value = ExprConst, n.Value
		return e, 0, nil
	case ast.KindIdent:
		e.Kind = ExprRef
		e.Name = b.intern(n.Name)
		e.Decl = b.fn.Scopes.Lookup(b.scope, e.Name)
		if !e.Decl.IsValid() {
			msg := fmt.Sprintf("use of undeclared identifier `%s`", n.Name)
			diag.ReportError(b.r, diag.IRUnknownReference, n.Span, msg).Emit()
		}
		return e, 0, nil
	case ast.KindUnary:
		op, ok := ParseUnaryOp(n.Op)
		if !ok {
			return nil, 0, unsupported(n.Span, "unary operator %q", n.Op)
		}
		e.Kind, e.Op, arity = ExprUnary, op, 1
	case ast.KindBinary:
		op, ok := ParseBinaryOp(n.Op)
		if !ok {
			return nil, 0, unsupported(n.Span, "binary operator %q", n.Op)
		}
		e.Kind, e.Op, arity = ExprBinary, op, 2
	case ast.KindTernary:
		e.Kind, arity = ExprTernary, 3
	case ast.KindIndex:
		e.Kind, arity = ExprIndex, 2
	case ast.KindAccess:
		e.Kind, e.Name, arity = ExprField, b.intern(n.Name), 1
	case ast.KindCall:
		e.Kind, e.Name, arity = ExprCall, b.intern(n.Name), len(n.Children)
	case ast.KindArray:
		e.Kind, arity = ExprArray, len(n.Children)
	default:
		return nil, 0, unsupported(n.Span, "expression kind %q", n.Kind)
	}
	if err := need(n, arity); err != nil {
		return nil, 0, err
	}
	return e, arity, nil
}

func need(n *ast.Node, count int) error {
	if len(n.Children) < count {
		return unsupported(n.Span, "malformed %s node", n.Kind)
	}
	for i := range count {
		if n.Children[i] == nil {
			return unsupported(n.Span, "malformed %s node", n.Kind)
		}
	}
	return nil
}
