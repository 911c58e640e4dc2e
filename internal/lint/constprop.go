package lint

import (
	"math/big"

	"wirecheck/internal/cfg"
	"wirecheck/internal/dataflow"
	"wirecheck/internal/field"
	"wirecheck/internal/ir"
)

// consts is a constant-propagation state. bottom marks code that cannot be
// reached; otherwise a declaration missing from vals is unknown. A state is
// never modified after it is returned from a transfer function.
type consts struct {
	bottom bool
	vals   map[ir.DeclID]*big.Int
}

var unreachable = consts{bottom: true}

func (c consts) lookup(id ir.DeclID) (*big.Int, bool) {
	if c.bottom {
		return nil, false
	}
	v, ok := c.vals[id]
	return v, ok
}

func (c consts) with(id ir.DeclID, v *big.Int) consts {
	out := consts{vals: make(map[ir.DeclID]*big.Int, len(c.vals)+1)}
	for k, x := range c.vals {
		if k != id {
			out.vals[k] = x
		}
	}
	if v != nil {
		out.vals[id] = v
	}
	return out
}

// constProp folds declarations to field constants and cuts edges whose
// condition is statically decided.
type constProp struct {
	f *field.Field
}

func (cp *constProp) Direction() dataflow.Direction { return dataflow.Forward }

func (cp *constProp) Boundary() consts { return consts{} }

func (cp *constProp) Initial() consts { return unreachable }

func (cp *constProp) Join(a, b consts) consts {
	if a.bottom {
		return b
	}
	if b.bottom {
		return a
	}
	out := consts{vals: make(map[ir.DeclID]*big.Int)}
	for id, x := range a.vals {
		if y, ok := b.vals[id]; ok && x.Cmp(y) == 0 {
			out.vals[id] = x
		}
	}
	return out
}

func (cp *constProp) Equal(a, b consts) bool {
	if a.bottom || b.bottom {
		return a.bottom == b.bottom
	}
	if len(a.vals) != len(b.vals) {
		return false
	}
	for id, x := range a.vals {
		y, ok := b.vals[id]
		if !ok || x.Cmp(y) != 0 {
			return false
		}
	}
	return true
}

func (cp *constProp) Transfer(s *ir.Stmt, in consts) consts {
	if in.bottom {
		return in
	}
	lv, _, ok := s.Assignment()
	switch {
	case ok && lv.Decl.IsValid() && !lv.IsPartial():
		v, known := cp.eval(s.Value, in)
		if !known {
			v = nil
		}
		return in.with(lv.Decl, v)
	case ok && lv.Decl.IsValid():
		return in.with(lv.Decl, nil)
	case s.Kind == ir.StmtDecl:
		return in.with(s.Decl, nil)
	}
	return in
}

func (cp *constProp) TransferCond(_ *ir.Expr, in consts) consts { return in }

func (cp *constProp) Edge(from *cfg.Block, e cfg.Edge, out consts) consts {
	if out.bottom || !from.Conditional() {
		return out
	}
	v, ok := cp.eval(from.Cond, out)
	if !ok {
		return out
	}
	taken := field.Truthy(v)
	if (e.Kind == cfg.EdgeTrue && !taken) || (e.Kind == cfg.EdgeFalse && taken) {
		return unreachable
	}
	return out
}

type folded struct {
	v  *big.Int
	ok bool
}

// eval folds e under state c. Calls, indexing, component fields and array
// literals are never known.
func (cp *constProp) eval(e *ir.Expr, c consts) (*big.Int, bool) {
	if e == nil || c.bottom {
		return nil, false
	}
	var stack []folded
	pop := func(n int) []folded {
		args := stack[len(stack)-n:]
		stack = stack[:len(stack)-n]
		return args
	}
	ir.PostOrder(e, func(x *ir.Expr) {
		args := pop(len(x.Args))
		var r folded
		switch x.Kind {
		case ir.ExprConst:
			r.v, r.ok = cp.f.Parse(x.Value)
		case ir.ExprRef:
			r.v, r.ok = c.lookup(x.Decl)
		case ir.ExprUnary:
			if args[0].ok {
				r.v, r.ok = cp.f.Unary(x.Op.String(), args[0].v)
			}
		case ir.ExprBinary:
			r = cp.binary(x.Op, args[0], args[1])
		case ir.ExprTernary:
			switch {
			case args[0].ok && field.Truthy(args[0].v):
				r = args[1]
			case args[0].ok:
				r = args[2]
			case args[1].ok && args[2].ok && args[1].v.Cmp(args[2].v) == 0:
				r = args[1]
			}
		}
		stack = append(stack, r)
	})
	if len(stack) != 1 {
		return nil, false
	}
	return stack[0].v, stack[0].ok
}

func (cp *constProp) binary(op ir.Op, a, b folded) folded {
	// && и || решаются по одному известному операнду
	switch op {
	case ir.OpAnd:
		if (a.ok && !field.Truthy(a.v)) || (b.ok && !field.Truthy(b.v)) {
			return folded{big.NewInt(0), true}
		}
	case ir.OpOr:
		if (a.ok && field.Truthy(a.v)) || (b.ok && field.Truthy(b.v)) {
			return folded{big.NewInt(1), true}
		}
	}
	if !a.ok || !b.ok {
		return folded{}
	}
	v, ok := cp.f.Binary(op.String(), a.v, b.v)
	return folded{v, ok}
}
