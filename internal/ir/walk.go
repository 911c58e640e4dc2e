package ir

// WalkExpr visits e and its subexpressions in pre-order. Returning false
// from fn skips the children of the current node. Iterative, so deeply
// nested generated expressions do not grow the goroutine stack.
func WalkExpr(e *Expr, fn func(*Expr) bool) {
	if e == nil {
		return
	}
	stack := []*Expr{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil || !fn(cur) {
			continue
		}
		for i := len(cur.Args) - 1; i >= 0; i-- {
			stack = append(stack, cur.Args[i])
		}
	}
}

// PostOrder visits children before parents, left to right.
func PostOrder(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	type frame struct {
		e    *Expr
		next int
	}
	stack := []frame{{e: e}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.e.Args) {
			child := top.e.Args[top.next]
			top.next++
			if child != nil {
				stack = append(stack, frame{e: child})
			}
			continue
		}
		fn(top.e)
		stack = stack[:len(stack)-1]
	}
}

// Refs appends every resolved declaration read by e to dst.
func Refs(dst []DeclID, e *Expr) []DeclID {
	WalkExpr(e, func(x *Expr) bool {
		if x.Kind == ExprRef && x.Decl.IsValid() {
			dst = append(dst, x.Decl)
		}
		return true
	})
	return dst
}

// Mentions reports whether e references decl.
func Mentions(e *Expr, decl DeclID) bool {
	found := false
	WalkExpr(e, func(x *Expr) bool {
		if found {
			return false
		}
		if x.Kind == ExprRef && x.Decl == decl {
			found = true
		}
		return !found
	})
	return found
}

// WalkStmts visits statements in source order, descending into blocks,
// branch arms and loop bodies. Returning false skips nested statements.
func WalkStmts(stmts []*Stmt, fn func(*Stmt) bool) {
	stack := make([]*Stmt, 0, len(stmts))
	pushAll := func(list []*Stmt) {
		for i := len(list) - 1; i >= 0; i-- {
			stack = append(stack, list[i])
		}
	}
	pushAll(stmts)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		// else arm pushed first so the then arm is visited first
		pushAll(cur.Else)
		pushAll(cur.Body)
	}
}
