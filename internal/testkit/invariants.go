package testkit

import (
	"errors"
	"fmt"

	"wirecheck/internal/ast"
)

// CheckSpanInvariants runs a minimal set of span invariants on a definition:
// 1) the definition, parameter and node spans are well-formed (Start <= End)
// 2) every parameter and node lives in the definition's file
// 3) no nil children outside optional slots
func CheckSpanInvariants(def *ast.Definition) error {
	if def == nil || def.Body == nil {
		return fmt.Errorf("nil definition or body")
	}
	var errs []error
	if def.Span.Start > def.Span.End {
		errs = append(errs, fmt.Errorf("%s %s has inverted span %v", def.Kind, def.Name, def.Span))
	}
	for _, p := range def.Params {
		if p.Span.Start > p.Span.End || p.Span.File != def.Span.File {
			errs = append(errs, fmt.Errorf("parameter %s has bad span %v", p.Name, p.Span))
		}
	}
	stack := []*ast.Node{def.Body}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Span.Start > n.Span.End {
			errs = append(errs, fmt.Errorf("%s node has inverted span %v", n.Kind, n.Span))
		}
		if n.Span.File != def.Span.File {
			errs = append(errs, fmt.Errorf("%s node span in file %d, definition in %d", n.Kind, n.Span.File, def.Span.File))
		}
		for i, c := range n.Children {
			if c == nil {
				if n.Kind == ast.KindFor {
					continue // init/step may be omitted
				}
				errs = append(errs, fmt.Errorf("%s node has nil child %d", n.Kind, i))
				continue
			}
			stack = append(stack, c)
		}
		for _, d := range n.Dims {
			if d != nil {
				stack = append(stack, d)
			}
		}
	}
	return errors.Join(errs...)
}
