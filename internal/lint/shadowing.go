package lint

import (
	"wirecheck/internal/diag"
	"wirecheck/internal/ir"
)

var AnalyzerShadowing = &Analyzer{
	Code:     diag.LintShadowing,
	Severity: diag.SevWarning,
	Doc:      "Warn when a declaration shadows a same-named declaration of an enclosing scope.",
	Run:      runShadowing,
}

func runShadowing(pass *Pass) error {
	fn := pass.Func
	stack := []ir.ScopeID{fn.Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sc := fn.Scope(id)
		if sc == nil {
			continue
		}
		for _, did := range sc.Decls {
			d := fn.Decl(did)
			if !d.Shadows.IsValid() {
				continue
			}
			shadowed := fn.Decl(d.Shadows)
			name := fn.NameOf(d.Name)
			pass.Report(d.Span, "declaration of `"+name+"` shadows a previous declaration").
				WithNote(shadowed.Span, "shadowed "+shadowed.Kind.String()+" `"+name+"` is declared here").
				Emit()
		}
		for i := len(sc.Children) - 1; i >= 0; i-- {
			stack = append(stack, sc.Children[i])
		}
	}
	return nil
}
