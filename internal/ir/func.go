package ir

import (
	"wirecheck/internal/ast"
	"wirecheck/internal/source"
)

// Func is the IR of one template or function.
type Func struct {
	Name    string
	Kind    ast.DefKind
	Library bool
	Span    source.Span

	Names  *source.Interner
	Decls  *Decls
	Scopes *Scopes
	Root   ScopeID
	Params []DeclID
	Body   []*Stmt
}

func (f *Func) Decl(id DeclID) *Decl {
	return f.Decls.Get(id)
}

func (f *Func) Scope(id ScopeID) *Scope {
	return f.Scopes.Get(id)
}

// DeclName returns the display name of a declaration.
func (f *Func) DeclName(id DeclID) string {
	d := f.Decls.Get(id)
	if d == nil {
		return "<unresolved>"
	}
	return f.Names.MustLookup(d.Name)
}

// NameOf returns the text of an interned name.
func (f *Func) NameOf(id source.StringID) string {
	s, _ := f.Names.Lookup(id)
	return s
}
