package testkit

import (
	"strconv"

	"wirecheck/internal/ast"
	"wirecheck/internal/source"
)

// Builder constructs AST fixtures. Every node gets a distinct, increasing
// one-byte span so that diagnostics can be matched back to the node that
// produced them.
type Builder struct {
	file source.FileID
	pos  uint32
}

func NewBuilder() *Builder {
	return &Builder{}
}

// InFile switches subsequent spans to another file.
func (b *Builder) InFile(id source.FileID) *Builder {
	b.file = id
	return b
}

func (b *Builder) span() source.Span {
	sp := source.Span{File: b.file, Start: b.pos, End: b.pos + 1}
	b.pos += 2
	return sp
}

func (b *Builder) node(kind ast.Kind, children ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: kind, Span: b.span(), Children: children}
}

// Expressions

func (b *Builder) Num(v string) *ast.Node {
	n := b.node(ast.KindNumber)
	n.Value = v
	return n
}

func (b *Builder) Int(v int64) *ast.Node {
	return b.Num(strconv.FormatInt(v, 10))
}

func (b *Builder) Ident(name string) *ast.Node {
	n := b.node(ast.KindIdent)
	n.Name = name
	return n
}

func (b *Builder) Bin(op string, lhs, rhs *ast.Node) *ast.Node {
	n := b.node(ast.KindBinary, lhs, rhs)
	n.Op = op
	return n
}

func (b *Builder) Un(op string, x *ast.Node) *ast.Node {
	n := b.node(ast.KindUnary, x)
	n.Op = op
	return n
}

func (b *Builder) Ternary(cond, then, els *ast.Node) *ast.Node {
	return b.node(ast.KindTernary, cond, then, els)
}

func (b *Builder) Call(name string, args ...*ast.Node) *ast.Node {
	n := b.node(ast.KindCall, args...)
	n.Name = name
	return n
}

func (b *Builder) Index(base, idx *ast.Node) *ast.Node {
	return b.node(ast.KindIndex, base, idx)
}

func (b *Builder) Access(base *ast.Node, field string) *ast.Node {
	n := b.node(ast.KindAccess, base)
	n.Name = field
	return n
}

func (b *Builder) Array(elems ...*ast.Node) *ast.Node {
	return b.node(ast.KindArray, elems...)
}

// Statements

func (b *Builder) Block(stmts ...*ast.Node) *ast.Node {
	return b.node(ast.KindBlock, stmts...)
}

// Var declares a variable; init may be nil.
func (b *Builder) Var(name string, init *ast.Node) *ast.Node {
	var n *ast.Node
	if init != nil {
		n = b.node(ast.KindVar, init)
	} else {
		n = b.node(ast.KindVar)
	}
	n.Name = name
	return n
}

// VarArray declares an array variable with the given dimensions.
func (b *Builder) VarArray(name string, dims ...*ast.Node) *ast.Node {
	n := b.Var(name, nil)
	n.Dims = dims
	return n
}

func (b *Builder) Signal(dir, name string, dims ...*ast.Node) *ast.Node {
	n := b.node(ast.KindSignal)
	n.Name = name
	n.Signal = dir
	n.Dims = dims
	return n
}

func (b *Builder) Input(name string, dims ...*ast.Node) *ast.Node {
	return b.Signal(ast.SignalInput, name, dims...)
}

func (b *Builder) Output(name string, dims ...*ast.Node) *ast.Node {
	return b.Signal(ast.SignalOutput, name, dims...)
}

func (b *Builder) Intermediate(name string, dims ...*ast.Node) *ast.Node {
	return b.Signal(ast.SignalIntermediate, name, dims...)
}

func (b *Builder) Component(name string, init *ast.Node) *ast.Node {
	var n *ast.Node
	if init != nil {
		n = b.node(ast.KindComponent, init)
	} else {
		n = b.node(ast.KindComponent)
	}
	n.Name = name
	return n
}

// Assign builds `target op value`; value may be nil for ++ and --.
func (b *Builder) Assign(target *ast.Node, op string, value *ast.Node) *ast.Node {
	var n *ast.Node
	if value != nil {
		n = b.node(ast.KindAssign, target, value)
	} else {
		n = b.node(ast.KindAssign, target)
	}
	n.Op = op
	return n
}

func (b *Builder) Constrain(lhs, rhs *ast.Node) *ast.Node {
	return b.node(ast.KindConstrain, lhs, rhs)
}

// If builds a branch; els may be nil.
func (b *Builder) If(cond, then, els *ast.Node) *ast.Node {
	if els == nil {
		return b.node(ast.KindIf, cond, then)
	}
	return b.node(ast.KindIf, cond, then, els)
}

func (b *Builder) While(cond, body *ast.Node) *ast.Node {
	return b.node(ast.KindWhile, cond, body)
}

func (b *Builder) For(init, cond, step, body *ast.Node) *ast.Node {
	return b.node(ast.KindFor, init, cond, step, body)
}

// Return builds a return statement; value may be nil.
func (b *Builder) Return(value *ast.Node) *ast.Node {
	if value == nil {
		return b.node(ast.KindReturn)
	}
	return b.node(ast.KindReturn, value)
}

func (b *Builder) Assert(cond *ast.Node) *ast.Node {
	return b.node(ast.KindAssert, cond)
}

func (b *Builder) Log(args ...*ast.Node) *ast.Node {
	return b.node(ast.KindLog, args...)
}

// Raw builds a node of an arbitrary kind, e.g. one the analyzer does not know.
func (b *Builder) Raw(kind string, children ...*ast.Node) *ast.Node {
	return b.node(ast.Kind(kind), children...)
}

// Definitions

func (b *Builder) Template(name string, params []string, stmts ...*ast.Node) ast.Definition {
	return b.definition(ast.DefTemplate, name, params, stmts)
}

func (b *Builder) Function(name string, params []string, stmts ...*ast.Node) ast.Definition {
	return b.definition(ast.DefFunction, name, params, stmts)
}

func (b *Builder) definition(kind ast.DefKind, name string, params []string, stmts []*ast.Node) ast.Definition {
	def := ast.Definition{Kind: kind, Name: name, Span: b.span()}
	for _, p := range params {
		def.Params = append(def.Params, ast.Param{Name: p, Span: b.span()})
	}
	def.Body = b.Block(stmts...)
	return def
}

// Program wraps definitions into a program over a single virtual file.
func Program(defs ...ast.Definition) *ast.Program {
	return &ast.Program{
		Files:       []ast.SourceFile{{Path: "test.circom"}},
		Definitions: defs,
	}
}
