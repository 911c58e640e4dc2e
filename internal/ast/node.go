package ast

import (
	"wirecheck/internal/source"
)

// Kind names a node shape produced by the external parser.
// The set is open on the wire; the IR builder rejects kinds it does not know.
type Kind string

// Statement kinds.
const (
	KindBlock     Kind = "block"
	KindVar       Kind = "var"       // Name, Dims, Children[0] = optional initializer
	KindSignal    Kind = "signal"    // Name, Signal, Dims
	KindComponent Kind = "component" // Name, Dims, Children[0] = optional initializer
	KindAssign    Kind = "assign"    // Op, Children = [target, value]; value absent for ++/--
	KindConstrain Kind = "constrain" // Children = [lhs, rhs]
	KindIf        Kind = "if"        // Children = [cond, then, else?]
	KindWhile     Kind = "while"     // Children = [cond, body]
	KindFor       Kind = "for"       // Children = [init, cond, step, body]
	KindReturn    Kind = "return"    // Children = [value?]
	KindAssert    Kind = "assert"    // Children = [cond]
	KindLog       Kind = "log"       // Children = args
)

// Expression kinds.
const (
	KindNumber  Kind = "number"  // Value
	KindIdent   Kind = "ident"   // Name
	KindUnary   Kind = "unary"   // Op, Children = [x]
	KindBinary  Kind = "binary"  // Op, Children = [lhs, rhs]
	KindTernary Kind = "ternary" // Children = [cond, then, else]
	KindCall    Kind = "call"    // Name, Children = args
	KindIndex   Kind = "index"   // Children = [base, index]
	KindAccess  Kind = "access"  // Name = field, Children = [base]
	KindArray   Kind = "array"   // Children = elements
)

// Signal directions for KindSignal.
const (
	SignalInput        = "input"
	SignalOutput       = "output"
	SignalIntermediate = "intermediate"
)

// Node is the loosely typed syntax tree the parser hands over.
// Field usage depends on Kind, see the constants above.
type Node struct {
	Kind     Kind        `json:"kind" msgpack:"kind"`
	Name     string      `json:"name,omitempty" msgpack:"name,omitempty"`
	Op       string      `json:"op,omitempty" msgpack:"op,omitempty"`
	Value    string      `json:"value,omitempty" msgpack:"value,omitempty"`
	Signal   string      `json:"signal,omitempty" msgpack:"signal,omitempty"`
	Dims     []*Node     `json:"dims,omitempty" msgpack:"dims,omitempty"`
	Span     source.Span `json:"span" msgpack:"span"`
	Children []*Node     `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// IsStmt reports whether the kind is one of the statement kinds.
func (k Kind) IsStmt() bool {
	switch k {
	case KindBlock, KindVar, KindSignal, KindComponent, KindAssign, KindConstrain,
		KindIf, KindWhile, KindFor, KindReturn, KindAssert, KindLog:
		return true
	default:
		return false
	}
}

// IsExpr reports whether the kind is one of the expression kinds.
func (k Kind) IsExpr() bool {
	switch k {
	case KindNumber, KindIdent, KindUnary, KindBinary, KindTernary,
		KindCall, KindIndex, KindAccess, KindArray:
		return true
	default:
		return false
	}
}
