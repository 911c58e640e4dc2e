// Package dataflow is a worklist fixpoint solver over cfg.CFG, generic in
// the lattice value type.
//
// Values are per block and always expressed in program order: In[b] holds
// at the first statement of b, Out[b] after its condition. A forward
// analysis computes Out from In; a backward analysis computes In from Out.
package dataflow

import (
	"errors"

	"wirecheck/internal/cfg"
	"wirecheck/internal/ir"
)

type Direction uint8

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Analysis describes one lattice and its transfer functions. Join and
// Transfer must not modify their arguments; the solver keeps every stored
// value alive.
type Analysis[V any] interface {
	Direction() Direction
	// Boundary is the value flowing into the entry (forward) or out of
	// every exit block (backward).
	Boundary() V
	// Initial is the starting approximation of every other block, the
	// lattice bottom.
	Initial() V
	Join(a, b V) V
	Equal(a, b V) bool
	Transfer(s *ir.Stmt, v V) V
	// TransferCond accounts for evaluating a branch or loop condition at the
	// end of a block.
	TransferCond(cond *ir.Expr, v V) V
}

// EdgeAnalysis refines the value carried along one edge. For a forward
// analysis v is Out[from]; for a backward analysis it is In[e.To].
type EdgeAnalysis[V any] interface {
	Analysis[V]
	Edge(from *cfg.Block, e cfg.Edge, v V) V
}

// ErrAborted is returned when the visit cap is exceeded.
var ErrAborted = errors.New("dataflow: iteration cap exceeded")

type Options[V any] struct {
	// MaxVisits caps block visits; 0 derives the cap from the graph and
	// Height with DefaultMaxVisits.
	MaxVisits int
	// Height is the longest ascending chain of one block value, e.g. the
	// number of tracked declarations. 0 means unknown.
	Height int
	// OnUpdate observes every stored change of the computed side
	// (Out for forward, In for backward).
	OnUpdate func(b cfg.BlockID, old, new V)
}

// DefaultMaxVisits bounds a monotone solve: a block value changes at most
// height times and every change re-enqueues one neighbour per edge, so
// visits <= blocks + height*edges. Unknown height counts as 64.
func DefaultMaxVisits(blocks, edges, height int) int {
	if height <= 0 {
		height = 64
	}
	return blocks + (height+1)*(edges+1) + 1024
}

type Result[V any] struct {
	In, Out []V
	Visits  int
	Updates int
}

// At returns the computed value of block b: Out for forward, In for
// backward analyses.
func (r *Result[V]) At(b cfg.BlockID, dir Direction) V {
	if dir == Backward {
		return r.In[b]
	}
	return r.Out[b]
}
