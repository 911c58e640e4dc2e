package cfg

import (
	"wirecheck/internal/ir"
)

// BlockID indexes CFG.Blocks. The entry block is always 0.
type BlockID uint32

type EdgeKind uint8

const (
	EdgeJump EdgeKind = iota
	EdgeTrue
	EdgeFalse
	EdgeLoopBack
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeJump:
		return "jump"
	case EdgeTrue:
		return "true"
	case EdgeFalse:
		return "false"
	case EdgeLoopBack:
		return "loop-back"
	default:
		return "invalid"
	}
}

type Edge struct {
	To   BlockID
	Kind EdgeKind
}

// TermKind says how control leaves a block.
type TermKind uint8

const (
	TermNone   TermKind = iota // falls through along at most one edge, or exits
	TermBranch                 // if: true and false edges
	TermLoop                   // loop header: true enters the body, false exits
	TermReturn                 // no successors
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermBranch:
		return "branch"
	case TermLoop:
		return "loop"
	case TermReturn:
		return "return"
	default:
		return "invalid"
	}
}

// Block is a straight-line statement run. Stmts holds only declarations,
// assignments, constraints, asserts, logs and a trailing return.
type Block struct {
	ID    BlockID
	Stmts []*ir.Stmt
	Term  TermKind
	Cond  *ir.Expr // TermBranch and TermLoop
	Owner *ir.Stmt // the if/while statement that produced Cond
	Succs []Edge   // for conditions: true edge first
	Preds []BlockID
}

func (b *Block) IsExit() bool {
	return len(b.Succs) == 0
}

// Conditional reports whether the block ends in a branch or loop condition.
func (b *Block) Conditional() bool {
	return b.Term == TermBranch || b.Term == TermLoop
}

// CFG is the control-flow graph of one template or function.
type CFG struct {
	Func   *ir.Func
	Blocks []*Block
	Entry  BlockID
}

func (g *CFG) Block(id BlockID) *Block {
	if int(id) >= len(g.Blocks) {
		return nil
	}
	return g.Blocks[id]
}

func (g *CFG) Len() int { return len(g.Blocks) }

// Preds returns the predecessors of id in edge-creation order.
func (g *CFG) Preds(id BlockID) []BlockID {
	if b := g.Block(id); b != nil {
		return b.Preds
	}
	return nil
}

// Exits lists blocks without successors.
func (g *CFG) Exits() []BlockID {
	var out []BlockID
	for _, b := range g.Blocks {
		if b.IsExit() {
			out = append(out, b.ID)
		}
	}
	return out
}
