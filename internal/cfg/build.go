package cfg

import (
	"fmt"

	"fortio.org/safecast"

	"wirecheck/internal/ir"
)

// ErrUnsupported aliases the IR sentinel so callers match either layer.
var ErrUnsupported = ir.ErrUnsupported

const noBlock = ^BlockID(0)

type builder struct {
	g     *CFG
	cur   BlockID // noBlock after a return
	depth int
}

// Build linearizes fn into basic blocks. Statements following a return in
// the same sequence are dropped.
func Build(fn *ir.Func) (*CFG, error) {
	if fn == nil {
		return nil, fmt.Errorf("cfg: nil function")
	}
	b := &builder{g: &CFG{Func: fn}}
	b.g.Entry = b.newBlock()
	b.cur = b.g.Entry
	if err := b.seq(fn.Body); err != nil {
		return nil, fmt.Errorf("%s %s: %w", fn.Kind, fn.Name, err)
	}
	for _, blk := range b.g.Blocks {
		for _, e := range blk.Succs {
			to := b.g.Blocks[e.To]
			to.Preds = append(to.Preds, blk.ID)
		}
	}
	return b.g, nil
}

func (b *builder) newBlock() BlockID {
	n, err := safecast.Conv[uint32](len(b.g.Blocks))
	if err != nil {
		panic(fmt.Errorf("cfg blocks overflow: %w", err))
	}
	id := BlockID(n)
	b.g.Blocks = append(b.g.Blocks, &Block{ID: id})
	return id
}

func (b *builder) edge(from, to BlockID, kind EdgeKind) {
	blk := b.g.Blocks[from]
	blk.Succs = append(blk.Succs, Edge{To: to, Kind: kind})
}

func (b *builder) seq(stmts []*ir.Stmt) error {
	b.depth++
	defer func() { b.depth-- }()
	if b.depth > ir.MaxNesting {
		return &ir.UnsupportedError{What: "statement nesting", Span: b.g.Func.Span}
	}

	for _, s := range stmts {
		if b.cur == noBlock {
			break // недостижимый хвост после return
		}
		switch s.Kind {
		case ir.StmtDecl, ir.StmtAssign, ir.StmtConstrain, ir.StmtAssert, ir.StmtLog:
			cur := b.g.Blocks[b.cur]
			cur.Stmts = append(cur.Stmts, s)

		case ir.StmtReturn:
			cur := b.g.Blocks[b.cur]
			cur.Stmts = append(cur.Stmts, s)
			cur.Term = TermReturn
			b.cur = noBlock

		case ir.StmtBlock:
			if err := b.seq(s.Body); err != nil {
				return err
			}

		case ir.StmtIf:
			if err := b.branch(s); err != nil {
				return err
			}

		case ir.StmtWhile:
			if err := b.loop(s); err != nil {
				return err
			}

		default:
			return &ir.UnsupportedError{What: fmt.Sprintf("%s statement in control flow", s.Kind), Span: s.Span}
		}
	}
	return nil
}

func (b *builder) branch(s *ir.Stmt) error {
	head := b.g.Blocks[b.cur]
	head.Term, head.Cond, head.Owner = TermBranch, s.Cond, s

	thenID := b.newBlock()
	b.edge(head.ID, thenID, EdgeTrue)
	b.cur = thenID
	if err := b.seq(s.Body); err != nil {
		return err
	}
	thenEnd := b.cur

	elseID := b.newBlock()
	b.edge(head.ID, elseID, EdgeFalse)
	b.cur = elseID
	if err := b.seq(s.Else); err != nil {
		return err
	}
	elseEnd := b.cur

	if thenEnd == noBlock && elseEnd == noBlock {
		b.cur = noBlock
		return nil
	}
	join := b.newBlock()
	for _, end := range [...]BlockID{thenEnd, elseEnd} {
		if end != noBlock {
			b.edge(end, join, EdgeJump)
		}
	}
	b.cur = join
	return nil
}

func (b *builder) loop(s *ir.Stmt) error {
	header := b.newBlock()
	b.edge(b.cur, header, EdgeJump)
	hb := b.g.Blocks[header]
	hb.Term, hb.Cond, hb.Owner = TermLoop, s.Cond, s

	body := b.newBlock()
	b.edge(header, body, EdgeTrue)
	exit := b.newBlock()
	b.edge(header, exit, EdgeFalse)

	b.cur = body
	if err := b.seq(s.Body); err != nil {
		return err
	}
	if b.cur != noBlock {
		b.edge(b.cur, header, EdgeLoopBack)
	}
	b.cur = exit
	return nil
}
