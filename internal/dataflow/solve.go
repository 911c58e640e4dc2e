package dataflow

import (
	"fmt"

	"wirecheck/internal/cfg"
)

// worklist is a FIFO of block IDs without duplicates.
type worklist struct {
	queue  []cfg.BlockID
	queued []bool
}

func newWorklist(n int) *worklist {
	return &worklist{queue: make([]cfg.BlockID, 0, n), queued: make([]bool, n)}
}

func (w *worklist) push(id cfg.BlockID) {
	if w.queued[id] {
		return
	}
	w.queued[id] = true
	w.queue = append(w.queue, id)
}

func (w *worklist) pop() (cfg.BlockID, bool) {
	if len(w.queue) == 0 {
		return 0, false
	}
	id := w.queue[0]
	w.queue = w.queue[1:]
	w.queued[id] = false
	return id, true
}

// Solve computes the fixpoint of a over g. On ErrAborted the partial result
// is returned alongside the error.
func Solve[V any](g *cfg.CFG, a Analysis[V], opts Options[V]) (*Result[V], error) {
	n := g.Len()
	res := &Result[V]{In: make([]V, n), Out: make([]V, n)}
	for i := range n {
		res.In[i] = a.Initial()
		res.Out[i] = a.Initial()
	}
	if n == 0 {
		return res, nil
	}
	maxVisits := opts.MaxVisits
	if maxVisits <= 0 {
		edges := 0
		for _, blk := range g.Blocks {
			edges += len(blk.Succs)
		}
		maxVisits = DefaultMaxVisits(n, edges, opts.Height)
	}
	edges, _ := a.(EdgeAnalysis[V])
	dir := a.Direction()

	wl := newWorklist(n)
	if dir == Forward {
		for _, id := range cfg.ReversePostOrder(g) {
			wl.push(id)
		}
	} else {
		for _, id := range cfg.PostOrder(g) {
			wl.push(id)
		}
	}

	for {
		id, ok := wl.pop()
		if !ok {
			return res, nil
		}
		res.Visits++
		if res.Visits > maxVisits {
			name := "<anonymous>"
			if g.Func != nil {
				name = g.Func.Name
			}
			return res, fmt.Errorf("%s: %w after %d visits", name, ErrAborted, maxVisits)
		}
		blk := g.Blocks[id]

		if dir == Forward {
			in := forwardIn(g, a, edges, res, blk)
			out := in
			for _, s := range blk.Stmts {
				out = a.Transfer(s, out)
			}
			if blk.Cond != nil {
				out = a.TransferCond(blk.Cond, out)
			}
			res.In[id] = in
			if a.Equal(out, res.Out[id]) {
				continue
			}
			if opts.OnUpdate != nil {
				opts.OnUpdate(id, res.Out[id], out)
			}
			res.Out[id] = out
			res.Updates++
			for _, e := range blk.Succs {
				wl.push(e.To)
			}
			continue
		}

		out := backwardOut(a, edges, res, blk)
		in := out
		if blk.Cond != nil {
			in = a.TransferCond(blk.Cond, in)
		}
		for i := len(blk.Stmts) - 1; i >= 0; i-- {
			in = a.Transfer(blk.Stmts[i], in)
		}
		res.Out[id] = out
		if a.Equal(in, res.In[id]) {
			continue
		}
		if opts.OnUpdate != nil {
			opts.OnUpdate(id, res.In[id], in)
		}
		res.In[id] = in
		res.Updates++
		for _, p := range blk.Preds {
			wl.push(p)
		}
	}
}

func forwardIn[V any](g *cfg.CFG, a Analysis[V], edges EdgeAnalysis[V], res *Result[V], blk *cfg.Block) V {
	if blk.ID == g.Entry {
		return a.Boundary()
	}
	in := a.Initial()
	for _, p := range blk.Preds {
		from := g.Blocks[p]
		for _, e := range from.Succs {
			if e.To != blk.ID {
				continue
			}
			v := res.Out[p]
			if edges != nil {
				v = edges.Edge(from, e, v)
			}
			in = a.Join(in, v)
		}
	}
	return in
}

func backwardOut[V any](a Analysis[V], edges EdgeAnalysis[V], res *Result[V], blk *cfg.Block) V {
	if blk.IsExit() {
		return a.Boundary()
	}
	out := a.Initial()
	for _, e := range blk.Succs {
		v := res.In[e.To]
		if edges != nil {
			v = edges.Edge(blk, e, v)
		}
		out = a.Join(out, v)
	}
	return out
}
