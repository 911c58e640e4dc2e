package cfg

// PostOrder returns blocks reachable from the entry in DFS post-order,
// successors visited in edge order. Iterative.
func PostOrder(g *CFG) []BlockID {
	if len(g.Blocks) == 0 {
		return nil
	}
	visited := make([]bool, len(g.Blocks))
	order := make([]BlockID, 0, len(g.Blocks))
	type frame struct {
		id   BlockID
		next int
	}
	stack := []frame{{id: g.Entry}}
	visited[g.Entry] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Blocks[top.id].Succs
		if top.next < len(succs) {
			to := succs[top.next].To
			top.next++
			if int(to) < len(visited) && !visited[to] {
				visited[to] = true
				stack = append(stack, frame{id: to})
			}
			continue
		}
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}
	return order
}

// ReversePostOrder returns the blocks of g in reverse post-order,
// starting from the entry. Unreachable blocks are excluded.
func ReversePostOrder(g *CFG) []BlockID {
	order := PostOrder(g)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Reachable marks blocks reachable from the entry.
func Reachable(g *CFG) []bool {
	seen := make([]bool, len(g.Blocks))
	for _, id := range PostOrder(g) {
		seen[id] = true
	}
	return seen
}
