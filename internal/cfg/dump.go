package cfg

import (
	"fmt"
	"strings"
)

// Dump renders the block structure, one block per line:
//
//	bb0 [branch] stmts=2 -> bb1(true) bb2(false)
func Dump(g *CFG) string {
	var sb strings.Builder
	for _, b := range g.Blocks {
		fmt.Fprintf(&sb, "bb%d [%s] stmts=%d", b.ID, b.Term, len(b.Stmts))
		if len(b.Succs) > 0 {
			sb.WriteString(" ->")
			for _, e := range b.Succs {
				fmt.Fprintf(&sb, " bb%d(%s)", e.To, e.Kind)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
