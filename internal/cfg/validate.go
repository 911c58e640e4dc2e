package cfg

import (
	"errors"
	"fmt"
)

// ErrInvariant wraps every violation reported by Validate.
var ErrInvariant = errors.New("cfg invariant violated")

// Validate checks CFG invariants.
// Returns error if any invariant is violated.
func Validate(g *CFG) error {
	if g == nil {
		return fmt.Errorf("%w: nil graph", ErrInvariant)
	}
	if len(g.Blocks) == 0 {
		return fmt.Errorf("%w: no blocks", ErrInvariant)
	}

	var errs []error

	// 1. Block IDs and edge targets
	if err := validateTargets(g); err != nil {
		// остальные проверки индексируют по целям рёбер
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}

	// 2. Single entry without predecessors
	if entry := g.Block(g.Entry); entry == nil {
		errs = append(errs, fmt.Errorf("entry bb%d out of range", g.Entry))
	} else if len(entry.Preds) != 0 {
		errs = append(errs, fmt.Errorf("entry bb%d has %d predecessors", g.Entry, len(entry.Preds)))
	}

	// 3. At least one exit
	if len(g.Exits()) == 0 {
		errs = append(errs, errors.New("no exit block"))
	}

	// 4. Edge arity per terminator
	errs = append(errs, validateArity(g)...)

	// 5. Predecessor lists mirror successor lists
	errs = append(errs, validatePreds(g)...)

	// 6. Every block reachable from the entry
	for id, ok := range Reachable(g) {
		if !ok {
			errs = append(errs, fmt.Errorf("bb%d unreachable from entry", id))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvariant, errors.Join(errs...))
}

func validateTargets(g *CFG) error {
	var errs []error
	for i, b := range g.Blocks {
		if b == nil {
			errs = append(errs, fmt.Errorf("bb%d: nil block", i))
			continue
		}
		if int(b.ID) != i {
			errs = append(errs, fmt.Errorf("bb%d: stored ID %d", i, b.ID))
		}
		for _, e := range b.Succs {
			if int(e.To) >= len(g.Blocks) {
				errs = append(errs, fmt.Errorf("bb%d: edge to missing bb%d", i, e.To))
			}
		}
		for _, p := range b.Preds {
			if int(p) >= len(g.Blocks) {
				errs = append(errs, fmt.Errorf("bb%d: predecessor bb%d missing", i, p))
			}
		}
	}
	return errors.Join(errs...)
}

func validateArity(g *CFG) []error {
	var errs []error
	for _, b := range g.Blocks {
		switch b.Term {
		case TermBranch, TermLoop:
			if b.Cond == nil {
				errs = append(errs, fmt.Errorf("bb%d: %s without condition", b.ID, b.Term))
			}
			if len(b.Succs) != 2 || b.Succs[0].Kind != EdgeTrue || b.Succs[1].Kind != EdgeFalse {
				errs = append(errs, fmt.Errorf("bb%d: %s needs true and false edges, has %v", b.ID, b.Term, b.Succs))
			}
		case TermReturn:
			if len(b.Succs) != 0 {
				errs = append(errs, fmt.Errorf("bb%d: return with %d successors", b.ID, len(b.Succs)))
			}
		default:
			if len(b.Succs) > 1 {
				errs = append(errs, fmt.Errorf("bb%d: %d successors without condition", b.ID, len(b.Succs)))
			}
			for _, e := range b.Succs {
				if e.Kind != EdgeJump && e.Kind != EdgeLoopBack {
					errs = append(errs, fmt.Errorf("bb%d: %s edge without condition", b.ID, e.Kind))
				}
			}
		}
	}
	return errs
}

func validatePreds(g *CFG) []error {
	want := make([]int, len(g.Blocks))
	for _, b := range g.Blocks {
		for _, e := range b.Succs {
			want[e.To]++
		}
	}
	var errs []error
	for _, b := range g.Blocks {
		if len(b.Preds) != want[b.ID] {
			errs = append(errs, fmt.Errorf("bb%d: %d predecessors recorded, %d edges in", b.ID, len(b.Preds), want[b.ID]))
		}
	}
	return errs
}
