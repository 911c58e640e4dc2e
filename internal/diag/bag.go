package diag

import (
	"sort"
)

// Bag is an ordered diagnostic collection. A Bag is owned by one goroutine;
// parallel producers each fill their own and the owner merges them.
type Bag struct {
	items []Diagnostic
	max   int // 0 - без лимита
}

func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add appends d unless the limit is reached.
// Returns false if the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.countAtLeast(SevError) > 0
}

// HasWarnings reports whether any diagnostic has Severity >= Warning.
// This drives the process exit status.
func (b *Bag) HasWarnings() bool {
	return b.countAtLeast(SevWarning) > 0
}

func (b *Bag) countAtLeast(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= sev {
			n++
		}
	}
	return n
}

// Count returns the number of diagnostics with exactly the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Codes lists the codes of all diagnostics in order.
func (b *Bag) Codes() []Code {
	out := make([]Code, len(b.items))
	for i := range b.items {
		out[i] = b.items[i].Code
	}
	return out
}

// Merge appends all diagnostics from other, respecting the limit.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		if !b.Add(d) {
			return
		}
	}
}

// Sort orders diagnostics by rule identifier, then primary location.
// The sort is stable so per-pass insertion order survives for equal keys,
// which makes the output independent of worker scheduling.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Code != dj.Code {
			return di.Code.ID() < dj.Code.ID()
		}
		return di.Primary.Compare(dj.Primary) < 0
	})
}

// Filter keeps diagnostics with Severity >= minSev whose code is not disabled.
func (b *Bag) Filter(minSev Severity, disabled map[Code]bool) *Bag {
	out := NewBag(b.max)
	for _, d := range b.items {
		if d.Severity < minSev || disabled[d.Code] {
			continue
		}
		out.items = append(out.items, d)
	}
	return out
}
