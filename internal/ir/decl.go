package ir

import (
	"fmt"

	"fortio.org/safecast"

	"wirecheck/internal/source"
)

// DeclKind classifies a declaration.
type DeclKind uint8

const (
	DeclLocal DeclKind = iota
	DeclInput
	DeclOutput
	DeclIntermediate
	DeclComponent
)

func (k DeclKind) String() string {
	switch k {
	case DeclLocal:
		return "variable"
	case DeclInput:
		return "input signal"
	case DeclOutput:
		return "output signal"
	case DeclIntermediate:
		return "intermediate signal"
	case DeclComponent:
		return "component"
	default:
		return "invalid"
	}
}

// IsSignal reports whether the kind is one of the signal kinds.
func (k DeclKind) IsSignal() bool {
	return k == DeclInput || k == DeclOutput || k == DeclIntermediate
}

type DeclFlags uint8

const (
	DeclParam DeclFlags = 1 << iota
	DeclArray
)

// Decl is one declaration site. Two Decls may share Name.
type Decl struct {
	Name    source.StringID
	Scope   ScopeID
	Kind    DeclKind
	Flags   DeclFlags
	Span    source.Span
	Shadows DeclID // same-named declaration of an enclosing scope, if any
}

func (d *Decl) IsParam() bool { return d.Flags&DeclParam != 0 }
func (d *Decl) IsArray() bool { return d.Flags&DeclArray != 0 }

// Decls stores declarations in a compact arena.
type Decls struct {
	data []Decl
}

// NewDecls creates a declaration arena with optional capacity hint.
func NewDecls(capacity uint32) *Decls {
	if capacity == 0 {
		capacity = 32
	}
	return &Decls{
		data: make([]Decl, 1, capacity+1), // index 0 reserved for NoDeclID
	}
}

// New allocates a declaration and returns its ID.
func (s *Decls) New(d Decl) DeclID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("decls arena overflow: %w", err))
	}
	s.data = append(s.data, d)
	return DeclID(value)
}

// Get returns a declaration pointer or nil for invalid ID.
func (s *Decls) Get(id DeclID) *Decl {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports number of stored declarations excluding sentinel.
func (s *Decls) Len() int { return len(s.data) - 1 }

// IDs returns all valid IDs in allocation order.
func (s *Decls) IDs() []DeclID {
	out := make([]DeclID, 0, s.Len())
	for i := 1; i < len(s.data); i++ {
		out = append(out, DeclID(i)) //nolint:gosec // bounded by New
	}
	return out
}
