package ir

import (
	"fmt"

	"fortio.org/safecast"

	"wirecheck/internal/source"
)

// ScopeKind enumerates lexical scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeBody              // function/template body, holds the parameters
	ScopeBlock             // nested { ... }
	ScopeLoop              // loop body
	ScopeBranch            // if/else arm
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeBody:
		return "body"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	case ScopeBranch:
		return "branch"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope. Immutable once the builder returns.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[source.StringID]DeclID // последнее объявление побеждает
	Decls     []DeclID
	Children  []ScopeID
}

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 16
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and links it to its parent.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, span source.Span) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.data = append(s.data, Scope{
		Kind:      kind,
		Parent:    parent,
		Span:      span,
		NameIndex: make(map[source.StringID]DeclID),
	})
	if parentScope := s.Get(parent); parentScope != nil {
		parentScope.Children = append(parentScope.Children, id)
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Lookup resolves name starting at scope and walking parents.
func (s *Scopes) Lookup(scope ScopeID, name source.StringID) DeclID {
	for id := scope; id.IsValid(); {
		sc := s.Get(id)
		if sc == nil {
			break
		}
		if d, ok := sc.NameIndex[name]; ok {
			return d
		}
		id = sc.Parent
	}
	return NoDeclID
}

// Encloses reports whether outer is scope itself or one of its ancestors.
func (s *Scopes) Encloses(outer, scope ScopeID) bool {
	for id := scope; id.IsValid(); {
		if id == outer {
			return true
		}
		sc := s.Get(id)
		if sc == nil {
			return false
		}
		id = sc.Parent
	}
	return false
}
