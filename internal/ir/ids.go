package ir

// DeclID identifies a declaration inside one Func. It is the identity every
// pass works with; the textual name is only for display and shadowing.
type DeclID uint32

const (
	// NoDeclID marks an unresolved reference.
	NoDeclID DeclID = 0
)

// IsValid reports whether the ID refers to an allocated declaration.
func (id DeclID) IsValid() bool { return id != NoDeclID }

// ScopeID identifies a scope in the Func arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }
