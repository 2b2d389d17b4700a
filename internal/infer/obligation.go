package infer

import (
	"drift/internal/source"
	"drift/internal/types"
)

// ObligationKind enumerates deferred constraint kinds.
type ObligationKind uint8

const (
	// ObligationWellFormed requires the type to resolve to a fully
	// concrete form by the end of the session (no stray inference
	// variables).
	ObligationWellFormed ObligationKind = iota + 1
	// ObligationEquate requires two types to stay equal under later
	// substitutions.
	ObligationEquate
)

func (k ObligationKind) String() string {
	switch k {
	case ObligationWellFormed:
		return "well-formed"
	case ObligationEquate:
		return "equate"
	default:
		return "unknown"
	}
}

// Obligation is a proof postponed by unification: the unification itself
// succeeded, and this records what the session still has to verify.
type Obligation struct {
	Kind  ObligationKind
	Left  types.TypeID
	Right types.TypeID // only for ObligationEquate
	Span  source.Span
}
