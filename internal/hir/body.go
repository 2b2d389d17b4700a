package hir

import (
	"drift/internal/source"
)

// BodyFlags represents body modifiers as a bitmask.
type BodyFlags uint32

const (
	// BodySuspendable marks a body whose execution may pause at await
	// points and therefore needs witness-state analysis.
	BodySuspendable BodyFlags = 1 << iota
	// BodyFailfast indicates fail-fast structured concurrency.
	BodyFailfast
	// BodyEntrypoint marks the program entry point.
	BodyEntrypoint
)

// HasFlag returns true if the given flag is set.
func (f BodyFlags) HasFlag(flag BodyFlags) bool {
	return f&flag != 0
}

// Param represents a function parameter bound through a pattern.
type Param struct {
	Pat  *Pat
	Span source.Span
}

// Body represents one lowered function body.
type Body struct {
	Name   string
	Params []Param
	Block  *Block
	Flags  BodyFlags
	Span   source.Span
}

// IsSuspendable returns true if the body may pause at suspension points.
func (b *Body) IsSuspendable() bool {
	return b.Flags.HasFlag(BodySuspendable)
}
