// Package hir provides the typed body representation the middle end
// analyzes. A Body is one suspendable function: parameters bound through
// patterns, a statement block, and expression nodes with stable IDs that
// the region map and type tables key off.
//
// Nested suspendable bodies (async blocks, closures) appear as single
// opaque expression nodes. Their interiors are lowered and analyzed as
// separate bodies.
package hir

// NodeID identifies an expression or pattern node within a body.
type NodeID uint32

// LocalID identifies a variable binding (parameter, let, match arm)
// within a body.
type LocalID uint32

// Invalid ID constants (zero is sentinel).
const (
	NoNodeID  NodeID  = 0
	NoLocalID LocalID = 0
)

// IsValid returns true if the ID is valid (non-zero).
func (id NodeID) IsValid() bool  { return id != NoNodeID }
func (id LocalID) IsValid() bool { return id != NoLocalID }
