package hir

import (
	"drift/internal/source"
)

// PatKind enumerates HIR pattern kinds.
type PatKind uint8

const (
	// PatBinding introduces a named local binding.
	PatBinding PatKind = iota
	// PatTuple destructures a tuple into sub-patterns.
	PatTuple
	// PatWildcard matches anything and binds nothing.
	PatWildcard
	// PatLiteral matches a literal value and binds nothing.
	PatLiteral
)

// String returns a human-readable name for the pattern kind.
func (k PatKind) String() string {
	switch k {
	case PatBinding:
		return "Binding"
	case PatTuple:
		return "Tuple"
	case PatWildcard:
		return "Wildcard"
	case PatLiteral:
		return "Literal"
	default:
		return "Unknown"
	}
}

// Pat represents an HIR pattern node.
type Pat struct {
	ID   NodeID
	Kind PatKind
	Span source.Span
	Data PatData
}

// PatData is the interface for pattern-specific data.
type PatData interface {
	patData()
}

// BindingData holds data for PatBinding.
type BindingData struct {
	Name  string
	Local LocalID
	Sub   *Pat // optional sub-pattern (name @ pat), nil for plain bindings
}

func (BindingData) patData() {}

// TuplePatData holds data for PatTuple.
type TuplePatData struct {
	Elems []*Pat
}

func (TuplePatData) patData() {}

// WildcardData holds data for PatWildcard.
type WildcardData struct{}

func (WildcardData) patData() {}

// LiteralPatData holds data for PatLiteral.
type LiteralPatData struct {
	Kind LiteralKind
	Text string
}

func (LiteralPatData) patData() {}
