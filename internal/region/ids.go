// Package region models lexical extents for one body: the tree of scopes
// a binding or temporary is valid over, plus the suspension points each
// extent contains. The interior analysis only reads extents by identifier;
// construction happens up front in Build (or by hand in tests).
package region

// ExtentID identifies an extent in the map's arena.
type ExtentID uint32

const (
	// NoExtentID marks the absence of an extent reference.
	NoExtentID ExtentID = 0
)

// IsValid reports whether the extent ID refers to an allocated extent.
func (id ExtentID) IsValid() bool { return id != NoExtentID }

// ExtentKind enumerates supported extent categories.
type ExtentKind uint8

const (
	ExtentInvalid ExtentKind = iota
	// ExtentFunction is the outermost extent of a body.
	ExtentFunction
	// ExtentBlock covers one block.
	ExtentBlock
	// ExtentRemainder covers a block from one of its lets to the end;
	// it is the scope of the let's bindings.
	ExtentRemainder
	// ExtentStmt governs temporaries produced while evaluating one
	// statement.
	ExtentStmt
)

func (k ExtentKind) String() string {
	switch k {
	case ExtentFunction:
		return "function"
	case ExtentBlock:
		return "block"
	case ExtentRemainder:
		return "remainder"
	case ExtentStmt:
		return "stmt"
	default:
		return "invalid"
	}
}
