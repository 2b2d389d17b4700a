package hir

import (
	"drift/internal/types"
)

// Tables is the snapshot of type-checking results for one body. The
// analysis passes only query it; population happens during lowering (or
// by hand in tests), after which the snapshot is treated as read-only.
type Tables struct {
	exprTypes map[NodeID]types.TypeID
	adjusted  map[NodeID]types.TypeID // post-coercion overrides
	patTypes  map[LocalID]types.TypeID
}

// NewTables creates an empty result snapshot.
func NewTables() *Tables {
	return &Tables{
		exprTypes: make(map[NodeID]types.TypeID),
		adjusted:  make(map[NodeID]types.TypeID),
		patTypes:  make(map[LocalID]types.TypeID),
	}
}

// SetExprType records the inferred type of an expression node.
func (t *Tables) SetExprType(id NodeID, ty types.TypeID) {
	if !id.IsValid() || ty == types.NoTypeID {
		return
	}
	t.exprTypes[id] = ty
}

// SetAdjusted records the post-coercion type of an expression node.
func (t *Tables) SetAdjusted(id NodeID, ty types.TypeID) {
	if !id.IsValid() || ty == types.NoTypeID {
		return
	}
	t.adjusted[id] = ty
}

// SetPatType records the declared/inferred type of a binding.
func (t *Tables) SetPatType(local LocalID, ty types.TypeID) {
	if !local.IsValid() || ty == types.NoTypeID {
		return
	}
	t.patTypes[local] = ty
}

// ExprType returns the adjusted (post-coercion) type of an expression,
// falling back to the recorded inferred type.
func (t *Tables) ExprType(id NodeID) types.TypeID {
	if ty, ok := t.adjusted[id]; ok {
		return ty
	}
	return t.exprTypes[id]
}

// PatType returns the type of a binding.
func (t *Tables) PatType(local LocalID) types.TypeID {
	return t.patTypes[local]
}
