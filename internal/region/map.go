package region

import (
	"fmt"

	"fortio.org/safecast"

	"drift/internal/hir"
	"drift/internal/source"
)

// Extent is one node of the lexical extent tree.
type Extent struct {
	Kind     ExtentKind
	Parent   ExtentID
	Span     source.Span
	Children []ExtentID
}

// Map owns the extent arena for one body together with the scope
// assignments the analysis queries: which extent a binding is valid over,
// which extent governs an expression's temporary, and where suspension
// points sit. One Map per body; never shared across bodies.
type Map struct {
	extents     []Extent
	varScopes   map[hir.LocalID]ExtentID
	tempScopes  map[hir.NodeID]ExtentID
	suspensions map[ExtentID][]source.Span
}

// NewMap creates an empty extent map.
func NewMap() *Map {
	return &Map{
		extents:     make([]Extent, 1), // reserve 0 as invalid sentinel
		varScopes:   make(map[hir.LocalID]ExtentID),
		tempScopes:  make(map[hir.NodeID]ExtentID),
		suspensions: make(map[ExtentID][]source.Span),
	}
}

// NewExtent allocates an extent under parent (NoExtentID for the root).
func (m *Map) NewExtent(kind ExtentKind, parent ExtentID, span source.Span) ExtentID {
	lenExtents, err := safecast.Conv[uint32](len(m.extents))
	if err != nil {
		panic(fmt.Errorf("extent index overflow: %w", err))
	}
	id := ExtentID(lenExtents)
	m.extents = append(m.extents, Extent{Kind: kind, Parent: parent, Span: span})
	if parent.IsValid() {
		m.extents[parent].Children = append(m.extents[parent].Children, id)
	}
	return id
}

// Get returns the extent for an ID, or nil when invalid.
func (m *Map) Get(id ExtentID) *Extent {
	if !id.IsValid() || int(id) >= len(m.extents) {
		return nil
	}
	return &m.extents[id]
}

// Len returns the number of extent slots, including the reserved zero
// slot. Valid IDs are 1..Len-1.
func (m *Map) Len() int {
	return len(m.extents)
}

// Parent returns the parent extent of id.
func (m *Map) Parent(id ExtentID) ExtentID {
	ext := m.Get(id)
	if ext == nil {
		return NoExtentID
	}
	return ext.Parent
}

// SetVarScope records the extent a binding is valid over.
func (m *Map) SetVarScope(local hir.LocalID, ext ExtentID) {
	if !local.IsValid() || !ext.IsValid() {
		return
	}
	m.varScopes[local] = ext
}

// VarScope returns the extent a binding is valid over, or NoExtentID when
// the binding is unknown to this map.
func (m *Map) VarScope(local hir.LocalID) ExtentID {
	return m.varScopes[local]
}

// SetTemporaryScope records the extent governing an expression's
// temporary.
func (m *Map) SetTemporaryScope(node hir.NodeID, ext ExtentID) {
	if !node.IsValid() || !ext.IsValid() {
		return
	}
	m.tempScopes[node] = ext
}

// TemporaryScope returns the extent governing the temporary produced by
// an expression. Absence is meaningful: positions where scope tracking
// does not apply report ok=false.
func (m *Map) TemporaryScope(node hir.NodeID) (ExtentID, bool) {
	ext, ok := m.tempScopes[node]
	return ext, ok
}

// AddSuspension registers a suspension point sitting immediately inside
// ext.
func (m *Map) AddSuspension(ext ExtentID, span source.Span) {
	if !ext.IsValid() {
		return
	}
	m.suspensions[ext] = append(m.suspensions[ext], span)
}

// SuspensionWithin reports whether ext or any extent nested inside it
// contains a suspension point, returning the span of the first one found.
func (m *Map) SuspensionWithin(ext ExtentID) (source.Span, bool) {
	if spans, ok := m.suspensions[ext]; ok && len(spans) > 0 {
		return spans[0], true
	}
	e := m.Get(ext)
	if e == nil {
		return source.Span{}, false
	}
	for _, child := range e.Children {
		if span, ok := m.SuspensionWithin(child); ok {
			return span, true
		}
	}
	return source.Span{}, false
}
