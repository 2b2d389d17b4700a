// Package infer holds the type-inference context shared by one checking
// session: inference-variable substitutions, canonical type resolution and
// deferred proof obligations.
//
// The context is read-mostly during analysis passes. Passes borrow query
// access (Resolve) and hand equality requests to Unify; they never touch
// the substitution table directly.
package infer

import (
	"drift/internal/types"
)

// Context owns the substitution state for one checking session.
type Context struct {
	types       *types.Interner
	bindings    map[uint32]types.TypeID // inference variable index -> bound type
	obligations []Obligation
}

// NewContext creates an inference context over the given interner.
func NewContext(in *types.Interner) *Context {
	return &Context{
		types:    in,
		bindings: make(map[uint32]types.TypeID),
	}
}

// Types returns the interner backing this context.
func (c *Context) Types() *types.Interner {
	return c.types
}

// FreshVar mints a new unbound inference variable.
func (c *Context) FreshVar() types.TypeID {
	return c.types.FreshInfer()
}

// Resolve returns the canonical form of a type, substituting any resolved
// inference variables. Idempotent: resolving an already-canonical type is
// the identity.
func (c *Context) Resolve(id types.TypeID) types.TypeID {
	tt, ok := c.types.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case types.KindInfer:
		bound, ok := c.bindings[tt.Payload]
		if !ok {
			return id
		}
		return c.Resolve(bound)
	case types.KindArray, types.KindReference, types.KindTask:
		elem := c.Resolve(tt.Elem)
		if elem == tt.Elem {
			return id
		}
		tt.Elem = elem
		return c.types.Intern(tt)
	case types.KindTuple:
		elems, ok := c.types.TupleElems(id)
		if !ok {
			return id
		}
		changed := false
		resolved := make([]types.TypeID, len(elems))
		for i, e := range elems {
			resolved[i] = c.Resolve(e)
			if resolved[i] != e {
				changed = true
			}
		}
		if !changed {
			return id
		}
		return c.types.RegisterTuple(resolved)
	default:
		return id
	}
}

// Bound reports whether an inference variable has been substituted.
func (c *Context) Bound(id types.TypeID) bool {
	idx, ok := c.types.InferIndex(id)
	if !ok {
		return false
	}
	_, bound := c.bindings[idx]
	return bound
}

// Register appends deferred obligations produced by a unification to the
// session's pending queue. The broader checking session verifies them
// after all bodies have been analyzed.
func (c *Context) Register(obls []Obligation) {
	c.obligations = append(c.obligations, obls...)
}

// Pending returns the obligations registered so far.
func (c *Context) Pending() []Obligation {
	return c.obligations
}
