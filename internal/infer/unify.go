package infer

import (
	"fmt"

	"drift/internal/source"
	"drift/internal/types"
)

// Unify attempts type equality between a and b. On success it returns the
// deferred obligations the caller must register; on failure it returns an
// error naming both canonical forms. Unification may bind unbound
// inference variables as a side effect.
func (c *Context) Unify(a, b types.TypeID, span source.Span) ([]Obligation, error) {
	ra := c.Resolve(a)
	rb := c.Resolve(b)
	if ra == rb {
		return nil, nil
	}

	ta, okA := c.types.Lookup(ra)
	tb, okB := c.types.Lookup(rb)
	if !okA || !okB {
		return nil, fmt.Errorf("unify: invalid type handle (%d vs %d)", ra, rb)
	}

	if ta.Kind == types.KindInfer {
		return c.bindVar(ta.Payload, rb, span)
	}
	if tb.Kind == types.KindInfer {
		return c.bindVar(tb.Payload, ra, span)
	}

	if ta.Kind != tb.Kind {
		return nil, c.mismatch(ra, rb)
	}

	switch ta.Kind {
	case types.KindArray:
		if ta.Count != tb.Count {
			return nil, c.mismatch(ra, rb)
		}
		return c.Unify(ta.Elem, tb.Elem, span)
	case types.KindReference:
		if ta.Mutable != tb.Mutable {
			return nil, c.mismatch(ra, rb)
		}
		return c.Unify(ta.Elem, tb.Elem, span)
	case types.KindTask:
		return c.Unify(ta.Elem, tb.Elem, span)
	case types.KindTuple:
		ea, _ := c.types.TupleElems(ra)
		eb, _ := c.types.TupleElems(rb)
		if len(ea) != len(eb) {
			return nil, c.mismatch(ra, rb)
		}
		var obls []Obligation
		for i := range ea {
			sub, err := c.Unify(ea[i], eb[i], span)
			if err != nil {
				return nil, err
			}
			obls = append(obls, sub...)
		}
		return obls, nil
	default:
		// Primitives resolve to interned singletons per descriptor, so
		// distinct canonical handles mean distinct types.
		return nil, c.mismatch(ra, rb)
	}
}

// bindVar substitutes an inference variable with a resolved type and emits
// the deferred well-formedness check for the bound form.
func (c *Context) bindVar(idx uint32, to types.TypeID, span source.Span) ([]Obligation, error) {
	if c.occurs(idx, to) {
		return nil, fmt.Errorf("unify: inference variable ?%d occurs in %s", idx, c.types.Label(to))
	}
	c.bindings[idx] = to
	return []Obligation{{Kind: ObligationWellFormed, Left: to, Span: span}}, nil
}

// occurs reports whether the variable idx appears inside id.
func (c *Context) occurs(idx uint32, id types.TypeID) bool {
	tt, ok := c.types.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindInfer:
		if tt.Payload == idx {
			return true
		}
		bound, isBound := c.bindings[tt.Payload]
		return isBound && c.occurs(idx, bound)
	case types.KindArray, types.KindReference, types.KindTask:
		return c.occurs(idx, tt.Elem)
	case types.KindTuple:
		elems, _ := c.types.TupleElems(id)
		for _, e := range elems {
			if c.occurs(idx, e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (c *Context) mismatch(a, b types.TypeID) error {
	return fmt.Errorf("type mismatch: %s vs %s", c.types.Label(a), c.types.Label(b))
}
