package infer

import (
	"testing"

	"drift/internal/source"
	"drift/internal/types"
)

func TestResolveIsIdempotent(t *testing.T) {
	in := types.NewInterner()
	c := NewContext(in)
	v := c.FreshVar()
	if _, err := c.Unify(v, in.Builtins().Int, source.Span{}); err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	once := c.Resolve(v)
	twice := c.Resolve(once)
	if once != in.Builtins().Int || once != twice {
		t.Fatalf("resolve not idempotent: %v then %v", once, twice)
	}
}

func TestResolveSubstitutesInsideComposites(t *testing.T) {
	in := types.NewInterner()
	c := NewContext(in)
	v := c.FreshVar()
	task := in.Intern(types.MakeTask(v))
	if _, err := c.Unify(v, in.Builtins().String, source.Span{}); err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	want := in.Intern(types.MakeTask(in.Builtins().String))
	if got := c.Resolve(task); got != want {
		t.Fatalf("resolve(Task<?0>) = %s, want %s", in.Label(got), in.Label(want))
	}
}

func TestUnifyBindsVariableAndDefersWellFormed(t *testing.T) {
	in := types.NewInterner()
	c := NewContext(in)
	v := c.FreshVar()
	obls, err := c.Unify(v, in.Builtins().Bool, source.Span{})
	if err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	if len(obls) != 1 || obls[0].Kind != ObligationWellFormed {
		t.Fatalf("expected one well-formed obligation, got %v", obls)
	}
	if !c.Bound(v) {
		t.Fatalf("variable should be bound after unification")
	}
}

func TestUnifyStructuralTuples(t *testing.T) {
	in := types.NewInterner()
	c := NewContext(in)
	b := in.Builtins()
	v := c.FreshVar()
	left := in.RegisterTuple([]types.TypeID{b.Int, v})
	right := in.RegisterTuple([]types.TypeID{b.Int, b.String})
	if _, err := c.Unify(left, right, source.Span{}); err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	if got := c.Resolve(left); got != right {
		t.Fatalf("resolved left = %s, want %s", in.Label(got), in.Label(right))
	}
}

func TestUnifyMismatchFails(t *testing.T) {
	in := types.NewInterner()
	c := NewContext(in)
	b := in.Builtins()
	if _, err := c.Unify(b.Int, b.Bool, source.Span{}); err == nil {
		t.Fatalf("expected mismatch error")
	}
	short := in.RegisterTuple([]types.TypeID{b.Int})
	long := in.RegisterTuple([]types.TypeID{b.Int, b.Int})
	if _, err := c.Unify(short, long, source.Span{}); err == nil {
		t.Fatalf("expected arity mismatch error")
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	in := types.NewInterner()
	c := NewContext(in)
	v := c.FreshVar()
	task := in.Intern(types.MakeTask(v))
	if _, err := c.Unify(v, task, source.Span{}); err == nil {
		t.Fatalf("expected occurs-check failure")
	}
}

func TestRegisterAccumulatesPending(t *testing.T) {
	in := types.NewInterner()
	c := NewContext(in)
	c.Register([]Obligation{{Kind: ObligationWellFormed, Left: in.Builtins().Int}})
	c.Register([]Obligation{{Kind: ObligationEquate, Left: in.Builtins().Int, Right: in.Builtins().Int}})
	if got := len(c.Pending()); got != 2 {
		t.Fatalf("pending = %d, want 2", got)
	}
}
