package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Intern(Type{Kind: KindString})
	arr1 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	arr2 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
}

func TestReferenceMutabilityAffectsIdentity(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().Int
	mut := in.Intern(MakeReference(elem, true))
	imm := in.Intern(MakeReference(elem, false))
	if mut == imm {
		t.Fatalf("mutable and immutable references must differ")
	}
}

func TestTuplesShareStructuralIdentity(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	t1 := in.RegisterTuple([]TypeID{b.Int, b.Bool})
	t2 := in.RegisterTuple([]TypeID{b.Int, b.Bool})
	t3 := in.RegisterTuple([]TypeID{b.Bool, b.Int})
	if t1 != t2 {
		t.Fatalf("identical tuples must intern to one TypeID")
	}
	if t1 == t3 {
		t.Fatalf("element order is part of tuple identity")
	}
	elems, ok := in.TupleElems(t1)
	if !ok || len(elems) != 2 || elems[0] != b.Int {
		t.Fatalf("unexpected tuple elems: %v", elems)
	}
}

func TestEmptyTupleInternsOnce(t *testing.T) {
	in := NewInterner()
	e1 := in.RegisterTuple(nil)
	e2 := in.RegisterTuple([]TypeID{})
	if e1 != e2 {
		t.Fatalf("empty composite must have a single identity")
	}
}

func TestFreshInferVarsAreDistinct(t *testing.T) {
	in := NewInterner()
	v1 := in.FreshInfer()
	v2 := in.FreshInfer()
	if v1 == v2 {
		t.Fatalf("fresh inference variables must be distinct")
	}
	if idx, ok := in.InferIndex(v2); !ok || idx != 1 {
		t.Fatalf("InferIndex = %d, %v", idx, ok)
	}
}

func TestLabelRendering(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	task := in.Intern(MakeTask(b.String))
	tup := in.RegisterTuple([]TypeID{b.Int, task})
	if got := in.Label(tup); got != "(int, Task<string>)" {
		t.Fatalf("label = %q", got)
	}
	v := in.FreshInfer()
	if got := in.Label(v); got != "?0" {
		t.Fatalf("infer label = %q", got)
	}
}
