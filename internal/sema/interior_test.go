package sema

import (
	"testing"

	"drift/internal/hir"
	"drift/internal/infer"
	"drift/internal/region"
	"drift/internal/source"
	"drift/internal/types"
)

func sp(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

type fixture struct {
	b      *hir.Builder
	in     *types.Interner
	tables *hir.Tables
	ictx   *infer.Context
}

func newFixture() *fixture {
	in := types.NewInterner()
	return &fixture{
		b:      hir.NewBuilder(),
		in:     in,
		tables: hir.NewTables(),
		ictx:   infer.NewContext(in),
	}
}

func (f *fixture) checker(m *region.Map) *Checker {
	return NewChecker(f.tables, f.ictx, m, nil)
}

// syntheticMap builds a two-extent map: one extent containing a
// suspension point, one sibling without.
func syntheticMap() (m *region.Map, withSusp, without region.ExtentID) {
	m = region.NewMap()
	root := m.NewExtent(region.ExtentFunction, region.NoExtentID, sp(0, 100))
	withSusp = m.NewExtent(region.ExtentBlock, root, sp(10, 50))
	without = m.NewExtent(region.ExtentBlock, root, sp(50, 90))
	m.AddSuspension(withSusp, sp(20, 25))
	return m, withSusp, without
}

// asyncBody wraps stmts in a suspendable body spanning 0..100 with a
// block at 10..100.
func asyncBody(stmts []hir.Stmt) *hir.Body {
	return &hir.Body{
		Name:  "probe",
		Block: &hir.Block{Stmts: stmts, Span: sp(10, 100)},
		Flags: hir.BodySuspendable,
		Span:  sp(0, 100),
	}
}

// witnessElems resolves the witness variable after analysis and returns
// the composite's element list.
func witnessElems(t *testing.T, f *fixture, witness types.TypeID) []types.TypeID {
	t.Helper()
	resolved := f.ictx.Resolve(witness)
	elems, ok := f.in.TupleElems(resolved)
	if !ok {
		t.Fatalf("witness resolved to %s, not a composite", f.in.Label(resolved))
	}
	return elems
}

func containsType(elems []types.TypeID, ty types.TypeID) bool {
	for _, el := range elems {
		if el == ty {
			return true
		}
	}
	return false
}

func TestRecordWithoutExtentIsUnconditional(t *testing.T) {
	f := newFixture()
	m := region.NewMap() // no extents, no suspensions anywhere
	v := &interiorVisitor{
		chk:   f.checker(m),
		types: make(map[types.TypeID]struct{}),
		cache: make(map[region.ExtentID]suspension),
	}

	ty := f.in.Builtins().String
	v.record(ty, region.NoExtentID, nil)
	if _, ok := v.types[ty]; !ok {
		t.Fatalf("type with no extent was not recorded")
	}
}

func TestRecordGatedBySuspension(t *testing.T) {
	f := newFixture()
	m, withSusp, without := syntheticMap()
	v := &interiorVisitor{
		chk:   f.checker(m),
		types: make(map[types.TypeID]struct{}),
		cache: make(map[region.ExtentID]suspension),
	}

	live := f.in.Builtins().String
	dead := f.in.Builtins().Bool
	v.record(live, withSusp, nil)
	v.record(dead, without, nil)

	if _, ok := v.types[live]; !ok {
		t.Fatalf("type in suspending extent was not recorded")
	}
	if _, ok := v.types[dead]; ok {
		t.Fatalf("type in suspension-free extent was recorded")
	}
}

func TestRecordMemoizesSuspensionQuery(t *testing.T) {
	f := newFixture()
	m, withSusp, _ := syntheticMap()
	v := &interiorVisitor{
		chk:   f.checker(m),
		types: make(map[types.TypeID]struct{}),
		cache: make(map[region.ExtentID]suspension),
	}

	v.record(f.in.Builtins().Int, withSusp, nil)
	cached, ok := v.cache[withSusp]
	if !ok || !cached.ok {
		t.Fatalf("suspension answer not cached: %+v", v.cache)
	}
	// A poisoned cache entry must shadow the real map.
	v.cache[withSusp] = suspension{}
	v.record(f.in.Builtins().Bool, withSusp, nil)
	if _, recorded := v.types[f.in.Builtins().Bool]; recorded {
		t.Fatalf("record consulted the map instead of the cache")
	}
}

// `let a = f(); f().await; g(a)`: the binding's remainder contains the
// await, so its type is part of the interior.
func TestBindingLiveAcrossAwait(t *testing.T) {
	f := newFixture()
	pat, local := f.b.NewBinding("a", sp(14, 15))
	body := asyncBody([]hir.Stmt{
		hir.Let(pat, f.b.NewCall(f.b.NewVarRef("f", hir.NoLocalID, sp(18, 19)), nil, sp(18, 21)), sp(10, 22)),
		hir.ExprStmt(f.b.NewAwait(f.b.NewCall(f.b.NewVarRef("f", hir.NoLocalID, sp(30, 31)), nil, sp(30, 33)), sp(30, 39))),
		hir.ExprStmt(f.b.NewCall(f.b.NewVarRef("g", hir.NoLocalID, sp(44, 45)), []*hir.Expr{f.b.NewVarRef("a", local, sp(46, 47))}, sp(44, 48))),
	})
	f.tables.SetPatType(local, f.in.Builtins().String)

	witness := f.ictx.FreshVar()
	f.checker(region.Build(body)).ResolveInterior(body, witness)

	elems := witnessElems(t, f, witness)
	if !containsType(elems, f.in.Builtins().String) {
		t.Fatalf("binding type missing from interior %v", elems)
	}
}

// A binding scoped to a suspension-free extent dies before any pause
// and stays out of the interior.
func TestBindingDeadBeforeSuspensionExcluded(t *testing.T) {
	f := newFixture()
	m, _, without := syntheticMap()
	pat, local := f.b.NewBinding("b", sp(54, 55))
	body := asyncBody([]hir.Stmt{
		hir.Let(pat, f.b.NewCall(f.b.NewVarRef("g", hir.NoLocalID, sp(58, 59)), nil, sp(58, 61)), sp(50, 62)),
	})
	f.tables.SetPatType(local, f.in.Builtins().Bool)
	m.SetVarScope(local, without)

	witness := f.ictx.FreshVar()
	f.checker(m).ResolveInterior(body, witness)

	elems := witnessElems(t, f, witness)
	if containsType(elems, f.in.Builtins().Bool) {
		t.Fatalf("dead binding's type leaked into interior %v", elems)
	}
}

// A type recorded as an unresolved variable and again as its eventual
// resolution collapses to one composite element.
func TestResolutionDedupsRecordedTypes(t *testing.T) {
	f := newFixture()
	m, withSusp, _ := syntheticMap()

	varBind, varLocal := f.b.NewBinding("c", sp(14, 15))
	dirBind, dirLocal := f.b.NewBinding("d", sp(24, 25))
	body := asyncBody([]hir.Stmt{
		hir.Let(varBind, nil, sp(10, 16)),
		hir.Let(dirBind, nil, sp(20, 26)),
	})

	inferVar := f.ictx.FreshVar()
	f.tables.SetPatType(varLocal, inferVar)
	f.tables.SetPatType(dirLocal, f.in.Builtins().String)
	m.SetVarScope(varLocal, withSusp)
	m.SetVarScope(dirLocal, withSusp)

	// Inference catches up between recording and aggregation.
	if _, err := f.ictx.Unify(inferVar, f.in.Builtins().String, sp(0, 0)); err != nil {
		t.Fatalf("binding the variable: %v", err)
	}

	witness := f.ictx.FreshVar()
	f.checker(m).ResolveInterior(body, witness)

	elems := witnessElems(t, f, witness)
	if len(elems) != 1 || elems[0] != f.in.Builtins().String {
		t.Fatalf("composite = %v, want exactly one string entry", elems)
	}
}

// The same type reached through two bindings and an expression is one
// composite element.
func TestSetSemanticsAbsorbDuplicates(t *testing.T) {
	f := newFixture()
	m, withSusp, _ := syntheticMap()

	p1, l1 := f.b.NewBinding("x", sp(14, 15))
	p2, l2 := f.b.NewBinding("y", sp(24, 25))
	expr := f.b.NewVarRef("x", l1, sp(34, 35))
	body := asyncBody([]hir.Stmt{
		hir.Let(p1, nil, sp(10, 16)),
		hir.Let(p2, nil, sp(20, 26)),
		hir.ExprStmt(expr),
	})

	str := f.in.Builtins().String
	f.tables.SetPatType(l1, str)
	f.tables.SetPatType(l2, str)
	f.tables.SetExprType(expr.ID, str)
	m.SetVarScope(l1, withSusp)
	m.SetVarScope(l2, withSusp)
	m.SetTemporaryScope(expr.ID, withSusp)

	witness := f.ictx.FreshVar()
	f.checker(m).ResolveInterior(body, witness)

	elems := witnessElems(t, f, witness)
	if len(elems) != 1 || elems[0] != str {
		t.Fatalf("composite = %v, want exactly one string entry", elems)
	}
}

// A binding inside a nested async block never reaches the enclosing
// body's interior, even though the inner block suspends.
func TestNestedSuspendableBodyOpaque(t *testing.T) {
	f := newFixture()
	innerPat, innerLocal := f.b.NewBinding("z", sp(34, 35))
	innerAwait := f.b.NewAwait(f.b.NewCall(f.b.NewVarRef("f", hir.NoLocalID, sp(44, 45)), nil, sp(44, 47)), sp(44, 53))
	inner := &hir.Block{
		Stmts: []hir.Stmt{
			hir.Let(innerPat, f.b.NewLiteral(hir.LiteralInt, "1", sp(38, 39)), sp(30, 40)),
			hir.ExprStmt(innerAwait),
		},
		Span: sp(28, 56),
	}
	body := asyncBody([]hir.Stmt{
		hir.ExprStmt(f.b.NewAsync(inner, sp(20, 58))),
	})
	f.tables.SetPatType(innerLocal, f.in.Builtins().String)
	f.tables.SetExprType(innerAwait.ID, f.in.Builtins().Int)

	witness := f.ictx.FreshVar()
	f.checker(region.Build(body)).ResolveInterior(body, witness)

	elems := witnessElems(t, f, witness)
	if len(elems) != 0 {
		t.Fatalf("nested body leaked into interior %v", elems)
	}
}

// No suspension points: the interior is the empty composite and the
// witness unifies with it trivially.
func TestEmptyInteriorUnifiesTrivially(t *testing.T) {
	f := newFixture()
	pat, local := f.b.NewBinding("a", sp(14, 15))
	body := asyncBody([]hir.Stmt{
		hir.Let(pat, f.b.NewLiteral(hir.LiteralInt, "1", sp(18, 19)), sp(10, 20)),
	})
	f.tables.SetPatType(local, f.in.Builtins().Int)

	witness := f.ictx.FreshVar()
	f.checker(region.Build(body)).ResolveInterior(body, witness)

	elems := witnessElems(t, f, witness)
	if len(elems) != 0 {
		t.Fatalf("interior of suspension-free body = %v, want empty", elems)
	}
	// Binding the witness defers a well-formedness proof to the session.
	found := false
	for _, obl := range f.ictx.Pending() {
		if obl.Kind == infer.ObligationWellFormed {
			found = true
		}
	}
	if !found {
		t.Fatalf("no well-formed obligation registered for the witness")
	}
}

func TestWitnessMismatchPanics(t *testing.T) {
	f := newFixture()
	body := asyncBody(nil)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("no panic on witness mismatch")
		}
		if _, ok := r.(*InternalError); !ok {
			t.Fatalf("panic value = %T, want *InternalError", r)
		}
	}()
	// A concrete non-composite witness cannot unify with any interior.
	f.checker(region.Build(body)).ResolveInterior(body, f.in.Builtins().Int)
}

func TestInteriorDeterministicAcrossRuns(t *testing.T) {
	run := func() types.TypeID {
		f := newFixture()
		m, withSusp, _ := syntheticMap()
		p1, l1 := f.b.NewBinding("x", sp(14, 15))
		p2, l2 := f.b.NewBinding("y", sp(24, 25))
		body := asyncBody([]hir.Stmt{
			hir.Let(p1, nil, sp(10, 16)),
			hir.Let(p2, nil, sp(20, 26)),
		})
		f.tables.SetPatType(l1, f.in.Builtins().String)
		f.tables.SetPatType(l2, f.in.Builtins().Bool)
		m.SetVarScope(l1, withSusp)
		m.SetVarScope(l2, withSusp)

		witness := f.ictx.FreshVar()
		f.checker(m).ResolveInterior(body, witness)
		return f.ictx.Resolve(witness)
	}

	// Fresh interners intern identically, so equal composites get equal
	// IDs across independent sessions.
	if first, second := run(), run(); first != second {
		t.Fatalf("composite IDs differ across identical runs: %d vs %d", first, second)
	}
}
