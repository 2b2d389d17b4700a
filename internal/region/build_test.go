package region

import (
	"testing"

	"drift/internal/hir"
	"drift/internal/source"
)

func sp(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

// buildBody assembles `async fn(arg) { stmts... }` over a 0..100 span.
func buildBody(params []hir.Param, stmts []hir.Stmt) *hir.Body {
	return &hir.Body{
		Name:   "probe",
		Params: params,
		Block:  &hir.Block{Stmts: stmts, Span: sp(10, 100)},
		Flags:  hir.BodySuspendable,
		Span:   sp(0, 100),
	}
}

func TestBuildParamsScopeToFunctionExtent(t *testing.T) {
	b := hir.NewBuilder()
	pat, local := b.NewBinding("arg", sp(3, 6))
	body := buildBody([]hir.Param{{Pat: pat, Span: sp(3, 6)}}, nil)

	m := Build(body)
	ext := m.VarScope(local)
	if !ext.IsValid() {
		t.Fatalf("param local has no scope")
	}
	if got := m.Get(ext).Kind; got != ExtentFunction {
		t.Fatalf("param scope kind = %v, want %v", got, ExtentFunction)
	}
}

func TestBuildLetBindingScopesToRemainder(t *testing.T) {
	b := hir.NewBuilder()
	pat, local := b.NewBinding("x", sp(14, 15))
	init := b.NewCall(b.NewVarRef("g", hir.NoLocalID, sp(18, 19)), nil, sp(18, 21))
	body := buildBody(nil, []hir.Stmt{hir.Let(pat, init, sp(10, 22))})

	m := Build(body)
	ext := m.VarScope(local)
	if !ext.IsValid() {
		t.Fatalf("let binding has no scope")
	}
	rem := m.Get(ext)
	if rem.Kind != ExtentRemainder {
		t.Fatalf("let scope kind = %v, want %v", rem.Kind, ExtentRemainder)
	}
	// The remainder runs from the let to the end of its block.
	if rem.Span.End != 100 {
		t.Fatalf("remainder end = %d, want block end 100", rem.Span.End)
	}
}

func TestBuildAwaitAfterLetSuspendsRemainder(t *testing.T) {
	b := hir.NewBuilder()
	pat, local := b.NewBinding("x", sp(14, 15))
	init := b.NewCall(b.NewVarRef("g", hir.NoLocalID, sp(18, 19)), nil, sp(18, 21))
	await := b.NewAwait(
		b.NewCall(b.NewVarRef("f", hir.NoLocalID, sp(30, 31)), nil, sp(30, 33)),
		sp(30, 39),
	)
	body := buildBody(nil, []hir.Stmt{
		hir.Let(pat, init, sp(10, 22)),
		hir.ExprStmt(await),
	})

	m := Build(body)
	span, ok := m.SuspensionWithin(m.VarScope(local))
	if !ok {
		t.Fatalf("await after let not visible from the binding's remainder")
	}
	if span != await.Span {
		t.Fatalf("suspension span = %v, want %v", span, await.Span)
	}
}

func TestBuildInitializerAwaitOutsideRemainder(t *testing.T) {
	b := hir.NewBuilder()
	pat, local := b.NewBinding("x", sp(14, 15))
	init := b.NewAwait(
		b.NewCall(b.NewVarRef("f", hir.NoLocalID, sp(18, 19)), nil, sp(18, 21)),
		sp(18, 27),
	)
	body := buildBody(nil, []hir.Stmt{hir.Let(pat, init, sp(10, 28))})

	m := Build(body)
	// The initializer suspends before the binding exists, so the
	// remainder must not see it.
	if _, ok := m.SuspensionWithin(m.VarScope(local)); ok {
		t.Fatalf("initializer await leaked into the binding's remainder")
	}
	// The enclosing block still does.
	tempExt, ok := m.TemporaryScope(init.ID)
	if !ok {
		t.Fatalf("initializer has no temporary scope")
	}
	if m.Get(tempExt).Kind != ExtentStmt {
		t.Fatalf("initializer temp scope kind = %v, want %v", m.Get(tempExt).Kind, ExtentStmt)
	}
	if _, ok := m.SuspensionWithin(m.Parent(tempExt)); !ok {
		t.Fatalf("enclosing block does not see the initializer await")
	}
}

func TestBuildNestedAsyncIsOpaque(t *testing.T) {
	b := hir.NewBuilder()
	innerPat, innerLocal := b.NewBinding("y", sp(34, 35))
	innerAwait := b.NewAwait(
		b.NewCall(b.NewVarRef("f", hir.NoLocalID, sp(40, 41)), nil, sp(40, 43)),
		sp(40, 49),
	)
	inner := &hir.Block{
		Stmts: []hir.Stmt{
			hir.Let(innerPat, b.NewLiteral(hir.LiteralInt, "1", sp(38, 39)), sp(30, 39)),
			hir.ExprStmt(innerAwait),
		},
		Span: sp(28, 52),
	}
	body := buildBody(nil, []hir.Stmt{
		hir.ExprStmt(b.NewAsync(inner, sp(20, 54))),
	})

	m := Build(body)
	for i := 1; i < m.Len(); i++ {
		if _, ok := m.SuspensionWithin(ExtentID(i)); ok {
			t.Fatalf("inner await registered as a suspension of the outer body")
		}
	}
	if m.VarScope(innerLocal).IsValid() {
		t.Fatalf("inner local scoped in the outer body's map")
	}
	if _, ok := m.TemporaryScope(innerAwait.ID); ok {
		t.Fatalf("inner expression assigned an outer temporary scope")
	}
}

func TestBuildCompareArmScopes(t *testing.T) {
	b := hir.NewBuilder()
	armPat, armLocal := b.NewBinding("v", sp(40, 41))
	armAwait := b.NewAwait(b.NewVarRef("v", armLocal, sp(45, 46)), sp(45, 52))
	cmp := b.NewExpr(hir.ExprCompare, sp(20, 60), hir.CompareData{
		Value: b.NewLiteral(hir.LiteralInt, "7", sp(28, 29)),
		Arms: []hir.CompareArm{
			{Pat: armPat, Result: armAwait, Span: sp(40, 52)},
		},
	})
	body := buildBody(nil, []hir.Stmt{hir.ExprStmt(cmp)})

	m := Build(body)
	armExt := m.VarScope(armLocal)
	if !armExt.IsValid() {
		t.Fatalf("arm binding has no scope")
	}
	if _, ok := m.SuspensionWithin(armExt); !ok {
		t.Fatalf("await in arm result not visible from the arm's extent")
	}
	// The arm extent hangs off the statement extent, so the statement
	// sees the suspension too.
	if _, ok := m.SuspensionWithin(m.Parent(armExt)); !ok {
		t.Fatalf("statement extent does not see the arm's suspension")
	}
}
