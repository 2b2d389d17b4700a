package sema

import (
	"fmt"
	"sort"

	"drift/internal/hir"
	"drift/internal/region"
	"drift/internal/source"
	"drift/internal/trace"
	"drift/internal/types"
)

// interiorVisitor accumulates the types live across suspension points
// of one body. One visitor per body; the cache and the recorded set are
// never shared between runs.
type interiorVisitor struct {
	chk   *Checker
	types map[types.TypeID]struct{}
	cache map[region.ExtentID]suspension
}

// suspension memoizes one SuspensionWithin answer.
type suspension struct {
	span source.Span
	ok   bool
}

// ResolveInterior computes the set of types that must survive the
// suspension points of a suspendable body and unifies their composite
// tuple against the witness placeholder. On success the deferred
// obligations land in the session's inference context; a unification
// failure is a compiler bug and panics with *InternalError.
func (c *Checker) ResolveInterior(body *hir.Body, witness types.TypeID) {
	var span *trace.Span
	if c.Tracer != nil && c.Tracer.Level() >= trace.LevelPhase {
		span = trace.Begin(c.Tracer, trace.ScopePass, "resolve_interior", 0)
		span.WithExtra("body", body.Name)
		defer span.End("")
	}

	v := &interiorVisitor{
		chk:   c,
		types: make(map[types.TypeID]struct{}),
		cache: make(map[region.ExtentID]suspension),
	}
	for _, p := range body.Params {
		v.visitPat(p.Pat)
	}
	v.visitBlock(body.Block)

	// Recorded entries may predate later variable resolution, so two of
	// them can collapse to one type here. Dedup again after resolving.
	resolved := make(map[types.TypeID]struct{}, len(v.types))
	for ty := range v.types {
		resolved[c.Infer.Resolve(ty)] = struct{}{}
	}
	elems := make([]types.TypeID, 0, len(resolved))
	for ty := range resolved {
		elems = append(elems, ty)
	}
	// Witness layout must be reproducible across runs, so the composite
	// gets a canonical element order.
	sort.Slice(elems, func(i, j int) bool { return elems[i] < elems[j] })

	tuple := c.Infer.Types().RegisterTuple(elems)
	trace.Point(c.Tracer, trace.ScopePass, "interior_composite",
		fmt.Sprintf("body=%s tuple=%s span=%s", body.Name, c.typeLabel(tuple), body.Span))

	obls, err := c.Infer.Unify(witness, tuple, body.Span)
	if err != nil {
		panic(&InternalError{
			Op:       "resolve_interior",
			Detail:   fmt.Sprintf("witness %s does not unify with composite %s: %v", c.typeLabel(witness), c.typeLabel(tuple), err),
			BodySpan: body.Span,
		})
	}
	c.Infer.Register(obls)
}

// record decides whether one observed value lives across a suspension
// point and, if so, adds its type to the set. Values without an extent
// are conservatively treated as live. Never fails.
func (v *interiorVisitor) record(ty types.TypeID, ext region.ExtentID, expr *hir.Expr) {
	if ty == types.NoTypeID {
		// Missing table entries are a validation finding, not ours.
		return
	}
	live := true
	if ext.IsValid() {
		s, hit := v.cache[ext]
		if !hit {
			s.span, s.ok = v.chk.Regions.SuspensionWithin(ext)
			v.cache[ext] = s
		}
		live = s.ok
	}

	debug := v.chk.Tracer != nil && v.chk.Tracer.Level() >= trace.LevelDebug
	if !live {
		if debug && expr != nil {
			trace.Point(v.chk.Tracer, trace.ScopeNode, "interior_skip",
				fmt.Sprintf("expr=%s span=%s", expr.Kind, expr.Span))
		}
		return
	}

	if debug {
		detail := fmt.Sprintf("type=%s resolved=%s extent=%d",
			v.chk.typeLabel(ty), v.chk.typeLabel(v.chk.Infer.Resolve(ty)), ext)
		if expr != nil {
			detail += fmt.Sprintf(" expr=%s span=%s", expr.Kind, expr.Span)
		}
		trace.Point(v.chk.Tracer, trace.ScopeNode, "interior_record", detail)
	}
	v.types[ty] = struct{}{}
}

func (v *interiorVisitor) visitBlock(blk *hir.Block) {
	if blk == nil {
		return
	}
	for i := range blk.Stmts {
		v.visitStmt(&blk.Stmts[i])
	}
}

func (v *interiorVisitor) visitStmt(s *hir.Stmt) {
	switch data := s.Data.(type) {
	case hir.LetData:
		v.visitPat(data.Pat)
		v.visitExpr(data.Value)
	case hir.ExprStmtData:
		v.visitExpr(data.Expr)
	case hir.AssignData:
		v.visitExpr(data.Target)
		v.visitExpr(data.Value)
	case hir.ReturnData:
		v.visitExpr(data.Value)
	case hir.IfStmtData:
		v.visitExpr(data.Cond)
		v.visitBlock(data.Then)
		v.visitBlock(data.Else)
	case hir.WhileData:
		v.visitExpr(data.Cond)
		v.visitBlock(data.Body)
	case hir.BlockStmtData:
		v.visitBlock(data.Block)
	}
}

// visitPat observes every binding in a pattern at its variable scope.
func (v *interiorVisitor) visitPat(pat *hir.Pat) {
	if pat == nil {
		return
	}
	switch data := pat.Data.(type) {
	case hir.BindingData:
		ty := v.chk.Tables.PatType(data.Local)
		v.record(ty, v.chk.Regions.VarScope(data.Local), nil)
		v.visitPat(data.Sub)
	case hir.TuplePatData:
		for _, sub := range data.Elems {
			v.visitPat(sub)
		}
	}
}

// visitExpr observes the expression at its temporary scope, then walks
// its children. Async blocks and closures are analyzed when their own
// bodies are compiled; from here they are opaque.
func (v *interiorVisitor) visitExpr(e *hir.Expr) {
	if e == nil {
		return
	}
	ty := v.chk.Tables.ExprType(e.ID)
	ext, ok := v.chk.Regions.TemporaryScope(e.ID)
	if !ok {
		ext = region.NoExtentID
	}
	v.record(ty, ext, e)

	switch data := e.Data.(type) {
	case hir.LiteralData, hir.VarRefData:
	case hir.UnaryOpData:
		v.visitExpr(data.Operand)
	case hir.BinaryOpData:
		v.visitExpr(data.Left)
		v.visitExpr(data.Right)
	case hir.CallData:
		v.visitExpr(data.Callee)
		for _, a := range data.Args {
			v.visitExpr(a)
		}
	case hir.FieldAccessData:
		v.visitExpr(data.Object)
	case hir.IndexData:
		v.visitExpr(data.Object)
		v.visitExpr(data.Index)
	case hir.TupleLitData:
		for _, el := range data.Elements {
			v.visitExpr(el)
		}
	case hir.ArrayLitData:
		for _, el := range data.Elements {
			v.visitExpr(el)
		}
	case hir.IfData:
		v.visitExpr(data.Cond)
		v.visitExpr(data.Then)
		v.visitExpr(data.Else)
	case hir.BlockExprData:
		v.visitBlock(data.Block)
	case hir.CompareData:
		v.visitExpr(data.Value)
		for i := range data.Arms {
			arm := &data.Arms[i]
			v.visitPat(arm.Pat)
			v.visitExpr(arm.Guard)
			v.visitExpr(arm.Result)
		}
	case hir.AwaitData:
		v.visitExpr(data.Value)
	case hir.AsyncData, hir.ClosureData:
		// Nested suspendable body. Its interior is its own problem.
	}
}
