package region

import (
	"drift/internal/hir"
)

// Build derives the extent map for a body.
//
// Layout: one function extent at the root; a block extent per block; a
// remainder extent per let, covering the block from the let to its end
// (the scope of the let's bindings); a statement extent per statement,
// governing the temporaries its expressions produce. Awaits register as
// suspension points in their statement extent.
//
// Nested suspendable bodies are opaque: Build does not descend into async
// or closure blocks, so their awaits never surface as suspension points
// of the enclosing body and their locals stay out of this map.
func Build(body *hir.Body) *Map {
	m := NewMap()
	b := &builder{m: m}
	root := m.NewExtent(ExtentFunction, NoExtentID, body.Span)
	for _, p := range body.Params {
		b.bindPat(p.Pat, root)
	}
	if body.Block != nil {
		b.block(body.Block, root)
	}
	return m
}

type builder struct {
	m *Map
}

// bindPat assigns every binding in pat to the given extent.
func (b *builder) bindPat(pat *hir.Pat, ext ExtentID) {
	if pat == nil {
		return
	}
	switch data := pat.Data.(type) {
	case hir.BindingData:
		b.m.SetVarScope(data.Local, ext)
		b.bindPat(data.Sub, ext)
	case hir.TuplePatData:
		for _, sub := range data.Elems {
			b.bindPat(sub, ext)
		}
	}
}

func (b *builder) block(blk *hir.Block, parent ExtentID) {
	blockExt := b.m.NewExtent(ExtentBlock, parent, blk.Span)
	cur := blockExt
	for i := range blk.Stmts {
		cur = b.stmt(&blk.Stmts[i], cur, blk)
	}
}

// stmt processes one statement under the current enclosing extent and
// returns the extent subsequent statements live in (a new remainder
// extent after a let, cur otherwise).
func (b *builder) stmt(s *hir.Stmt, cur ExtentID, blk *hir.Block) ExtentID {
	stmtExt := b.m.NewExtent(ExtentStmt, cur, s.Span)
	switch data := s.Data.(type) {
	case hir.LetData:
		// The initializer runs before the binding exists; its
		// temporaries and awaits belong to the statement extent, not to
		// the remainder.
		b.expr(data.Value, stmtExt)
		remSpan := s.Span
		remSpan.End = blk.Span.End
		rem := b.m.NewExtent(ExtentRemainder, cur, remSpan)
		b.bindPat(data.Pat, rem)
		return rem
	case hir.ExprStmtData:
		b.expr(data.Expr, stmtExt)
	case hir.AssignData:
		b.expr(data.Target, stmtExt)
		b.expr(data.Value, stmtExt)
	case hir.ReturnData:
		b.expr(data.Value, stmtExt)
	case hir.IfStmtData:
		b.expr(data.Cond, stmtExt)
		b.block(data.Then, stmtExt)
		if data.Else != nil {
			b.block(data.Else, stmtExt)
		}
	case hir.WhileData:
		b.expr(data.Cond, stmtExt)
		b.block(data.Body, stmtExt)
	case hir.BlockStmtData:
		b.block(data.Block, stmtExt)
	}
	return cur
}

func (b *builder) expr(e *hir.Expr, ext ExtentID) {
	if e == nil {
		return
	}
	b.m.SetTemporaryScope(e.ID, ext)
	switch data := e.Data.(type) {
	case hir.UnaryOpData:
		b.expr(data.Operand, ext)
	case hir.BinaryOpData:
		b.expr(data.Left, ext)
		b.expr(data.Right, ext)
	case hir.CallData:
		b.expr(data.Callee, ext)
		for _, a := range data.Args {
			b.expr(a, ext)
		}
	case hir.FieldAccessData:
		b.expr(data.Object, ext)
	case hir.IndexData:
		b.expr(data.Object, ext)
		b.expr(data.Index, ext)
	case hir.TupleLitData:
		for _, el := range data.Elements {
			b.expr(el, ext)
		}
	case hir.ArrayLitData:
		for _, el := range data.Elements {
			b.expr(el, ext)
		}
	case hir.IfData:
		b.expr(data.Cond, ext)
		b.expr(data.Then, ext)
		b.expr(data.Else, ext)
	case hir.BlockExprData:
		b.block(data.Block, ext)
	case hir.CompareData:
		b.expr(data.Value, ext)
		for _, arm := range data.Arms {
			armExt := b.m.NewExtent(ExtentBlock, ext, arm.Span)
			b.bindPat(arm.Pat, armExt)
			b.expr(arm.Guard, armExt)
			b.expr(arm.Result, armExt)
		}
	case hir.AwaitData:
		b.expr(data.Value, ext)
		b.m.AddSuspension(ext, e.Span)
	case hir.AsyncData, hir.ClosureData:
		// Opaque nested body.
	}
}
