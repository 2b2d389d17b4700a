package hir

import (
	"fmt"

	"drift/internal/diag"
	"drift/internal/types"
)

// Validate checks structural integrity of a body against its type tables:
// every reachable expression has a recorded type, every binding has a
// declared type, every variable reference resolves to a binding
// introduced in this body, and awaits only appear in bodies flagged
// suspendable. Nested suspendable bodies are not descended into; they
// are validated when their own artifact is checked.
//
// Problems are reported through r. The return value is true when no
// defects were found.
func Validate(body *Body, tables *Tables, r diag.Reporter) bool {
	v := &validator{
		tables:      tables,
		reporter:    r,
		locals:      make(map[LocalID]string),
		suspendable: body.IsSuspendable(),
	}
	if body.Block == nil {
		diag.ReportError(r, diag.HirMissingBlock, body.Span,
			fmt.Sprintf("body %q has no block", body.Name))
		return false
	}
	for _, p := range body.Params {
		v.collectPat(p.Pat)
	}
	v.collectBlock(body.Block)

	for _, p := range body.Params {
		v.checkPat(p.Pat)
	}
	v.checkBlock(body.Block)

	if v.suspendable && !v.sawAwait {
		diag.ReportWarning(r, diag.HirInfo, body.Span,
			fmt.Sprintf("suspendable body %q has no suspension points", body.Name))
	}
	return v.ok()
}

type validator struct {
	tables      *Tables
	reporter    diag.Reporter
	locals      map[LocalID]string
	defects     int
	suspendable bool
	sawAwait    bool
}

func (v *validator) ok() bool {
	return v.defects == 0
}

// collect pass: gather every binding introduced by this body.

func (v *validator) collectBlock(b *Block) {
	for i := range b.Stmts {
		v.collectStmt(&b.Stmts[i])
	}
}

func (v *validator) collectStmt(s *Stmt) {
	switch data := s.Data.(type) {
	case LetData:
		v.collectPat(data.Pat)
		v.collectExpr(data.Value)
	case ExprStmtData:
		v.collectExpr(data.Expr)
	case AssignData:
		v.collectExpr(data.Target)
		v.collectExpr(data.Value)
	case ReturnData:
		v.collectExpr(data.Value)
	case IfStmtData:
		v.collectExpr(data.Cond)
		v.collectBlock(data.Then)
		if data.Else != nil {
			v.collectBlock(data.Else)
		}
	case WhileData:
		v.collectExpr(data.Cond)
		v.collectBlock(data.Body)
	case BlockStmtData:
		v.collectBlock(data.Block)
	}
}

func (v *validator) collectPat(p *Pat) {
	if p == nil {
		return
	}
	switch data := p.Data.(type) {
	case BindingData:
		v.locals[data.Local] = data.Name
		v.collectPat(data.Sub)
	case TuplePatData:
		for _, sub := range data.Elems {
			v.collectPat(sub)
		}
	}
}

func (v *validator) collectExpr(e *Expr) {
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case UnaryOpData:
		v.collectExpr(data.Operand)
	case BinaryOpData:
		v.collectExpr(data.Left)
		v.collectExpr(data.Right)
	case CallData:
		v.collectExpr(data.Callee)
		for _, a := range data.Args {
			v.collectExpr(a)
		}
	case FieldAccessData:
		v.collectExpr(data.Object)
	case IndexData:
		v.collectExpr(data.Object)
		v.collectExpr(data.Index)
	case TupleLitData:
		for _, el := range data.Elements {
			v.collectExpr(el)
		}
	case ArrayLitData:
		for _, el := range data.Elements {
			v.collectExpr(el)
		}
	case IfData:
		v.collectExpr(data.Cond)
		v.collectExpr(data.Then)
		v.collectExpr(data.Else)
	case BlockExprData:
		v.collectBlock(data.Block)
	case CompareData:
		v.collectExpr(data.Value)
		for _, arm := range data.Arms {
			v.collectPat(arm.Pat)
			v.collectExpr(arm.Guard)
			v.collectExpr(arm.Result)
		}
	case AwaitData:
		v.collectExpr(data.Value)
	}
	// AsyncData/ClosureData interiors belong to their own bodies.
}

// check pass: verify tables and references.

func (v *validator) checkBlock(b *Block) {
	for i := range b.Stmts {
		v.checkStmt(&b.Stmts[i])
	}
}

func (v *validator) checkStmt(s *Stmt) {
	switch data := s.Data.(type) {
	case LetData:
		v.checkPat(data.Pat)
		v.checkExpr(data.Value)
	case ExprStmtData:
		v.checkExpr(data.Expr)
	case AssignData:
		v.checkExpr(data.Target)
		v.checkExpr(data.Value)
	case ReturnData:
		v.checkExpr(data.Value)
	case IfStmtData:
		v.checkExpr(data.Cond)
		v.checkBlock(data.Then)
		if data.Else != nil {
			v.checkBlock(data.Else)
		}
	case WhileData:
		v.checkExpr(data.Cond)
		v.checkBlock(data.Body)
	case BlockStmtData:
		v.checkBlock(data.Block)
	}
}

func (v *validator) checkPat(p *Pat) {
	if p == nil {
		return
	}
	switch data := p.Data.(type) {
	case BindingData:
		if v.tables.PatType(data.Local) == types.NoTypeID {
			v.defects++
			diag.ReportError(v.reporter, diag.HirMissingBindingType, p.Span,
				fmt.Sprintf("binding %q has no recorded type", data.Name))
		}
		v.checkPat(data.Sub)
	case TuplePatData:
		for _, sub := range data.Elems {
			v.checkPat(sub)
		}
	}
}

func (v *validator) checkExpr(e *Expr) {
	if e == nil {
		return
	}
	if v.tables.ExprType(e.ID) == types.NoTypeID {
		v.defects++
		diag.ReportError(v.reporter, diag.HirMissingExprType, e.Span,
			fmt.Sprintf("%s expression has no recorded type", e.Kind))
	}

	switch data := e.Data.(type) {
	case VarRefData:
		if _, ok := v.locals[data.Local]; !ok {
			v.defects++
			diag.ReportError(v.reporter, diag.HirUnboundLocal, e.Span,
				fmt.Sprintf("reference to unbound local %q", data.Name))
		}
	case UnaryOpData:
		v.checkExpr(data.Operand)
	case BinaryOpData:
		v.checkExpr(data.Left)
		v.checkExpr(data.Right)
	case CallData:
		v.checkExpr(data.Callee)
		for _, a := range data.Args {
			v.checkExpr(a)
		}
	case FieldAccessData:
		v.checkExpr(data.Object)
	case IndexData:
		v.checkExpr(data.Object)
		v.checkExpr(data.Index)
	case TupleLitData:
		for _, el := range data.Elements {
			v.checkExpr(el)
		}
	case ArrayLitData:
		for _, el := range data.Elements {
			v.checkExpr(el)
		}
	case IfData:
		v.checkExpr(data.Cond)
		v.checkExpr(data.Then)
		v.checkExpr(data.Else)
	case BlockExprData:
		v.checkBlock(data.Block)
	case CompareData:
		v.checkExpr(data.Value)
		for _, arm := range data.Arms {
			v.checkPat(arm.Pat)
			v.checkExpr(arm.Guard)
			v.checkExpr(arm.Result)
		}
	case AwaitData:
		v.sawAwait = true
		if !v.suspendable {
			v.defects++
			diag.ReportError(v.reporter, diag.HirAwaitOutsideAsync, e.Span,
				"await in a body that cannot suspend")
		}
		v.checkExpr(data.Value)
	case AsyncData:
		if data.Block == nil {
			v.defects++
			diag.ReportError(v.reporter, diag.HirMissingBlock, e.Span,
				"async expression has no block")
		}
	case ClosureData:
		if data.Block == nil {
			v.defects++
			diag.ReportError(v.reporter, diag.HirMissingBlock, e.Span,
				"closure expression has no block")
		}
	}
}
