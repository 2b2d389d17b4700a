package hir

import (
	"drift/internal/source"
)

// Builder allocates HIR nodes with stable IDs. One builder per body; IDs
// are only meaningful relative to the body they were minted for.
type Builder struct {
	nextNode  NodeID
	nextLocal LocalID
}

// NewBuilder creates a builder with fresh ID counters.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewExpr allocates an expression node of the given kind.
func (b *Builder) NewExpr(kind ExprKind, span source.Span, data ExprData) *Expr {
	b.nextNode++
	return &Expr{ID: b.nextNode, Kind: kind, Span: span, Data: data}
}

// NewPat allocates a pattern node of the given kind.
func (b *Builder) NewPat(kind PatKind, span source.Span, data PatData) *Pat {
	b.nextNode++
	return &Pat{ID: b.nextNode, Kind: kind, Span: span, Data: data}
}

// NewBinding allocates a binding pattern and its local.
func (b *Builder) NewBinding(name string, span source.Span) (*Pat, LocalID) {
	b.nextLocal++
	local := b.nextLocal
	pat := b.NewPat(PatBinding, span, BindingData{Name: name, Local: local})
	return pat, local
}

// NewWildcard allocates a wildcard pattern.
func (b *Builder) NewWildcard(span source.Span) *Pat {
	return b.NewPat(PatWildcard, span, WildcardData{})
}

// NewLiteral allocates a literal expression.
func (b *Builder) NewLiteral(kind LiteralKind, text string, span source.Span) *Expr {
	return b.NewExpr(ExprLiteral, span, LiteralData{Kind: kind, Text: text})
}

// NewVarRef allocates a variable reference expression.
func (b *Builder) NewVarRef(name string, local LocalID, span source.Span) *Expr {
	return b.NewExpr(ExprVarRef, span, VarRefData{Name: name, Local: local})
}

// NewCall allocates a call expression.
func (b *Builder) NewCall(callee *Expr, args []*Expr, span source.Span) *Expr {
	return b.NewExpr(ExprCall, span, CallData{Callee: callee, Args: args})
}

// NewAwait allocates an await expression over value.
func (b *Builder) NewAwait(value *Expr, span source.Span) *Expr {
	return b.NewExpr(ExprAwait, span, AwaitData{Value: value})
}

// NewAsync allocates an opaque nested async block expression.
func (b *Builder) NewAsync(block *Block, span source.Span) *Expr {
	return b.NewExpr(ExprAsync, span, AsyncData{Block: block})
}

// NewClosure allocates an opaque closure expression.
func (b *Builder) NewClosure(params []Param, block *Block, span source.Span) *Expr {
	return b.NewExpr(ExprClosure, span, ClosureData{Params: params, Block: block})
}

// NewBlockExpr wraps a block as an expression.
func (b *Builder) NewBlockExpr(block *Block, span source.Span) *Expr {
	return b.NewExpr(ExprBlock, span, BlockExprData{Block: block})
}

// Let builds a let statement binding pat to value.
func Let(pat *Pat, value *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtLet, Span: span, Data: LetData{Pat: pat, Value: value}}
}

// ExprStmt wraps an expression as a statement.
func ExprStmt(expr *Expr) Stmt {
	return Stmt{Kind: StmtExpr, Span: expr.Span, Data: ExprStmtData{Expr: expr}}
}

// Return builds a return statement.
func Return(value *Expr, span source.Span) Stmt {
	return Stmt{Kind: StmtReturn, Span: span, Data: ReturnData{Value: value}}
}
