package hir

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"drift/internal/diag"
	"drift/internal/source"
	"drift/internal/types"
)

// Body artifacts carry one lowered body, its type tables and the interner
// snapshot they refer to, in a flat index-based form. The front end writes
// them per body; the interior analyzer (and its CLI) reads them back.

// artifactSchema is bumped whenever the payload layout changes.
const artifactSchema uint16 = 1

// ErrSchemaMismatch is returned when an artifact was written with a
// different schema version.
var ErrSchemaMismatch = errors.New("hir: artifact schema mismatch")

// DecodeError tags a decode failure with the diagnostic code callers
// report it under.
type DecodeError struct {
	Code diag.Code
	err  error
}

func (e *DecodeError) Error() string { return e.err.Error() }
func (e *DecodeError) Unwrap() error { return e.err }

func decodeErrf(code diag.Code, format string, args ...any) error {
	return &DecodeError{Code: code, err: fmt.Errorf(format, args...)}
}

const noIdx int32 = -1

type spanRec struct {
	File  uint32
	Start uint32
	End   uint32
}

type exprRec struct {
	ID   uint32
	Kind uint8
	Span spanRec

	LitKind uint8
	Text    string
	Op      string
	Name    string
	Local   uint32

	X, Y, Z int32   // child expression slots
	Args    []int32 // call args / tuple / array elements
	Block   int32   // block payload (block expr, async, closure)
	Arms    []armRec
	Params  []paramRec // closure params
}

type armRec struct {
	Pat    int32
	Guard  int32
	Result int32
	Span   spanRec
}

type patRec struct {
	ID      uint32
	Kind    uint8
	Span    spanRec
	Name    string
	Local   uint32
	Sub     int32
	Elems   []int32
	LitKind uint8
	Text    string
}

type stmtRec struct {
	Kind  uint8
	Span  spanRec
	Pat   int32
	X     int32 // value / expr / cond / target
	Y     int32 // second expression (assign value)
	ThenB int32
	ElseB int32
	Block int32
}

type blockRec struct {
	Span  spanRec
	Stmts []stmtRec
}

type paramRec struct {
	Pat  int32
	Span spanRec
}

type artifactPayload struct {
	Schema uint16
	Name   string
	Flags  uint32
	Span   spanRec

	Params []paramRec
	Root   int32
	Blocks []blockRec
	Exprs  []exprRec
	Pats   []patRec

	Types     types.Snapshot
	ExprTypes map[uint32]uint32
	Adjusted  map[uint32]uint32
	PatTypes  map[uint32]uint32
}

// EncodeBody writes a body artifact to w.
func EncodeBody(w io.Writer, body *Body, tables *Tables, in *types.Interner) error {
	enc := encoder{}
	payload := artifactPayload{
		Schema:    artifactSchema,
		Name:      body.Name,
		Flags:     uint32(body.Flags),
		Span:      toSpanRec(body.Span),
		Types:     in.Snapshot(),
		ExprTypes: make(map[uint32]uint32, len(tables.exprTypes)),
		Adjusted:  make(map[uint32]uint32, len(tables.adjusted)),
		PatTypes:  make(map[uint32]uint32, len(tables.patTypes)),
	}
	for _, p := range body.Params {
		payload.Params = append(payload.Params, paramRec{Pat: enc.pat(p.Pat), Span: toSpanRec(p.Span)})
	}
	payload.Root = enc.block(body.Block)
	payload.Blocks = enc.blocks
	payload.Exprs = enc.exprs
	payload.Pats = enc.pats
	for id, ty := range tables.exprTypes {
		payload.ExprTypes[uint32(id)] = uint32(ty)
	}
	for id, ty := range tables.adjusted {
		payload.Adjusted[uint32(id)] = uint32(ty)
	}
	for local, ty := range tables.patTypes {
		payload.PatTypes[uint32(local)] = uint32(ty)
	}
	return msgpack.NewEncoder(w).Encode(&payload)
}

// DecodeBody reads a body artifact from r and rebuilds the body, its
// tables and the type interner they reference.
func DecodeBody(r io.Reader) (*Body, *Tables, *types.Interner, error) {
	var payload artifactPayload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, nil, nil, decodeErrf(diag.ArtTruncated, "hir: decode artifact: %w", err)
	}
	if payload.Schema != artifactSchema {
		return nil, nil, nil, decodeErrf(diag.ArtSchemaMismatch, "%w: got %d, want %d",
			ErrSchemaMismatch, payload.Schema, artifactSchema)
	}
	in, err := types.FromSnapshot(payload.Types)
	if err != nil {
		return nil, nil, nil, decodeErrf(diag.ArtInfo, "hir: artifact types: %w", err)
	}

	dec := decoder{
		payload:    &payload,
		openExprs:  make([]bool, len(payload.Exprs)),
		openPats:   make([]bool, len(payload.Pats)),
		openBlocks: make([]bool, len(payload.Blocks)),
	}
	body := &Body{
		Name:  payload.Name,
		Flags: BodyFlags(payload.Flags),
		Span:  fromSpanRec(payload.Span),
	}
	for _, pr := range payload.Params {
		pat, err := dec.pat(pr.Pat)
		if err != nil {
			return nil, nil, nil, err
		}
		body.Params = append(body.Params, Param{Pat: pat, Span: fromSpanRec(pr.Span)})
	}
	body.Block, err = dec.block(payload.Root)
	if err != nil {
		return nil, nil, nil, err
	}

	tables := NewTables()
	for id, ty := range payload.ExprTypes {
		tables.SetExprType(NodeID(id), types.TypeID(ty))
	}
	for id, ty := range payload.Adjusted {
		tables.SetAdjusted(NodeID(id), types.TypeID(ty))
	}
	for local, ty := range payload.PatTypes {
		tables.SetPatType(LocalID(local), types.TypeID(ty))
	}
	return body, tables, in, nil
}

// encoder flattens a tree into index-based records.

type encoder struct {
	exprs  []exprRec
	pats   []patRec
	blocks []blockRec
}

func (e *encoder) expr(x *Expr) int32 {
	if x == nil {
		return noIdx
	}
	rec := exprRec{
		ID:   uint32(x.ID),
		Kind: uint8(x.Kind),
		Span: toSpanRec(x.Span),
		X:    noIdx, Y: noIdx, Z: noIdx,
		Block: noIdx,
	}
	switch data := x.Data.(type) {
	case LiteralData:
		rec.LitKind = uint8(data.Kind)
		rec.Text = data.Text
	case VarRefData:
		rec.Name = data.Name
		rec.Local = uint32(data.Local)
	case UnaryOpData:
		rec.Op = data.Op
		rec.X = e.expr(data.Operand)
	case BinaryOpData:
		rec.Op = data.Op
		rec.X = e.expr(data.Left)
		rec.Y = e.expr(data.Right)
	case CallData:
		rec.X = e.expr(data.Callee)
		for _, a := range data.Args {
			rec.Args = append(rec.Args, e.expr(a))
		}
	case FieldAccessData:
		rec.Name = data.FieldName
		rec.X = e.expr(data.Object)
	case IndexData:
		rec.X = e.expr(data.Object)
		rec.Y = e.expr(data.Index)
	case TupleLitData:
		for _, el := range data.Elements {
			rec.Args = append(rec.Args, e.expr(el))
		}
	case ArrayLitData:
		for _, el := range data.Elements {
			rec.Args = append(rec.Args, e.expr(el))
		}
	case IfData:
		rec.X = e.expr(data.Cond)
		rec.Y = e.expr(data.Then)
		rec.Z = e.expr(data.Else)
	case BlockExprData:
		rec.Block = e.block(data.Block)
	case CompareData:
		rec.X = e.expr(data.Value)
		for _, arm := range data.Arms {
			rec.Arms = append(rec.Arms, armRec{
				Pat:    e.pat(arm.Pat),
				Guard:  e.expr(arm.Guard),
				Result: e.expr(arm.Result),
				Span:   toSpanRec(arm.Span),
			})
		}
	case AwaitData:
		rec.X = e.expr(data.Value)
	case AsyncData:
		rec.Block = e.block(data.Block)
	case ClosureData:
		for _, p := range data.Params {
			rec.Params = append(rec.Params, paramRec{Pat: e.pat(p.Pat), Span: toSpanRec(p.Span)})
		}
		rec.Block = e.block(data.Block)
	}
	e.exprs = append(e.exprs, rec)
	return int32(len(e.exprs) - 1)
}

func (e *encoder) pat(p *Pat) int32 {
	if p == nil {
		return noIdx
	}
	rec := patRec{
		ID:   uint32(p.ID),
		Kind: uint8(p.Kind),
		Span: toSpanRec(p.Span),
		Sub:  noIdx,
	}
	switch data := p.Data.(type) {
	case BindingData:
		rec.Name = data.Name
		rec.Local = uint32(data.Local)
		rec.Sub = e.pat(data.Sub)
	case TuplePatData:
		for _, sub := range data.Elems {
			rec.Elems = append(rec.Elems, e.pat(sub))
		}
	case LiteralPatData:
		rec.LitKind = uint8(data.Kind)
		rec.Text = data.Text
	}
	e.pats = append(e.pats, rec)
	return int32(len(e.pats) - 1)
}

func (e *encoder) block(b *Block) int32 {
	if b == nil {
		return noIdx
	}
	rec := blockRec{Span: toSpanRec(b.Span)}
	for i := range b.Stmts {
		rec.Stmts = append(rec.Stmts, e.stmt(&b.Stmts[i]))
	}
	e.blocks = append(e.blocks, rec)
	return int32(len(e.blocks) - 1)
}

func (e *encoder) stmt(s *Stmt) stmtRec {
	rec := stmtRec{
		Kind: uint8(s.Kind),
		Span: toSpanRec(s.Span),
		Pat:  noIdx, X: noIdx, Y: noIdx,
		ThenB: noIdx, ElseB: noIdx, Block: noIdx,
	}
	switch data := s.Data.(type) {
	case LetData:
		rec.Pat = e.pat(data.Pat)
		rec.X = e.expr(data.Value)
	case ExprStmtData:
		rec.X = e.expr(data.Expr)
	case AssignData:
		rec.X = e.expr(data.Target)
		rec.Y = e.expr(data.Value)
	case ReturnData:
		rec.X = e.expr(data.Value)
	case IfStmtData:
		rec.X = e.expr(data.Cond)
		rec.ThenB = e.block(data.Then)
		rec.ElseB = e.block(data.Else)
	case WhileData:
		rec.X = e.expr(data.Cond)
		rec.Block = e.block(data.Body)
	case BlockStmtData:
		rec.Block = e.block(data.Block)
	}
	return rec
}

// decoder rebuilds trees from records. Records form a forest in
// well-formed artifacts; the open* slices catch inputs whose references
// loop back into a record still being decoded, which would otherwise
// recurse without bound.

type decoder struct {
	payload    *artifactPayload
	openExprs  []bool
	openPats   []bool
	openBlocks []bool
}

func (d *decoder) expr(idx int32) (*Expr, error) {
	if idx == noIdx {
		return nil, nil
	}
	if idx < 0 || int(idx) >= len(d.payload.Exprs) {
		return nil, decodeErrf(diag.ArtBadReference, "hir: expression index %d out of range", idx)
	}
	if d.openExprs[idx] {
		return nil, decodeErrf(diag.ArtBadReference, "hir: cyclic reference to expression record %d", idx)
	}
	d.openExprs[idx] = true
	defer func() { d.openExprs[idx] = false }()
	rec := d.payload.Exprs[idx]
	x := &Expr{
		ID:   NodeID(rec.ID),
		Kind: ExprKind(rec.Kind),
		Span: fromSpanRec(rec.Span),
	}
	var err error
	switch x.Kind {
	case ExprLiteral:
		x.Data = LiteralData{Kind: LiteralKind(rec.LitKind), Text: rec.Text}
	case ExprVarRef:
		x.Data = VarRefData{Name: rec.Name, Local: LocalID(rec.Local)}
	case ExprUnaryOp:
		var operand *Expr
		if operand, err = d.expr(rec.X); err != nil {
			return nil, err
		}
		x.Data = UnaryOpData{Op: rec.Op, Operand: operand}
	case ExprBinaryOp:
		var left, right *Expr
		if left, err = d.expr(rec.X); err != nil {
			return nil, err
		}
		if right, err = d.expr(rec.Y); err != nil {
			return nil, err
		}
		x.Data = BinaryOpData{Op: rec.Op, Left: left, Right: right}
	case ExprCall:
		var callee *Expr
		if callee, err = d.expr(rec.X); err != nil {
			return nil, err
		}
		args, err := d.exprList(rec.Args)
		if err != nil {
			return nil, err
		}
		x.Data = CallData{Callee: callee, Args: args}
	case ExprFieldAccess:
		var object *Expr
		if object, err = d.expr(rec.X); err != nil {
			return nil, err
		}
		x.Data = FieldAccessData{Object: object, FieldName: rec.Name}
	case ExprIndex:
		var object, index *Expr
		if object, err = d.expr(rec.X); err != nil {
			return nil, err
		}
		if index, err = d.expr(rec.Y); err != nil {
			return nil, err
		}
		x.Data = IndexData{Object: object, Index: index}
	case ExprTupleLit:
		elements, err := d.exprList(rec.Args)
		if err != nil {
			return nil, err
		}
		x.Data = TupleLitData{Elements: elements}
	case ExprArrayLit:
		elements, err := d.exprList(rec.Args)
		if err != nil {
			return nil, err
		}
		x.Data = ArrayLitData{Elements: elements}
	case ExprIf:
		var cond, then, els *Expr
		if cond, err = d.expr(rec.X); err != nil {
			return nil, err
		}
		if then, err = d.expr(rec.Y); err != nil {
			return nil, err
		}
		if els, err = d.expr(rec.Z); err != nil {
			return nil, err
		}
		x.Data = IfData{Cond: cond, Then: then, Else: els}
	case ExprBlock:
		block, err := d.block(rec.Block)
		if err != nil {
			return nil, err
		}
		x.Data = BlockExprData{Block: block}
	case ExprCompare:
		value, err := d.expr(rec.X)
		if err != nil {
			return nil, err
		}
		arms := make([]CompareArm, 0, len(rec.Arms))
		for _, ar := range rec.Arms {
			pat, err := d.pat(ar.Pat)
			if err != nil {
				return nil, err
			}
			guard, err := d.expr(ar.Guard)
			if err != nil {
				return nil, err
			}
			result, err := d.expr(ar.Result)
			if err != nil {
				return nil, err
			}
			arms = append(arms, CompareArm{Pat: pat, Guard: guard, Result: result, Span: fromSpanRec(ar.Span)})
		}
		x.Data = CompareData{Value: value, Arms: arms}
	case ExprAwait:
		var value *Expr
		if value, err = d.expr(rec.X); err != nil {
			return nil, err
		}
		x.Data = AwaitData{Value: value}
	case ExprAsync:
		block, err := d.block(rec.Block)
		if err != nil {
			return nil, err
		}
		x.Data = AsyncData{Block: block}
	case ExprClosure:
		params := make([]Param, 0, len(rec.Params))
		for _, pr := range rec.Params {
			pat, err := d.pat(pr.Pat)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Pat: pat, Span: fromSpanRec(pr.Span)})
		}
		block, err := d.block(rec.Block)
		if err != nil {
			return nil, err
		}
		x.Data = ClosureData{Params: params, Block: block}
	default:
		return nil, decodeErrf(diag.ArtBadReference, "hir: unknown expression kind %d", rec.Kind)
	}
	return x, nil
}

func (d *decoder) exprList(idxs []int32) ([]*Expr, error) {
	if len(idxs) == 0 {
		return nil, nil
	}
	out := make([]*Expr, 0, len(idxs))
	for _, idx := range idxs {
		x, err := d.expr(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (d *decoder) pat(idx int32) (*Pat, error) {
	if idx == noIdx {
		return nil, nil
	}
	if idx < 0 || int(idx) >= len(d.payload.Pats) {
		return nil, decodeErrf(diag.ArtBadReference, "hir: pattern index %d out of range", idx)
	}
	if d.openPats[idx] {
		return nil, decodeErrf(diag.ArtBadReference, "hir: cyclic reference to pattern record %d", idx)
	}
	d.openPats[idx] = true
	defer func() { d.openPats[idx] = false }()
	rec := d.payload.Pats[idx]
	p := &Pat{
		ID:   NodeID(rec.ID),
		Kind: PatKind(rec.Kind),
		Span: fromSpanRec(rec.Span),
	}
	switch p.Kind {
	case PatBinding:
		sub, err := d.pat(rec.Sub)
		if err != nil {
			return nil, err
		}
		p.Data = BindingData{Name: rec.Name, Local: LocalID(rec.Local), Sub: sub}
	case PatTuple:
		elems := make([]*Pat, 0, len(rec.Elems))
		for _, ei := range rec.Elems {
			sub, err := d.pat(ei)
			if err != nil {
				return nil, err
			}
			elems = append(elems, sub)
		}
		p.Data = TuplePatData{Elems: elems}
	case PatWildcard:
		p.Data = WildcardData{}
	case PatLiteral:
		p.Data = LiteralPatData{Kind: LiteralKind(rec.LitKind), Text: rec.Text}
	default:
		return nil, decodeErrf(diag.ArtBadReference, "hir: unknown pattern kind %d", rec.Kind)
	}
	return p, nil
}

func (d *decoder) block(idx int32) (*Block, error) {
	if idx == noIdx {
		return nil, nil
	}
	if idx < 0 || int(idx) >= len(d.payload.Blocks) {
		return nil, decodeErrf(diag.ArtBadReference, "hir: block index %d out of range", idx)
	}
	if d.openBlocks[idx] {
		return nil, decodeErrf(diag.ArtBadReference, "hir: cyclic reference to block record %d", idx)
	}
	d.openBlocks[idx] = true
	defer func() { d.openBlocks[idx] = false }()
	rec := d.payload.Blocks[idx]
	b := &Block{Span: fromSpanRec(rec.Span)}
	for _, sr := range rec.Stmts {
		s, err := d.stmt(sr)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func (d *decoder) stmt(rec stmtRec) (Stmt, error) {
	s := Stmt{Kind: StmtKind(rec.Kind), Span: fromSpanRec(rec.Span)}
	switch s.Kind {
	case StmtLet:
		pat, err := d.pat(rec.Pat)
		if err != nil {
			return s, err
		}
		value, err := d.expr(rec.X)
		if err != nil {
			return s, err
		}
		s.Data = LetData{Pat: pat, Value: value}
	case StmtExpr:
		x, err := d.expr(rec.X)
		if err != nil {
			return s, err
		}
		s.Data = ExprStmtData{Expr: x}
	case StmtAssign:
		target, err := d.expr(rec.X)
		if err != nil {
			return s, err
		}
		value, err := d.expr(rec.Y)
		if err != nil {
			return s, err
		}
		s.Data = AssignData{Target: target, Value: value}
	case StmtReturn:
		value, err := d.expr(rec.X)
		if err != nil {
			return s, err
		}
		s.Data = ReturnData{Value: value}
	case StmtIf:
		cond, err := d.expr(rec.X)
		if err != nil {
			return s, err
		}
		then, err := d.block(rec.ThenB)
		if err != nil {
			return s, err
		}
		els, err := d.block(rec.ElseB)
		if err != nil {
			return s, err
		}
		s.Data = IfStmtData{Cond: cond, Then: then, Else: els}
	case StmtWhile:
		cond, err := d.expr(rec.X)
		if err != nil {
			return s, err
		}
		body, err := d.block(rec.Block)
		if err != nil {
			return s, err
		}
		s.Data = WhileData{Cond: cond, Body: body}
	case StmtBlock:
		block, err := d.block(rec.Block)
		if err != nil {
			return s, err
		}
		s.Data = BlockStmtData{Block: block}
	default:
		return s, decodeErrf(diag.ArtBadReference, "hir: unknown statement kind %d", rec.Kind)
	}
	return s, nil
}

func toSpanRec(s source.Span) spanRec {
	return spanRec{File: uint32(s.File), Start: s.Start, End: s.End}
}

func fromSpanRec(r spanRec) source.Span {
	return source.Span{File: source.FileID(r.File), Start: r.Start, End: r.End}
}
