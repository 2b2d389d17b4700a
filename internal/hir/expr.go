package hir

import (
	"drift/internal/source"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprLiteral represents literals (int, float, bool, string, unit).
	ExprLiteral ExprKind = iota
	// ExprVarRef represents a reference to a local binding.
	ExprVarRef
	// ExprUnaryOp represents unary operators (-, !, &, &mut).
	ExprUnaryOp
	// ExprBinaryOp represents binary operators (+, -, ==, etc.).
	ExprBinaryOp
	// ExprCall represents function calls.
	ExprCall
	// ExprFieldAccess represents field access (expr.field).
	ExprFieldAccess
	// ExprIndex represents indexing (expr[index]).
	ExprIndex
	// ExprTupleLit represents tuple literals ((a, b, c)).
	ExprTupleLit
	// ExprArrayLit represents array literals ([a, b, c]).
	ExprArrayLit
	// ExprIf represents a conditional expression.
	ExprIf
	// ExprBlock represents a block expression { ... }.
	ExprBlock
	// ExprCompare represents pattern matching with binding arms.
	ExprCompare
	// ExprAwait suspends the enclosing body until the operand completes.
	// Every await is a suspension point.
	ExprAwait
	// ExprAsync represents an async { ... } block: a nested suspendable
	// body, opaque to any analysis of the enclosing one.
	ExprAsync
	// ExprClosure represents a closure literal, likewise opaque.
	ExprClosure
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVarRef:
		return "VarRef"
	case ExprUnaryOp:
		return "UnaryOp"
	case ExprBinaryOp:
		return "BinaryOp"
	case ExprCall:
		return "Call"
	case ExprFieldAccess:
		return "FieldAccess"
	case ExprIndex:
		return "Index"
	case ExprTupleLit:
		return "TupleLit"
	case ExprArrayLit:
		return "ArrayLit"
	case ExprIf:
		return "If"
	case ExprBlock:
		return "Block"
	case ExprCompare:
		return "Compare"
	case ExprAwait:
		return "Await"
	case ExprAsync:
		return "Async"
	case ExprClosure:
		return "Closure"
	default:
		return "Unknown"
	}
}

// Expr represents an HIR expression node.
type Expr struct {
	ID   NodeID      // stable identifier, key for tables and temp scopes
	Kind ExprKind    // node kind
	Span source.Span // source location for diagnostics
	Data ExprData    // kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
	LiteralString
	LiteralUnit
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind LiteralKind
	Text string // raw literal text
}

func (LiteralData) exprData() {}

// VarRefData holds data for ExprVarRef.
type VarRefData struct {
	Name  string
	Local LocalID
}

func (VarRefData) exprData() {}

// UnaryOpData holds data for ExprUnaryOp.
type UnaryOpData struct {
	Op      string
	Operand *Expr
}

func (UnaryOpData) exprData() {}

// BinaryOpData holds data for ExprBinaryOp.
type BinaryOpData struct {
	Op    string
	Left  *Expr
	Right *Expr
}

func (BinaryOpData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Callee *Expr
	Args   []*Expr
}

func (CallData) exprData() {}

// FieldAccessData holds data for ExprFieldAccess.
type FieldAccessData struct {
	Object    *Expr
	FieldName string
}

func (FieldAccessData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// TupleLitData holds data for ExprTupleLit.
type TupleLitData struct {
	Elements []*Expr
}

func (TupleLitData) exprData() {}

// ArrayLitData holds data for ExprArrayLit.
type ArrayLitData struct {
	Elements []*Expr
}

func (ArrayLitData) exprData() {}

// IfData holds data for ExprIf.
type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr // nil if no else branch
}

func (IfData) exprData() {}

// BlockExprData holds data for ExprBlock.
type BlockExprData struct {
	Block *Block
}

func (BlockExprData) exprData() {}

// CompareArm represents one arm in a compare expression.
type CompareArm struct {
	Pat    *Pat        // binding pattern for this arm
	Guard  *Expr       // optional guard condition (nil if none)
	Result *Expr       // arm result expression
	Span   source.Span // source location
}

// CompareData holds data for ExprCompare.
type CompareData struct {
	Value *Expr        // expression being matched
	Arms  []CompareArm // match arms
}

func (CompareData) exprData() {}

// AwaitData holds data for ExprAwait.
type AwaitData struct {
	Value *Expr
}

func (AwaitData) exprData() {}

// AsyncData holds data for ExprAsync. The block is the nested body's
// interior; enclosing-body passes must not walk into it.
type AsyncData struct {
	Block *Block
}

func (AsyncData) exprData() {}

// ClosureData holds data for ExprClosure. Same opacity rule as AsyncData.
type ClosureData struct {
	Params []Param
	Block  *Block
}

func (ClosureData) exprData() {}
