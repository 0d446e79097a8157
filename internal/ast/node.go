// Package ast defines the compiler's single tagged AST node, the
// objects it points at (Var, Function, Program, InitRecord), and the
// add_type walker that decorates a parsed tree with result types.
//
// The node is one flat struct per spec rather than a hierarchy of Go
// interfaces per node kind: the code generator dispatches on Kind and
// reads whichever of lhs/rhs/cond/... is relevant to it, exactly as
// the type checker (add_type, below) does.
package ast

import (
	"github.com/asps1917/zxcc/internal/ctype"
	"github.com/asps1917/zxcc/internal/token"
)

// Kind enumerates every operator, control-flow construct, and leaf form.
type Kind int

const (
	NdAdd Kind = iota
	NdPtrAdd
	NdSub
	NdPtrSub
	NdPtrDiff
	NdMul
	NdDiv
	NdBitAnd
	NdBitOr
	NdBitXor
	NdShl
	NdShr
	NdEq
	NdNe
	NdLt
	NdLe
	NdLogAnd
	NdLogOr
	NdAssign
	NdAddEq
	NdPtrAddEq
	NdSubEq
	NdPtrSubEq
	NdMulEq
	NdDivEq
	NdShlEq
	NdShrEq
	NdBitAndEq
	NdBitOrEq
	NdBitXorEq
	NdPreInc
	NdPreDec
	NdPostInc
	NdPostDec
	NdCond // ?:
	NdComma
	NdNot    // !
	NdBitNot // ~
	NdAddr   // &
	NdDeref  // *
	NdMember // . / ->
	NdVar
	NdNum
	NdCast
	NdFuncCall
	NdStmtExpr // ({ ... })
	NdNull     // empty expression/statement

	NdReturn
	NdIf
	NdWhile
	NdFor
	NdDo
	NdBlock
	NdBreak
	NdContinue
	NdGoto
	NdLabel
	NdSwitch
	NdCase
	NdExprStmt
)

// Node is the single AST node shape. Which fields are meaningful
// depends on Kind; see the component design doc for the dispatch table.
type Node struct {
	Kind Kind
	Next *Node // sibling chain: statements in a block, expressions in Args
	Ty   *ctype.Type
	Tok  *token.Token // for diagnostics

	Lhs *Node
	Rhs *Node
	Val int64 // NdNum

	Cond *Node
	Then *Node
	Els  *Node
	Init *Node // for-loop init; reused as a var's own initializer-block for compound literals
	Post *Node

	Block *Node // first statement of a block/stmt-expr; chained via Next

	FuncName string
	FuncType *ctype.Type // resolved callee type, when known (nil ⇒ implicit declaration)
	Args     *Node       // chained via Next

	Member *ctype.Member

	Var *Var

	LabelName   string
	UniqueLabel string // not set: codegen derives goto/label targets from LabelName

	CaseNext     *Node  // next case in the enclosing switch's chain
	DefaultCase  *Node  // the switch's default case node, if any
	CaseLabel    string // parser-assigned label for this case
	CaseEndLabel string // parser-assigned label marking the switch's end (set on the switch node)
}

// NewNum builds a constant-folded integer literal of type long, the
// type add_type gives every "num" leaf.
func NewNum(val int64, tok *token.Token) *Node {
	return &Node{Kind: NdNum, Val: val, Tok: tok, Ty: ctype.LongTy}
}

// Var is a declared object and where it lives.
type Var struct {
	Name     string
	Ty       *ctype.Type
	IsLocal  bool
	IsStatic bool

	// Locals: positive byte offset from the frame pointer, assigned once
	// the function's locals are all known (see parser.finalizeFunc).
	Offset int

	// Globals (and function-local statics, which are globals under a
	// synthetic label): the flat initializer image, nil if zero-initialized.
	Init []*InitRecord

	IsStringLit bool // true for the synthetic var backing a string literal
}

// InitRecord is one emission record of a global's flat .data image.
// Exactly one of the two forms applies: Label == "" means a plain Sz-byte
// Val; Label != "" means a relocatable 8-byte quantity &Label + Addend.
type InitRecord struct {
	Sz  int // 1, 2, 4, or 8
	Val int64

	Label  string
	Addend int64
}

// Function is one compiled C function.
type Function struct {
	Name       string
	Params     []*Var
	IsStatic   bool
	HasVarargs bool

	Body      *Node // first statement of the body, chained via Next
	Locals    []*Var
	StackSize int

	VaArea *Var // synthetic 56-byte register-save slot, set iff HasVarargs
}

// Program is the parser's final output: every global and every
// function-with-a-body, in source order.
type Program struct {
	Globals []*Var
	Funcs   []*Function
}
