package ast

import "github.com/asps1917/zxcc/internal/ctype"

// AddType decorates node and everything it reaches with a result type.
// It is idempotent: a node whose Ty is already set (NdNum, a cast's
// target, a var already typed at declaration) is never recomputed, so
// calling it from multiple places in the parser as subtrees complete is
// safe and is how this compiler builds types bottom-up without a
// separate semantic pass.
func AddType(n *Node) {
	if n == nil || n.Ty != nil {
		return
	}

	AddType(n.Lhs)
	AddType(n.Rhs)
	AddType(n.Cond)
	AddType(n.Then)
	AddType(n.Els)
	AddType(n.Init)
	AddType(n.Post)
	for b := n.Block; b != nil; b = b.Next {
		AddType(b)
	}
	for a := n.Args; a != nil; a = a.Next {
		AddType(a)
	}

	switch n.Kind {
	case NdAdd, NdSub, NdMul, NdDiv, NdBitAnd, NdBitOr, NdBitXor:
		n.Ty = ctype.LongTy
	case NdShl, NdShr:
		n.Ty = n.Lhs.Ty
	case NdPtrAdd, NdPtrSub:
		n.Ty = n.Lhs.Ty
	case NdPtrDiff:
		n.Ty = ctype.LongTy
	case NdAssign, NdAddEq, NdPtrAddEq, NdSubEq, NdPtrSubEq, NdMulEq, NdDivEq,
		NdShlEq, NdShrEq, NdBitAndEq, NdBitOrEq, NdBitXorEq:
		if n.Lhs.Ty != nil && n.Lhs.Ty.Kind == ctype.Array {
			n.Lhs.Tok.File.Fatal(n.Lhs.Tok.Pos, "not an lvalue")
		}
		n.Ty = n.Lhs.Ty
	case NdEq, NdNe, NdLt, NdLe, NdLogAnd, NdLogOr, NdNot:
		n.Ty = ctype.LongTy
	case NdBitNot, NdPreInc, NdPreDec, NdPostInc, NdPostDec:
		n.Ty = n.Lhs.Ty
	case NdCond:
		if n.Then.Ty.Kind == ctype.Void || n.Els.Ty.Kind == ctype.Void {
			n.Ty = ctype.VoidTy
		} else {
			n.Ty = n.Then.Ty
		}
	case NdComma:
		n.Ty = n.Rhs.Ty
	case NdMember:
		n.Ty = n.Member.Ty
	case NdAddr:
		if n.Lhs.Ty.Kind == ctype.Array {
			n.Ty = ctype.PointerTo(n.Lhs.Ty.Base)
		} else {
			n.Ty = ctype.PointerTo(n.Lhs.Ty)
		}
	case NdDeref:
		if n.Lhs.Ty.Base == nil {
			n.Tok.File.Fatal(n.Tok.Pos, "invalid pointer dereference")
		}
		if n.Lhs.Ty.Base.Kind == ctype.Void {
			n.Tok.File.Fatal(n.Tok.Pos, "dereferencing a void pointer")
		}
		if n.Lhs.Ty.Base.Kind == ctype.Struct && n.Lhs.Ty.Base.IsIncomplete {
			n.Tok.File.Fatal(n.Tok.Pos, "dereferencing a pointer to an incomplete struct")
		}
		n.Ty = n.Lhs.Ty.Base
	case NdVar:
		n.Ty = n.Var.Ty
	case NdFuncCall:
		if n.FuncType != nil {
			n.Ty = n.FuncType.ReturnTy
		} else {
			n.Ty = ctype.LongTy // implicit declaration: result typed long
		}
	case NdStmtExpr:
		last := n.Block
		for last != nil && last.Next != nil {
			last = last.Next
		}
		if last != nil && last.Kind == NdExprStmt {
			n.Ty = last.Lhs.Ty
		} else {
			n.Ty = ctype.VoidTy
		}
	default:
		// Statements (return, if, loops, blocks, labels, ...) yield no value.
		n.Ty = ctype.VoidTy
	}
}
