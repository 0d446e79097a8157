package ast

import (
	"testing"

	"github.com/asps1917/zxcc/internal/ctype"
)

func TestAddTypeArithmeticIsLong(t *testing.T) {
	lhs := &Node{Kind: NdVar, Var: &Var{Name: "c", Ty: ctype.CharTy}}
	rhs := &Node{Kind: NdVar, Var: &Var{Name: "d", Ty: ctype.CharTy}}
	n := &Node{Kind: NdAdd, Lhs: lhs, Rhs: rhs}
	AddType(n)
	if n.Ty != ctype.LongTy {
		t.Fatalf("NdAdd type = %v, want %v", n.Ty, ctype.LongTy)
	}
}

func TestAddTypeComparisonIsLong(t *testing.T) {
	n := &Node{Kind: NdEq, Lhs: NewNum(1, nil), Rhs: NewNum(2, nil)}
	AddType(n)
	if n.Ty != ctype.LongTy {
		t.Fatalf("NdEq type = %v, want long", n.Ty)
	}
}

func TestAddTypeIsIdempotent(t *testing.T) {
	n := NewNum(42, nil)
	want := n.Ty
	AddType(n)
	if n.Ty != want {
		t.Fatalf("AddType overwrote an already-typed node: got %v want %v", n.Ty, want)
	}
}

func TestAddTypeAddrOfArrayDecaysToPointer(t *testing.T) {
	arrVar := &Var{Name: "a", Ty: ctype.ArrayOf(ctype.IntTy, 4)}
	ref := &Node{Kind: NdVar, Var: arrVar}
	addr := &Node{Kind: NdAddr, Lhs: ref}
	AddType(addr)
	if addr.Ty.Kind != ctype.Ptr || addr.Ty.Base != ctype.IntTy {
		t.Fatalf("&array type = %v, want *int", addr.Ty)
	}
}

func TestAddTypeDerefOfIntPointer(t *testing.T) {
	ptrVar := &Var{Name: "p", Ty: ctype.PointerTo(ctype.IntTy)}
	ref := &Node{Kind: NdVar, Var: ptrVar}
	deref := &Node{Kind: NdDeref, Lhs: ref, Tok: nil}
	AddType(deref)
	if deref.Ty != ctype.IntTy {
		t.Fatalf("*p type = %v, want int", deref.Ty)
	}
}

func TestAddTypeCondTakesThenBranchType(t *testing.T) {
	n := &Node{
		Kind: NdCond,
		Cond: NewNum(1, nil),
		Then: NewNum(2, nil),
		Els:  NewNum(3, nil),
	}
	AddType(n)
	if n.Ty != ctype.LongTy {
		t.Fatalf("cond type = %v, want long", n.Ty)
	}
}

func TestAddTypeStmtExprTakesLastExprStmt(t *testing.T) {
	inner := NewNum(7, nil)
	exprStmt := &Node{Kind: NdExprStmt, Lhs: inner}
	se := &Node{Kind: NdStmtExpr, Block: exprStmt}
	AddType(se)
	if se.Ty != ctype.LongTy {
		t.Fatalf("stmt-expr type = %v, want long", se.Ty)
	}
}

func TestAddTypeEmptyStmtExprIsVoid(t *testing.T) {
	se := &Node{Kind: NdStmtExpr}
	AddType(se)
	if se.Ty != ctype.VoidTy {
		t.Fatalf("empty stmt-expr type = %v, want void", se.Ty)
	}
}
