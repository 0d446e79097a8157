package codegen

import (
	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/ctype"
)

// gen compiles n and leaves exactly one 8-byte value on top of the
// machine stack.
func (e *Emitter) gen(n *ast.Node) {
	switch n.Kind {
	case ast.NdNum:
		e.Instr2("mov", "rax", n.Val)
		e.push()

	case ast.NdVar, ast.NdMember:
		e.genAddr(n)
		if n.Ty.Kind != ctype.Array && n.Ty.Kind != ctype.Struct {
			e.load(n.Ty)
		}

	case ast.NdDeref:
		e.gen(n.Lhs)
		if n.Ty.Kind != ctype.Array && n.Ty.Kind != ctype.Struct {
			e.load(n.Ty)
		}

	case ast.NdAddr:
		e.genAddr(n.Lhs)

	case ast.NdAssign:
		e.genAddr(n.Lhs)
		e.gen(n.Rhs)
		e.store(n.Ty)

	case ast.NdAddEq, ast.NdSubEq, ast.NdMulEq, ast.NdDivEq, ast.NdShlEq, ast.NdShrEq,
		ast.NdBitAndEq, ast.NdBitOrEq, ast.NdBitXorEq, ast.NdPtrAddEq, ast.NdPtrSubEq:
		e.compoundAssign(n)

	case ast.NdPreInc:
		e.incDec(n.Lhs, 1, false)
	case ast.NdPreDec:
		e.incDec(n.Lhs, -1, false)
	case ast.NdPostInc:
		e.incDec(n.Lhs, 1, true)
	case ast.NdPostDec:
		e.incDec(n.Lhs, -1, true)

	case ast.NdAdd:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.binOp("add")
	case ast.NdSub:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.binOp("sub")
	case ast.NdMul:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.binOp("imul")
	case ast.NdDiv:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.divOp()
	case ast.NdBitAnd:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.binOp("and")
	case ast.NdBitOr:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.binOp("or")
	case ast.NdBitXor:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.binOp("xor")
	case ast.NdShl:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.shiftOp("shl")
	case ast.NdShr:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.shiftOp("sar")

	case ast.NdPtrAdd:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.ptrScaleOp(n.Ty.Base.Size, true)
	case ast.NdPtrSub:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.ptrScaleOp(n.Ty.Base.Size, false)
	case ast.NdPtrDiff:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.pop("rdi")
		e.pop("rax")
		e.Instr2("sub", "rax", "rdi")
		e.Instr0("cqo")
		e.Instr2("mov", "rdi", n.Lhs.Ty.Base.Size)
		e.Instr1("idiv", "rdi")
		e.push()

	case ast.NdEq, ast.NdNe, ast.NdLt, ast.NdLe:
		e.gen(n.Lhs)
		e.gen(n.Rhs)
		e.pop("rdi")
		e.pop("rax")
		e.Instr2("cmp", "rax", "rdi")
		e.Instr1(setOp(n.Kind), "al")
		e.Instr2("movzx", "rax", "al")
		e.push()

	case ast.NdNot:
		e.gen(n.Lhs)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("sete", "al")
		e.Instr2("movzx", "rax", "al")
		e.push()

	case ast.NdBitNot:
		e.gen(n.Lhs)
		e.pop("rax")
		e.Instr1("not", "rax")
		e.push()

	case ast.NdLogAnd:
		falseLbl := e.nextLabelN(".L.false.")
		endLbl := e.nextLabel(".Lend")
		e.gen(n.Lhs)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("je", falseLbl)
		e.gen(n.Rhs)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("je", falseLbl)
		e.Instr2("mov", "rax", 1)
		e.Instr1("jmp", endLbl)
		e.Label(falseLbl)
		e.Instr2("mov", "rax", 0)
		e.Label(endLbl)
		e.push()

	case ast.NdLogOr:
		trueLbl := e.nextLabelN(".L.true.")
		endLbl := e.nextLabel(".Lend")
		e.gen(n.Lhs)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("jne", trueLbl)
		e.gen(n.Rhs)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("jne", trueLbl)
		e.Instr2("mov", "rax", 0)
		e.Instr1("jmp", endLbl)
		e.Label(trueLbl)
		e.Instr2("mov", "rax", 1)
		e.Label(endLbl)
		e.push()

	case ast.NdCond:
		elseLbl := e.nextLabel(".Lelse")
		endLbl := e.nextLabel(".Lend")
		e.gen(n.Cond)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("je", elseLbl)
		e.gen(n.Then)
		e.Instr1("jmp", endLbl)
		e.Label(elseLbl)
		e.gen(n.Els)
		e.Label(endLbl)

	case ast.NdComma:
		e.gen(n.Lhs)
		e.pop("rax")
		e.gen(n.Rhs)

	case ast.NdCast:
		e.gen(n.Lhs)
		e.truncate(n.Ty)

	case ast.NdFuncCall:
		e.call(n)

	case ast.NdStmtExpr:
		e.stmtExprValue(n)

	default:
		n.Tok.File.Fatal(n.Tok.Pos, "internal error: cannot generate expression")
	}
}

func setOp(kind ast.Kind) string {
	switch kind {
	case ast.NdEq:
		return "sete"
	case ast.NdNe:
		return "setne"
	case ast.NdLt:
		return "setl"
	default:
		return "setle"
	}
}

// genAddr produces the address of an lvalue; only ND_VAR, ND_DEREF, and
// ND_MEMBER qualify.
func (e *Emitter) genAddr(n *ast.Node) {
	switch n.Kind {
	case ast.NdVar:
		if n.Var.IsLocal {
			e.Instr2("lea", "rax", slot(n.Var.Offset))
		} else {
			e.Instr2("lea", "rax", "[rip+"+n.Var.Name+"]")
		}
		e.push()
		return
	case ast.NdDeref:
		e.gen(n.Lhs)
		return
	case ast.NdMember:
		e.genAddr(n.Lhs)
		e.pop("rax")
		e.Instr2("add", "rax", n.Member.Offset)
		e.push()
		return
	}
	n.Tok.File.Fatal(n.Tok.Pos, "not an lvalue")
}

// --- stack-discipline primitives ------------------------------------------

// dup duplicates the top-of-stack value.
func (e *Emitter) dup() {
	e.pop("rax")
	e.push()
	e.push()
}

// load pops an address and pushes the value stored there, sized and
// sign-extended per ty.
func (e *Emitter) load(ty *ctype.Type) {
	e.pop("rax")
	switch {
	case ty.Size == 1 && ty.Kind == ctype.Bool:
		e.Instr2("movzx", "rax", "byte ptr [rax]")
	case ty.Size == 1:
		e.Instr2("movsx", "rax", "byte ptr [rax]")
	case ty.Size == 2:
		e.Instr2("movsx", "rax", "word ptr [rax]")
	case ty.Size == 4:
		e.Instr2("movsxd", "rax", "dword ptr [rax]")
	default:
		e.Instr2("mov", "rax", "[rax]")
	}
	e.push()
}

// store pops a value then an address, writes the value at the address
// sized per ty, and pushes the (possibly bool-normalized) value back so
// an assignment expression yields it.
func (e *Emitter) store(ty *ctype.Type) {
	e.pop("rdi")
	e.pop("rax")
	if ty.Kind == ctype.Bool {
		e.Instr2("cmp", "rdi", 0)
		e.Instr1("setne", "dil")
		e.Instr2("movzx", "rdi", "dil")
	}
	switch ty.Size {
	case 1:
		e.Instr2("mov", "byte ptr [rax]", "dil")
	case 2:
		e.Instr2("mov", "word ptr [rax]", "di")
	case 4:
		e.Instr2("mov", "dword ptr [rax]", "edi")
	default:
		e.Instr2("mov", "[rax]", "rdi")
	}
	e.Instr1("push", "rdi")
}

// truncate pops a value and pushes it narrowed/sign-extended to ty, for
// explicit casts.
func (e *Emitter) truncate(ty *ctype.Type) {
	e.pop("rax")
	if ty.Kind == ctype.Bool {
		e.Instr2("cmp", "rax", 0)
		e.Instr1("setne", "al")
		e.Instr2("movzx", "eax", "al")
		e.push()
		return
	}
	switch ty.Size {
	case 1:
		e.Instr2("movsx", "rax", "al")
	case 2:
		e.Instr2("movsx", "rax", "ax")
	case 4:
		e.Instr2("movsxd", "rax", "eax")
	}
	e.push()
}

func (e *Emitter) binOp(op string) {
	e.pop("rdi")
	e.pop("rax")
	e.Instr2(op, "rax", "rdi")
	e.push()
}

func (e *Emitter) divOp() {
	e.pop("rdi")
	e.pop("rax")
	e.Instr0("cqo")
	e.Instr1("idiv", "rdi")
	e.push()
}

func (e *Emitter) shiftOp(op string) {
	e.pop("rdi")
	e.pop("rax")
	e.Instr2("mov", "cl", "dil")
	e.Instr2(op, "rax", "cl")
	e.push()
}

func (e *Emitter) ptrScaleOp(size int, isAdd bool) {
	e.pop("rdi")
	e.pop("rax")
	e.Instr2("imul", "rdi", size)
	if isAdd {
		e.Instr2("add", "rax", "rdi")
	} else {
		e.Instr2("sub", "rax", "rdi")
	}
	e.push()
}

// compoundAssign implements `lhs op= rhs`: duplicate the lvalue, load
// the current value, combine with rhs, store the result back.
func (e *Emitter) compoundAssign(n *ast.Node) {
	e.genAddr(n.Lhs)
	e.dup()
	e.load(n.Lhs.Ty)
	e.gen(n.Rhs)

	switch n.Kind {
	case ast.NdAddEq:
		e.binOp("add")
	case ast.NdSubEq:
		e.binOp("sub")
	case ast.NdMulEq:
		e.binOp("imul")
	case ast.NdDivEq:
		e.divOp()
	case ast.NdShlEq:
		e.shiftOp("shl")
	case ast.NdShrEq:
		e.shiftOp("sar")
	case ast.NdBitAndEq:
		e.binOp("and")
	case ast.NdBitOrEq:
		e.binOp("or")
	case ast.NdBitXorEq:
		e.binOp("xor")
	case ast.NdPtrAddEq:
		e.ptrScaleOp(n.Lhs.Ty.Base.Size, true)
	case ast.NdPtrSubEq:
		e.ptrScaleOp(n.Lhs.Ty.Base.Size, false)
	}
	e.store(n.Lhs.Ty)
}

// incDec implements prefix/postfix ++/--. Prefix yields the updated
// value (the natural result of genAddr+load+add+store); postfix stashes
// the pre-update value in r11 across the store so it can restore it as
// the final result.
func (e *Emitter) incDec(lhs *ast.Node, sign int64, post bool) {
	delta := int64(1)
	if ctype.IsPointerLike(lhs.Ty) {
		delta = int64(lhs.Ty.Base.Size)
	}
	delta *= sign

	e.genAddr(lhs)
	e.dup()
	e.load(lhs.Ty)

	if post {
		e.pop("r11")
		e.Instr2("mov", "rax", "r11")
		e.Instr2("add", "rax", delta)
		e.push()
		e.store(lhs.Ty)
		e.pop("rax")
		e.Instr2("mov", "rax", "r11")
		e.push()
		return
	}

	e.pop("rax")
	e.Instr2("add", "rax", delta)
	e.push()
	e.store(lhs.Ty)
}

// --- calls -----------------------------------------------------------------

func (e *Emitter) call(n *ast.Node) {
	if n.FuncName == "__builtin_va_start" {
		e.vaStart(n)
		return
	}

	var args []*ast.Node
	for a := n.Args; a != nil; a = a.Next {
		args = append(args, a)
	}
	for _, a := range args {
		e.gen(a)
	}
	for i := len(args) - 1; i >= 0; i-- {
		e.pop(argReg8[i])
	}

	e.Instr2("mov", "rax", "rsp")
	e.Instr2("and", "rax", 15)
	alignedLbl := e.nextLabelN(".L.call.")
	endLbl := e.nextLabelN(".L.end.")
	e.Instr2("cmp", "rax", 0)
	e.Instr1("je", alignedLbl)
	e.Instr2("sub", "rsp", 8)
	e.Instr2("mov", "rax", 0)
	e.Instr1("call", n.FuncName)
	e.Instr2("add", "rsp", 8)
	e.Instr1("jmp", endLbl)
	e.Label(alignedLbl)
	e.Instr2("mov", "rax", 0)
	e.Instr1("call", n.FuncName)
	e.Label(endLbl)

	if n.Ty != nil && n.Ty.Kind == ctype.Bool {
		e.Instr2("movzx", "rax", "al")
	}
	e.push()
}

// vaStart writes the four-field va_list header into the address the
// single argument evaluates to, reading from the save area the
// variadic prologue (emitVarargsSaveArea) laid down.
func (e *Emitter) vaStart(n *ast.Node) {
	e.gen(n.Args)
	e.pop("rax")

	gpOffset := len(e.curFunc.Params) * 8
	if gpOffset > 48 {
		gpOffset = 48
	}
	e.Instr2("mov", "dword ptr [rax]", gpOffset)
	e.Instr2("mov", "dword ptr [rax+4]", 0)
	e.Instr2("lea", "rdi", "[rbp+16]")
	e.Instr2("mov", "[rax+8]", "rdi")
	e.Instr2("lea", "rdi", slotAt(e.curFunc.VaArea.Offset, 8))
	e.Instr2("mov", "[rax+16]", "rdi")
	e.Instr2("mov", "rax", 0)
	e.push()
}

// stmtExprValue compiles the statements of a `({ ... })` block, leaving
// its last expression-statement's value on the stack unpopped; a block
// that does not end in an expression-statement yields 0.
func (e *Emitter) stmtExprValue(n *ast.Node) {
	for s := n.Block; s != nil; s = s.Next {
		if s.Next == nil && s.Kind == ast.NdExprStmt {
			e.gen(s.Lhs)
			return
		}
		e.stmt(s)
	}
	e.Instr2("mov", "rax", 0)
	e.push()
}
