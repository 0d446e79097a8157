package codegen

import "github.com/asps1917/zxcc/internal/ast"

// stmt compiles n, leaving the machine stack exactly as it found it.
func (e *Emitter) stmt(n *ast.Node) {
	switch n.Kind {
	case ast.NdExprStmt:
		e.gen(n.Lhs)
		e.Instr2("add", "rsp", 8)

	case ast.NdReturn:
		if n.Lhs != nil {
			e.gen(n.Lhs)
			e.pop("rax")
		} else {
			e.Instr2("xor", "eax", "eax")
		}
		e.Instr1("jmp", ".L.return."+e.curFunc.Name)

	case ast.NdBlock:
		for s := n.Block; s != nil; s = s.Next {
			e.stmt(s)
		}

	case ast.NdNull:
		// no-op

	case ast.NdIf:
		e.genIf(n)

	case ast.NdWhile:
		beginLbl := e.nextLabel(".Lbegin")
		endLbl := e.nextLabel(".Lend")
		e.pushBreak(endLbl)
		e.pushContinue(beginLbl)
		e.Label(beginLbl)
		e.gen(n.Cond)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("je", endLbl)
		e.stmt(n.Then)
		e.Instr1("jmp", beginLbl)
		e.Label(endLbl)
		e.popBreak()
		e.popContinue()

	case ast.NdDo:
		beginLbl := e.nextLabel(".Lbegin")
		contLbl := e.nextLabel(".Lcontinue")
		endLbl := e.nextLabel(".Lend")
		e.pushBreak(endLbl)
		e.pushContinue(contLbl)
		e.Label(beginLbl)
		e.stmt(n.Then)
		e.Label(contLbl)
		e.gen(n.Cond)
		e.pop("rax")
		e.Instr2("cmp", "rax", 0)
		e.Instr1("jne", beginLbl)
		e.Label(endLbl)
		e.popBreak()
		e.popContinue()

	case ast.NdFor:
		beginLbl := e.nextLabel(".Lbegin")
		contLbl := e.nextLabel(".Lcontinue")
		endLbl := e.nextLabel(".Lend")
		if n.Init != nil {
			e.stmt(n.Init)
		}
		e.pushBreak(endLbl)
		e.pushContinue(contLbl)
		e.Label(beginLbl)
		if n.Cond != nil {
			e.gen(n.Cond)
			e.pop("rax")
			e.Instr2("cmp", "rax", 0)
			e.Instr1("je", endLbl)
		}
		e.stmt(n.Then)
		e.Label(contLbl)
		if n.Post != nil {
			e.gen(n.Post)
			e.Instr2("add", "rsp", 8)
		}
		e.Instr1("jmp", beginLbl)
		e.Label(endLbl)
		e.popBreak()
		e.popContinue()

	case ast.NdBreak:
		e.Instr1("jmp", e.breakLabel[len(e.breakLabel)-1])

	case ast.NdContinue:
		e.Instr1("jmp", e.continueLabel[len(e.continueLabel)-1])

	case ast.NdGoto:
		e.Instr1("jmp", ".Llabel."+e.curFunc.Name+"."+n.LabelName)

	case ast.NdLabel:
		e.Label(".Llabel." + e.curFunc.Name + "." + n.LabelName)
		e.stmt(n.Lhs)

	case ast.NdSwitch:
		e.genSwitch(n)

	case ast.NdCase:
		e.Label(n.CaseLabel)
		if n.Lhs != nil {
			e.stmt(n.Lhs)
		}

	default:
		n.Tok.File.Fatal(n.Tok.Pos, "internal error: cannot generate statement")
	}
}

func (e *Emitter) genIf(n *ast.Node) {
	endLbl := e.nextLabel(".Lend")
	e.gen(n.Cond)
	e.pop("rax")
	e.Instr2("cmp", "rax", 0)
	if n.Els != nil {
		elseLbl := e.nextLabel(".Lelse")
		e.Instr1("je", elseLbl)
		e.stmt(n.Then)
		e.Instr1("jmp", endLbl)
		e.Label(elseLbl)
		e.stmt(n.Els)
		e.Label(endLbl)
		return
	}
	e.Instr1("je", endLbl)
	e.stmt(n.Then)
	e.Label(endLbl)
}

// genSwitch emits the linear cmp/je chain over the case chain, then the
// body (reached only via a matching jump, never fallen into).
func (e *Emitter) genSwitch(n *ast.Node) {
	e.gen(n.Cond)
	e.pop("rax")
	for c := n.CaseNext; c != nil; c = c.CaseNext {
		e.Instr2("cmp", "rax", c.Val)
		e.Instr1("je", c.CaseLabel)
	}
	if n.DefaultCase != nil {
		e.Instr1("jmp", n.DefaultCase.CaseLabel)
	} else {
		e.Instr1("jmp", n.CaseEndLabel)
	}

	e.pushBreak(n.CaseEndLabel)
	e.stmt(n.Then)
	e.popBreak()
	e.Label(n.CaseEndLabel)
}

func (e *Emitter) pushBreak(label string) {
	e.breakLabel = append(e.breakLabel, label)
}

func (e *Emitter) popBreak() {
	e.breakLabel = e.breakLabel[:len(e.breakLabel)-1]
}

func (e *Emitter) pushContinue(label string) {
	e.continueLabel = append(e.continueLabel, label)
}

func (e *Emitter) popContinue() {
	e.continueLabel = e.continueLabel[:len(e.continueLabel)-1]
}
