package parser

import (
	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/ctype"
	"github.com/asps1917/zxcc/internal/token"
)

func newBinary(kind ast.Kind, lhs, rhs *ast.Node, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: kind, Lhs: lhs, Rhs: rhs, Tok: tok}
}

func newUnary(kind ast.Kind, lhs *ast.Node, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: kind, Lhs: lhs, Tok: tok}
}

// newAdd dispatches `+` on operand shape: integer+integer is plain
// arithmetic; pointer/array with integer becomes ND_PTR_ADD (the code
// generator scales the integer operand by the pointee size); num+ptr
// is canonicalized to ptr+num first.
func newAdd(lhs, rhs *ast.Node, tok *token.Token) *ast.Node {
	ast.AddType(lhs)
	ast.AddType(rhs)

	if ctype.IsInteger(lhs.Ty) && ctype.IsInteger(rhs.Ty) {
		return newBinary(ast.NdAdd, lhs, rhs, tok)
	}
	if ctype.IsPointerLike(lhs.Ty) && ctype.IsPointerLike(rhs.Ty) {
		tok.File.Fatal(tok.Pos, "invalid operands")
	}
	if !ctype.IsPointerLike(lhs.Ty) && ctype.IsPointerLike(rhs.Ty) {
		lhs, rhs = rhs, lhs
	}
	if ctype.IsPointerLike(lhs.Ty) && ctype.IsInteger(rhs.Ty) {
		return newBinary(ast.NdPtrAdd, lhs, rhs, tok)
	}
	tok.File.Fatal(tok.Pos, "invalid operands")
	panic("unreachable")
}

// newSub mirrors newAdd: ptr-int scales and stays a pointer; ptr-ptr of
// a common base yields the element distance (ND_PTR_DIFF, typed long).
func newSub(lhs, rhs *ast.Node, tok *token.Token) *ast.Node {
	ast.AddType(lhs)
	ast.AddType(rhs)

	if ctype.IsInteger(lhs.Ty) && ctype.IsInteger(rhs.Ty) {
		return newBinary(ast.NdSub, lhs, rhs, tok)
	}
	if ctype.IsPointerLike(lhs.Ty) && ctype.IsInteger(rhs.Ty) {
		return newBinary(ast.NdPtrSub, lhs, rhs, tok)
	}
	if ctype.IsPointerLike(lhs.Ty) && ctype.IsPointerLike(rhs.Ty) {
		return newBinary(ast.NdPtrDiff, lhs, rhs, tok)
	}
	tok.File.Fatal(tok.Pos, "invalid operands")
	panic("unreachable")
}

// expr = comma
func (p *Parser) expr() *ast.Node {
	n := p.assign()
	for p.at(",") {
		tok := p.tok
		p.advance()
		n = newBinary(ast.NdComma, n, p.assign(), tok)
	}
	return n
}

// assign = conditional (assign-op assign)?, right-associative.
func (p *Parser) assign() *ast.Node {
	n := p.conditional()

	tok := p.tok
	var kind ast.Kind
	switch {
	case p.consume("="):
		kind = ast.NdAssign
	case p.consume("+="):
		kind = ast.NdAddEq
	case p.consume("-="):
		kind = ast.NdSubEq
	case p.consume("*="):
		kind = ast.NdMulEq
	case p.consume("/="):
		kind = ast.NdDivEq
	case p.consume("<<="):
		kind = ast.NdShlEq
	case p.consume(">>="):
		kind = ast.NdShrEq
	case p.consume("&="):
		kind = ast.NdBitAndEq
	case p.consume("|="):
		kind = ast.NdBitOrEq
	case p.consume("^="):
		kind = ast.NdBitXorEq
	default:
		return n
	}

	rhs := p.assign()
	if kind == ast.NdAddEq || kind == ast.NdSubEq {
		ast.AddType(n)
		if ctype.IsPointerLike(n.Ty) {
			if kind == ast.NdAddEq {
				kind = ast.NdPtrAddEq
			} else {
				kind = ast.NdPtrSubEq
			}
		}
	}
	return newBinary(kind, n, rhs, tok)
}

// conditional = logor ("?" expr ":" conditional)?
func (p *Parser) conditional() *ast.Node {
	cond := p.logOr()
	if !p.consume("?") {
		return cond
	}
	tok := p.tok
	then := p.expr()
	p.expect(":")
	els := p.conditional()
	return &ast.Node{Kind: ast.NdCond, Cond: cond, Then: then, Els: els, Tok: tok}
}

func (p *Parser) logOr() *ast.Node {
	n := p.logAnd()
	for p.at("||") {
		tok := p.tok
		p.advance()
		n = newBinary(ast.NdLogOr, n, p.logAnd(), tok)
	}
	return n
}

func (p *Parser) logAnd() *ast.Node {
	n := p.bitOr()
	for p.at("&&") {
		tok := p.tok
		p.advance()
		n = newBinary(ast.NdLogAnd, n, p.bitOr(), tok)
	}
	return n
}

func (p *Parser) bitOr() *ast.Node {
	n := p.bitXor()
	for p.at("|") {
		tok := p.tok
		p.advance()
		n = newBinary(ast.NdBitOr, n, p.bitXor(), tok)
	}
	return n
}

func (p *Parser) bitXor() *ast.Node {
	n := p.bitAnd()
	for p.at("^") {
		tok := p.tok
		p.advance()
		n = newBinary(ast.NdBitXor, n, p.bitAnd(), tok)
	}
	return n
}

func (p *Parser) bitAnd() *ast.Node {
	n := p.equality()
	for p.at("&") {
		tok := p.tok
		p.advance()
		n = newBinary(ast.NdBitAnd, n, p.equality(), tok)
	}
	return n
}

func (p *Parser) equality() *ast.Node {
	n := p.relational()
	for {
		tok := p.tok
		switch {
		case p.consume("=="):
			n = newBinary(ast.NdEq, n, p.relational(), tok)
		case p.consume("!="):
			n = newBinary(ast.NdNe, n, p.relational(), tok)
		default:
			return n
		}
	}
}

// relational normalizes `>`/`>=` by swapping operands into `<`/`<=`.
func (p *Parser) relational() *ast.Node {
	n := p.shift()
	for {
		tok := p.tok
		switch {
		case p.consume("<"):
			n = newBinary(ast.NdLt, n, p.shift(), tok)
		case p.consume("<="):
			n = newBinary(ast.NdLe, n, p.shift(), tok)
		case p.consume(">"):
			n = newBinary(ast.NdLt, p.shift(), n, tok)
		case p.consume(">="):
			n = newBinary(ast.NdLe, p.shift(), n, tok)
		default:
			return n
		}
	}
}

func (p *Parser) shift() *ast.Node {
	n := p.additive()
	for {
		tok := p.tok
		switch {
		case p.consume("<<"):
			n = newBinary(ast.NdShl, n, p.additive(), tok)
		case p.consume(">>"):
			n = newBinary(ast.NdShr, n, p.additive(), tok)
		default:
			return n
		}
	}
}

func (p *Parser) additive() *ast.Node {
	n := p.multiplicative()
	for {
		tok := p.tok
		switch {
		case p.consume("+"):
			n = newAdd(n, p.multiplicative(), tok)
		case p.consume("-"):
			n = newSub(n, p.multiplicative(), tok)
		default:
			return n
		}
	}
}

func (p *Parser) multiplicative() *ast.Node {
	n := p.cast()
	for {
		tok := p.tok
		switch {
		case p.consume("*"):
			n = newBinary(ast.NdMul, n, p.cast(), tok)
		case p.consume("/"):
			n = newBinary(ast.NdDiv, n, p.cast(), tok)
		default:
			return n
		}
	}
}

// cast = "(" type-name ")" cast | "(" type-name ")" "{" initializer "}" | unary
func (p *Parser) cast() *ast.Node {
	if p.at("(") {
		snap := p.tok
		tok := p.tok
		p.advance()
		if p.isTypename() {
			ty := p.typeName()
			p.expect(")")
			if p.at("{") {
				return p.compoundLiteral(ty, tok)
			}
			operand := p.cast()
			ast.AddType(operand)
			return &ast.Node{Kind: ast.NdCast, Lhs: operand, Ty: ty, Tok: tok}
		}
		p.tok = snap
	}
	return p.unary()
}

// unary = ("+" | "-" | "*" | "&" | "!" | "~") cast | ("++" | "--") unary | postfix
func (p *Parser) unary() *ast.Node {
	tok := p.tok
	switch {
	case p.consume("+"):
		return p.cast()
	case p.consume("-"):
		return newBinary(ast.NdSub, ast.NewNum(0, tok), p.cast(), tok)
	case p.consume("&"):
		return newUnary(ast.NdAddr, p.cast(), tok)
	case p.consume("*"):
		return newUnary(ast.NdDeref, p.cast(), tok)
	case p.consume("!"):
		return newUnary(ast.NdNot, p.cast(), tok)
	case p.consume("~"):
		return newUnary(ast.NdBitNot, p.cast(), tok)
	case p.consume("++"):
		return newUnary(ast.NdPreInc, p.unary(), tok)
	case p.consume("--"):
		return newUnary(ast.NdPreDec, p.unary(), tok)
	}
	return p.postfix()
}

// postfix = primary ("[" expr "]" | "." ident | "->" ident | "++" | "--")*
func (p *Parser) postfix() *ast.Node {
	n := p.primary()
	for {
		tok := p.tok
		switch {
		case p.consume("["):
			idx := p.expr()
			p.expect("]")
			n = newUnary(ast.NdDeref, newAdd(n, idx, tok), tok)
		case p.consume("."):
			n = p.structRef(n, tok)
		case p.consume("->"):
			n = p.structRef(newUnary(ast.NdDeref, n, tok), tok)
		case p.consume("++"):
			n = newUnary(ast.NdPostInc, n, tok)
		case p.consume("--"):
			n = newUnary(ast.NdPostDec, n, tok)
		default:
			return n
		}
	}
}

func (p *Parser) structRef(lhs *ast.Node, tok *token.Token) *ast.Node {
	ast.AddType(lhs)
	if lhs.Ty.Kind != ctype.Struct {
		tok.File.Fatal(tok.Pos, "not a struct")
	}
	name := p.expectIdent()
	m := lhs.Ty.FindMember(name)
	if m == nil {
		tok.File.Fatal(tok.Pos, "no such member: %s", name)
	}
	return &ast.Node{Kind: ast.NdMember, Lhs: lhs, Member: m, Tok: tok}
}

// funcArgs = "(" (assign ("," assign)*)? ")"
func (p *Parser) funcArgs() *ast.Node {
	p.expect("(")
	if p.consume(")") {
		return nil
	}
	head := p.assign()
	cur := head
	count := 1
	for p.consume(",") {
		cur.Next = p.assign()
		cur = cur.Next
		count++
	}
	if count > 6 {
		p.fatal("too many arguments (max 6)")
	}
	p.expect(")")
	return head
}

// primary = "(" "{" stmt-expr-tail | "(" expr ")" | "sizeof" ... | "_Alignof" ...
//         | ident func-args? | str | num
func (p *Parser) primary() *ast.Node {
	tok := p.tok

	if p.consume("(") {
		if p.at("{") {
			return p.stmtExpr(tok)
		}
		n := p.expr()
		p.expect(")")
		return n
	}

	if p.consume("sizeof") {
		if p.at("(") {
			snap := p.tok
			p.advance()
			if p.isTypename() {
				ty := p.typeName()
				p.expect(")")
				if ty.IsIncomplete {
					tok.File.Fatal(tok.Pos, "sizeof applied to incomplete type")
				}
				return ast.NewNum(int64(ty.Size), tok)
			}
			p.tok = snap
		}
		n := p.unary()
		ast.AddType(n)
		if n.Ty.IsIncomplete {
			tok.File.Fatal(tok.Pos, "sizeof applied to incomplete type")
		}
		return ast.NewNum(int64(n.Ty.Size), tok)
	}

	if p.consume("_Alignof") {
		p.expect("(")
		ty := p.typeName()
		p.expect(")")
		if ty.IsIncomplete {
			tok.File.Fatal(tok.Pos, "_Alignof applied to incomplete type")
		}
		return ast.NewNum(int64(ty.Align), tok)
	}

	if name, ok := p.consumeIdent(); ok {
		if p.at("(") {
			return p.funcCall(name, tok)
		}
		entry := p.findVar(name)
		if entry == nil || entry.Kind == scopeTypedef {
			tok.File.Fatal(tok.Pos, "undefined variable: %s", name)
		}
		if entry.Kind == scopeEnum {
			return ast.NewNum(entry.EnumVal, tok)
		}
		return &ast.Node{Kind: ast.NdVar, Var: entry.Var, Tok: tok}
	}

	if p.tok.Kind == token.Str {
		v := p.newAnonGVar(ctype.ArrayOf(ctype.CharTy, p.tok.StrLen))
		v.Init = stringInit(p.tok.Str)
		v.IsStringLit = true
		p.advance()
		return &ast.Node{Kind: ast.NdVar, Var: v, Tok: tok}
	}

	return ast.NewNum(p.expectNumber(), tok)
}

func stringInit(bytes []byte) []*ast.InitRecord {
	recs := make([]*ast.InitRecord, len(bytes))
	for i, b := range bytes {
		recs[i] = &ast.InitRecord{Sz: 1, Val: int64(b)}
	}
	return recs
}

// funcCall parses the argument list for a call to name. An undeclared
// callee is an implicit declaration: a warning, not a fatal error.
func (p *Parser) funcCall(name string, tok *token.Token) *ast.Node {
	args := p.funcArgs()
	entry := p.findVar(name)
	var fty *ctype.Type
	if entry != nil && entry.Kind == scopeVar && entry.Var.Ty.Kind == ctype.Func {
		fty = entry.Var.Ty
	} else if name != "__builtin_va_start" {
		tok.File.Warn(tok.Pos, "implicit declaration of function '%s'", name)
	}
	return &ast.Node{Kind: ast.NdFuncCall, FuncName: name, FuncType: fty, Args: args, Tok: tok}
}

// stmtExpr parses the GNU statement-expression `({ stmt... })`: the
// opening "(" was already consumed by primary.
func (p *Parser) stmtExpr(tok *token.Token) *ast.Node {
	snap := p.enterScope()
	defer p.leaveScope(snap)

	p.expect("{")
	head := &ast.Node{}
	cur := head
	for !p.consume("}") {
		cur.Next = p.stmt()
		cur = cur.Next
	}
	p.expect(")")
	return &ast.Node{Kind: ast.NdStmtExpr, Block: head.Next, Tok: tok}
}
