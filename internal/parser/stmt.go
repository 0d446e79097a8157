package parser

import (
	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/token"
)

// stmt parses one statement and decorates it (and everything it
// reaches) with result types before returning.
func (p *Parser) stmt() *ast.Node {
	n := p.stmtNoType()
	ast.AddType(n)
	return n
}

func (p *Parser) stmtNoType() *ast.Node {
	tok := p.tok

	if p.consumeReturn() {
		var lhs *ast.Node
		if !p.at(";") {
			lhs = p.expr()
		}
		p.expect(";")
		return &ast.Node{Kind: ast.NdReturn, Lhs: lhs, Tok: tok}
	}

	if p.at("{") {
		return p.block()
	}

	if p.consume("if") {
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		then := p.stmt()
		var els *ast.Node
		if p.consume("else") {
			els = p.stmt()
		}
		return &ast.Node{Kind: ast.NdIf, Cond: cond, Then: then, Els: els, Tok: tok}
	}

	if p.consume("switch") {
		n := &ast.Node{Kind: ast.NdSwitch, Tok: tok, CaseEndLabel: p.newPaddedLabel(".Lbreak")}
		p.expect("(")
		n.Cond = p.expr()
		p.expect(")")

		outer := p.curSwitch
		p.curSwitch = n
		n.Then = p.stmt()
		p.curSwitch = outer
		return n
	}

	if p.consume("case") {
		if p.curSwitch == nil {
			p.fatal("stray case")
		}
		val := p.constExpr()
		p.expect(":")
		n := &ast.Node{Kind: ast.NdCase, Val: val, Tok: tok, CaseLabel: p.newPlainLabel(".Lcase")}
		n.Lhs = p.stmt()
		n.CaseNext = p.curSwitch.CaseNext
		p.curSwitch.CaseNext = n
		return n
	}

	if p.consume("default") {
		if p.curSwitch == nil {
			p.fatal("stray default")
		}
		p.expect(":")
		n := &ast.Node{Kind: ast.NdCase, Tok: tok, CaseLabel: p.newPlainLabel(".Ldefault")}
		n.Lhs = p.stmt()
		p.curSwitch.DefaultCase = n
		return n
	}

	if p.consume("while") {
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		body := p.stmt()
		return &ast.Node{Kind: ast.NdWhile, Cond: cond, Then: body, Tok: tok}
	}

	if p.consume("do") {
		body := p.stmt()
		p.expect("while")
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		p.expect(";")
		return &ast.Node{Kind: ast.NdDo, Cond: cond, Then: body, Tok: tok}
	}

	if p.consume("for") {
		snap := p.enterScope()
		defer p.leaveScope(snap)

		n := &ast.Node{Kind: ast.NdFor, Tok: tok}
		p.expect("(")
		if p.isTypename() {
			n.Init = p.declaration()
		} else if !p.at(";") {
			n.Init = &ast.Node{Kind: ast.NdExprStmt, Lhs: p.expr(), Tok: p.tok}
			p.expect(";")
		} else {
			p.expect(";")
		}
		if !p.at(";") {
			n.Cond = p.expr()
		}
		p.expect(";")
		if !p.at(")") {
			n.Post = p.expr()
		}
		p.expect(")")
		n.Then = p.stmt()
		return n
	}

	if p.consume("break") {
		p.expect(";")
		return &ast.Node{Kind: ast.NdBreak, Tok: tok}
	}

	if p.consume("continue") {
		p.expect(";")
		return &ast.Node{Kind: ast.NdContinue, Tok: tok}
	}

	if p.consume("goto") {
		name := p.expectIdent()
		p.expect(";")
		return &ast.Node{Kind: ast.NdGoto, LabelName: name, Tok: tok}
	}

	if p.tok.Kind == token.Ident {
		// lookahead for "ident ':'" without consuming on mismatch
		if p.tok.Next != nil && p.tok.Next.Is(":") {
			name := p.tok.Lexeme
			p.advance()
			p.advance()
			return &ast.Node{Kind: ast.NdLabel, LabelName: name, Lhs: p.stmt(), Tok: tok}
		}
	}

	if p.consume(";") {
		return &ast.Node{Kind: ast.NdNull, Tok: tok}
	}

	if p.isTypename() {
		return p.declaration()
	}

	n := &ast.Node{Kind: ast.NdExprStmt, Lhs: p.expr(), Tok: tok}
	p.expect(";")
	return n
}

// block parses `{ stmt* }`, opening and closing a scope around it.
func (p *Parser) block() *ast.Node {
	tok := p.tok
	p.expect("{")
	snap := p.enterScope()
	defer p.leaveScope(snap)

	head := &ast.Node{}
	cur := head
	for !p.consume("}") {
		cur.Next = p.stmt()
		cur = cur.Next
	}
	return &ast.Node{Kind: ast.NdBlock, Block: head.Next, Tok: tok}
}
