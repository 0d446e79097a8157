package parser

import (
	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/ctype"
	"github.com/asps1917/zxcc/internal/token"
)

// program = (function | global-var | struct/enum/typedef-only decl)*
func (p *Parser) program() *ast.Program {
	for !p.atEOF() {
		p.topLevel()
	}
	return &ast.Program{Globals: p.globals, Funcs: p.funcs}
}

// topLevel disambiguates a function definition/prototype from a global
// variable declaration without backtracking: it parses the shared
// basetype+declarator prefix once, then looks at what follows.
func (p *Parser) topLevel() {
	spec := p.basetype()

	if spec.IsTypedef {
		first := true
		for first || p.consume(",") {
			first = false
			ty, name := p.declarator(spec.Ty)
			p.pushTypedef(name, ty)
		}
		p.expect(";")
		return
	}

	// A bare `struct S { ... };` or `enum E { ... };` with no declarator.
	if p.consume(";") {
		return
	}

	ty, name := p.declarator(spec.Ty)

	if p.at("(") {
		p.function(spec, ty, name)
		return
	}

	first := true
	for first || p.consume(",") {
		if !first {
			ty, name = p.declarator(spec.Ty)
		}
		first = false
		v := p.newGVar(name, ty, true)
		v.IsStatic = spec.IsStatic
		if p.consume("=") {
			p.globalInitializer(v, ty)
		}
	}
	p.expect(";")
}

func (p *Parser) function(spec *declSpec, ty *ctype.Type, name string) {
	p.locals = nil
	fn := &ast.Function{Name: name, IsStatic: spec.IsStatic}

	// Register the function's own type before its body so recursive
	// calls resolve, and before opening the parameter scope so the
	// binding isn't wiped out when that scope closes.
	p.newGVar(name, ctype.FuncType(ty), false)

	p.expect("(")
	snap := p.enterScope()
	defer p.leaveScope(snap)

	params, variadic := p.paramList()
	fn.Params = params
	fn.HasVarargs = variadic
	if variadic {
		va := &ast.Var{Name: "__va_area", Ty: ctype.ArrayOf(ctype.CharTy, 56), IsLocal: true}
		p.locals = append(p.locals, va)
		fn.VaArea = va
	}

	if p.consume(";") {
		return // prototype only
	}

	outerFunc := p.curFunc
	p.curFunc = fn
	body := p.block()
	p.curFunc = outerFunc

	fn.Body = body.Block
	fn.Locals = p.locals
	finalizeFunc(fn)
	p.funcs = append(p.funcs, fn)
}

// paramList parses the parameter list up to and including the closing
// ")"; the opening "(" was already consumed by the caller. Array
// parameters decay to pointers, per the type-decay rule at binding.
func (p *Parser) paramList() ([]*ast.Var, bool) {
	if p.consume(")") {
		return nil, false
	}
	if p.at("void") && p.tok.Next != nil && p.tok.Next.Is(")") {
		p.advance()
		p.advance()
		return nil, false
	}

	var params []*ast.Var
	for {
		if p.consume("...") {
			p.expect(")")
			return params, true
		}
		spec := p.basetype()
		ty, name := p.declarator(spec.Ty)
		if ty.Kind == ctype.Array {
			ty = ctype.PointerTo(ty.Base)
		}
		params = append(params, p.newLVar(name, ty))
		if p.consume(")") {
			return params, false
		}
		p.expect(",")
	}
}

// finalizeFunc lays out every local's frame offset and the function's
// total (8-byte aligned) stack size, in declaration order.
func finalizeFunc(fn *ast.Function) {
	offset := 0
	for _, v := range fn.Locals {
		offset += v.Ty.Size
		offset = ctype.AlignTo(offset, v.Ty.Align)
		v.Offset = offset
	}
	fn.StackSize = ctype.AlignTo(offset, 8)
}

// declaration parses one `basetype declarator (= initializer)? (, ...)* ;`
// statement: typedefs bind a name and emit nothing; `static` locals
// become synthetic globals reachable only through the local scope;
// `extern` binds a name to storage defined elsewhere; everything else
// allocates a local and compiles its initializer into an assignment
// block.
func (p *Parser) declaration() *ast.Node {
	tok := p.tok
	spec := p.basetype()

	if spec.IsTypedef {
		first := true
		for first || p.consume(",") {
			first = false
			ty, name := p.declarator(spec.Ty)
			p.pushTypedef(name, ty)
		}
		p.expect(";")
		return &ast.Node{Kind: ast.NdNull, Tok: tok}
	}

	head := &ast.Node{}
	cur := head
	first := true
	for first || p.consume(",") {
		first = false
		if p.at(";") {
			break
		}
		ty, name := p.declarator(spec.Ty)

		switch {
		case spec.IsStatic:
			v := &ast.Var{Name: p.newUniqueLabel(".L.static." + name), Ty: ty, IsStatic: true}
			p.globals = append(p.globals, v)
			p.pushVar(name, v)
			if p.consume("=") {
				p.globalInitializer(v, ty)
			}

		case spec.IsExtern:
			p.newGVar(name, ty, false)

		default:
			v := p.newLVar(name, ty)
			if p.consume("=") {
				stmts := p.lvarInitStmts(v, ty, tok)
				cur.Next = &ast.Node{Kind: ast.NdBlock, Block: stmts, Tok: tok}
				cur = cur.Next
			}
		}
	}
	p.expect(";")
	return &ast.Node{Kind: ast.NdBlock, Block: head.Next, Tok: tok}
}

// --- local initializers -------------------------------------------------

func elemAt(base *ast.Node, index int, tok *token.Token) *ast.Node {
	return newUnary(ast.NdDeref, newAdd(base, ast.NewNum(int64(index), tok), tok), tok)
}

func memberAt(base *ast.Node, m *ctype.Member, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: ast.NdMember, Lhs: base, Member: m, Tok: tok}
}

func assignStmt(lvalue, value *ast.Node, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: ast.NdExprStmt, Lhs: newBinary(ast.NdAssign, lvalue, value, tok), Tok: tok}
}

// lvarInitStmts parses the initializer for v (already `=`-consumed by
// the caller) and returns the head of a chain of assignment statements;
// incomplete array types in ty are completed in place.
func (p *Parser) lvarInitStmts(v *ast.Var, ty *ctype.Type, tok *token.Token) *ast.Node {
	base := &ast.Node{Kind: ast.NdVar, Var: v, Tok: tok}
	head := &ast.Node{}
	p.collectLocalInit(head, base, ty, tok)
	return head.Next
}

// collectLocalInit appends assignment statements after cur (a dummy
// head or the previously appended statement) and returns the new tail.
func (p *Parser) collectLocalInit(cur *ast.Node, lvalue *ast.Node, ty *ctype.Type, tok *token.Token) *ast.Node {
	if ty.Kind == ctype.Array && ty.Base == ctype.CharTy && p.tok.Kind == token.Str {
		str := p.tok.Str
		p.advance()
		if ty.IsIncomplete {
			completeArray(ty, len(str))
		}
		for i := 0; i < ty.ArrayLen; i++ {
			var b byte
			if i < len(str) {
				b = str[i]
			}
			cur.Next = assignStmt(elemAt(lvalue, i, tok), ast.NewNum(int64(b), tok), tok)
			cur = cur.Next
		}
		return cur
	}

	if ty.Kind == ctype.Array {
		p.expect("{")
		i := 0
		first := true
		for !p.at("}") {
			if !first {
				p.expect(",")
				if p.at("}") {
					break
				}
			}
			first = false
			if !ty.IsIncomplete && i >= ty.ArrayLen {
				tok.File.Warn(tok.Pos, "excess elements in array initializer")
				p.assign()
			} else {
				cur = p.collectLocalInit(cur, elemAt(lvalue, i, tok), ty.Base, tok)
			}
			i++
		}
		p.expect("}")
		if ty.IsIncomplete {
			completeArray(ty, i)
		}
		for j := i; j < ty.ArrayLen; j++ {
			cur = zeroInit(cur, elemAt(lvalue, j, tok), ty.Base, tok)
		}
		return cur
	}

	if ty.Kind == ctype.Struct {
		p.expect("{")
		i := 0
		first := true
		for !p.at("}") {
			if !first {
				p.expect(",")
				if p.at("}") {
					break
				}
			}
			first = false
			if i >= len(ty.Members) {
				tok.File.Warn(tok.Pos, "excess elements in struct initializer")
				p.assign()
			} else {
				m := ty.Members[i]
				cur = p.collectLocalInit(cur, memberAt(lvalue, m, tok), m.Ty, tok)
			}
			i++
		}
		p.expect("}")
		for ; i < len(ty.Members); i++ {
			cur = zeroInit(cur, memberAt(lvalue, ty.Members[i], tok), ty.Members[i].Ty, tok)
		}
		return cur
	}

	// Scalar: a lone brace pair around one expression is accepted.
	var expr *ast.Node
	if p.consume("{") {
		expr = p.assign()
		p.expect("}")
	} else {
		expr = p.assign()
	}
	cur.Next = assignStmt(lvalue, expr, tok)
	return cur.Next
}

// zeroInit fills an uninitialized tail of an aggregate with zero
// assignments; a single scalar zero-assign at the leaves either way.
func zeroInit(cur *ast.Node, lvalue *ast.Node, ty *ctype.Type, tok *token.Token) *ast.Node {
	switch ty.Kind {
	case ctype.Array:
		for i := 0; i < ty.ArrayLen; i++ {
			cur = zeroInit(cur, elemAt(lvalue, i, tok), ty.Base, tok)
		}
		return cur
	case ctype.Struct:
		for _, m := range ty.Members {
			cur = zeroInit(cur, memberAt(lvalue, m, tok), m.Ty, tok)
		}
		return cur
	default:
		cur.Next = assignStmt(lvalue, ast.NewNum(0, tok), tok)
		return cur.Next
	}
}

func completeArray(ty *ctype.Type, length int) {
	ty.ArrayLen = length
	ty.Size = ty.Base.Size * length
	ty.IsIncomplete = false
}

// --- global initializers ------------------------------------------------

// globalInitializer parses the initializer for a global/static v
// (`=` already consumed) directly into v's flat .data image.
func (p *Parser) globalInitializer(v *ast.Var, ty *ctype.Type) {
	v.Init = p.globalInitItem(ty)
}

func padRecords(n int) []*ast.InitRecord {
	if n <= 0 {
		return nil
	}
	return []*ast.InitRecord{{Sz: n, Val: 0}}
}

func zeroRecords(ty *ctype.Type) []*ast.InitRecord {
	return padRecords(ty.Size)
}

func (p *Parser) globalInitItem(ty *ctype.Type) []*ast.InitRecord {
	tok := p.tok

	if ty.Kind == ctype.Array && ty.Base == ctype.CharTy && p.tok.Kind == token.Str {
		str := p.tok.Str
		p.advance()
		if ty.IsIncomplete {
			completeArray(ty, len(str))
		}
		recs := make([]*ast.InitRecord, ty.ArrayLen)
		for i := range recs {
			var b byte
			if i < len(str) {
				b = str[i]
			}
			recs[i] = &ast.InitRecord{Sz: 1, Val: int64(b)}
		}
		return recs
	}

	if ty.Kind == ctype.Array {
		p.expect("{")
		var all []*ast.InitRecord
		i := 0
		first := true
		for !p.at("}") {
			if !first {
				p.expect(",")
				if p.at("}") {
					break
				}
			}
			first = false
			if !ty.IsIncomplete && i >= ty.ArrayLen {
				tok.File.Warn(tok.Pos, "excess elements in array initializer")
				p.assign()
			} else {
				all = append(all, p.globalInitItem(ty.Base)...)
			}
			i++
		}
		p.expect("}")
		if ty.IsIncomplete {
			completeArray(ty, i)
		}
		for j := i; j < ty.ArrayLen; j++ {
			all = append(all, zeroRecords(ty.Base)...)
		}
		return all
	}

	if ty.Kind == ctype.Struct {
		p.expect("{")
		var all []*ast.InitRecord
		offset := 0
		i := 0
		first := true
		for !p.at("}") {
			if !first {
				p.expect(",")
				if p.at("}") {
					break
				}
			}
			first = false
			if i >= len(ty.Members) {
				tok.File.Warn(tok.Pos, "excess elements in struct initializer")
				p.assign()
			} else {
				m := ty.Members[i]
				all = append(all, padRecords(m.Offset-offset)...)
				all = append(all, p.globalInitItem(m.Ty)...)
				offset = m.Offset + m.Ty.Size
			}
			i++
		}
		p.expect("}")
		for ; i < len(ty.Members); i++ {
			m := ty.Members[i]
			all = append(all, padRecords(m.Offset-offset)...)
			all = append(all, zeroRecords(m.Ty)...)
			offset = m.Offset + m.Ty.Size
		}
		all = append(all, padRecords(ty.Size-offset)...)
		return all
	}

	// Scalar.
	var expr *ast.Node
	if p.consume("{") {
		expr = p.assign()
		p.expect("}")
	} else {
		expr = p.assign()
	}
	ast.AddType(expr)

	var gv *ast.Var
	addend := p.eval2(expr, &gv)
	if gv != nil {
		if gv.Ty.Kind == ctype.Array {
			addend *= int64(gv.Ty.Base.Size)
		}
		return []*ast.InitRecord{{Sz: 8, Label: gv.Name, Addend: addend}}
	}
	return []*ast.InitRecord{{Sz: ty.Size, Val: addend}}
}

// --- compound literals ---------------------------------------------------

// compoundLiteral parses the `{ initializer }` tail of `(type-name){...}`;
// ty and the opening token were already consumed by cast().
func (p *Parser) compoundLiteral(ty *ctype.Type, tok *token.Token) *ast.Node {
	if p.curFunc == nil {
		v := p.newAnonGVar(ty)
		p.globalInitializer(v, ty)
		return &ast.Node{Kind: ast.NdVar, Var: v, Tok: tok}
	}

	v := p.newLVar(p.newUniqueLabel(".L.compound"), ty)
	stmts := p.lvarInitStmts(v, ty, tok)
	final := &ast.Node{Kind: ast.NdExprStmt, Lhs: &ast.Node{Kind: ast.NdVar, Var: v, Tok: tok}, Tok: tok}
	if stmts == nil {
		stmts = final
	} else {
		t := stmts
		for t.Next != nil {
			t = t.Next
		}
		t.Next = final
	}
	return &ast.Node{Kind: ast.NdStmtExpr, Block: stmts, Tok: tok}
}
