package parser

import (
	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/ctype"
)

// eval folds a constant-expression subtree to its integer value. It
// admits no address operands; see eval2 for initializers, which need
// exactly one.
func (p *Parser) eval(n *ast.Node) int64 {
	switch n.Kind {
	case ast.NdAdd:
		return p.eval(n.Lhs) + p.eval(n.Rhs)
	case ast.NdSub:
		return p.eval(n.Lhs) - p.eval(n.Rhs)
	case ast.NdMul:
		return p.eval(n.Lhs) * p.eval(n.Rhs)
	case ast.NdDiv:
		rhs := p.eval(n.Rhs)
		if rhs == 0 {
			n.Tok.File.Fatal(n.Tok.Pos, "division by zero in constant expression")
		}
		return p.eval(n.Lhs) / rhs
	case ast.NdBitAnd:
		return p.eval(n.Lhs) & p.eval(n.Rhs)
	case ast.NdBitOr:
		return p.eval(n.Lhs) | p.eval(n.Rhs)
	case ast.NdBitXor:
		return p.eval(n.Lhs) ^ p.eval(n.Rhs)
	case ast.NdShl:
		return p.eval(n.Lhs) << uint(p.eval(n.Rhs))
	case ast.NdShr:
		return p.eval(n.Lhs) >> uint(p.eval(n.Rhs))
	case ast.NdEq:
		return boolInt(p.eval(n.Lhs) == p.eval(n.Rhs))
	case ast.NdNe:
		return boolInt(p.eval(n.Lhs) != p.eval(n.Rhs))
	case ast.NdLt:
		return boolInt(p.eval(n.Lhs) < p.eval(n.Rhs))
	case ast.NdLe:
		return boolInt(p.eval(n.Lhs) <= p.eval(n.Rhs))
	case ast.NdLogAnd:
		return boolInt(p.eval(n.Lhs) != 0 && p.eval(n.Rhs) != 0)
	case ast.NdLogOr:
		return boolInt(p.eval(n.Lhs) != 0 || p.eval(n.Rhs) != 0)
	case ast.NdCond:
		if p.eval(n.Cond) != 0 {
			return p.eval(n.Then)
		}
		return p.eval(n.Els)
	case ast.NdComma:
		p.eval(n.Lhs)
		return p.eval(n.Rhs)
	case ast.NdNot:
		return boolInt(p.eval(n.Lhs) == 0)
	case ast.NdBitNot:
		return ^p.eval(n.Lhs)
	case ast.NdNum:
		return n.Val
	}
	n.Tok.File.Fatal(n.Tok.Pos, "not a constant expression")
	panic("unreachable")
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// eval2 extends eval with exactly one address operand: `&g` for a
// global g, or a bare array-typed variable (which decays to its own
// address). The var is written to *out; a second address operand is
// a fatal "invalid initializer". The returned value is an integer
// addend in element units when an address was found through pointer
// arithmetic (scaled to bytes by the caller, since the element size
// isn't known at every step of the expression).
func (p *Parser) eval2(n *ast.Node, out **ast.Var) int64 {
	switch n.Kind {
	case ast.NdVar:
		if n.Var.Ty.Kind == ctype.Array {
			p.bindAddr(n, out, n.Var)
			return 0
		}
	case ast.NdAddr:
		if n.Lhs.Kind == ast.NdVar {
			p.bindAddr(n, out, n.Lhs.Var)
			return 0
		}
	case ast.NdAdd:
		return p.eval2(n.Lhs, out) + p.eval2(n.Rhs, out)
	case ast.NdSub:
		return p.eval2(n.Lhs, out) - p.eval2(n.Rhs, out)
	case ast.NdPtrAdd:
		return p.eval2(n.Lhs, out) + p.eval(n.Rhs)
	case ast.NdPtrSub:
		return p.eval2(n.Lhs, out) - p.eval(n.Rhs)
	}
	return p.eval(n)
}

func (p *Parser) bindAddr(n *ast.Node, out **ast.Var, v *ast.Var) {
	if *out != nil && *out != v {
		n.Tok.File.Fatal(n.Tok.Pos, "invalid initializer")
	}
	*out = v
}
