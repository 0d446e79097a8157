// Package parser is the hand-written recursive-descent front end: it
// walks a token chain from the lexer, resolves scoped names, elaborates
// declared types, builds a typed AST, and folds constant expressions.
//
// File scope needs no backtracking: topLevel (decl.go) parses the
// basetype+declarator prefix shared by function definitions and global
// declarations once, then picks one by whether "(" follows. The only
// cursor rewinds are one token long: cast() and sizeof step back over a
// "(" that does not open a type name. Everything else is LL(1) to LL(2)
// with a handful of lookahead helpers on the token cursor below.
package parser

import (
	"fmt"
	"strconv"

	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/ctype"
	"github.com/asps1917/zxcc/internal/token"
)

// Parser holds every piece of state the grammar needs, instantiated
// once per compilation instead of living as package-level globals.
type Parser struct {
	tok *token.Token

	varScope *varScopeEntry
	tagScope *tagScopeEntry
	depth    int

	globals []*ast.Var
	funcs   []*ast.Function

	locals  []*ast.Var
	curFunc *ast.Function

	curSwitch *ast.Node

	labelSeq int
}

// New builds a parser positioned at the head of a token chain.
func New(tok *token.Token) *Parser {
	return &Parser{tok: tok}
}

// Parse consumes the whole token chain and returns the finished
// program. It panics with a *source.Error on any ill-formed input; the
// caller is expected to recover at the top level.
func Parse(tok *token.Token) *ast.Program {
	p := New(tok)
	return p.program()
}

func (p *Parser) nextLabel() int {
	p.labelSeq++
	return p.labelSeq
}

// --- token cursor -----------------------------------------------------

func (p *Parser) advance() { p.tok = p.tok.Next }

// at reports whether the current token is reserved and spelled op,
// without advancing.
func (p *Parser) at(op string) bool { return p.tok.Is(op) }

// consume advances past the current token iff it is reserved and
// spelled op.
func (p *Parser) consume(op string) bool {
	if !p.tok.Is(op) {
		return false
	}
	p.advance()
	return true
}

// expect requires the current token be reserved and spelled op.
func (p *Parser) expect(op string) {
	if !p.tok.Is(op) {
		p.fatal("expected '%s'", op)
	}
	p.advance()
}

func (p *Parser) atEOF() bool { return p.tok.Kind == token.EOF }

func (p *Parser) consumeIdent() (string, bool) {
	if p.tok.Kind != token.Ident {
		return "", false
	}
	name := p.tok.Lexeme
	p.advance()
	return name, true
}

func (p *Parser) expectIdent() string {
	name, ok := p.consumeIdent()
	if !ok {
		p.fatal("expected an identifier")
	}
	return name
}

func (p *Parser) consumeReturn() bool {
	if p.tok.Kind != token.Return {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expectNumber() int64 {
	if p.tok.Kind != token.Num {
		p.fatal("expected a number")
	}
	v := p.tok.Val
	p.advance()
	return v
}

func (p *Parser) fatal(format string, args ...interface{}) {
	p.tok.File.Fatal(p.tok.Pos, format, args...)
}

// --- var/function allocation ------------------------------------------

func (p *Parser) newVar(name string, ty *ctype.Type) *ast.Var {
	return &ast.Var{Name: name, Ty: ty}
}

func (p *Parser) newLVar(name string, ty *ctype.Type) *ast.Var {
	v := p.newVar(name, ty)
	v.IsLocal = true
	p.locals = append(p.locals, v)
	p.pushVar(name, v)
	return v
}

func (p *Parser) newGVar(name string, ty *ctype.Type, emit bool) *ast.Var {
	v := p.newVar(name, ty)
	if emit {
		p.globals = append(p.globals, v)
	}
	p.pushVar(name, v)
	return v
}

// newAnonGVar allocates a global with a compiler-generated label, used
// for string literals and compound literals at file scope.
func (p *Parser) newAnonGVar(ty *ctype.Type) *ast.Var {
	v := &ast.Var{Name: p.newUniqueLabel(".L.data"), Ty: ty}
	p.globals = append(p.globals, v)
	return v
}

func (p *Parser) newUniqueLabel(prefix string) string {
	return prefix + "." + strconv.Itoa(p.nextLabel())
}

// newPlainLabel produces the unpadded label form used for case/default
// targets (.LcaseN, .LdefaultN).
func (p *Parser) newPlainLabel(prefix string) string {
	return prefix + strconv.Itoa(p.nextLabel())
}

// newPaddedLabel produces the zero-padded label form shared with the
// code generator's structured-control-flow labels (.Lbreak%03d).
func (p *Parser) newPaddedLabel(prefix string) string {
	return fmt.Sprintf("%s%03d", prefix, p.nextLabel())
}
