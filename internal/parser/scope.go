package parser

import "github.com/asps1917/zxcc/internal/ctype"
import "github.com/asps1917/zxcc/internal/ast"

// varScopeKind distinguishes the three things an ordinary identifier
// can be bound to in VarScope.
type varScopeKind int

const (
	scopeVar varScopeKind = iota
	scopeTypedef
	scopeEnum
)

// varScopeEntry is one binding in the ordinary-identifier scope chain.
type varScopeEntry struct {
	Name  string
	Depth int
	Kind  varScopeKind

	Var     *ast.Var    // scopeVar
	Typedef *ctype.Type // scopeTypedef
	EnumTy  *ctype.Type // scopeEnum
	EnumVal int64       // scopeEnum

	Next *varScopeEntry
}

// tagScopeEntry is one binding in the struct/enum tag scope chain.
type tagScopeEntry struct {
	Name  string
	Depth int
	Ty    *ctype.Type
	Next  *tagScopeEntry
}

// scopeSnapshot is what enterScope captures and leaveScope restores: the
// two chain heads and the depth counter, taken as plain values so block
// exit is a simple three-field assignment on every exit path.
type scopeSnapshot struct {
	varHead *varScopeEntry
	tagHead *tagScopeEntry
	depth   int
}

func (p *Parser) enterScope() scopeSnapshot {
	snap := scopeSnapshot{varHead: p.varScope, tagHead: p.tagScope, depth: p.depth}
	p.depth++
	return snap
}

func (p *Parser) leaveScope(snap scopeSnapshot) {
	p.varScope = snap.varHead
	p.tagScope = snap.tagHead
	p.depth = snap.depth
}

func (p *Parser) pushVar(name string, v *ast.Var) *varScopeEntry {
	e := &varScopeEntry{Name: name, Depth: p.depth, Kind: scopeVar, Var: v, Next: p.varScope}
	p.varScope = e
	return e
}

func (p *Parser) pushTypedef(name string, ty *ctype.Type) {
	p.varScope = &varScopeEntry{Name: name, Depth: p.depth, Kind: scopeTypedef, Typedef: ty, Next: p.varScope}
}

func (p *Parser) pushEnum(name string, ty *ctype.Type, val int64) {
	p.varScope = &varScopeEntry{Name: name, Depth: p.depth, Kind: scopeEnum, EnumTy: ty, EnumVal: val, Next: p.varScope}
}

func (p *Parser) pushTag(name string, ty *ctype.Type) *tagScopeEntry {
	e := &tagScopeEntry{Name: name, Depth: p.depth, Ty: ty, Next: p.tagScope}
	p.tagScope = e
	return e
}

// findVar looks up an ordinary identifier, innermost scope first.
func (p *Parser) findVar(name string) *varScopeEntry {
	for e := p.varScope; e != nil; e = e.Next {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// findTag looks up a struct/enum tag, innermost scope first.
func (p *Parser) findTag(name string) *tagScopeEntry {
	for e := p.tagScope; e != nil; e = e.Next {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// findTagAtCurrentDepth reports the tag scope entry for name if one was
// pushed at the current depth, used to decide whether `struct Tag {...}`
// completes a sibling forward declaration in place or starts a fresh one.
func (p *Parser) findTagAtCurrentDepth(name string) *tagScopeEntry {
	for e := p.tagScope; e != nil && e.Depth == p.depth; e = e.Next {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// findTypedef resolves name to the type it was bound to by a prior
// `typedef`, or nil if it isn't one.
func (p *Parser) findTypedef(name string) *ctype.Type {
	e := p.findVar(name)
	if e != nil && e.Kind == scopeTypedef {
		return e.Typedef
	}
	return nil
}
