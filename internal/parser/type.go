package parser

import (
	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/ctype"
	"github.com/asps1917/zxcc/internal/token"
)

// declSpec is the result of parsing a basetype: the elaborated type
// plus whichever storage class, if any, preceded it.
type declSpec struct {
	Ty        *ctype.Type
	IsTypedef bool
	IsStatic  bool
	IsExtern  bool
}

// Bit positions for the builtin type-specifier counter. Spacing them
// two bits apart lets "short int" and "long long int" etc. accumulate
// by simple addition and still be told apart from single keywords.
const (
	specVoid  = 1 << 0
	specBool  = 1 << 2
	specChar  = 1 << 4
	specShort = 1 << 6
	specInt   = 1 << 8
	specLong  = 1 << 10
	specOther = 1 << 12 // struct/enum/typedef-name
)

// isTypename reports whether the current token can start a basetype:
// a builtin keyword, struct/enum, a storage class, or a name bound by a
// prior typedef.
func (p *Parser) isTypename() bool {
	switch {
	case p.at("void"), p.at("_Bool"), p.at("char"), p.at("short"), p.at("int"), p.at("long"),
		p.at("struct"), p.at("enum"), p.at("typedef"), p.at("static"), p.at("extern"):
		return true
	}
	if p.tok.Kind == token.Ident && p.findTypedef(p.tok.Lexeme) != nil {
		return true
	}
	return false
}

// basetype parses storage-class keywords and type specifiers. Builtin
// specifiers accumulate into a bitmask so that "short int"/"long long"
// combinations are recognized without a combinatorial keyword table.
func (p *Parser) basetype() *declSpec {
	spec := &declSpec{}
	counter := 0

	for p.isTypename() {
		if p.at("typedef") || p.at("static") || p.at("extern") {
			if spec.IsTypedef || spec.IsStatic || spec.IsExtern {
				p.fatal("storage class specified twice")
			}
			switch {
			case p.consume("typedef"):
				spec.IsTypedef = true
			case p.consume("static"):
				spec.IsStatic = true
			case p.consume("extern"):
				spec.IsExtern = true
			}
			continue
		}

		if p.at("struct") {
			if counter != 0 {
				p.fatal("invalid type")
			}
			spec.Ty = p.structDecl()
			counter += specOther
			continue
		}
		if p.at("enum") {
			if counter != 0 {
				p.fatal("invalid type")
			}
			spec.Ty = p.enumSpecifier()
			counter += specOther
			continue
		}
		if p.tok.Kind == token.Ident {
			if counter != 0 {
				break
			}
			if ty := p.findTypedef(p.tok.Lexeme); ty != nil {
				spec.Ty = ty
				counter += specOther
				p.advance()
				continue
			}
		}

		switch {
		case p.consume("void"):
			counter += specVoid
		case p.consume("_Bool"):
			counter += specBool
		case p.consume("char"):
			counter += specChar
		case p.consume("short"):
			counter += specShort
		case p.consume("int"):
			counter += specInt
		case p.consume("long"):
			counter += specLong
		default:
			p.fatal("unreachable type specifier")
		}

		switch counter {
		case specVoid:
			spec.Ty = ctype.VoidTy
		case specBool:
			spec.Ty = ctype.BoolTy
		case specChar:
			spec.Ty = ctype.CharTy
		case specShort, specShort + specInt:
			spec.Ty = ctype.ShortTy
		case specInt:
			spec.Ty = ctype.IntTy
		case specLong, specLong + specInt, specLong + specLong, specLong + specLong + specInt:
			spec.Ty = ctype.LongTy
		default:
			p.fatal("invalid type")
		}
	}

	if spec.Ty == nil {
		p.fatal("expected a type")
	}
	return spec
}

// declarator parses `* ... name type-suffix`, returning the fully
// elaborated type and the declared name.
func (p *Parser) declarator(base *ctype.Type) (*ctype.Type, string) {
	ty := base
	for p.consume("*") {
		ty = ctype.PointerTo(ty)
	}

	if p.consume("(") {
		placeholder := &ctype.Type{}
		innerTy, name := p.declarator(placeholder)
		p.expect(")")
		*placeholder = *p.typeSuffix(ty)
		return innerTy, name
	}

	name := p.expectIdent()
	return p.typeSuffix(ty), name
}

// abstractDeclarator is declarator without a name, used by sizeof/cast
// type-names and compound literals.
func (p *Parser) abstractDeclarator(base *ctype.Type) *ctype.Type {
	ty := base
	for p.consume("*") {
		ty = ctype.PointerTo(ty)
	}
	if p.consume("(") {
		placeholder := &ctype.Type{}
		innerTy := p.abstractDeclarator(placeholder)
		p.expect(")")
		*placeholder = *p.typeSuffix(ty)
		return innerTy
	}
	return p.typeSuffix(ty)
}

// typeSuffix parses zero or more `[const-expr?]` brackets, applying
// them rightmost-first so `int a[2][3]` means "array of 2 arrays of 3".
func (p *Parser) typeSuffix(ty *ctype.Type) *ctype.Type {
	if !p.consume("[") {
		return ty
	}
	if p.consume("]") {
		base := p.typeSuffix(ty)
		return ctype.IncompleteArrayOf(base)
	}
	length := p.constExpr()
	p.expect("]")
	base := p.typeSuffix(ty)
	return ctype.ArrayOf(base, int(length))
}

// typeName parses a `type-name` as used by sizeof/cast/compound-literal:
// a basetype followed by an (optional) abstract declarator.
func (p *Parser) typeName() *ctype.Type {
	spec := p.basetype()
	return p.abstractDeclarator(spec.Ty)
}

// structDecl parses `struct Tag? {...}` or `struct Tag;`.
func (p *Parser) structDecl() *ctype.Type {
	p.expect("struct")

	var name string
	hasTag := false
	if n, ok := p.consumeIdent(); ok {
		name = n
		hasTag = true
	}

	if hasTag && !p.at("{") {
		tag := p.findTag(name)
		if tag == nil {
			ty := ctype.NewStruct()
			p.pushTag(name, ty)
			return ty
		}
		return tag.Ty
	}

	var ty *ctype.Type
	if hasTag {
		if existing := p.findTagAtCurrentDepth(name); existing != nil {
			ty = existing.Ty
		}
	}
	if ty == nil {
		ty = ctype.NewStruct()
		if hasTag {
			p.pushTag(name, ty)
		}
	}

	p.expect("{")
	var members []*ctype.Member
	for !p.consume("}") {
		spec := p.basetype()
		first := true
		for first || p.consume(",") {
			first = false
			mtok := p.tok
			mty, mname := p.declarator(spec.Ty)
			members = append(members, &ctype.Member{Name: mname, Ty: mty, Tok: mtok})
		}
		p.expect(";")
	}

	layoutStruct(ty, members)
	return ty
}

// layoutStruct assigns each member's offset by consecutively aligning
// it to its own type's alignment, then rounds the final offset up to
// the struct's own (max-of-members) alignment. ty's identity is kept
// stable so pointers taken while it was incomplete stay valid.
func layoutStruct(ty *ctype.Type, members []*ctype.Member) {
	offset := 0
	align := 1
	for _, m := range members {
		offset = ctype.AlignTo(offset, m.Ty.Align)
		m.Offset = offset
		offset += m.Ty.Size
		if m.Ty.Align > align {
			align = m.Ty.Align
		}
	}
	ty.Members = members
	ty.Align = align
	ty.Size = ctype.AlignTo(offset, align)
	ty.IsIncomplete = false
}

// enumSpecifier parses `enum Tag? {...}` or `enum Tag;`, registering
// each constant in the ordinary-identifier scope as it is read.
func (p *Parser) enumSpecifier() *ctype.Type {
	p.expect("enum")

	var name string
	hasTag := false
	if n, ok := p.consumeIdent(); ok {
		name = n
		hasTag = true
	}

	if hasTag && !p.at("{") {
		tag := p.findTag(name)
		if tag == nil {
			p.fatal("unknown enum type")
		}
		if tag.Ty.Kind != ctype.Enum {
			p.fatal("not an enum tag")
		}
		return tag.Ty
	}

	ty := ctype.EnumType()
	p.expect("{")
	var val int64
	first := true
	for !p.consume("}") {
		if !first {
			p.expect(",")
			if p.consume("}") {
				break
			}
		}
		first = false
		cname := p.expectIdent()
		if p.consume("=") {
			val = p.constExpr()
		}
		p.pushEnum(cname, ty, val)
		val++
	}

	if hasTag {
		p.pushTag(name, ty)
	}
	return ty
}

// constExpr parses and immediately constant-folds a `const-expr`.
func (p *Parser) constExpr() int64 {
	n := p.conditional()
	ast.AddType(n)
	return p.eval(n)
}
