// Package ctype is the compiler's Type Model: the fixed primitive and
// derived type definitions, their size/align rules, and the integer
// kind predicate. It has no dependency on the lexer, parser, or
// codegen — everything above it decorates or consumes a *Type.
package ctype

import (
	"strconv"

	"github.com/asps1917/zxcc/internal/token"
)

// Kind tags a Type the way the spec's data model enumerates it.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	Short
	Int
	Long
	Ptr
	Array
	Struct
	Func
	Enum
)

// Type is a single tagged struct for every type kind rather than a
// hierarchy per kind: derived-type fields (Base, ArrayLen, Members,
// ReturnTy) are simply unused on the kinds that don't need them.
type Type struct {
	Kind         Kind
	Size         int
	Align        int
	IsIncomplete bool

	Base     *Type // element type for Ptr/Array
	ArrayLen int    // element count for Array

	Members []*Member // field order for Struct

	ReturnTy   *Type // Func only
	IsVariadic bool  // Func only
}

// Member is one field of a struct type: its name, type, the token it
// was declared at (for diagnostics), and its byte offset once the
// enclosing struct has been laid out.
type Member struct {
	Name   string
	Ty     *Type
	Tok    *token.Token
	Offset int
}

// The integer primitives are flyweight singletons: every occurrence of
// "int" in the program shares one *Type, so type identity comparisons
// by pointer work for all of them.
var (
	VoidTy  = &Type{Kind: Void, Size: 1, Align: 1}
	BoolTy  = &Type{Kind: Bool, Size: 1, Align: 1}
	CharTy  = &Type{Kind: Char, Size: 1, Align: 1}
	ShortTy = &Type{Kind: Short, Size: 2, Align: 2}
	IntTy   = &Type{Kind: Int, Size: 4, Align: 4}
	LongTy  = &Type{Kind: Long, Size: 8, Align: 8}
)

// IsInteger is the is_integer predicate: true for every primitive that
// behaves as a plain integer (bool included, per the spec's 0/1
// normalization rule).
func IsInteger(ty *Type) bool {
	switch ty.Kind {
	case Bool, Char, Short, Int, Long:
		return true
	}
	return false
}

// IsPointerLike reports whether ty decays/behaves as an address for
// arithmetic dispatch (new_add/new_sub): pointers and arrays both do.
func IsPointerLike(ty *Type) bool {
	return ty.Kind == Ptr || ty.Kind == Array
}

// Pointee returns the type pointed to or the element type of an array.
func Pointee(ty *Type) *Type {
	return ty.Base
}

// PointerTo constructs a fresh pointer type; pointers are always 8/8.
func PointerTo(base *Type) *Type {
	return &Type{Kind: Ptr, Size: 8, Align: 8, Base: base}
}

// ArrayOf constructs an array of len elements of base.
func ArrayOf(base *Type, length int) *Type {
	return &Type{Kind: Array, Size: base.Size * length, Align: base.Align, Base: base, ArrayLen: length}
}

// IncompleteArrayOf constructs an array whose length is not yet known;
// it is completed in place once an initializer or string literal
// supplies the element count (see parser.completeArray).
func IncompleteArrayOf(base *Type) *Type {
	return &Type{Kind: Array, Align: base.Align, Base: base, IsIncomplete: true}
}

// FuncType constructs a function type. Size/align are unused (set to 1
// to keep arithmetic on them harmless if ever taken by mistake).
func FuncType(returnTy *Type) *Type {
	return &Type{Kind: Func, Size: 1, Align: 1, ReturnTy: returnTy}
}

// NewStruct constructs a fresh incomplete struct. Its identity is kept
// stable across completion (see parser.structDecl) so that pointers
// taken to it before completion (self-referential struct members)
// remain valid.
func NewStruct() *Type {
	return &Type{Kind: Struct, Size: 0, Align: 1, IsIncomplete: true}
}

// EnumType constructs a 4-byte int-like aggregate.
func EnumType() *Type {
	return &Type{Kind: Enum, Size: 4, Align: 4}
}

// AlignTo rounds n up to the next multiple of align.
func AlignTo(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// FindMember returns the named member of a (complete) struct type, or
// nil if none matches.
func (ty *Type) FindMember(name string) *Member {
	for _, m := range ty.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// String renders a type for diagnostics and debug dumps.
func (ty *Type) String() string {
	if ty == nil {
		return "<nil>"
	}
	switch ty.Kind {
	case Void:
		return "void"
	case Bool:
		return "_Bool"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Ptr:
		return ty.Base.String() + "*"
	case Array:
		return "[" + strconv.Itoa(ty.ArrayLen) + "]" + ty.Base.String()
	case Struct:
		return "struct"
	case Func:
		return "func() " + ty.ReturnTy.String()
	case Enum:
		return "enum"
	}
	return "<invalid>"
}
