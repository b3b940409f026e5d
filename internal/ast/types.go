package ast

import "fmt"

// TypeKind classifies the handful of types this C subset supports (§3: "A
// single signed integer wide enough to alias a heap address" is the only
// runtime Value representation — these Kinds only drive declaration-time
// decisions: how many cells to allocate, and whether a name denotes a
// scalar, a pointer, or an array base).
type TypeKind int

const (
	KindInt TypeKind = iota
	KindVoid
	KindPointer
	KindArray
)

// Type is a declared or declarator type. Only four shapes exist: a plain
// int, void, a pointer to something, and a fixed-size array of something.
type Type struct {
	Kind TypeKind
	Elem *Type // set for KindPointer and KindArray
	Len  int   // element count, set for KindArray
}

var IntType = &Type{Kind: KindInt}
var VoidType = &Type{Kind: KindVoid}

// PointerTo builds a pointer-to-elem type.
func PointerTo(elem *Type) *Type {
	return &Type{Kind: KindPointer, Elem: elem}
}

// ArrayOf builds a fixed-length array-of-elem type.
func ArrayOf(elem *Type, length int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: length}
}

func (t *Type) String() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindVoid:
		return "void"
	case KindPointer:
		return t.Elem.String() + "*"
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Len)
	default:
		return "?"
	}
}

// IsInt, IsPointer and IsArray classify the type the way the original
// Clang-backed interpreter asked its type API to — see environment.hpp's
// isIntegerType/isPointerType/isArrayType checks in declref/sizeOf.
func (t *Type) IsInt() bool     { return t.Kind == KindInt }
func (t *Type) IsPointer() bool { return t.Kind == KindPointer }
func (t *Type) IsArray() bool   { return t.Kind == KindArray }
