package ast

import "github.com/glintlang/glint/token"

// Type describes the static type annotation attached to a declaration,
// parameter, or function return type. It mirrors the TypeVar categories of
// the language: int, long, bool, float, array, struct, none (void return
// types are folded into none, since an absent return value is represented
// by the none object at runtime).
type Type struct {
	// Name is one of "int", "long", "bool", "float", "array", "struct", "none".
	Name string

	// Elem is the element type for an "array" type, nil otherwise.
	Elem *Type

	// Size is the array's declared length expression, e.g. the `5` in
	// `int[5]`. Nil when the size is inferred from an initializer.
	Size Expression
}

// IsArray reports whether this type describes an array.
func (t Type) IsArray() bool {
	return t.Name == "array"
}

// Param is a single function parameter: a name and its declared type.
type Param struct {
	Name token.Token
	Type Type
}
