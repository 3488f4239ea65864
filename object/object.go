// Package object implements glint's runtime value representation: every
// value the VM pushes to its stack, stores in a global, or stashes in an
// array element is an *Object, a small reference-counted cell tagged with
// its Type. This mirrors the reference runtime's Object/ref_count pair
// (runtime/vm/object.c) rather than Go's own garbage collector - the VM
// still wants precise, deterministic reclaiming of arrays and functions
// independent of Go's GC, both to match the reference semantics and so a
// refcount that never reaches zero is a genuine leak bug, not "the GC just
// hasn't run yet".
package object

import (
	"fmt"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/decimal"
	"strings"
)

// Type tags the kind of value an Object holds.
type Type int

const (
	INT Type = iota
	FLOAT
	BOOL
	NONE
	ARRAY
	FUNCTION
	NATIVE_FUNCTION
	CODE
)

func (t Type) String() string {
	switch t {
	case INT:
		return "int"
	case FLOAT:
		return "float"
	case BOOL:
		return "bool"
	case NONE:
		return "none"
	case ARRAY:
		return "array"
	case FUNCTION:
		return "function"
	case NATIVE_FUNCTION:
		return "native_function"
	case CODE:
		return "code"
	default:
		return "unknown"
	}
}

// NativeFunc is a builtin implemented in Go rather than compiled glint
// bytecode. It receives the already-popped argument objects and returns
// the (already ref-counted) result.
type NativeFunc func(args []*Object) (*Object, error)

// Object is a single ref-counted runtime value. Only one of the typed
// fields below is meaningful at a time, selected by Type - a tagged union
// the way the reference runtime's `union as` is, just spelled out as
// separate fields since Go has no native union.
type Object struct {
	Type     Type
	RefCount uint32

	IntValue   int64
	FloatValue decimal.Decimal
	BoolValue  bool

	Array []*Object

	Code *compiler.FunctionProto

	NativeFunc NativeFunc
	Name       string
}

// NewInt, NewFloat, NewBool, NewNone, NewCode, NewFunction and NewArray
// construct a freshly ref-counted (RefCount: 1) Object, mirroring
// object_new_int/object_new_bool/... in the reference runtime. Callers
// are expected to register the result with a Heap via the matching
// Heap.Alloc* method so it's tracked for leak detection.
func NewInt(v int64) *Object {
	return &Object{Type: INT, RefCount: 1, IntValue: v}
}

func NewFloat(v decimal.Decimal) *Object {
	return &Object{Type: FLOAT, RefCount: 1, FloatValue: v}
}

func NewBool(v bool) *Object {
	return &Object{Type: BOOL, RefCount: 1, BoolValue: v}
}

func NewNone() *Object {
	return &Object{Type: NONE, RefCount: 1}
}

func NewCode(proto *compiler.FunctionProto) *Object {
	return &Object{Type: CODE, RefCount: 1, Code: proto}
}

func NewFunction(proto *compiler.FunctionProto) *Object {
	return &Object{Type: FUNCTION, RefCount: 1, Code: proto}
}

func NewArray(elements []*Object) *Object {
	items := make([]*Object, len(elements))
	copy(items, elements)
	for _, item := range items {
		IncRef(item)
	}
	return &Object{Type: ARRAY, RefCount: 1, Array: items}
}

func NewArrayWithSize(size int, fill *Object) *Object {
	items := make([]*Object, size)
	for i := range items {
		items[i] = fill
		IncRef(fill)
	}
	return &Object{Type: ARRAY, RefCount: 1, Array: items}
}

func NewNativeFunction(name string, fn NativeFunc) *Object {
	return &Object{Type: NATIVE_FUNCTION, RefCount: 1, Name: name, NativeFunc: fn}
}

// IncRef bumps o's reference count. Called whenever a second owner (a
// stack slot, a global, an array slot) starts holding o.
func IncRef(o *Object) {
	if o == nil {
		return
	}
	if o.RefCount < ^uint32(0) {
		o.RefCount++
	}
}

// DecRef drops o's reference count, recursively releasing any Objects o
// holds onto once it reaches zero - the same "decref children on last
// release" rule object_decref applies to OBJ_ARRAY. Go's collector
// reclaims the backing memory; DecRef's job is to keep RefCount an
// accurate, catchable invariant for the VM rather than to free anything
// itself.
func DecRef(o *Object) {
	if o == nil || o.RefCount == 0 {
		return
	}
	o.RefCount--
	if o.RefCount == 0 && o.Type == ARRAY {
		for _, item := range o.Array {
			DecRef(item)
		}
	}
}

// IsTruthy reports whether o is considered true in a boolean context.
func IsTruthy(o *Object) bool {
	if o == nil {
		return false
	}
	switch o.Type {
	case INT:
		return o.IntValue != 0
	case FLOAT:
		return !o.FloatValue.IsZero()
	case BOOL:
		return o.BoolValue
	case NONE:
		return false
	case ARRAY, FUNCTION, CODE, NATIVE_FUNCTION:
		return true
	default:
		return false
	}
}

// String renders o the way `print` shows it to a glint program.
func (o *Object) String() string {
	if o == nil {
		return "<null>"
	}
	switch o.Type {
	case INT:
		return fmt.Sprintf("%d", o.IntValue)
	case FLOAT:
		return o.FloatValue.String()
	case BOOL:
		if o.BoolValue {
			return "true"
		}
		return "false"
	case NONE:
		return "None"
	case ARRAY:
		parts := make([]string, len(o.Array))
		for i, item := range o.Array {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case FUNCTION:
		if o.Code != nil {
			return fmt.Sprintf("<function '%s'>", o.Code.Name)
		}
		return "<function>"
	case CODE:
		return "<code>"
	case NATIVE_FUNCTION:
		return fmt.Sprintf("<native function '%s'>", o.Name)
	default:
		return fmt.Sprintf("<object type=%d>", o.Type)
	}
}
