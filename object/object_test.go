package object

import (
	"github.com/glintlang/glint/decimal"
	"testing"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name     string
		obj      *Object
		expected bool
	}{
		{"nonzero int", NewInt(5), true},
		{"zero int", NewInt(0), false},
		{"nonzero float", NewFloat(decimal.MustNew("1.5")), true},
		{"zero float", NewFloat(decimal.Zero()), false},
		{"true bool", NewBool(true), true},
		{"false bool", NewBool(false), false},
		{"none", NewNone(), false},
		{"empty array", NewArray(nil), true},
		{"function", NewFunction(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTruthy(tt.obj); got != tt.expected {
				t.Errorf("IsTruthy(%v) = %v, want %v", tt.obj, got, tt.expected)
			}
		})
	}
}

func TestObjectString(t *testing.T) {
	tests := []struct {
		name     string
		obj      *Object
		expected string
	}{
		{"int", NewInt(42), "42"},
		{"float", NewFloat(decimal.MustNew("3.14")), "3.14"},
		{"true", NewBool(true), "true"},
		{"false", NewBool(false), "false"},
		{"none", NewNone(), "None"},
		{"array", NewArray([]*Object{NewInt(1), NewInt(2), NewInt(3)}), "[1, 2, 3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRefCounting(t *testing.T) {
	o := NewInt(7)
	if o.RefCount != 1 {
		t.Fatalf("new object should start with RefCount 1, got %d", o.RefCount)
	}

	IncRef(o)
	if o.RefCount != 2 {
		t.Errorf("after IncRef, RefCount = %d, want 2", o.RefCount)
	}

	DecRef(o)
	if o.RefCount != 1 {
		t.Errorf("after DecRef, RefCount = %d, want 1", o.RefCount)
	}

	DecRef(o)
	if o.RefCount != 0 {
		t.Errorf("after second DecRef, RefCount = %d, want 0", o.RefCount)
	}
}

func TestArrayConstructionIncrefsElements(t *testing.T) {
	elem := NewInt(1)
	arr := NewArray([]*Object{elem})
	if elem.RefCount != 2 {
		t.Errorf("array construction should incref its elements, got RefCount %d", elem.RefCount)
	}

	DecRef(arr)
	for _, item := range arr.Array {
		if item.RefCount != 1 {
			t.Errorf("DecRef on a zeroed array should decref its elements, got RefCount %d", item.RefCount)
		}
	}
}

func TestHeapLiveObjects(t *testing.T) {
	heap := NewHeap()
	a := heap.AllocInt(1)
	b := heap.AllocInt(2)

	if got := heap.LiveObjects(); got != 2 {
		t.Errorf("LiveObjects() = %d, want 2", got)
	}

	DecRef(a)
	if got := heap.LiveObjects(); got != 1 {
		t.Errorf("after releasing one object, LiveObjects() = %d, want 1", got)
	}

	DecRef(b)
	if got := heap.LiveObjects(); got != 0 {
		t.Errorf("after releasing both objects, LiveObjects() = %d, want 0", got)
	}
}
