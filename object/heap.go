package object

import (
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/decimal"
)

// Heap tracks every Object allocated during a VM run, mirroring the
// reference runtime's Heap (runtime/vm/heap.c): a flat, append-only list
// of every object ever handed out. It exists for the same reason the C
// heap does - heap_live_objects lets a caller (here, a test or the `--debug`
// CLI flag) notice a refcount that never dropped to zero, i.e. a leak -
// not to manage the memory itself, which Go's allocator already owns.
type Heap struct {
	objects []*Object
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

func (h *Heap) track(o *Object) *Object {
	h.objects = append(h.objects, o)
	return o
}

func (h *Heap) AllocInt(v int64) *Object             { return h.track(NewInt(v)) }
func (h *Heap) AllocFloat(v decimal.Decimal) *Object { return h.track(NewFloat(v)) }
func (h *Heap) AllocBool(v bool) *Object             { return h.track(NewBool(v)) }
func (h *Heap) AllocNone() *Object       { return h.track(NewNone()) }
func (h *Heap) AllocCode(proto *compiler.FunctionProto) *Object {
	return h.track(NewCode(proto))
}
func (h *Heap) AllocFunction(proto *compiler.FunctionProto) *Object {
	return h.track(NewFunction(proto))
}
func (h *Heap) AllocArray(elements []*Object) *Object {
	return h.track(NewArray(elements))
}
func (h *Heap) AllocArrayWithSize(size int, fill *Object) *Object {
	return h.track(NewArrayWithSize(size, fill))
}
func (h *Heap) AllocNativeFunction(name string, fn NativeFunc) *Object {
	return h.track(NewNativeFunction(name, fn))
}

// LiveObjects reports the number of Objects ever tracked by this heap
// whose reference count hasn't dropped to zero - a non-zero count after a
// program finishes and every global/local has gone out of scope points at
// a refcounting bug upstream.
func (h *Heap) LiveObjects() int {
	count := 0
	for _, o := range h.objects {
		if o.RefCount > 0 {
			count++
		}
	}
	return count
}
