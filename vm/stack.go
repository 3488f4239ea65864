package vm

import "github.com/glintlang/glint/object"

// Stack is a frame's operand stack. Pushing takes a reference: the slot
// itself counts as an owner of the object, matching frame_stack_push in
// the reference runtime. Popping hands that reference to the caller
// without releasing it - the caller decides whether to re-own it (push
// it somewhere else), consume it (read its value then DecRef it), or
// forward it along (return it, store it in a global/local without an
// extra IncRef).
type Stack []*object.Object

// IsEmpty reports whether the stack has no values.
func (s *Stack) IsEmpty() bool {
	return len(*s) == 0
}

// Push appends value to the top of the stack, incrementing its
// reference count to account for the new owning slot.
func (s *Stack) Push(value *object.Object) {
	object.IncRef(value)
	*s = append(*s, value)
}

// Pop removes and returns the top element of the stack without altering
// its reference count.
func (s *Stack) Pop() (*object.Object, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	index := len(*s) - 1
	element := (*s)[index]
	*s = (*s)[:index]
	return element, true
}

// Peek returns the top element without removing it.
func (s *Stack) Peek() (*object.Object, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	return (*s)[len(*s)-1], true
}
