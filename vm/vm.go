// Package vm implements the stack-based bytecode interpreter that
// executes the bytecode produced by package compiler. It is grounded on
// the reference runtime's vm.c/frame_execute, translated from a manually
// memory-managed recursive interpreter into idiomatic Go: a VM owns the
// object heap, the global-variable table and the well-known None/true/
// false singletons, and each call recursively runs a fresh Frame the way
// frame_execute's vm_execute does.
package vm

import (
	"bufio"
	"fmt"
	"math/rand"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/decimal"
	"github.com/glintlang/glint/object"
	"os"
	"strconv"
	"strings"
)

// VM is the runtime environment bytecode gets executed in.
type VM struct {
	heap    *object.Heap
	globals []*object.Object

	none  *object.Object
	true_ *object.Object
	false *object.Object

	stdin *bufio.Reader

	// jitEnabled gates the OP_MAKE_FUNCTION-time call into package jit.
	// Defaults on; SetJITEnabled turns it off. `glint emit --no-jit` does
	// not go through a VM at all - it only skips its own jit.Optimize call.
	jitEnabled bool
}

// New creates a fresh VM with its own heap and well-known singletons.
// Like the reference runtime's none/true/false_object, these are shared,
// never individually freed - RefCount intentionally never reaches zero.
func New() *VM {
	heap := object.NewHeap()
	return &VM{
		heap:       heap,
		none:       heap.AllocNone(),
		true_:      heap.AllocBool(true),
		false:      heap.AllocBool(false),
		stdin:      bufio.NewReader(os.Stdin),
		jitEnabled: true,
	}
}

// SetJITEnabled toggles whether OP_MAKE_FUNCTION rewrites a function
// body through package jit before installing it.
func (vm *VM) SetJITEnabled(enabled bool) {
	vm.jitEnabled = enabled
}

// Heap exposes the VM's object heap, mainly so callers (tests, the
// `--debug` CLI flag) can check LiveObjects() after a run for leaks.
func (vm *VM) Heap() *object.Heap {
	return vm.heap
}

// Run executes a top-level compiled unit and returns the last value left
// on its operand stack (or None, if the program ended without one - a
// full program rather than a single REPL entry, per the "every bare
// expression statement nets +1" compiler convention).
func (vm *VM) Run(bytecode compiler.Bytecode) (*object.Object, error) {
	vm.globals = make([]*object.Object, len(bytecode.NameConstants))
	for i := range vm.globals {
		vm.globals[i] = vm.none
		object.IncRef(vm.none)
	}

	frame := newFrame(vm, bytecode.Instructions, bytecode.ConstantsPool, bytecode.NameConstants, nil)
	return frame.run()
}

func (vm *VM) setGlobal(index int, value *object.Object) {
	if index < 0 || index >= len(vm.globals) {
		return
	}
	object.IncRef(value)
	object.DecRef(vm.globals[index])
	vm.globals[index] = value
}

func (vm *VM) getGlobal(index int) (*object.Object, error) {
	if index < 0 || index >= len(vm.globals) {
		return nil, RuntimeError{Message: fmt.Sprintf("global slot %d out of range", index)}
	}
	return vm.globals[index], nil
}

// objectFromConstant converts a compile-time constant-pool entry (an
// untyped literal value produced by the lexer/parser) into a heap object.
// None/true/false reuse the VM's singletons rather than allocating afresh,
// matching vm_execute's LOAD_CONST special-casing of VAL_NONE/VAL_BOOL.
func (vm *VM) objectFromConstant(value any) *object.Object {
	switch v := value.(type) {
	case nil:
		return vm.none
	case bool:
		if v {
			return vm.true_
		}
		return vm.false
	case int64:
		return vm.heap.AllocInt(v)
	case float64:
		return vm.heap.AllocFloat(decimal.MustNew(strconv.FormatFloat(v, 'f', -1, 64)))
	case decimal.Decimal:
		return vm.heap.AllocFloat(v)
	default:
		return vm.none
	}
}

// --- builtins ---

// builtinPrint renders value the way `object.Object.String` formats it,
// followed by a newline, matching builtin_print's "args separated by a
// space, trailing newline" convention (glint's `print` only ever takes a
// single argument, so there's nothing to separate here).
func (vm *VM) builtinPrint(value *object.Object) {
	fmt.Fprintln(os.Stdout, value.String())
}

// builtinInput reads a line from stdin and parses it as an int, the way
// builtin_input does - any unparsable or empty line yields 0 rather than
// an error, since `input` has no way to signal failure back to the
// caller.
func (vm *VM) builtinInput() *object.Object {
	line, err := vm.stdin.ReadString('\n')
	if err != nil && line == "" {
		return vm.heap.AllocInt(0)
	}
	line = strings.TrimSpace(line)
	value, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return vm.heap.AllocInt(0)
	}
	return vm.heap.AllocInt(value)
}

// builtinRandint returns an int uniformly distributed in [low, high],
// inclusive, matching builtin_randint's semantics.
func (vm *VM) builtinRandint(low, high *object.Object) (*object.Object, error) {
	if low.Type != object.INT || high.Type != object.INT {
		return nil, RuntimeError{Message: "'randint' expects two int arguments"}
	}
	lo, hi := low.IntValue, high.IntValue
	if lo > hi {
		return nil, RuntimeError{Message: fmt.Sprintf("'randint' range is invalid: %d > %d", lo, hi)}
	}
	if lo == hi {
		return vm.heap.AllocInt(lo), nil
	}
	return vm.heap.AllocInt(lo + int64(rand.Intn(int(hi-lo+1)))), nil
}
