package vm

import (
	"encoding/binary"
	"fmt"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/decimal"
	"github.com/glintlang/glint/jit"
	"github.com/glintlang/glint/object"
	"strconv"
)

// Frame is one call's worth of execution state: its own instruction
// pointer, operand stack and local-variable slots. A function call
// recursively runs a fresh Frame over the callee's FunctionProto, the
// same shape as frame_create/frame_execute in the reference runtime -
// Go's own call stack stands in for the reference implementation's
// manually managed Frame struct.
type Frame struct {
	vm           *VM
	instructions compiler.Instructions
	constants    []any
	names        []string

	locals []*object.Object
	stack  Stack
	ip     int
}

func newFrame(vm *VM, instructions compiler.Instructions, constants []any, names []string, locals []*object.Object) *Frame {
	return &Frame{
		vm:           vm,
		instructions: instructions,
		constants:    constants,
		names:        names,
		locals:       locals,
	}
}

// run executes the frame's instructions until it hits OP_RETURN or falls
// off the end of the stream (OP_END / no more bytes), returning the
// value produced.
func (f *Frame) run() (*object.Object, error) {
	for f.ip < len(f.instructions) {
		op := compiler.Opcode(f.instructions[f.ip])

		switch op {
		case compiler.OP_END:
			return f.popOrNone(), nil

		case compiler.OP_CONSTANT:
			value := f.constants[f.readOperand()]
			f.stack.Push(f.vm.objectFromConstant(value))

		case compiler.OP_ADD, compiler.OP_SUBTRACT, compiler.OP_MULTIPLY, compiler.OP_DIVIDE, compiler.OP_MOD:
			if err := f.execArithmetic(op); err != nil {
				return nil, err
			}

		case compiler.OP_EQUALITY, compiler.OP_NOT_EQUAL, compiler.OP_LESS, compiler.OP_LESS_EQUAL,
			compiler.OP_LARGER, compiler.OP_LARGER_EQUAL:
			if err := f.execComparison(op); err != nil {
				return nil, err
			}

		case compiler.OP_AND, compiler.OP_OR:
			right, _ := f.stack.Pop()
			left, _ := f.stack.Pop()
			var result bool
			if op == compiler.OP_AND {
				result = object.IsTruthy(left) && object.IsTruthy(right)
			} else {
				result = object.IsTruthy(left) || object.IsTruthy(right)
			}
			object.DecRef(left)
			object.DecRef(right)
			f.stack.Push(object.NewBool(result))

		case compiler.OP_NEGATE:
			operand, _ := f.stack.Pop()
			result, err := negate(operand)
			if err != nil {
				return nil, err
			}
			object.DecRef(operand)
			f.stack.Push(result)

		case compiler.OP_NOT:
			operand, _ := f.stack.Pop()
			result := object.NewBool(!object.IsTruthy(operand))
			object.DecRef(operand)
			f.stack.Push(result)

		case compiler.OP_POP:
			value, _ := f.stack.Pop()
			object.DecRef(value)

		case compiler.OP_DEFINE_GLOBAL, compiler.OP_SET_GLOBAL:
			index := f.readOperand()
			value, _ := f.stack.Pop()
			f.vm.setGlobal(index, value)

		case compiler.OP_GET_GLOBAL:
			index := f.readOperand()
			value, err := f.vm.getGlobal(index)
			if err != nil {
				return nil, err
			}
			object.IncRef(value)
			f.stack.Push(value)

		case compiler.OP_DEFINE_LOCAL, compiler.OP_SET_LOCAL:
			slot := f.readOperand()
			value, _ := f.stack.Pop()
			f.setLocal(slot, value)

		case compiler.OP_GET_LOCAL:
			slot := f.readOperand()
			if slot >= len(f.locals) {
				return nil, RuntimeError{Message: fmt.Sprintf("local slot %d out of range", slot)}
			}
			object.IncRef(f.locals[slot])
			f.stack.Push(f.locals[slot])

		case compiler.OP_SCOPE_EXIT:
			count := f.readOperand()
			f.popLocals(count)

		case compiler.OP_JUMP_FORWARD, compiler.OP_JUMP_BACKWARD:
			f.ip = f.readOperand()
			continue

		case compiler.OP_JUMP_IF_FALSE:
			target := f.readOperand()
			top, ok := f.stack.Peek()
			if ok && !object.IsTruthy(top) {
				f.ip = target
				continue
			}

		case compiler.OP_POP_JUMP_IF_TRUE:
			target := f.readOperand()
			top, _ := f.stack.Pop()
			truthy := object.IsTruthy(top)
			object.DecRef(top)
			if truthy {
				f.ip = target
				continue
			}

		case compiler.OP_LOOP_START, compiler.OP_LOOP_END:
			// No-op anchors: mark a loop body's bounds for OP_BREAK_LOOP/
			// OP_CONTINUE_LOOP and the JIT's empty-loop elimination pass.

		case compiler.OP_BREAK_LOOP:
			target, err := compiler.FindLoopEnd(f.instructions, f.ip)
			if err != nil {
				return nil, RuntimeError{Message: err.Error()}
			}
			f.ip = target
			continue

		case compiler.OP_CONTINUE_LOOP:
			target, err := compiler.FindLoopStart(f.instructions, f.ip)
			if err != nil {
				return nil, RuntimeError{Message: err.Error()}
			}
			f.ip = target
			continue

		case compiler.OP_BUILD_ARRAY:
			count := f.readOperand()
			elements := make([]*object.Object, count)
			for i := count - 1; i >= 0; i-- {
				value, _ := f.stack.Pop()
				elements[i] = value
				object.DecRef(value)
			}
			f.stack.Push(f.vm.heap.AllocArray(elements))

		case compiler.OP_GET_INDEX:
			index, _ := f.stack.Pop()
			array, _ := f.stack.Pop()
			result, err := arrayGet(array, index)
			object.DecRef(index)
			object.DecRef(array)
			if err != nil {
				return nil, err
			}
			f.stack.Push(result)

		case compiler.OP_SET_INDEX:
			value, _ := f.stack.Pop()
			index, _ := f.stack.Pop()
			array, _ := f.stack.Pop()
			if err := arraySet(array, index, value); err != nil {
				return nil, err
			}
			object.DecRef(value)
			object.DecRef(index)
			object.DecRef(array)

		case compiler.OP_MAKE_FUNCTION:
			index := f.readOperand()
			proto, ok := f.constants[index].(compiler.FunctionProto)
			if !ok {
				return nil, RuntimeError{Message: "OP_MAKE_FUNCTION constant is not a function prototype"}
			}
			if f.vm.jitEnabled {
				if optimized, changed := jit.Optimize(proto.Instructions, f.constants); changed {
					proto.Instructions = optimized
				}
			}
			f.stack.Push(f.vm.heap.AllocFunction(&proto))

		case compiler.OP_CALL:
			argc := f.readOperand()
			result, err := f.execCall(argc)
			if err != nil {
				return nil, err
			}
			f.stack.Push(result)

		case compiler.OP_RETURN:
			value, _ := f.stack.Pop()
			return value, nil

		case compiler.OP_PRINT:
			value, _ := f.stack.Pop()
			f.vm.builtinPrint(value)
			object.DecRef(value)

		case compiler.OP_INPUT:
			f.stack.Push(f.vm.builtinInput())

		case compiler.OP_RANDINT:
			high, _ := f.stack.Pop()
			low, _ := f.stack.Pop()
			result, err := f.vm.builtinRandint(low, high)
			object.DecRef(low)
			object.DecRef(high)
			if err != nil {
				return nil, err
			}
			f.stack.Push(result)

		case compiler.OP_SQRT:
			value, _ := f.stack.Pop()
			result, err := builtinSqrt(value)
			object.DecRef(value)
			if err != nil {
				return nil, err
			}
			f.stack.Push(result)

		case compiler.OP_NOP:
			// Left behind by the JIT wherever it erases an instruction in
			// place; a later compaction pass removes these entirely, but
			// any that survive are legal no-ops.

		case compiler.OP_COMPARE_AND_SWAP:
			j1, _ := f.stack.Pop()
			i, _ := f.stack.Pop()
			array, _ := f.stack.Pop()
			err := compareAndSwap(array, i, j1)
			object.DecRef(j1)
			object.DecRef(i)
			object.DecRef(array)
			if err != nil {
				return nil, err
			}

		default:
			return nil, RuntimeError{Message: fmt.Sprintf("unknown opcode %v at ip %d", op, f.ip)}
		}

		f.ip += f.instructionWidth(op)
	}

	return f.popOrNone(), nil
}

// instructionWidth returns how far to advance the instruction pointer
// for the opcode just executed - 1 byte for a bare opcode, 3 for an
// opcode plus its big-endian uint16 operand. A taken jump sets f.ip
// directly and `continue`s before reaching this; a conditional jump that
// falls through is advanced by this width like any other instruction.
func (f *Frame) instructionWidth(op compiler.Opcode) int {
	return compiler.InstructionWidth(op)
}

// readOperand decodes the 2-byte big-endian operand of the instruction
// at the current instruction pointer.
func (f *Frame) readOperand() int {
	start := f.ip + compiler.OPCODE_TOTAL_BYTES
	return int(binary.BigEndian.Uint16(f.instructions[start:]))
}

func (f *Frame) popOrNone() *object.Object {
	if value, ok := f.stack.Pop(); ok {
		return value
	}
	return f.vm.none
}

func (f *Frame) setLocal(slot int, value *object.Object) {
	for slot >= len(f.locals) {
		f.locals = append(f.locals, f.vm.none)
		object.IncRef(f.vm.none)
	}
	object.DecRef(f.locals[slot])
	f.locals[slot] = value
}

func (f *Frame) popLocals(count int) {
	if count > len(f.locals) {
		count = len(f.locals)
	}
	for i := 0; i < count; i++ {
		object.DecRef(f.locals[len(f.locals)-1])
		f.locals = f.locals[:len(f.locals)-1]
	}
}

func (f *Frame) execCall(argc int) (*object.Object, error) {
	args := make([]*object.Object, argc)
	for i := argc - 1; i >= 0; i-- {
		value, _ := f.stack.Pop()
		args[i] = value
	}
	callee, _ := f.stack.Pop()
	defer func() {
		object.DecRef(callee)
		for _, arg := range args {
			object.DecRef(arg)
		}
	}()

	switch callee.Type {
	case object.FUNCTION:
		locals := make([]*object.Object, len(args))
		copy(locals, args)
		for _, l := range locals {
			object.IncRef(l)
		}
		callFrame := newFrame(f.vm, callee.Code.Instructions, f.constants, f.names, locals)
		return callFrame.run()
	case object.NATIVE_FUNCTION:
		return callee.NativeFunc(args)
	default:
		return nil, RuntimeError{Message: fmt.Sprintf("value of type '%s' is not callable", callee.Type)}
	}
}

// --- arithmetic / comparison ---

func (f *Frame) execArithmetic(op compiler.Opcode) error {
	right, _ := f.stack.Pop()
	left, _ := f.stack.Pop()
	defer func() {
		object.DecRef(left)
		object.DecRef(right)
	}()

	result, err := applyArithmetic(op, left, right)
	if err != nil {
		return err
	}
	f.stack.Push(result)
	return nil
}

func applyArithmetic(op compiler.Opcode, left, right *object.Object) (*object.Object, error) {
	if left.Type == object.INT && right.Type == object.INT {
		a, b := left.IntValue, right.IntValue
		switch op {
		case compiler.OP_ADD:
			return object.NewInt(a + b), nil
		case compiler.OP_SUBTRACT:
			return object.NewInt(a - b), nil
		case compiler.OP_MULTIPLY:
			return object.NewInt(a * b), nil
		case compiler.OP_DIVIDE:
			if b == 0 {
				return object.NewFloat(decimal.Div(intToDecimal(a), intToDecimal(b))), nil
			}
			return object.NewInt(a / b), nil
		case compiler.OP_MOD:
			if b == 0 {
				return object.NewFloat(decimal.Mod(intToDecimal(a), intToDecimal(b))), nil
			}
			return object.NewInt(a % b), nil
		}
	}

	if isNumeric(left) && isNumeric(right) {
		a, b := toDecimal(left), toDecimal(right)
		switch op {
		case compiler.OP_ADD:
			return object.NewFloat(decimal.Add(a, b)), nil
		case compiler.OP_SUBTRACT:
			return object.NewFloat(decimal.Sub(a, b)), nil
		case compiler.OP_MULTIPLY:
			return object.NewFloat(decimal.Mul(a, b)), nil
		case compiler.OP_DIVIDE:
			return object.NewFloat(decimal.Div(a, b)), nil
		case compiler.OP_MOD:
			return object.NewFloat(decimal.Mod(a, b)), nil
		}
	}

	return nil, RuntimeError{Message: fmt.Sprintf("unsupported operand types for arithmetic: %s, %s", left.Type, right.Type)}
}

func (f *Frame) execComparison(op compiler.Opcode) error {
	right, _ := f.stack.Pop()
	left, _ := f.stack.Pop()
	result, err := applyComparison(op, left, right)
	object.DecRef(left)
	object.DecRef(right)
	if err != nil {
		return err
	}
	f.stack.Push(object.NewBool(result))
	return nil
}

func applyComparison(op compiler.Opcode, left, right *object.Object) (bool, error) {
	if isNumeric(left) && isNumeric(right) {
		a, b := toDecimal(left), toDecimal(right)
		switch op {
		case compiler.OP_EQUALITY:
			return decimal.Equal(a, b), nil
		case compiler.OP_NOT_EQUAL:
			return !decimal.Equal(a, b), nil
		case compiler.OP_LESS:
			return decimal.Less(a, b), nil
		case compiler.OP_LESS_EQUAL:
			return decimal.LessEqual(a, b), nil
		case compiler.OP_LARGER:
			return decimal.Greater(a, b), nil
		case compiler.OP_LARGER_EQUAL:
			return decimal.GreaterEqual(a, b), nil
		}
	}

	if left.Type == object.BOOL && right.Type == object.BOOL {
		switch op {
		case compiler.OP_EQUALITY:
			return left.BoolValue == right.BoolValue, nil
		case compiler.OP_NOT_EQUAL:
			return left.BoolValue != right.BoolValue, nil
		}
	}

	switch op {
	case compiler.OP_EQUALITY:
		return left.Type == object.NONE && right.Type == object.NONE, nil
	case compiler.OP_NOT_EQUAL:
		return !(left.Type == object.NONE && right.Type == object.NONE), nil
	}

	return false, RuntimeError{Message: fmt.Sprintf("unsupported operand types for comparison: %s, %s", left.Type, right.Type)}
}

func negate(operand *object.Object) (*object.Object, error) {
	switch operand.Type {
	case object.INT:
		return object.NewInt(-operand.IntValue), nil
	case object.FLOAT:
		return object.NewFloat(decimal.Neg(operand.FloatValue)), nil
	default:
		return nil, RuntimeError{Message: fmt.Sprintf("unsupported operand type for negation: %s", operand.Type)}
	}
}

func isNumeric(o *object.Object) bool {
	return o.Type == object.INT || o.Type == object.FLOAT
}

func toDecimal(o *object.Object) decimal.Decimal {
	if o.Type == object.FLOAT {
		return o.FloatValue
	}
	return intToDecimal(o.IntValue)
}

func intToDecimal(v int64) decimal.Decimal {
	return decimal.MustNew(strconv.FormatInt(v, 10))
}

// --- arrays ---

func arrayGet(array, index *object.Object) (*object.Object, error) {
	if array.Type != object.ARRAY {
		return nil, RuntimeError{Message: fmt.Sprintf("cannot index into a value of type '%s'", array.Type)}
	}
	if index.Type != object.INT {
		return nil, RuntimeError{Message: "array index must be an int"}
	}
	i := index.IntValue
	if i < 0 || i >= int64(len(array.Array)) {
		return nil, RuntimeError{Message: fmt.Sprintf("array index %d out of range (length %d)", i, len(array.Array))}
	}
	return array.Array[i], nil
}

// compareAndSwap implements the JIT-only COMPARE_AND_SWAP kernel: swap
// array[i] and array[j1] in place when array[i] is the larger of the two.
// Refcount-neutral - the two elements trade slots within an array they
// already belong to, so no IncRef/DecRef is needed.
func compareAndSwap(array, i, j1 *object.Object) error {
	if array.Type != object.ARRAY {
		return RuntimeError{Message: fmt.Sprintf("compare-and-swap target is not an array: '%s'", array.Type)}
	}
	if i.Type != object.INT || j1.Type != object.INT {
		return RuntimeError{Message: "compare-and-swap indices must be ints"}
	}
	a, b := i.IntValue, j1.IntValue
	if a < 0 || a >= int64(len(array.Array)) || b < 0 || b >= int64(len(array.Array)) {
		return RuntimeError{Message: "compare-and-swap index out of range"}
	}
	left, right := array.Array[a], array.Array[b]
	if !isNumeric(left) || !isNumeric(right) {
		return RuntimeError{Message: "compare-and-swap requires numeric array elements"}
	}
	greater, err := applyComparison(compiler.OP_LARGER, left, right)
	if err != nil {
		return err
	}
	if greater {
		array.Array[a], array.Array[b] = right, left
	}
	return nil
}

func arraySet(array, index, value *object.Object) error {
	if array.Type != object.ARRAY {
		return RuntimeError{Message: fmt.Sprintf("cannot index into a value of type '%s'", array.Type)}
	}
	if index.Type != object.INT {
		return RuntimeError{Message: "array index must be an int"}
	}
	i := index.IntValue
	if i < 0 || i >= int64(len(array.Array)) {
		return RuntimeError{Message: fmt.Sprintf("array index %d out of range (length %d)", i, len(array.Array))}
	}
	object.DecRef(array.Array[i])
	object.IncRef(value)
	array.Array[i] = value
	return nil
}

// --- builtins that need runtime state beyond a single value ---

func builtinSqrt(value *object.Object) (*object.Object, error) {
	if !isNumeric(value) {
		return nil, RuntimeError{Message: fmt.Sprintf("'sqrt' expects a numeric argument, got '%s'", value.Type)}
	}
	return object.NewFloat(decimal.Sqrt(toDecimal(value))), nil
}
