package compiler

import (
	"encoding/binary"
	"fmt"
)

// Represents the definition of the `Bytecode`
// which will be created by the compiler and passed to
// the Virtual Machine (VM) to execute
//
// Fields:
//   - Instructions: An array of instructions defined by opcodes and
// 	   					their operands
//   - ConstantsPool: An array containing all the constant values from the source code.
//   - NameConstants: An array containing the names of every global variable and
//     function declared at the top level. OP_GET_GLOBAL/OP_SET_GLOBAL operands
//     index into this slice rather than the constants pool, so a variable's name
//     is never duplicated into the constants pool just to be looked up.
type Bytecode struct {
	Instructions  Instructions
	ConstantsPool []any
	NameConstants []string
}

type Opcode byte

type Instructions []byte

// OPCODE_TOTAL_BYTES is the width, in bytes, of the opcode byte itself -
// every instruction starts with exactly one opcode byte.
const OPCODE_TOTAL_BYTES = 1

// THREE_BYTE_INSTRUCTION_LENGTH is the total width of an instruction that
// carries a single 2-byte operand: one opcode byte followed by a 2-byte
// big-endian operand.
const THREE_BYTE_INSTRUCTION_LENGTH = 3

// OP_CONSTANT_TOTAL_BYTES is kept as an alias of THREE_BYTE_INSTRUCTION_LENGTH
// for call sites that specifically disassemble OP_CONSTANT.
const OP_CONSTANT_TOTAL_BYTES = THREE_BYTE_INSTRUCTION_LENGTH

// opcodes
// iota generates a distinct byte for each bytecode.
//
// Every opcode in this set has either zero operands (a single-byte
// instruction) or one operand encoded as a big-endian uint16 (a
// three-byte instruction: opcode + 2-byte operand). This bounds a glint
// program to 65535 constants, 65535 globals, 65535 stack slots per frame
// and a 65535-byte function body. That is not a hard constraint - widening
// every operand to uint32 would only require changing the widths below.
const (
	// OP_CONSTANT pushes ConstantsPool[operand] onto the stack.
	OP_CONSTANT Opcode = iota

	// Arithmetic and comparison binary operators. Each pops two operands
	// off the stack and pushes a single result.
	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_MOD
	OP_EQUALITY
	OP_NOT_EQUAL
	OP_LESS
	OP_LESS_EQUAL
	OP_LARGER
	OP_LARGER_EQUAL
	OP_AND
	OP_OR

	// Unary operators. Each pops one operand and pushes one result.
	OP_NEGATE
	OP_NOT

	// Stack management.
	OP_POP

	// Global variable access. The operand indexes into NameConstants.
	// OP_DEFINE_GLOBAL binds a name for the first time (a var/func
	// declaration); OP_SET_GLOBAL stores into an already-declared
	// binding (an assignment expression). The VM only needs to tell
	// these apart to reject assignment to an undeclared name.
	OP_DEFINE_GLOBAL
	OP_GET_GLOBAL
	OP_SET_GLOBAL

	// Local variable access. The operand is the variable's index into the
	// current frame's locals slice, which is kept apart from the operand
	// stack. OP_DEFINE_LOCAL
	// initializes a newly reserved slot; OP_SET_LOCAL stores into one
	// that's already initialized.
	OP_DEFINE_LOCAL
	OP_GET_LOCAL
	OP_SET_LOCAL

	// OP_SCOPE_EXIT drops the last `operand` entries of the frame's locals
	// slice when a block scope ends; the operand stack is untouched.
	OP_SCOPE_EXIT

	// Control flow. Operands, where present, are absolute byte offsets
	// into Instructions (not the instruction counts a relative scheme
	// would use - every jump-relinking pass in the jit package is built
	// around that, so it's kept rather than switched to be relative).
	//
	// OP_JUMP_FORWARD/OP_JUMP_BACKWARD are the unconditional jump, split
	// by static direction so disassembly and the JIT's CFG walk can tell
	// at a glance which way control moves. OP_JUMP_IF_FALSE peeks at the
	// condition and leaves it on the stack (the compiler follows it with an
	// OP_POP on both arms); OP_POP_JUMP_IF_TRUE pops it and decides. OP_JUMP_IF_FALSE
	// is the only conditional the compiler currently emits, left over
	// from when if/while/for all shared one generic jump pair.
	// OP_POP_JUMP_IF_TRUE is fully wired into the VM/JIT but, like
	// OP_COMPARE_AND_SWAP below, nothing in this compiler emits it yet.
	//
	// OP_LOOP_START/OP_LOOP_END bracket a loop body and dispatch as
	// no-ops; OP_BREAK_LOOP/OP_CONTINUE_LOOP carry no operand at all -
	// the interpreter finds their target by scanning the instruction
	// stream for the nearest enclosing marker pair (FindLoopStart/
	// FindLoopEnd below), exactly as a break/continue in the reference
	// runtime does.
	OP_JUMP_FORWARD
	OP_JUMP_BACKWARD
	OP_JUMP_IF_FALSE
	OP_POP_JUMP_IF_TRUE
	OP_LOOP_START
	OP_LOOP_END
	OP_BREAK_LOOP
	OP_CONTINUE_LOOP

	// Arrays. OP_BUILD_ARRAY pops `operand` elements and pushes a single
	// array object built from them (in source order). OP_GET_INDEX pops
	// an index then an array and pushes the element. OP_SET_INDEX pops a
	// value, an index, then an array, stores the value and pushes nothing.
	OP_BUILD_ARRAY
	OP_GET_INDEX
	OP_SET_INDEX

	// Functions. OP_MAKE_FUNCTION pushes a function object built from the
	// compiled FunctionProto stored at ConstantsPool[operand]. OP_CALL pops
	// `operand` arguments plus the callee and pushes the call's return
	// value. OP_RETURN pops the frame's return value and unwinds the
	// current call frame.
	OP_MAKE_FUNCTION
	OP_CALL
	OP_RETURN

	// Built-in library functions, bound directly to opcodes rather than
	// to callable objects in the global slots: print/input/randint/sqrt
	// are part of the language surface, not user-shadowable bindings.
	OP_PRINT
	OP_INPUT
	OP_RANDINT
	OP_SQRT

	// OP_END marks the end of the top-level instruction stream.
	OP_END

	// OP_NOP performs no operation. The JIT rewriter leaves one of these
	// behind wherever it erases an instruction in place (constant folding,
	// dead-code elimination) before a later compaction pass removes the
	// gap and recomputes jump offsets.
	OP_NOP

	// OP_COMPARE_AND_SWAP is JIT-only: never emitted by the compiler, only
	// installed by the jit package's pattern-replacement pass. It pops an
	// index j+1, an index i, then an array, and swaps array[i]/array[j+1]
	// in place when array[i] is the larger of the two. Refcount-neutral -
	// the elements just change position within the array they already
	// belong to.
	OP_COMPARE_AND_SWAP
)

// Represents a definition of an opcode.
// Fields:
//   - Name: The human-readable name for the opcode e.g "OP_CONSTANT"
//   - OperandWidths: The number of bytes each operand takes up.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_CONSTANT: {Name: "OP_CONSTANT", OperandWidths: []int{2}},

	OP_ADD:          {Name: "OP_ADD", OperandWidths: []int{}},
	OP_SUBTRACT:     {Name: "OP_SUBTRACT", OperandWidths: []int{}},
	OP_MULTIPLY:     {Name: "OP_MULTIPLY", OperandWidths: []int{}},
	OP_DIVIDE:       {Name: "OP_DIVIDE", OperandWidths: []int{}},
	OP_MOD:          {Name: "OP_MOD", OperandWidths: []int{}},
	OP_EQUALITY:     {Name: "OP_EQUALITY", OperandWidths: []int{}},
	OP_NOT_EQUAL:    {Name: "OP_NOT_EQUAL", OperandWidths: []int{}},
	OP_LESS:         {Name: "OP_LESS", OperandWidths: []int{}},
	OP_LESS_EQUAL:   {Name: "OP_LESS_EQUAL", OperandWidths: []int{}},
	OP_LARGER:       {Name: "OP_LARGER", OperandWidths: []int{}},
	OP_LARGER_EQUAL: {Name: "OP_LARGER_EQUAL", OperandWidths: []int{}},
	OP_AND:          {Name: "OP_AND", OperandWidths: []int{}},
	OP_OR:           {Name: "OP_OR", OperandWidths: []int{}},

	OP_NEGATE: {Name: "OP_NEGATE", OperandWidths: []int{}},
	OP_NOT:    {Name: "OP_NOT", OperandWidths: []int{}},

	OP_POP: {Name: "OP_POP", OperandWidths: []int{}},

	OP_DEFINE_GLOBAL: {Name: "OP_DEFINE_GLOBAL", OperandWidths: []int{2}},
	OP_GET_GLOBAL:    {Name: "OP_GET_GLOBAL", OperandWidths: []int{2}},
	OP_SET_GLOBAL:    {Name: "OP_SET_GLOBAL", OperandWidths: []int{2}},

	OP_DEFINE_LOCAL: {Name: "OP_DEFINE_LOCAL", OperandWidths: []int{2}},
	OP_GET_LOCAL:    {Name: "OP_GET_LOCAL", OperandWidths: []int{2}},
	OP_SET_LOCAL:    {Name: "OP_SET_LOCAL", OperandWidths: []int{2}},

	OP_SCOPE_EXIT: {Name: "OP_SCOPE_EXIT", OperandWidths: []int{2}},

	OP_JUMP_FORWARD:     {Name: "OP_JUMP_FORWARD", OperandWidths: []int{2}},
	OP_JUMP_BACKWARD:    {Name: "OP_JUMP_BACKWARD", OperandWidths: []int{2}},
	OP_JUMP_IF_FALSE:    {Name: "OP_JUMP_IF_FALSE", OperandWidths: []int{2}},
	OP_POP_JUMP_IF_TRUE: {Name: "OP_POP_JUMP_IF_TRUE", OperandWidths: []int{2}},
	OP_LOOP_START:       {Name: "OP_LOOP_START", OperandWidths: []int{}},
	OP_LOOP_END:         {Name: "OP_LOOP_END", OperandWidths: []int{}},
	OP_BREAK_LOOP:       {Name: "OP_BREAK_LOOP", OperandWidths: []int{}},
	OP_CONTINUE_LOOP:    {Name: "OP_CONTINUE_LOOP", OperandWidths: []int{}},

	OP_BUILD_ARRAY: {Name: "OP_BUILD_ARRAY", OperandWidths: []int{2}},
	OP_GET_INDEX:   {Name: "OP_GET_INDEX", OperandWidths: []int{}},
	OP_SET_INDEX:   {Name: "OP_SET_INDEX", OperandWidths: []int{}},

	OP_MAKE_FUNCTION: {Name: "OP_MAKE_FUNCTION", OperandWidths: []int{2}},
	OP_CALL:          {Name: "OP_CALL", OperandWidths: []int{2}},
	OP_RETURN:        {Name: "OP_RETURN", OperandWidths: []int{}},

	OP_PRINT:   {Name: "OP_PRINT", OperandWidths: []int{}},
	OP_INPUT:   {Name: "OP_INPUT", OperandWidths: []int{}},
	OP_RANDINT: {Name: "OP_RANDINT", OperandWidths: []int{}},
	OP_SQRT:    {Name: "OP_SQRT", OperandWidths: []int{}},

	OP_END: {Name: "OP_END", OperandWidths: []int{}},

	OP_NOP:              {Name: "OP_NOP", OperandWidths: []int{}},
	OP_COMPARE_AND_SWAP: {Name: "OP_COMPARE_AND_SWAP", OperandWidths: []int{}},
}

func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode: '%d' undefined", op)
	}
	return def, nil
}

// AssembleInstruction constructs a bytecode instruction from an opcode and
// its operands, encoded in Big-Endian order. Every instruction defined in
// this package is either one byte (no operand) or three bytes (a single
// uint16 operand), so callers can always step the instruction pointer by
// THREE_BYTE_INSTRUCTION_LENGTH after any operand-bearing opcode.
func AssembleInstruction(op Opcode, operands ...int) ([]byte, error) {
	def, err := Get(op)
	if err != nil {
		return nil, DeveloperError{Message: err.Error()}
	}
	if len(operands) != len(def.OperandWidths) {
		return nil, DeveloperError{Message: fmt.Sprintf("opcode %s expects %d operand(s), got %d", def.Name, len(def.OperandWidths), len(operands))}
	}

	instructionLength := OPCODE_TOTAL_BYTES
	for _, width := range def.OperandWidths {
		instructionLength += width
	}

	instruction := make([]byte, instructionLength)
	instruction[0] = byte(op)

	byteOffset := OPCODE_TOTAL_BYTES
	for i, o := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			binary.BigEndian.PutUint16(instruction[byteOffset:], uint16(o))
		}
		byteOffset += width
	}
	return instruction, nil
}

// MakeInstruction is a panic-free convenience wrapper over AssembleInstruction
// used by tests and tooling that don't need to distinguish error causes.
func MakeInstruction(op Opcode, operands ...int) []byte {
	instruction, err := AssembleInstruction(op, operands...)
	if err != nil {
		return []byte{}
	}
	return instruction
}

// DiassembleInstruction renders a single instruction (opcode byte plus any
// operand bytes) into a human-readable line such as
// "opcode: OP_CONSTANT, operand: 2, operand widths: 2 bytes".
func DiassembleInstruction(instruction []byte) (string, error) {
	if len(instruction) == 0 {
		return "", fmt.Errorf("diassemble: empty instruction")
	}
	op := Opcode(instruction[0])
	def, err := Get(op)
	if err != nil {
		return "", err
	}

	if len(def.OperandWidths) == 0 {
		return fmt.Sprintf("opcode: %s, operand: None, operand widths: 0 bytes", def.Name), nil
	}

	width := def.OperandWidths[0]
	if len(instruction) < OPCODE_TOTAL_BYTES+width {
		return "", fmt.Errorf("diassemble: instruction for %s is missing its operand bytes", def.Name)
	}

	var operand int
	switch width {
	case 2:
		operand = int(binary.BigEndian.Uint16(instruction[OPCODE_TOTAL_BYTES:]))
	}
	return fmt.Sprintf("opcode: %s, operand: %d, operand widths: %d bytes", def.Name, operand, width), nil
}

// InstructionWidth returns how many bytes the instruction encoded by op
// occupies: OPCODE_TOTAL_BYTES for a bare opcode, THREE_BYTE_INSTRUCTION_LENGTH
// for one carrying a uint16 operand. Anything that walks Instructions
// without decoding operand values - disassembly, the JIT, loop-marker
// scanning - steps by this rather than duplicating the width table.
func InstructionWidth(op Opcode) int {
	def, err := Get(op)
	if err != nil || len(def.OperandWidths) == 0 {
		return OPCODE_TOTAL_BYTES
	}
	return THREE_BYTE_INSTRUCTION_LENGTH
}

// FindLoopStart returns the byte offset of the OP_LOOP_START that lexically
// encloses the instruction at ip. It scans Instructions from the start,
// pushing onto a stack every OP_LOOP_START seen and popping on every
// OP_LOOP_END, and reports whatever is on top of that stack once the scan
// reaches ip. This only works because LOOP_START/LOOP_END markers are
// always well-nested in the linear instruction stream regardless of which
// path execution actually took to reach ip - a property of how they're
// emitted, not of any particular control-flow trace. OP_CONTINUE_LOOP uses
// this directly; OP_BREAK_LOOP uses it via FindLoopEnd.
func FindLoopStart(instructions Instructions, ip int) (int, error) {
	var open []int
	pos := 0
	for pos < ip && pos < len(instructions) {
		op := Opcode(instructions[pos])
		switch op {
		case OP_LOOP_START:
			open = append(open, pos)
		case OP_LOOP_END:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
		pos += InstructionWidth(op)
	}
	if len(open) == 0 {
		return 0, fmt.Errorf("compiler: no enclosing loop at instruction %d", ip)
	}
	return open[len(open)-1], nil
}

// LoopEndFrom returns the byte offset of the OP_LOOP_END that closes the
// OP_LOOP_START already known to sit at startIP.
func LoopEndFrom(instructions Instructions, startIP int) (int, error) {
	depth := 0
	pos := startIP
	for pos < len(instructions) {
		op := Opcode(instructions[pos])
		switch op {
		case OP_LOOP_START:
			depth++
		case OP_LOOP_END:
			depth--
			if depth == 0 {
				return pos, nil
			}
		}
		pos += InstructionWidth(op)
	}
	return 0, fmt.Errorf("compiler: no matching loop end for loop starting at %d", startIP)
}

// FindLoopEnd returns the byte offset of the OP_LOOP_END that closes the
// loop lexically enclosing ip. OP_BREAK_LOOP uses this to find where to
// jump without ever having had a compile-time-patched operand of its own.
func FindLoopEnd(instructions Instructions, ip int) (int, error) {
	start, err := FindLoopStart(instructions, ip)
	if err != nil {
		return 0, err
	}
	return LoopEndFrom(instructions, start)
}
