package jit

import (
	"encoding/binary"
	"github.com/glintlang/glint/compiler"
)

// width returns an opcode's total instruction width in bytes - 1 for a
// bare opcode, 3 for one carrying a big-endian uint16 operand. Unknown
// opcodes are treated as a single byte so a malformed stream can't wedge
// a scan into an infinite loop.
func width(op compiler.Opcode) int {
	return compiler.InstructionWidth(op)
}

// isOp reports whether the instruction at ip is op, bounds-checked.
func isOp(instructions compiler.Instructions, ip int, op compiler.Opcode) bool {
	return ip >= 0 && ip < len(instructions) && compiler.Opcode(instructions[ip]) == op
}

// operandAt decodes the 2-byte operand of the instruction at ip.
func operandAt(instructions compiler.Instructions, ip int) int {
	return int(binary.BigEndian.Uint16(instructions[ip+compiler.OPCODE_TOTAL_BYTES:]))
}

// overwriteWithConstant replaces instructions[start:end] in place with a
// single `OP_CONSTANT index` instruction followed by NOP padding out to
// the original width, preserving every later instruction's byte offset
// (and therefore every jump target) until the next compaction pass.
func overwriteWithConstant(instructions compiler.Instructions, start, end, index int) {
	instr, _ := compiler.AssembleInstruction(compiler.OP_CONSTANT, index)
	copy(instructions[start:start+len(instr)], instr)
	fillNOP(instructions, start+len(instr), end)
}

// fillNOP overwrites instructions[start:end] with single-byte OP_NOPs.
func fillNOP(instructions compiler.Instructions, start, end int) {
	for i := start; i < end; i++ {
		instructions[i] = byte(compiler.OP_NOP)
	}
}

func isBinaryOp(op compiler.Opcode) bool {
	switch op {
	case compiler.OP_ADD, compiler.OP_SUBTRACT, compiler.OP_MULTIPLY, compiler.OP_DIVIDE, compiler.OP_MOD,
		compiler.OP_EQUALITY, compiler.OP_NOT_EQUAL, compiler.OP_LESS, compiler.OP_LESS_EQUAL,
		compiler.OP_LARGER, compiler.OP_LARGER_EQUAL, compiler.OP_AND, compiler.OP_OR:
		return true
	}
	return false
}

// isJumpOp reports whether op carries an absolute byte offset into
// Instructions as its operand, rather than a constant/name/slot index -
// compaction must rewrite exactly these operands to track instructions
// shifting left. OP_BREAK_LOOP/OP_CONTINUE_LOOP are deliberately excluded:
// they carry no operand at all and find their target by scanning for the
// nearest OP_LOOP_START/OP_LOOP_END at runtime instead.
func isJumpOp(op compiler.Opcode) bool {
	switch op {
	case compiler.OP_JUMP_FORWARD, compiler.OP_JUMP_BACKWARD, compiler.OP_JUMP_IF_FALSE, compiler.OP_POP_JUMP_IF_TRUE:
		return true
	}
	return false
}
