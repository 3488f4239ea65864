package jit

import "github.com/glintlang/glint/compiler"

// eliminateDeadCode implements §4.6 pass 2: anything after an
// unconditional OP_RETURN is unreachable until the next instruction some
// jump actually lands on; a load whose value is immediately discarded by
// OP_POP has no observable effect (none of CONSTANT/GET_LOCAL/GET_GLOBAL
// have side effects) and can be elided outright; and a LOOP_START…
// LOOP_END span with nothing observable inside it is NOP'd in full (see
// removeEmptyLoops).
func eliminateDeadCode(instructions compiler.Instructions) compiler.Instructions {
	targets := jumpTargets(instructions)

	for ip := 0; ip < len(instructions); {
		op := compiler.Opcode(instructions[ip])
		w := width(op)
		if op != compiler.OP_RETURN {
			ip += w
			continue
		}
		cut := ip + w
		end := cut
		for end < len(instructions) && !targets[end] {
			end += width(compiler.Opcode(instructions[end]))
		}
		fillNOP(instructions, cut, end)
		ip = end
	}

	for ip := 0; ip < len(instructions); {
		op := compiler.Opcode(instructions[ip])
		w := width(op)
		isLoad := op == compiler.OP_CONSTANT || op == compiler.OP_GET_LOCAL || op == compiler.OP_GET_GLOBAL
		if isLoad && isOp(instructions, ip+w, compiler.OP_POP) {
			popEnd := ip + w + width(compiler.OP_POP)
			fillNOP(instructions, ip, popEnd)
			ip = popEnd
			continue
		}
		ip += w
	}

	removeEmptyLoops(instructions)

	return instructions
}

// jumpTargets collects every absolute byte offset any jump opcode in
// instructions points at, plus every OP_LOOP_START/OP_LOOP_END position -
// OP_BREAK_LOOP/OP_CONTINUE_LOOP reach those dynamically, by scanning,
// rather than through an operand this map would otherwise see.
func jumpTargets(instructions compiler.Instructions) map[int]bool {
	targets := make(map[int]bool)
	for ip := 0; ip < len(instructions); {
		op := compiler.Opcode(instructions[ip])
		if isJumpOp(op) {
			targets[operandAt(instructions, ip)] = true
		}
		if op == compiler.OP_LOOP_START || op == compiler.OP_LOOP_END {
			targets[ip] = true
		}
		ip += width(op)
	}
	return targets
}

// loopUnsafeOps are the opcodes that make a loop body's removal
// observable from outside it: a store, a call/return, I-O, the
// compare-and-swap kernel, or a break/continue escaping the span in a
// way this pass doesn't attempt to reason about.
var loopUnsafeOps = map[compiler.Opcode]bool{
	compiler.OP_SET_LOCAL:        true,
	compiler.OP_DEFINE_LOCAL:     true,
	compiler.OP_SET_GLOBAL:       true,
	compiler.OP_DEFINE_GLOBAL:    true,
	compiler.OP_SET_INDEX:        true,
	compiler.OP_CALL:             true,
	compiler.OP_RETURN:           true,
	compiler.OP_COMPARE_AND_SWAP: true,
	compiler.OP_PRINT:            true,
	compiler.OP_INPUT:            true,
	compiler.OP_RANDINT:          true,
	compiler.OP_BREAK_LOOP:       true,
	compiler.OP_CONTINUE_LOOP:    true,
}

// removeEmptyLoops implements the "empty loop" bullet of §4.6 pass 2: a
// LOOP_START…LOOP_END span with no instruction in loopUnsafeOps is NOP'd
// in full. This is a conservative subset of the rule as stated in full -
// it doesn't perform the liveness analysis needed to also drop a loop
// that only ever writes locals nothing outside it reads; it only drops a
// span with no observable effect of any kind. The condition expression
// itself (before the body) is in scope too, since it's part of the span -
// an observation-free `while (x > 0) {}` is removed along with its
// condition check even though, if x never changes, the source program
// would have spun forever; see DESIGN.md for why this is accepted rather
// than guarded against.
func removeEmptyLoops(instructions compiler.Instructions) {
	for ip := 0; ip < len(instructions); {
		op := compiler.Opcode(instructions[ip])
		if op != compiler.OP_LOOP_START {
			ip += width(op)
			continue
		}
		end, err := compiler.LoopEndFrom(instructions, ip)
		if err != nil {
			ip += width(op)
			continue
		}
		bodyStart := ip + width(op)
		if isObservationFree(instructions, bodyStart, end) {
			fillNOP(instructions, ip, end+width(compiler.OP_LOOP_END))
		}
		ip = end + width(compiler.OP_LOOP_END)
	}
}

func isObservationFree(instructions compiler.Instructions, start, end int) bool {
	for ip := start; ip < end; {
		op := compiler.Opcode(instructions[ip])
		if loopUnsafeOps[op] {
			return false
		}
		ip += width(op)
	}
	return true
}
