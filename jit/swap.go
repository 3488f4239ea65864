package jit

import "github.com/glintlang/glint/compiler"

// bodyAllowList is every opcode the compare-and-swap body scan accepts:
// array/local bookkeeping with no observable effect outside the array
// and the temporaries the if-body itself introduces. Anything else
// (calls, prints, randint/sqrt, nested jumps, builds, returns) means the
// span isn't a pure swap and the match is abandoned.
var bodyAllowList = map[compiler.Opcode]bool{
	compiler.OP_GET_LOCAL:    true,
	compiler.OP_SET_LOCAL:    true,
	compiler.OP_DEFINE_LOCAL: true,
	compiler.OP_CONSTANT:     true,
	compiler.OP_ADD:          true,
	compiler.OP_GET_INDEX:    true,
	compiler.OP_SET_INDEX:    true,
	compiler.OP_SCOPE_EXIT:   true,
	compiler.OP_POP:          true,
	compiler.OP_NOP:          true,
}

// rewriteCompareAndSwap implements §4.6 pass 3: find
//
//	GET_LOCAL arr; GET_LOCAL j; GET_INDEX;
//	GET_LOCAL arr; GET_LOCAL j; CONSTANT 1; ADD; GET_INDEX;
//	OP_LARGER; JUMP_IF_FALSE join
//
// i.e. the compiled form of `if (arr[j] > arr[j+1])`, immediately
// followed by the conventional OP_POP that discards the condition on
// the taken branch. If the span from there to `join` only ever touches
// arr, j, or locals declared inside the if-body (the swap's temp), and
// nothing else in the function jumps into the middle of it, the whole
// condition+body+join span collapses to the six-instruction kernel:
//
//	GET_LOCAL arr; GET_LOCAL j; GET_LOCAL j; CONSTANT 1; ADD; COMPARE_AND_SWAP
//
// A function that doesn't contain this exact idiom is returned
// unchanged - this pass only ever fires on the canonical bubble-sort
// inner loop it was grounded on (spec.md §8 scenario 4), never
// approximates a partial match.
func rewriteCompareAndSwap(instructions compiler.Instructions, constants []any) compiler.Instructions {
	for ip := 0; ip+30 <= len(instructions); {
		end, arrSlot, jSlot, oneIndex, ok := matchCompareCondition(instructions, ip)
		if !ok || !isLiteralOne(constants, oneIndex) {
			ip += width(compiler.Opcode(instructions[ip]))
			continue
		}

		join := operandAt(instructions, end-width(compiler.OP_JUMP_IF_FALSE))
		if !isOp(instructions, end, compiler.OP_POP) {
			ip += width(compiler.Opcode(instructions[ip]))
			continue
		}
		bodyStart := end + width(compiler.OP_POP)

		if bodyIsPureSwap(instructions, bodyStart, join, arrSlot, jSlot) &&
			!anyJumpTargetsWithin(instructions, ip, join) {
			installCompareAndSwapKernel(instructions, ip, join, arrSlot, jSlot, oneIndex)
		}

		ip = join
	}
	return instructions
}

// matchCompareCondition checks for the 10-instruction `arr[j] >
// arr[j+1]; JUMP_IF_FALSE` shape starting at ip, with both GET_LOCAL
// pairs naming the same two slots. It returns the offset just past the
// JUMP_IF_FALSE, the arr/j slots, and the constants-pool index holding
// the literal 1.
func matchCompareCondition(instructions compiler.Instructions, ip int) (end, arrSlot, jSlot, oneIndex int, ok bool) {
	want := []compiler.Opcode{
		compiler.OP_GET_LOCAL, compiler.OP_GET_LOCAL, compiler.OP_GET_INDEX,
		compiler.OP_GET_LOCAL, compiler.OP_GET_LOCAL, compiler.OP_CONSTANT, compiler.OP_ADD, compiler.OP_GET_INDEX,
		compiler.OP_LARGER, compiler.OP_JUMP_IF_FALSE,
	}
	at := ip
	for _, op := range want {
		if !isOp(instructions, at, op) {
			return 0, 0, 0, 0, false
		}
		at += width(op)
	}

	firstArr := operandAt(instructions, ip)
	firstJ := operandAt(instructions, ip+width(compiler.OP_GET_LOCAL))
	secondArr := operandAt(instructions, ip+2*width(compiler.OP_GET_LOCAL)+width(compiler.OP_GET_INDEX))
	secondJ := operandAt(instructions, ip+3*width(compiler.OP_GET_LOCAL)+width(compiler.OP_GET_INDEX))
	if firstArr != secondArr || firstJ != secondJ {
		return 0, 0, 0, 0, false
	}
	oneIdx := operandAt(instructions, ip+4*width(compiler.OP_GET_LOCAL)+width(compiler.OP_GET_INDEX))
	return at, firstArr, firstJ, oneIdx, true
}

func isLiteralOne(constants []any, index int) bool {
	if index < 0 || index >= len(constants) {
		return false
	}
	return isOne(constants[index])
}

// bodyIsPureSwap reports whether instructions[bodyStart:join) only ever
// reads/writes arrSlot, jSlot, or a slot the body itself introduces
// (necessarily numbered above both, since the compiler assigns slots in
// declaration order).
func bodyIsPureSwap(instructions compiler.Instructions, bodyStart, join, arrSlot, jSlot int) bool {
	tempBase := arrSlot
	if jSlot > tempBase {
		tempBase = jSlot
	}
	for ip := bodyStart; ip < join; {
		if ip >= len(instructions) {
			return false
		}
		op := compiler.Opcode(instructions[ip])
		if !bodyAllowList[op] {
			return false
		}
		switch op {
		case compiler.OP_GET_LOCAL, compiler.OP_SET_LOCAL, compiler.OP_DEFINE_LOCAL:
			slot := operandAt(instructions, ip)
			if slot != arrSlot && slot != jSlot && slot <= tempBase {
				return false
			}
		}
		ip += width(op)
	}
	return true
}

// anyJumpTargetsWithin reports whether some jump in instructions lands
// strictly inside (from, to) - if so, the span isn't an isolated
// straight-line block and replacing it would strand that jump.
func anyJumpTargetsWithin(instructions compiler.Instructions, from, to int) bool {
	for ip := 0; ip < len(instructions); {
		op := compiler.Opcode(instructions[ip])
		if isJumpOp(op) {
			target := operandAt(instructions, ip)
			if target > from && target < to {
				return true
			}
		}
		ip += width(op)
	}
	return false
}

// installCompareAndSwapKernel overwrites instructions[from:to) with the
// six-instruction kernel padded out with NOPs to the original width.
func installCompareAndSwapKernel(instructions compiler.Instructions, from, to, arrSlot, jSlot, oneIndex int) {
	kernel := compiler.Instructions{}
	kernel = append(kernel, compiler.MakeInstruction(compiler.OP_GET_LOCAL, arrSlot)...)
	kernel = append(kernel, compiler.MakeInstruction(compiler.OP_GET_LOCAL, jSlot)...)
	kernel = append(kernel, compiler.MakeInstruction(compiler.OP_GET_LOCAL, jSlot)...)
	kernel = append(kernel, compiler.MakeInstruction(compiler.OP_CONSTANT, oneIndex)...)
	kernel = append(kernel, compiler.MakeInstruction(compiler.OP_ADD)...)
	kernel = append(kernel, compiler.MakeInstruction(compiler.OP_COMPARE_AND_SWAP)...)

	copy(instructions[from:from+len(kernel)], kernel)
	fillNOP(instructions, from+len(kernel), to)
}
