package jit

import (
	"fmt"
	"github.com/glintlang/glint/compiler"
)

// Verify simulates the net-effect table described in spec.md §4.4/§8 and
// reports whether instructions can ever underflow the operand stack, or
// reach OP_CALL/OP_RETURN without enough operands. It is the gate
// every jit pass's output must clear before compactAndRelink's result
// replaces what a Function runs.
//
// A single running depth can't describe branching code - the same bytes
// after a jump are reached with different depths depending on which edge
// got there. So this walks the instruction stream as a small control-flow
// graph: a block runs straight-line net-effect accumulation until it hits
// a jump, return, or end, then hands its exit depth to whichever block(s)
// that edge leads to. A block discovered twice with two different entry
// depths is itself a verification failure - it means some earlier rewrite
// left the code's two incoming paths disagreeing about what they leave on
// the stack.
func Verify(instructions compiler.Instructions) error {
	entryDepth := map[int]int{0: 0}
	queued := map[int]bool{0: true}
	queue := []int{0}

	for len(queue) > 0 {
		ip := queue[0]
		queue = queue[1:]
		depth := entryDepth[ip]

		for ip < len(instructions) {
			op := compiler.Opcode(instructions[ip])
			def, err := compiler.Get(op)
			if err != nil {
				return fmt.Errorf("jit verify: %w", err)
			}

			if op == compiler.OP_JUMP_FORWARD || op == compiler.OP_JUMP_BACKWARD ||
				op == compiler.OP_JUMP_IF_FALSE || op == compiler.OP_POP_JUMP_IF_TRUE {
				target := operandAt(instructions, ip)
				branchDepth := depth
				if op == compiler.OP_POP_JUMP_IF_TRUE {
					// Pops, decrefs, then decides - unlike OP_JUMP_IF_FALSE,
					// which only peeks (the compiler always follows it with
					// an explicit OP_POP on every arm).
					branchDepth--
					if branchDepth < 0 {
						return fmt.Errorf("jit verify: stack underflow at instruction %d (%s)", ip, def.Name)
					}
				}
				if err := propagate(entryDepth, target, branchDepth); err != nil {
					return err
				}
				if !queued[target] {
					queued[target] = true
					queue = append(queue, target)
				}
				if op == compiler.OP_JUMP_FORWARD || op == compiler.OP_JUMP_BACKWARD {
					ip = -1 // block ends; no fallthrough
					break
				}
				depth = branchDepth
				ip += width(op)
				continue
			}

			if op == compiler.OP_BREAK_LOOP || op == compiler.OP_CONTINUE_LOOP {
				var target int
				var err error
				if op == compiler.OP_BREAK_LOOP {
					target, err = compiler.FindLoopEnd(instructions, ip)
				} else {
					target, err = compiler.FindLoopStart(instructions, ip)
				}
				if err != nil {
					return fmt.Errorf("jit verify: %w", err)
				}
				if err := propagate(entryDepth, target, depth); err != nil {
					return err
				}
				if !queued[target] {
					queued[target] = true
					queue = append(queue, target)
				}
				ip = -1 // block ends; no fallthrough
				break
			}

			if op == compiler.OP_RETURN || op == compiler.OP_END {
				// OP_RETURN always pops - the compiler never emits it
				// without first pushing a value (a bare `return;` pushes
				// None), so an empty stack here means an earlier rewrite
				// broke that contract. OP_END has no such requirement:
				// frame.run's popOrNone treats an empty stack as an
				// implicit None, matching a program that ends without a
				// trailing expression.
				if op == compiler.OP_RETURN && depth < 1 {
					return fmt.Errorf("jit verify: %s at %d with empty stack", def.Name, ip)
				}
				ip = -1
				break
			}

			delta, err := netEffect(op, instructions, ip, depth)
			if err != nil {
				return err
			}
			depth += delta
			if depth < 0 {
				return fmt.Errorf("jit verify: stack underflow at instruction %d (%s)", ip, def.Name)
			}

			ip += width(op)

			// A fallthrough into an already-discovered block must agree
			// on depth, the same as a jump edge would.
			if queued[ip] {
				if err := propagate(entryDepth, ip, depth); err != nil {
					return err
				}
				ip = -1
				break
			}
		}

		if ip == -1 {
			continue
		}
	}

	return nil
}

// propagate records depth as the entry depth for block, or confirms it
// agrees with a depth recorded by an earlier edge.
func propagate(entryDepth map[int]int, block, depth int) error {
	if existing, ok := entryDepth[block]; ok {
		if existing != depth {
			return fmt.Errorf("jit verify: instruction %d reached with inconsistent stack depths (%d vs %d)", block, existing, depth)
		}
		return nil
	}
	entryDepth[block] = depth
	return nil
}

// netEffect returns the operand-stack delta of executing the
// non-control-flow opcode op at ip, given the stack depth before it -
// needed only to check OP_CALL has enough arguments plus a callee.
func netEffect(op compiler.Opcode, instructions compiler.Instructions, ip, depth int) (int, error) {
	switch {
	case op == compiler.OP_CONSTANT, op == compiler.OP_GET_GLOBAL, op == compiler.OP_GET_LOCAL, op == compiler.OP_INPUT:
		return 1, nil

	case op == compiler.OP_DEFINE_GLOBAL, op == compiler.OP_SET_GLOBAL,
		op == compiler.OP_DEFINE_LOCAL, op == compiler.OP_SET_LOCAL, op == compiler.OP_POP,
		op == compiler.OP_PRINT, op == compiler.OP_RANDINT:
		return -1, nil

	case isBinaryOp(op):
		return -1, nil

	case op == compiler.OP_NEGATE, op == compiler.OP_NOT, op == compiler.OP_SQRT, op == compiler.OP_NOP,
		op == compiler.OP_LOOP_START, op == compiler.OP_LOOP_END:
		return 0, nil

	case op == compiler.OP_SCOPE_EXIT:
		// Trims the frame's locals slice; the operand stack is untouched.
		return 0, nil

	case op == compiler.OP_BUILD_ARRAY:
		return 1 - operandAt(instructions, ip), nil

	case op == compiler.OP_GET_INDEX:
		return -1, nil

	case op == compiler.OP_SET_INDEX:
		return -3, nil

	case op == compiler.OP_MAKE_FUNCTION:
		return 1, nil

	case op == compiler.OP_CALL:
		n := operandAt(instructions, ip)
		if depth < n+1 {
			return 0, fmt.Errorf("jit verify: OP_CALL at %d needs %d operands, stack depth is %d", ip, n+1, depth)
		}
		return -n, nil

	case op == compiler.OP_COMPARE_AND_SWAP:
		return -3, nil
	}

	return 0, fmt.Errorf("jit verify: no net-effect rule for opcode %d at %d", op, ip)
}
