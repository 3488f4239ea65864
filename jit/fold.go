package jit

import (
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/decimal"
	"strconv"
)

// foldConstants applies constant folding and a handful of algebraic-
// identity peepholes to a fixed point: fold a `CONSTANT a; CONSTANT b;
// <binary op>` (or `CONSTANT a; <unary op>`) into a single `CONSTANT` of
// the computed result, and collapse `0+x`/`1*x` to the load of x and
// `0*x` to the constant 0. Only these constant-first forms are matched;
// `x+0`, `x*1` and `x*0`, where the load comes first, are left unchanged.
// A `CONSTANT c; JUMP_IF_FALSE` with a compile-time-known c becomes an
// unconditional jump or is erased (see tryFoldBranch).
//
// The constants pool is read-only here: rather than appending freshly
// computed values to it (which would require threading a mutated pool
// back through every frame that shares it, including recursive calls in
// flight), a fold is only applied when its result already has a match
// somewhere in the existing pool - constant folding degrades to a no-op,
// never an unsafe rewrite, when no equal constant is available to point
// at. See DESIGN.md for why this tradeoff was made over plumbing a
// mutable pool through the call machinery.
func foldConstants(instructions compiler.Instructions, constants []any) compiler.Instructions {
	changed := true
	for changed {
		changed = false
		ip := 0
		for ip < len(instructions) {
			op := compiler.Opcode(instructions[ip])
			width := width(op)

			if tryFoldBinary(instructions, constants, ip) ||
				tryFoldUnary(instructions, constants, ip) ||
				tryFoldIdentity(instructions, constants, ip) ||
				tryFoldBranch(instructions, constants, ip) {
				changed = true
			}

			ip += width
		}
	}
	return instructions
}

// tryFoldBinary matches `CONSTANT a; CONSTANT b; <binary op>` and, when
// fold(a,b,op) has a home in the constants pool, overwrites the window
// in place with `CONSTANT result` followed by NOPs padding it back out
// to the original width.
func tryFoldBinary(instructions compiler.Instructions, constants []any, ip int) bool {
	if !isOp(instructions, ip, compiler.OP_CONSTANT) {
		return false
	}
	next := ip + width(compiler.OP_CONSTANT)
	if !isOp(instructions, next, compiler.OP_CONSTANT) {
		return false
	}
	opIP := next + width(compiler.OP_CONSTANT)
	if opIP >= len(instructions) {
		return false
	}
	op := compiler.Opcode(instructions[opIP])
	if !isBinaryOp(op) {
		return false
	}

	a := constants[operandAt(instructions, ip)]
	b := constants[operandAt(instructions, next)]
	result, ok := foldBinary(op, a, b)
	if !ok {
		return false
	}
	index, ok := findConstant(constants, result)
	if !ok {
		return false
	}

	end := opIP + width(op)
	overwriteWithConstant(instructions, ip, end, index)
	return true
}

// tryFoldUnary matches `CONSTANT a; <unary op>` the same way.
func tryFoldUnary(instructions compiler.Instructions, constants []any, ip int) bool {
	if !isOp(instructions, ip, compiler.OP_CONSTANT) {
		return false
	}
	opIP := ip + width(compiler.OP_CONSTANT)
	if opIP >= len(instructions) {
		return false
	}
	op := compiler.Opcode(instructions[opIP])
	if op != compiler.OP_NEGATE && op != compiler.OP_NOT {
		return false
	}

	a := constants[operandAt(instructions, ip)]
	result, ok := foldUnary(op, a)
	if !ok {
		return false
	}
	index, ok := findConstant(constants, result)
	if !ok {
		return false
	}

	end := opIP + width(op)
	overwriteWithConstant(instructions, ip, end, index)
	return true
}

// tryFoldIdentity matches `CONSTANT a; <GET_LOCAL|GET_GLOBAL> slot;
// <ADD|MULTIPLY>` and collapses additive/multiplicative identities
// (`0+x`, `1*x`) to just the non-constant load, and annihilating ones
// (`0*x`) to the constant 0. Restricted to a single adjacent load in this
// exact order rather than an arbitrary expression (an arbitrary left
// operand has no fixed width to splice around) - `local + 0` with the
// load emitted first doesn't match and is left alone.
func tryFoldIdentity(instructions compiler.Instructions, constants []any, ip int) bool {
	constIP := ip
	if !isOp(instructions, constIP, compiler.OP_CONSTANT) {
		return false
	}
	loadIP := constIP + width(compiler.OP_CONSTANT)
	if loadIP >= len(instructions) {
		return false
	}
	loadOp := compiler.Opcode(instructions[loadIP])
	if loadOp != compiler.OP_GET_LOCAL && loadOp != compiler.OP_GET_GLOBAL {
		return false
	}
	opIP := loadIP + width(loadOp)
	if opIP >= len(instructions) {
		return false
	}
	op := compiler.Opcode(instructions[opIP])
	if op != compiler.OP_ADD && op != compiler.OP_MULTIPLY {
		return false
	}

	value := constants[operandAt(instructions, constIP)]
	end := opIP + width(op)

	if op == compiler.OP_ADD && isZero(value) {
		keepLoad(instructions, constIP, loadIP, opIP, end, loadOp)
		return true
	}
	if op == compiler.OP_MULTIPLY && isOne(value) {
		keepLoad(instructions, constIP, loadIP, opIP, end, loadOp)
		return true
	}
	if op == compiler.OP_MULTIPLY && isZero(value) {
		overwriteWithConstant(instructions, constIP, end, operandAt(instructions, constIP))
		return true
	}
	return false
}

// keepLoad discards the constant and the binary op, leaving only the
// load instruction (relocated to the window's start) and NOPs.
func keepLoad(instructions compiler.Instructions, constIP, loadIP, opIP, end int, loadOp compiler.Opcode) {
	loadWidth := width(loadOp)
	loadBytes := append([]byte{}, instructions[loadIP:loadIP+loadWidth]...)
	copy(instructions[constIP:constIP+loadWidth], loadBytes)
	fillNOP(instructions, constIP+loadWidth, end)
}

// tryFoldBranch matches `CONSTANT c; JUMP_IF_FALSE n` and rewrites it to
// an unconditional `JUMP_FORWARD n` (c falsy) or NOPs the whole thing away
// (c truthy), since a constant condition is decided at compile time. The
// target this matches against (an if-chain's else/end, or a loop's end) is
// always later in the stream than the window being folded, so the
// replacement jump is always a forward one. Every
// JUMP_IF_FALSE the compiler emits is immediately followed, on both the
// fallthrough arm and at its jump target, by the OP_POP that discards the
// condition value peeked to decide the branch (see compileIfChain). Once
// the CONSTANT push is erased, whichever arm now runs unconditionally has
// nothing left for that POP to discard, so the POP on that arm has to be
// erased along with it - otherwise the rewrite trades a compile-time
// decision for a guaranteed stack underflow at runtime.
func tryFoldBranch(instructions compiler.Instructions, constants []any, ip int) bool {
	if !isOp(instructions, ip, compiler.OP_CONSTANT) {
		return false
	}
	branchIP := ip + width(compiler.OP_CONSTANT)
	if !isOp(instructions, branchIP, compiler.OP_JUMP_IF_FALSE) {
		return false
	}

	value := constants[operandAt(instructions, ip)]
	truthy, ok := isTruthyConstant(value)
	if !ok {
		return false
	}

	end := branchIP + width(compiler.OP_JUMP_IF_FALSE)
	if truthy {
		// Falls through unconditionally; the POP living right after this
		// window is the one that now has nothing to discard.
		if !isOp(instructions, end, compiler.OP_POP) {
			return false
		}
		fillNOP(instructions, ip, end+width(compiler.OP_POP))
		return true
	}

	target := operandAt(instructions, branchIP)
	if !isOp(instructions, target, compiler.OP_POP) {
		return false
	}
	jump, _ := compiler.AssembleInstruction(compiler.OP_JUMP_FORWARD, target+width(compiler.OP_POP))
	copy(instructions[ip:ip+len(jump)], jump)
	fillNOP(instructions, ip+len(jump), end)
	fillNOP(instructions, target, target+width(compiler.OP_POP))
	return true
}

// --- evaluation ---

func foldBinary(op compiler.Opcode, a, b any) (any, bool) {
	switch op {
	case compiler.OP_ADD, compiler.OP_SUBTRACT, compiler.OP_MULTIPLY, compiler.OP_DIVIDE, compiler.OP_MOD:
		return foldArithmetic(op, a, b)
	case compiler.OP_EQUALITY, compiler.OP_NOT_EQUAL, compiler.OP_LESS, compiler.OP_LESS_EQUAL,
		compiler.OP_LARGER, compiler.OP_LARGER_EQUAL:
		return foldComparison(op, a, b)
	case compiler.OP_AND, compiler.OP_OR:
		return foldBoolean(op, a, b)
	}
	return nil, false
}

func foldArithmetic(op compiler.Opcode, a, b any) (any, bool) {
	if ai, aok := a.(int64); aok {
		if bi, bok := b.(int64); bok {
			switch op {
			case compiler.OP_ADD:
				return ai + bi, true
			case compiler.OP_SUBTRACT:
				return ai - bi, true
			case compiler.OP_MULTIPLY:
				return ai * bi, true
			case compiler.OP_DIVIDE:
				if bi == 0 {
					return decimal.Div(intDecimal(ai), intDecimal(bi)), true
				}
				return ai / bi, true
			case compiler.OP_MOD:
				if bi == 0 {
					return decimal.Mod(intDecimal(ai), intDecimal(bi)), true
				}
				return ai % bi, true
			}
		}
	}

	da, aok := toDecimalConst(a)
	db, bok := toDecimalConst(b)
	if !aok || !bok {
		return nil, false
	}
	switch op {
	case compiler.OP_ADD:
		return decimal.Add(da, db), true
	case compiler.OP_SUBTRACT:
		return decimal.Sub(da, db), true
	case compiler.OP_MULTIPLY:
		return decimal.Mul(da, db), true
	case compiler.OP_DIVIDE:
		return decimal.Div(da, db), true
	case compiler.OP_MOD:
		return decimal.Mod(da, db), true
	}
	return nil, false
}

func foldComparison(op compiler.Opcode, a, b any) (any, bool) {
	da, aok := toDecimalConst(a)
	db, bok := toDecimalConst(b)
	if aok && bok {
		switch op {
		case compiler.OP_EQUALITY:
			return decimal.Equal(da, db), true
		case compiler.OP_NOT_EQUAL:
			return !decimal.Equal(da, db), true
		case compiler.OP_LESS:
			return decimal.Less(da, db), true
		case compiler.OP_LESS_EQUAL:
			return decimal.LessEqual(da, db), true
		case compiler.OP_LARGER:
			return decimal.Greater(da, db), true
		case compiler.OP_LARGER_EQUAL:
			return decimal.GreaterEqual(da, db), true
		}
	}

	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		switch op {
		case compiler.OP_EQUALITY:
			return ab == bb, true
		case compiler.OP_NOT_EQUAL:
			return ab != bb, true
		}
	}
	return nil, false
}

func foldBoolean(op compiler.Opcode, a, b any) (any, bool) {
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if !aok || !bok {
		return nil, false
	}
	switch op {
	case compiler.OP_AND:
		return ab && bb, true
	case compiler.OP_OR:
		return ab || bb, true
	}
	return nil, false
}

func foldUnary(op compiler.Opcode, a any) (any, bool) {
	switch op {
	case compiler.OP_NEGATE:
		switch v := a.(type) {
		case int64:
			return -v, true
		case float64:
			return -v, true
		case decimal.Decimal:
			return decimal.Neg(v), true
		}
	case compiler.OP_NOT:
		if v, ok := a.(bool); ok {
			return !v, true
		}
	}
	return nil, false
}

func toDecimalConst(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int64:
		return intDecimal(n), true
	case float64:
		return decimal.MustNew(strconv.FormatFloat(n, 'f', -1, 64)), true
	case decimal.Decimal:
		return n, true
	}
	return decimal.Decimal{}, false
}

func intDecimal(v int64) decimal.Decimal {
	return decimal.MustNew(strconv.FormatInt(v, 10))
}

func isZero(v any) bool {
	switch n := v.(type) {
	case int64:
		return n == 0
	case float64:
		return n == 0
	case decimal.Decimal:
		return n.IsZero()
	}
	return false
}

func isOne(v any) bool {
	switch n := v.(type) {
	case int64:
		return n == 1
	case float64:
		return n == 1
	case decimal.Decimal:
		return decimal.Equal(n, decimal.One())
	}
	return false
}

func isTruthyConstant(v any) (truthy bool, ok bool) {
	switch n := v.(type) {
	case nil:
		return false, true
	case bool:
		return n, true
	case int64:
		return n != 0, true
	case float64:
		return n != 0, true
	case decimal.Decimal:
		return !n.IsZero(), true
	}
	return false, false
}

// findConstant returns the index of the first constant pool entry equal
// to value, used by folding to point a rewritten CONSTANT instruction at
// an already-existing slot instead of growing the pool.
func findConstant(constants []any, value any) (int, bool) {
	for i, c := range constants {
		if constantsEqual(c, value) {
			return i, true
		}
	}
	return 0, false
}

func constantsEqual(a, b any) bool {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && decimal.Equal(av, bv)
	}
	return false
}
