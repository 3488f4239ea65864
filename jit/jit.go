// Package jit rewrites a compiled function body into a faster equivalent
// the first time it is needed, mirroring the reference runtime's lazy
// "install an optimized CodeObj on the Function object" design (see
// original_source/src/runtime/vm/vm.c, where a Function's body may be
// swapped for a JIT-rewritten one before frame_execute runs it). Three
// passes run in a fixed order over a private copy of the instructions -
// foldConstants, eliminateDeadCode, rewriteCompareAndSwap - each followed
// by NOP compaction and jump-offset recomputation. A stack-discipline
// Verify runs after every pass; a pass whose output fails verification is
// discarded and the instructions from before that pass are kept. Optimize
// never touches the FunctionProto it is given - it returns a new
// instruction stream (or the original, unchanged, if nothing could be
// rewritten) for the caller to install.
package jit

import "github.com/glintlang/glint/compiler"

// Optimize runs the full rewrite pipeline over instructions, given the
// constants pool the function's OP_CONSTANT operands index into (used
// read-only, for constant folding and its dedup lookups - see fold.go's
// doc comment for why the pool itself is never extended). It returns the
// possibly-rewritten instructions and whether any pass actually changed
// anything; callers that only care about installing a body can ignore
// the second value.
func Optimize(instructions compiler.Instructions, constants []any) (compiler.Instructions, bool) {
	current := append(compiler.Instructions{}, instructions...)
	changed := false

	if next, ok := runPass(current, func(in compiler.Instructions) compiler.Instructions {
		return foldConstants(in, constants)
	}); ok {
		current, changed = next, true
	}

	if next, ok := runPass(current, eliminateDeadCode); ok {
		current, changed = next, true
	}

	if next, ok := runPass(current, func(in compiler.Instructions) compiler.Instructions {
		return rewriteCompareAndSwap(in, constants)
	}); ok {
		current, changed = next, true
	}

	return current, changed
}

// runPass applies rewrite to a copy of in, compacts away any NOPs it left
// behind, recomputes jump offsets, and verifies the result is still
// stack-balanced before accepting it. A failing or no-op rewrite returns
// (nil, false) and the caller keeps whatever it already had.
func runPass(in compiler.Instructions, rewrite func(compiler.Instructions) compiler.Instructions) (compiler.Instructions, bool) {
	rewritten := rewrite(append(compiler.Instructions{}, in...))
	if bytesEqual(rewritten, in) {
		return nil, false
	}
	compacted := compactAndRelink(rewritten)
	if err := Verify(compacted); err != nil {
		return nil, false
	}
	return compacted, true
}

func bytesEqual(a, b compiler.Instructions) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
