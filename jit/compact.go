package jit

import (
	"encoding/binary"
	"github.com/glintlang/glint/compiler"
)

// compactAndRelink removes every OP_NOP byte left behind by a rewrite
// pass and recomputes every jump's operand so it still lands on its
// original target's new position - or, if that target was itself
// compacted away, on the nearest live instruction after it, per §4.6's
// "nearest live successor" rule.
func compactAndRelink(instructions compiler.Instructions) compiler.Instructions {
	type span struct{ oldIP, newIP, width int }
	var spans []span

	newIP := 0
	for ip := 0; ip < len(instructions); {
		op := compiler.Opcode(instructions[ip])
		w := width(op)
		if op != compiler.OP_NOP {
			spans = append(spans, span{oldIP: ip, newIP: newIP, width: w})
			newIP += w
		}
		ip += w
	}
	newLen := newIP

	remap := func(old int) int {
		for _, s := range spans {
			if s.oldIP == old {
				return s.newIP
			}
		}
		for _, s := range spans {
			if s.oldIP > old {
				return s.newIP
			}
		}
		return newLen
	}

	out := make(compiler.Instructions, newLen)
	for _, s := range spans {
		copy(out[s.newIP:s.newIP+s.width], instructions[s.oldIP:s.oldIP+s.width])
		if isJumpOp(compiler.Opcode(instructions[s.oldIP])) {
			target := operandAt(instructions, s.oldIP)
			binary.BigEndian.PutUint16(out[s.newIP+compiler.OPCODE_TOTAL_BYTES:], uint16(remap(target)))
		}
	}
	return out
}
