package optimizer

import (
	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/ir"
)

// threadableOpcodes are the jump opcodes whose target is safe to
// rewrite by following a chain of trivial blocks. Grounded on the
// teacher's OptimizeJMP comment "unoptimizable jump instructions:
// JFOP, JNIL, JNN, JTOP" — those pop or test a value as part of taking
// the jump and cannot be blindly retargeted without re-running that
// test at the new destination (spec §4.11).
var threadableOpcodes = map[bytecode.OpCode]bool{
	bytecode.OpJEX: true,
	bytecode.OpJF:  true,
	bytecode.OpJMP: true,
	bytecode.OpJT:  true,
}

// threadJumps retargets every threadable jump past any run of empty
// blocks or blocks containing only a single unconditional JMP,
// following the chain to its final destination (spec §4.11).
func threadJumps(u *ir.TranslationUnit) {
	blocks := u.Blocks()
	fallthroughOf := make(map[*ir.BasicBlock]*ir.BasicBlock, len(blocks))
	for i := 0; i+1 < len(blocks); i++ {
		fallthroughOf[blocks[i]] = blocks[i+1]
	}

	for _, b := range blocks {
		for in := b.Head(); in != nil; in = in.Next {
			if !threadableOpcodes[bytecode.OpCode(in.Op)] || in.Target == nil {
				continue
			}
			in.Target = resolveThread(in.Target, fallthroughOf)
		}
	}
}

// resolveThread follows target through empty blocks (which fall
// through to whatever comes next in layout order) and blocks holding
// only a single JMP, stopping at the first block that is neither.
func resolveThread(target *ir.BasicBlock, fallthroughOf map[*ir.BasicBlock]*ir.BasicBlock) *ir.BasicBlock {
	seen := make(map[*ir.BasicBlock]bool)
	for target != nil && !seen[target] {
		seen[target] = true

		if target.Len() == 0 {
			target = fallthroughOf[target]
			continue
		}

		head := target.Head()
		if bytecode.OpCode(head.Op) != bytecode.OpJMP {
			break
		}
		target = head.Target
	}
	return target
}
