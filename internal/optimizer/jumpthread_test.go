package optimizer

import (
	"testing"

	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/ir"
)

func TestThreadJumpsFollowsSingleJmpChain(t *testing.T) {
	u := ir.NewTranslationUnit("main", nil)
	entry := u.Current()
	jmp := entry.Emit(byte(bytecode.OpJMP), 0, 1)

	hop := u.NewBlock()
	hopJmp := hop.Emit(byte(bytecode.OpJMP), 0, 1)

	final := u.NewBlock()
	final.Emit(byte(bytecode.OpRET), 0, 2)

	jmp.Target = hop
	hopJmp.Target = final

	threadJumps(u)

	if jmp.Target != final {
		t.Fatalf("jmp.Target = block %d, want the final block %d", jmp.Target.ID(), final.ID())
	}
}

func TestThreadJumpsSkipsEmptyBlocks(t *testing.T) {
	u := ir.NewTranslationUnit("main", nil)
	entry := u.Current()
	jf := entry.Emit(byte(bytecode.OpJF), 0, 1)

	empty := u.NewBlock()

	target := u.NewBlock()
	target.Emit(byte(bytecode.OpRET), 0, 2)

	jf.Target = empty

	threadJumps(u)

	if jf.Target != target {
		t.Fatalf("jf.Target = block %d, want the fallthrough target block %d", jf.Target.ID(), target.ID())
	}
}

func TestThreadJumpsLeavesUnoptimizableOpcodesAlone(t *testing.T) {
	u := ir.NewTranslationUnit("main", nil)
	entry := u.Current()
	jnil := entry.Emit(byte(bytecode.OpJNIL), 0, 1)

	hop := u.NewBlock()
	hopJmp := hop.Emit(byte(bytecode.OpJMP), 0, 1)
	final := u.NewBlock()
	final.Emit(byte(bytecode.OpRET), 0, 2)
	hopJmp.Target = final

	jnil.Target = hop

	threadJumps(u)

	if jnil.Target != hop {
		t.Fatal("JNIL is not threadable and its target must be left untouched")
	}
}

func TestThreadJumpsStopsAtNonTrivialBlock(t *testing.T) {
	u := ir.NewTranslationUnit("main", nil)
	entry := u.Current()
	jmp := entry.Emit(byte(bytecode.OpJMP), 0, 1)

	real := u.NewBlock()
	real.Emit(byte(bytecode.OpLDGBL), 1, 2)
	real.Emit(byte(bytecode.OpRET), 0, 2)

	jmp.Target = real

	threadJumps(u)

	if jmp.Target != real {
		t.Fatal("a block with more than a single JMP must stop the thread")
	}
}
