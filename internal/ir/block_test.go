package ir

import "testing"

func TestBasicBlockEmitAppendsInOrder(t *testing.T) {
	b := &BasicBlock{}
	b.Emit(1, 0, 10)
	b.Emit(2, 7, 11)
	b.Emit(3, 0, 11)

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	instrs := b.Instrs()
	if len(instrs) != 3 {
		t.Fatalf("Instrs() len = %d, want 3", len(instrs))
	}
	if instrs[0].Op != 1 || instrs[1].Op != 2 || instrs[1].Arg != 7 || instrs[2].Op != 3 {
		t.Fatalf("unexpected instruction sequence: %+v", instrs)
	}
	if b.Last() != instrs[2] {
		t.Fatal("Last() should return the most recently emitted instruction")
	}
}

func TestBasicBlockEmitMasksArgTo24Bits(t *testing.T) {
	b := &BasicBlock{}
	in := b.Emit(1, 0xFFFFFFFF, 1)
	if in.Arg != 0x00FFFFFF {
		t.Fatalf("Arg = %#x, want masked to 24 bits (%#x)", in.Arg, 0x00FFFFFF)
	}
}

func TestBasicBlockEmptyHasNoLast(t *testing.T) {
	b := &BasicBlock{}
	if b.Last() != nil {
		t.Fatal("empty block's Last() should be nil")
	}
	if b.Len() != 0 {
		t.Fatal("empty block's Len() should be 0")
	}
}
