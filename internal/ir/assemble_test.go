package ir

import (
	"bytes"
	"testing"

	"github.com/zephyr-lang/zephyr/internal/bytecode"
)

func TestAssembleResolvesJumpTargetToBlockOffset(t *testing.T) {
	u := NewTranslationUnit("main", nil)
	block0 := u.Current()
	block0.Emit(byte(bytecode.OpLSTATIC), 5, 1)
	jmp := block0.Emit(byte(bytecode.OpJMP), 0, 1)

	block1 := u.NewBlock()
	block1.Emit(byte(bytecode.OpRET), 0, 2)
	jmp.Target = block1

	instr, lines := Assemble(u)

	want := []byte{
		byte(bytecode.OpLSTATIC), 5, 0, 0,
		byte(bytecode.OpJMP), 8, 0, 0,
		byte(bytecode.OpRET),
	}
	if !bytes.Equal(instr, want) {
		t.Fatalf("instr = %v, want %v", instr, want)
	}

	wantLines := []byte{0, 1, 8, 1}
	if !bytes.Equal(lines, wantLines) {
		t.Fatalf("lines = %v, want %v", lines, wantLines)
	}
}

func TestAssembleProducesDecodableStream(t *testing.T) {
	u := NewTranslationUnit("main", nil)
	u.Current().Emit(byte(bytecode.OpDUP), 0, 1)
	u.Current().Emit(byte(bytecode.OpLDGBL), 3, 1)
	u.Current().Emit(byte(bytecode.OpPOP), 0, 2)

	instr, _ := Assemble(u)

	ip := 0
	op, _, width := bytecode.DecodeInstr(instr, ip)
	if op != bytecode.OpDUP || width != 1 {
		t.Fatalf("first decode = op %v width %d, want OpDUP width 1", op, width)
	}
	ip += width

	op, arg, width := bytecode.DecodeInstr(instr, ip)
	if op != bytecode.OpLDGBL || arg != 3 || width != 4 {
		t.Fatalf("second decode = op %v arg %d width %d, want OpLDGBL arg 3 width 4", op, arg, width)
	}
	ip += width

	op, _, width = bytecode.DecodeInstr(instr, ip)
	if op != bytecode.OpPOP || width != 1 {
		t.Fatalf("third decode = op %v width %d, want OpPOP width 1", op, width)
	}
}
