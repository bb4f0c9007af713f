package ir

import "github.com/zephyr-lang/zephyr/internal/bytecode"

// Assemble linearizes a validated TranslationUnit's basic-block graph
// into a byte stream and packed line table ready for bytecode.NewCode
// (spec §3.6 "offsets are assigned once in an assembly pass").
//
// Two passes: the first walks every block computing its final byte
// offset (possible up front because each opcode's width is a static
// property, not a function of its argument); the second re-walks
// emitting bytes, resolving jump instructions' argument to their
// target block's now-known offset.
func Assemble(u *TranslationUnit) ([]byte, []byte) {
	offset := 0
	for _, b := range u.blocks {
		b.offset = offset
		for in := b.head; in != nil; in = in.Next {
			offset += bytecode.OpCode(in.Op).Width()
		}
	}

	instr := make([]byte, 0, offset)
	lt := &bytecode.LineTableBuilder{}
	lastLine := -1
	pos := 0
	for _, b := range u.blocks {
		for in := b.head; in != nil; in = in.Next {
			arg := in.Arg
			if in.Target != nil {
				arg = uint32(in.Target.offset)
			}
			if in.Line != lastLine {
				lt.Emit(pos, in.Line)
				lastLine = in.Line
			}
			instr = bytecode.EncodeInstr(instr, bytecode.OpCode(in.Op), arg)
			pos += bytecode.OpCode(in.Op).Width()
		}
	}
	return instr, lt.Bytes()
}
