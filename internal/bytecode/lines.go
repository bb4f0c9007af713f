package bytecode

// LineTableBuilder accumulates (opcode-offset, line) pairs emitted by the
// assembler into the packed delta stream Code.Lines stores (spec §3.6).
// Deltas outside [-128, 127] chain additional zero-opcode-delta entries
// so every line movement, however large, is representable in one byte.
type LineTableBuilder struct {
	lines      []byte
	lastOffset int
	lastLine   int
}

// Emit records that instruction offset reached line.
func (b *LineTableBuilder) Emit(offset, line int) {
	opDelta := offset - b.lastOffset
	lineDelta := line - b.lastLine

	for opDelta > 127 {
		b.lines = append(b.lines, 127, 0)
		opDelta -= 127
	}
	for opDelta < -128 {
		b.lines = append(b.lines, byte(int8(-128)), 0)
		opDelta += 128
	}

	for lineDelta > 127 {
		b.lines = append(b.lines, byte(int8(opDelta)), 127)
		lineDelta -= 127
		opDelta = 0
	}
	for lineDelta < -128 {
		b.lines = append(b.lines, byte(int8(opDelta)), byte(int8(-128)))
		lineDelta += 128
		opDelta = 0
	}

	b.lines = append(b.lines, byte(int8(opDelta)), byte(int8(lineDelta)))
	b.lastOffset = offset
	b.lastLine = line
}

// Bytes returns the packed stream built so far.
func (b *LineTableBuilder) Bytes() []byte { return b.lines }
