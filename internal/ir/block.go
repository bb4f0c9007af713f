package ir

// Instr is one pre-assembly instruction record: an opcode, a 24-bit
// argument, an optional jump target block, and the source line it was
// emitted from. Instr records are singly linked within their owning
// BasicBlock rather than stored in a slice, since blocks grow by
// repeated single appends during code generation (spec §3.6).
type Instr struct {
	Op     byte
	Arg    uint32 // low 24 bits significant
	Target *BasicBlock
	Line   int

	Next *Instr
}

// BasicBlock is a straight-line instruction sequence ending, if it
// ends at all, with a jump or return. Jump instructions reference the
// destination BasicBlock directly; byte offsets are assigned only once
// by Assemble, during the linearization pass.
type BasicBlock struct {
	id   int
	head *Instr
	tail *Instr
	len  int

	// offset is filled in by Assemble and meaningless before it runs.
	offset int
}

// ID returns the block's translation-unit-local identifier, assigned
// at creation and stable across the life of the TranslationUnit.
func (b *BasicBlock) ID() int { return b.id }

// Len reports how many instructions the block currently holds.
func (b *BasicBlock) Len() int { return b.len }

// Emit appends an instruction to the end of the block and returns it,
// so callers can patch Target in afterward (e.g. to back-patch a
// forward jump once its destination block exists).
func (b *BasicBlock) Emit(op byte, arg uint32, line int) *Instr {
	in := &Instr{Op: op, Arg: arg & 0x00FFFFFF, Line: line}
	if b.tail == nil {
		b.head = in
	} else {
		b.tail.Next = in
	}
	b.tail = in
	b.len++
	return in
}

// Last returns the block's final instruction, or nil if it is empty.
func (b *BasicBlock) Last() *Instr { return b.tail }

// Head returns the block's first instruction, or nil if it is empty —
// the entry point for a caller (the optimizer) walking the chain via
// Instr.Next itself rather than through Instrs().
func (b *BasicBlock) Head() *Instr { return b.head }

// CollapseTriple splices the three consecutive instructions li, ri, op
// (li.Next == ri, ri.Next == op) down to just li, which the caller has
// already rewritten in place to hold the folded result. Used by the
// constant-folding pass (spec §4.11) once it has computed a
// replacement value for an `LSTATIC a, LSTATIC b, OP` run. Panics if
// the three are not actually consecutive — a bug in the optimizer
// calling it, not a condition that arises from user input.
func (b *BasicBlock) CollapseTriple(li, ri, op *Instr) {
	if li.Next != ri || ri.Next != op {
		panic("ir: CollapseTriple requires a consecutive li, ri, op run")
	}
	li.Next = op.Next
	if b.tail == op {
		b.tail = li
	}
	b.len -= 2
}

// Instrs returns the block's instructions in order. Intended for
// assembly and tests, not the hot path.
func (b *BasicBlock) Instrs() []*Instr {
	out := make([]*Instr, 0, b.len)
	for in := b.head; in != nil; in = in.Next {
		out = append(out, in)
	}
	return out
}
