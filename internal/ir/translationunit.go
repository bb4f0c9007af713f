package ir

import (
	"fmt"

	"github.com/zephyr-lang/zephyr/internal/object"
)

// TranslationUnit owns one function body's basic-block graph while it
// is being built: the block list, the block currently receiving
// Emit calls, the jump-block stack break/continue resolve against, and
// the symbol table for the scope the unit compiles (spec §3.6).
type TranslationUnit struct {
	Name   string
	Symbol *SymbolT

	blocks []*BasicBlock
	cur    *BasicBlock
	jstack *JBlock

	nextBlockID int

	// Statics is the constant pool LSTATIC and friends index into.
	// staticsUsage tracks how many still-live instructions reference
	// each slot, for the optimizer's constant-folding pass (spec §4.11
	// "decrement usage counts for the two retired operands").
	Statics      []object.Object
	staticsUsage []int
}

// NewTranslationUnit starts a unit named name, nested under parent in
// the symbol table (nil for a module-level unit). It begins with one
// empty entry block, already current.
func NewTranslationUnit(name string, parent *SymbolT) *TranslationUnit {
	u := &TranslationUnit{
		Name:   name,
		Symbol: NewSymbolT(name, SymbolFunc, parent),
	}
	u.cur = u.NewBlock()
	return u
}

// NewBlock allocates a fresh, empty BasicBlock, appends it to the
// unit's block list, and makes it the current block — mirroring the
// teacher's BlockAppend, which always both links and re-points cur.
func (u *TranslationUnit) NewBlock() *BasicBlock {
	b := &BasicBlock{id: u.nextBlockID}
	u.nextBlockID++
	u.blocks = append(u.blocks, b)
	u.cur = b
	return b
}

// Current returns the block Emit appends to.
func (u *TranslationUnit) Current() *BasicBlock { return u.cur }

// SetCurrent redirects subsequent Emit calls to b, without creating a
// new block — used when resuming a block built out of order (e.g. a
// loop header emitted before its body).
func (u *TranslationUnit) SetCurrent(b *BasicBlock) { u.cur = b }

// Emit appends an instruction to the current block.
func (u *TranslationUnit) Emit(op byte, arg uint32, line int) *Instr {
	return u.cur.Emit(op, arg, line)
}

// Blocks returns every block the unit has allocated, in creation
// order — the order Assemble walks them in.
func (u *TranslationUnit) Blocks() []*BasicBlock { return u.blocks }

// JBNew pushes a new jump-block scope onto the unit's jump-block
// stack, for a loop (start/end are the continue/break targets) or a
// bare label (loop is false, start/end remain nil until patched).
func (u *TranslationUnit) JBNew(label string, loop bool, start, end *BasicBlock, pops uint16) *JBlock {
	jb := &JBlock{Label: label, Loop: loop, Start: start, End: end, Pops: pops, prev: u.jstack}
	u.jstack = jb
	return jb
}

// JBPop removes block from the jump-block stack. block is usually the
// top of stack (the common case, closing the innermost loop/label) but
// may be any entry still on the stack, mirroring a JBPop,
// which also supports popping from the middle when unwinding a
// multi-level labeled break.
func (u *TranslationUnit) JBPop(block *JBlock) {
	if u.jstack == block {
		u.jstack = block.prev
		return
	}
	for cur := u.jstack; cur != nil; cur = cur.prev {
		if cur.prev == block {
			cur.prev = block.prev
			return
		}
	}
}

// FindLoop returns the nearest enclosing loop jump-block, or — if
// label is non-empty — the nearest enclosing loop carrying that label,
// for `break label`/`continue label` resolution.
func (u *TranslationUnit) FindLoop(label string) (*JBlock, bool) {
	for jb := u.jstack; jb != nil; jb = jb.prev {
		if !jb.Loop {
			continue
		}
		if label == "" || jb.Label == label {
			return jb, true
		}
	}
	return nil, false
}

// TopJBlock returns the innermost jump-block, or nil if the stack is
// empty.
func (u *TranslationUnit) TopJBlock() *JBlock { return u.jstack }

// Validate reports unresolved forward jumps: any instruction whose
// Target points at a block the unit doesn't own, or any loop jump-block
// left on the stack with a nil End, which would assemble as a jump to
// nowhere.
func (u *TranslationUnit) Validate() error {
	owned := make(map[*BasicBlock]bool, len(u.blocks))
	for _, b := range u.blocks {
		owned[b] = true
	}
	for _, b := range u.blocks {
		for _, in := range b.Instrs() {
			if in.Target != nil && !owned[in.Target] {
				return fmt.Errorf("ir: instruction in block %d jumps to a block outside unit %q", b.id, u.Name)
			}
		}
	}
	for jb := u.jstack; jb != nil; jb = jb.prev {
		if jb.Loop && jb.End == nil {
			return fmt.Errorf("ir: loop jump-block %q left without a break target", jb.Label)
		}
	}
	return nil
}
