package optimizer

import (
	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/ir"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// foldableOp maps a foldable arithmetic/bitwise opcode to the OpsSlots
// selector object.BinaryOp should dispatch through, grounded on the
// teacher's SimplifyConstOP offsetof(OpSlots, ...) switch (spec §4.11).
var foldableOp = map[bytecode.OpCode]object.BinOpSelect{
	bytecode.OpADD:  func(o *object.OpsSlots) object.BinOpFn { return o.Add },
	bytecode.OpSUB:  func(o *object.OpsSlots) object.BinOpFn { return o.Sub },
	bytecode.OpMUL:  func(o *object.OpsSlots) object.BinOpFn { return o.Mul },
	bytecode.OpDIV:  func(o *object.OpsSlots) object.BinOpFn { return o.Div },
	bytecode.OpIDIV: func(o *object.OpsSlots) object.BinOpFn { return o.IDiv },
	bytecode.OpMOD:  func(o *object.OpsSlots) object.BinOpFn { return o.Mod },
	bytecode.OpSHL:  func(o *object.OpsSlots) object.BinOpFn { return o.Shl },
	bytecode.OpSHR:  func(o *object.OpsSlots) object.BinOpFn { return o.Shr },
	bytecode.OpLAND: func(o *object.OpsSlots) object.BinOpFn { return o.And },
	bytecode.OpLOR:  func(o *object.OpsSlots) object.BinOpFn { return o.Or },
	bytecode.OpLXOR: func(o *object.OpsSlots) object.BinOpFn { return o.Xor },
}

// foldConstants walks every block collapsing `LSTATIC a, LSTATIC b, OP`
// triples into a single LSTATIC holding the precomputed result,
// retiring the two operand statics' usage counts, and compacting the
// unit's static pool afterward if any slot emptied out (spec §4.11).
func foldConstants(u *ir.TranslationUnit) {
	mustCompact := false

	for _, b := range u.Blocks() {
		li := b.Head()
		for li != nil {
			ri := li.Next
			if ri == nil {
				break
			}
			op := ri.Next
			if op == nil {
				break
			}

			sel, foldable := foldableOp[bytecode.OpCode(op.Op)]
			if !foldable || bytecode.OpCode(li.Op) != bytecode.OpLSTATIC || bytecode.OpCode(ri.Op) != bytecode.OpLSTATIC {
				li = ri
				continue
			}

			leftIdx, rightIdx := int(li.Arg), int(ri.Arg)
			result, err := object.BinaryOp(sel, u.Statics[leftIdx], u.Statics[rightIdx])
			if err != nil {
				// Not foldable at compile time (e.g. division by zero);
				// leave the triple for the interpreter to raise at
				// runtime.
				li = ri
				continue
			}

			newIdx := u.InternStatic(result)
			b.CollapseTriple(li, ri, op)
			li.Op = byte(bytecode.OpLSTATIC)
			li.Arg = uint32(newIdx)

			if u.ReleaseStatic(leftIdx) {
				mustCompact = true
			}
			if u.ReleaseStatic(rightIdx) {
				mustCompact = true
			}
			// li is left in place, now the folded LSTATIC: re-test it
			// against its (new) next two instructions for a chained
			// fold, e.g. `LSTATIC a, LSTATIC b, ADD, LSTATIC c, MUL`.
		}
	}

	if mustCompact {
		u.CompactStatics()
	}
}
