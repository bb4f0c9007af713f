package ir

import (
	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// InternStatic finds or inserts constant in the unit's statics pool,
// returning its index and bumping its usage count. Grounded on the
// teacher's LookupInsertConstant (DictLookup-or-DictInsert against
// unit_->statics_map), adapted to a linear scan over object.Equal
// since a single function's static pool is small and short-lived —
// not worth the weight of a full hash-table container for a compiler
// pass that runs once per function body.
func (u *TranslationUnit) InternStatic(constant object.Object) int {
	for i, s := range u.Statics {
		if object.Equal(s, constant) {
			u.staticsUsage[i]++
			return i
		}
	}
	idx := len(u.Statics)
	u.Statics = append(u.Statics, constant)
	u.staticsUsage = append(u.staticsUsage, 1)
	return idx
}

// ReleaseStatic decrements idx's usage count and reports whether it
// dropped to zero (spec §4.11 "when a static's usage drops to zero,
// mark the slot free").
func (u *TranslationUnit) ReleaseStatic(idx int) bool {
	u.staticsUsage[idx]--
	return u.staticsUsage[idx] <= 0
}

// StaticUsage returns idx's current live-reference count, for tests
// and diagnostics.
func (u *TranslationUnit) StaticUsage(idx int) int { return u.staticsUsage[idx] }

// staticIndexOpcodes is the set of opcodes whose argument indexes the
// statics pool (spec §4.11 "rewrite every instruction whose argument
// indexes it").
var staticIndexOpcodes = map[byte]bool{
	byte(bytecode.OpLSTATIC): true,
	byte(bytecode.OpLDATTR):  true,
	byte(bytecode.OpLDMETH):  true,
	byte(bytecode.OpLDSCOPE): true,
	byte(bytecode.OpIMPFRM):  true,
	byte(bytecode.OpIMPMOD):  true,
}

// CompactStatics drops statics whose usage count reached zero and
// rewrites every instruction indexing the pool to the new, compacted
// indices (spec §4.11 "after the pass, compact the static pool").
func (u *TranslationUnit) CompactStatics() []object.Object {
	remap := make([]int, len(u.Statics))
	compacted := u.Statics[:0]
	usage := u.staticsUsage[:0]
	next := 0
	for i, s := range u.Statics {
		if u.staticsUsage[i] <= 0 {
			remap[i] = -1
			continue
		}
		remap[i] = next
		compacted = append(compacted, s)
		usage = append(usage, u.staticsUsage[i])
		next++
	}
	u.Statics = compacted
	u.staticsUsage = usage

	for _, b := range u.blocks {
		for in := b.head; in != nil; in = in.Next {
			if staticIndexOpcodes[in.Op] {
				in.Arg = uint32(remap[in.Arg])
			}
		}
	}
	return u.Statics
}
