package ir

import (
	"testing"

	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/value"
)

func TestInternStaticReusesEqualValue(t *testing.T) {
	u := NewTranslationUnit("main", nil)
	i1 := u.InternStatic(value.NewInt(5))
	i2 := u.InternStatic(value.NewInt(5))
	if i1 != i2 {
		t.Fatalf("InternStatic should reuse the slot for an equal value, got %d and %d", i1, i2)
	}
	if u.StaticUsage(i1) != 2 {
		t.Fatalf("StaticUsage = %d, want 2 after interning the same value twice", u.StaticUsage(i1))
	}
}

func TestInternStaticDistinctValuesGetDistinctSlots(t *testing.T) {
	u := NewTranslationUnit("main", nil)
	i1 := u.InternStatic(value.NewInt(5))
	i2 := u.InternStatic(value.NewInt(6))
	if i1 == i2 {
		t.Fatal("distinct values should not share a static slot")
	}
}

func TestReleaseStaticReportsZeroUsage(t *testing.T) {
	u := NewTranslationUnit("main", nil)
	idx := u.InternStatic(value.NewInt(1))
	if !u.ReleaseStatic(idx) {
		t.Fatal("one release after a single intern should report zero usage")
	}
	// InternStatic was called once, so usage is 1; one release should drain it.
}

func TestCompactStaticsDropsFreedSlotsAndRewritesIndices(t *testing.T) {
	u := NewTranslationUnit("main", nil)
	keep := u.InternStatic(value.NewInt(10))
	drop := u.InternStatic(value.NewInt(20))

	in := u.Emit(byte(bytecode.OpLSTATIC), uint32(keep), 1)

	if !u.ReleaseStatic(drop) {
		t.Fatal("drop's usage should reach zero after one release")
	}

	statics := u.CompactStatics()
	if len(statics) != 1 {
		t.Fatalf("CompactStatics should leave 1 live static, got %d", len(statics))
	}
	if in.Arg != 0 {
		t.Fatalf("surviving instruction's Arg should be rewritten to 0, got %d", in.Arg)
	}
}
