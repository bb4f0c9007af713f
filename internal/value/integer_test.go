package value

import (
	"testing"

	"github.com/zephyr-lang/zephyr/internal/object"
)

func TestIntAddPromotesToUIntWhenEitherOperandUnsigned(t *testing.T) {
	i := NewInt(3)
	u := NewUInt(4)
	out, err := IntType.Ops.Add(i, u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ui, ok := out.(*UInt)
	if !ok {
		t.Fatalf("expected *UInt, got %T", out)
	}
	if ui.Value != 7 {
		t.Fatalf("got %d, want 7", ui.Value)
	}
}

func TestIntDivAlwaysProducesDecimal(t *testing.T) {
	out, err := IntType.Ops.Div(NewInt(7), NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := out.(*Decimal)
	if !ok {
		t.Fatalf("expected *Decimal, got %T", out)
	}
	if d.Value != 3.5 {
		t.Fatalf("got %v, want 3.5", d.Value)
	}
}

func TestIntDivByZeroPanicsWithDivisionByZero(t *testing.T) {
	if _, err := IntType.Ops.Div(NewInt(1), NewInt(0)); err == nil {
		t.Fatal("expected division-by-zero error")
	}
	if _, err := IntType.Ops.IDiv(NewInt(1), NewInt(0)); err == nil {
		t.Fatal("expected division-by-zero error")
	}
	if _, err := IntType.Ops.Mod(NewInt(1), NewInt(0)); err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestIntAndUIntHashIdenticalForEqualValue(t *testing.T) {
	ih, err := IntType.Hash(NewInt(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uh, err := UIntType.Hash(NewUInt(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ih != uh {
		t.Fatalf("Int(42) hash %d != UInt(42) hash %d", ih, uh)
	}
}

func TestIntCompareOrdering(t *testing.T) {
	r, err := IntType.Compare(NewInt(1), NewInt(2), object.CompareLE)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil || !*r {
		t.Fatal("expected 1 < 2")
	}
}
