package value

import (
	"math"
	"testing"
)

func TestDecimalArithmetic(t *testing.T) {
	out, err := DecimalType.Ops.Add(NewDecimal(1.5), NewDecimal(2.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.(*Decimal).Value != 3.75 {
		t.Fatalf("got %v, want 3.75", out.(*Decimal).Value)
	}
}

func TestDecimalDivByZero(t *testing.T) {
	if _, err := DecimalType.Ops.Div(NewDecimal(1), NewDecimal(0)); err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestDecimalHashMatchesIntForEqualValue(t *testing.T) {
	dh, err := DecimalType.Hash(NewDecimal(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ih, err := IntType.Hash(NewInt(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dh != ih {
		t.Fatalf("Decimal(7) hash %d != Int(7) hash %d", dh, ih)
	}
}

func TestDecimalHashNaNIsUnhashable(t *testing.T) {
	if _, err := DecimalType.Hash(NewDecimal(math.NaN())); err == nil {
		t.Fatal("expected NaN to be unhashable")
	}
}

func TestDecimalHashInfinitiesAreDistinct(t *testing.T) {
	pos, err := DecimalType.Hash(NewDecimal(math.Inf(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	neg, err := DecimalType.Hash(NewDecimal(math.Inf(-1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos == neg {
		t.Fatal("+Inf and -Inf must hash distinctly")
	}
}

func TestDecimalHashDeterministic(t *testing.T) {
	a, _ := DecimalType.Hash(NewDecimal(3.14159))
	b, _ := DecimalType.Hash(NewDecimal(3.14159))
	if a != b {
		t.Fatal("hash must be deterministic")
	}
}
