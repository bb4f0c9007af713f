package value

import (
	"fmt"
	"math"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Decimal stands in for the 128-bit-semantics float spec §4.5 describes
// "where the platform supports it"; Go has no native float128, so this
// runtime uses float64 and documents the gap rather than hand-rolling a
// software quad-float, matching the spec's own hedge that the wider
// precision is a when-available feature, not an invariant every backend
// must satisfy identically.
type Decimal struct {
	Hdr   object.Header
	Value float64
}

func (d *Decimal) Header() *object.Header { return &d.Hdr }

func NewDecimal(v float64) *Decimal {
	d := &Decimal{Value: v}
	d.Hdr.Init(DecimalType, false)
	return d
}

var DecimalType = &object.TypeInfo{
	Name:   "Decimal",
	Flags:  object.FlagStruct,
	Hash:   func(o object.Object) (uint64, error) { return hashFloat(o.(*Decimal).Value) },
	Truthy: func(o object.Object) bool { return o.(*Decimal).Value != 0 },
	Repr:   func(o object.Object) string { return fmt.Sprintf("%g", o.(*Decimal).Value) },
	Compare: func(a, b object.Object, mode object.CompareMode) (*bool, error) {
		return compareOrdered(intAsFloat(a), intAsFloat(b), mode)
	},
	Ops: object.OpsSlots{
		Add: decimalOp(func(x, y float64) float64 { return x + y }),
		Sub: decimalOp(func(x, y float64) float64 { return x - y }),
		Mul: decimalOp(func(x, y float64) float64 { return x * y }),
		Div: decimalDiv,
		Neg: func(a object.Object) (object.Object, error) { return NewDecimal(-a.(*Decimal).Value), nil },
	},
}

func decimalOp(fn func(x, y float64) float64) object.BinOpFn {
	return func(a, b object.Object) (object.Object, error) {
		return NewDecimal(fn(intAsFloat(a), intAsFloat(b))), nil
	}
}

func decimalDiv(a, b object.Object) (object.Object, error) {
	bv := intAsFloat(b)
	if bv == 0 {
		return nil, zerrors.DivisionByZero("/")
	}
	return NewDecimal(intAsFloat(a) / bv), nil
}

// hashFloat implements the published CPython float-hash recipe (spec
// §4.5): decompose v into a base-2 mantissa/exponent pair and fold the
// mantissa's bits into the same (2^61-1)-modulus domain object.HashInt64
// uses, so integer and decimal values that are mathematically equal hash
// identically.
func hashFloat(v float64) (uint64, error) {
	const bits = 28
	const P = object.PrimeModulusHash

	if math.IsNaN(v) {
		return 0, zerrors.Unhashable("Decimal(NaN)")
	}
	if math.IsInf(v, 1) {
		return P + 1, nil // CPython's sentinel for +inf, reduced isn't meaningful mod P but kept distinct
	}
	if math.IsInf(v, -1) {
		return ^uint64(P + 1), nil
	}

	neg := v < 0
	if neg {
		v = -v
	}

	frac, exp := math.Frexp(v) // v == frac * 2^exp, 0.5 <= frac < 1 (or frac == 0)
	var hash uint64
	for frac != 0 {
		hash = ((hash << bits) & P) | (hash >> (61 - bits))
		frac *= 1 << bits
		intPart := uint64(frac)
		frac -= float64(intPart)
		hash += intPart
		if hash >= P {
			hash -= P
		}
		exp -= bits
	}

	e := exp % 61
	if e < 0 {
		e += 61
	}
	hash = ((hash << uint(e)) & P) | (hash >> uint(61-e))

	if neg {
		hash = P - hash
	}
	if hash == P {
		hash = 0
	}
	return hash, nil
}
