package value

import (
	"fmt"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Int and UInt are the two concrete integer types spec §4.5 describes as
// "a discriminated union over a 64-bit signed or unsigned underlying
// value": rather than a tagged union, each gets its own Go type and
// TypeInfo, and arithmetic promotes to UInt whenever either operand is
// unsigned.
type Int struct {
	Hdr   object.Header
	Value int64
}

type UInt struct {
	Hdr   object.Header
	Value uint64
}

func (i *Int) Header() *object.Header  { return &i.Hdr }
func (u *UInt) Header() *object.Header { return &u.Hdr }

func NewInt(v int64) *Int {
	i := &Int{Value: v}
	i.Hdr.Init(IntType, false)
	return i
}

func NewUInt(v uint64) *UInt {
	u := &UInt{Value: v}
	u.Hdr.Init(UIntType, false)
	return u
}

var IntType = &object.TypeInfo{
	Name:  "Int",
	Flags: object.FlagStruct,
	Hash:  func(o object.Object) (uint64, error) { return object.HashInt64(o.(*Int).Value), nil },
	Truthy: func(o object.Object) bool { return o.(*Int).Value != 0 },
	Repr:   func(o object.Object) string { return fmt.Sprintf("%d", o.(*Int).Value) },
	Compare: func(a, b object.Object, mode object.CompareMode) (*bool, error) {
		return compareOrdered(intAsFloat(a), intAsFloat(b), mode)
	},
	Ops: object.OpsSlots{
		Add: intAdd, Sub: intSub, Mul: intMul, Div: intDiv, IDiv: intIDiv, Mod: intMod,
		Shl: intShl, Shr: intShr, And: intAnd, Or: intOr, Xor: intXor,
		Neg: func(a object.Object) (object.Object, error) { return NewInt(-a.(*Int).Value), nil },
	},
}

var UIntType = &object.TypeInfo{
	Name:  "UInt",
	Flags: object.FlagStruct,
	Hash:  func(o object.Object) (uint64, error) { return hashUint64(o.(*UInt).Value), nil },
	Truthy: func(o object.Object) bool { return o.(*UInt).Value != 0 },
	Repr:   func(o object.Object) string { return fmt.Sprintf("%d", o.(*UInt).Value) },
	Compare: func(a, b object.Object, mode object.CompareMode) (*bool, error) {
		return compareOrdered(intAsFloat(a), intAsFloat(b), mode)
	},
	Ops: object.OpsSlots{
		Add: intAdd, Sub: intSub, Mul: intMul, Div: intDiv, IDiv: intIDiv, Mod: intMod,
		Shl: intShl, Shr: intShr, And: intAnd, Or: intOr, Xor: intXor,
	},
}

func intAsFloat(o object.Object) float64 {
	switch v := o.(type) {
	case *Int:
		return float64(v.Value)
	case *UInt:
		return float64(v.Value)
	case *Decimal:
		return v.Value
	default:
		return 0
	}
}

func compareOrdered(a, b float64, mode object.CompareMode) (*bool, error) {
	var r bool
	switch mode {
	case object.CompareEQ:
		r = a == b
	case object.CompareNE:
		r = a != b
	case object.CompareGR:
		r = a > b
	case object.CompareGRQ:
		r = a >= b
	case object.CompareLE:
		r = a < b
	case object.CompareLEQ:
		r = a <= b
	default:
		return nil, nil
	}
	return &r, nil
}

// eitherUnsigned reports whether promoting a binary op between a and b should
// yield UInt (spec §4.5 "Arithmetic promotes to unsigned when either
// operand is unsigned").
func eitherUnsigned(a, b object.Object) bool {
	_, au := a.(*UInt)
	_, bu := b.(*UInt)
	return au || bu
}

func asU64(o object.Object) uint64 {
	switch v := o.(type) {
	case *Int:
		return uint64(v.Value)
	case *UInt:
		return v.Value
	}
	return 0
}

func asI64(o object.Object) int64 {
	switch v := o.(type) {
	case *Int:
		return v.Value
	case *UInt:
		return int64(v.Value)
	}
	return 0
}

func intBinOp(a, b object.Object, signed func(x, y int64) int64, unsigned func(x, y uint64) uint64) (object.Object, error) {
	if eitherUnsigned(a, b) {
		return NewUInt(unsigned(asU64(a), asU64(b))), nil
	}
	return NewInt(signed(asI64(a), asI64(b))), nil
}

func intAdd(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x + y }, func(x, y uint64) uint64 { return x + y })
}

func intSub(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x - y }, func(x, y uint64) uint64 { return x - y })
}

func intMul(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x * y }, func(x, y uint64) uint64 { return x * y })
}

// intDiv is the true-division operator: per spec §4.5 "very large
// integer/integer division produces a Decimal to avoid overflow", true
// division between integers always yields a Decimal.
func intDiv(a, b object.Object) (object.Object, error) {
	bv := asI64(b)
	if bv == 0 {
		return nil, zerrors.DivisionByZero("/")
	}
	return NewDecimal(intAsFloat(a) / intAsFloat(b)), nil
}

func intIDiv(a, b object.Object) (object.Object, error) {
	if asI64(b) == 0 {
		return nil, zerrors.DivisionByZero("//")
	}
	return intBinOp(a, b, func(x, y int64) int64 { return x / y }, func(x, y uint64) uint64 { return x / y })
}

func intMod(a, b object.Object) (object.Object, error) {
	if asI64(b) == 0 {
		return nil, zerrors.DivisionByZero("%")
	}
	return intBinOp(a, b, func(x, y int64) int64 { return x % y }, func(x, y uint64) uint64 { return x % y })
}

func intShl(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x << uint64(y) }, func(x, y uint64) uint64 { return x << y })
}

func intShr(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x >> uint64(y) }, func(x, y uint64) uint64 { return x >> y })
}

func intAnd(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x & y }, func(x, y uint64) uint64 { return x & y })
}

func intOr(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x | y }, func(x, y uint64) uint64 { return x | y })
}

func intXor(a, b object.Object) (object.Object, error) {
	return intBinOp(a, b, func(x, y int64) int64 { return x ^ y }, func(x, y uint64) uint64 { return x ^ y })
}

// hashUint64 mirrors object.HashInt64's prime-modulus scheme for the
// unsigned domain, so an Int and a UInt holding the same mathematical
// value hash identically (spec §4.5).
func hashUint64(v uint64) uint64 {
	return v % object.PrimeModulusHash
}
