package object

import zerrors "github.com/zephyr-lang/zephyr/internal/errors"

// Compare dispatches to the type's compare slot. Identity short-circuits
// EQ (reflexive, symmetric); returns nil for incomparable pairs (spec
// §4.4, §8 property 1).
func Compare(a, b Object, mode CompareMode) (*bool, error) {
	if mode == CompareEQ && a == b {
		t := true
		return &t, nil
	}
	t := a.Header().Type()
	if t.Compare == nil {
		if mode == CompareEQ || mode == CompareNE {
			eq := a == b
			if mode == CompareNE {
				eq = !eq
			}
			return &eq, nil
		}
		return nil, nil
	}
	return t.Compare(a, b, mode)
}

// Equal reports whether a and b compare equal, treating incomparable
// pairs as not-equal.
func Equal(a, b Object) bool {
	res, err := Compare(a, b, CompareEQ)
	if err != nil || res == nil {
		return false
	}
	return *res
}

// EqualStrict requires identical types before delegating to Compare
// (spec §4.4).
func EqualStrict(a, b Object) bool {
	if a.Header().Type() != b.Header().Type() {
		return false
	}
	return Equal(a, b)
}

// Hash returns obj's hash, or an error for unhashable types. Equal-valued integer and decimal hash identically
// because their HashFn implementations share the prime-modulus scheme
// (spec §4.4, §4.5).
func Hash(obj Object) (uint64, error) {
	t := obj.Header().Type()
	if t.Hash == nil {
		return 0, zerrors.Unhashable(t.Name)
	}
	return t.Hash(obj)
}

// Truthy reports the object's boolean coercion, defaulting to true for
// types with no truthiness slot.
func Truthy(obj Object) bool {
	t := obj.Header().Type()
	if t.Truthy == nil {
		return true
	}
	return t.Truthy(obj)
}

// Repr and Str dispatch to the corresponding slots, falling back to the
// type name when absent.
func Repr(obj Object) string {
	t := obj.Header().Type()
	if t.Repr != nil {
		return t.Repr(obj)
	}
	return "<" + t.Name + ">"
}

func Str(obj Object) string {
	t := obj.Header().Type()
	if t.Str != nil {
		return t.Str(obj)
	}
	return Repr(obj)
}

// IteratorGet returns the type's iterator for obj; reverse requests a
// reverse-order iterator when the type supports one (spec §4.4).
func IteratorGet(obj Object, reverse bool) (Object, error) {
	t := obj.Header().Type()
	if t.Iter == nil {
		return nil, zerrors.TypeMismatch("iterable", t.Name)
	}
	return t.Iter(obj, reverse)
}

// IteratorNext advances iter, returning ok=false at exhaustion.
func IteratorNext(iter Object) (Object, bool, error) {
	t := iter.Header().Type()
	if t.IterNext == nil {
		return nil, false, zerrors.TypeMismatch("iterator", t.Name)
	}
	return t.IterNext(iter)
}

// PrimeModulusHash implements the prime-modulus scheme spec §4.5
// requires so that integer and decimal values with the same mathematical
// value hash identically; M is the Mersenne-style modulus (2^61-1,
// matching the published CPython float-hash recipe spec §4.5 references).
const PrimeModulusHash uint64 = (1 << 61) - 1

// HashInt64 computes the canonical hash of a signed integer value under
// the prime-modulus scheme.
func HashInt64(v int64) uint64 {
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	h := u % PrimeModulusHash
	if neg {
		h = PrimeModulusHash - h
	}
	if v == -1 { // CPython reserves -1 for "error"; canonical runtimes remap it
		return PrimeModulusHash - 1
	}
	return h
}
