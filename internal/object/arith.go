package object

import zerrors "github.com/zephyr-lang/zephyr/internal/errors"

// BinOpSelect picks the relevant slot out of a type's OpsSlots, e.g.
// func(o *OpsSlots) BinOpFn { return o.Add }. Passed rather than the
// slot itself so BinaryOp always resolves against a's own type — the
// same type that is about to execute the call.
type BinOpSelect func(*OpsSlots) BinOpFn

// BinaryOp dispatches a binary arithmetic/bitwise operator to a's type
// (spec §4.4 numeric promotion dispatches through the left operand).
// Used both by the interpreter's arithmetic opcodes and by the
// compiler's constant-folding pass, which needs to execute an operator
// against two statics at compile time exactly as the VM would at
// runtime.
func BinaryOp(sel BinOpSelect, a, b Object) (Object, error) {
	t := a.Header().Type()
	fn := sel(&t.Ops)
	if fn == nil {
		return nil, zerrors.TypeMismatch("operand supporting this operator", t.Name)
	}
	return fn(a, b)
}
