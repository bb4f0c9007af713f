// Package interp is the opcode dispatch loop: it turns a bytecode.Code
// plus a fiber.Frame into running state, following the stack-based
// execution model and exception-unwinding contract of spec §4.10. No
// original interpreter-loop source survived retrieval (the pack's
// argon/vm/ subtree stops at config.cpp and fiber.cpp), so this package
// is grounded directly on that prose plus the already-built
// internal/bytecode opcode/stack-effect tables and internal/fiber
// Frame/Fiber types rather than on a line-by-line original; see
// DESIGN.md's Open Questions for the gap.
package interp

import (
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
)

// ErrorValue wraps a *zerrors.RuntimeError as a first-class Object so a
// fiber's panic slot and a trap handler's operand stack can hold it like
// any other value (spec §4.10 "panicking sets a per-fiber error object").
type ErrorValue struct {
	Hdr object.Header
	gch gc.GCHead
	Err *zerrors.RuntimeError
}

func (e *ErrorValue) Header() *object.Header { return &e.Hdr }
func (e *ErrorValue) GCHead() *gc.GCHead     { return &e.gch }

// NewErrorValue wraps err as an Object.
func NewErrorValue(err *zerrors.RuntimeError) *ErrorValue {
	e := &ErrorValue{Err: err}
	e.Hdr.Init(ErrorValueType, false)
	return e
}

var ErrorValueType = &object.TypeInfo{
	Name:  "Error",
	Flags: object.FlagStruct,
	Repr:  func(o object.Object) string { return o.(*ErrorValue).Err.Error() },
	Str:   func(o object.Object) string { return o.(*ErrorValue).Err.Error() },
}
