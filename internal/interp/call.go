package interp

import (
	"github.com/zephyr-lang/zephyr/internal/bytecode"
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

// execCall implements OpCALL: arg packs a 16-bit positional count in its
// low bits and an OpCodeCallMode byte above it (spec §4.10, §6.1). Stack
// order, bottom to top, mirrors how a caller would build the argument
// list left to right: callee, positional args, an optional rest tuple
// (CallModeRestParams), an optional kwargs mapping (CallModeKwParams).
func execCall(f *fiber.Fiber, fr *fiber.Frame, arg uint32) *zerrors.RuntimeError {
	mode := bytecode.OpCodeCallMode(arg >> 16)
	argc := int(arg & 0xFFFF)

	var kwargs object.AttributeMap
	if mode&bytecode.CallModeKwParams != 0 {
		kwargs = attributeMapFrom(fr.Pop())
	}

	var rest []object.Object
	if mode&bytecode.CallModeRestParams != 0 {
		rest = itemsOf(fr.Pop())
	}

	args := make([]object.Object, argc, argc+len(rest))
	for i := argc - 1; i >= 0; i-- {
		args[i] = fr.Pop()
	}
	args = append(args, rest...)

	callee := fr.Pop()
	fn, ok := callee.(*Function)
	if !ok {
		return zerrors.TypeMismatch("callable", callee.Header().Type().Name)
	}

	ret, err := fn.Call(f, fn.Base, args, kwargs)
	if err != nil {
		return toRuntimeError(err)
	}
	fr.Push(ret)
	return nil
}

// attributeMapFrom adapts a kwargs value pushed by the caller into the
// object.AttributeMap Function.Call expects: passed through unchanged if
// it already implements the interface (e.g. a value.Namespace), else
// rebuilt from a Dict's (string-keyed, as kwarg names always are) entries.
func attributeMapFrom(v object.Object) object.AttributeMap {
	if m, ok := v.(object.AttributeMap); ok {
		return m
	}
	if d, ok := v.(*value.Dict); ok {
		ns := value.NewNamespace()
		d.Each(nil, func(key, val object.Object) bool {
			if s, ok := key.(*value.String); ok {
				ns.Set(s.Bytes(), val, object.AttrPublic)
			}
			return true
		})
		return ns
	}
	return nil
}

// itemsOf unpacks a rest-parameter container (List or Tuple) into a
// plain slice for splatting into a call's argument array.
func itemsOf(v object.Object) []object.Object {
	switch c := v.(type) {
	case *value.List:
		var out []object.Object
		c.Each(nil, func(item object.Object) bool {
			out = append(out, item)
			return true
		})
		return out
	case *value.Tuple:
		out := make([]object.Object, c.Len())
		for i := range out {
			out[i], _ = c.Get(i)
		}
		return out
	default:
		return nil
	}
}

// FiberHandle is the value SPW pushes in place of the spawned callable:
// a reference to the new fiber, letting calling code later read its
// Future once internal/channel's await primitives exist to block on it.
type FiberHandle struct {
	Hdr object.Header
	gch gc.GCHead
	F   *fiber.Fiber
}

func (h *FiberHandle) Header() *object.Header { return &h.Hdr }
func (h *FiberHandle) GCHead() *gc.GCHead     { return &h.gch }

var FiberHandleType = &object.TypeInfo{
	Name:  "Fiber",
	Flags: object.FlagStruct,
	Repr:  func(o object.Object) string { return "<fiber>" },
}

// execSpawn implements OpSPW: pops a zero-argument callable, starts it
// running on a freshly allocated fiber, and pushes a FiberHandle in its
// place (net stack effect 0, per the opcode's tabulated StackChange).
// Scheduling onto the shared OS-thread pool (internal/fiber.Scheduler)
// is not threaded through this call path yet, so the new fiber runs on
// its own goroutine rather than a pooled worker — functionally async,
// but outside the Scheduler's load-balancing until that wiring lands.
func execSpawn(f *fiber.Fiber, fr *fiber.Frame) *zerrors.RuntimeError {
	callee := fr.Pop()
	fn, ok := callee.(*Function)
	if !ok {
		return zerrors.TypeMismatch("callable", callee.Header().Type().Name)
	}

	child := fiber.NewFiber(0)
	handle := &FiberHandle{F: child}
	handle.Hdr.Init(FiberHandleType, false)

	go func() {
		ret, err := fn.Call(child, fn.Base, nil, nil)
		if err != nil {
			child.SetFuture(NewErrorValue(toRuntimeError(err)))
		} else {
			child.SetFuture(ret)
		}
		child.SetStatus(fiber.Terminated)
	}()

	fr.Push(handle)
	return nil
}

// execInit implements OpINIT: pops a positional-argument tuple and the
// type to construct, then calls the type's constructor slot. The
// original's multi-level base-initializer chain is not modeled (no
// struct/trait instantiation machinery exists yet to chain through), so
// this only drives a single TypeInfo.New call; see DESIGN.md.
func execInit(f *fiber.Fiber, fr *fiber.Frame) *zerrors.RuntimeError {
	argsTuple := fr.Pop()
	typeObj := fr.Pop()

	t, ok := typeObj.(*object.TypeInfo)
	if !ok {
		return zerrors.TypeMismatch("type", typeObj.Header().Type().Name)
	}
	if t.New == nil {
		return zerrors.New(zerrors.KindType, "NOT_CONSTRUCTIBLE", t.Name+" has no constructor", nil)
	}

	args := itemsOf(argsTuple)
	inst, err := t.New(args, nil)
	if err != nil {
		return toRuntimeError(err)
	}
	fr.Push(inst)
	return nil
}
