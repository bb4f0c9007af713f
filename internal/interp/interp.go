package interp

import (
	"github.com/zephyr-lang/zephyr/internal/bytecode"
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

// Run drives a fiber to completion or suspension: it executes the
// fiber's Current frame and every frame it calls into, until the
// outermost frame returns, panics uncaught, or a future suspension
// point (channel/mutex/event-loop, not yet wired into this package)
// asks the scheduler to park it. fiber.NewScheduler's run callback
// plugs in here (spec §4.9).
func Run(f *fiber.Fiber) {
	fr := f.Current
	if fr == nil {
		return
	}
	err := RunFrame(f, fr)
	if err != nil {
		f.SetFuture(NewErrorValue(err))
	} else {
		f.SetFuture(fr.ReturnValue)
	}
	f.SetStatus(fiber.Terminated)
}

// RunFrame executes fr's instruction stream to completion (a RET is
// reached, possibly after running any registered deferred blocks) or
// until a panic escapes every trap handler in fr, in which case it is
// returned to the caller, which must itself unwind (DelFrame, run its
// own defers and traps) — the normal recursive-unwind shape of a
// caller-unwind chain (spec §4.10, §3.8).
func RunFrame(f *fiber.Fiber, fr *fiber.Frame) *zerrors.RuntimeError {
	for {
		err := dispatchLoop(f, fr)
		if err == nil {
			runDefers(f, fr, nil)
			return nil
		}

		handlerIP, found := findTrap(fr.Code, fr.InstrPtr)
		if !found {
			runDefers(f, fr, err)
			return err
		}
		fr.Push(NewErrorValue(err))
		fr.InstrPtr = handlerIP
		// loop: resume dispatch at the handler's JEX marker.
	}
}

// findTrap scans forward from ip (inclusive) for the next JEX
// instruction in fr's code, decoding instruction-by-instruction so
// multi-byte arguments are never mistaken for an opcode byte. A
// trap-guarded block's bytecode is expected to end with JEX immediately
// before its handler body (spec §4.10's "the first enclosing
// trap-guarded block catches" — see DESIGN.md for why this positional
// convention, rather than an explicit install opcode, is how traps are
// modeled here).
func findTrap(code *bytecode.Code, ip int) (int, bool) {
	for ip < len(code.Instr) {
		op, _, width := bytecode.DecodeInstr(code.Instr, ip)
		if op == bytecode.OpJEX {
			return ip, true
		}
		ip += width
	}
	return 0, false
}

// runDefers executes fr's registered deferred blocks in LIFO order. Each
// deferred block runs as a nested pass over the same frame starting at
// its instruction pointer, until it reaches a RET; a defer that panics
// chains the earlier cause (spec §7 "a destructor that panics while the
// fiber is already unwinding chains the earlier error as Cause"). The
// frame's return value is pushed as the operand a deferred block's
// closing RET pops, and is restored afterwards, so a deferred block
// never replaces what the frame returns.
func runDefers(f *fiber.Fiber, fr *fiber.Frame, cause *zerrors.RuntimeError) *zerrors.RuntimeError {
	for {
		target, ok := fr.PopDefer()
		if !ok {
			return cause
		}
		saved := fr.InstrPtr
		ret := fr.ReturnValue
		fr.InstrPtr = target
		fr.Push(ret)
		if err := dispatchLoop(f, fr); err != nil {
			if cause != nil {
				err = zerrors.Chain(err, cause)
			}
			cause = err
		}
		fr.InstrPtr = saved
		fr.ReturnValue = ret
	}
}

// dispatchLoop decodes and executes instructions starting at fr.InstrPtr
// until a RET is reached (fr.ReturnValue is set and nil is returned) or
// an opcode raises, in which case the *RuntimeError is returned
// immediately without running defers/traps — that is the caller's job,
// so a deferred block's own dispatchLoop call doesn't recursively
// re-enter trap handling for the outer frame.
func dispatchLoop(f *fiber.Fiber, fr *fiber.Frame) *zerrors.RuntimeError {
	for {
		if f.CancelRequested() {
			return zerrors.New(zerrors.KindRuntime, "CANCELLED", "fiber cancellation requested", nil)
		}

		ip := fr.InstrPtr
		op, arg, width := bytecode.DecodeInstr(fr.Code.Instr, ip)
		fr.InstrPtr = ip + width

		done, err := step(f, fr, op, arg)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// step executes a single opcode against fr, returning done=true once a
// RET has set fr.ReturnValue.
func step(f *fiber.Fiber, fr *fiber.Frame, op bytecode.OpCode, arg uint32) (bool, *zerrors.RuntimeError) {
	switch op {
	case bytecode.OpNOP:

	case bytecode.OpLSTATIC:
		fr.Push(fr.Code.Statics[arg])
	case bytecode.OpLDGBL:
		name := fr.Code.Globals[arg]
		v, _, ok := fr.Globals.Get(name)
		if !ok {
			return false, zerrors.AttributeNotFound("globals", name)
		}
		fr.Push(v)
	case bytecode.OpLDLC:
		fr.Push(fr.Locals[arg])
	case bytecode.OpLDENC:
		fr.Push(fr.Enclosed[arg])
	case bytecode.OpLDSCOPE:
		name := staticName(fr.Code, arg)
		v, _, ok := fr.Globals.Get(name)
		if !ok {
			return false, zerrors.AttributeNotFound("scope", name)
		}
		fr.Push(v)

	case bytecode.OpLDATTR:
		name := staticName(fr.Code, arg)
		recv := fr.Pop()
		v, err := object.AttributeLoad(recv, name, false)
		if err != nil {
			return false, toRuntimeError(err)
		}
		fr.Push(v)
	case bytecode.OpLDMETH:
		name := staticName(fr.Code, arg)
		recv := fr.Pop()
		v, err := object.AttributeLoad(recv, name, false)
		if err != nil {
			return false, toRuntimeError(err)
		}
		if fn, ok := v.(*Function); ok {
			v = fn.Bind(recv)
		}
		fr.Push(v)
	case bytecode.OpSTATTR:
		// STATTR's argument indexes the global name pool, not the
		// statics pool (it is absent from internal/ir's
		// staticIndexOpcodes rewrite set, spec §4.11).
		name := fr.Code.Globals[arg]
		v := fr.Pop()
		recv := fr.Pop()
		if err := object.AttributeSet(recv, name, v); err != nil {
			return false, toRuntimeError(err)
		}

	case bytecode.OpADD, bytecode.OpSUB, bytecode.OpMUL, bytecode.OpDIV, bytecode.OpIDIV,
		bytecode.OpMOD, bytecode.OpSHL, bytecode.OpSHR, bytecode.OpLAND, bytecode.OpLOR, bytecode.OpLXOR:
		b := fr.Pop()
		a := fr.Pop()
		res, err := object.BinaryOp(arithSelect[op], a, b)
		if err != nil {
			return false, toRuntimeError(err)
		}
		fr.Push(res)

	case bytecode.OpJMP:
		fr.InstrPtr = int(arg)
	case bytecode.OpJF:
		if !object.Truthy(fr.Pop()) {
			fr.InstrPtr = int(arg)
		}
	case bytecode.OpJT:
		if object.Truthy(fr.Pop()) {
			fr.InstrPtr = int(arg)
		}
	case bytecode.OpJEX:
		fr.Pop() // discard the caught exception value findTrap pushed
	case bytecode.OpJFOP:
		v := fr.Pop()
		if !object.Truthy(v) {
			fr.InstrPtr = int(arg)
		}
	case bytecode.OpJTOP:
		v := fr.Pop()
		if object.Truthy(v) {
			fr.InstrPtr = int(arg)
		}
	case bytecode.OpJNIL:
		if fr.Top() == nil {
			fr.InstrPtr = int(arg)
		}
	case bytecode.OpJNN:
		if fr.Top() != nil {
			fr.InstrPtr = int(arg)
		}

	case bytecode.OpCALL:
		return false, execCall(f, fr, arg)
	case bytecode.OpSPW:
		return false, execSpawn(f, fr)
	case bytecode.OpINIT:
		return false, execInit(f, fr)
	case bytecode.OpDFR:
		fr.PushDefer(int(arg))
	case bytecode.OpRET:
		fr.ReturnValue = fr.Pop()
		return true, nil

	case bytecode.OpMKDT:
		d := value.NewDict()
		n := int(arg)
		items := make([]object.Object, 2*n)
		for i := 2*n - 1; i >= 0; i-- {
			items[i] = fr.Pop()
		}
		for i := 0; i < n; i++ {
			if _, err := d.Set(f, items[2*i], items[2*i+1]); err != nil {
				return false, toRuntimeError(err)
			}
		}
		fr.Push(d)
	case bytecode.OpMKLT:
		n := int(arg)
		items := make([]object.Object, n)
		for i := n - 1; i >= 0; i-- {
			items[i] = fr.Pop()
		}
		fr.Push(value.NewList(items...))
	case bytecode.OpMKST:
		s := value.NewSet()
		n := int(arg)
		items := make([]object.Object, n)
		for i := n - 1; i >= 0; i-- {
			items[i] = fr.Pop()
		}
		for _, it := range items {
			if _, err := s.Add(f, it); err != nil {
				return false, toRuntimeError(err)
			}
		}
		fr.Push(s)
	case bytecode.OpMKTP:
		n := int(arg)
		items := make([]object.Object, n)
		for i := n - 1; i >= 0; i-- {
			items[i] = fr.Pop()
		}
		fr.Push(value.NewTuple(items...))
	case bytecode.OpPOPGT:
		fr.Pop()

	case bytecode.OpDUP:
		fr.Push(fr.Top())
	case bytecode.OpPOP:
		fr.Pop()
	case bytecode.OpIMPFRM, bytecode.OpIMPMOD:
		name := staticName(fr.Code, arg)
		if ImportModule == nil {
			return false, zerrors.ModuleImport(name, "import subsystem not linked into this runtime build")
		}
		mod, err := ImportModule(name)
		if err != nil {
			return false, toRuntimeError(err)
		}
		fr.Push(mod)

	default:
		return false, zerrors.New(zerrors.KindRuntime, "BAD_OPCODE", "unrecognized opcode", map[string]interface{}{"op": byte(op)})
	}
	return false, nil
}

// arithSelect maps each arithmetic/bitwise opcode to the OpsSlots
// selector object.BinaryOp dispatches through — the same table shape
// internal/optimizer's foldableOp uses for compile-time folding, here
// driving the runtime fallback for operands that weren't both static.
var arithSelect = map[bytecode.OpCode]object.BinOpSelect{
	bytecode.OpADD:  func(o *object.OpsSlots) object.BinOpFn { return o.Add },
	bytecode.OpSUB:  func(o *object.OpsSlots) object.BinOpFn { return o.Sub },
	bytecode.OpMUL:  func(o *object.OpsSlots) object.BinOpFn { return o.Mul },
	bytecode.OpDIV:  func(o *object.OpsSlots) object.BinOpFn { return o.Div },
	bytecode.OpIDIV: func(o *object.OpsSlots) object.BinOpFn { return o.IDiv },
	bytecode.OpMOD:  func(o *object.OpsSlots) object.BinOpFn { return o.Mod },
	bytecode.OpSHL:  func(o *object.OpsSlots) object.BinOpFn { return o.Shl },
	bytecode.OpSHR:  func(o *object.OpsSlots) object.BinOpFn { return o.Shr },
	bytecode.OpLAND: func(o *object.OpsSlots) object.BinOpFn { return o.And },
	bytecode.OpLOR:  func(o *object.OpsSlots) object.BinOpFn { return o.Or },
	bytecode.OpLXOR: func(o *object.OpsSlots) object.BinOpFn { return o.Xor },
}

// staticName reads the string held at the statics pool index a name-
// bearing opcode's argument refers to (LDATTR, LDMETH, LDSCOPE, IMPFRM,
// IMPMOD — internal/ir's staticIndexOpcodes set; STATTR and LDGBL index
// the separate global name pool instead, spec §4.11).
func staticName(code *bytecode.Code, arg uint32) string {
	if s, ok := code.Statics[arg].(*value.String); ok {
		return s.Bytes()
	}
	return ""
}

// toRuntimeError adapts an error surfaced through object.AttributeLoad/
// Compare/etc (already a *zerrors.RuntimeError in this codebase) back to
// the concrete type step deals in.
func toRuntimeError(err error) *zerrors.RuntimeError {
	if re, ok := err.(*zerrors.RuntimeError); ok {
		return re
	}
	return zerrors.New(zerrors.KindRuntime, "WRAPPED", err.Error(), nil)
}
