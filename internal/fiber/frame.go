package fiber

import (
	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Frame is a single activation record (spec §3.8). Stack-allocated
// frames are bump-allocated out of their owning Fiber's stack region and
// released in LIFO order; frames that outlive their fiber (generators)
// are "floating" and individually heap-allocated, mirroring the
// on_stack/floating split in the original fiber allocator.
type Frame struct {
	counter int // ≥1 for callers, +1 per generator reference

	Code    *bytecode.Code
	Globals object.AttributeMap
	Enclosed []object.Object

	Back *Frame

	EvalStack []object.Object // fixed-capacity operand stack, grown to Code.StackSize
	sp        int

	Locals []object.Object

	SyncKeys []*object.Monitor // monitor handles held across `sync` blocks

	Instance object.Object // receiver, for method calls

	InstrPtr int // index into Code.Instr

	ReturnValue object.Object

	// Defers holds instruction pointers of deferred blocks registered by
	// DFR, in registration order; unwinding (normal return or panic)
	// runs them LIFO before the frame is released (spec §4.10 "the
	// interpreter unwinds frames running deferred blocks along the way").
	Defers []int

	floating bool
	fiberID  uintptr
}

// PushDefer registers a deferred block at instruction pointer target.
func (fr *Frame) PushDefer(target int) {
	fr.Defers = append(fr.Defers, target)
}

// PopDefer removes and returns the most recently registered deferred
// block (LIFO order), or ok=false once exhausted.
func (fr *Frame) PopDefer() (target int, ok bool) {
	n := len(fr.Defers)
	if n == 0 {
		return 0, false
	}
	target = fr.Defers[n-1]
	fr.Defers = fr.Defers[:n-1]
	return target, true
}

// NewFrame builds a Frame for code, preferring a bump allocation out of
// fiber's stack region unless floating is requested (spec §3.8
// "frames that outlive the fiber are floating and heap-allocated").
func NewFrame(f *Fiber, code *bytecode.Code, globals object.AttributeMap, floating bool) *Frame {
	slots := code.StackSize + code.SyncSize + code.LocalsSize

	fr := f.frameAlloc(slots, floating)
	fr.counter = 1
	fr.Code = code
	fr.Globals = globals
	fr.EvalStack = make([]object.Object, 0, code.StackSize)
	fr.Locals = make([]object.Object, code.LocalsSize)
	fr.SyncKeys = make([]*object.Monitor, 0, code.SyncSize)
	return fr
}

// Push appends a value to the operand stack.
func (fr *Frame) Push(v object.Object) { fr.EvalStack = append(fr.EvalStack, v) }

// Pop removes and returns the top of the operand stack.
func (fr *Frame) Pop() object.Object {
	n := len(fr.EvalStack)
	v := fr.EvalStack[n-1]
	fr.EvalStack = fr.EvalStack[:n-1]
	return v
}

// Top returns the top of the operand stack without removing it.
func (fr *Frame) Top() object.Object { return fr.EvalStack[len(fr.EvalStack)-1] }

// IncRef bumps the frame's reference count (generators hold an extra
// reference onto the frame that produced them).
func (fr *Frame) IncRef() { fr.counter++ }

// DelFrame decrements fr's counter and, once it reaches zero, decrements
// the back frame's counter and releases fr back to its fiber's stack (or
// frees it, if floating) — spec §3.8 "a frame is deleted only when its
// counter reaches zero; the back frame's counter is decremented
// transitively."
func (f *Fiber) DelFrame(fr *Frame) {
	fr.counter--
	if fr.counter > 0 {
		return
	}
	if fr.Back != nil {
		fr.Back.counter--
	}
	if fr.floating {
		return
	}
	f.frameFree(fr)
}

// DelFrameRec walks fr's back-chain, releasing each frame in turn for as
// long as releasing the previous one dropped the next frame's counter to
// zero too — the normal caller-unwind path, where every non-generator
// frame starts with a counter of exactly 1.
func (f *Fiber) DelFrameRec(fr *Frame) {
	for fr != nil {
		back := fr.Back
		f.DelFrame(fr)
		if back != nil && back.counter != 0 {
			return
		}
		fr = back
	}
}
