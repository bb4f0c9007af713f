package fiber

import (
	"sync/atomic"

	"github.com/zephyr-lang/zephyr/internal/object"
)

// defaultStackSlots bounds how many Frame-sized slots a fiber's stack
// region reserves before FrameAlloc falls back to individual heap
// allocations, mirroring the original's byte-sized stack_space argument
// to FiberNew (here expressed as a slot count instead of raw bytes,
// since Go's Frame is a GC-managed struct rather than a placement-new'd
// blob).
const defaultStackSlots = 64

// Fiber is a user-space execution context multiplexed over the
// Scheduler's OS-thread pool (spec §3.8).
type Fiber struct {
	id uint64

	status atomic.Int32

	Current *Frame

	future object.Object

	// references threads a cross-fiber wake list: fibers parked waiting
	// on this fiber's completion are linked here (spec §3.8 "a linked
	// reference list for cross-fiber wake-up").
	references []*Fiber

	// ticket holds a notify-queue ticket recorded through SetTicket;
	// syncx's Mutex and Cond park without calling it.
	ticket uint64

	// stack is the bump-allocated region FrameAlloc carves stack frames
	// from; stackCur is the current bump pointer, expressed as a slot
	// index into stack (spec §3.8 "a contiguous stack region used for
	// frame allocation").
	stack    []*Frame
	stackCur int
}

var fiberIDs atomic.Uint64

// NewFiber creates a fiber with its stack region pre-sized to slots
// frame slots (0 selects defaultStackSlots).
func NewFiber(slots int) *Fiber {
	if slots <= 0 {
		slots = defaultStackSlots
	}
	f := &Fiber{
		id:    fiberIDs.Add(1),
		stack: make([]*Frame, slots),
	}
	f.status.Store(int32(Runnable))
	return f
}

// ID returns the fiber's process-unique identifier.
func (f *Fiber) ID() uint64 { return f.id }

// Status returns the fiber's current scheduling state.
func (f *Fiber) Status() Status { return Status(f.status.Load()) }

// SetStatus transitions the fiber's scheduling state.
func (f *Fiber) SetStatus(s Status) { f.status.Store(int32(s)) }

// RequestCancel sets the fiber's status to the cooperative cancel
// marker; the interpreter observes this at the fiber's next yield point
// and raises a cancellation error there (spec §4.9).
func (f *Fiber) RequestCancel() { f.status.Store(int32(cancelMarker)) }

// CancelRequested reports whether RequestCancel has been called and not
// yet observed/cleared by the interpreter.
func (f *Fiber) CancelRequested() bool { return Status(f.status.Load()) == cancelMarker }

// frameAlloc carves a frame out of the fiber's stack region unless
// floating is requested or the region is exhausted, mirroring
// Fiber::FrameAlloc's on_stack/heap split.
func (f *Fiber) frameAlloc(slots int, floating bool) *Frame {
	if !floating && f.stackCur < len(f.stack) {
		fr := f.stack[f.stackCur]
		if fr == nil {
			fr = &Frame{}
			f.stack[f.stackCur] = fr
		} else {
			*fr = Frame{}
		}
		fr.fiberID = uintptr(f.id)
		f.stackCur++
		return fr
	}
	fr := &Frame{floating: true}
	return fr
}

// frameFree returns a stack-allocated frame to the bump region in LIFO
// order (spec §3.8 "stack-allocated frames are released back to the
// fiber stack in LIFO order").
func (f *Fiber) frameFree(fr *Frame) {
	if fr.fiberID != uintptr(f.id) {
		return
	}
	if f.stackCur > 0 {
		f.stackCur--
	}
}

// Future returns the result stored by FiberSetAsyncResult, or nil if
// none has been set yet.
func (f *Fiber) Future() object.Object { return f.future }

// SetFuture stores fut in the fiber's future slot. The scheduler calls
// this via FiberSetAsyncResult.
func (f *Fiber) SetFuture(fut object.Object) { f.future = fut }

// AddReference registers waiter as wanting to be woken when this fiber
// completes (spec §3.8 cross-fiber wake-up list).
func (f *Fiber) AddReference(waiter *Fiber) {
	f.references = append(f.references, waiter)
}

// References returns the fibers parked waiting on this one.
func (f *Fiber) References() []*Fiber { return f.references }

// Ticket returns the notify-queue ticket this fiber parked under, if any.
func (f *Fiber) Ticket() uint64 { return f.ticket }

// SetTicket records the notify-queue ticket this fiber parked under.
func (f *Fiber) SetTicket(t uint64) { f.ticket = t }
