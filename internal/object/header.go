// Package object implements the universal ArObject header (spec §3.1),
// the TypeInfo descriptor (spec §3.2), and the slot-dispatched operations
// every built-in and user-defined type shares (spec §4.4).
package object

import (
	"sync/atomic"
)

// headerFlag bits packed into Header.word alongside the strong count.
// Layout (low to high): [STATIC][INLINE][GC][OVERFLOW][strong count...].
type headerFlag uint64

const (
	flagStatic   headerFlag = 1 << 0
	flagInline   headerFlag = 1 << 1
	flagGC       headerFlag = 1 << 2
	flagOverflow headerFlag = 1 << 3
	countShift              = 4
	countMask    uint64     = ^uint64(1<<countShift - 1)
)

// Header is the three-field prefix spec §3.1 requires on every runtime
// value: a reference counter, an immutable type pointer, and an atomic
// optional monitor pointer. Every object body carries a Header field and
// a Header() accessor implementing Object, the Go analogue of the spec's
// "any pointer to an object body can be reinterpreted as an ArObject".
type Header struct {
	word    atomic.Uint64 // packed STATIC/INLINE/GC/OVERFLOW + inline strong count
	typ     *TypeInfo     // immutable after construction
	monitor atomic.Pointer[Monitor]
	side    atomic.Pointer[SideTable]
}

// Object is implemented by every heap value the runtime manages; it
// exposes its own Header so refcounting and slot dispatch are uniform.
type Object interface {
	Header() *Header
}

// Init sets up a freshly allocated Header. static objects never leave
// INLINE accounting and refcount operations on them are no-ops (spec
// §3.3 "STATIC objects never transition to a SideTable").
//
// The header's GC bit is left clear even when typ is GC-capable
// (typ.Flags&FlagGC != 0): that flag only says the type's instances are
// eligible for tracking. The header bit itself records whether this
// particular object is currently inserted into a collector generation,
// and only Track/TrackIf (package gc) ever set it (spec §4.3).
func (h *Header) Init(typ *TypeInfo, static bool) {
	h.typ = typ
	var w uint64 = uint64(flagInline)
	if static {
		w |= uint64(flagStatic)
	}
	w |= 1 << countShift // initial strong count of 1
	h.word.Store(w)
}

// Type returns the object's immutable type descriptor.
func (h *Header) Type() *TypeInfo { return h.typ }

func (h *Header) flags() headerFlag { return headerFlag(h.word.Load() &^ countMask) }

func (h *Header) isStatic() bool { return h.flags()&flagStatic != 0 }

func (h *Header) isInline() bool { return h.flags()&flagInline != 0 }

// IsGCTracked reports whether the GC bit is set on this header.
func (h *Header) IsGCTracked() bool { return h.flags()&flagGC != 0 }

// SetGCTracked sets or clears the GC bit; used when a container first
// acquires a GC-capable child (spec §4.3 TrackIf).
func (h *Header) SetGCTracked(tracked bool) {
	for {
		old := h.word.Load()
		var nw uint64
		if tracked {
			nw = old | uint64(flagGC)
		} else {
			nw = old &^ uint64(flagGC)
		}
		if h.word.CompareAndSwap(old, nw) {
			return
		}
	}
}

func inlineCount(w uint64) uint64 { return w >> countShift }

// StrongCount returns the current strong reference count, inline or via
// the SideTable.
func (h *Header) StrongCount() uint64 {
	if st := h.side.Load(); st != nil {
		return st.strong.Load()
	}
	return inlineCount(h.word.Load())
}

// WeakCount returns the current weak reference count (always 0 until a
// SideTable has been promoted).
func (h *Header) WeakCount() uint64 {
	if st := h.side.Load(); st != nil {
		return st.weak.Load()
	}
	return 0
}

// Monitor lazily allocates (if absent) and returns the object's per-object
// mutex + wait queue, used by `sync` blocks (spec glossary "Monitor").
func (h *Header) Monitor() *Monitor {
	if m := h.monitor.Load(); m != nil {
		return m
	}
	m := newMonitor()
	if h.monitor.CompareAndSwap(nil, m) {
		return m
	}
	return h.monitor.Load()
}
