package object

import (
	"sync/atomic"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
)

// maxInlineCount bounds how high the inline strong count can climb before
// a SideTable promotion is forced (spec §3.3 "When the inline strong
// count would overflow"). A real 60-bit field never overflows in
// practice; this cap keeps the overflow path reachable and testable
// without requiring an actual 2^60 increments.
const maxInlineCount = 1 << 20

// SideTable is the out-of-line strong+weak counter pair a Header's word
// is replaced by on inline-count overflow or first weak acquisition
// (spec §3.3, glossary "SideTable").
type SideTable struct {
	strong atomic.Uint64
	weak   atomic.Uint64
	owner  *Header
}

// Destructor is invoked once, when the last strong reference to an
// object is released.
type Destructor func(Object)

// IncStrong acquires a strong reference. It can only fail if a SideTable
// promotion is required and the allocator is exhausted (spec §3.3).
func (h *Header) IncStrong() bool {
	if h.isStatic() {
		return true
	}
	if st := h.side.Load(); st != nil {
		st.strong.Add(1)
		return true
	}
	for {
		old := h.word.Load()
		cnt := inlineCount(old)
		if cnt+1 > maxInlineCount {
			return h.promoteAndInc(old)
		}
		nw := (old &^ countMask) | ((cnt + 1) << countShift)
		if h.word.CompareAndSwap(old, nw) {
			return true
		}
	}
}

// promoteAndInc replaces the inline header word with a SideTable carrying
// the current count plus one, then retires the INLINE bit.
func (h *Header) promoteAndInc(old uint64) bool {
	st := &SideTable{owner: h}
	st.strong.Store(inlineCount(old) + 1)
	if !h.side.CompareAndSwap(nil, st) {
		// another goroutine promoted first; just bump its table.
		h.side.Load().strong.Add(1)
		return true
	}
	for {
		cur := h.word.Load()
		nw := (cur &^ (uint64(flagInline) | countMask)) | uint64(flagOverflow)
		if h.word.CompareAndSwap(cur, nw) {
			return true
		}
	}
}

// DecStrong releases a strong reference and reports whether it was the
// last one (the caller must then run the destructor).
func (h *Header) DecStrong() bool {
	if h.isStatic() {
		return false
	}
	if st := h.side.Load(); st != nil {
		remaining := st.strong.Add(^uint64(0)) // -1
		return remaining == 0
	}
	for {
		old := h.word.Load()
		cnt := inlineCount(old)
		if cnt == 0 {
			return false
		}
		nw := (old &^ countMask) | ((cnt - 1) << countShift)
		if h.word.CompareAndSwap(old, nw) {
			return cnt-1 == 0
		}
	}
}

// IncWeak acquires a weak reference, forcing a SideTable promotion if one
// does not already exist (spec §3.3 "the first weak acquisition promotes
// the header").
func (h *Header) IncWeak() *WeakRef {
	if h.isStatic() {
		return &WeakRef{target: h, static: true}
	}
	st := h.side.Load()
	if st == nil {
		old := h.word.Load()
		cand := &SideTable{owner: h}
		cand.strong.Store(inlineCount(old))
		if h.side.CompareAndSwap(nil, cand) {
			for {
				cur := h.word.Load()
				nw := (cur &^ (uint64(flagInline) | countMask)) | uint64(flagOverflow)
				if h.word.CompareAndSwap(cur, nw) {
					break
				}
			}
			st = cand
		} else {
			st = h.side.Load()
		}
	}
	st.weak.Add(1)
	return &WeakRef{target: h, side: st}
}

// DecWeak releases a weak reference. When both strong and weak counts
// have reached zero, the SideTable itself becomes collectible.
func (h *Header) DecWeak() {
	st := h.side.Load()
	if st == nil {
		return
	}
	st.weak.Add(^uint64(0))
}

// Acquire increments the strong count, panicking with a RuntimeError on
// the one failure mode spec §3.3 allows (SideTable allocation exhaustion
// is modeled as unreachable here since SideTable is a plain Go struct,
// but the call is kept so callers match the C++ contract shape).
func Acquire(o Object) {
	if !o.Header().IncStrong() {
		panic(zerrors.OutOfMemory(0))
	}
}

// Release decrements the strong count and runs destroy if this was the
// last reference.
func Release(o Object, destroy Destructor) {
	if o.Header().DecStrong() && destroy != nil {
		destroy(o)
	}
}
