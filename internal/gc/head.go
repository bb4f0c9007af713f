// Package gc implements the tri-color, per-generation tracing collector
// that runs orthogonal to internal/object's reference counting (spec
// §3.5): only types that set the GC bit are tracked, and tracking exists
// solely to reclaim reference cycles the counter can never see on its own.
package gc

import "github.com/zephyr-lang/zephyr/internal/object"

// Trackable is implemented by GC-capable object bodies: an ordinary
// object.Object plus the preceding GCHead the collector threads into a
// generation's intrusive list.
type Trackable interface {
	object.Object
	GCHead() *GCHead
}

// Freeable is implemented by Trackable bodies that own a slab allocation
// and a strong reference to their own TypeInfo; Sweep calls Free once a
// head has been drained from the garbage list, outside any mutator
// critical section (spec §3.5 step 6).
type Freeable interface {
	Free()
}

// GCHead is the intrusive node a GCHead-carrying object is prefixed with
// (spec §3.5): next/prev thread it into its generation's circular list,
// scratch is the per-collection reachability counter, visited guards the
// step-3 re-trace against cycles, and finalized marks a head that has
// already had its destructor run and is only waiting on Sweep.
type GCHead struct {
	next, prev *GCHead
	owner      Trackable
	gen        int
	scratch    int64
	visited    bool
	finalized  bool
}

func (h *GCHead) unlink() {
	if h.next != nil {
		h.next.prev = h.prev
	}
	if h.prev != nil {
		h.prev.next = h.next
	}
	h.next, h.prev = nil, nil
}

// Generation reports which generation currently owns this head (0, 1 or
// 2); heads not yet tracked report -1.
func (h *GCHead) Generation() int {
	if h.owner == nil {
		return -1
	}
	return h.gen
}

// Finalized reports whether the collector has already invoked this
// object's destructor and is only waiting on Sweep to release it.
func (h *GCHead) Finalized() bool { return h.finalized }
