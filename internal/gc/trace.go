package gc

import "github.com/zephyr-lang/zephyr/internal/object"

// traceObject invokes obj's trace slot, if its type declares one. Every
// GC-capable type must expose trace(self, callback) per spec §3.5;
// types with no cycle-capable payload simply leave the slot nil.
func traceObject(obj object.Object, visit func(object.Object)) {
	t := obj.Header().Type()
	if t == nil || t.Trace == nil {
		return
	}
	t.Trace(obj, visit)
}

// restoreReachable implements step 3 of the tri-color algorithm: walk the
// reference graph from a root (a head whose scratch count did not reach
// zero in step 2) and force every transitively reachable head's scratch
// counter back to a nonzero, "alive" value, regardless of what step 2 left
// it at. visited stops the walk from looping forever on the very cycles
// this pass exists to tolerate.
func restoreReachable(h *GCHead, gen int) {
	if h.visited {
		return
	}
	h.visited = true
	if h.scratch == 0 {
		h.scratch = 1
	}
	traceObject(h.owner, func(child object.Object) {
		ct, ok := child.(Trackable)
		if !ok {
			return
		}
		ch := ct.GCHead()
		if ch.gen == gen {
			restoreReachable(ch, gen)
		}
	})
}
