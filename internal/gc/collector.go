package gc

import (
	"sync"
	"sync/atomic"

	"github.com/zephyr-lang/zephyr/internal/logx"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// NumGenerations is the fixed generation count spec §3.5 names (ages 0,
// 1, 2).
const NumGenerations = 3

// promotionFactor is how many times a generation must be collected before
// its next-elder neighbor is due for collection too (spec §3.5
// "Triggering": "older generations are collected when the immediately
// younger generation has reached its own times-collected threshold").
const promotionFactor = 10

// defaultGen0Threshold is the youngest generation's allocation-minus-
// deallocation trigger point; older generations scale up by
// promotionFactor per generation.
const defaultGen0Threshold = 700

// Collector is the per-runtime tracing GC coordinator: three
// generations, a garbage list pending Sweep, and the single
// at-most-one-collector-at-a-time flag spec §3.5 requires so collection
// never blocks allocators on anything heavier than the track-lock.
type Collector struct {
	mu   sync.Mutex // the "global track-lock" (spec §5): held for the duration of a Collect pass and briefly by Track/TrackIf
	gens [NumGenerations]*generation

	collecting atomic.Bool

	garbageMu sync.Mutex
	garbage   *GCHead // sentinel; drained by Sweep

	log *logx.Logger
}

// New builds a Collector with the default per-generation thresholds.
func New(log *logx.Logger) *Collector {
	if log == nil {
		log = logx.Default
	}
	c := &Collector{log: log}
	threshold := defaultGen0Threshold
	for i := range c.gens {
		c.gens[i] = newGeneration(i, threshold)
		threshold *= promotionFactor
	}
	c.garbage = &GCHead{}
	c.garbage.next, c.garbage.prev = c.garbage, c.garbage
	return c
}

// Track moves an untracked GC-capable object into generation 0 (spec
// §3.5 "Track(obj)"), setting the GC bit on its header. If generation 0
// has crossed its allocation threshold, a collection of generation 0 is
// triggered synchronously before Track returns.
func (c *Collector) Track(obj Trackable) {
	h := obj.GCHead()

	c.mu.Lock()
	h.owner = obj
	obj.Header().SetGCTracked(true)
	c.gens[0].insert(h)
	due := c.gens[0].count >= c.gens[0].threshold
	c.mu.Unlock()

	c.log.Debugf("gc", "tracked %s into generation 0", obj.Header().Type().Name)

	if due {
		c.Collect(0)
	}
}

// TrackIf tracks holder if child is itself GC-tracked (spec §3.5
// "TrackIf(holder, maybe_gc_child)"): a container only becomes
// GC-visible once it actually holds cycle-capable payload. child need not
// be Trackable at all (most values aren't GC-capable); it simply never
// triggers tracking in that case.
func (c *Collector) TrackIf(holder Trackable, child object.Object) {
	if child == nil || !child.Header().IsGCTracked() {
		return
	}
	if !holder.Header().IsGCTracked() {
		c.Track(holder)
	}
}

// Collect runs the tri-color algorithm on gen and, while the collected
// generation's times-collected count is a multiple of promotionFactor,
// cascades into the next (older) generation too (spec §3.5
// "Triggering"). It returns the total number of objects destroyed. If a
// collection is already in flight, Collect is a no-op: the
// single-collector flag serializes collection without blocking
// allocators that call Track concurrently.
func (c *Collector) Collect(gen int) int {
	if gen < 0 || gen >= NumGenerations {
		return 0
	}
	if !c.collecting.CompareAndSwap(false, true) {
		return 0
	}
	defer c.collecting.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for g := gen; ; {
		n := c.collectGenLocked(g)
		total += n
		c.log.Debugf("gc", "collect gen %d: %d destroyed, %d live", g, n, c.gens[g].count)

		if g+1 >= NumGenerations {
			break
		}
		if c.gens[g].timesCollected%promotionFactor != 0 {
			break
		}
		g++
	}
	return total
}

// collectGenLocked runs one generation through the tri-color algorithm
// (spec §3.5 steps 1-5): scratch-count initialization, in-generation
// trace-and-decrement, root re-trace, destruction of the unreachable
// set, and promotion of survivors. Caller must hold mu.
func (c *Collector) collectGenLocked(gen int) int {
	g := c.gens[gen]

	// Step 1: scratch := current strong count.
	g.each(func(h *GCHead) {
		h.scratch = int64(h.owner.Header().StrongCount())
		h.visited = false
	})

	// Step 2: trace every in-generation out-edge, decrementing the
	// target's scratch counter.
	g.each(func(h *GCHead) {
		traceObject(h.owner, func(child object.Object) {
			ct, ok := child.(Trackable)
			if !ok {
				return
			}
			ch := ct.GCHead()
			if ch.gen == gen {
				ch.scratch--
			}
		})
	})

	// Step 3: externally reachable roots (scratch != 0) re-trace,
	// restoring every transitively reachable head's scratch to nonzero.
	var roots []*GCHead
	g.each(func(h *GCHead) {
		if h.scratch != 0 {
			roots = append(roots, h)
		}
	})
	for _, r := range roots {
		restoreReachable(r, gen)
	}

	// Step 4: scratch == 0 survivors of step 3 are garbage.
	var dead []*GCHead
	g.each(func(h *GCHead) {
		if h.scratch == 0 {
			dead = append(dead, h)
		}
	})
	for _, h := range dead {
		g.remove(h)
		if t := h.owner.Header().Type(); t != nil && t.Destroy != nil {
			t.Destroy(h.owner)
		}
		h.finalized = true
		c.pushGarbage(h)
	}

	// Step 5: survivors promote to the next generation; the oldest
	// generation wraps around to itself (spec §3.5 step 5).
	next := gen + 1
	if next >= NumGenerations {
		next = gen
	}
	if next != gen {
		var survivors []*GCHead
		g.each(func(h *GCHead) { survivors = append(survivors, h) })
		for _, h := range survivors {
			g.remove(h)
			c.gens[next].insert(h)
		}
	}

	g.timesCollected++
	return len(dead)
}

func (c *Collector) pushGarbage(h *GCHead) {
	c.garbageMu.Lock()
	h.next = c.garbage
	h.prev = c.garbage.prev
	c.garbage.prev.next = h
	c.garbage.prev = h
	c.garbageMu.Unlock()
}

// Sweep drains the garbage list built up by Collect, calling Free on
// every head whose owner implements Freeable (spec §3.5 step 6: "releases
// object-type references and frees the slab blocks"). It takes no lock
// the allocating path ever holds, matching spec §3.5's requirement that
// sweeping run outside any mutator critical section. It returns the
// number of heads drained.
func (c *Collector) Sweep() int {
	c.garbageMu.Lock()
	var heads []*GCHead
	for n := c.garbage.next; n != c.garbage; {
		next := n.next
		heads = append(heads, n)
		n = next
	}
	c.garbage.next, c.garbage.prev = c.garbage, c.garbage
	c.garbageMu.Unlock()

	for _, h := range heads {
		h.unlink()
		if f, ok := h.owner.(Freeable); ok {
			f.Free()
		}
	}
	c.log.Debugf("gc", "swept %d garbage heads", len(heads))
	return len(heads)
}

// Stats reports a point-in-time snapshot of each generation's live count
// and times-collected counter, for diagnostics and tests.
type Stats struct {
	Live           [NumGenerations]int
	TimesCollected [NumGenerations]int
}

func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s Stats
	for i, g := range c.gens {
		s.Live[i] = g.count
		s.TimesCollected[i] = g.timesCollected
	}
	return s
}
