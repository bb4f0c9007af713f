package channel

import (
	"context"
	"sync"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Semaphore is a fair, weighted semaphore with FIFO acquisition (spec
// §4.7's "concurrency primitives" alongside Channel); see DESIGN.md for
// its grounding. Acquire blocks through the same RuntimeError-returning
// style every other blocking call in this package uses rather than a
// bare error.
type Semaphore struct {
	Hdr object.Header
	gch gc.GCHead

	cap int64
	mu  sync.Mutex
	cur int64
	q   []*semWaiter
}

type semWaiter struct {
	weight    int64
	ready     chan struct{}
	cancelled bool
}

func (s *Semaphore) Header() *object.Header { return &s.Hdr }
func (s *Semaphore) GCHead() *gc.GCHead     { return &s.gch }

// NewSemaphore builds a Semaphore with the given total weight capacity;
// a negative capacity is clamped to zero (a semaphore nothing can ever
// acquire without first having something released into it).
func NewSemaphore(capacity int) *Semaphore {
	if capacity < 0 {
		capacity = 0
	}
	s := &Semaphore{cap: int64(capacity)}
	s.Hdr.Init(SemaphoreType, false)
	return s
}

var errWeightTooLarge = zerrors.New(zerrors.KindValue, "SEMAPHORE_OVERWEIGHT", "acquire weight exceeds semaphore capacity", nil)

// TryAcquire takes weight tokens if they are immediately available,
// without blocking or joining the FIFO wait queue.
func (s *Semaphore) TryAcquire(weight int) bool {
	if weight <= 0 {
		return true
	}
	w := int64(weight)
	s.mu.Lock()
	defer s.mu.Unlock()
	if w > s.cap || len(s.q) > 0 {
		return false
	}
	if s.cur+w <= s.cap {
		s.cur += w
		return true
	}
	return false
}

// Acquire blocks until weight tokens can be taken or ctx is cancelled,
// granting queued waiters in FIFO order once capacity frees up.
func (s *Semaphore) Acquire(ctx context.Context, weight int) *zerrors.RuntimeError {
	if weight <= 0 {
		return nil
	}
	w := int64(weight)
	if w > s.cap {
		return errWeightTooLarge
	}

	s.mu.Lock()
	if s.cur+w <= s.cap && len(s.q) == 0 {
		s.cur += w
		s.mu.Unlock()
		return nil
	}
	wt := &semWaiter{weight: w, ready: make(chan struct{})}
	s.q = append(s.q, wt)
	s.grantLocked()
	ready := wt.ready
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		wt.cancelled = true
		s.grantLocked()
		s.mu.Unlock()
		return zerrors.New(zerrors.KindRuntime, "SEMAPHORE_CANCELLED", ctx.Err().Error(), nil)
	case <-ready:
		return nil
	}
}

// Release returns weight tokens to the pool and grants them to the next
// eligible FIFO waiters.
func (s *Semaphore) Release(weight int) {
	if weight <= 0 {
		return
	}
	s.mu.Lock()
	s.cur -= int64(weight)
	if s.cur < 0 {
		s.cur = 0
	}
	s.grantLocked()
	s.mu.Unlock()
}

// grantLocked walks the FIFO queue from the head, granting every request
// that fits within remaining capacity and stopping at the first one that
// doesn't (fairness: a big waiter at the head is not skipped in favor of
// smaller ones behind it).
func (s *Semaphore) grantLocked() {
	i := 0
	for i < len(s.q) {
		wt := s.q[i]
		if wt.cancelled {
			i++
			continue
		}
		if s.cur+wt.weight > s.cap {
			break
		}
		s.cur += wt.weight
		close(wt.ready)
		i++
	}
	s.q = s.q[i:]

	j := 0
	for _, wt := range s.q {
		if wt.cancelled {
			continue
		}
		s.q[j] = wt
		j++
	}
	s.q = s.q[:j]
}

var SemaphoreType = &object.TypeInfo{
	Name:  "Semaphore",
	Flags: object.FlagStruct | object.FlagGC,
	Repr:  func(o object.Object) string { return "<semaphore>" },
}
