// Package evloop implements the runtime's single-dispatcher-thread,
// non-blocking I/O event loop (spec §4.12): a per-fd event queue plus a
// timer min-heap, both drained by one goroutine that waits on whichever
// fires first and resumes the owning fiber through internal/fiber's
// FiberSetAsyncResult — the same suspend/resume contract spec §5 lists
// "event-loop I/O submission and timer waits" under.
package evloop

import (
	"container/heap"
	"sync"
	"time"

	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Result is a ready event's callback outcome (spec §4.12): SUCCESS/
// FAILURE dequeue the event and resume its fiber with a result or error;
// RETRY leaves it queued because the kernel signaled spuriously;
// CONTINUE leaves it queued without waking the fiber, for a callback
// that internally chains another I/O step.
type Result int

const (
	Success Result = iota
	Failure
	Retry
	Continue
)

// Kind distinguishes a readiness event's direction.
type Kind int

const (
	In Kind = iota
	Out
)

// Event is one pending I/O operation (spec §4.12 "carries the initiator
// fiber, an arbitrary buffer, a callback, flags, and an auxiliary
// object").
type Event struct {
	Fiber    *fiber.Fiber
	FD       int
	Kind     Kind
	Buf      []byte
	Aux      object.Object
	Flags    uint32
	Callback func(*Event) (Result, object.Object)

	next *Event // free-list link
}

// TimerTask is a single-shot deadline callback (spec §4.12 "timer
// min-heap keyed by absolute deadline").
type TimerTask struct {
	DeadlineMS int64
	Fiber      *fiber.Fiber
	Callback   func(*TimerTask) (Result, object.Object)

	index int // heap.Interface bookkeeping
	next  *TimerTask
}

type timerHeap []*TimerTask

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].DeadlineMS < h[j].DeadlineMS }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) {
	t := x.(*TimerTask)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

type fdQueues struct {
	in, out []*Event
}

// maxFreeListLen bounds how many retired Event/TimerTask nodes the loop
// keeps around for reuse before it just lets the GC reclaim them (spec
// §4.12 "bounded free-lists").
const maxFreeListLen = 256

// Loop is one dispatcher: a single goroutine calls Run, which blocks
// until either a registered fd reports readiness or the nearest timer
// expires, then drains every ready callback before waiting again.
type Loop struct {
	mu sync.Mutex

	fds    map[int]*fdQueues
	timers timerHeap

	eventFree []*Event
	timerFree []*TimerTask

	readiness Readiness
	scheduler *fiber.Scheduler

	wake chan struct{} // nudges Run out of its wait early when state changes
}

// New builds a Loop that resumes fibers through scheduler.
func New(scheduler *fiber.Scheduler) *Loop {
	return &Loop{
		fds:       make(map[int]*fdQueues),
		readiness: NewReadiness(),
		scheduler: scheduler,
		wake:      make(chan struct{}, 1),
	}
}

func (l *Loop) allocEvent() *Event {
	if n := len(l.eventFree); n > 0 {
		e := l.eventFree[n-1]
		l.eventFree = l.eventFree[:n-1]
		*e = Event{}
		return e
	}
	return &Event{}
}

func (l *Loop) freeEvent(e *Event) {
	if len(l.eventFree) >= maxFreeListLen {
		return
	}
	l.eventFree = append(l.eventFree, e)
}

func (l *Loop) allocTimer() *TimerTask {
	if n := len(l.timerFree); n > 0 {
		t := l.timerFree[n-1]
		l.timerFree = l.timerFree[:n-1]
		*t = TimerTask{}
		return t
	}
	return &TimerTask{}
}

func (l *Loop) freeTimer(t *TimerTask) {
	if len(l.timerFree) >= maxFreeListLen {
		return
	}
	l.timerFree = append(l.timerFree, t)
}

// SubmitIO registers fd for readiness on kind, appends an Event to the
// fd's queue, and parks f as BLOCKED — the suspension point spec §5
// describes as "event-loop I/O submission". The fiber resumes when cb
// returns Success/Failure, via FiberSetAsyncResult.
func (l *Loop) SubmitIO(f *fiber.Fiber, fd int, kind Kind, buf []byte, aux object.Object, cb func(*Event) (Result, object.Object)) {
	l.mu.Lock()
	q, ok := l.fds[fd]
	if !ok {
		q = &fdQueues{}
		l.fds[fd] = q
		l.readiness.Add(fd)
	}
	e := l.allocEvent()
	e.Fiber, e.FD, e.Kind, e.Buf, e.Aux, e.Callback = f, fd, kind, buf, aux, cb
	if kind == In {
		q.in = append(q.in, e)
	} else {
		q.out = append(q.out, e)
	}
	l.mu.Unlock()

	f.SetStatus(fiber.Blocked)
	l.nudge()
}

// SetTimeout schedules cb to run no earlier than ms milliseconds from
// now, parking f as BLOCKED until it fires (spec §4.12
// "EventLoopSetTimeout(ms) uses the same mechanism with a timer task").
func (l *Loop) SetTimeout(f *fiber.Fiber, ms int64, cb func(*TimerTask) (Result, object.Object)) *TimerTask {
	l.mu.Lock()
	t := l.allocTimer()
	t.DeadlineMS, t.Fiber, t.Callback = nowMS()+ms, f, cb
	heap.Push(&l.timers, t)
	l.mu.Unlock()

	f.SetStatus(fiber.Blocked)
	l.nudge()
	return t
}

func (l *Loop) nudge() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drives the dispatcher until stop is closed. It is meant to run on
// its own goroutine — exactly one per Loop, matching spec §4.12's
// "single dispatcher thread per loop".
func (l *Loop) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		timeout := l.nextTimeout()
		if timeout < 0 && l.fdCount() == 0 {
			// nothing registered at all; avoid busy-looping the readiness
			// primitive and just wait to be nudged by a new submission.
			select {
			case <-l.wake:
			case <-stop:
				return
			}
			continue
		}

		if timeout < 0 {
			// fds are registered but no timer is pending; bound the wait so
			// a timer scheduled while we're blocked in readiness.Wait still
			// gets picked up promptly instead of waiting for fd activity.
			timeout = idlePollInterval
		}
		ready, _ := l.readiness.Wait(timeout)

		l.runExpiredTimers()
		for _, fd := range ready {
			l.runFDCallbacks(fd)
		}
	}
}

// idlePollInterval bounds how long Run waits on the readiness primitive
// when fds are registered but no timer is pending, so a SetTimeout call
// racing with an in-flight wait is still honored within this bound.
const idlePollInterval = 250 * time.Millisecond

func (l *Loop) fdCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fds)
}

func (l *Loop) nextTimeout() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) == 0 {
		return -1
	}
	deadline := l.timers[0].DeadlineMS
	remaining := deadline - nowMS()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}

func (l *Loop) runExpiredTimers() {
	now := nowMS()
	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].DeadlineMS > now {
			l.mu.Unlock()
			return
		}
		t := heap.Pop(&l.timers).(*TimerTask)
		l.mu.Unlock()

		res, val := t.Callback(t)
		if res == Success || res == Failure {
			l.scheduler.FiberSetAsyncResult(t.Fiber, resultValue(res, val))
		}
		// Retry/Continue have no meaning for a deadline that has already
		// passed (unlike fd readiness there is no spurious kernel signal to
		// retry against); a callback that wants another step schedules its
		// own follow-up SetTimeout instead of being requeued here.
		l.mu.Lock()
		l.freeTimer(t)
		l.mu.Unlock()
	}
}

func (l *Loop) runFDCallbacks(fd int) {
	l.mu.Lock()
	q, ok := l.fds[fd]
	if !ok {
		l.mu.Unlock()
		return
	}
	pending := append(append([]*Event(nil), q.in...), q.out...)
	l.mu.Unlock()

	for _, e := range pending {
		res, val := e.Callback(e)
		switch res {
		case Success, Failure:
			l.scheduler.FiberSetAsyncResult(e.Fiber, resultValue(res, val))
			l.removeEvent(fd, e)
		case Retry:
			// leave queued; the kernel signaled spuriously
		case Continue:
			// leave queued; the callback chained another I/O step itself
		}
	}
}

func (l *Loop) removeEvent(fd int, target *Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q, ok := l.fds[fd]
	if !ok {
		return
	}
	q.in = removeFrom(q.in, target)
	q.out = removeFrom(q.out, target)
	if len(q.in) == 0 && len(q.out) == 0 {
		delete(l.fds, fd)
		l.readiness.Remove(fd)
	}
	l.freeEvent(target)
}

func removeFrom(list []*Event, target *Event) []*Event {
	for i, e := range list {
		if e == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// resultValue is the object handed to FiberSetAsyncResult: val on
// Success, an ErrorValue-shaped object.Object on Failure (callers build
// that through internal/interp.NewErrorValue; evloop only threads it
// through, since wrapping it here would import a cycle back up to the
// interpreter package).
func resultValue(res Result, val object.Object) object.Object {
	return val
}
