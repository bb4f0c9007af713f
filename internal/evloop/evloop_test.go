package evloop

import (
	"io"
	"testing"
	"time"

	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/logx"
	"github.com/zephyr-lang/zephyr/internal/object"
)

func newTestScheduler() *fiber.Scheduler {
	return fiber.NewScheduler(1, func(*fiber.Fiber) {}, logx.New(io.Discard, logx.Error))
}

func waitForStatus(t *testing.T, f *fiber.Fiber, want fiber.Status, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f.Status() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("fiber status = %s, want %s", f.Status(), want)
}

func TestSetTimeoutFiresAfterDeadlineAndResumesFiber(t *testing.T) {
	sched := newTestScheduler()
	l := New(sched)
	f := fiber.NewFiber(0)

	l.SetTimeout(f, 10, func(tt *TimerTask) (Result, object.Object) {
		return Success, nil
	})

	stop := make(chan struct{})
	go l.Run(stop)
	defer close(stop)

	waitForStatus(t, f, fiber.Runnable, time.Second)
}

func TestTimerHeapOrdersByDeadline(t *testing.T) {
	sched := newTestScheduler()
	l := New(sched)

	var order []int
	done := make(chan struct{}, 3)
	mk := func(id int) func(*TimerTask) (Result, object.Object) {
		return func(*TimerTask) (Result, object.Object) {
			order = append(order, id)
			done <- struct{}{}
			return Success, nil
		}
	}

	l.SetTimeout(fiber.NewFiber(0), 30, mk(3))
	l.SetTimeout(fiber.NewFiber(0), 10, mk(1))
	l.SetTimeout(fiber.NewFiber(0), 20, mk(2))

	stop := make(chan struct{})
	go l.Run(stop)
	defer close(stop)

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("not all timers fired")
		}
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("timers fired out of deadline order: %v", order)
	}
}

func TestSubmitIOResumesFiberOnSuccessAndDequeuesEvent(t *testing.T) {
	sched := newTestScheduler()
	l := New(sched)
	f := fiber.NewFiber(0)

	calls := 0
	l.SubmitIO(f, 0, In, nil, nil, func(e *Event) (Result, object.Object) {
		calls++
		return Success, nil
	})

	l.mu.Lock()
	q := l.fds[0]
	l.mu.Unlock()
	if q == nil || len(q.in) != 1 {
		t.Fatal("expected one queued in-event for fd 0")
	}

	l.runFDCallbacks(0)

	if calls != 1 {
		t.Fatalf("callback ran %d times, want 1", calls)
	}
	waitForStatus(t, f, fiber.Runnable, time.Second)

	l.mu.Lock()
	_, stillQueued := l.fds[0]
	l.mu.Unlock()
	if stillQueued {
		t.Fatal("event queue for fd 0 should have been removed after Success")
	}
}

func TestSubmitIORetryLeavesEventQueued(t *testing.T) {
	sched := newTestScheduler()
	l := New(sched)
	f := fiber.NewFiber(0)

	calls := 0
	l.SubmitIO(f, 0, In, nil, nil, func(e *Event) (Result, object.Object) {
		calls++
		return Retry, nil
	})

	l.runFDCallbacks(0)
	l.runFDCallbacks(0)

	if calls != 2 {
		t.Fatalf("Retry callback ran %d times, want 2 (left queued both times)", calls)
	}
	if f.Status() == fiber.Runnable {
		t.Fatal("Retry must not resume the fiber")
	}
}

func TestFreeListReusesRetiredEvents(t *testing.T) {
	sched := newTestScheduler()
	l := New(sched)
	f := fiber.NewFiber(0)

	l.SubmitIO(f, 0, In, nil, nil, func(e *Event) (Result, object.Object) { return Success, nil })
	l.runFDCallbacks(0)

	l.mu.Lock()
	freeLen := len(l.eventFree)
	var retired *Event
	if freeLen > 0 {
		retired = l.eventFree[freeLen-1]
	}
	l.mu.Unlock()
	if freeLen != 1 {
		t.Fatalf("expected the retired event on the free list, got %d entries", freeLen)
	}

	l.SubmitIO(fiber.NewFiber(0), 1, Out, nil, nil, func(e *Event) (Result, object.Object) { return Continue, nil })
	l.mu.Lock()
	got := l.fds[1].out[0]
	l.mu.Unlock()
	if got != retired {
		t.Fatal("SubmitIO should have reused the freed Event node instead of allocating a new one")
	}
}
