package syncx

import "sync"

// NotifyQueue is a ticket-ordered FIFO of parked waiters (spec §4.8). A
// fiber that must block (a mutex it cannot acquire, a channel with no
// ready peer, a condition it is waiting on) registers here and gets back
// a ticket plus a channel to block on; Notify(ticket) wakes that one
// waiter directly. Go gives no userspace stack-switch primitive,
// so "parking" is modeled as the fiber's backing goroutine blocking on a
// channel receive — the same one-goroutine-per-worker shape
// internal/fiber.Scheduler already uses, just blocked instead of idle.
type NotifyQueue struct {
	mu      sync.Mutex
	nextID  uint64
	waiters []*waiter
}

type waiter struct {
	ticket uint64
	ch     chan struct{}
	woken  bool
}

// NewNotifyQueue returns an empty queue.
func NewNotifyQueue() *NotifyQueue { return &NotifyQueue{} }

// Park registers a new waiter at the back of the queue, returning its
// ticket and a channel that is closed exactly once, by whichever of
// NotifyOne/Notify/NotifyAll wakes it.
func (q *NotifyQueue) Park() (ticket uint64, done <-chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	w := &waiter{ticket: q.nextID, ch: make(chan struct{})}
	q.waiters = append(q.waiters, w)
	return w.ticket, w.ch
}

// Notify wakes the specific waiter holding ticket, if it is still
// parked. Returns false if the ticket is unknown (already woken, or
// never issued by this queue).
func (q *NotifyQueue) Notify(ticket uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, w := range q.waiters {
		if w.ticket == ticket {
			q.removeAt(i)
			close(w.ch)
			return true
		}
	}
	return false
}

// NotifyOne wakes the oldest parked waiter (FIFO order), reporting
// whether anyone was waiting.
func (q *NotifyQueue) NotifyOne() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiters) == 0 {
		return false
	}
	w := q.waiters[0]
	q.removeAt(0)
	close(w.ch)
	return true
}

// NotifyAll wakes every parked waiter.
func (q *NotifyQueue) NotifyAll() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, w := range q.waiters {
		close(w.ch)
	}
	q.waiters = nil
}

// Len reports how many waiters are currently parked.
func (q *NotifyQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

func (q *NotifyQueue) removeAt(i int) {
	q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
}
