package syncx

// Cond is a condition variable built on NotifyQueue rather than the
// standard library's sync.Cond, so a fiber waiting on it parks in a way
// internal/fiber.Fiber's ticket field can observe and later inspect
// (spec §4.8). L is any lock satisfying the Locker shape Wait needs to
// release before parking and reacquire after waking.
type Cond struct {
	L     Locker
	queue *NotifyQueue
}

// Locker is satisfied by RecursiveSharedMutex (via owner-bound closures)
// or a plain Mutex/RWMutex write-side.
type Locker interface {
	Lock()
	Unlock()
}

// NewCond returns a Cond guarded by l.
func NewCond(l Locker) *Cond {
	return &Cond{L: l, queue: NewNotifyQueue()}
}

// Wait releases L, blocks until Signal or Broadcast wakes this waiter,
// then reacquires L before returning — the same contract as sync.Cond's
// Wait, substituting NotifyQueue's channel-park for a semaphore wait.
func (c *Cond) Wait() {
	_, done := c.queue.Park()
	c.L.Unlock()
	<-done
	c.L.Lock()
}

// Signal wakes one waiter, if any are parked.
func (c *Cond) Signal() { c.queue.NotifyOne() }

// Broadcast wakes every parked waiter.
func (c *Cond) Broadcast() { c.queue.NotifyAll() }
