package syncx

import "sync"

// Mutex is the fiber-aware exclusive lock used at interpreter suspension
// points (spec §4.8 "sync blocks" and user-level locks) — unlike
// RecursiveSharedMutex, which the built-in containers embed and which
// explicitly blocks the calling OS thread because container access is
// never a suspension point, a fiber waiting on a Mutex parks through a
// NotifyQueue so a future scheduler integration can recognize and
// reschedule around it instead of just sitting on the thread.
type Mutex struct {
	mu    sync.Mutex // guards held/queue
	held  bool
	queue *NotifyQueue
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex { return &Mutex{queue: NewNotifyQueue()} }

// Lock blocks until the mutex is free, then takes it.
func (m *Mutex) Lock() {
	for {
		m.mu.Lock()
		if !m.held {
			m.held = true
			m.mu.Unlock()
			return
		}
		_, done := m.queue.Park()
		m.mu.Unlock()
		<-done
	}
}

// TryLock attempts to take the mutex without blocking.
func (m *Mutex) TryLock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return false
	}
	m.held = true
	return true
}

// Unlock releases the mutex, waking the next waiter if any is parked.
func (m *Mutex) Unlock() {
	m.mu.Lock()
	m.held = false
	m.mu.Unlock()
	m.queue.NotifyOne()
}

// RWMutex is the fiber-aware reader/writer lock counterpart to Mutex:
// any number of readers may hold it concurrently, but a writer excludes
// every reader and every other writer (spec §4.8).
type RWMutex struct {
	mu      sync.Mutex
	readers int
	writer  bool
	queue   *NotifyQueue
}

// NewRWMutex returns an unlocked RWMutex.
func NewRWMutex() *RWMutex { return &RWMutex{queue: NewNotifyQueue()} }

// Lock takes exclusive (writer) access.
func (m *RWMutex) Lock() {
	for {
		m.mu.Lock()
		if !m.writer && m.readers == 0 {
			m.writer = true
			m.mu.Unlock()
			return
		}
		_, done := m.queue.Park()
		m.mu.Unlock()
		<-done
	}
}

// Unlock releases exclusive access, waking every parked waiter so both
// readers and the next writer get a chance to re-check the condition.
func (m *RWMutex) Unlock() {
	m.mu.Lock()
	m.writer = false
	m.mu.Unlock()
	m.queue.NotifyAll()
}

// RLock takes shared (reader) access.
func (m *RWMutex) RLock() {
	for {
		m.mu.Lock()
		if !m.writer {
			m.readers++
			m.mu.Unlock()
			return
		}
		_, done := m.queue.Park()
		m.mu.Unlock()
		<-done
	}
}

// RUnlock releases one shared acquisition.
func (m *RWMutex) RUnlock() {
	m.mu.Lock()
	m.readers--
	last := m.readers == 0
	m.mu.Unlock()
	if last {
		m.queue.NotifyAll()
	}
}
