package syncx

import (
	"testing"
	"time"
)

func TestMutexTryLockFailsWhileHeld(t *testing.T) {
	m := NewMutex()
	m.Lock()
	if m.TryLock() {
		t.Fatal("TryLock must fail while the mutex is held")
	}
	m.Unlock()
	if !m.TryLock() {
		t.Fatal("TryLock must succeed once the mutex is free")
	}
}

func TestMutexUnlockWakesParkedWaiter(t *testing.T) {
	m := NewMutex()
	m.Lock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()

	// Give the goroutine a chance to park before unlocking.
	time.Sleep(10 * time.Millisecond)
	m.Unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken after Unlock")
	}
}

func TestRWMutexAllowsConcurrentReaders(t *testing.T) {
	m := NewRWMutex()
	m.RLock()
	m.RLock()
	m.RUnlock()
	m.RUnlock()
}

func TestRWMutexExcludesWriterWhileReaderHeld(t *testing.T) {
	m := NewRWMutex()
	m.RLock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("writer must not acquire while a reader holds the lock")
	default:
	}

	m.RUnlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer was never woken after the reader released")
	}
	m.Unlock()
}
