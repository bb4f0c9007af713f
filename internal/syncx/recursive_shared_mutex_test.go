package syncx

import (
	"testing"
	"time"
)

func TestRecursiveSharedMutexReentrantWrite(t *testing.T) {
	m := NewRecursiveSharedMutex()
	owner := "fiber-1"

	m.Lock(owner)
	m.Lock(owner) // reentrant
	m.Unlock(owner)
	m.Unlock(owner)

	done := make(chan struct{})
	go func() {
		m.Lock("fiber-2")
		m.Unlock("fiber-2")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second owner never acquired the lock after the first fully released it")
	}
}

func TestRecursiveSharedMutexExcludesOtherWriter(t *testing.T) {
	m := NewRecursiveSharedMutex()
	m.Lock("a")

	acquired := make(chan struct{})
	go func() {
		m.Lock("b")
		close(acquired)
		m.Unlock("b")
	}()

	select {
	case <-acquired:
		t.Fatal("second owner acquired the lock while the first still held it")
	case <-time.After(50 * time.Millisecond):
	}

	m.Unlock("a")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second owner never acquired the lock after release")
	}
}

func TestRecursiveSharedMutexWriterCanAlsoRead(t *testing.T) {
	m := NewRecursiveSharedMutex()
	m.Lock("a")
	m.RLock("a")
	m.RUnlock("a")
	m.Unlock("a")
}

func TestRecursiveSharedMutexUnlockWithoutHoldingPanics(t *testing.T) {
	m := NewRecursiveSharedMutex()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic unlocking a mutex not held")
		}
	}()
	m.Unlock("nobody")
}
