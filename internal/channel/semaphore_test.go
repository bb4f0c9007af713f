package channel

import (
	"context"
	"testing"
	"time"
)

func TestSemaphoreTryAcquireRespectsCapacity(t *testing.T) {
	s := NewSemaphore(2)
	if !s.TryAcquire(2) {
		t.Fatal("expected TryAcquire(2) to succeed against a capacity-2 semaphore")
	}
	if s.TryAcquire(1) {
		t.Fatal("expected TryAcquire(1) to fail once capacity is exhausted")
	}
	s.Release(2)
	if !s.TryAcquire(1) {
		t.Fatal("expected TryAcquire(1) to succeed after Release")
	}
}

func TestSemaphoreAcquireBlocksUntilReleased(t *testing.T) {
	s := NewSemaphore(1)
	if !s.TryAcquire(1) {
		t.Fatal("setup: TryAcquire(1) should succeed")
	}

	done := make(chan struct{})
	go func() {
		if err := s.Acquire(context.Background(), 1); err != nil {
			t.Errorf("Acquire: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Acquire returned before capacity was released")
	case <-time.After(20 * time.Millisecond):
	}

	s.Release(1)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire never woke up after Release")
	}
}

func TestSemaphoreAcquireFailsOnOverweight(t *testing.T) {
	s := NewSemaphore(1)
	if err := s.Acquire(context.Background(), 2); err == nil {
		t.Fatal("expected Acquire to reject a weight larger than capacity")
	}
}

func TestSemaphoreAcquireCancelledByContext(t *testing.T) {
	s := NewSemaphore(1)
	if !s.TryAcquire(1) {
		t.Fatal("setup: TryAcquire(1) should succeed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Acquire(ctx, 1); err == nil {
		t.Fatal("expected Acquire to report the cancelled context")
	}
}
