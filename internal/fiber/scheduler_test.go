package fiber

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSchedulerRunsSpawnedFiber(t *testing.T) {
	var mu sync.Mutex
	ran := map[uint64]bool{}

	s := NewScheduler(2, func(f *Fiber) {
		mu.Lock()
		ran[f.ID()] = true
		mu.Unlock()
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	f := NewFiber(0)
	s.Spawn(f)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := ran[f.ID()]
		mu.Unlock()
		if done {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("scheduler never ran the spawned fiber")
}

func TestSchedulerDistributesLoadAcrossWorkers(t *testing.T) {
	var wg sync.WaitGroup
	s := NewScheduler(4, func(f *Fiber) {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	const n = 40
	wg.Add(n)
	for i := 0; i < n; i++ {
		s.Spawn(NewFiber(0))
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("not all spawned fibers ran")
	}
}

func TestSchedulerStopJoinsWorkers(t *testing.T) {
	s := NewScheduler(2, func(f *Fiber) {}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
