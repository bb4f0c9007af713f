package fiber

import (
	"context"
	stdrt "runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zephyr-lang/zephyr/internal/logx"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// worker is one OS thread's run-queue, grounded on
// SchedulerWorker: a buffered channel plus an atomically tracked queue
// length so Spawn can pick the least-loaded candidate without
// taking a lock.
type worker struct {
	id       int
	queue    chan *Fiber
	queueLen atomic.Int64
}

// Scheduler multiplexes fibers over a fixed pool of OS threads (spec
// §4.9): exactly one fiber per worker is RUNNING at a time, a woken
// fiber is eligible for any idle worker, and idle workers steal work
// from busier siblings.
type Scheduler struct {
	workers []*worker
	run     func(*Fiber)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	group   *errgroup.Group

	log *logx.Logger
}

// NewScheduler builds a scheduler with numWorkers OS threads (0 selects
// runtime.NumCPU()). run is invoked on a worker goroutine for every
// runnable fiber; it must run the interpreter until the fiber suspends,
// completes, or panics.
func NewScheduler(numWorkers int, run func(*Fiber), log *logx.Logger) *Scheduler {
	if numWorkers <= 0 {
		numWorkers = stdrt.NumCPU()
	}
	s := &Scheduler{run: run, log: log}
	s.workers = make([]*worker, numWorkers)
	for i := range s.workers {
		s.workers[i] = &worker{id: i, queue: make(chan *Fiber, 256)}
	}
	return s
}

// Start launches one goroutine per worker.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	s.group = g
	s.running = true

	for _, w := range s.workers {
		w := w
		g.Go(func() error {
			s.runWorker(gctx, w)
			return nil
		})
	}
	return nil
}

// Stop cancels every worker and waits for them to drain (errgroup join,
// the shutdown idiom used by this runtime's predecessor CLI).
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	g := s.group
	s.mu.Unlock()

	cancel()
	return g.Wait()
}

// Spawn makes f runnable and enqueues it onto the least-loaded worker
// (spec §4.9 "a woken fiber is eligible for any idle OS thread").
func (s *Scheduler) Spawn(f *Fiber) {
	f.SetStatus(Runnable)
	best := s.workers[0]
	bestLen := best.queueLen.Load()
	for _, w := range s.workers[1:] {
		if l := w.queueLen.Load(); l < bestLen {
			best, bestLen = w, l
		}
	}
	select {
	case best.queue <- f:
		best.queueLen.Add(1)
		return
	default:
	}
	// best is saturated; fall back to any worker with room.
	for _, w := range s.workers {
		select {
		case w.queue <- f:
			w.queueLen.Add(1)
			return
		default:
		}
	}
	if s.log != nil {
		s.log.Warnf("fiber", "all worker queues saturated, spawn of fiber %d dropped", f.ID())
	}
}

// FiberSetAsyncResult stores value in f's future slot and marks it
// runnable (spec §4.9).
func (s *Scheduler) FiberSetAsyncResult(f *Fiber, value object.Object) {
	f.SetFuture(value)
	s.Spawn(f)
}

func (s *Scheduler) runWorker(ctx context.Context, w *worker) {
	for {
		select {
		case f := <-w.queue:
			w.queueLen.Add(-1)
			s.dispatch(f)
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Millisecond):
			if f, ok := s.trySteal(w.id); ok {
				s.dispatch(f)
			}
		}
	}
}

func (s *Scheduler) dispatch(f *Fiber) {
	if f.CancelRequested() {
		return
	}
	f.SetStatus(Running)
	s.run(f)
}

// trySteal non-blockingly pulls a fiber from a sibling worker's queue
// (spec §4.9 "work-stealing is an implementation choice"), grounded on
// an ActorScheduler's trySteal round-robin probe.
func (s *Scheduler) trySteal(selfID int) (*Fiber, bool) {
	n := len(s.workers)
	if n < 2 {
		return nil, false
	}
	start := (selfID + 1) % n
	for i := 0; i < n-1; i++ {
		w := s.workers[(start+i)%n]
		select {
		case f := <-w.queue:
			w.queueLen.Add(-1)
			return f, true
		default:
		}
	}
	return nil, false
}

// QueueLengths reports a snapshot of per-worker queue depth, for tests
// and monitoring.
func (s *Scheduler) QueueLengths() []int64 {
	out := make([]int64, len(s.workers))
	for i, w := range s.workers {
		out[i] = w.queueLen.Load()
	}
	return out
}
