//go:build linux || darwin || freebsd || netbsd || openbsd

package evloop

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// unixReadiness backs Readiness with poll(2) via golang.org/x/sys/unix,
// grounded on poller_factory_default.go's OS-selection pattern: a single
// syscall wait over every registered fd rather than a goroutine-per-
// connection adaptive-deadline scheme, since this loop owns a bounded fd
// set instead of arbitrary net.Conns.
type unixReadiness struct {
	mu  sync.Mutex
	fds map[int]struct{}
}

// NewReadiness builds the unix implementation of Readiness.
func NewReadiness() Readiness {
	return &unixReadiness{fds: make(map[int]struct{})}
}

func (r *unixReadiness) Add(fd int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fds[fd] = struct{}{}
}

func (r *unixReadiness) Remove(fd int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fds, fd)
}

func (r *unixReadiness) Wait(timeout time.Duration) ([]int, error) {
	r.mu.Lock()
	if len(r.fds) == 0 {
		r.mu.Unlock()
		sleepOrForever(timeout)
		return nil, nil
	}
	pfds := make([]unix.PollFd, 0, len(r.fds))
	for fd := range r.fds {
		pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN | unix.POLLOUT})
	}
	r.mu.Unlock()

	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
	}
	n, err := unix.Poll(pfds, ms)
	if err != nil || n <= 0 {
		return nil, err
	}

	ready := make([]int, 0, n)
	for _, p := range pfds {
		if p.Revents != 0 {
			ready = append(ready, int(p.Fd))
		}
	}
	return ready, nil
}

func sleepOrForever(timeout time.Duration) {
	if timeout < 0 {
		return
	}
	time.Sleep(timeout)
}
