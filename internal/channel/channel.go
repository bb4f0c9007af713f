// Package channel implements the Language's bounded MPMC channel value
// (spec §4.7): producers and consumers exchange object.Object values
// through a fixed-capacity ring buffer, parking via internal/syncx's
// NotifyQueue when the buffer is full or empty rather than blocking on a
// native Go channel, so a full round trip goes through the same
// park/notify mechanics every other suspension point in the runtime
// uses. The ring buffer itself is Dmitry Vyukov's per-slot sequence-
// number algorithm, grounded directly on
// internal/runtime/concurrency/lfqueue.go (MPMCQueue[T]).
package channel

import (
	"runtime"
	"sync/atomic"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/syncx"
)

type cell struct {
	seq uint64
	val object.Object
}

// Channel is a fixed-capacity object.Object queue with closed/default
// semantics (spec §4.7): Send blocks while full, Recv blocks while empty,
// and Close makes every subsequent Send fail and lets Recv drain
// whatever remains before reporting closed. Grounded on
// argon/vm/datatype/chan.cpp's Chan: defval is returned (IncRef'd there,
// shared directly here since values aren't refcounted by the caller) by
// a read against a closed, drained channel; with no defval configured,
// that same read panics instead.
type Channel struct {
	Hdr object.Header
	gch gc.GCHead

	mask    uint64
	cells   []cell
	enqueue uint64
	dequeue uint64

	closed atomic.Bool
	defval object.Object

	readWait  *syncx.NotifyQueue
	writeWait *syncx.NotifyQueue
}

func (c *Channel) Header() *object.Header { return &c.Hdr }
func (c *Channel) GCHead() *gc.GCHead     { return &c.gch }

// New builds a Channel with room for at least capacity values (rounded
// up to the next power of two, matching the ring buffer's masking
// requirement); capacity 0 is treated as 1 (a rendezvous-sized buffer,
// since an unbuffered Go channel has no equivalent slot to park a value
// in while waiting for a receiver). defval is returned by Recv once the
// channel is closed and drained; nil means "no default", the panic case
// ChanNew's ArObject *defval also allows.
func New(capacity int, defval object.Object) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	capPow2 := uint64(1)
	for capPow2 < uint64(capacity) {
		capPow2 <<= 1
	}
	c := &Channel{
		mask:      capPow2 - 1,
		cells:     make([]cell, capPow2),
		defval:    defval,
		readWait:  syncx.NewNotifyQueue(),
		writeWait: syncx.NewNotifyQueue(),
	}
	for i := range c.cells {
		c.cells[i].seq = uint64(i)
	}
	c.Hdr.Init(ChannelType, false)
	return c
}

var errClosed = zerrors.New(zerrors.KindRuntime, "CHANNEL_CLOSED", "send on closed channel", nil)

// TrySend attempts to enqueue v without blocking. ok is false if the
// buffer is momentarily full; err is errClosed if the channel is closed.
func (c *Channel) TrySend(v object.Object) (ok bool, err *zerrors.RuntimeError) {
	if c.closed.Load() {
		return false, errClosed
	}
	for {
		pos := atomic.LoadUint64(&c.enqueue)
		cl := &c.cells[pos&c.mask]
		seq := atomic.LoadUint64(&cl.seq)
		dif := int64(seq) - int64(pos)
		switch {
		case dif == 0:
			if atomic.CompareAndSwapUint64(&c.enqueue, pos, pos+1) {
				cl.val = v
				atomic.StoreUint64(&cl.seq, pos+1)
				c.readWait.NotifyOne()
				return true, nil
			}
		case dif < 0:
			return false, nil
		default:
			runtime.Gosched()
		}
	}
}

// Send blocks until v is enqueued or the channel is closed.
func (c *Channel) Send(v object.Object) *zerrors.RuntimeError {
	for {
		ok, err := c.TrySend(v)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		_, done := c.writeWait.Park()
		<-done
	}
}

// tryDequeue attempts to pop one real queued value without blocking and
// without any closed/default substitution; got is false once the buffer
// is momentarily (or permanently, if closed) empty.
func (c *Channel) tryDequeue() (v object.Object, got bool) {
	for {
		pos := atomic.LoadUint64(&c.dequeue)
		cl := &c.cells[pos&c.mask]
		seq := atomic.LoadUint64(&cl.seq)
		dif := int64(seq) - int64(pos+1)
		switch {
		case dif == 0:
			if atomic.CompareAndSwapUint64(&c.dequeue, pos, pos+1) {
				v = cl.val
				cl.val = nil
				atomic.StoreUint64(&cl.seq, pos+c.mask+1)
				c.writeWait.NotifyOne()
				return v, true
			}
		case dif < 0:
			return nil, false
		default:
			runtime.Gosched()
		}
	}
}

var errReadClosed = zerrors.New(zerrors.KindRuntime, "CHANNEL_CLOSED", "read from closed channel", nil)

// TryRecv attempts to dequeue a value without blocking. ok is true both
// for a real queued value and for the defval substitution on a closed,
// drained channel (ChanRead's "IncRef(defval)" outcome); closed is true
// once the channel is closed and fully drained with no defval
// configured, the case Recv turns into errReadClosed.
func (c *Channel) TryRecv() (v object.Object, ok bool, closed bool) {
	if v, got := c.tryDequeue(); got {
		return v, true, false
	}
	closed = c.closed.Load()
	if closed && c.defval != nil {
		return c.defval, true, false
	}
	return nil, false, closed
}

// Recv blocks until a value is available. Once the channel is closed and
// drained it returns defval if one was configured, matching ChanRead's
// IncRef(defval) path, or errReadClosed if not (ChanRead's ErrorFormat
// panic path).
func (c *Channel) Recv() (object.Object, *zerrors.RuntimeError) {
	for {
		v, ok, closed := c.TryRecv()
		if ok {
			return v, nil
		}
		if closed {
			return nil, errReadClosed
		}
		_, done := c.readWait.Park()
		<-done
	}
}

// Flush drains every currently buffered value without delivering any of
// them to a reader, waking blocked writers the same way a successful
// Recv would — grounded on chan_flush, which releases the backlog and
// notifies w_queue without touching defval/closed state at all.
func (c *Channel) Flush() {
	for {
		if _, got := c.tryDequeue(); !got {
			return
		}
	}
}

// Close marks the channel closed: further Send calls fail with
// errClosed, and parked readers/writers are woken to observe it.
func (c *Channel) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.readWait.NotifyAll()
		c.writeWait.NotifyAll()
	}
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool { return c.closed.Load() }

var ChannelType = &object.TypeInfo{
	Name:  "Chan",
	Flags: object.FlagStruct | object.FlagGC,
	Repr:  func(o object.Object) string { return "<chan>" },
}
