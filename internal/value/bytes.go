package value

import (
	"sync"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// bufferStorage is the shared, refcounted backing store multiple Bytes
// views (and their frozen siblings) may point into (spec §4.5 "Bytes
// wraps a BufferView onto a shared, refcounted backing storage").
type bufferStorage struct {
	mu    sync.RWMutex
	buf   []byte
	owner atomicRefcount
}

// atomicRefcount is a tiny plain counter; bufferStorage isn't an
// object.Object itself (it has no type, no attributes), so it is kept
// outside internal/object's header machinery and refcounted by hand the
// way a region allocator refcounts backing slabs.
type atomicRefcount struct {
	mu    sync.Mutex
	count int
}

func (r *atomicRefcount) inc() {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

// dec returns true if this was the last reference.
func (r *atomicRefcount) dec() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count--
	return r.count == 0
}

// Bytes is a mutable-by-default byte buffer; Freeze returns an immutable
// view sharing the same backing storage (spec §4.5).
type Bytes struct {
	Hdr      object.Header
	storage  *bufferStorage
	start    int
	length   int
	immutable bool
}

func (b *Bytes) Header() *object.Header { return &b.Hdr }

func NewBytes(data []byte) *Bytes {
	buf := make([]byte, len(data))
	copy(buf, data)
	st := &bufferStorage{buf: buf}
	st.owner.count = 1
	b := &Bytes{storage: st, start: 0, length: len(buf)}
	b.Hdr.Init(BytesType, false)
	return b
}

// View returns a snapshot copy of the view's bytes.
func (b *Bytes) View() []byte {
	b.storage.mu.RLock()
	defer b.storage.mu.RUnlock()
	out := make([]byte, b.length)
	copy(out, b.storage.buf[b.start:b.start+b.length])
	return out
}

// Len reports the view's length in bytes.
func (b *Bytes) Len() int { return b.length }

// SetByte writes a single byte at offset i; it fails on a frozen view
// (spec §4.5 "freezing produces an immutable bytes").
func (b *Bytes) SetByte(i int, v byte) error {
	if b.immutable {
		return zerrors.Unassignable("Bytes", "frozen")
	}
	if i < 0 || i >= b.length {
		return zerrors.IndexOutOfBounds(i, b.length)
	}
	b.storage.mu.Lock()
	b.storage.buf[b.start+i] = v
	b.storage.mu.Unlock()
	return nil
}

// Freeze returns a new immutable Bytes sharing this view's storage
// (incrementing the storage's plain refcount) and window.
func (b *Bytes) Freeze() *Bytes {
	b.storage.owner.inc()
	out := &Bytes{storage: b.storage, start: b.start, length: b.length, immutable: true}
	out.Hdr.Init(BytesType, false)
	return out
}

var BytesType = &object.TypeInfo{
	Name:   "Bytes",
	Flags:  object.FlagStruct,
	Truthy: func(o object.Object) bool { return o.(*Bytes).length > 0 },
	Repr:   func(o object.Object) string { return "<bytes>" },
	Length: func(o object.Object) (int, error) { return o.(*Bytes).length, nil },
	GetBuffer: func(o object.Object) ([]byte, error) {
		b := o.(*Bytes)
		b.storage.mu.RLock()
		return b.storage.buf[b.start : b.start+b.length], nil
	},
	ReleaseBuffer: func(o object.Object) {
		o.(*Bytes).storage.mu.RUnlock()
	},
}
