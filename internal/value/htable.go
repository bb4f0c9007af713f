package value

import (
	"github.com/zephyr-lang/zephyr/internal/object"
)

// hEntry is the intrusive node spec §4.6 calls HEntry: besides the
// key/value pair it carries insertion-order links so Dict and Set
// iterate in insertion order regardless of bucket layout.
// Each entry is its own heap allocation so the order list survives a
// bucket-array resize.
type hEntry struct {
	hash    uint64
	key     object.Object
	value   object.Object // nil for Set entries (key-only)
	deleted bool

	orderNext, orderPrev *hEntry
}

const (
	initialCapacity  = 24
	growthFactor     = 2
	maxLoadFactor    = 0.75
	freeListCapacity = 1024
)

// hTable is the generic open-addressed hash map Dict and Set share
// (Namespace keeps its own nsEntry map) (spec §4.6): linear probing over a bucket array of *hEntry,
// insertion-order doubly linked list for iteration, and a bounded
// free-list recycling removed entries.
type hTable struct {
	buckets []*hEntry
	count   int // live (non-deleted, non-nil) entries
	live    int // count + tombstones, used to decide when to resize
	orderHead, orderTail *hEntry
	freeList []*hEntry
}

func newHTable() *hTable {
	return &hTable{buckets: make([]*hEntry, initialCapacity)}
}

func (t *hTable) Len() int { return t.count }

func (t *hTable) probe(hash uint64) int { return int(hash % uint64(len(t.buckets))) }

// locate returns the entry for key if present, or nil and the bucket
// index where it would be inserted.
func (t *hTable) locate(key object.Object, hash uint64) (*hEntry, int) {
	n := len(t.buckets)
	idx := t.probe(hash)
	firstTombstone := -1
	for i := 0; i < n; i++ {
		slot := (idx + i) % n
		e := t.buckets[slot]
		if e == nil {
			if firstTombstone >= 0 {
				return nil, firstTombstone
			}
			return nil, slot
		}
		if e.deleted {
			if firstTombstone < 0 {
				firstTombstone = slot
			}
			continue
		}
		if e.hash == hash && object.Equal(e.key, key) {
			return e, slot
		}
	}
	if firstTombstone >= 0 {
		return nil, firstTombstone
	}
	return nil, -1 // table full of live entries with no tombstone; caller must grow first
}

func (t *hTable) appendOrder(e *hEntry) {
	e.orderPrev = t.orderTail
	e.orderNext = nil
	if t.orderTail != nil {
		t.orderTail.orderNext = e
	} else {
		t.orderHead = e
	}
	t.orderTail = e
}

func (t *hTable) unlinkOrder(e *hEntry) {
	if e.orderPrev != nil {
		e.orderPrev.orderNext = e.orderNext
	} else {
		t.orderHead = e.orderNext
	}
	if e.orderNext != nil {
		e.orderNext.orderPrev = e.orderPrev
	} else {
		t.orderTail = e.orderPrev
	}
	e.orderNext, e.orderPrev = nil, nil
}

// Get returns the value stored for key (nil for Set-style tables, which
// only care about presence).
func (t *hTable) Get(key object.Object) (object.Object, bool, error) {
	hash, err := object.Hash(key)
	if err != nil {
		return nil, false, err
	}
	e, _ := t.locate(key, hash)
	if e == nil {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set inserts or overwrites key's value, growing the table first if the
// load factor would otherwise be exceeded. It reports whether an
// existing entry was replaced.
func (t *hTable) Set(key, value object.Object) (bool, error) {
	hash, err := object.Hash(key)
	if err != nil {
		return false, err
	}
	if float64(t.live+1) > float64(len(t.buckets))*maxLoadFactor {
		t.grow()
	}
	e, slot := t.locate(key, hash)
	if e != nil {
		e.value = value
		return true, nil
	}
	if slot < 0 {
		t.grow()
		e, slot = t.locate(key, hash)
	}
	ne := t.takeEntry()
	ne.hash, ne.key, ne.value, ne.deleted = hash, key, value, false
	t.buckets[slot] = ne
	t.appendOrder(ne)
	t.count++
	t.live++
	return false, nil
}

// Delete removes key, recycling its entry onto the bounded free-list.
func (t *hTable) Delete(key object.Object) (bool, error) {
	hash, err := object.Hash(key)
	if err != nil {
		return false, err
	}
	e, _ := t.locate(key, hash)
	if e == nil {
		return false, nil
	}
	e.deleted = true
	t.unlinkOrder(e)
	t.count--
	t.releaseEntry(e)
	return true, nil
}

func (t *hTable) takeEntry() *hEntry {
	if n := len(t.freeList); n > 0 {
		e := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		return e
	}
	return &hEntry{}
}

func (t *hTable) releaseEntry(e *hEntry) {
	e.key, e.value = nil, nil
	if len(t.freeList) < freeListCapacity {
		t.freeList = append(t.freeList, e)
	}
}

// grow reinserts every live entry into a bucket array growthFactor times
// larger, clearing tombstones in the process.
func (t *hTable) grow() {
	old := t.orderHead
	newCap := len(t.buckets) * growthFactor
	if newCap < initialCapacity {
		newCap = initialCapacity
	}
	t.buckets = make([]*hEntry, newCap)
	t.orderHead, t.orderTail = nil, nil
	t.live = 0
	for e := old; e != nil; {
		next := e.orderNext
		e.orderNext, e.orderPrev = nil, nil
		slot := t.probe(e.hash)
		n := len(t.buckets)
		for i := 0; i < n; i++ {
			s := (slot + i) % n
			if t.buckets[s] == nil {
				t.buckets[s] = e
				break
			}
		}
		t.appendOrder(e)
		t.live++
		e = next
	}
}

// Each walks entries in insertion order; fn returning false stops the
// walk early.
func (t *hTable) Each(fn func(key, value object.Object) bool) {
	for e := t.orderHead; e != nil; e = e.orderNext {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Clone returns a deep-enough copy (new entries, same key/value objects)
// preserving insertion order (spec §4.6). Namespace.CloneFiltered does
// not go through it.
func (t *hTable) Clone() *hTable {
	out := newHTable()
	t.Each(func(k, v object.Object) bool {
		out.Set(k, v)
		return true
	})
	return out
}
