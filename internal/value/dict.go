package value

import (
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/syncx"
)

// Dict is the Language's hash map (spec §4.6): a shared open-addressed
// hTable guarded by a recursive mutex so a hash or compare callback
// invoked while the lock is held (e.g. a user-defined __hash__ that reads
// the same dict) can re-enter without deadlocking.
type Dict struct {
	Hdr   object.Header
	gch   gc.GCHead
	mu    *syncx.RecursiveSharedMutex
	table *hTable
}

func (d *Dict) Header() *object.Header { return &d.Hdr }
func (d *Dict) GCHead() *gc.GCHead     { return &d.gch }

func NewDict() *Dict {
	d := &Dict{mu: syncx.NewRecursiveSharedMutex(), table: newHTable()}
	d.Hdr.Init(DictType, false)
	return d
}

func (d *Dict) Get(owner syncx.OwnerID, key object.Object) (object.Object, bool, error) {
	d.mu.RLock(owner)
	defer d.mu.RUnlock(owner)
	return d.table.Get(key)
}

func (d *Dict) Set(owner syncx.OwnerID, key, value object.Object) (bool, error) {
	d.mu.Lock(owner)
	defer d.mu.Unlock(owner)
	return d.table.Set(key, value)
}

func (d *Dict) Delete(owner syncx.OwnerID, key object.Object) (bool, error) {
	d.mu.Lock(owner)
	defer d.mu.Unlock(owner)
	return d.table.Delete(key)
}

func (d *Dict) Len(owner syncx.OwnerID) int {
	d.mu.RLock(owner)
	defer d.mu.RUnlock(owner)
	return d.table.Len()
}

// Each walks entries in insertion order under a shared lock.
func (d *Dict) Each(owner syncx.OwnerID, fn func(key, value object.Object) bool) {
	d.mu.RLock(owner)
	defer d.mu.RUnlock(owner)
	d.table.Each(fn)
}

var DictType = &object.TypeInfo{
	Name:  "Dict",
	Flags: object.FlagStruct | object.FlagGC,
	Truthy: func(o object.Object) bool { return o.(*Dict).table.Len() > 0 },
	Repr:   func(o object.Object) string { return "<dict>" },
	Length: func(o object.Object) (int, error) { return o.(*Dict).table.Len(), nil },
	GetItem: func(self, key object.Object) (object.Object, error) {
		d := self.(*Dict)
		d.mu.RLock(nil)
		defer d.mu.RUnlock(nil)
		v, ok, err := d.table.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, zerrors.KeyNotFound(object.Repr(key))
		}
		return v, nil
	},
	SetItem: func(self, key, v object.Object) error {
		d := self.(*Dict)
		d.mu.Lock(nil)
		defer d.mu.Unlock(nil)
		_, err := d.table.Set(key, v)
		return err
	},
	Contains: func(self, item object.Object) (bool, error) {
		d := self.(*Dict)
		d.mu.RLock(nil)
		defer d.mu.RUnlock(nil)
		_, ok, err := d.table.Get(item)
		return ok, err
	},
	// Trace takes a shared-read lock while walking, per spec §4.3
	// "containers that guard their contents with a lock must take a
	// shared-read lock during trace".
	Trace: func(self object.Object, visit func(object.Object)) {
		d := self.(*Dict)
		d.mu.RLock(nil)
		defer d.mu.RUnlock(nil)
		d.table.Each(func(k, v object.Object) bool {
			visit(k)
			visit(v)
			return true
		})
	},
}
