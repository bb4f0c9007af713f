package value

import (
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/syncx"
)

// List is the Language's mutable sequence type. Unlike Dict/Set it has
// no hashing concerns, but it shares the same recursive-mutex discipline
// since its trace callback walks elements under a shared-read lock
// (spec §4.3).
type List struct {
	Hdr   object.Header
	gch   gc.GCHead
	mu    *syncx.RecursiveSharedMutex
	items []object.Object
}

func (l *List) Header() *object.Header { return &l.Hdr }
func (l *List) GCHead() *gc.GCHead     { return &l.gch }

func NewList(items ...object.Object) *List {
	l := &List{mu: syncx.NewRecursiveSharedMutex(), items: append([]object.Object(nil), items...)}
	l.Hdr.Init(ListType, false)
	return l
}

func (l *List) Len(owner syncx.OwnerID) int {
	l.mu.RLock(owner)
	defer l.mu.RUnlock(owner)
	return len(l.items)
}

func (l *List) Get(owner syncx.OwnerID, i int) (object.Object, error) {
	l.mu.RLock(owner)
	defer l.mu.RUnlock(owner)
	if i < 0 || i >= len(l.items) {
		return nil, zerrors.IndexOutOfBounds(i, len(l.items))
	}
	return l.items[i], nil
}

func (l *List) Set(owner syncx.OwnerID, i int, v object.Object) error {
	l.mu.Lock(owner)
	defer l.mu.Unlock(owner)
	if i < 0 || i >= len(l.items) {
		return zerrors.IndexOutOfBounds(i, len(l.items))
	}
	l.items[i] = v
	return nil
}

func (l *List) Append(owner syncx.OwnerID, v object.Object) {
	l.mu.Lock(owner)
	defer l.mu.Unlock(owner)
	l.items = append(l.items, v)
}

func (l *List) Each(owner syncx.OwnerID, fn func(object.Object) bool) {
	l.mu.RLock(owner)
	defer l.mu.RUnlock(owner)
	for _, v := range l.items {
		if !fn(v) {
			return
		}
	}
}

var ListType = &object.TypeInfo{
	Name:   "List",
	Flags:  object.FlagStruct | object.FlagGC,
	Truthy: func(o object.Object) bool { return len(o.(*List).items) > 0 },
	Repr:   func(o object.Object) string { return "<list>" },
	Length: func(o object.Object) (int, error) { return len(o.(*List).items), nil },
	GetItem: func(self, key object.Object) (object.Object, error) {
		l := self.(*List)
		idx, err := indexOf(key)
		if err != nil {
			return nil, err
		}
		return l.Get(nil, idx)
	},
	SetItem: func(self, key, v object.Object) error {
		l := self.(*List)
		idx, err := indexOf(key)
		if err != nil {
			return err
		}
		return l.Set(nil, idx, v)
	},
	Trace: func(self object.Object, visit func(object.Object)) {
		l := self.(*List)
		l.mu.RLock(nil)
		defer l.mu.RUnlock(nil)
		for _, v := range l.items {
			visit(v)
		}
	},
}

func indexOf(key object.Object) (int, error) {
	switch v := key.(type) {
	case *Int:
		return int(v.Value), nil
	case *UInt:
		return int(v.Value), nil
	default:
		return 0, zerrors.TypeMismatch("Int", key.Header().Type().Name)
	}
}
