package value

import (
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/syncx"
)

// Set is a Dict with no values, sharing the same hTable/recursive-mutex
// shape (spec §4.6).
type Set struct {
	Hdr   object.Header
	gch   gc.GCHead
	mu    *syncx.RecursiveSharedMutex
	table *hTable
}

func (s *Set) Header() *object.Header { return &s.Hdr }
func (s *Set) GCHead() *gc.GCHead     { return &s.gch }

func NewSet() *Set {
	s := &Set{mu: syncx.NewRecursiveSharedMutex(), table: newHTable()}
	s.Hdr.Init(SetType, false)
	return s
}

func (s *Set) Add(owner syncx.OwnerID, item object.Object) (bool, error) {
	s.mu.Lock(owner)
	defer s.mu.Unlock(owner)
	replaced, err := s.table.Set(item, nil)
	return !replaced, err
}

func (s *Set) Contains(owner syncx.OwnerID, item object.Object) (bool, error) {
	s.mu.RLock(owner)
	defer s.mu.RUnlock(owner)
	_, ok, err := s.table.Get(item)
	return ok, err
}

func (s *Set) Remove(owner syncx.OwnerID, item object.Object) (bool, error) {
	s.mu.Lock(owner)
	defer s.mu.Unlock(owner)
	return s.table.Delete(item)
}

func (s *Set) Len(owner syncx.OwnerID) int {
	s.mu.RLock(owner)
	defer s.mu.RUnlock(owner)
	return s.table.Len()
}

func (s *Set) Each(owner syncx.OwnerID, fn func(item object.Object) bool) {
	s.mu.RLock(owner)
	defer s.mu.RUnlock(owner)
	s.table.Each(func(k, _ object.Object) bool { return fn(k) })
}

var SetType = &object.TypeInfo{
	Name:   "Set",
	Flags:  object.FlagStruct | object.FlagGC,
	Truthy: func(o object.Object) bool { return o.(*Set).table.Len() > 0 },
	Repr:   func(o object.Object) string { return "<set>" },
	Length: func(o object.Object) (int, error) { return o.(*Set).table.Len(), nil },
	Contains: func(self, item object.Object) (bool, error) {
		s := self.(*Set)
		s.mu.RLock(nil)
		defer s.mu.RUnlock(nil)
		_, ok, err := s.table.Get(item)
		return ok, err
	},
	Trace: func(self object.Object, visit func(object.Object)) {
		s := self.(*Set)
		s.mu.RLock(nil)
		defer s.mu.RUnlock(nil)
		s.table.Each(func(k, _ object.Object) bool { visit(k); return true })
	},
}
