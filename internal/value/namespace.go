package value

import (
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/syncx"
)

// nsEntry is Namespace's own intrusive, insertion-ordered entry: unlike
// Dict/Set it is keyed by a plain Go string (attribute names are never
// user Objects) and carries the visibility flags spec §4.6 layers onto
// values. WEAK entries store a object.WeakRef instead of a strong hold.
type nsEntry struct {
	name  string
	value object.Object
	weak  *object.WeakRef
	flags object.AttrFlags

	orderNext, orderPrev *nsEntry
}

// Namespace implements object.AttributeMap and is the type tp_map/
// embedded-namespace container for structs, traits and modules (spec
// §4.6).
type Namespace struct {
	Hdr object.Header
	gch gc.GCHead
	mu  *syncx.RecursiveSharedMutex

	entries              map[string]*nsEntry
	orderHead, orderTail *nsEntry
}

func (n *Namespace) Header() *object.Header { return &n.Hdr }
func (n *Namespace) GCHead() *gc.GCHead     { return &n.gch }

func NewNamespace() *Namespace {
	n := &Namespace{mu: syncx.NewRecursiveSharedMutex(), entries: map[string]*nsEntry{}}
	n.Hdr.Init(NamespaceType, false)
	return n
}

func (n *Namespace) appendOrder(e *nsEntry) {
	e.orderPrev = n.orderTail
	if n.orderTail != nil {
		n.orderTail.orderNext = e
	} else {
		n.orderHead = e
	}
	n.orderTail = e
}

func (n *Namespace) unlinkOrder(e *nsEntry) {
	if e.orderPrev != nil {
		e.orderPrev.orderNext = e.orderNext
	} else {
		n.orderHead = e.orderNext
	}
	if e.orderNext != nil {
		e.orderNext.orderPrev = e.orderPrev
	} else {
		n.orderTail = e.orderPrev
	}
}

// Get implements object.AttributeMap. A WEAK entry resolves through its
// WeakRef, returning found=false once the referent has been destroyed.
func (n *Namespace) Get(name string) (object.Object, object.AttrFlags, bool) {
	n.mu.RLock(nil)
	defer n.mu.RUnlock(nil)
	e, ok := n.entries[name]
	if !ok {
		return nil, 0, false
	}
	if e.flags&object.AttrWeak != 0 {
		if !e.weak.Upgrade() {
			return nil, 0, false
		}
		defer object.Release(e.value, nil) // undo the strong ref Upgrade just took; caller gets a borrowed reference
	}
	return e.value, e.flags, true
}

// Set implements object.AttributeMap. Returns false if the entry is
// CONST and already present (spec §4.4 "Access flags ... gate writes").
func (n *Namespace) Set(name string, v object.Object, flags object.AttrFlags) bool {
	n.mu.Lock(nil)
	defer n.mu.Unlock(nil)
	if e, ok := n.entries[name]; ok {
		if e.flags&object.AttrConst != 0 {
			return false
		}
		e.value, e.flags = v, flags
		if flags&object.AttrWeak != 0 {
			e.weak = v.Header().IncWeak()
		} else {
			e.weak = nil
		}
		return true
	}
	e := &nsEntry{name: name, value: v, flags: flags}
	if flags&object.AttrWeak != 0 {
		e.weak = v.Header().IncWeak()
	}
	n.entries[name] = e
	n.appendOrder(e)
	return true
}

// Delete removes name; returns false if absent.
func (n *Namespace) Delete(name string) bool {
	n.mu.Lock(nil)
	defer n.mu.Unlock(nil)
	e, ok := n.entries[name]
	if !ok {
		return false
	}
	delete(n.entries, name)
	n.unlinkOrder(e)
	return true
}

// Keys implements object.AttributeMap, returning names in insertion order.
func (n *Namespace) Keys() []string {
	n.mu.RLock(nil)
	defer n.mu.RUnlock(nil)
	out := make([]string, 0, len(n.entries))
	for e := n.orderHead; e != nil; e = e.orderNext {
		out = append(out, e.name)
	}
	return out
}

// CloneFiltered copies entries whose flags pass keep, for trait
// composition and module import (spec §4.6 "A clone with filter mask
// selectively copies entries").
func (n *Namespace) CloneFiltered(keep func(object.AttrFlags) bool) *Namespace {
	n.mu.RLock(nil)
	defer n.mu.RUnlock(nil)
	out := NewNamespace()
	for e := n.orderHead; e != nil; e = e.orderNext {
		if keep == nil || keep(e.flags) {
			out.Set(e.name, e.value, e.flags)
		}
	}
	return out
}

var NamespaceType = &object.TypeInfo{
	Name:  "Namespace",
	Flags: object.FlagStruct | object.FlagGC,
	Truthy: func(o object.Object) bool { return len(o.(*Namespace).entries) > 0 },
	Repr:   func(o object.Object) string { return "<namespace>" },
	Length: func(o object.Object) (int, error) { return len(o.(*Namespace).entries), nil },
	GetAttr: func(self object.Object, key string, static bool) (object.Object, error) {
		n := self.(*Namespace)
		v, _, ok := n.Get(key)
		if !ok {
			return nil, zerrors.AttributeNotFound("Namespace", key)
		}
		return v, nil
	},
	SetAttr: func(self object.Object, key string, v object.Object) error {
		n := self.(*Namespace)
		if !n.Set(key, v, object.AttrPublic) {
			return zerrors.Unassignable("Namespace", key)
		}
		return nil
	},
	Trace: func(self object.Object, visit func(object.Object)) {
		n := self.(*Namespace)
		n.mu.RLock(nil)
		defer n.mu.RUnlock(nil)
		for e := n.orderHead; e != nil; e = e.orderNext {
			if e.flags&object.AttrWeak == 0 {
				visit(e.value)
			}
		}
	},
}
