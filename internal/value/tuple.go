package value

import (
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Tuple is List's immutable sibling: fixed at construction, so it needs
// no mutex at all, only the GC trace slot for cycle safety.
type Tuple struct {
	Hdr   object.Header
	gch   gc.GCHead
	items []object.Object
}

func (t *Tuple) Header() *object.Header { return &t.Hdr }
func (t *Tuple) GCHead() *gc.GCHead     { return &t.gch }

func NewTuple(items ...object.Object) *Tuple {
	t := &Tuple{items: append([]object.Object(nil), items...)}
	t.Hdr.Init(TupleType, false)
	return t
}

func (t *Tuple) Len() int { return len(t.items) }

func (t *Tuple) Get(i int) (object.Object, error) {
	if i < 0 || i >= len(t.items) {
		return nil, zerrors.IndexOutOfBounds(i, len(t.items))
	}
	return t.items[i], nil
}

var TupleType = &object.TypeInfo{
	Name:   "Tuple",
	Flags:  object.FlagStruct | object.FlagGC,
	Truthy: func(o object.Object) bool { return len(o.(*Tuple).items) > 0 },
	Repr:   func(o object.Object) string { return "<tuple>" },
	Length: func(o object.Object) (int, error) { return len(o.(*Tuple).items), nil },
	GetItem: func(self, key object.Object) (object.Object, error) {
		idx, err := indexOf(key)
		if err != nil {
			return nil, err
		}
		return self.(*Tuple).Get(idx)
	},
	Trace: func(self object.Object, visit func(object.Object)) {
		for _, v := range self.(*Tuple).items {
			visit(v)
		}
	},
}
