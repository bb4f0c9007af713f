package object

import (
	"fmt"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
)

// TypeFlag is the BASE/TRAIT/STRUCT classification plus lifecycle bits
// from spec §3.2.
type TypeFlag uint32

const (
	FlagBase TypeFlag = 1 << iota
	FlagTrait
	FlagStruct
	FlagInitialized
	FlagWeakable
	FlagGC
)

// CompareMode selects the comparison spec §4.4 dispatches through.
type CompareMode int

const (
	CompareEQ CompareMode = iota
	CompareNE
	CompareGR
	CompareGRQ
	CompareLE
	CompareLEQ
)

// AttrFlags gate attribute writes and copies (spec §4.4).
type AttrFlags uint8

const (
	AttrConst AttrFlags = 1 << iota
	AttrPublic
	AttrWeak
	AttrNonCopyable
)

// AttributeMap is implemented by the namespace type embedded in object
// bodies and by a type's tp_map; kept as an interface here so package
// object never imports the concrete container package (avoids an import
// cycle between object and value).
type AttributeMap interface {
	Get(name string) (Object, AttrFlags, bool)
	Set(name string, v Object, flags AttrFlags) bool
	Keys() []string
}

// Core, buffer, number, object, subscript and ops slot function types
// (spec §3.2).
type (
	ConstructorFn func(args []Object, kwargs AttributeMap) (Object, error)
	DestructorFn  func(Object)
	TraceFn       func(self Object, visit func(Object))
	HashFn        func(Object) (uint64, error)
	TruthyFn      func(Object) bool
	CompareFn     func(a, b Object, mode CompareMode) (*bool, error) // nil *bool = incomparable
	ReprFn        func(Object) string
	StrFn         func(Object) string
	IterFn        func(self Object, reverse bool) (Object, error)
	IterNextFn    func(iter Object) (Object, bool, error)

	GetBufferFn     func(Object) ([]byte, error)
	ReleaseBufferFn func(Object)

	AsIndexFn   func(Object) (int64, error)
	AsIntegerFn func(Object) (int64, error)

	GetAttrFn func(self Object, key string, static bool) (Object, error)
	SetAttrFn func(self Object, key string, value Object) error

	LengthFn   func(Object) (int, error)
	GetItemFn  func(self, key Object) (Object, error)
	SetItemFn  func(self, key, value Object) error
	GetSliceFn func(self Object, start, stop, step int) (Object, error)
	SetSliceFn func(self Object, start, stop, step int, value Object) error
	ContainsFn func(self, item Object) (bool, error)

	BinOpFn    func(a, b Object) (Object, error)
	UnaryOpFn  func(a Object) (Object, error)
	InPlaceFn  func(self, other Object) (Object, error)
	IncDecFn   func(self Object) (Object, error)
)

// OpsSlots groups the arithmetic/bitwise binary, unary, in-place and
// increment/decrement operators (spec §3.2 "ops slots").
type OpsSlots struct {
	Add, Sub, Mul, Div, IDiv, Mod     BinOpFn
	Shl, Shr, And, Or, Xor            BinOpFn
	Neg, Invert, Pos                  UnaryOpFn
	IAdd, ISub, IMul, IDivIP, IModIP  InPlaceFn
	Inc, Dec                          IncDecFn
}

// TypeInfo is the static type descriptor from spec §3.2. Built-in types
// are program-lifetime constants; user-defined struct/trait types
// (TraitNew/TypeNew) are heap-allocated and reference counted like any
// other Object.
type TypeInfo struct {
	Hdr   Header
	Name  string
	QName string
	Doc   string
	Size  uintptr
	Flags TypeFlag

	// core slots
	New         ConstructorFn
	Destroy     DestructorFn
	Trace       TraceFn
	Hash        HashFn
	Truthy      TruthyFn
	Compare     CompareFn
	Repr        ReprFn
	Str         StrFn
	Iter        IterFn
	IterNext    IterNextFn

	// buffer slots
	GetBuffer     GetBufferFn
	ReleaseBuffer ReleaseBufferFn

	// number slots
	AsIndex   AsIndexFn
	AsInteger AsIntegerFn

	// object slots
	Methods         map[string]Object
	Members         map[string]Object
	Bases           []*TypeInfo
	GetAttr         GetAttrFn
	SetAttr         SetAttrFn
	NamespaceOffset int // -1 if the type has no embedded namespace

	// subscript slots
	Length   LengthFn
	GetItem  GetItemFn
	SetItem  SetItemFn
	GetSlice GetSliceFn
	SetSlice SetSliceFn
	Contains ContainsFn

	Ops OpsSlots

	MRO   []*TypeInfo
	TPMap AttributeMap
}

// Header implements Object: a user-defined TypeInfo is itself a heap
// value that participates in reference counting like any other object.
func (t *TypeInfo) Header() *Header { return &t.Hdr }

// TypeInit finalizes a type by computing its MRO via C3 linearization
// and merging trait methods, then sets FlagInitialized. It is idempotent
// (spec §3.2).
func TypeInit(t *TypeInfo) error {
	if t.Flags&FlagInitialized != 0 {
		return nil
	}
	mro, err := c3Linearize(t)
	if err != nil {
		return err
	}
	t.MRO = mro

	if t.Methods == nil {
		t.Methods = map[string]Object{}
	}
	// Merge trait methods along the MRO, most-derived first; a name
	// already present (from t itself or a closer ancestor) wins.
	for _, anc := range mro[1:] {
		if anc.Flags&FlagTrait == 0 {
			continue
		}
		for name, fn := range anc.Methods {
			if _, exists := t.Methods[name]; !exists {
				t.Methods[name] = fn
			}
		}
	}

	t.Flags |= FlagInitialized
	return nil
}

// c3Linearize computes the C3 merge of t and its Bases, with t first.
func c3Linearize(t *TypeInfo) ([]*TypeInfo, error) {
	if len(t.Bases) == 0 {
		return []*TypeInfo{t}, nil
	}

	var sequences [][]*TypeInfo
	for _, b := range t.Bases {
		if len(b.MRO) == 0 {
			if err := TypeInit(b); err != nil {
				return nil, err
			}
		}
		sequences = append(sequences, append([]*TypeInfo(nil), b.MRO...))
	}
	sequences = append(sequences, append([]*TypeInfo(nil), t.Bases...))

	result := []*TypeInfo{t}
	for {
		sequences = pruneEmpty(sequences)
		if len(sequences) == 0 {
			break
		}
		var head *TypeInfo
		for _, seq := range sequences {
			candidate := seq[0]
			if !appearsInTail(sequences, candidate) {
				head = candidate
				break
			}
		}
		if head == nil {
			return nil, zerrors.New(zerrors.KindRuntime, "MRO_CONFLICT",
				fmt.Sprintf("cannot linearize bases of %s: inconsistent hierarchy", t.Name), nil)
		}
		result = append(result, head)
		for i, seq := range sequences {
			sequences[i] = removeFirstOccurrence(seq, head)
		}
	}
	return result, nil
}

func pruneEmpty(seqs [][]*TypeInfo) [][]*TypeInfo {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func appearsInTail(seqs [][]*TypeInfo, t *TypeInfo) bool {
	for _, seq := range seqs {
		for _, cand := range seq[1:] {
			if cand == t {
				return true
			}
		}
	}
	return false
}

func removeFirstOccurrence(seq []*TypeInfo, t *TypeInfo) []*TypeInfo {
	for i, v := range seq {
		if v == t {
			return append(append([]*TypeInfo(nil), seq[:i]...), seq[i+1:]...)
		}
	}
	return seq
}
