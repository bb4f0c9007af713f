package value

import (
	"sync"
	"unicode/utf8"

	"github.com/zephyr-lang/zephyr/internal/object"
)

// Kind records the maximum byte-width any codepoint in a String needs,
// enabling O(1) byte-offset computation for ASCII strings (spec §4.5).
type Kind uint8

const (
	KindASCII Kind = iota
	Kind2Byte
	Kind3Byte
	Kind4Byte
)

// String is the Language's immutable UTF-8 string type. data is the raw
// UTF-8 bytes; kind and codepoints are computed once at construction so
// indexing doesn't re-scan the byte sequence for ASCII strings.
type String struct {
	Hdr        object.Header
	data       string
	kind       Kind
	codepoints int
}

func (s *String) Header() *object.Header { return &s.Hdr }

// Bytes returns the string's raw UTF-8 encoding.
func (s *String) Bytes() string { return s.data }

// Kind reports the string's maximum codepoint byte-width.
func (s *String) Kind() Kind { return s.kind }

// Len returns the codepoint count (not the byte length).
func (s *String) Len() int { return s.codepoints }

// internPool deduplicates short and common strings (spec §4.5). Strings
// longer than internMaxLen are never interned: the point of the pool is
// to collapse repeated short literals/identifiers, not to memoize
// arbitrary program data.
const internMaxLen = 64

var (
	internMu   sync.Mutex
	internPool = map[string]*String{}
)

// NewString builds (or returns the interned instance of) a String from
// raw UTF-8 bytes.
func NewString(s string) *String {
	if len(s) <= internMaxLen {
		internMu.Lock()
		if v, ok := internPool[s]; ok {
			internMu.Unlock()
			return v
		}
		internMu.Unlock()
	}

	v := &String{data: s, kind: classify(s), codepoints: utf8.RuneCountInString(s)}
	v.Hdr.Init(StringType, false)

	if len(s) <= internMaxLen {
		internMu.Lock()
		if existing, ok := internPool[s]; ok {
			internMu.Unlock()
			return existing
		}
		internPool[s] = v
		internMu.Unlock()
	}
	return v
}

func classify(s string) Kind {
	kind := KindASCII
	for _, r := range s {
		switch {
		case r > 0xFFFF:
			return Kind4Byte // widest possible, no need to keep scanning
		case r > 0x7FF:
			if kind < Kind3Byte {
				kind = Kind3Byte
			}
		case r > 0x7F:
			if kind < Kind2Byte {
				kind = Kind2Byte
			}
		}
	}
	return kind
}

var StringType = &object.TypeInfo{
	Name:  "String",
	Flags: object.FlagStruct,
	Hash: func(o object.Object) (uint64, error) {
		return fnv1a(o.(*String).data), nil
	},
	Truthy: func(o object.Object) bool { return o.(*String).codepoints > 0 },
	Repr:   func(o object.Object) string { return "\"" + o.(*String).data + "\"" },
	Str:    func(o object.Object) string { return o.(*String).data },
	Compare: func(a, b object.Object, mode object.CompareMode) (*bool, error) {
		as, bs := a.(*String).data, b.(*String).data
		var r bool
		switch mode {
		case object.CompareEQ:
			r = as == bs
		case object.CompareNE:
			r = as != bs
		case object.CompareGR:
			r = as > bs
		case object.CompareGRQ:
			r = as >= bs
		case object.CompareLE:
			r = as < bs
		case object.CompareLEQ:
			r = as <= bs
		default:
			return nil, nil
		}
		return &r, nil
	},
	Length: func(o object.Object) (int, error) { return o.(*String).codepoints, nil },
}

// fnv1a is the byte-hash used for String; unlike Int/Decimal, strings
// have no cross-type numeric-equality requirement to satisfy, so any
// well-distributed hash suffices.
func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
