package value

import (
	"testing"

	"github.com/zephyr-lang/zephyr/internal/object"
)

func TestNewStringInternsShortStrings(t *testing.T) {
	a := NewString("hello")
	b := NewString("hello")
	if a != b {
		t.Fatal("expected interned strings to share an instance")
	}
}

func TestNewStringDoesNotInternLongStrings(t *testing.T) {
	long := make([]byte, internMaxLen+1)
	for i := range long {
		long[i] = 'x'
	}
	a := NewString(string(long))
	b := NewString(string(long))
	if a == b {
		t.Fatal("strings longer than internMaxLen must not be interned")
	}
}

func TestStringClassifyKind(t *testing.T) {
	cases := []struct {
		s    string
		want Kind
	}{
		{"abc", KindASCII},
		{"héllo", Kind2Byte},
		{"日本語", Kind3Byte},
		{"\U0001F600", Kind4Byte},
	}
	for _, c := range cases {
		if got := classify(c.s); got != c.want {
			t.Fatalf("classify(%q) = %v, want %v", c.s, got, c.want)
		}
	}
}

func TestStringLenCountsCodepointsNotBytes(t *testing.T) {
	s := NewString("héllo")
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
}

func TestStringCompareLexicographic(t *testing.T) {
	a, b := NewString("abc"), NewString("abd")
	r, err := StringType.Compare(a, b, object.CompareLE)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil || !*r {
		t.Fatal("expected \"abc\" < \"abd\"")
	}
}
