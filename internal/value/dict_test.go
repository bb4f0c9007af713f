package value

import (
	"testing"

	"github.com/zephyr-lang/zephyr/internal/object"
)

func TestDictSetGetDelete(t *testing.T) {
	d := NewDict()
	k, v := NewString("key"), NewInt(1)

	if replaced, err := d.Set(nil, k, v); err != nil || replaced {
		t.Fatalf("Set() = (%v, %v), want (false, nil)", replaced, err)
	}

	got, ok, err := d.Get(nil, k)
	if err != nil || !ok || got != v {
		t.Fatalf("Get() = (%v, %v, %v), want (%v, true, nil)", got, ok, err, v)
	}

	if ok, err := d.Delete(nil, k); err != nil || !ok {
		t.Fatalf("Delete() = (%v, %v), want (true, nil)", ok, err)
	}
	if _, ok, _ := d.Get(nil, k); ok {
		t.Fatal("expected key to be gone after Delete")
	}
}

func TestDictSetReplacesExistingKey(t *testing.T) {
	d := NewDict()
	k := NewString("key")
	d.Set(nil, k, NewInt(1))
	replaced, err := d.Set(nil, k, NewInt(2))
	if err != nil || !replaced {
		t.Fatalf("Set() = (%v, %v), want (true, nil)", replaced, err)
	}
	got, _, _ := d.Get(nil, k)
	if got.(*Int).Value != 2 {
		t.Fatalf("got %d, want 2", got.(*Int).Value)
	}
}

func TestDictGetItemSlotReportsKeyNotFound(t *testing.T) {
	d := NewDict()
	if _, err := DictType.GetItem(d, NewString("missing")); err == nil {
		t.Fatal("expected key-not-found error")
	}
}

func TestDictEachVisitsInsertionOrder(t *testing.T) {
	d := NewDict()
	keys := []string{"a", "b", "c"}
	for i, k := range keys {
		d.Set(nil, NewString(k), NewInt(int64(i)))
	}
	var seen []string
	d.Each(nil, func(k, _ object.Object) bool {
		seen = append(seen, k.(*String).Bytes())
		return true
	})
	for i, k := range keys {
		if seen[i] != k {
			t.Fatalf("Each order[%d] = %q, want %q", i, seen[i], k)
		}
	}
}
