package value

import "testing"

func TestSetAddContainsRemove(t *testing.T) {
	s := NewSet()
	item := NewString("a")

	added, err := s.Add(nil, item)
	if err != nil || !added {
		t.Fatalf("Add() = (%v, %v), want (true, nil)", added, err)
	}

	added, err = s.Add(nil, item)
	if err != nil || added {
		t.Fatalf("second Add() = (%v, %v), want (false, nil)", added, err)
	}

	ok, err := s.Contains(nil, item)
	if err != nil || !ok {
		t.Fatalf("Contains() = (%v, %v), want (true, nil)", ok, err)
	}

	removed, err := s.Remove(nil, item)
	if err != nil || !removed {
		t.Fatalf("Remove() = (%v, %v), want (true, nil)", removed, err)
	}
	if ok, _ := s.Contains(nil, item); ok {
		t.Fatal("expected item to be gone after Remove")
	}
}

func TestSetLenTracksLiveEntries(t *testing.T) {
	s := NewSet()
	s.Add(nil, NewInt(1))
	s.Add(nil, NewInt(2))
	s.Add(nil, NewInt(2))
	if got := s.Len(nil); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestSetTypeContainsSlot(t *testing.T) {
	s := NewSet()
	item := NewInt(5)
	s.Add(nil, item)
	ok, err := SetType.Contains(s, item)
	if err != nil || !ok {
		t.Fatalf("Contains slot = (%v, %v), want (true, nil)", ok, err)
	}
}
