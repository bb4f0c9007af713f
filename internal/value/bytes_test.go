package value

import "testing"

func TestBytesSetByteAndView(t *testing.T) {
	b := NewBytes([]byte("abc"))
	if err := b.SetByte(1, 'X'); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(b.View()); got != "aXc" {
		t.Fatalf("View() = %q, want %q", got, "aXc")
	}
}

func TestBytesSetByteOutOfBounds(t *testing.T) {
	b := NewBytes([]byte("abc"))
	if err := b.SetByte(10, 'X'); err == nil {
		t.Fatal("expected out-of-bounds error")
	}
}

func TestBytesFreezeSharesStorageButRejectsWrites(t *testing.T) {
	b := NewBytes([]byte("abc"))
	frozen := b.Freeze()

	if err := frozen.SetByte(0, 'Z'); err == nil {
		t.Fatal("expected write to frozen bytes to fail")
	}

	if err := b.SetByte(0, 'Z'); err != nil {
		t.Fatalf("unexpected error writing through the mutable view: %v", err)
	}
	if got := string(frozen.View()); got != "Zbc" {
		t.Fatalf("frozen view = %q, want %q (storage must be shared)", got, "Zbc")
	}
}

func TestBytesGetBufferReleaseBufferRoundTrip(t *testing.T) {
	b := NewBytes([]byte("hello"))
	buf, err := BytesType.GetBuffer(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf) != "hello" {
		t.Fatalf("buffer = %q, want %q", buf, "hello")
	}
	BytesType.ReleaseBuffer(b)
}

func TestBytesTruthyEmptyVsNonEmpty(t *testing.T) {
	empty := NewBytes(nil)
	if BytesType.Truthy(empty) {
		t.Fatal("empty bytes should be falsy")
	}
	full := NewBytes([]byte("x"))
	if !BytesType.Truthy(full) {
		t.Fatal("non-empty bytes should be truthy")
	}
}
