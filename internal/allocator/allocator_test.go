package allocator

import (
	"testing"
	"unsafe"
)

func TestAllocFreeRoundTrip(t *testing.T) {
	a := New()

	ptr := a.Alloc(32)
	if ptr == nil {
		t.Fatal("Alloc(32) returned nil")
	}
	stats := a.Stats()
	if stats.AllocationCount != 1 {
		t.Fatalf("AllocationCount = %d, want 1", stats.AllocationCount)
	}

	a.Free(ptr)
	stats = a.Stats()
	if stats.FreeCount != 1 {
		t.Fatalf("FreeCount = %d, want 1", stats.FreeCount)
	}
}

func TestAllocZeroReturnsNil(t *testing.T) {
	a := New()
	if ptr := a.Alloc(0); ptr != nil {
		t.Fatalf("Alloc(0) = %v, want nil", ptr)
	}
}

func TestCallocZeroesMemory(t *testing.T) {
	a := New()
	ptr := a.Calloc(8, 4)
	if ptr == nil {
		t.Fatal("Calloc returned nil")
	}
	buf := (*[32]byte)(ptr)[:]
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

func TestLargeAllocationFallback(t *testing.T) {
	a := New()
	ptr := a.Alloc(MaxSizeClass + 1)
	if ptr == nil {
		t.Fatal("large Alloc returned nil")
	}
	a.Free(ptr)
	stats := a.Stats()
	if stats.AllocationCount != 1 || stats.FreeCount != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestReallocGrowCopiesData(t *testing.T) {
	a := New()
	ptr := a.Alloc(16)
	buf := (*[16]byte)(ptr)[:]
	for i := range buf {
		buf[i] = byte(i)
	}

	grown := a.Realloc(ptr, 400)
	if grown == nil {
		t.Fatal("Realloc returned nil")
	}
	newBuf := (*[16]byte)(grown)[:]
	for i := range newBuf {
		if newBuf[i] != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i, newBuf[i], i)
		}
	}
}

func TestReallocSmallShrinkStaysInPlace(t *testing.T) {
	a := New()
	ptr := a.Alloc(64)
	shrunk := a.Realloc(ptr, 56)
	if shrunk != ptr {
		t.Fatal("small shrink should stay in place")
	}
}

func TestPoolReusesFreedPage(t *testing.T) {
	a := New()
	class, blockSize, ok := sizeClassFor(32)
	if !ok {
		t.Fatal("sizeClassFor(32) not ok")
	}
	blocksPerPage := uintptr(PageSize) / blockSize

	var ptrs []unsafe.Pointer
	for i := uintptr(0); i < blocksPerPage; i++ {
		p := a.pools[class].alloc(a.sources[class])
		if p == nil {
			t.Fatalf("alloc %d returned nil", i)
		}
		ptrs = append(ptrs, p)
	}
	for _, p := range ptrs {
		a.pools[class].free(p)
	}
	if len(a.pools[class].pages) != 0 {
		t.Fatalf("expected page to be reclaimed, got %d pages", len(a.pools[class].pages))
	}
}

func TestMustAllocPanicsNever(t *testing.T) {
	a := New()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustAlloc panicked unexpectedly: %v", r)
		}
	}()
	ptr := a.MustAlloc(8)
	if ptr == nil {
		t.Fatal("MustAlloc returned nil without panicking")
	}
}
