package allocator

import (
	"sync/atomic"
	"unsafe"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
)

// largeHeader precedes every large-object (>MaxSizeClass) allocation so
// Free can recover the original system-allocated slice regardless of
// alignment padding (spec §3.4 "Allocations larger than 512 bytes").
type largeHeader struct {
	size   uintptr
	slice  unsafe.Pointer // keeps the backing []byte reachable for the GC
	_align [0]uint64      // forces 8-byte alignment of the header itself
}

const largeHeaderSize = unsafe.Sizeof(largeHeader{})

// Allocator is the size-class slab allocator from spec §3.4/§4.1.
type Allocator struct {
	config     *Config
	pools      [numSizeClass]*Pool
	sources    [numSizeClass]*arenaSource
	large      largeRegistry
	allocCount atomic.Uint64
	freeCount  atomic.Uint64
	bytesLive  atomic.Int64
}

// New constructs an Allocator. Each size class gets its own Pool and
// arenaSource so pool-list contention never crosses size classes.
func New(opts ...Option) *Allocator {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	a := &Allocator{config: cfg}
	for i := 0; i < numSizeClass; i++ {
		blockSize := uintptr((i + 1) * sizeClassStep)
		a.pools[i] = newPool(i, blockSize)
		a.sources[i] = newArenaSource(i, cfg.MinRetainedArenas)
	}
	return a
}

// Alloc returns a size-byte block, or nil if memory is exhausted. Blocks
// of MaxSizeClass bytes or smaller are carved out of the matching pool;
// larger requests fall back to the system allocator.
func (a *Allocator) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	size = alignUp(size, a.config.AlignmentSize)

	class, blockSize, ok := sizeClassFor(size)
	if !ok {
		return a.allocLarge(size)
	}

	ptr := a.pools[class].alloc(a.sources[class])
	if ptr == nil {
		return nil
	}
	a.allocCount.Add(1)
	a.bytesLive.Add(int64(blockSize))
	return ptr
}

// Calloc allocates n*sz bytes, zero-initialized.
func (a *Allocator) Calloc(n, sz uintptr) unsafe.Pointer {
	total := n * sz
	ptr := a.Alloc(total)
	if ptr == nil {
		return nil
	}
	buf := (*[1 << 30]byte)(ptr)[:total:total]
	for i := range buf {
		buf[i] = 0
	}
	return ptr
}

func (a *Allocator) allocLarge(size uintptr) unsafe.Pointer {
	total := largeHeaderSize + size
	slice := make([]byte, total)
	hdr := (*largeHeader)(unsafe.Pointer(&slice[0]))
	hdr.size = size
	hdr.slice = unsafe.Pointer(&slice[0])

	ptr := unsafe.Pointer(uintptr(unsafe.Pointer(&slice[0])) + largeHeaderSize)
	a.large.track(ptr, slice)
	a.allocCount.Add(1)
	a.bytesLive.Add(int64(size))
	return ptr
}

// Free releases a block obtained from Alloc/Calloc/Realloc.
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	if page := pageOf(ptr); page != nil {
		class := page.arena.sizeClass
		a.pools[class].free(ptr)
		a.freeCount.Add(1)
		a.bytesLive.Add(-int64(a.pools[class].blockSize))
		return
	}
	if size, ok := a.large.untrack(ptr); ok {
		a.freeCount.Add(1)
		a.bytesLive.Add(-int64(size))
	}
}

// Realloc resizes ptr to newSize, copying content as needed. Per spec
// §4.1: a pooled block stays in place unless the new size class is at
// least RetireShrinkSteps smaller, to avoid thrashing on small shrinks.
func (a *Allocator) Realloc(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if ptr == nil {
		return a.Alloc(newSize)
	}
	if newSize == 0 {
		a.Free(ptr)
		return nil
	}

	if page := pageOf(ptr); page != nil {
		curClass := page.arena.sizeClass
		newClass, _, ok := sizeClassFor(newSize)
		if ok {
			if newClass == curClass {
				return ptr
			}
			if newClass < curClass && curClass-newClass < RetireShrinkSteps {
				return ptr
			}
		}
		newPtr := a.Alloc(newSize)
		if newPtr == nil {
			return nil
		}
		copyN := a.pools[curClass].blockSize
		if newSize < copyN {
			copyN = newSize
		}
		copyMemory(newPtr, ptr, copyN)
		a.Free(ptr)
		return newPtr
	}

	oldSize, _ := a.large.size(ptr)
	newPtr := a.Alloc(newSize)
	if newPtr == nil {
		return nil
	}
	copyN := oldSize
	if newSize < copyN {
		copyN = newSize
	}
	copyMemory(newPtr, ptr, copyN)
	a.Free(ptr)
	return newPtr
}

func copyMemory(dst, src unsafe.Pointer, size uintptr) {
	dstSlice := (*[1 << 30]byte)(dst)[:size:size]
	srcSlice := (*[1 << 30]byte)(src)[:size:size]
	copy(dstSlice, srcSlice)
}

// Stats summarizes allocator activity.
type Stats struct {
	AllocationCount uint64
	FreeCount       uint64
	BytesLive       int64
}

func (a *Allocator) Stats() Stats {
	return Stats{
		AllocationCount: a.allocCount.Load(),
		FreeCount:       a.freeCount.Load(),
		BytesLive:       a.bytesLive.Load(),
	}
}

// MustAlloc panics with a RuntimeError instead of returning nil; used by
// call sites that have no recovery path for exhaustion (spec treats
// OutOfMemory as the only Alloc failure mode).
func (a *Allocator) MustAlloc(size uintptr) unsafe.Pointer {
	ptr := a.Alloc(size)
	if ptr == nil {
		panic(zerrors.OutOfMemory(size))
	}
	return ptr
}
