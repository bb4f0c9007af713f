// Package allocator implements the size-class slab allocator described in
// spec §3.4/§4.1: arenas subdivided into pools, a pool per size class with
// an intrusive free list, and a large-object fallback through the system
// allocator. Pool free-lists are each guarded by their own mutex; arena
// creation/destruction is guarded by a separate mutex, so the two paths
// never contend with each other.
package allocator

import "unsafe"

// PageSize is the size of a single Pool. Real slab allocators size this to
// the host's OS page; Go has no portable page-size query, so this mirrors
// the common 4 KiB page size most arena allocators bootstrap from.
const PageSize = 4096

// ArenaSize is the size of a single Arena: a page-aligned OS allocation
// subdivided into Pools, one page each (spec §3.4).
const ArenaSize = 256 * 1024

const poolsPerArena = ArenaSize / PageSize

// MinSizeClass/MaxSizeClass bound the size classes a Pool can serve:
// multiples of 8 bytes up to 512 bytes (spec §3.4).
const (
	MinSizeClass  = 8
	MaxSizeClass  = 512
	sizeClassStep = 8
	numSizeClass  = MaxSizeClass / sizeClassStep
)

// MinRetainedArenas is the minimum number of arenas kept alive and never
// returned to the OS (spec §3.4).
const MinRetainedArenas = 16

// RetireShrinkSteps is the Realloc threshold from spec §4.1: an in-place
// shrink is only honored if the new size class is within this many steps
// of the current one; a larger drop forces a copy so pools don't retain
// blocks far larger than needed.
const RetireShrinkSteps = 10

// Config tunes an Allocator instance. The zero value is not usable;
// construct one with DefaultConfig and apply Options.
type Config struct {
	MinRetainedArenas int
	AlignmentSize     uintptr
	EnableTracking    bool
}

// Option mutates a Config during construction.
type Option func(*Config)

// DefaultConfig returns the configuration used when no Options are given.
func DefaultConfig() *Config {
	return &Config{
		MinRetainedArenas: MinRetainedArenas,
		AlignmentSize:     8,
		EnableTracking:    true,
	}
}

func WithMinRetainedArenas(n int) Option {
	return func(c *Config) { c.MinRetainedArenas = n }
}

func WithTracking(enabled bool) Option {
	return func(c *Config) { c.EnableTracking = enabled }
}

// alignUp rounds size up to the nearest multiple of alignment.
func alignUp(size, alignment uintptr) uintptr {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) &^ (alignment - 1)
}

// sizeClassFor returns the size class (index 0..numSizeClass-1, block size
// in bytes) that fits size, or ok=false if size exceeds MaxSizeClass.
func sizeClassFor(size uintptr) (class int, blockSize uintptr, ok bool) {
	if size == 0 {
		size = 1
	}
	if size > MaxSizeClass {
		return 0, 0, false
	}
	rounded := alignUp(size, sizeClassStep)
	class = int(rounded/sizeClassStep) - 1
	return class, rounded, true
}

func pageAlign(p unsafe.Pointer) uintptr {
	return uintptr(p) &^ (PageSize - 1)
}
