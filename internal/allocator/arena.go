package allocator

import (
	"sync"
	"unsafe"
)

// freeBlock is the header a free block carries: the intrusive singly
// linked free-list pointer lives in the block's own first word, so the
// free list costs no extra memory beyond the block itself (spec §3.4).
type freeBlock struct {
	next unsafe.Pointer
}

// Pool serves blocks of a single size class out of a list of Arena pages.
// Free blocks form an intrusive singly-linked free list; the head pointer
// sits in the Pool, not in the page, so pages can be handed back to the
// Arena once entirely free.
type Pool struct {
	mu        sync.Mutex
	sizeClass int
	blockSize uintptr
	pages     []*arenaPage
	freeHead  unsafe.Pointer
	allocated uint64
	freed     uint64
}

type arenaPage struct {
	arena     *Arena
	buf       []byte
	base      uintptr
	liveCount int // blocks currently handed out from this page
}

func newPool(sizeClass int, blockSize uintptr) *Pool {
	return &Pool{sizeClass: sizeClass, blockSize: blockSize}
}

// alloc pops a free block, growing the pool by one page from arenaSrc
// when the free list is empty.
func (p *Pool) alloc(arenaSrc *arenaSource) unsafe.Pointer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freeHead == nil {
		page, ok := arenaSrc.newPage()
		if !ok {
			return nil
		}
		p.pages = append(p.pages, page)
		p.populateFreeList(page)
	}

	block := p.freeHead
	fb := (*freeBlock)(block)
	p.freeHead = fb.next
	p.allocated++

	page := pageOf(block)
	page.liveCount++

	return block
}

func (p *Pool) populateFreeList(page *arenaPage) {
	n := uintptr(len(page.buf)) / p.blockSize
	for i := uintptr(0); i < n; i++ {
		off := i * p.blockSize
		blk := unsafe.Pointer(&page.buf[off])
		fb := (*freeBlock)(blk)
		fb.next = p.freeHead
		p.freeHead = blk
		setPageOf(blk, page)
	}
}

// free pushes ptr back onto the free list. If the owning page becomes
// fully free, it is returned to its Arena (which may itself free the
// Arena if the retained-arena minimum is still satisfied).
func (p *Pool) free(ptr unsafe.Pointer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fb := (*freeBlock)(ptr)
	fb.next = p.freeHead
	p.freeHead = ptr
	p.freed++

	page := pageOf(ptr)
	page.liveCount--
	if page.liveCount == 0 {
		p.reclaimPage(page)
	}
}

// reclaimPage removes every free-list entry belonging to page and returns
// the page to its arena. Caller holds p.mu.
func (p *Pool) reclaimPage(page *arenaPage) {
	var kept unsafe.Pointer
	cur := p.freeHead
	for cur != nil {
		fb := (*freeBlock)(cur)
		next := fb.next
		if pageOf(cur) != page {
			fb.next = kept
			kept = cur
		}
		cur = next
	}
	p.freeHead = kept

	for i, pg := range p.pages {
		if pg == page {
			p.pages = append(p.pages[:i], p.pages[i+1:]...)
			break
		}
	}
	page.arena.releasePage(page)
}

// pageOwner maps a block's page-aligned base address to its arenaPage so
// free() can find the owning page without a true OS page-table query.
var (
	pageOwnerMu sync.RWMutex
	pageOwner   = map[uintptr]*arenaPage{}
)

func setPageOf(ptr unsafe.Pointer, page *arenaPage) {
	key := pageAlign(ptr)
	pageOwnerMu.Lock()
	pageOwner[key] = page
	pageOwnerMu.Unlock()
}

func pageOf(ptr unsafe.Pointer) *arenaPage {
	key := pageAlign(ptr)
	pageOwnerMu.RLock()
	defer pageOwnerMu.RUnlock()
	return pageOwner[key]
}

// Arena is a single ArenaSize allocation subdivided into PageSize Pools,
// all serving the same size class as the Pool that requested the arena.
type Arena struct {
	sizeClass int
	buf       []byte
	pagesUsed int
	freePages []int // indices of pages returned by Pool but not yet carved
	source    *arenaSource
}

func newArena(sizeClass int, source *arenaSource) *Arena {
	return &Arena{sizeClass: sizeClass, buf: make([]byte, ArenaSize), source: source}
}

func (a *Arena) takePage() (*arenaPage, bool) {
	var idx int
	if n := len(a.freePages); n > 0 {
		idx = a.freePages[n-1]
		a.freePages = a.freePages[:n-1]
	} else if a.pagesUsed < poolsPerArena {
		idx = a.pagesUsed
		a.pagesUsed++
	} else {
		return nil, false
	}
	start := idx * PageSize
	page := &arenaPage{arena: a, buf: a.buf[start : start+PageSize]}
	page.base = uintptr(unsafe.Pointer(&a.buf[start]))
	return page, true
}

func (a *Arena) releasePage(page *arenaPage) {
	pageOwnerMu.Lock()
	delete(pageOwner, pageAlign(unsafe.Pointer(&page.buf[0])))
	pageOwnerMu.Unlock()

	idx := int((page.base - uintptr(unsafe.Pointer(&a.buf[0]))) / PageSize)
	a.freePages = append(a.freePages, idx)

	if a.empty() && a.source != nil {
		a.source.collectEmptyArenas()
	}
}

func (a *Arena) empty() bool {
	return len(a.freePages) == a.pagesUsed
}

// arenaSource owns the set of Arenas feeding one size class and enforces
// the minimum-retained-arena policy (spec §3.4, §4.1 Free). Arena
// creation/destruction is serialized by its own mutex, independent of any
// Pool's free-list mutex.
type arenaSource struct {
	mu                sync.Mutex
	sizeClass         int
	arenas            []*Arena
	minRetainedArenas int
}

func newArenaSource(sizeClass, minRetained int) *arenaSource {
	return &arenaSource{sizeClass: sizeClass, minRetainedArenas: minRetained}
}

func (s *arenaSource) newPage() (*arenaPage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.arenas {
		if page, ok := a.takePage(); ok {
			return page, true
		}
	}
	a := newArena(s.sizeClass, s)
	s.arenas = append(s.arenas, a)
	page, ok := a.takePage()
	return page, ok
}

// collectEmptyArenas is invoked by Pool.reclaimPage indirectly via
// Arena.releasePage; arenas are only unlinked lazily here, when the
// retained-arena minimum is already satisfied by the remaining arenas.
func (s *arenaSource) collectEmptyArenas() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.arenas[:0]
	for _, a := range s.arenas {
		if a.empty() && len(kept) >= s.minRetainedArenas {
			continue // drop: return to the OS by letting the GC reclaim buf
		}
		kept = append(kept, a)
	}
	s.arenas = kept
}
