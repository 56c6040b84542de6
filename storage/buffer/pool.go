// Package buffer implements the BufferPoolManager (spec §4.5): a fixed
// pool of page.Frame slots, a lock-free page table, a free list, and an
// ARC replacer, orchestrating disk I/O through a disk.Scheduler so callers
// never see a raw I/O error without a defined recovery story.
package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/ryogrid/pagestore/catalog"
	"github.com/ryogrid/pagestore/internal/errs"
	"github.com/ryogrid/pagestore/storage/disk"
	"github.com/ryogrid/pagestore/storage/page"
	"github.com/ryogrid/pagestore/storage/replacer"
)

// Stats is an atomic snapshot of the pool's lifetime counters, surfaced
// for the CLI's stats command and for tests.
type Stats struct {
	Hits            uint64
	Misses          uint64
	GhostHits       uint64
	Evictions       uint64
	DiskReads       uint64
	DiskWrites      uint64
	AllPinnedErrors uint64
}

// PoolManager is a fixed-size pool of MAX_BUFFER_SIZE frames fronting a
// catalog-backed set of files through a disk.Scheduler.
type PoolManager struct {
	frames []page.Frame

	pageTable sync.Map // page.ID -> int (frame index)

	freeMu   sync.Mutex
	freeList []int

	replacer *replacer.ARC

	scheduler *disk.Scheduler
	cat       *catalog.Catalog

	hits, misses, ghostHits, evictions     uint64
	diskReads, diskWrites, allPinnedErrors uint64
}

// New creates a pool of the given size, backed by scheduler for I/O and
// cat for file-id resolution and page-number allocation.
func New(size int, scheduler *disk.Scheduler, cat *catalog.Catalog) *PoolManager {
	pm := &PoolManager{
		frames:    make([]page.Frame, size),
		replacer:  replacer.New(size),
		scheduler: scheduler,
		cat:       cat,
		freeList:  make([]int, size),
	}
	for i := range pm.freeList {
		pm.freeList[i] = i
	}
	return pm
}

func (pm *PoolManager) popFree() (int, bool) {
	pm.freeMu.Lock()
	defer pm.freeMu.Unlock()
	n := len(pm.freeList)
	if n == 0 {
		return 0, false
	}
	idx := pm.freeList[n-1]
	pm.freeList = pm.freeList[:n-1]
	return idx, true
}

func (pm *PoolManager) pushFree(idx int) {
	pm.freeMu.Lock()
	defer pm.freeMu.Unlock()
	pm.freeList = append(pm.freeList, idx)
}

// acquireFrame returns the index of a frame ready to receive a new
// resident page: from the free list if one exists, otherwise by evicting
// the replacer's chosen victim (flushing it first if dirty). Returns
// ErrAllPinned if neither source yields a frame.
func (pm *PoolManager) acquireFrame() (int, error) {
	if idx, ok := pm.popFree(); ok {
		return idx, nil
	}

	victim, ok := pm.replacer.Evict()
	if !ok {
		atomic.AddUint64(&pm.allPinnedErrors, 1)
		return 0, errs.ErrAllPinned
	}
	atomic.AddUint64(&pm.evictions, 1)

	v, _ := pm.pageTable.Load(victim)
	idx := v.(int)
	fr := &pm.frames[idx]

	fr.Lock()
	defer fr.Unlock()

	if fr.IsDirty() {
		if err := pm.scheduler.SubmitAndWait(&disk.Request{
			Op:     disk.Write,
			PageID: victim,
			Buffer: fr.Data()[:],
		}); err != nil {
			// Leave the victim's page-table entry and frame state
			// untouched so the caller can retry eviction later.
			return 0, err
		}
		atomic.AddUint64(&pm.diskWrites, 1)
	}

	pm.pageTable.Delete(victim)
	fr.Reset()
	return idx, nil
}

// FetchPage returns the frame holding page_id, pinned, reading it from
// disk on a miss. The caller must eventually call UnpinPage. The returned
// frame is returned with no latch held; callers acquire RLock/Lock
// themselves around their use of its bytes.
//
// Pin()/Unpin() and the following RecordAccess/SetEvictable call are
// kept inside one critical section under the frame's write latch, the
// frame latch then the replacer's own lock being the only lock order
// used anywhere in this package: otherwise a concurrent FetchPage and
// UnpinPage on the same page could deliver their SetEvictable calls out
// of order and leave a pinned page marked evictable.
func (pm *PoolManager) FetchPage(id page.ID) (*page.Frame, error) {
	if v, ok := pm.pageTable.Load(id); ok {
		idx := v.(int)
		fr := &pm.frames[idx]
		fr.Lock()
		fr.Pin()
		pm.replacer.RecordAccess(id)
		pm.replacer.SetEvictable(id, false)
		fr.Unlock()

		atomic.AddUint64(&pm.hits, 1)
		return fr, nil
	}

	atomic.AddUint64(&pm.misses, 1)
	idx, err := pm.acquireFrame()
	if err != nil {
		return nil, err
	}
	fr := &pm.frames[idx]

	fr.Lock()
	if err := pm.scheduler.SubmitAndWait(&disk.Request{
		Op:     disk.Read,
		PageID: id,
		Buffer: fr.Data()[:],
	}); err != nil {
		fr.Unlock()
		pm.pushFree(idx)
		return nil, err
	}
	atomic.AddUint64(&pm.diskReads, 1)

	fr.Install(id)
	fr.Pin()

	pm.pageTable.Store(id, idx)
	res := pm.replacer.RecordAccess(id)
	if res == replacer.GhostB1 || res == replacer.GhostB2 {
		atomic.AddUint64(&pm.ghostHits, 1)
	}
	pm.replacer.SetEvictable(id, false)
	fr.Unlock()

	return fr, nil
}

// NewPage allocates a fresh page_number for fileID via the catalog,
// obtains a frame through the same acquisition path as a FetchPage miss
// (no disk Read — the frame is zero-initialized instead), pins it, marks
// it dirty, and returns it ready for the caller to populate.
func (pm *PoolManager) NewPage(fileID uint32) (*page.Frame, page.ID, error) {
	pageNum, err := pm.cat.NextPageNumber(fileID)
	if err != nil {
		return nil, page.ID{}, err
	}
	id := page.ID{FileID: fileID, PageNumber: pageNum}

	idx, err := pm.acquireFrame()
	if err != nil {
		return nil, page.ID{}, err
	}
	fr := &pm.frames[idx]

	fr.Lock()
	fr.Install(id)
	fr.Pin()
	fr.MarkDirty(true)

	pm.pageTable.Store(id, idx)
	pm.replacer.RecordAccess(id)
	pm.replacer.SetEvictable(id, false)
	fr.Unlock()

	return fr, id, nil
}

// UnpinPage decrements id's pin count, ORing in isDirty. Once the pin
// count reaches zero the page becomes evictable. A no-op if id is not
// resident.
func (pm *PoolManager) UnpinPage(id page.ID, isDirty bool) error {
	v, ok := pm.pageTable.Load(id)
	if !ok {
		return nil
	}
	fr := &pm.frames[v.(int)]

	fr.Lock()
	remaining := fr.Unpin(isDirty)
	if remaining == 0 {
		pm.replacer.SetEvictable(id, true)
	}
	fr.Unlock()

	return nil
}

// FlushPage writes id's frame to disk if it is resident and dirty,
// clearing its dirty flag, regardless of pin count. A clean frame is left
// as is; a non-resident id returns ErrInvalidArgument.
func (pm *PoolManager) FlushPage(id page.ID) error {
	v, ok := pm.pageTable.Load(id)
	if !ok {
		return errs.ErrInvalidArgument
	}
	fr := &pm.frames[v.(int)]

	fr.Lock()
	defer fr.Unlock()
	if !fr.IsDirty() {
		return nil
	}
	if err := pm.scheduler.SubmitAndWait(&disk.Request{
		Op:     disk.Write,
		PageID: id,
		Buffer: fr.Data()[:],
	}); err != nil {
		return err
	}
	atomic.AddUint64(&pm.diskWrites, 1)
	fr.MarkDirty(false)
	return nil
}

// FlushAll flushes every currently resident dirty page.
func (pm *PoolManager) FlushAll() error {
	var first error
	pm.pageTable.Range(func(k, _ any) bool {
		if err := pm.FlushPage(k.(page.ID)); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}

// DeletePage reclaims id's frame if it is resident and unpinned: it
// zero-fills the page on disk (a full FrameSize Write, not a zero-length
// one — a zero-length write would simply be rejected by the disk
// manager), returns the frame to the free list, and removes it from the
// page table and replacer. Returns false without effect if id is pinned;
// returns false and ErrInvalidArgument if id is not resident.
func (pm *PoolManager) DeletePage(id page.ID) (bool, error) {
	v, ok := pm.pageTable.Load(id)
	if !ok {
		return false, errs.ErrInvalidArgument
	}
	idx := v.(int)
	fr := &pm.frames[idx]

	fr.Lock()
	if fr.PinCount() > 0 {
		fr.Unlock()
		return false, nil
	}

	var zero [page.FrameSize]byte
	if err := pm.scheduler.SubmitAndWait(&disk.Request{
		Op:     disk.Write,
		PageID: id,
		Buffer: zero[:],
	}); err != nil {
		fr.Unlock()
		return false, err
	}
	atomic.AddUint64(&pm.diskWrites, 1)

	fr.Reset()
	fr.Unlock()

	pm.pageTable.Delete(id)
	pm.replacer.Remove(id)
	pm.pushFree(idx)
	return true, nil
}

// PinCount returns the current pin count for id, or 0 if not resident.
func (pm *PoolManager) PinCount(id page.ID) uint32 {
	v, ok := pm.pageTable.Load(id)
	if !ok {
		return 0
	}
	fr := &pm.frames[v.(int)]
	fr.RLock()
	defer fr.RUnlock()
	return fr.PinCount()
}

// Stats returns a snapshot of the pool's lifetime counters.
func (pm *PoolManager) Stats() Stats {
	return Stats{
		Hits:            atomic.LoadUint64(&pm.hits),
		Misses:          atomic.LoadUint64(&pm.misses),
		GhostHits:       atomic.LoadUint64(&pm.ghostHits),
		Evictions:       atomic.LoadUint64(&pm.evictions),
		DiskReads:       atomic.LoadUint64(&pm.diskReads),
		DiskWrites:      atomic.LoadUint64(&pm.diskWrites),
		AllPinnedErrors: atomic.LoadUint64(&pm.allPinnedErrors),
	}
}
