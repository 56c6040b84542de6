package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryogrid/pagestore/catalog"
	"github.com/ryogrid/pagestore/internal/errs"
	"github.com/ryogrid/pagestore/storage/disk"
	"github.com/ryogrid/pagestore/storage/page"
)

// newTestPool backs the pool with real temp-directory files (rather than
// an in-memory fileHandle, which disk's unexported Opener surface doesn't
// let this package construct) — disk.Manager's own tests cover the
// in-memory path.
func newTestPool(t *testing.T, capacity int) (*PoolManager, *disk.Scheduler) {
	t.Helper()
	cat := catalog.New(t.TempDir())
	_, err := cat.CreateTable("t1", catalog.Heap)
	require.NoError(t, err)
	mgr := disk.NewManager(cat, false)
	sched := disk.NewScheduler(mgr)
	return New(capacity, sched, cat), sched
}

func id(n uint32) page.ID { return page.ID{FileID: 1, PageNumber: n} }

func TestColdRead(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	defer sched.Shutdown()

	fr, err := pm.FetchPage(id(0))
	require.NoError(t, err)
	require.EqualValues(t, 1, pm.PinCount(id(0)))
	require.NotNil(t, fr)
}

func TestUnpinDirtyThenEviction(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	defer sched.Shutdown()

	fr, err := pm.FetchPage(id(0))
	require.NoError(t, err)
	fr.Lock()
	fr.Data()[0] = 0xAB
	fr.Unlock()
	require.NoError(t, pm.UnpinPage(id(0), true))

	// Pages 1 and 2 fill the remaining two frames; (1,0) stays resident
	// but evictable throughout.
	for _, n := range []uint32{1, 2} {
		_, err := pm.FetchPage(id(n))
		require.NoError(t, err)
	}
	// Pool is now full; reading (1,3) must evict (1,0) -- the only
	// evictable entry -- flushing its dirty byte to disk first.
	_, err = pm.FetchPage(id(3))
	require.NoError(t, err)

	// Unpin (1,1) to make room: fetching (1,0) back needs a free frame.
	require.NoError(t, pm.UnpinPage(id(1), false))
	fr2, err := pm.FetchPage(id(0))
	require.NoError(t, err)
	fr2.RLock()
	got := fr2.Data()[0]
	fr2.RUnlock()
	require.Equal(t, byte(0xAB), got)
}

func TestPinWall(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	defer sched.Shutdown()

	for _, n := range []uint32{0, 1, 2} {
		_, err := pm.FetchPage(id(n))
		require.NoError(t, err)
	}
	_, err := pm.FetchPage(id(3))
	require.ErrorIs(t, err, errs.ErrAllPinned)
}

func TestGhostPromotionFromBuffer(t *testing.T) {
	pm, sched := newTestPool(t, 2)
	defer sched.Shutdown()

	for _, n := range []uint32{0, 1} {
		_, err := pm.FetchPage(id(n))
		require.NoError(t, err)
		require.NoError(t, pm.UnpinPage(id(n), false))
	}
	// Evicts (1,0) into B1.
	_, err := pm.FetchPage(id(2))
	require.NoError(t, err)
	require.NoError(t, pm.UnpinPage(id(2), false))

	_, err = pm.FetchPage(id(0))
	require.NoError(t, err)
	require.EqualValues(t, 1, pm.PinCount(id(0)))
}

func TestDeleteThenReadIsZeroFilled(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	defer sched.Shutdown()

	fr, err := pm.FetchPage(id(0))
	require.NoError(t, err)
	fr.Lock()
	fr.Data()[0] = 0x42
	fr.Unlock()
	require.NoError(t, pm.UnpinPage(id(0), true))

	ok, err := pm.DeletePage(id(0))
	require.NoError(t, err)
	require.True(t, ok)

	fr2, err := pm.FetchPage(id(0))
	require.NoError(t, err)
	fr2.RLock()
	defer fr2.RUnlock()
	for i, b := range fr2.Data() {
		require.Zerof(t, b, "byte %d = %x, want 0", i, b)
	}
}

func TestDeletePinnedPageReturnsFalse(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	defer sched.Shutdown()

	_, err := pm.FetchPage(id(0))
	require.NoError(t, err)

	ok, err := pm.DeletePage(id(0))
	require.NoError(t, err)
	require.False(t, ok)
	require.EqualValues(t, 1, pm.PinCount(id(0)))
}

func TestFetchAfterShutdownFails(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	sched.Shutdown()

	_, err := pm.FetchPage(id(0))
	require.ErrorIs(t, err, errs.ErrSchedulerClosed)
}

func TestReadSamePageTwiceNoEviction(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	defer sched.Shutdown()

	fr1, err := pm.FetchPage(id(0))
	require.NoError(t, err)
	require.NoError(t, pm.UnpinPage(id(0), false))

	fr2, err := pm.FetchPage(id(0))
	require.NoError(t, err)
	require.Same(t, fr1, fr2)
}

func TestNewPageAllocatesDistinctPageNumbers(t *testing.T) {
	pm, sched := newTestPool(t, 3)
	defer sched.Shutdown()

	_, id1, err := pm.NewPage(1)
	require.NoError(t, err)
	_, id2, err := pm.NewPage(1)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
}
