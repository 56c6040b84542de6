package disk

import (
	"sync"
	"testing"

	"github.com/dsnet/golib/memfile"
	"github.com/stretchr/testify/require"

	"github.com/ryogrid/pagestore/catalog"
	"github.com/ryogrid/pagestore/storage/page"
)

// memFile adapts memfile.File (an in-memory io.ReaderAt/io.WriterAt) to
// the fileHandle interface, standing in for a real backing file so these
// tests don't touch the filesystem.
type memFile struct {
	*memfile.File
}

func (memFile) Sync() error { return nil }

// memOpener returns an Opener that hands out one shared in-memory file
// per distinct path, so repeated opens of the same file-id see the same
// bytes.
func memOpener() Opener {
	var mu sync.Mutex
	files := make(map[string]*memFile)
	return func(path string) (fileHandle, error) {
		mu.Lock()
		defer mu.Unlock()
		if f, ok := files[path]; ok {
			return f, nil
		}
		f := &memFile{memfile.New(nil)}
		files[path] = f
		return f, nil
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cat := catalog.New(t.TempDir())
	_, err := cat.CreateTable("t1", catalog.Heap)
	require.NoError(t, err)
	return NewManagerWithOpener(cat, memOpener())
}

func TestReadPageBeyondEOFZeroFills(t *testing.T) {
	m := newTestManager(t)
	buf := make([]byte, page.FrameSize)
	for i := range buf {
		buf[i] = 0xAA
	}
	err := m.ReadPage(page.ID{FileID: 1, PageNumber: 5}, buf)
	require.NoError(t, err)
	for i, b := range buf {
		require.Zerof(t, b, "buf[%d] = %x, want 0 past EOF", i, b)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	m := newTestManager(t)
	want := make([]byte, page.FrameSize)
	for i := range want {
		want[i] = byte(i)
	}
	id := page.ID{FileID: 1, PageNumber: 0}
	require.NoError(t, m.WritePage(id, want))

	got := make([]byte, page.FrameSize)
	require.NoError(t, m.ReadPage(id, got))
	require.Equal(t, want, got)
}

func TestWritePageWrongSizeRejected(t *testing.T) {
	m := newTestManager(t)
	err := m.WritePage(page.ID{FileID: 1}, make([]byte, 100))
	require.Error(t, err)
}

func TestFlushUnknownFileErrors(t *testing.T) {
	m := newTestManager(t)
	err := m.Flush(page.ID{FileID: 999})
	require.Error(t, err)
}
