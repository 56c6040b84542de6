// Package disk owns file handles and performs the fixed-size positional
// I/O the buffer pool needs, fronted by a single-worker scheduler that
// serializes physical operations (DiskManager, DiskScheduler — spec §4.2,
// §4.3).
package disk

import (
	"io"
	"os"
	"sync"

	"github.com/ncw/directio"

	"github.com/ryogrid/pagestore/catalog"
	"github.com/ryogrid/pagestore/internal/errs"
	"github.com/ryogrid/pagestore/storage/page"
)

// fileHandle is the minimal surface Manager needs from an open file; both
// *os.File and a memfile.File adapter satisfy it, which is what lets disk
// manager tests run against in-memory files instead of the real
// filesystem.
type fileHandle interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	Sync() error
}

// Opener opens the backing file at path for positional read/write.
type Opener func(path string) (fileHandle, error)

func osOpener(path string) (fileHandle, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
}

func directIOOpener(path string) (fileHandle, error) {
	return directio.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
}

// Manager owns one open file handle per file-id, opened lazily on first
// access. Open is guarded by a single-holder lock so concurrent opens of
// the same new file-id cannot race; steady-state reads/writes only touch
// the lock-free handle table.
type Manager struct {
	cat    *catalog.Catalog
	opener Opener

	openMu sync.Mutex
	files  sync.Map // uint32 file id -> fileHandle
}

// NewManager creates a manager that opens real OS files, optionally via
// O_DIRECT (ncw/directio) to bypass the page cache the way a storage
// engine managing its own buffer pool should.
func NewManager(cat *catalog.Catalog, useDirectIO bool) *Manager {
	opener := osOpener
	if useDirectIO {
		opener = directIOOpener
	}
	return NewManagerWithOpener(cat, opener)
}

// NewManagerWithOpener creates a manager with a custom file opener —
// tests use this to back files with an in-memory implementation
// (dsnet/golib/memfile) instead of touching the filesystem.
func NewManagerWithOpener(cat *catalog.Catalog, opener Opener) *Manager {
	return &Manager{cat: cat, opener: opener}
}

func (m *Manager) handle(fileID uint32) (fileHandle, error) {
	if v, ok := m.files.Load(fileID); ok {
		return v.(fileHandle), nil
	}

	m.openMu.Lock()
	defer m.openMu.Unlock()

	if v, ok := m.files.Load(fileID); ok {
		return v.(fileHandle), nil
	}

	entry, err := m.cat.GetFile(fileID)
	if err != nil {
		return nil, err
	}
	fh, err := m.opener(entry.Path)
	if err != nil {
		return nil, errs.NewIOError("open", err)
	}
	m.files.Store(fileID, fh)
	return fh, nil
}

// ReadPage reads exactly FrameSize bytes for id into buf. If the backing
// file is shorter than the page's offset+FrameSize (a newly allocated
// page), the unread tail of buf is zero-filled rather than treated as an
// error.
func (m *Manager) ReadPage(id page.ID, buf []byte) error {
	if len(buf) != page.FrameSize {
		return errs.ErrInvalidArgument
	}
	fh, err := m.handle(id.FileID)
	if err != nil {
		return err
	}
	n, err := fh.ReadAt(buf, id.Offset())
	if err != nil && err != io.EOF {
		return errs.NewIOError("read", err)
	}
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// WritePage writes exactly FrameSize bytes for id. Passing any other
// length is a programming error.
func (m *Manager) WritePage(id page.ID, data []byte) error {
	if len(data) != page.FrameSize {
		return errs.ErrInvalidArgument
	}
	fh, err := m.handle(id.FileID)
	if err != nil {
		return err
	}
	if _, err := fh.WriteAt(data, id.Offset()); err != nil {
		return errs.NewIOError("write", err)
	}
	return nil
}

// Flush forces durability (metadata + data) of the file backing id.
func (m *Manager) Flush(id page.ID) error {
	fh, err := m.handle(id.FileID)
	if err != nil {
		return err
	}
	if err := fh.Sync(); err != nil {
		return errs.NewIOError("flush", err)
	}
	return nil
}

// Close closes every open file handle.
func (m *Manager) Close() error {
	var first error
	m.files.Range(func(_, v any) bool {
		if err := v.(fileHandle).Close(); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}
