// Package catalog maps file-id to backing file path and type — the one
// external mapping the storage core consumes but does not itself persist
// any deeper policy around (creation, renaming, schema are all out of
// scope for the core).
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TableType distinguishes the kind of file a file-id names. The core only
// ever treats this as opaque metadata.
type TableType int

const (
	Heap TableType = iota
	BTreeIndex
)

// Entry is what the catalog knows about a single file-id.
type Entry struct {
	Name string    `json:"name"`
	Path string    `json:"path"`
	Type TableType `json:"type"`
}

// Catalog maps file_id -> (path, type). file_id 0 is reserved and never
// issued; the first id handed out by CreateTable is 1.
type Catalog struct {
	mu         sync.Mutex
	dataDir    string
	entries    map[uint32]Entry
	nextFileID uint32
	nextPage   map[uint32]uint32
}

// New creates a catalog rooted at dataDir, with no entries yet.
func New(dataDir string) *Catalog {
	return &Catalog{
		dataDir:    dataDir,
		entries:    make(map[uint32]Entry),
		nextFileID: 1,
		nextPage:   make(map[uint32]uint32),
	}
}

// persistedCatalog is the JSON sidecar format saved alongside the data
// files so file-id -> path mappings survive a process restart.
type persistedCatalog struct {
	NextFileID uint32           `json:"next_file_id"`
	Entries    map[uint32]Entry `json:"entries"`
	NextPage   map[uint32]uint32 `json:"next_page,omitempty"`
}

func (c *Catalog) sidecarPath() string {
	return filepath.Join(c.dataDir, "catalog.json")
}

// Load reads catalog.json from dataDir, if present. A missing sidecar is
// not an error — it means a fresh catalog.
func Load(dataDir string) (*Catalog, error) {
	c := New(dataDir)
	raw, err := os.ReadFile(c.sidecarPath())
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", c.sidecarPath(), err)
	}
	var p persistedCatalog
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", c.sidecarPath(), err)
	}
	c.nextFileID = p.NextFileID
	if c.nextFileID == 0 {
		c.nextFileID = 1
	}
	c.entries = p.Entries
	if c.entries == nil {
		c.entries = make(map[uint32]Entry)
	}
	c.nextPage = p.NextPage
	if c.nextPage == nil {
		c.nextPage = make(map[uint32]uint32)
	}
	return c, nil
}

// Save writes the catalog's current state to catalog.json under dataDir.
func (c *Catalog) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Catalog) saveLocked() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("catalog: creating data dir %s: %w", c.dataDir, err)
	}
	p := persistedCatalog{NextFileID: c.nextFileID, Entries: c.entries, NextPage: c.nextPage}
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: marshaling: %w", err)
	}
	return os.WriteFile(c.sidecarPath(), raw, 0o644)
}

// CreateTable allocates the next file_id for name and records its backing
// path as "<dataDir>/<name>.db", per the convention in the spec.
func (c *Catalog) CreateTable(name string, typ TableType) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fileID := c.nextFileID
	c.nextFileID++
	c.entries[fileID] = Entry{
		Name: name,
		Path: filepath.Join(c.dataDir, name+".db"),
		Type: typ,
	}
	if err := c.saveLocked(); err != nil {
		return 0, err
	}
	return fileID, nil
}

// NextPageNumber allocates the next page_number for fileID, the
// file-scoped counter the buffer pool's NewPage consults to place a
// freshly allocated page. Page numbers for a given file start at 0.
func (c *Catalog) NextPageNumber(fileID uint32) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[fileID]; !ok {
		return 0, fmt.Errorf("catalog: unknown file id %d", fileID)
	}
	n := c.nextPage[fileID]
	c.nextPage[fileID] = n + 1
	if err := c.saveLocked(); err != nil {
		return 0, err
	}
	return n, nil
}

// FindByName returns the file-id registered under name.
func (c *Catalog) FindByName(name string) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if e.Name == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("catalog: no table named %q", name)
}

// GetFile returns the path and type registered for fileID.
func (c *Catalog) GetFile(fileID uint32) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fileID]
	if !ok {
		return Entry{}, fmt.Errorf("catalog: unknown file id %d", fileID)
	}
	return e, nil
}
