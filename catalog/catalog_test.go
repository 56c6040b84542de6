package catalog

import (
	"path/filepath"
	"testing"
)

func TestCreateTableAssignsMonotonicIDs(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	id1, err := c.CreateTable("users", Heap)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if id1 != 1 {
		t.Fatalf("first file id = %d, want 1", id1)
	}

	id2, err := c.CreateTable("users_idx", BTreeIndex)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if id2 != 2 {
		t.Fatalf("second file id = %d, want 2", id2)
	}

	e, err := c.GetFile(id1)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	want := filepath.Join(dir, "users.db")
	if e.Path != want {
		t.Errorf("Path = %q, want %q", e.Path, want)
	}
}

func TestGetFileUnknownID(t *testing.T) {
	c := New(t.TempDir())
	if _, err := c.GetFile(99); err == nil {
		t.Fatal("GetFile(99) = nil error, want error for unknown id")
	}
}

func TestLoadRecoversAfterRestart(t *testing.T) {
	dir := t.TempDir()
	c1 := New(dir)
	id, err := c1.CreateTable("accounts", Heap)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	c2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e, err := c2.GetFile(id)
	if err != nil {
		t.Fatalf("GetFile after reload: %v", err)
	}
	if e.Name != "accounts" {
		t.Errorf("Name = %q, want accounts", e.Name)
	}

	id2, err := c2.CreateTable("other", Heap)
	if err != nil {
		t.Fatalf("CreateTable after reload: %v", err)
	}
	if id2 != id+1 {
		t.Errorf("next file id = %d, want %d (monotonic across restart)", id2, id+1)
	}
}
