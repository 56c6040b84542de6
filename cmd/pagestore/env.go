package main

import (
	"github.com/ryogrid/pagestore/catalog"
	"github.com/ryogrid/pagestore/storage/buffer"
	"github.com/ryogrid/pagestore/storage/disk"
)

// cliEnv bundles the flags every subcommand needs to stand up a pool
// against the same catalog/data directory.
type cliEnv struct {
	dataDir     *string
	poolSize    *int
	useDirectIO *bool
}

// open loads the catalog from disk and wires a fresh scheduler + pool on
// top of it. Callers are responsible for calling scheduler.Shutdown().
func (e *cliEnv) open() (*buffer.PoolManager, *catalog.Catalog, *disk.Scheduler, error) {
	cat, err := catalog.Load(*e.dataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	mgr := disk.NewManager(cat, *e.useDirectIO)
	sched := disk.NewScheduler(mgr)
	pool := buffer.New(*e.poolSize, sched, cat)
	return pool, cat, sched, nil
}
