package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryogrid/pagestore/storage/buffer"
	"github.com/ryogrid/pagestore/storage/page"
)

type fakePool struct {
	frame page.Frame
}

func (f *fakePool) FetchPage(id page.ID) (*page.Frame, error) { return &f.frame, nil }
func (f *fakePool) UnpinPage(page.ID, bool) error              { return nil }
func (f *fakePool) FlushPage(page.ID) error                    { return nil }
func (f *fakePool) Stats() buffer.Stats                        { return buffer.Stats{Hits: 3} }

func findByNameStub(name string) (uint32, error) { return 1, nil }

func TestRunShellLineStats(t *testing.T) {
	err := runShellLine(&fakePool{}, findByNameStub, "stats")
	require.NoError(t, err)
}

func TestRunShellLinePutThenGet(t *testing.T) {
	p := &fakePool{}
	require.NoError(t, runShellLine(p, findByNameStub, "put t1 0 ab"))
	p.frame.RLock()
	got := p.frame.Data()[0]
	p.frame.RUnlock()
	require.Equal(t, byte(0xab), got)

	require.NoError(t, runShellLine(p, findByNameStub, "get t1 0"))
}

func TestRunShellLineUnknownCommand(t *testing.T) {
	err := runShellLine(&fakePool{}, findByNameStub, "bogus")
	require.Error(t, err)
}
