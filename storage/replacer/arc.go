// Package replacer implements the Adaptive Replacement Cache (Megiddo &
// Modha) augmented with a per-entry evictable bit, the victim-selection
// policy the buffer pool consults on every miss (spec §4.4).
package replacer

import (
	"sync"

	"github.com/ryogrid/pagestore/storage/list"
	"github.com/ryogrid/pagestore/storage/page"
)

// AccessResult reports what RecordAccess found for the accessed page.
type AccessResult int

const (
	Miss AccessResult = iota
	Hit
	GhostB1
	GhostB2
)

type tag int

const (
	tagT1 tag = iota
	tagT2
	tagB1
	tagB2
)

type entry struct {
	pid page.ID
}

type nodeRef struct {
	tag  tag
	node *list.Node[entry]
}

// ARC tracks access history across four lists (T1, T2, B1, B2) and an
// adaptive target p, deciding which resident page to evict and recording
// ghost hits that bias future decisions. All methods are safe for
// concurrent use; per spec §5 the replacer is conceptually
// single-threaded and every call serializes on a single mutex.
type ARC struct {
	mu       sync.Mutex
	capacity int
	p        int

	t1, t2, b1, b2 *list.List[entry]
	nodes          map[page.ID]nodeRef
}

// New creates an ARC replacer with the given capacity C.
func New(capacity int) *ARC {
	return &ARC{
		capacity: capacity,
		t1:       list.New[entry](),
		t2:       list.New[entry](),
		b1:       list.New[entry](),
		b2:       list.New[entry](),
		nodes:    make(map[page.ID]nodeRef),
	}
}

// SetEvictable toggles the evictable flag on pid's node, if present. It
// makes no ordering changes.
func (a *ARC) SetEvictable(pid page.ID, evictable bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ref, ok := a.nodes[pid]; ok {
		ref.node.Evictable = evictable
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RecordAccess updates the ARC lists and adaptive parameter for an access
// to pid, per the classical ARC(c) algorithm, and reports whether the
// access was a live hit, a cold miss, or a ghost hit in B1/B2.
func (a *ARC) RecordAccess(pid page.ID) AccessResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ref, ok := a.nodes[pid]; ok {
		switch ref.tag {
		case tagT1:
			a.t1.Detach(ref.node)
			a.t2.Attach(ref.node)
			a.nodes[pid] = nodeRef{tag: tagT2, node: ref.node}
			return Hit

		case tagT2:
			a.t2.MoveToTail(ref.node)
			return Hit

		case tagB1:
			delta := maxInt(1, a.b2.Len()/maxInt(1, a.b1.Len()))
			a.p = minInt(a.p+delta, a.capacity)
			if a.t1.Len()+a.t2.Len() >= a.capacity {
				a.evictVictim(false)
			}
			a.b1.Detach(ref.node)
			a.t2.Attach(ref.node)
			a.nodes[pid] = nodeRef{tag: tagT2, node: ref.node}
			return GhostB1

		case tagB2:
			delta := maxInt(1, a.b1.Len()/maxInt(1, a.b2.Len()))
			a.p = maxInt(0, a.p-delta)
			if a.t1.Len()+a.t2.Len() >= a.capacity {
				a.evictVictim(true)
			}
			a.b2.Detach(ref.node)
			a.t2.Attach(ref.node)
			a.nodes[pid] = nodeRef{tag: tagT2, node: ref.node}
			return GhostB2
		}
	}

	// cold miss: not present anywhere in the directory.
	if a.t1.Len()+a.t2.Len() >= a.capacity {
		a.evictVictim(false)
	}
	n := a.t1.Insert(entry{pid: pid})
	a.nodes[pid] = nodeRef{tag: tagT1, node: n}
	return Miss
}

// evictVictim implements replace(in_B2) from spec §4.4: choose T1 if
// |T1| > 0 and (|T1| > p or inB2), else T2; evict its LRU-evictable entry
// into the corresponding ghost list. If the chosen list has no evictable
// entry (all pinned), fall back to the other live list — a case the
// classical (unpinned) algorithm never has to consider, but one this
// buffer pool's pin discipline can produce. Caller must hold a.mu.
func (a *ARC) evictVictim(inB2 bool) (page.ID, bool) {
	t1Len := a.t1.Len()
	if t1Len > 0 && (t1Len > a.p || inB2) {
		if pid, ok := a.evictFrom(a.t1, a.b1, tagB1); ok {
			return pid, true
		}
		return a.evictFrom(a.t2, a.b2, tagB2)
	}
	if pid, ok := a.evictFrom(a.t2, a.b2, tagB2); ok {
		return pid, true
	}
	return a.evictFrom(a.t1, a.b1, tagB1)
}

func (a *ARC) evictFrom(live, ghost *list.List[entry], ghostTag tag) (page.ID, bool) {
	n := live.RemoveLRU()
	if n == nil {
		return page.ID{}, false
	}
	pid := n.Value.pid
	n.Evictable = false
	ghost.Attach(n)
	a.nodes[pid] = nodeRef{tag: ghostTag, node: n}
	a.trimGhost(ghost)
	return pid, true
}

// trimGhost drops the oldest ghost entries once a ghost list exceeds
// capacity C.
func (a *ARC) trimGhost(gl *list.List[entry]) {
	for gl.Len() > a.capacity {
		n := gl.Front()
		if n == nil {
			return
		}
		pid := n.Value.pid
		gl.Remove(n)
		delete(a.nodes, pid)
	}
}

// Evict selects an external victim — the buffer pool's non-adaptive
// "I need a free frame" path — using the same policy as replace(false),
// but without touching the adaptive parameter p. Returns false if
// neither T1 nor T2 has an evictable entry.
func (a *ARC) Evict() (page.ID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evictVictim(false)
}

// Remove detaches pid from whichever list holds it (live or ghost) and
// drops its side-index entry. Used when a page is deleted outright.
func (a *ARC) Remove(pid page.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ref, ok := a.nodes[pid]
	if !ok {
		return
	}
	switch ref.tag {
	case tagT1:
		a.t1.Remove(ref.node)
	case tagT2:
		a.t2.Remove(ref.node)
	case tagB1:
		a.b1.Remove(ref.node)
	case tagB2:
		a.b2.Remove(ref.node)
	}
	delete(a.nodes, pid)
}

// P returns the current adaptive target size of T1 (for tests/metrics).
func (a *ARC) P() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.p
}

// Sizes returns the current length of each of the four lists (for
// tests/metrics).
func (a *ARC) Sizes() (t1, t2, b1, b2 int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.t1.Len(), a.t2.Len(), a.b1.Len(), a.b2.Len()
}
