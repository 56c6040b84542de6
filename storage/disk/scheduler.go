package disk

import (
	"sync"

	"github.com/ryogrid/pagestore/internal/errs"
	"github.com/ryogrid/pagestore/storage/page"
)

// Op names the kind of I/O a Request performs.
type Op int

const (
	Read Op = iota
	Write
)

// Request is a single queued disk operation. For Read, Buffer is filled
// by the worker; for Write, Buffer is read by the worker. Callers must
// not mutate Buffer between Submit and the completion firing — the
// buffer pool enforces this by holding the target frame's latch across
// submit-and-await.
type Request struct {
	Op     Op
	PageID page.ID
	Buffer []byte
}

// Scheduler is an unbounded, multi-producer/single-consumer queue
// fronting a Manager with one dedicated worker goroutine. Submissions for
// distinct pages are carried out in FIFO submission order.
type Scheduler struct {
	mgr *Manager

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*pending
	closed bool
	done   chan struct{}
}

type pending struct {
	req      *Request
	complete chan error
}

// NewScheduler starts a scheduler backed by mgr.
func NewScheduler(mgr *Manager) *Scheduler {
	s := &Scheduler{mgr: mgr, done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Submit enqueues req and returns a channel that receives its completion
// (nil on success). Submit never blocks for capacity — the queue grows
// as needed. Submitting after Shutdown returns a channel already holding
// ErrSchedulerClosed.
func (s *Scheduler) Submit(req *Request) <-chan error {
	complete := make(chan error, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		complete <- errs.ErrSchedulerClosed
		return complete
	}
	s.queue = append(s.queue, &pending{req: req, complete: complete})
	s.mu.Unlock()
	s.cond.Signal()

	return complete
}

// SubmitAndWait is a convenience wrapper for the common case of awaiting
// the completion synchronously.
func (s *Scheduler) SubmitAndWait(req *Request) error {
	return <-s.Submit(req)
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			// closed and drained
			s.mu.Unlock()
			close(s.done)
			return
		}
		p := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		var err error
		switch p.req.Op {
		case Read:
			err = s.mgr.ReadPage(p.req.PageID, p.req.Buffer)
		case Write:
			err = s.mgr.WritePage(p.req.PageID, p.req.Buffer)
		}
		p.complete <- err
	}
}

// Shutdown closes the submission side. Requests already queued are still
// drained and completed; the worker goroutine then exits. Shutdown
// blocks until the worker has exited.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
	<-s.done
}
