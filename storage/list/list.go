// Package list provides an intrusive doubly-linked list with pooled nodes,
// the primitive the ARC replacer uses for its four tracking lists (T1, T2,
// B1, B2).
package list

import "sync"

// Node is a single element of a List. Evictable is a pointwise flag the
// owner toggles directly; RemoveLRU skips nodes with Evictable == false.
type Node[T any] struct {
	Value     T
	Evictable bool

	prev, next *Node[T]
	owner      *List[T]
}

// List is an ordered sequence of nodes backed by a pool so that repeated
// insert/remove churn does not pressure the allocator.
type List[T any] struct {
	head, tail *Node[T]
	size       int
	pool       sync.Pool
}

// New returns an empty list.
func New[T any]() *List[T] {
	l := &List[T]{}
	l.pool.New = func() any { return new(Node[T]) }
	return l
}

// Len returns the current length of the list.
func (l *List[T]) Len() int { return l.size }

// Front returns the head node without removing it, or nil if empty.
func (l *List[T]) Front() *Node[T] { return l.head }

func (l *List[T]) linkTail(n *Node[T]) {
	n.owner = l
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.size++
}

func (l *List[T]) unlink(n *Node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.owner = nil, nil, nil
	l.size--
}

// Insert appends value at the tail, allocating a node from the pool.
func (l *List[T]) Insert(value T) *Node[T] {
	n := l.pool.Get().(*Node[T])
	n.Value = value
	n.Evictable = false
	n.prev, n.next, n.owner = nil, nil, nil
	l.linkTail(n)
	return n
}

// Remove detaches n from this list and returns it to the pool. n must
// currently belong to l.
func (l *List[T]) Remove(n *Node[T]) {
	l.unlink(n)
	var zero T
	n.Value = zero
	n.Evictable = false
	l.pool.Put(n)
}

// MoveToTail detaches n and re-appends it at the tail of the same list.
func (l *List[T]) MoveToTail(n *Node[T]) {
	l.unlink(n)
	l.linkTail(n)
}

// RemoveLRU scans from the head for the first node with Evictable == true,
// detaches it (without returning it to the pool — the caller typically
// re-attaches it to a different list), and returns it. Returns nil if no
// evictable node exists.
func (l *List[T]) RemoveLRU() *Node[T] {
	for n := l.head; n != nil; n = n.next {
		if n.Evictable {
			l.unlink(n)
			return n
		}
	}
	return nil
}

// Detach removes n from l without returning it to the pool, so the caller
// can Attach it onto a different list (used to move an entry between the
// ARC lists without losing its identity or flags).
func (l *List[T]) Detach(n *Node[T]) {
	l.unlink(n)
}

// Attach appends a node previously obtained via Detach or RemoveLRU (and
// therefore not currently linked into any list) onto the tail of l.
func (l *List[T]) Attach(n *Node[T]) {
	l.linkTail(n)
}
