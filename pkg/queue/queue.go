package queue

import "sync"

// BlockingQueue is a FIFO queue safe for concurrent producers and consumers.
// The zero value is not usable; create queues with New.
type BlockingQueue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []T
	head    int
	stopped bool
}

// New creates an empty queue.
func New[T any]() *BlockingQueue[T] {
	q := &BlockingQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends item to the tail of the queue and wakes one waiting consumer.
// If the queue has been stopped the item is discarded and Push returns false.
func (q *BlockingQueue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return false
	}

	q.items = append(q.items, item)
	q.cond.Signal()
	return true
}

// Pop removes and returns the head item, blocking until one is available.
// It returns the zero value and false once the queue is stopped and empty.
func (q *BlockingQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.lenLocked() == 0 && !q.stopped {
		q.cond.Wait()
	}

	return q.popLocked()
}

// Stop marks the queue as stopped and wakes every waiting consumer.
// Calling Stop more than once has no further effect.
func (q *BlockingQueue[T]) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	q.cond.Broadcast()
}

// Stopped reports whether Stop has been called.
func (q *BlockingQueue[T]) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// Empty reports whether the queue currently holds no items.
func (q *BlockingQueue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of queued items.
func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *BlockingQueue[T]) lenLocked() int {
	return len(q.items) - q.head
}

// popLocked takes the head item. The caller must hold q.mu.
func (q *BlockingQueue[T]) popLocked() (T, bool) {
	var zero T
	if q.lenLocked() == 0 {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head > 64 && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return item, true
}
