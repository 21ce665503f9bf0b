package growable

import (
	"github.com/willabides/yamlstream/internal/yamlh"
)

// Queue is a growable FIFO. Dequeued slots at the front are reclaimed by
// moving the live elements back to the start of the array before the array
// is grown.
type Queue[T any] struct {
	items []T
	head  int

	// Limit is the maximum number of live elements. Zero means no limit
	// beyond the package default.
	Limit int
}

func NewQueue[T any](limit int) *Queue[T] {
	return &Queue[T]{items: make([]T, 0, yamlh.InitialQueueSize), Limit: limit}
}

func (q *Queue[T]) reserve() error {
	if len(q.items) < cap(q.items) {
		return nil
	}
	// Check if we can move the queue to the beginning of the buffer.
	if q.head > 0 {
		n := copy(q.items, q.items[q.head:])
		var zero T
		for i := n; i < len(q.items); i++ {
			q.items[i] = zero
		}
		q.items = q.items[:n]
		q.head = 0
		return nil
	}
	c, ok := nextCap(cap(q.items), len(q.items)+1, yamlh.InitialQueueSize, q.Limit)
	if !ok {
		return newMemoryError("queue")
	}
	items := make([]T, len(q.items), c)
	copy(items, q.items)
	q.items = items
	return nil
}

// Enqueue appends v at the tail.
func (q *Queue[T]) Enqueue(v T) error {
	return q.Insert(q.Len(), v)
}

// Insert places v at position pos counting from the head. Elements at and
// after pos move one slot towards the tail.
func (q *Queue[T]) Insert(pos int, v T) error {
	if err := q.reserve(); err != nil {
		return err
	}
	q.items = append(q.items, v)
	at := q.head + pos
	if at < len(q.items)-1 {
		copy(q.items[at+1:], q.items[at:len(q.items)-1])
		q.items[at] = v
	}
	return nil
}

// Dequeue removes and returns the head element. It panics on an empty
// queue.
func (q *Queue[T]) Dequeue() T {
	v := q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return v
}

// Head returns a pointer to the head element, or nil on an empty queue.
func (q *Queue[T]) Head() *T {
	if q.Empty() {
		return nil
	}
	return &q.items[q.head]
}

// At returns a pointer to the i-th live element counting from the head.
func (q *Queue[T]) At(i int) *T {
	return &q.items[q.head+i]
}

func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

func (q *Queue[T]) Release() {
	q.items = nil
	q.head = 0
}
