// Package growable provides the amortized-growth containers shared by the
// parser, the emitter and the document model. Growth never leaves a
// container half-resized: when a request cannot be satisfied the container
// keeps its previous contents and a MEMORY_ERROR is returned.
package growable

import (
	"github.com/willabides/yamlstream/internal/yamlh"
)

// maxLen caps every container when no explicit limit is set.
const maxLen = 1 << 30

func newMemoryError(what string) *yamlh.Error {
	return yamlh.NewError(yamlh.MEMORY_ERROR, "cannot grow "+what, yamlh.Mark{})
}

// nextCap returns the capacity to grow to from cur in order to hold need
// elements, or false when that would exceed limit.
func nextCap(cur, need, initial, limit int) (int, bool) {
	if limit <= 0 {
		limit = maxLen
	}
	if need > limit {
		return 0, false
	}
	n := cur
	if n < initial {
		n = initial
	}
	for n < need {
		n *= 2
	}
	if n > limit {
		n = limit
	}
	return n, true
}

// Stack is a growable random-access sequence with push/pop at the end.
// The zero value is ready to use.
type Stack[T any] struct {
	items []T

	// Limit is the maximum number of elements. Zero means no limit beyond
	// the package default.
	Limit int
}

// NewStack returns a stack with the initial capacity preallocated.
func NewStack[T any](limit int) *Stack[T] {
	return &Stack[T]{items: make([]T, 0, yamlh.InitialStackSize), Limit: limit}
}

func (s *Stack[T]) reserve(n int) error {
	need := len(s.items) + n
	if need <= cap(s.items) {
		return nil
	}
	c, ok := nextCap(cap(s.items), need, yamlh.InitialStackSize, s.Limit)
	if !ok {
		return newMemoryError("stack")
	}
	items := make([]T, len(s.items), c)
	copy(items, s.items)
	s.items = items
	return nil
}

// Push appends v to the top of the stack.
func (s *Stack[T]) Push(v T) error {
	if err := s.reserve(1); err != nil {
		return err
	}
	s.items = append(s.items, v)
	return nil
}

// Pop removes and returns the top element. It panics on an empty stack.
func (s *Stack[T]) Pop() T {
	n := len(s.items) - 1
	v := s.items[n]
	var zero T
	s.items[n] = zero
	s.items = s.items[:n]
	return v
}

// Top returns a pointer to the top element, or nil on an empty stack.
func (s *Stack[T]) Top() *T {
	if len(s.items) == 0 {
		return nil
	}
	return &s.items[len(s.items)-1]
}

// At returns a pointer to the i-th element counting from the bottom.
func (s *Stack[T]) At(i int) *T {
	return &s.items[i]
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}

func (s *Stack[T]) Cap() int {
	return cap(s.items)
}

func (s *Stack[T]) Empty() bool {
	return len(s.items) == 0
}

// Items returns the elements bottom to top. The slice aliases the stack.
func (s *Stack[T]) Items() []T {
	return s.items
}

// Truncate drops every element above n.
func (s *Stack[T]) Truncate(n int) {
	var zero T
	for i := n; i < len(s.items); i++ {
		s.items[i] = zero
	}
	s.items = s.items[:n]
}

// Release drops the elements and the backing array.
func (s *Stack[T]) Release() {
	s.items = nil
}
