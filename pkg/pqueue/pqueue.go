// Package pqueue provides a generic priority queue for ranked selection.
// Built on container/heap. No external dependencies - uses only standard library.
package pqueue

import "container/heap"

// Queue is a priority queue over items of type T. The less function defines
// priority: items for which less(a, b) is true are popped first. For a
// max-queue pass a "greater than" comparison.
type Queue[T any] struct {
	inner *innerHeap[T]
}

// New creates an empty queue with the given priority function.
func New[T any](less func(a, b T) bool) *Queue[T] {
	return &Queue[T]{
		inner: &innerHeap[T]{less: less},
	}
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	return q.inner.Len()
}

// Push adds an item to the queue.
func (q *Queue[T]) Push(item T) {
	heap.Push(q.inner, item)
}

// Pop removes and returns the highest-priority item.
// The second return value is false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.inner.Len() == 0 {
		return zero, false
	}
	return heap.Pop(q.inner).(T), true
}

// Peek returns the highest-priority item without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if q.inner.Len() == 0 {
		return zero, false
	}
	return q.inner.items[0], true
}

// Drain pops all items in priority order.
func (q *Queue[T]) Drain() []T {
	result := make([]T, 0, q.Len())
	for {
		item, ok := q.Pop()
		if !ok {
			return result
		}
		result = append(result, item)
	}
}

// TopN pushes all given items and returns up to n of them in priority order.
// Convenience for one-shot ranked selection.
func TopN[T any](items []T, n int, less func(a, b T) bool) []T {
	if n <= 0 {
		return nil
	}
	q := New(less)
	for _, item := range items {
		q.Push(item)
	}
	if n > q.Len() {
		n = q.Len()
	}
	result := make([]T, 0, n)
	for i := 0; i < n; i++ {
		item, _ := q.Pop()
		result = append(result, item)
	}
	return result
}

// innerHeap implements heap.Interface.
type innerHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *innerHeap[T]) Len() int           { return len(h.items) }
func (h *innerHeap[T]) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *innerHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *innerHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *innerHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
