package frontier

import "sync"

// Queue is a FIFO of pending jobs shared by the dispatcher and callers.
type Queue[T any] struct {
	totalQueued int
	elements    []T
	mu          sync.Mutex
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		elements: make([]T, 0),
	}
}

func (q *Queue[T]) Enqueue(v T) {
	q.mu.Lock()
	q.elements = append(q.elements, v)
	q.totalQueued++
	q.mu.Unlock()
}

// PopFront removes the oldest job.
func (q *Queue[T]) PopFront() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.elements) == 0 {
		return zero, false
	}
	v := q.elements[0]
	q.elements[0] = zero
	q.elements = q.elements[1:]
	return v, true
}

func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.elements)
}

func (q *Queue[T]) TotalQueued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalQueued
}
