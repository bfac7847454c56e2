// internal/buffer/buffer.go

// Package buffer holds telemetry samples between the recorder and the
// exporter's periodic flush.
package buffer

import "sync"

// Buffer is a bounded, flush-oriented sample buffer. Add never blocks: once
// the limit is reached the oldest samples are evicted, so a stalled exporter
// costs telemetry, not recording throughput.
type Buffer[T any] struct {
	mu      sync.Mutex
	items   []T
	limit   int
	evicted uint64
}

// New creates a buffer holding at most limit items. A limit of zero or less
// means unbounded.
func New[T any](limit int) *Buffer[T] {
	return &Buffer[T]{limit: limit}
}

// Add appends items, evicting the oldest buffered samples when the total
// would exceed the limit. It returns the number evicted.
func (b *Buffer[T]) Add(items ...T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, items...)
	if b.limit <= 0 || len(b.items) <= b.limit {
		return 0
	}
	n := len(b.items) - b.limit
	b.items = append(b.items[:0], b.items[n:]...)
	b.evicted += uint64(n)
	return n
}

// Flush returns everything buffered, in arrival order, and resets the buffer.
func (b *Buffer[T]) Flush() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.items
	b.items = make([]T, 0, cap(out))
	return out
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Evicted returns the total number of samples lost to the limit.
func (b *Buffer[T]) Evicted() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evicted
}
