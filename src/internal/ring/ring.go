// Package ring provides a fixed-capacity ring buffer with O(1)
// append-and-evict, used for bounded log and outcome windows.
package ring

// Buffer holds at most Cap() elements; appending beyond capacity
// evicts the oldest element.
type Buffer[T any] struct {
	items []T
	head  int
	size  int
}

// New creates a ring buffer with the given capacity. Capacity must be
// positive; a zero or negative value is coerced to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Cap returns the fixed capacity of the buffer.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Len returns the number of elements currently held.
func (b *Buffer[T]) Len() int {
	return b.size
}

// Push appends an element, evicting the oldest when full.
func (b *Buffer[T]) Push(v T) {
	tail := (b.head + b.size) % len(b.items)
	b.items[tail] = v
	if b.size == len(b.items) {
		b.head = (b.head + 1) % len(b.items)
	} else {
		b.size++
	}
}

// Items returns the elements oldest-first as a fresh slice.
func (b *Buffer[T]) Items() []T {
	out := make([]T, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}

// Last returns up to n most recent elements, oldest-first.
func (b *Buffer[T]) Last(n int) []T {
	if n > b.size {
		n = b.size
	}
	if n < 0 {
		n = 0
	}
	out := make([]T, n)
	start := b.size - n
	for i := 0; i < n; i++ {
		out[i] = b.items[(b.head+start+i)%len(b.items)]
	}
	return out
}

// Clone returns a deep copy sharing no storage with the receiver.
func (b *Buffer[T]) Clone() *Buffer[T] {
	c := New[T](len(b.items))
	for _, v := range b.Items() {
		c.Push(v)
	}
	return c
}
