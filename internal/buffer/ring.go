package buffer

// Ring is a fixed-capacity ring buffer that overwrites the oldest entry
// once full.
type Ring[T any] struct {
	entries []T
	next    int
	full    bool
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{
		entries: make([]T, 0, capacity),
	}
}

func (ring *Ring[T]) Add(entry T) {
	if ring == nil {
		return
	}
	if !ring.full {
		ring.entries = append(ring.entries, entry)
		if len(ring.entries) == cap(ring.entries) {
			ring.full = true
		}
		return
	}
	ring.entries[ring.next] = entry
	ring.next = (ring.next + 1) % len(ring.entries)
}

func (ring *Ring[T]) Len() int {
	if ring == nil {
		return 0
	}
	return len(ring.entries)
}

func (ring *Ring[T]) Cap() int {
	if ring == nil {
		return 0
	}
	return cap(ring.entries)
}

// List returns entries oldest first.
func (ring *Ring[T]) List() []T {
	if ring == nil || len(ring.entries) == 0 {
		return nil
	}
	out := make([]T, 0, len(ring.entries))
	for i := 0; i < len(ring.entries); i++ {
		out = append(out, ring.entries[(ring.next+i)%len(ring.entries)])
	}
	return out
}
