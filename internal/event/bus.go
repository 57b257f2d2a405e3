// Package event provides a small generic publish/subscribe bus. Publishing
// never blocks: a subscriber whose buffer is full misses the value, and the
// bus counts the drop.
package event

import (
	"sync"
	"sync/atomic"
)

const defaultSubscriberBuffer = 64

type Bus[T any] struct {
	mutex       sync.Mutex
	subscribers map[uint64]chan T
	nextID      uint64
	bufferSize  int
	closed      bool
	published   atomic.Int64
	dropped     atomic.Int64
}

func NewBus[T any](bufferSize int) *Bus[T] {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}
	return &Bus[T]{
		subscribers: make(map[uint64]chan T),
		bufferSize:  bufferSize,
	}
}

// Subscribe returns a channel of published values and a cancel function.
// The channel is closed on cancel or when the bus closes.
func (bus *Bus[T]) Subscribe() (<-chan T, func()) {
	if bus == nil {
		return nil, func() {}
	}

	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	if bus.closed {
		closed := make(chan T)
		close(closed)
		return closed, func() {}
	}

	bus.nextID++
	id := bus.nextID
	channel := make(chan T, bus.bufferSize)
	bus.subscribers[id] = channel

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			bus.mutex.Lock()
			defer bus.mutex.Unlock()
			if subscriber, ok := bus.subscribers[id]; ok {
				delete(bus.subscribers, id)
				close(subscriber)
			}
		})
	}
	return channel, cancel
}

// Publish delivers value to every subscriber without blocking.
func (bus *Bus[T]) Publish(value T) {
	if bus == nil {
		return
	}

	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	if bus.closed {
		return
	}
	bus.published.Add(1)
	for _, subscriber := range bus.subscribers {
		select {
		case subscriber <- value:
		default:
			bus.dropped.Add(1)
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (bus *Bus[T]) Close() {
	if bus == nil {
		return
	}

	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	if bus.closed {
		return
	}
	bus.closed = true
	for id, subscriber := range bus.subscribers {
		delete(bus.subscribers, id)
		close(subscriber)
	}
}

func (bus *Bus[T]) SubscriberCount() int {
	if bus == nil {
		return 0
	}
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	return len(bus.subscribers)
}

func (bus *Bus[T]) Published() int64 {
	if bus == nil {
		return 0
	}
	return bus.published.Load()
}

func (bus *Bus[T]) Dropped() int64 {
	if bus == nil {
		return 0
	}
	return bus.dropped.Load()
}
