// Package stream provides the reactive primitive the catalog pipeline is
// built on: a Value that holds the latest published state and fans it out
// to subscribers.
//
// Subscriptions are latest-only. A slow subscriber never sees a backlog;
// it observes the most recent value published since its last receive.
package stream

import (
	"context"
	"sync"
)

// Value holds the latest published T and its subscribers.
type Value[T any] struct {
	mu     sync.Mutex
	val    T
	set    bool
	subs   map[uint64]chan T
	nextID uint64
}

// NewValue creates an empty Value. Subscribers receive nothing until the
// first Publish.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[uint64]chan T)}
}

// NewValueOf creates a Value seeded with an initial state.
func NewValueOf[T any](initial T) *Value[T] {
	v := NewValue[T]()
	v.val = initial
	v.set = true
	return v
}

// Publish replaces the current value and notifies every subscriber.
func (v *Value[T]) Publish(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.val = val
	v.set = true
	for _, ch := range v.subs {
		offer(ch, val)
	}
}

// Load returns the current value and whether one was ever published.
func (v *Value[T]) Load() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.val, v.set
}

// Subscribe returns a channel that receives the current value (if any) and
// every later one, coalesced. The channel is closed when ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	subID := v.nextID
	v.nextID++
	v.subs[subID] = ch
	if v.set {
		ch <- v.val
	}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, subID)
		close(ch)
		v.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of live subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// offer replaces any undelivered value with val. Callers hold v.mu, which
// makes Publish the only sender.
func offer[T any](ch chan T, val T) {
	select {
	case <-ch:
	default:
	}
	ch <- val
}
