package stream

import "time"

// Map transforms every value received from in with fn, keeping latest-only
// delivery: if the consumer lags, intermediate results are dropped. The
// returned channel closes when in closes.
func Map[A, B any](in <-chan A, fn func(A) B) <-chan B {
	out := make(chan B, 1)
	go func() {
		defer close(out)
		for a := range in {
			offerOwned(out, fn(a))
		}
	}()
	return out
}

// Refresh is Map that also re-applies fn to the latest input on every tick
// of every, for derived values that change with time alone. Nothing is
// delivered before the first input. The returned channel closes when in closes.
func Refresh[A, B any](in <-chan A, every time.Duration, fn func(A) B) <-chan B {
	out := make(chan B, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		var (
			latest A
			seen   bool
		)
		for {
			select {
			case a, ok := <-in:
				if !ok {
					return
				}
				latest, seen = a, true
			case <-ticker.C:
				if !seen {
					continue
				}
			}
			offerOwned(out, fn(latest))
		}
	}()
	return out
}

// offerOwned is offer for a channel with a single sending goroutine.
func offerOwned[T any](ch chan T, val T) {
	for {
		select {
		case ch <- val:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
