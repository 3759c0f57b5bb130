// Package debounce delays propagation of a changing value until it has been
// stable for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds the latest value passed to Set and hands it to the callback
// once no new value has arrived for the configured delay. Intermediate values
// are dropped, never queued.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	pending T
	armed   bool
	settled T
	hasSet  bool
	gen     uint64
	stopped bool
	running sync.WaitGroup
}

// New creates a debouncer that calls fn with the settled value.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
	}
}

// Set records v and restarts the wait window, discarding any pending value.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.pending = v
	d.armed = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// A newer Set or a Stop raced with this timer.
	if d.stopped || gen != d.gen || !d.armed {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(v)
}

// take clears the pending state. Callers hold mu.
func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.armed = false
	d.timer = nil
	d.settled = v
	d.hasSet = true
	return v
}

// Flush emits the pending value immediately, if there is one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.armed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.take()
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(v)
	return true
}

// Pending reports whether a value is waiting for its window to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Settled returns the last value handed to the callback.
func (d *Debouncer[T]) Settled() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled, d.hasSet
}

// Stop releases the pending timer and waits for a callback already in
// progress to return. The callback is never invoked afterwards. Calling Stop
// from inside the callback deadlocks.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.armed = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.running.Wait()
}
