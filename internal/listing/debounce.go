package listing

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of values: fn receives only the last value pushed before a quiet
// period of wait.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending T
	has     bool
	stopped bool
}

func NewDebouncer[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Push records v and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = v
	d.has = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.has || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.has = false
	d.mu.Unlock()

	d.fn(v)
}

// Flush delivers a pending value immediately.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || !d.has {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.pending
	d.has = false
	d.mu.Unlock()

	d.fn(v)
}

// Stop drops any pending value. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.has = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
