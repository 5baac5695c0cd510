// Package schedule provides the two timing primitives the feed engine
// relies on: Coalescer collapses bursts of work into the next frame, and
// Debouncer fires once after a quiet interval. Both expose a Pending query
// so callers can tell whether a callback is already queued.
package schedule

import (
	"sync"
	"time"
)

// Coalescer batches repeated Trigger calls into a single callback on the
// next frame boundary. Triggering while a callback is pending is a no-op.
type Coalescer struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewCoalescer builds a frame coalescer firing fn at most once per interval.
func NewCoalescer(interval time.Duration, fn func()) *Coalescer {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Coalescer{interval: interval, fn: fn}
}

// Trigger schedules fn for the next frame unless one is already queued.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	if c.stopped || c.pending {
		c.mu.Unlock()
		return
	}
	c.pending = true
	c.timer = time.AfterFunc(c.interval, func() {
		c.mu.Lock()
		c.pending = false
		stopped := c.stopped
		c.mu.Unlock()
		if !stopped {
			c.fn()
		}
	})
	c.mu.Unlock()
}

// Pending reports whether a callback is currently queued.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Stop cancels any queued callback and refuses further triggers.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.pending = false
	if c.timer != nil {
		c.timer.Stop()
	}
}

// Debouncer fires fn once after a quiet interval. Each Reset restarts the
// countdown; Pending reports whether a fire is still outstanding.
type Debouncer struct {
	quiet time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewDebouncer builds a trailing-edge debouncer with the given quiet window.
func NewDebouncer(quiet time.Duration, fn func()) *Debouncer {
	if quiet <= 0 {
		quiet = time.Millisecond
	}
	return &Debouncer{quiet: quiet, fn: fn}
}

// Reset (re)starts the quiet window, postponing the pending fire if any.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		d.pending = false
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fn()
		}
	})
	d.mu.Unlock()
}

// Pending reports whether a fire is outstanding.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels the pending fire, if any, and refuses further resets.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
