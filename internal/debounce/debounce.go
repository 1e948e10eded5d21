// Package debounce coalesces bursts of triggers into a single deferred call.
// The layout engine uses it to defer persistence writes to idle time and to
// delay transaction-guard exits past asynchronous surface notifications.
package debounce

import (
	"sync"
	"time"
)

// afterFunc is swapped out in tests for deterministic scheduling.
var afterFunc = time.AfterFunc

type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
	fn    func()
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)schedules the callback. Only the latest trigger's callback
// runs; earlier pending timers are invalidated even if their callbacks were
// already in flight.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = afterFunc(d.delay, func() {
		d.mu.Lock()
		stale := gen != d.gen
		d.mu.Unlock()
		if stale {
			return
		}
		d.fn()
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Ensure lazily initializes *d with the given delay and handler and returns
// the stored debouncer. An already-set debouncer is returned unchanged.
func Ensure(d **Debouncer, delay time.Duration, fn func()) *Debouncer {
	if *d == nil {
		*d = New(delay, fn)
	}
	return *d
}
