package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

// captureTimers replaces afterFunc so scheduled callbacks run only when the
// test invokes them.
func captureTimers(t *testing.T) *[]func() {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })
	var callbacks []func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		callbacks = append(callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
	return &callbacks
}

func TestOnlyLatestTriggerFires(t *testing.T) {
	callbacks := captureTimers(t)
	var called atomic.Int32
	d := New(time.Second, func() { called.Add(1) })

	d.Trigger()
	d.Trigger()
	if len(*callbacks) != 2 {
		t.Fatalf("expected 2 scheduled callbacks, got %d", len(*callbacks))
	}
	for _, cb := range *callbacks {
		cb()
	}
	if got := called.Load(); got != 1 {
		t.Fatalf("expected only the latest callback to run, got %d", got)
	}
}

func TestStopInvalidatesPendingCallback(t *testing.T) {
	callbacks := captureTimers(t)
	var called atomic.Int32
	d := New(time.Second, func() { called.Add(1) })

	d.Trigger()
	d.Stop()
	(*callbacks)[0]()
	if got := called.Load(); got != 0 {
		t.Fatalf("expected no calls after stop, got %d", got)
	}
}

func TestTriggerFiresOnce(t *testing.T) {
	var count atomic.Int32
	done := make(chan struct{})
	d := New(10*time.Millisecond, func() {
		count.Add(1)
		close(done)
	})
	d.Trigger()
	d.Trigger()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debouncer did not fire")
	}
	if count.Load() != 1 {
		t.Fatalf("expected one invocation, got %d", count.Load())
	}
}

func TestEnsureInitializesAndReuses(t *testing.T) {
	var called atomic.Int32
	var d *Debouncer
	first := Ensure(&d, 5*time.Millisecond, func() { called.Add(1) })
	if first == nil || first != d {
		t.Fatal("Ensure should initialize and return the stored debouncer")
	}
	second := Ensure(&d, 5*time.Millisecond, func() { called.Add(10) })
	if second != first {
		t.Fatal("Ensure should not replace an existing debouncer")
	}
	first.Trigger()
	time.Sleep(30 * time.Millisecond)
	if called.Load() != 1 {
		t.Fatalf("original handler should run exactly once, got %d", called.Load())
	}
}
