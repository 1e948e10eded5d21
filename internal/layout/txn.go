package layout

import (
	"sync"
	"time"
)

// txnAfterFunc is swapped out in tests for deterministic exits.
var txnAfterFunc = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// txnGuard is the reentrant suppression counter around programmatic surface
// mutation. While the depth is above zero, surface notifications are the
// engine's own echo and must not re-enter the reconciliation path.
//
// Exits are delayed rather than immediate: the surface may deliver
// notifications asynchronously just after the mutating call returns, and an
// immediate exit would let those be mistaken for user-driven changes.
type txnGuard struct {
	mu    sync.Mutex
	depth int
	delay time.Duration
}

func newTxnGuard(delay time.Duration) *txnGuard {
	return &txnGuard{delay: delay}
}

func (g *txnGuard) enter() {
	g.mu.Lock()
	g.depth++
	g.mu.Unlock()
}

// exitSoon schedules the matching exit after the guard's delay. Call sites
// pair it with enter via defer so the exit is scheduled even on panic.
func (g *txnGuard) exitSoon() {
	txnAfterFunc(g.delay, g.exit)
}

func (g *txnGuard) exit() {
	g.mu.Lock()
	if g.depth > 0 {
		g.depth--
	}
	g.mu.Unlock()
}

func (g *txnGuard) active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.depth > 0
}
