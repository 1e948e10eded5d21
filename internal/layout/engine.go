// Package layout keeps the dock surface's actual panel set synchronized
// with the active workspace's desired panel set. It owns the reconciler and
// its placement policy, the transaction guard that breaks the notification
// feedback loop, the preset transition engine, and the workspace-switch fast
// path.
package layout

import (
	"log/slog"
	"sync"
	"time"

	"github.com/diffy-scm/diffy-go/internal/debounce"
	"github.com/diffy-scm/diffy-go/internal/dock"
	"github.com/diffy-scm/diffy-go/internal/layout/persist"
	"github.com/diffy-scm/diffy-go/internal/panel"
	"github.com/diffy-scm/diffy-go/internal/workspace"
)

const (
	defaultTxnExitDelay = 100 * time.Millisecond
	defaultSaveDelay    = 500 * time.Millisecond
)

// Config carries the engine's timing knobs. Zero values pick the defaults.
type Config struct {
	// TxnExitDelay is how long after a programmatic mutation the
	// transaction guard keeps absorbing surface notifications.
	TxnExitDelay time.Duration
	// SaveDelay defers persistence writes off the interaction path.
	SaveDelay time.Duration
}

// Engine is the layout reconciliation engine. Construct it once with New,
// attach the dock surface when the shell has built it, and Close it on shell
// teardown.
//
// There is exactly one dock tree regardless of how many workspaces are open;
// the engine is the only component allowed to mutate it.
type Engine struct {
	cfg     Config
	store   *workspace.Store
	records *persist.Store

	mu      sync.Mutex
	txn     *txnGuard
	surface dock.Surface
	// last is the last-reconciled snapshot. Reconcile diffs against it
	// rather than re-querying the surface, which can observe transient
	// states mid-transition.
	last     panel.DesiredSet
	handles  map[panel.Kind]dock.Handle
	active   string
	pending  string // workspace queued before the surface attached
	attached bool
	// skipNext suppresses exactly one reconciliation pass after a
	// workspace switch.
	skipNext bool

	pendingSaves map[string]*dock.Tree
	savers       map[string]*debounce.Debouncer
	unsubscribe  func()
	stopWatch    func()
}

// New wires the engine into the workspace store's notifications. records may
// be nil to disable persistence (some tests do).
func New(store *workspace.Store, records *persist.Store, cfg Config) *Engine {
	if cfg.TxnExitDelay == 0 {
		cfg.TxnExitDelay = defaultTxnExitDelay
	}
	if cfg.SaveDelay == 0 {
		cfg.SaveDelay = defaultSaveDelay
	}
	e := &Engine{
		cfg:          cfg,
		store:        store,
		records:      records,
		txn:          newTxnGuard(cfg.TxnExitDelay),
		last:         panel.DesiredSet{},
		handles:      make(map[panel.Kind]dock.Handle),
		pendingSaves: make(map[string]*dock.Tree),
		savers:       make(map[string]*debounce.Debouncer),
	}
	store.PanelToggled = e.handlePanelToggled
	store.ActiveChanged = e.handleActiveChanged
	return e
}

// Attach binds the freshly initialized dock surface and performs the one
// true initial reconciliation: the queued workspace's persisted layout when
// one loads and applies cleanly, the hard-coded default layout otherwise.
func (e *Engine) Attach(surface dock.Surface) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.surface = surface
	e.attached = true
	e.unsubscribe = surface.Subscribe(surfaceEvents{e})

	ws := e.pending
	e.pending = ""
	if ws == "" {
		ws = e.store.Active()
	}
	e.active = ws

	e.txn.enter()
	defer e.txn.exitSoon()
	applied := false
	if e.records != nil && ws != "" {
		if tree := e.records.Load(ws); tree != nil {
			if err := surface.Deserialize(tree); err != nil {
				slog.Error("apply persisted layout", slog.String("workspace", ws), slog.Any("error", err))
			} else {
				applied = true
			}
		}
	}
	if !applied {
		e.applyDefaultLocked()
	}
	e.rebuildHandlesLocked()
	e.last = e.actualDesiredLocked()
	e.syncAllLocked()

	if e.records != nil {
		stop, err := e.records.Watch(e.resetToDefault)
		if err != nil {
			slog.Error("watch layout records", slog.Any("error", err))
		} else {
			e.stopWatch = stop
		}
	}
}

// Close flushes pending saves and releases subscriptions and watchers.
func (e *Engine) Close() {
	e.mu.Lock()
	flush := e.pendingSaves
	e.pendingSaves = make(map[string]*dock.Tree)
	for _, d := range e.savers {
		d.Stop()
	}
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	stopWatch := e.stopWatch
	e.stopWatch = nil
	e.attached = false
	e.mu.Unlock()
	if stopWatch != nil {
		stopWatch()
	}
	if e.records != nil {
		for id, tree := range flush {
			e.records.Save(id, tree)
		}
	}
}

// Reconcile brings the surface's panel set in line with desired: every kind
// desired and absent is added, every kind present and no longer desired is
// removed, and nothing else is touched.
func (e *Engine) Reconcile(desired panel.DesiredSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcileLocked(desired)
}

func (e *Engine) reconcileLocked(desired panel.DesiredSet) {
	if !e.attached {
		return
	}
	if e.skipNext {
		e.skipNext = false
		return
	}
	if desired.Equal(e.last) {
		return
	}
	e.txn.enter()
	defer e.txn.exitSoon()

	applied := make(map[panel.Kind]bool)
	for _, k := range panel.Kinds() {
		want, have := desired[k], e.last[k]
		switch {
		case want && !have:
			if e.addPanelLocked(k) {
				applied[k] = true
			} else {
				_, present := e.surface.Panel(string(k))
				applied[k] = present
			}
		case !want && have:
			h, ok := e.handleForLocked(k)
			if !ok {
				applied[k] = false
				continue
			}
			e.removePanelLocked(k, h)
			applied[k] = false
		}
	}

	snapshot := desired.Clone()
	for k, present := range applied {
		snapshot[k] = present
	}
	e.last = snapshot
	if e.active != "" {
		e.store.SyncPanels(e.active, applied)
	}
	e.scheduleSaveLocked(e.active)
}

// addPanelLocked adds the panel via its placement chain and records its
// handle. Returns false when the surface refused the add.
func (e *Engine) addPanelLocked(k panel.Kind) bool {
	pos := placementFor(e.surface, k)
	h, err := e.surface.AddPanel(string(k), k.Title(), pos)
	if err != nil {
		slog.Error("add panel", slog.String("panel", string(k)), slog.Any("error", err))
		return false
	}
	e.handles[k] = h
	return true
}

func (e *Engine) removePanelLocked(k panel.Kind, h dock.Handle) {
	if err := e.surface.RemovePanel(h); err != nil {
		slog.Error("remove panel", slog.String("panel", string(k)), slog.Any("error", err))
	}
	delete(e.handles, k)
}

// handleForLocked finds the live handle for a kind, falling back to a
// surface lookup when the engine never created the panel itself (for
// example after a persisted layout was applied).
func (e *Engine) handleForLocked(k panel.Kind) (dock.Handle, bool) {
	if h, ok := e.handles[k]; ok {
		return h, true
	}
	if h, ok := e.surface.Panel(string(k)); ok {
		e.handles[k] = h
		return h, true
	}
	return nil, false
}

// handlePanelToggled is the workspace store's toggle notification. Only the
// active workspace's desired set drives the surface.
func (e *Engine) handlePanelToggled(id string, desired panel.DesiredSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != e.active {
		return
	}
	e.reconcileLocked(desired)
}

// handleActiveChanged is the workspace-switch fast path. It saves the
// previous workspace's tree (deferred, off the switch path), repoints the
// active-workspace bookkeeping, and deliberately does NOT reconcile against
// the new workspace's desired set: the snapshot is re-baselined to the
// surface's actual panel set so the dock keeps its panels across the switch,
// and the next reconciliation pass is suppressed once.
func (e *Engine) handleActiveChanged(prev, next string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		e.pending = next
		return
	}
	if prev != "" {
		e.scheduleSaveLocked(prev)
	}
	e.active = next
	e.last = e.actualDesiredLocked()
	e.skipNext = true
}

// resetToDefault rebuilds the default layout after layout records were
// cleared externally (the corrupted-state escape hatch).
func (e *Engine) resetToDefault() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return
	}
	e.txn.enter()
	defer e.txn.exitSoon()
	e.applyDefaultLocked()
	e.rebuildHandlesLocked()
	e.last = e.actualDesiredLocked()
	e.syncAllLocked()
}

// actualDesiredLocked derives a desired set from the panels actually on the
// surface.
func (e *Engine) actualDesiredLocked() panel.DesiredSet {
	s := make(panel.DesiredSet)
	for _, id := range dock.PanelIDs(e.surface) {
		if k := panel.Kind(id); k.Valid() {
			s[k] = true
		}
	}
	return s
}

func (e *Engine) rebuildHandlesLocked() {
	e.handles = make(map[panel.Kind]dock.Handle)
	for _, id := range dock.PanelIDs(e.surface) {
		k := panel.Kind(id)
		if !k.Valid() {
			continue
		}
		if h, ok := e.surface.Panel(id); ok {
			e.handles[k] = h
		}
	}
}

// syncAllLocked writes the full snapshot back to the active workspace's
// desired set so toggle-button state matches the surface.
func (e *Engine) syncAllLocked() {
	if e.active == "" {
		return
	}
	m := make(map[panel.Kind]bool, len(panel.Kinds()))
	for _, k := range panel.Kinds() {
		m[k] = e.last[k]
	}
	e.store.SyncPanels(e.active, m)
}

// scheduleSaveLocked snapshots the surface now and defers the disk write. A
// later save for the same workspace supersedes a pending one.
func (e *Engine) scheduleSaveLocked(id string) {
	if e.records == nil || id == "" || !e.attached {
		return
	}
	tree, err := e.surface.Serialize()
	if err != nil {
		slog.Debug("layout save skipped", slog.String("workspace", id), slog.Any("error", err))
		return
	}
	e.pendingSaves[id] = tree
	saver := e.savers[id]
	if saver == nil {
		wsID := id
		saver = debounce.New(e.cfg.SaveDelay, func() { e.flushSave(wsID) })
		e.savers[id] = saver
	}
	saver.Trigger()
}

func (e *Engine) flushSave(id string) {
	e.mu.Lock()
	tree := e.pendingSaves[id]
	delete(e.pendingSaves, id)
	e.mu.Unlock()
	if tree != nil && e.records != nil {
		e.records.Save(id, tree)
	}
}

// surfaceEvents adapts the engine to dock.Listener. Notifications that
// arrive while a transaction is open are the engine's own echo and are
// dropped before any lock is taken.
type surfaceEvents struct {
	e *Engine
}

func (s surfaceEvents) LayoutChanged() {
	e := s.e
	if e.txn.active() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attached && e.active != "" {
		e.scheduleSaveLocked(e.active)
	}
}

func (s surfaceEvents) PanelAdded(id string) {
	e := s.e
	if e.txn.active() {
		return
	}
	k := panel.Kind(id)
	if !k.Valid() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return
	}
	// User-driven add (drag-in): fold it into the snapshot and the store.
	if h, ok := e.surface.Panel(id); ok {
		e.handles[k] = h
	}
	e.last[k] = true
	if e.active != "" {
		e.store.SyncPanels(e.active, map[panel.Kind]bool{k: true})
	}
}

func (s surfaceEvents) PanelRemoved(id string) {
	e := s.e
	if e.txn.active() {
		return
	}
	k := panel.Kind(id)
	if !k.Valid() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return
	}
	// User closed the panel: the store must reflect that or its toggle
	// button would stay lit.
	delete(e.handles, k)
	e.last[k] = false
	if e.active != "" {
		e.store.SyncPanels(e.active, map[panel.Kind]bool{k: false})
	}
}
