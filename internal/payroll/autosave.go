package payroll

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// SaveFunc persists a full row set for a period.
type SaveFunc func(ctx context.Context, period Period, rows []DraftRow) error

// stopFunc cancels a scheduled flush; reports whether it was still pending.
type stopFunc func() bool

// scheduleFunc arms a one-shot timer. Injected so tests drive flushes
// without real timers.
type scheduleFunc func(d time.Duration, fn func()) stopFunc

// defaultQuiet is the trailing-edge debounce window: edits inside it
// coalesce into a single save.
const defaultQuiet = 1500 * time.Millisecond

type intent struct {
	period Period
	rows   []DraftRow
	stop   stopFunc
}

// Autosaver coalesces save intents per period and dispatches them after a
// quiet window. A failed save leaves a sticky warning for the period until
// the next successful one; the rows themselves are never touched.
type Autosaver struct {
	save     SaveFunc
	quiet    time.Duration
	timeout  time.Duration
	schedule scheduleFunc
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*intent
	saved   map[string]string
	warning map[string]string
}

// NewAutosaver constructs an Autosaver around save.
func NewAutosaver(save SaveFunc, logger *slog.Logger) *Autosaver {
	return &Autosaver{
		save:    save,
		quiet:   defaultQuiet,
		timeout: 10 * time.Second,
		schedule: func(d time.Duration, fn func()) stopFunc {
			return time.AfterFunc(d, fn).Stop
		},
		logger:  logger,
		pending: make(map[string]*intent),
		saved:   make(map[string]string),
		warning: make(map[string]string),
	}
}

// Enqueue records the latest row set for the period and (re)arms the quiet
// window. Rapid successive edits replace the pending intent, so only the
// newest row set is ever dispatched.
func (a *Autosaver) Enqueue(period Period, rows []DraftRow) {
	key := period.Key()
	copied := append([]DraftRow(nil), rows...)

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.pending[key]; ok && prev.stop != nil {
		prev.stop()
	}
	in := &intent{period: period, rows: copied}
	in.stop = a.schedule(a.quiet, func() { a.flush(key) })
	a.pending[key] = in
}

// FlushNow saves immediately, cancelling any pending intent for the period.
func (a *Autosaver) FlushNow(ctx context.Context, period Period, rows []DraftRow) error {
	key := period.Key()
	a.mu.Lock()
	if prev, ok := a.pending[key]; ok {
		if prev.stop != nil {
			prev.stop()
		}
		delete(a.pending, key)
	}
	a.mu.Unlock()

	return a.dispatch(ctx, period, rows)
}

// HasPending reports whether an intent is waiting out its quiet window.
func (a *Autosaver) HasPending(period Period) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[period.Key()]
	return ok
}

// HasUnsavedChanges compares the given rows (period stamped in) against the
// last successfully saved snapshot for that period.
func (a *Autosaver) HasUnsavedChanges(period Period, rows []DraftRow) bool {
	snap := snapshot(period, rows)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved[period.Key()] != snap
}

// Warning returns the sticky failure message for the period, empty when the
// last save succeeded.
func (a *Autosaver) Warning(period Period) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.warning[period.Key()]
}

// MarkSaved records rows as the saved baseline without dispatching, used
// when a persisted draft is loaded from the store.
func (a *Autosaver) MarkSaved(period Period, rows []DraftRow) {
	snap := snapshot(period, rows)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved[period.Key()] = snap
}

// Reset drops all autosave state for a period, used when its drafts are
// cleared.
func (a *Autosaver) Reset(period Period) {
	key := period.Key()
	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.pending[key]; ok {
		if prev.stop != nil {
			prev.stop()
		}
		delete(a.pending, key)
	}
	delete(a.saved, key)
	delete(a.warning, key)
}

func (a *Autosaver) flush(key string) {
	a.mu.Lock()
	in, ok := a.pending[key]
	if ok {
		delete(a.pending, key)
	}
	a.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	_ = a.dispatch(ctx, in.period, in.rows)
}

func (a *Autosaver) dispatch(ctx context.Context, period Period, rows []DraftRow) error {
	key := period.Key()
	err := a.save(ctx, period, rows)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.warning[key] = err.Error()
		if a.logger != nil {
			a.logger.Warn("autosave failed", slog.String("period", key), slog.Any("error", err))
		}
		return err
	}
	a.saved[key] = snapshot(period, rows)
	delete(a.warning, key)
	return nil
}

// snapshot builds the value-comparison key for the unsaved-changes guard.
func snapshot(period Period, rows []DraftRow) string {
	payload, err := json.Marshal(struct {
		Period Period     `json:"period"`
		Rows   []DraftRow `json:"rows"`
	}{period, rows})
	if err != nil {
		return ""
	}
	return string(payload)
}
