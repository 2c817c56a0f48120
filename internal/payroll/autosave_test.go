package payroll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/scardogs/justines-cargo-backoffice/testing"
)

// fakeClock captures scheduled flushes so tests fire them by hand.
type fakeClock struct {
	mu      sync.Mutex
	armed   []func()
	stopped int
}

func (c *fakeClock) schedule(_ time.Duration, fn func()) stopFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := len(c.armed)
	c.armed = append(c.armed, fn)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.armed[idx] == nil {
			return false
		}
		c.armed[idx] = nil
		c.stopped++
		return true
	}
}

// fireLast runs the newest still-armed flush, as the quiet window elapsing
// would.
func (c *fakeClock) fireLast() {
	c.mu.Lock()
	var fn func()
	for i := len(c.armed) - 1; i >= 0; i-- {
		if c.armed[i] != nil {
			fn = c.armed[i]
			c.armed[i] = nil
			break
		}
	}
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type savedCall struct {
	period Period
	rows   []DraftRow
}

func newTestAutosaver(save SaveFunc) (*Autosaver, *fakeClock) {
	clock := &fakeClock{}
	a := NewAutosaver(save, nil)
	a.schedule = clock.schedule
	return a, clock
}

func testPeriod() Period {
	return Period{Start: "2025-06-01", End: "2025-06-15"}
}

func TestAutosaverCoalescesRapidEdits(t *testing.T) {
	var calls []savedCall
	saver, clock := newTestAutosaver(func(_ context.Context, p Period, rows []DraftRow) error {
		calls = append(calls, savedCall{p, rows})
		return nil
	})
	period := testPeriod()

	saver.Enqueue(period, []DraftRow{{RowID: "e1", Kilo: "1"}})
	saver.Enqueue(period, []DraftRow{{RowID: "e1", Kilo: "12"}})
	saver.Enqueue(period, []DraftRow{{RowID: "e1", Kilo: "123"}})
	require.True(t, saver.HasPending(period))

	clock.fireLast()

	// Three edits inside the quiet window produce exactly one save, with
	// the newest rows.
	require.Len(t, calls, 1)
	require.Equal(t, "123", calls[0].rows[0].Kilo)
	require.Equal(t, 2, clock.stopped)
	require.False(t, saver.HasPending(period))
}

func TestAutosaverTracksPeriodsIndependently(t *testing.T) {
	var calls []savedCall
	saver, clock := newTestAutosaver(func(_ context.Context, p Period, rows []DraftRow) error {
		calls = append(calls, savedCall{p, rows})
		return nil
	})
	june := testPeriod()
	july := Period{Start: "2025-07-01", End: "2025-07-15"}

	saver.Enqueue(june, []DraftRow{{RowID: "e1"}})
	saver.Enqueue(july, []DraftRow{{RowID: "e2"}})
	require.True(t, saver.HasPending(june))
	require.True(t, saver.HasPending(july))

	clock.fireLast()
	require.Len(t, calls, 1)
	require.Equal(t, july.Key(), calls[0].period.Key())
	require.True(t, saver.HasPending(june), "june intent must survive july's flush")
}

func TestAutosaverStickyWarningUntilNextSuccess(t *testing.T) {
	fail := true
	saver, clock := newTestAutosaver(func(_ context.Context, _ Period, _ []DraftRow) error {
		if fail {
			return errors.New("connection refused")
		}
		return nil
	})
	period := testPeriod()
	rows := []DraftRow{{RowID: "e1", Kilo: "5"}}

	saver.Enqueue(period, rows)
	clock.fireLast()
	require.Contains(t, saver.Warning(period), "connection refused")

	// The warning persists across edits that have not saved yet.
	saver.Enqueue(period, rows)
	require.Contains(t, saver.Warning(period), "connection refused")

	fail = false
	clock.fireLast()
	require.Empty(t, saver.Warning(period))
}

func TestAutosaverUnsavedChangesGuard(t *testing.T) {
	saver, clock := newTestAutosaver(func(_ context.Context, _ Period, _ []DraftRow) error {
		return nil
	})
	period := testPeriod()
	rows := []DraftRow{{RowID: "e1", Kilo: "5", Rate: "2"}}

	// Nothing saved yet: everything counts as unsaved.
	require.True(t, saver.HasUnsavedChanges(period, rows))

	saver.Enqueue(period, rows)
	clock.fireLast()
	require.False(t, saver.HasUnsavedChanges(period, rows))

	// Same values re-entered compare equal; a real edit does not.
	reentered := []DraftRow{{RowID: "e1", Kilo: "5", Rate: "2"}}
	require.False(t, saver.HasUnsavedChanges(period, reentered))
	edited := []DraftRow{{RowID: "e1", Kilo: "6", Rate: "2"}}
	require.True(t, saver.HasUnsavedChanges(period, edited))
}

func TestAutosaverFlushNowCancelsPending(t *testing.T) {
	var calls int
	saver, clock := newTestAutosaver(func(_ context.Context, _ Period, _ []DraftRow) error {
		calls++
		return nil
	})
	period := testPeriod()
	rows := []DraftRow{{RowID: "e1"}}

	saver.Enqueue(period, rows)
	require.NoError(t, saver.FlushNow(context.Background(), period, rows))
	require.Equal(t, 1, calls)

	// The cancelled timer firing late must be a no-op.
	clock.fireLast()
	require.Equal(t, 1, calls)
}

func TestAutosaverMarkSavedSetsBaseline(t *testing.T) {
	saver, _ := newTestAutosaver(func(_ context.Context, _ Period, _ []DraftRow) error {
		return nil
	})
	period := testPeriod()
	rows := []DraftRow{{RowID: "e1", Kilo: "3"}}

	saver.MarkSaved(period, rows)
	require.False(t, saver.HasUnsavedChanges(period, rows))
}

func TestAutosaverResetDropsState(t *testing.T) {
	saver, clock := newTestAutosaver(func(_ context.Context, _ Period, _ []DraftRow) error {
		return errors.New("boom")
	})
	period := testPeriod()
	rows := []DraftRow{{RowID: "e1"}}

	saver.Enqueue(period, rows)
	clock.fireLast()
	require.NotEmpty(t, saver.Warning(period))

	saver.Enqueue(period, rows)
	saver.Reset(period)
	require.False(t, saver.HasPending(period))
	require.Empty(t, saver.Warning(period))
}
