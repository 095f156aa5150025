package hr_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/store/rdb"
	"github.com/warp/erp-engine/store/rdb/rdbtest"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	store *rdb.Store
	clock *generic.ManualClock
	emp   *hr.Employee
	dept  *hr.Department
}

func newFixture(t *testing.T) fixture {
	store := rdbtest.New(t)
	dept := rdbtest.Department(t, store, "ENG")
	emp := rdbtest.Employee(t, store, "E001", dept.ID, 0)
	return fixture{store: store, clock: rdbtest.Clock(), emp: emp, dept: dept}
}

func (f fixture) tracker() *hr.AttendanceTracker {
	return hr.NewAttendanceTracker(f.store, f.clock, zerolog.Nop())
}

// =============================================================================
// CHECK-IN
// =============================================================================

func TestCheckIn_CreatesPresentRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.tracker().CheckIn(ctx, f.emp.ID, "  on site ")
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Equal(t, hr.AttendancePresent, a.Status)
	assert.True(t, a.CheckIn.Equal(rdbtest.Epoch))
	assert.Nil(t, a.CheckOut)
	assert.Equal(t, "on site", a.Notes)
}

func TestCheckIn_SecondSameDay_Conflict(t *testing.T) {
	// GIVEN: Employee checked in at 09:00 and never checked out
	// WHEN: Checking in again at 13:00 the same day
	// THEN: Conflict
	f := newFixture(t)
	ctx := context.Background()
	tracker := f.tracker()

	_, err := tracker.CheckIn(ctx, f.emp.ID, "")
	require.NoError(t, err)

	f.clock.Advance(4 * time.Hour)
	_, err = tracker.CheckIn(ctx, f.emp.ID, "")
	assert.ErrorIs(t, err, generic.ErrConflict)
}

func TestCheckIn_AfterCheckOutSameDay_Allowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tracker := f.tracker()

	first, err := tracker.CheckIn(ctx, f.emp.ID, "morning")
	require.NoError(t, err)
	f.clock.Advance(3 * time.Hour)
	_, err = tracker.CheckOut(ctx, first.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := tracker.CheckIn(ctx, f.emp.ID, "afternoon")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCheckIn_NextDay_Allowed(t *testing.T) {
	// GIVEN: An open row left over from yesterday
	// WHEN: Checking in today
	// THEN: Allowed, the uniqueness is per calendar day
	f := newFixture(t)
	ctx := context.Background()
	tracker := f.tracker()

	_, err := tracker.CheckIn(ctx, f.emp.ID, "")
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = tracker.CheckIn(ctx, f.emp.ID, "")
	assert.NoError(t, err)
}

func TestCheckIn_Concurrent_OneOpenRow(t *testing.T) {
	// GIVEN: Several check-ins for the same employee at the same instant
	// WHEN: They run concurrently
	// THEN: Exactly one succeeds, the others Conflict, one row exists
	f := newFixture(t)
	ctx := context.Background()
	tracker := f.tracker()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = tracker.CheckIn(ctx, f.emp.ID, "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, generic.ErrConflict)
	}
	assert.Equal(t, 1, ok)

	rows, err := tracker.History(ctx, f.emp.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCheckIn_UnknownEmployee_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker().CheckIn(context.Background(), 9999, "")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// CHECK-OUT
// =============================================================================

func TestCheckOut_SetsCheckOutOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tracker := f.tracker()

	a, err := tracker.CheckIn(ctx, f.emp.ID, "")
	require.NoError(t, err)

	f.clock.Advance(8 * time.Hour)
	closed, err := tracker.CheckOut(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOut)
	assert.True(t, closed.CheckOut.Equal(rdbtest.Epoch.Add(8*time.Hour)))

	// second checkout on the same row
	f.clock.Advance(time.Hour)
	_, err = tracker.CheckOut(ctx, a.ID)
	assert.ErrorIs(t, err, generic.ErrConflict)

	stored, err := f.store.GetAttendance(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CheckOut)
	assert.True(t, stored.CheckOut.Equal(rdbtest.Epoch.Add(8*time.Hour)), "first checkout must be kept")
}

func TestCheckOut_WithoutCheckIn_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker().CheckOut(context.Background(), 42)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestHistory_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tracker := f.tracker()

	for i := 0; i < 3; i++ {
		a, err := tracker.CheckIn(ctx, f.emp.ID, "")
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
		_, err = tracker.CheckOut(ctx, a.ID)
		require.NoError(t, err)
		f.clock.Advance(23 * time.Hour)
	}

	rows, err := tracker.History(ctx, f.emp.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].CheckIn.After(rows[1].CheckIn))
	assert.True(t, rows[1].CheckIn.After(rows[2].CheckIn))
}
