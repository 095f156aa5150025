/*
attendance.go - Attendance Tracker

PURPOSE:
  Records daily check-in and check-out events per employee.

RULES:
  - At most one OPEN attendance row per employee per local calendar day.
    "Today" is the server clock's day, never the client's. Check-in locks the
    employee row first, so concurrent check-ins for one employee run one
    after the other and the second sees the first's open row.
  - A row is closed exactly once. The close is a conditional update so two
    concurrent check-outs cannot both succeed.
  - Every row is created as Present. Late and Absent exist as values but
    nothing assigns them.

SEE ALSO:
  - generic/time.go: Clock, DayRange
*/
package hr

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/generic"
)

type AttendanceTracker struct {
	Store Store
	Clock generic.Clock
	Log   zerolog.Logger
}

func NewAttendanceTracker(store Store, clock generic.Clock, log zerolog.Logger) *AttendanceTracker {
	return &AttendanceTracker{Store: store, Clock: clock, Log: log}
}

// CheckIn opens today's attendance row for the employee.
func (t *AttendanceTracker) CheckIn(ctx context.Context, employeeID generic.ID, notes string) (*Attendance, error) {
	var created *Attendance
	err := t.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := t.Store.LockEmployee(ctx, employeeID); err != nil {
			return err
		}

		now := t.Clock.Now()
		from, to := generic.DayRange(now)
		open, err := t.Store.OpenAttendance(ctx, employeeID, from, to)
		if err != nil {
			return err
		}
		if open != nil {
			return generic.Conflict("employee %d already checked in today (attendance %d)", employeeID, open.ID)
		}

		created = &Attendance{
			EmployeeID: employeeID,
			CheckIn:    now,
			Status:     AttendancePresent,
			Notes:      strings.TrimSpace(notes),
		}
		return t.Store.CreateAttendance(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	t.Log.Info().
		Int64("attendance_id", created.ID).
		Int64("employee_id", employeeID).
		Time("check_in", created.CheckIn).
		Msg("checked in")
	return created, nil
}

// CheckOut closes an open attendance row.
func (t *AttendanceTracker) CheckOut(ctx context.Context, attendanceID generic.ID) (*Attendance, error) {
	var closed *Attendance
	err := t.Store.WithTx(ctx, func(ctx context.Context) error {
		a, err := t.Store.GetAttendance(ctx, attendanceID)
		if err != nil {
			return err
		}
		if !a.IsOpen() {
			return generic.Conflict("attendance %d already checked out", attendanceID)
		}

		now := t.Clock.Now()
		if err := t.Store.CloseAttendance(ctx, attendanceID, now); err != nil {
			return err
		}
		a.CheckOut = &now
		closed = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.Log.Info().
		Int64("attendance_id", closed.ID).
		Int64("employee_id", closed.EmployeeID).
		Dur("worked", closed.CheckOut.Sub(closed.CheckIn)).
		Msg("checked out")
	return closed, nil
}

func (t *AttendanceTracker) Get(ctx context.Context, id generic.ID) (*Attendance, error) {
	return t.Store.GetAttendance(ctx, id)
}

// History lists the employee's attendance rows, newest check-in first.
func (t *AttendanceTracker) History(ctx context.Context, employeeID generic.ID) ([]Attendance, error) {
	if _, err := t.Store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return t.Store.ListAttendance(ctx, employeeID)
}
