// Package rdbtest provides throwaway databases and fixtures for tests.
package rdbtest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/store/rdb"
)

// New returns a migrated in-memory store that is closed with the test.
func New(t testing.TB) *rdb.Store {
	t.Helper()
	s, err := rdb.OpenMemory(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Monday, 10 March 2025, 09:00 UTC.
var Epoch = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// Clock returns a manual clock pinned to Epoch.
func Clock() *generic.ManualClock {
	return generic.NewManualClock(Epoch)
}

// Department inserts a department with the given code.
func Department(t testing.TB, s *rdb.Store, code string) *hr.Department {
	t.Helper()
	d := &hr.Department{Name: code + " department", Code: code}
	require.NoError(t, s.CreateDepartment(context.Background(), d))
	return d
}

// Employee inserts an employee in the department, creating a position for it.
// userID links the employee to a login account when non-zero.
func Employee(t testing.TB, s *rdb.Store, code string, departmentID, userID generic.ID) *hr.Employee {
	t.Helper()
	ctx := context.Background()
	pos := &hr.Position{Title: "Staff", DepartmentID: departmentID}
	require.NoError(t, s.CreatePosition(ctx, pos))

	e := &hr.Employee{
		Code:         code,
		FirstName:    code,
		LastName:     "Test",
		HireDate:     Epoch.AddDate(-1, 0, 0),
		DepartmentID: departmentID,
		PositionID:   pos.ID,
		Salary:       decimal.NewFromInt(50000),
	}
	if userID != 0 {
		e.UserID = &userID
	}
	require.NoError(t, s.CreateEmployee(ctx, e))
	return e
}

// Manage makes employeeID the manager of the department.
func Manage(t testing.TB, s *rdb.Store, d *hr.Department, employeeID generic.ID) {
	t.Helper()
	d.ManagerID = &employeeID
	require.NoError(t, s.UpdateDepartment(context.Background(), d))
}
