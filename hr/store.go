package hr

import (
	"context"
	"time"

	"github.com/warp/erp-engine/generic"
)

// Store is the persistence surface the HR services need.
// Get* methods return a generic NotFound error when the row does not exist.
type Store interface {
	generic.Transactor

	// Departments
	CreateDepartment(ctx context.Context, d *Department) error
	GetDepartment(ctx context.Context, id generic.ID) (*Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	UpdateDepartment(ctx context.Context, d *Department) error
	DeleteDepartment(ctx context.Context, id generic.ID) error
	DepartmentDependents(ctx context.Context, id generic.ID) ([]Dependent, error)
	DepartmentsManagedBy(ctx context.Context, managerID generic.ID) ([]Department, error)

	// Positions
	CreatePosition(ctx context.Context, p *Position) error
	GetPosition(ctx context.Context, id generic.ID) (*Position, error)
	ListPositions(ctx context.Context) ([]Position, error)
	DeletePosition(ctx context.Context, id generic.ID) error
	PositionDependents(ctx context.Context, id generic.ID) ([]Dependent, error)

	// Employees
	CreateEmployee(ctx context.Context, e *Employee) error
	GetEmployee(ctx context.Context, id generic.ID) (*Employee, error)
	// LockEmployee is GetEmployee holding a row lock until the transaction
	// ends, so per-employee read-then-write sequences serialise.
	LockEmployee(ctx context.Context, id generic.ID) (*Employee, error)
	EmployeeByUserID(ctx context.Context, userID generic.ID) (*Employee, error)
	ListEmployees(ctx context.Context, departmentID generic.ID) ([]Employee, error)
	UpdateEmployee(ctx context.Context, e *Employee) error
	// DeleteEmployee also removes the employee's attendance and leave rows.
	DeleteEmployee(ctx context.Context, id generic.ID) error
	EmployeeDependents(ctx context.Context, id generic.ID) ([]Dependent, error)

	// Attendance
	CreateAttendance(ctx context.Context, a *Attendance) error
	GetAttendance(ctx context.Context, id generic.ID) (*Attendance, error)
	// OpenAttendance returns the open row of the employee checked in within
	// [from, to), or nil when there is none.
	OpenAttendance(ctx context.Context, employeeID generic.ID, from, to time.Time) (*Attendance, error)
	// CloseAttendance sets check_out only while it is still NULL. It returns
	// a Conflict when the row was already closed.
	CloseAttendance(ctx context.Context, id generic.ID, at time.Time) error
	ListAttendance(ctx context.Context, employeeID generic.ID) ([]Attendance, error)

	// Leave
	CreateLeave(ctx context.Context, l *Leave) error
	GetLeave(ctx context.Context, id generic.ID) (*Leave, error)
	// TransitionLeave moves a leave from one status to another, recording the
	// approver and the new reason. Conflict when the row is no longer in from.
	TransitionLeave(ctx context.Context, id generic.ID, from, to LeaveStatus, approverID generic.ID, reason string) error
	ListLeaves(ctx context.Context, filter LeaveFilter) ([]Leave, error)
}

// Dependent counts the rows of one kind that still reference a record a
// delete would remove.
type Dependent struct {
	Entity string
	Count  int64
}

// LeaveFilter narrows ListLeaves. Zero values mean "any". Results are
// ordered by start date, newest first.
type LeaveFilter struct {
	EmployeeID    generic.ID
	DepartmentIDs []generic.ID
	Status        LeaveStatus
}
