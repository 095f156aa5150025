package hr

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
)

// =============================================================================
// DIRECTORY ENTITIES
// =============================================================================

type Department struct {
	ID        generic.ID  `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"size:100;not null" json:"name"`
	Code      string      `gorm:"size:20;not null;uniqueIndex" json:"code"`
	ManagerID *generic.ID `gorm:"index" json:"manager_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Department) TableName() string { return "departments" }

type Position struct {
	ID           generic.ID `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Description  string     `gorm:"size:500" json:"description"`
	DepartmentID generic.ID `gorm:"not null;index" json:"department_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (Position) TableName() string { return "positions" }

// Employee links a person to a department and a position. UserID is the
// optional login account of the person.
type Employee struct {
	ID               generic.ID      `gorm:"primaryKey" json:"id"`
	Code             string          `gorm:"size:32;not null;uniqueIndex" json:"employee_id"`
	FirstName        string          `gorm:"size:100;not null" json:"first_name"`
	LastName         string          `gorm:"size:100;not null" json:"last_name"`
	HireDate         time.Time       `json:"hire_date"`
	DepartmentID     generic.ID      `gorm:"not null;index" json:"department_id"`
	PositionID       generic.ID      `gorm:"not null;index" json:"position_id"`
	Salary           decimal.Decimal `gorm:"type:decimal(18,2)" json:"salary"`
	ContactNumber    string          `gorm:"size:50" json:"contact_number"`
	EmergencyContact string          `gorm:"size:100" json:"emergency_contact"`
	UserID           *generic.ID     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

// Attendance is one check-in event. CheckOut is nil until the employee
// checks out, and is set exactly once.
type Attendance struct {
	ID         generic.ID       `gorm:"primaryKey" json:"id"`
	EmployeeID generic.ID       `gorm:"not null;index:idx_attendance_employee_checkin" json:"employee_id"`
	CheckIn    time.Time        `gorm:"not null;index:idx_attendance_employee_checkin" json:"check_in"`
	CheckOut   *time.Time       `json:"check_out,omitempty"`
	Status     AttendanceStatus `gorm:"size:20;not null" json:"status"`
	Notes      string           `gorm:"size:500" json:"notes"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (Attendance) TableName() string { return "attendances" }

func (a Attendance) IsOpen() bool { return a.CheckOut == nil }

// =============================================================================
// LEAVE
// =============================================================================

type LeaveStatus string

const (
	LeavePending   LeaveStatus = "Pending"
	LeaveApproved  LeaveStatus = "Approved"
	LeaveRejected  LeaveStatus = "Rejected"
	LeaveCancelled LeaveStatus = "Cancelled"
)

// ParseLeaveStatus accepts the four declared states, case-insensitively.
func ParseLeaveStatus(s string) (LeaveStatus, error) {
	for _, st := range []LeaveStatus{LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", generic.Validation("status", "unknown leave status %q", s)
}

type LeaveType string

const (
	LeaveAnnual   LeaveType = "Annual"
	LeaveSick     LeaveType = "Sick"
	LeavePersonal LeaveType = "Personal"
	LeaveUnpaid   LeaveType = "Unpaid"
)

func ParseLeaveType(s string) (LeaveType, error) {
	for _, lt := range []LeaveType{LeaveAnnual, LeaveSick, LeavePersonal, LeaveUnpaid} {
		if strings.EqualFold(string(lt), strings.TrimSpace(s)) {
			return lt, nil
		}
	}
	return "", generic.Validation("leave_type", "unknown leave type %q", s)
}

type Leave struct {
	ID         generic.ID  `gorm:"primaryKey" json:"id"`
	EmployeeID generic.ID  `gorm:"not null;index" json:"employee_id"`
	StartDate  time.Time   `gorm:"not null" json:"start_date"`
	EndDate    time.Time   `gorm:"not null" json:"end_date"`
	Type       LeaveType   `gorm:"column:leave_type;size:20;not null" json:"leave_type"`
	Status     LeaveStatus `gorm:"size:20;not null;index" json:"status"`
	Reason     string      `gorm:"size:1000" json:"reason"`
	ApproverID *generic.ID `json:"approver_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Leave) TableName() string { return "leaves" }
