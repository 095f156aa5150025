package rdb

import (
	"context"
	"errors"
	"time"

	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (s *Store) CreateDepartment(ctx context.Context, d *hr.Department) error {
	return translate(s.conn(ctx).Create(d).Error, "department", d.Code)
}

func (s *Store) GetDepartment(ctx context.Context, id generic.ID) (*hr.Department, error) {
	var d hr.Department
	if err := s.conn(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err, "department", id)
	}
	return &d, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]hr.Department, error) {
	var out []hr.Department
	err := s.conn(ctx).Order("name").Find(&out).Error
	return out, translate(err, "department", "list")
}

func (s *Store) UpdateDepartment(ctx context.Context, d *hr.Department) error {
	return translate(s.conn(ctx).Save(d).Error, "department", d.ID)
}

func (s *Store) DeleteDepartment(ctx context.Context, id generic.ID) error {
	res := s.conn(ctx).Delete(&hr.Department{}, id)
	if res.Error != nil {
		return translate(res.Error, "department", id)
	}
	if res.RowsAffected == 0 {
		return generic.NotFound("department", id)
	}
	return nil
}

// DepartmentDependents counts the employees, positions, budgets and expenses
// that still point at the department.
func (s *Store) DepartmentDependents(ctx context.Context, id generic.ID) ([]hr.Dependent, error) {
	return s.dependents(ctx, id, []reference{
		{"employees", &hr.Employee{}, "department_id"},
		{"positions", &hr.Position{}, "department_id"},
		{"budgets", &finance.Budget{}, "department_id"},
		{"expenses", &finance.Expense{}, "department_id"},
	})
}

func (s *Store) DepartmentsManagedBy(ctx context.Context, managerID generic.ID) ([]hr.Department, error) {
	var out []hr.Department
	err := s.conn(ctx).Where("manager_id = ?", managerID).Order("id").Find(&out).Error
	return out, translate(err, "department", managerID)
}

// =============================================================================
// POSITIONS
// =============================================================================

func (s *Store) CreatePosition(ctx context.Context, p *hr.Position) error {
	return translate(s.conn(ctx).Create(p).Error, "position", p.Title)
}

func (s *Store) GetPosition(ctx context.Context, id generic.ID) (*hr.Position, error) {
	var p hr.Position
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, "position", id)
	}
	return &p, nil
}

func (s *Store) ListPositions(ctx context.Context) ([]hr.Position, error) {
	var out []hr.Position
	err := s.conn(ctx).Order("title").Find(&out).Error
	return out, translate(err, "position", "list")
}

func (s *Store) PositionDependents(ctx context.Context, id generic.ID) ([]hr.Dependent, error) {
	return s.dependents(ctx, id, []reference{
		{"employees", &hr.Employee{}, "position_id"},
	})
}

func (s *Store) DeletePosition(ctx context.Context, id generic.ID) error {
	res := s.conn(ctx).Delete(&hr.Position{}, id)
	if res.Error != nil {
		return translate(res.Error, "position", id)
	}
	if res.RowsAffected == 0 {
		return generic.NotFound("position", id)
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) CreateEmployee(ctx context.Context, e *hr.Employee) error {
	return translate(s.conn(ctx).Create(e).Error, "employee", e.Code)
}

func (s *Store) GetEmployee(ctx context.Context, id generic.ID) (*hr.Employee, error) {
	var e hr.Employee
	if err := s.conn(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err, "employee", id)
	}
	return &e, nil
}

// LockEmployee reads the employee with SELECT ... FOR UPDATE, holding the row
// until the surrounding transaction ends.
func (s *Store) LockEmployee(ctx context.Context, id generic.ID) (*hr.Employee, error) {
	var e hr.Employee
	if err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, id).Error; err != nil {
		return nil, translate(err, "employee", id)
	}
	return &e, nil
}

func (s *Store) EmployeeByUserID(ctx context.Context, userID generic.ID) (*hr.Employee, error) {
	var e hr.Employee
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, generic.NotFound("employee for user", userID)
		}
		return nil, translate(err, "employee", userID)
	}
	return &e, nil
}

// ListEmployees returns every employee, or those of one department when
// departmentID is non-zero.
func (s *Store) ListEmployees(ctx context.Context, departmentID generic.ID) ([]hr.Employee, error) {
	q := s.conn(ctx).Order("last_name, first_name, id")
	if departmentID != 0 {
		q = q.Where("department_id = ?", departmentID)
	}
	var out []hr.Employee
	err := q.Find(&out).Error
	return out, translate(err, "employee", "list")
}

func (s *Store) UpdateEmployee(ctx context.Context, e *hr.Employee) error {
	return translate(s.conn(ctx).Save(e).Error, "employee", e.ID)
}

// EmployeeDependents counts the rows outside the employee's own history that
// still point at it: managed departments, decided leaves, expenses and
// expense approvals.
func (s *Store) EmployeeDependents(ctx context.Context, id generic.ID) ([]hr.Dependent, error) {
	return s.dependents(ctx, id, []reference{
		{"managed departments", &hr.Department{}, "manager_id"},
		{"decided leaves", &hr.Leave{}, "approver_id"},
		{"expenses", &finance.Expense{}, "requester_id"},
		{"expense approvals", &finance.ExpenseApproval{}, "approver_id"},
	})
}

// DeleteEmployee removes the employee together with its attendance and leave
// rows.
func (s *Store) DeleteEmployee(ctx context.Context, id generic.ID) error {
	return s.WithTx(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)
		if err := db.Where("employee_id = ?", id).Delete(&hr.Attendance{}).Error; err != nil {
			return translate(err, "attendance", id)
		}
		if err := db.Where("employee_id = ?", id).Delete(&hr.Leave{}).Error; err != nil {
			return translate(err, "leave", id)
		}
		res := db.Delete(&hr.Employee{}, id)
		if res.Error != nil {
			return translate(res.Error, "employee", id)
		}
		if res.RowsAffected == 0 {
			return generic.NotFound("employee", id)
		}
		return nil
	})
}

// reference is one column that points at a parent row.
type reference struct {
	entity string
	model  any
	column string
}

// dependents returns the non-zero counts of rows whose column equals id.
func (s *Store) dependents(ctx context.Context, id generic.ID, refs []reference) ([]hr.Dependent, error) {
	var out []hr.Dependent
	for _, ref := range refs {
		var n int64
		if err := s.conn(ctx).Model(ref.model).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
			return nil, translate(err, ref.entity, id)
		}
		if n > 0 {
			out = append(out, hr.Dependent{Entity: ref.entity, Count: n})
		}
	}
	return out, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) CreateAttendance(ctx context.Context, a *hr.Attendance) error {
	a.CheckIn = a.CheckIn.UTC()
	return translate(s.conn(ctx).Create(a).Error, "attendance", a.EmployeeID)
}

func (s *Store) GetAttendance(ctx context.Context, id generic.ID) (*hr.Attendance, error) {
	var a hr.Attendance
	if err := s.conn(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, "attendance", id)
	}
	return &a, nil
}

func (s *Store) OpenAttendance(ctx context.Context, employeeID generic.ID, from, to time.Time) (*hr.Attendance, error) {
	var a hr.Attendance
	err := s.conn(ctx).
		Where("employee_id = ? AND check_out IS NULL AND check_in >= ? AND check_in < ?", employeeID, from.UTC(), to.UTC()).
		Order("check_in DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "attendance", employeeID)
	}
	return &a, nil
}

func (s *Store) CloseAttendance(ctx context.Context, id generic.ID, at time.Time) error {
	res := s.conn(ctx).Model(&hr.Attendance{}).
		Where("id = ? AND check_out IS NULL", id).
		Update("check_out", at.UTC())
	return s.affected(ctx, res, &hr.Attendance{}, "attendance", id, "already checked out")
}

func (s *Store) ListAttendance(ctx context.Context, employeeID generic.ID) ([]hr.Attendance, error) {
	var out []hr.Attendance
	err := s.conn(ctx).Where("employee_id = ?", employeeID).Order("check_in DESC, id DESC").Find(&out).Error
	return out, translate(err, "attendance", employeeID)
}

// =============================================================================
// LEAVE
// =============================================================================

func (s *Store) CreateLeave(ctx context.Context, l *hr.Leave) error {
	return translate(s.conn(ctx).Create(l).Error, "leave", l.EmployeeID)
}

func (s *Store) GetLeave(ctx context.Context, id generic.ID) (*hr.Leave, error) {
	var l hr.Leave
	if err := s.conn(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err, "leave", id)
	}
	return &l, nil
}

func (s *Store) TransitionLeave(ctx context.Context, id generic.ID, from, to hr.LeaveStatus, approverID generic.ID, reason string) error {
	res := s.conn(ctx).Model(&hr.Leave{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":      to,
			"approver_id": approverID,
			"reason":      reason,
		})
	return s.affected(ctx, res, &hr.Leave{}, "leave", id, "is no longer "+string(from))
}

func (s *Store) ListLeaves(ctx context.Context, filter hr.LeaveFilter) ([]hr.Leave, error) {
	q := s.conn(ctx).Model(&hr.Leave{}).Select("leaves.*")
	if filter.EmployeeID != 0 {
		q = q.Where("leaves.employee_id = ?", filter.EmployeeID)
	}
	if len(filter.DepartmentIDs) > 0 {
		q = q.Joins("JOIN employees ON employees.id = leaves.employee_id").
			Where("employees.department_id IN ?", filter.DepartmentIDs)
	}
	if filter.Status != "" {
		q = q.Where("leaves.status = ?", filter.Status)
	}
	var out []hr.Leave
	err := q.Order("leaves.start_date DESC, leaves.id DESC").Find(&out).Error
	return out, translate(err, "leave", "list")
}
