package hr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
)

// Directory manages departments, positions and employees.
type Directory struct {
	Store Store
	Log   zerolog.Logger
}

func NewDirectory(store Store, log zerolog.Logger) *Directory {
	return &Directory{Store: store, Log: log}
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

type DepartmentInput struct {
	Name      string
	Code      string
	ManagerID *generic.ID
}

func (in DepartmentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return generic.Validation("name", "department name is required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return generic.Validation("code", "department code is required")
	}
	return nil
}

func (d *Directory) CreateDepartment(ctx context.Context, in DepartmentInput) (*Department, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	dept := &Department{
		Name:      strings.TrimSpace(in.Name),
		Code:      strings.TrimSpace(in.Code),
		ManagerID: in.ManagerID,
	}
	err := d.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := d.checkManager(ctx, in.ManagerID); err != nil {
			return err
		}
		return d.Store.CreateDepartment(ctx, dept)
	})
	if err != nil {
		return nil, err
	}
	d.Log.Info().Int64("department_id", dept.ID).Str("code", dept.Code).Msg("department created")
	return dept, nil
}

func (d *Directory) Department(ctx context.Context, id generic.ID) (*Department, error) {
	return d.Store.GetDepartment(ctx, id)
}

func (d *Directory) Departments(ctx context.Context) ([]Department, error) {
	return d.Store.ListDepartments(ctx)
}

// UpdateDepartment overwrites name, code and manager.
func (d *Directory) UpdateDepartment(ctx context.Context, id generic.ID, in DepartmentInput) (*Department, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var dept *Department
	err := d.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if dept, err = d.Store.GetDepartment(ctx, id); err != nil {
			return err
		}
		if err := d.checkManager(ctx, in.ManagerID); err != nil {
			return err
		}
		dept.Name = strings.TrimSpace(in.Name)
		dept.Code = strings.TrimSpace(in.Code)
		dept.ManagerID = in.ManagerID
		return d.Store.UpdateDepartment(ctx, dept)
	})
	if err != nil {
		return nil, err
	}
	return dept, nil
}

// DeleteDepartment refuses while employees, positions, budgets or expenses
// still belong to the department.
func (d *Directory) DeleteDepartment(ctx context.Context, id generic.ID) error {
	return d.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := d.Store.GetDepartment(ctx, id); err != nil {
			return err
		}
		deps, err := d.Store.DepartmentDependents(ctx, id)
		if err != nil {
			return err
		}
		if err := stillReferenced("department", id, deps); err != nil {
			return err
		}
		return d.Store.DeleteDepartment(ctx, id)
	})
}

func (d *Directory) EmployeesInDepartment(ctx context.Context, departmentID generic.ID) ([]Employee, error) {
	if _, err := d.Store.GetDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	return d.Store.ListEmployees(ctx, departmentID)
}

func (d *Directory) checkManager(ctx context.Context, managerID *generic.ID) error {
	if managerID == nil {
		return nil
	}
	_, err := d.Store.GetEmployee(ctx, *managerID)
	return err
}

// =============================================================================
// POSITIONS
// =============================================================================

type PositionInput struct {
	Title        string
	Description  string
	DepartmentID generic.ID
}

func (d *Directory) CreatePosition(ctx context.Context, in PositionInput) (*Position, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, generic.Validation("title", "position title is required")
	}
	pos := &Position{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		DepartmentID: in.DepartmentID,
	}
	err := d.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := d.Store.GetDepartment(ctx, in.DepartmentID); err != nil {
			return err
		}
		return d.Store.CreatePosition(ctx, pos)
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func (d *Directory) Positions(ctx context.Context) ([]Position, error) {
	return d.Store.ListPositions(ctx)
}

// DeletePosition refuses while any employee holds the position.
func (d *Directory) DeletePosition(ctx context.Context, id generic.ID) error {
	return d.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := d.Store.GetPosition(ctx, id); err != nil {
			return err
		}
		deps, err := d.Store.PositionDependents(ctx, id)
		if err != nil {
			return err
		}
		if err := stillReferenced("position", id, deps); err != nil {
			return err
		}
		return d.Store.DeletePosition(ctx, id)
	})
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeInput struct {
	Code             string
	FirstName        string
	LastName         string
	HireDate         time.Time
	DepartmentID     generic.ID
	PositionID       generic.ID
	Salary           decimal.Decimal
	ContactNumber    string
	EmergencyContact string
	UserID           *generic.ID
}

func (in EmployeeInput) validate() error {
	switch {
	case strings.TrimSpace(in.Code) == "":
		return generic.Validation("employee_id", "employee id is required")
	case strings.TrimSpace(in.FirstName) == "":
		return generic.Validation("first_name", "first name is required")
	case strings.TrimSpace(in.LastName) == "":
		return generic.Validation("last_name", "last name is required")
	case in.Salary.IsNegative():
		return generic.Validation("salary", "salary cannot be negative")
	}
	return nil
}

func (in EmployeeInput) apply(e *Employee) {
	e.Code = strings.TrimSpace(in.Code)
	e.FirstName = strings.TrimSpace(in.FirstName)
	e.LastName = strings.TrimSpace(in.LastName)
	e.HireDate = in.HireDate
	e.DepartmentID = in.DepartmentID
	e.PositionID = in.PositionID
	e.Salary = in.Salary
	e.ContactNumber = in.ContactNumber
	e.EmergencyContact = in.EmergencyContact
	e.UserID = in.UserID
}

// CreateEmployee requires the department and the position to exist.
func (d *Directory) CreateEmployee(ctx context.Context, in EmployeeInput) (*Employee, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	emp := &Employee{}
	in.apply(emp)
	err := d.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := d.checkPlacement(ctx, in.DepartmentID, in.PositionID); err != nil {
			return err
		}
		return d.Store.CreateEmployee(ctx, emp)
	})
	if err != nil {
		return nil, err
	}
	d.Log.Info().Int64("employee_id", emp.ID).Str("code", emp.Code).Msg("employee created")
	return emp, nil
}

func (d *Directory) Employee(ctx context.Context, id generic.ID) (*Employee, error) {
	return d.Store.GetEmployee(ctx, id)
}

// EmployeeForUser resolves the employee record linked to a login account.
func (d *Directory) EmployeeForUser(ctx context.Context, userID generic.ID) (*Employee, error) {
	return d.Store.EmployeeByUserID(ctx, userID)
}

func (d *Directory) Employees(ctx context.Context) ([]Employee, error) {
	return d.Store.ListEmployees(ctx, 0)
}

func (d *Directory) UpdateEmployee(ctx context.Context, id generic.ID, in EmployeeInput) (*Employee, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var emp *Employee
	err := d.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if emp, err = d.Store.GetEmployee(ctx, id); err != nil {
			return err
		}
		if err := d.checkPlacement(ctx, in.DepartmentID, in.PositionID); err != nil {
			return err
		}
		in.apply(emp)
		return d.Store.UpdateEmployee(ctx, emp)
	})
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// DeleteEmployee removes the employee with its own attendance and leave
// history. It refuses while the employee manages a department, has decided a
// leave, or appears on an expense as requester or approver.
func (d *Directory) DeleteEmployee(ctx context.Context, id generic.ID) error {
	err := d.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := d.Store.GetEmployee(ctx, id); err != nil {
			return err
		}
		deps, err := d.Store.EmployeeDependents(ctx, id)
		if err != nil {
			return err
		}
		if err := stillReferenced("employee", id, deps); err != nil {
			return err
		}
		return d.Store.DeleteEmployee(ctx, id)
	})
	if err != nil {
		return err
	}
	d.Log.Info().Int64("employee_id", id).Msg("employee deleted")
	return nil
}

func (d *Directory) checkPlacement(ctx context.Context, departmentID, positionID generic.ID) error {
	if _, err := d.Store.GetDepartment(ctx, departmentID); err != nil {
		return err
	}
	_, err := d.Store.GetPosition(ctx, positionID)
	return err
}

func stillReferenced(entity string, id generic.ID, deps []Dependent) error {
	if len(deps) == 0 {
		return nil
	}
	parts := make([]string, len(deps))
	for i, dep := range deps {
		parts[i] = fmt.Sprintf("%d %s", dep.Count, dep.Entity)
	}
	return generic.Conflict("%s %d is still referenced by %s", entity, id, strings.Join(parts, ", "))
}
