package rdb

import (
	"context"
	"errors"

	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"gorm.io/gorm"
)

// =============================================================================
// DIRECTORY LOOKUPS
// =============================================================================

func (s *Store) EmployeeForUser(ctx context.Context, userID generic.ID) (employeeID, departmentID generic.ID, err error) {
	var e hr.Employee
	err = s.conn(ctx).Select("id", "department_id").Where("user_id = ?", userID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, generic.NotFound("employee for user", userID)
	}
	if err != nil {
		return 0, 0, translate(err, "employee", userID)
	}
	return e.ID, e.DepartmentID, nil
}

func (s *Store) ManagedDepartmentIDs(ctx context.Context, employeeID generic.ID) ([]generic.ID, error) {
	var ids []generic.ID
	err := s.conn(ctx).Model(&hr.Department{}).Where("manager_id = ?", employeeID).Order("id").Pluck("id", &ids).Error
	return ids, translate(err, "department", employeeID)
}

func (s *Store) DepartmentExists(ctx context.Context, id generic.ID) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&hr.Department{}).Where("id = ?", id).Count(&n).Error
	return n > 0, translate(err, "department", id)
}

// =============================================================================
// EXPENSES
// =============================================================================

func (s *Store) CreateExpense(ctx context.Context, e *finance.Expense) error {
	return translate(s.conn(ctx).Create(e).Error, "expense", e.RequesterID)
}

func (s *Store) GetExpense(ctx context.Context, id generic.ID) (*finance.Expense, error) {
	var e finance.Expense
	if err := s.conn(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err, "expense", id)
	}
	return &e, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	q := s.conn(ctx)
	if filter.RequesterID != 0 {
		q = q.Where("requester_id = ?", filter.RequesterID)
	}
	if len(filter.DepartmentIDs) > 0 {
		q = q.Where("department_id IN ?", filter.DepartmentIDs)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var out []finance.Expense
	err := q.Order("expense_date DESC, id DESC").Find(&out).Error
	return out, translate(err, "expense", "list")
}

func (s *Store) TransitionExpense(ctx context.Context, id generic.ID, from, to finance.ExpenseStatus) error {
	res := s.conn(ctx).Model(&finance.Expense{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return s.affected(ctx, res, &finance.Expense{}, "expense", id, "is no longer "+string(from))
}

func (s *Store) AppendApproval(ctx context.Context, a *finance.ExpenseApproval) error {
	return translate(s.conn(ctx).Create(a).Error, "expense approval", a.ExpenseID)
}

func (s *Store) ListApprovals(ctx context.Context, expenseID generic.ID) ([]finance.ExpenseApproval, error) {
	var out []finance.ExpenseApproval
	err := s.conn(ctx).Where("expense_id = ?", expenseID).Order("approval_date, id").Find(&out).Error
	return out, translate(err, "expense approval", expenseID)
}

// =============================================================================
// BUDGETS
// =============================================================================

func (s *Store) CreateBudget(ctx context.Context, b *finance.Budget) error {
	return translate(s.conn(ctx).Create(b).Error, "budget", b.DepartmentID)
}

func (s *Store) GetBudget(ctx context.Context, id generic.ID) (*finance.Budget, error) {
	var b finance.Budget
	if err := s.conn(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err, "budget", id)
	}
	return &b, nil
}

func (s *Store) ListBudgets(ctx context.Context, departmentID generic.ID) ([]finance.Budget, error) {
	q := s.conn(ctx)
	if departmentID != 0 {
		q = q.Where("department_id = ?", departmentID)
	}
	var out []finance.Budget
	err := q.Order("start_date DESC, id").Find(&out).Error
	return out, translate(err, "budget", "list")
}

func (s *Store) UpdateBudget(ctx context.Context, b *finance.Budget) error {
	return translate(s.conn(ctx).Save(b).Error, "budget", b.ID)
}

func (s *Store) DeleteBudget(ctx context.Context, id generic.ID) error {
	return s.WithTx(ctx, func(ctx context.Context) error {
		err := s.conn(ctx).Model(&finance.Expense{}).
			Where("budget_id = ?", id).
			Update("budget_id", nil).Error
		if err != nil {
			return translate(err, "expense", id)
		}
		res := s.conn(ctx).Delete(&finance.Budget{}, id)
		if res.Error != nil {
			return translate(res.Error, "budget", id)
		}
		if res.RowsAffected == 0 {
			return generic.NotFound("budget", id)
		}
		return nil
	})
}
