package finance

import (
	"context"

	"github.com/warp/erp-engine/generic"
)

// Store is the persistence surface of the finance services.
type Store interface {
	generic.Transactor

	// Directory lookups. EmployeeForUser returns NotFound when the login
	// account has no employee record.
	EmployeeForUser(ctx context.Context, userID generic.ID) (employeeID, departmentID generic.ID, err error)
	ManagedDepartmentIDs(ctx context.Context, employeeID generic.ID) ([]generic.ID, error)
	DepartmentExists(ctx context.Context, id generic.ID) (bool, error)

	// Expenses
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, id generic.ID) (*Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	// TransitionExpense sets status only while it still equals from.
	TransitionExpense(ctx context.Context, id generic.ID, from, to ExpenseStatus) error

	// Approval history is insert and read only.
	AppendApproval(ctx context.Context, a *ExpenseApproval) error
	ListApprovals(ctx context.Context, expenseID generic.ID) ([]ExpenseApproval, error)

	// Budgets
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id generic.ID) (*Budget, error)
	ListBudgets(ctx context.Context, departmentID generic.ID) ([]Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	// DeleteBudget removes the budget and clears the reference of every
	// expense that pointed at it.
	DeleteBudget(ctx context.Context, id generic.ID) error
}

// ExpenseFilter narrows ListExpenses; zero values mean "any". Results are
// ordered by expense date, newest first.
type ExpenseFilter struct {
	RequesterID   generic.ID
	DepartmentIDs []generic.ID
	Status        ExpenseStatus
}
