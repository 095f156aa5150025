/*
expense.go - Expense Workflow

STATE MACHINE:
  Pending --decide(Approved)--> Approved
  Pending --decide(Rejected)--> Rejected

  Both outcomes are terminal. Deciding twice is a Conflict.

VISIBILITY:
  Admin, FinanceManager   every Pending expense
  DepartmentManager       Pending expenses of the departments they manage
  anyone else             Authorization error

  A department manager who manages nothing sees an empty list, the same
  answer the leave workflow gives.

WHO MAY DECIDE:
  Admin and FinanceManager decide any expense. A DepartmentManager without
  either of those roles decides only within the departments they manage.
*/
package finance

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/metrics"
)

type ExpenseWorkflow struct {
	Store Store
	Clock generic.Clock
	Log   zerolog.Logger
}

func NewExpenseWorkflow(store Store, clock generic.Clock, log zerolog.Logger) *ExpenseWorkflow {
	return &ExpenseWorkflow{Store: store, Clock: clock, Log: log}
}

// ExpenseInput is what the caller may choose. Requester, date and status are
// always set by the workflow.
type ExpenseInput struct {
	Description  string
	Amount       decimal.Decimal
	Category     string
	DepartmentID generic.ID // zero: the requester's department
	BudgetID     *generic.ID
}

// Create raises a Pending expense on behalf of the actor's employee record.
func (w *ExpenseWorkflow) Create(ctx context.Context, actor generic.Actor, in ExpenseInput) (*Expense, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, generic.Validation("description", "description is required")
	}
	if !in.Amount.IsPositive() {
		return nil, generic.Validation("amount", "amount must be greater than zero")
	}

	var exp *Expense
	err := w.Store.WithTx(ctx, func(ctx context.Context) error {
		requesterID, deptID, err := w.employeeOf(ctx, actor)
		if err != nil {
			return err
		}
		if in.DepartmentID != 0 && in.DepartmentID != deptID {
			ok, err := w.Store.DepartmentExists(ctx, in.DepartmentID)
			if err != nil {
				return err
			}
			if !ok {
				return generic.NotFound("department", in.DepartmentID)
			}
			deptID = in.DepartmentID
		}
		if in.BudgetID != nil {
			if _, err := w.Store.GetBudget(ctx, *in.BudgetID); err != nil {
				return err
			}
		}

		exp = &Expense{
			DepartmentID: deptID,
			RequesterID:  requesterID,
			Description:  strings.TrimSpace(in.Description),
			Amount:       in.Amount,
			ExpenseDate:  w.Clock.Now(),
			Status:       ExpensePending,
			Category:     strings.TrimSpace(in.Category),
			BudgetID:     in.BudgetID,
		}
		return w.Store.CreateExpense(ctx, exp)
	})
	if err != nil {
		return nil, err
	}

	w.Log.Info().
		Int64("expense_id", exp.ID).
		Int64("requester_id", exp.RequesterID).
		Str("amount", exp.Amount.StringFixed(2)).
		Str("actor", actor.String()).
		Msg("expense created")
	return exp, nil
}

// Decide records the actor's decision on a Pending expense and updates its
// status in the same unit of work.
func (w *ExpenseWorkflow) Decide(ctx context.Context, actor generic.Actor, expenseID generic.ID, decision generic.Decision, comments string) (*Expense, error) {
	if !actor.Has(generic.RoleAdmin, generic.RoleFinanceManager, generic.RoleDepartmentManager) {
		return nil, generic.Forbidden("%s may not decide expenses", actor)
	}
	decision, err := generic.ParseDecision(string(decision))
	if err != nil {
		return nil, err
	}
	to := ExpenseStatus(decision)

	var exp *Expense
	err = w.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if exp, err = w.Store.GetExpense(ctx, expenseID); err != nil {
			return err
		}
		approverID, _, err := w.employeeOf(ctx, actor)
		if err != nil {
			return err
		}
		if !actor.Has(generic.RoleAdmin, generic.RoleFinanceManager) {
			managed, err := w.Store.ManagedDepartmentIDs(ctx, approverID)
			if err != nil {
				return err
			}
			if !slices.Contains(managed, exp.DepartmentID) {
				return generic.Forbidden("%s does not manage department %d", actor, exp.DepartmentID)
			}
		}
		if exp.Status != ExpensePending {
			return generic.Conflict("expense %d is already %s", expenseID, exp.Status)
		}

		if err := w.Store.TransitionExpense(ctx, expenseID, ExpensePending, to); err != nil {
			return err
		}
		approval := &ExpenseApproval{
			ExpenseID:    expenseID,
			ApproverID:   approverID,
			ApprovalDate: w.Clock.Now(),
			Status:       to,
			Comments:     strings.TrimSpace(comments),
		}
		if err := w.Store.AppendApproval(ctx, approval); err != nil {
			return err
		}

		exp.Status = to
		exp.Approvals, err = w.Store.ListApprovals(ctx, expenseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	generic.AfterCommit(ctx, func() { metrics.RecordTransition("expense", string(to)) })
	w.Log.Info().
		Str("entity", "expense").
		Int64("id", expenseID).
		Str("from", string(ExpensePending)).
		Str("to", string(to)).
		Str("actor", actor.String()).
		Msg("workflow transition")
	return exp, nil
}

// PendingFor lists the Pending expenses the actor is allowed to decide.
func (w *ExpenseWorkflow) PendingFor(ctx context.Context, actor generic.Actor) ([]Expense, error) {
	if actor.Has(generic.RoleAdmin, generic.RoleFinanceManager) {
		return w.Store.ListExpenses(ctx, ExpenseFilter{Status: ExpensePending})
	}
	if !actor.Has(generic.RoleDepartmentManager) {
		return nil, generic.Forbidden("%s may not review expenses", actor)
	}

	employeeID, _, err := w.employeeOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	managed, err := w.Store.ManagedDepartmentIDs(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if len(managed) == 0 {
		return []Expense{}, nil
	}
	return w.Store.ListExpenses(ctx, ExpenseFilter{DepartmentIDs: managed, Status: ExpensePending})
}

// Mine lists the expenses raised by the actor's employee record.
func (w *ExpenseWorkflow) Mine(ctx context.Context, actor generic.Actor) ([]Expense, error) {
	employeeID, _, err := w.employeeOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	return w.Store.ListExpenses(ctx, ExpenseFilter{RequesterID: employeeID})
}

// Get returns the expense with its approval history, oldest decision first.
func (w *ExpenseWorkflow) Get(ctx context.Context, id generic.ID) (*Expense, error) {
	exp, err := w.Store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.Approvals, err = w.Store.ListApprovals(ctx, id); err != nil {
		return nil, err
	}
	return exp, nil
}

func (w *ExpenseWorkflow) List(ctx context.Context) ([]Expense, error) {
	return w.Store.ListExpenses(ctx, ExpenseFilter{})
}

func (w *ExpenseWorkflow) employeeOf(ctx context.Context, actor generic.Actor) (employeeID, departmentID generic.ID, err error) {
	employeeID, departmentID, err = w.Store.EmployeeForUser(ctx, actor.UserID)
	if generic.IsNotFound(err) {
		return 0, 0, generic.Validation("user", "no employee record is linked to %s", actor)
	}
	return employeeID, departmentID, err
}
