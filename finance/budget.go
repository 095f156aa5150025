package finance

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
)

// Budgets manages department budgets.
type Budgets struct {
	Store Store
	Log   zerolog.Logger
}

func NewBudgets(store Store, log zerolog.Logger) *Budgets {
	return &Budgets{Store: store, Log: log}
}

type BudgetInput struct {
	DepartmentID generic.ID
	Amount       decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
	Category     string
	Description  string
}

func (in BudgetInput) validate() error {
	if in.Amount.IsNegative() {
		return generic.Validation("amount", "budget amount cannot be negative")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return generic.Validation("start_date", "start and end dates are required")
	}
	if in.StartDate.After(in.EndDate) {
		return generic.Validation("start_date", "start date is after end date")
	}
	return nil
}

func (in BudgetInput) apply(b *Budget) {
	b.DepartmentID = in.DepartmentID
	b.Amount = in.Amount
	b.StartDate = in.StartDate
	b.EndDate = in.EndDate
	b.Category = strings.TrimSpace(in.Category)
	b.Description = strings.TrimSpace(in.Description)
}

func (s *Budgets) Create(ctx context.Context, in BudgetInput) (*Budget, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b := &Budget{}
	in.apply(b)
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.checkDepartment(ctx, in.DepartmentID); err != nil {
			return err
		}
		return s.Store.CreateBudget(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info().Int64("budget_id", b.ID).Int64("department_id", b.DepartmentID).Msg("budget created")
	return b, nil
}

func (s *Budgets) Get(ctx context.Context, id generic.ID) (*Budget, error) {
	return s.Store.GetBudget(ctx, id)
}

// List returns every budget, or only those of one department when
// departmentID is non-zero.
func (s *Budgets) List(ctx context.Context, departmentID generic.ID) ([]Budget, error) {
	return s.Store.ListBudgets(ctx, departmentID)
}

func (s *Budgets) Update(ctx context.Context, id generic.ID, in BudgetInput) (*Budget, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var b *Budget
	err := s.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.Store.GetBudget(ctx, id); err != nil {
			return err
		}
		if err := s.checkDepartment(ctx, in.DepartmentID); err != nil {
			return err
		}
		in.apply(b)
		return s.Store.UpdateBudget(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the budget. Expenses that referenced it keep existing
// without a budget.
func (s *Budgets) Delete(ctx context.Context, id generic.ID) error {
	return s.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.Store.GetBudget(ctx, id); err != nil {
			return err
		}
		return s.Store.DeleteBudget(ctx, id)
	})
}

func (s *Budgets) checkDepartment(ctx context.Context, id generic.ID) error {
	ok, err := s.Store.DepartmentExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return generic.NotFound("department", id)
	}
	return nil
}
