package finance_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/store/rdb/rdbtest"
)

func (f fixture) budgets() *finance.Budgets {
	return finance.NewBudgets(f.store, zerolog.Nop())
}

func (f fixture) budgetInput() finance.BudgetInput {
	start := generic.StartOfDay(rdbtest.Epoch)
	return finance.BudgetInput{
		DepartmentID: f.eng.ID,
		Amount:       decimal.RequireFromString("10000.00"),
		StartDate:    start,
		EndDate:      start.AddDate(1, 0, -1),
		Category:     "Travel",
	}
}

func TestCreateBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.budgets().Create(ctx, f.budgetInput())
	require.NoError(t, err)

	got, err := f.budgets().List(ctx, f.eng.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	other, err := f.budgets().List(ctx, f.ops.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCreateBudget_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.budgetInput()
	in.StartDate, in.EndDate = in.EndDate, in.StartDate
	_, err := f.budgets().Create(ctx, in)
	assert.ErrorIs(t, err, generic.ErrValidation)

	in = f.budgetInput()
	in.Amount = decimal.NewFromInt(-1)
	_, err = f.budgets().Create(ctx, in)
	assert.ErrorIs(t, err, generic.ErrValidation)

	in = f.budgetInput()
	in.DepartmentID = 999
	_, err = f.budgets().Create(ctx, in)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestDeleteBudget_DetachesExpenses(t *testing.T) {
	// GIVEN: An expense charged to a budget
	// WHEN: The budget is deleted
	// THEN: The expense survives with no budget
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.budgets().Create(ctx, f.budgetInput())
	require.NoError(t, err)
	exp, err := f.workflow().Create(ctx, f.requester, finance.ExpenseInput{
		Description: "Flight",
		Amount:      decimal.NewFromInt(400),
		BudgetID:    &b.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.budgets().Delete(ctx, b.ID))

	stored, err := f.workflow().Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.BudgetID)

	_, err = f.budgets().Get(ctx, b.ID)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestUpdateBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.budgets().Create(ctx, f.budgetInput())
	require.NoError(t, err)

	in := f.budgetInput()
	in.Amount = decimal.RequireFromString("12500.00")
	in.DepartmentID = f.ops.ID
	updated, err := f.budgets().Update(ctx, b.ID, in)
	require.NoError(t, err)
	assert.Equal(t, f.ops.ID, updated.DepartmentID)

	stored, err := f.budgets().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("12500")))
}
