package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/store/rdb"
	"github.com/warp/erp-engine/store/rdb/rdbtest"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Users 1..4 are linked to employees:
//
//	1 requester  (ENG)
//	2 manager    (ENG, manages ENG)
//	3 finance    (OPS)
//	4 outsider   (OPS, manages OPS)
type fixture struct {
	store *rdb.Store
	clock *generic.ManualClock
	eng   *hr.Department
	ops   *hr.Department

	requester, manager, finance, outsider generic.Actor
	managerEmp                            *hr.Employee
}

func newFixture(t *testing.T) fixture {
	store := rdbtest.New(t)
	eng := rdbtest.Department(t, store, "ENG")
	ops := rdbtest.Department(t, store, "OPS")

	rdbtest.Employee(t, store, "E001", eng.ID, 1)
	mgr := rdbtest.Employee(t, store, "E002", eng.ID, 2)
	rdbtest.Manage(t, store, eng, mgr.ID)
	rdbtest.Employee(t, store, "E003", ops.ID, 3)
	other := rdbtest.Employee(t, store, "E004", ops.ID, 4)
	rdbtest.Manage(t, store, ops, other.ID)

	return fixture{
		store:      store,
		clock:      rdbtest.Clock(),
		eng:        eng,
		ops:        ops,
		requester:  actor(1, "requester", generic.RoleEmployee),
		manager:    actor(2, "manager", generic.RoleEmployee, generic.RoleDepartmentManager),
		finance:    actor(3, "finance", generic.RoleFinanceManager),
		outsider:   actor(4, "outsider", generic.RoleDepartmentManager),
		managerEmp: mgr,
	}
}

func actor(id generic.ID, name string, roles ...generic.Role) generic.Actor {
	return generic.Actor{UserID: id, Username: name, Roles: roles}
}

func (f fixture) workflow() *finance.ExpenseWorkflow {
	return finance.NewExpenseWorkflow(f.store, f.clock, zerolog.Nop())
}

func (f fixture) raise(t *testing.T, amount string) *finance.Expense {
	t.Helper()
	exp, err := f.workflow().Create(context.Background(), f.requester, finance.ExpenseInput{
		Description: "Conference ticket",
		Amount:      decimal.RequireFromString(amount),
		Category:    "Travel",
	})
	require.NoError(t, err)
	return exp
}

// =============================================================================
// CREATE
// =============================================================================

func TestCreateExpense_DefaultsToRequesterDepartment(t *testing.T) {
	f := newFixture(t)

	exp := f.raise(t, "120.50")

	assert.Equal(t, finance.ExpensePending, exp.Status)
	assert.Equal(t, f.eng.ID, exp.DepartmentID)
	assert.True(t, exp.ExpenseDate.Equal(rdbtest.Epoch))
	assert.True(t, exp.Amount.Equal(decimal.RequireFromString("120.50")))
}

func TestCreateExpense_NonPositiveAmount_Validation(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []string{"0", "-5"} {
		_, err := f.workflow().Create(context.Background(), f.requester, finance.ExpenseInput{
			Description: "Nothing",
			Amount:      decimal.RequireFromString(amount),
		})
		assert.ErrorIs(t, err, generic.ErrValidation, "amount %s", amount)
	}
}

func TestCreateExpense_UserWithoutEmployee_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow().Create(context.Background(), actor(99, "ghost", generic.RoleEmployee), finance.ExpenseInput{
		Description: "Taxi",
		Amount:      decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestCreateExpense_UnknownBudget_NotFound(t *testing.T) {
	f := newFixture(t)
	missing := generic.ID(77)

	_, err := f.workflow().Create(context.Background(), f.requester, finance.ExpenseInput{
		Description: "Taxi",
		Amount:      decimal.NewFromInt(10),
		BudgetID:    &missing,
	})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// DECIDE
// =============================================================================

func TestDecideExpense_ManagerApproves(t *testing.T) {
	// GIVEN: A pending ENG expense
	// WHEN: The ENG manager approves it
	// THEN: Status is Approved and exactly one approval row exists
	f := newFixture(t)
	ctx := context.Background()
	exp := f.raise(t, "80")

	f.clock.Advance(2 * time.Hour)
	decided, err := f.workflow().Decide(ctx, f.manager, exp.ID, generic.DecisionApproved, " ok ")
	require.NoError(t, err)

	assert.Equal(t, finance.ExpenseApproved, decided.Status)
	require.Len(t, decided.Approvals, 1)
	a := decided.Approvals[0]
	assert.Equal(t, f.managerEmp.ID, a.ApproverID)
	assert.Equal(t, finance.ExpenseApproved, a.Status)
	assert.Equal(t, "ok", a.Comments)
	assert.True(t, a.ApprovalDate.Equal(rdbtest.Epoch.Add(2*time.Hour)))

	stored, err := f.workflow().Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.ExpenseApproved, stored.Status)
	assert.Len(t, stored.Approvals, 1)
}

func TestDecideExpense_FinanceDecidesAnyDepartment(t *testing.T) {
	f := newFixture(t)
	exp := f.raise(t, "80")

	decided, err := f.workflow().Decide(context.Background(), f.finance, exp.ID, generic.DecisionRejected, "over budget")
	require.NoError(t, err)
	assert.Equal(t, finance.ExpenseRejected, decided.Status)
}

func TestDecideExpense_ManagerOfOtherDepartment_Forbidden(t *testing.T) {
	f := newFixture(t)
	exp := f.raise(t, "80")

	_, err := f.workflow().Decide(context.Background(), f.outsider, exp.ID, generic.DecisionApproved, "")
	assert.ErrorIs(t, err, generic.ErrAuthorization)
}

func TestDecideExpense_PlainEmployee_Forbidden(t *testing.T) {
	f := newFixture(t)
	exp := f.raise(t, "80")

	_, err := f.workflow().Decide(context.Background(), f.requester, exp.ID, generic.DecisionApproved, "")
	assert.ErrorIs(t, err, generic.ErrAuthorization)
}

func TestDecideExpense_Twice_Conflict(t *testing.T) {
	// GIVEN: An expense already approved by finance
	// WHEN: The manager tries to reject it
	// THEN: Conflict, and the approval history still holds one row
	f := newFixture(t)
	ctx := context.Background()
	exp := f.raise(t, "80")

	_, err := f.workflow().Decide(ctx, f.finance, exp.ID, generic.DecisionApproved, "")
	require.NoError(t, err)

	_, err = f.workflow().Decide(ctx, f.manager, exp.ID, generic.DecisionRejected, "")
	assert.ErrorIs(t, err, generic.ErrConflict)

	approvals, err := f.store.ListApprovals(ctx, exp.ID)
	require.NoError(t, err)
	assert.Len(t, approvals, 1)
}

func TestDecideExpense_InvalidDecision_Validation(t *testing.T) {
	f := newFixture(t)
	exp := f.raise(t, "80")

	_, err := f.workflow().Decide(context.Background(), f.finance, exp.ID, generic.Decision("Escalate"), "")
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestDecideExpense_UnknownExpense_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow().Decide(context.Background(), f.finance, 1234, generic.DecisionApproved, "")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// PENDING
// =============================================================================

func TestPendingFor_ScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.workflow()

	engExp := f.raise(t, "10")
	opsExp, err := w.Create(ctx, f.finance, finance.ExpenseInput{Description: "Cables", Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	decided := f.raise(t, "20")
	_, err = w.Decide(ctx, f.finance, decided.ID, generic.DecisionApproved, "")
	require.NoError(t, err)

	all, err := w.PendingFor(ctx, f.finance)
	require.NoError(t, err)
	assert.ElementsMatch(t, []generic.ID{engExp.ID, opsExp.ID}, ids(all))

	mine, err := w.PendingFor(ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, []generic.ID{engExp.ID}, ids(mine))

	_, err = w.PendingFor(ctx, f.requester)
	assert.ErrorIs(t, err, generic.ErrAuthorization)
}

func TestPendingFor_ManagerWithoutDepartment_Empty(t *testing.T) {
	f := newFixture(t)
	f.raise(t, "10")
	// user 1 is an employee of ENG but manages nothing
	lonely := actor(1, "requester", generic.RoleDepartmentManager)

	got, err := f.workflow().PendingFor(context.Background(), lonely)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMine_OnlyOwnExpenses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	own := f.raise(t, "10")
	_, err := f.workflow().Create(ctx, f.manager, finance.ExpenseInput{Description: "Lunch", Amount: decimal.NewFromInt(15)})
	require.NoError(t, err)

	got, err := f.workflow().Mine(ctx, f.requester)
	require.NoError(t, err)
	assert.Equal(t, []generic.ID{own.ID}, ids(got))
}

func ids(exps []finance.Expense) []generic.ID {
	out := make([]generic.ID, 0, len(exps))
	for _, e := range exps {
		out = append(out, e.ID)
	}
	return out
}
