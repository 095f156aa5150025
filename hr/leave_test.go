package hr_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/store/rdb/rdbtest"
)

func (f fixture) leaves() *hr.LeaveWorkflow {
	return hr.NewLeaveWorkflow(f.store, zerolog.Nop())
}

func (f fixture) request(t *testing.T, employeeID generic.ID, reason string) *hr.Leave {
	t.Helper()
	start := generic.StartOfDay(rdbtest.Epoch).AddDate(0, 0, 7)
	leave, err := f.leaves().Request(context.Background(), hr.LeaveRequest{
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 4),
		Type:       hr.LeaveAnnual,
		Reason:     reason,
	})
	require.NoError(t, err)
	return leave
}

// =============================================================================
// REQUEST
// =============================================================================

func TestRequestLeave_StartsPending(t *testing.T) {
	f := newFixture(t)

	leave := f.request(t, f.emp.ID, "family trip")

	assert.Equal(t, hr.LeavePending, leave.Status)
	assert.Nil(t, leave.ApproverID)
	assert.Equal(t, "family trip", leave.Reason)
}

func TestRequestLeave_StartAfterEnd_Validation(t *testing.T) {
	f := newFixture(t)
	start := rdbtest.Epoch.AddDate(0, 0, 10)

	_, err := f.leaves().Request(context.Background(), hr.LeaveRequest{
		EmployeeID: f.emp.ID,
		StartDate:  start,
		EndDate:    start.Add(-24 * time.Hour),
		Type:       hr.LeaveSick,
	})
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestRequestLeave_SingleDay_Allowed(t *testing.T) {
	f := newFixture(t)
	day := generic.StartOfDay(rdbtest.Epoch)

	_, err := f.leaves().Request(context.Background(), hr.LeaveRequest{
		EmployeeID: f.emp.ID,
		StartDate:  day,
		EndDate:    day,
		Type:       hr.LeavePersonal,
	})
	assert.NoError(t, err)
}

func TestRequestLeave_UnknownType_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.leaves().Request(context.Background(), hr.LeaveRequest{
		EmployeeID: f.emp.ID,
		StartDate:  rdbtest.Epoch,
		EndDate:    rdbtest.Epoch,
		Type:       hr.LeaveType("Sabbatical"),
	})
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestRequestLeave_UnknownEmployee_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.leaves().Request(context.Background(), hr.LeaveRequest{
		EmployeeID: 777,
		StartDate:  rdbtest.Epoch,
		EndDate:    rdbtest.Epoch,
		Type:       hr.LeaveAnnual,
	})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// DECIDE
// =============================================================================

func TestDecideLeave_ApproveAppendsComments(t *testing.T) {
	// GIVEN: A pending leave and a manager employee
	// WHEN: The manager approves with a comment
	// THEN: Status, approver and reason are updated together
	f := newFixture(t)
	ctx := context.Background()
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)
	leave := f.request(t, f.emp.ID, "trip")

	decided, err := f.leaves().Decide(ctx, leave.ID, mgr.ID, generic.DecisionApproved, "enjoy")
	require.NoError(t, err)

	assert.Equal(t, hr.LeaveApproved, decided.Status)
	require.NotNil(t, decided.ApproverID)
	assert.Equal(t, mgr.ID, *decided.ApproverID)
	assert.Equal(t, "trip | Approver: enjoy", decided.Reason)

	stored, err := f.store.GetLeave(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, hr.LeaveApproved, stored.Status)
	assert.Equal(t, "trip | Approver: enjoy", stored.Reason)
}

func TestDecideLeave_RejectWithoutComments(t *testing.T) {
	f := newFixture(t)
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)
	leave := f.request(t, f.emp.ID, "trip")

	decided, err := f.leaves().Decide(context.Background(), leave.ID, mgr.ID, generic.DecisionRejected, "  ")
	require.NoError(t, err)

	assert.Equal(t, hr.LeaveRejected, decided.Status)
	assert.Equal(t, "trip", decided.Reason, "blank comments leave the reason untouched")
}

func TestDecideLeave_AlreadyDecided_Conflict(t *testing.T) {
	// GIVEN: An approved leave
	// WHEN: Deciding it again
	// THEN: Conflict, and the first decision is kept
	f := newFixture(t)
	ctx := context.Background()
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)
	leave := f.request(t, f.emp.ID, "trip")

	_, err := f.leaves().Decide(ctx, leave.ID, mgr.ID, generic.DecisionApproved, "")
	require.NoError(t, err)

	_, err = f.leaves().Decide(ctx, leave.ID, mgr.ID, generic.DecisionRejected, "changed my mind")
	assert.ErrorIs(t, err, generic.ErrConflict)

	stored, err := f.store.GetLeave(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, hr.LeaveApproved, stored.Status)
}

func TestDecideLeave_InvalidDecision_Validation(t *testing.T) {
	f := newFixture(t)
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)
	leave := f.request(t, f.emp.ID, "trip")

	_, err := f.leaves().Decide(context.Background(), leave.ID, mgr.ID, generic.Decision("Maybe"), "")
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestDecideLeave_DecisionIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)
	leave := f.request(t, f.emp.ID, "trip")

	decided, err := f.leaves().Decide(context.Background(), leave.ID, mgr.ID, generic.Decision("approved"), "")
	require.NoError(t, err)
	assert.Equal(t, hr.LeaveApproved, decided.Status)
}

func TestDecideLeave_UnknownLeave_NotFound(t *testing.T) {
	f := newFixture(t)
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)

	_, err := f.leaves().Decide(context.Background(), 404, mgr.ID, generic.DecisionApproved, "")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestDecideLeave_UnknownApprover_NotFound(t *testing.T) {
	f := newFixture(t)
	leave := f.request(t, f.emp.ID, "trip")

	_, err := f.leaves().Decide(context.Background(), leave.ID, 9999, generic.DecisionApproved, "")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestDecideAs_DepartmentManagerScope(t *testing.T) {
	// GIVEN: A manager of ENG, a pending leave in ENG and one in OPS
	// WHEN: The manager decides both as a DepartmentManager
	// THEN: OPS is Forbidden and stays Pending; ENG is decided
	f := newFixture(t)
	ctx := context.Background()
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)
	rdbtest.Manage(t, f.store, f.dept, mgr.ID)
	ops := rdbtest.Department(t, f.store, "OPS")
	outsider := rdbtest.Employee(t, f.store, "O001", ops.ID, 0)
	manager := generic.Actor{UserID: 7, Username: "maria", Roles: []generic.Role{generic.RoleDepartmentManager}}

	foreign := f.request(t, outsider.ID, "other department")
	_, err := f.leaves().DecideAs(ctx, manager, foreign.ID, mgr.ID, generic.DecisionApproved, "")
	assert.ErrorIs(t, err, generic.ErrAuthorization)
	stored, err := f.store.GetLeave(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, hr.LeavePending, stored.Status)

	own := f.request(t, f.emp.ID, "trip")
	decided, err := f.leaves().DecideAs(ctx, manager, own.ID, mgr.ID, generic.DecisionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, hr.LeaveApproved, decided.Status)
}

func TestDecideAs_Roles(t *testing.T) {
	tests := []struct {
		name    string
		roles   []generic.Role
		wantErr error
	}{
		{"hr manager decides any department", []generic.Role{generic.RoleHRManager}, nil},
		{"admin decides any department", []generic.Role{generic.RoleAdmin}, nil},
		{"plain employee", []generic.Role{generic.RoleEmployee}, generic.ErrAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ops := rdbtest.Department(t, f.store, "OPS")
			outsider := rdbtest.Employee(t, f.store, "O001", ops.ID, 0)
			leave := f.request(t, outsider.ID, "trip")
			actor := generic.Actor{UserID: 8, Username: "dana", Roles: tt.roles}

			_, err := f.leaves().DecideAs(context.Background(), actor, leave.ID, f.emp.ID, generic.DecisionRejected, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// =============================================================================
// PENDING APPROVALS
// =============================================================================

func TestPendingApprovals_OnlyManagedDepartments(t *testing.T) {
	// GIVEN: A manager of ENG, a pending leave in ENG, a pending leave in OPS
	//        and a decided leave in ENG
	// WHEN: Listing pending approvals for the manager
	// THEN: Only the pending ENG leave is returned
	f := newFixture(t)
	ctx := context.Background()
	mgr := rdbtest.Employee(t, f.store, "M001", f.dept.ID, 0)
	rdbtest.Manage(t, f.store, f.dept, mgr.ID)

	ops := rdbtest.Department(t, f.store, "OPS")
	outsider := rdbtest.Employee(t, f.store, "O001", ops.ID, 0)

	colleague := rdbtest.Employee(t, f.store, "E002", f.dept.ID, 0)

	pending := f.request(t, f.emp.ID, "pending")
	f.request(t, outsider.ID, "other department")
	decided := f.request(t, colleague.ID, "decided")
	_, err := f.leaves().Decide(ctx, decided.ID, mgr.ID, generic.DecisionRejected, "")
	require.NoError(t, err)

	got, err := f.leaves().PendingApprovalsFor(ctx, mgr.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
}

func TestPendingApprovals_NotAManager_Empty(t *testing.T) {
	f := newFixture(t)
	f.request(t, f.emp.ID, "trip")

	got, err := f.leaves().PendingApprovalsFor(context.Background(), f.emp.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLeavesForEmployee_NewestStartFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.leaves()

	for _, offset := range []int{3, 30, 10} {
		start := generic.StartOfDay(rdbtest.Epoch).AddDate(0, 0, offset)
		_, err := w.Request(ctx, hr.LeaveRequest{
			EmployeeID: f.emp.ID,
			StartDate:  start,
			EndDate:    start,
			Type:       hr.LeaveAnnual,
		})
		require.NoError(t, err)
	}

	got, err := w.ForEmployee(ctx, f.emp.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].StartDate.After(got[1].StartDate))
	assert.True(t, got[1].StartDate.After(got[2].StartDate))
}
