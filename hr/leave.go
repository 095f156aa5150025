/*
leave.go - Leave Workflow

STATE MACHINE:
  Pending --decide(Approved)--> Approved
  Pending --decide(Rejected)--> Rejected

  Approved and Rejected are terminal. Cancelled is a valid stored value but no
  operation moves a leave into it.

DECISIONS:
  The decision is a closed enum. Approver comments are appended to the reason
  as " | Approver: <comments>", so the reason after a decision carries both the
  employee's and the approver's text.

  The status change is a compare-and-set on Pending: two approvers racing on
  the same leave get one success and one Conflict.

WHO MAY DECIDE:
  Admin and HRManager decide any leave. A DepartmentManager decides only
  leaves of employees in the departments they manage (DecideAs).
*/
package hr

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/metrics"
)

type LeaveWorkflow struct {
	Store Store
	Log   zerolog.Logger
}

func NewLeaveWorkflow(store Store, log zerolog.Logger) *LeaveWorkflow {
	return &LeaveWorkflow{Store: store, Log: log}
}

// LeaveRequest is the input of Request.
type LeaveRequest struct {
	EmployeeID generic.ID
	StartDate  time.Time
	EndDate    time.Time
	Type       LeaveType
	Reason     string
}

func (r LeaveRequest) validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return generic.Validation("start_date", "start and end dates are required")
	}
	if r.StartDate.After(r.EndDate) {
		return generic.Validation("start_date", "start date %s is after end date %s",
			r.StartDate.Format(generic.DateLayout), r.EndDate.Format(generic.DateLayout))
	}
	if _, err := ParseLeaveType(string(r.Type)); err != nil {
		return err
	}
	return nil
}

// Request files a new leave in Pending.
func (w *LeaveWorkflow) Request(ctx context.Context, req LeaveRequest) (*Leave, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	leaveType, _ := ParseLeaveType(string(req.Type))

	leave := &Leave{
		EmployeeID: req.EmployeeID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Type:       leaveType,
		Status:     LeavePending,
		Reason:     strings.TrimSpace(req.Reason),
	}
	err := w.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := w.Store.GetEmployee(ctx, req.EmployeeID); err != nil {
			return err
		}
		return w.Store.CreateLeave(ctx, leave)
	})
	if err != nil {
		return nil, err
	}

	w.Log.Info().
		Int64("leave_id", leave.ID).
		Int64("employee_id", leave.EmployeeID).
		Str("type", string(leave.Type)).
		Msg("leave requested")
	return leave, nil
}

// Decide approves or rejects a Pending leave.
func (w *LeaveWorkflow) Decide(ctx context.Context, leaveID, approverID generic.ID, decision generic.Decision, comments string) (*Leave, error) {
	decision, err := generic.ParseDecision(string(decision))
	if err != nil {
		return nil, err
	}
	to := LeaveStatus(decision)

	var decided *Leave
	err = w.Store.WithTx(ctx, func(ctx context.Context) error {
		leave, err := w.Store.GetLeave(ctx, leaveID)
		if err != nil {
			return err
		}
		if leave.Status != LeavePending {
			return generic.Conflict("leave %d is %s, only Pending leaves can be decided", leaveID, leave.Status)
		}
		if _, err := w.Store.GetEmployee(ctx, approverID); err != nil {
			return err
		}

		reason := leave.Reason
		if c := strings.TrimSpace(comments); c != "" {
			reason += " | Approver: " + c
		}
		if err := w.Store.TransitionLeave(ctx, leaveID, LeavePending, to, approverID, reason); err != nil {
			return err
		}

		leave.Status = to
		leave.ApproverID = &approverID
		leave.Reason = reason
		decided = leave
		return nil
	})
	if err != nil {
		return nil, err
	}

	generic.AfterCommit(ctx, func() { metrics.RecordTransition("leave", string(to)) })
	w.Log.Info().
		Str("entity", "leave").
		Int64("id", leaveID).
		Str("from", string(LeavePending)).
		Str("to", string(to)).
		Int64("approver_id", approverID).
		Msg("workflow transition")
	return decided, nil
}

// DecideAs is Decide on behalf of an authenticated actor whose employee
// record is approverID. The department scope check and the decision share one
// unit of work.
func (w *LeaveWorkflow) DecideAs(ctx context.Context, actor generic.Actor, leaveID, approverID generic.ID, decision generic.Decision, comments string) (*Leave, error) {
	if !actor.Has(generic.RoleAdmin, generic.RoleHRManager, generic.RoleDepartmentManager) {
		return nil, generic.Forbidden("%s may not decide leaves", actor)
	}
	if actor.Has(generic.RoleAdmin, generic.RoleHRManager) {
		return w.Decide(ctx, leaveID, approverID, decision, comments)
	}

	var decided *Leave
	err := w.Store.WithTx(ctx, func(ctx context.Context) error {
		leave, err := w.Store.GetLeave(ctx, leaveID)
		if err != nil {
			return err
		}
		requester, err := w.Store.GetEmployee(ctx, leave.EmployeeID)
		if err != nil {
			return err
		}
		managed, err := w.Store.DepartmentsManagedBy(ctx, approverID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(managed, func(d Department) bool { return d.ID == requester.DepartmentID }) {
			return generic.Forbidden("%s does not manage department %d", actor, requester.DepartmentID)
		}
		decided, err = w.Decide(ctx, leaveID, approverID, decision, comments)
		return err
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// PendingApprovalsFor lists Pending leaves of employees in the departments
// managed by managerID. A manager with no department gets an empty list.
func (w *LeaveWorkflow) PendingApprovalsFor(ctx context.Context, managerID generic.ID) ([]Leave, error) {
	depts, err := w.Store.DepartmentsManagedBy(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if len(depts) == 0 {
		return []Leave{}, nil
	}
	ids := make([]generic.ID, 0, len(depts))
	for _, d := range depts {
		ids = append(ids, d.ID)
	}
	return w.Store.ListLeaves(ctx, LeaveFilter{DepartmentIDs: ids, Status: LeavePending})
}

func (w *LeaveWorkflow) ForEmployee(ctx context.Context, employeeID generic.ID) ([]Leave, error) {
	return w.Store.ListLeaves(ctx, LeaveFilter{EmployeeID: employeeID})
}

func (w *LeaveWorkflow) Get(ctx context.Context, id generic.ID) (*Leave, error) {
	return w.Store.GetLeave(ctx, id)
}
